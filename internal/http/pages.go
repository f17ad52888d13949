package http

import (
	"html/template"
	"net/http"
	"sort"
)

// The login and error pages are deliberately minimal server-rendered
// HTML: the authorize flow needs a credentials form and a place to show
// fatal errors, nothing more.
var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body>
<h1>Sign in</h1>
{{if .Message}}<p class="error">{{.Message}}</p>{{end}}
<form method="post" action="/login">
  <input type="hidden" name="return_to" value="{{.ReturnTo}}">
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Sign in</button>
</form>
{{range .Providers}}
<p><a href="/login/social/{{.}}?return_to={{$.ReturnTo}}">Continue with {{.}}</a></p>
{{end}}
</body>
</html>
`))

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Error</title></head>
<body>
<h1>{{.Code}}</h1>
<p>{{.Description}}</p>
</body>
</html>
`))

type loginPageData struct {
	ReturnTo  string
	Message   string
	Providers []string
}

type errorPageData struct {
	Code        string
	Description string
}

func (h *Handler) renderLoginPage(w http.ResponseWriter, status int, data loginPageData) {
	for name := range h.providers {
		data.Providers = append(data.Providers, name)
	}
	sort.Strings(data.Providers)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := loginPage.Execute(w, data); err != nil {
		h.log.Error("failed to render login page", "error", err.Error())
	}
}

func (h *Handler) renderErrorPage(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := errorPage.Execute(w, errorPageData{Code: code, Description: description}); err != nil {
		h.log.Error("failed to render error page", "error", err.Error())
	}
}
