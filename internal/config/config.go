package config

import (
	"flag"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
	"time"
)

type Config struct {
	Env                  string          `yaml:"env" env:"ENV" env-default:"local"`
	BaseURL              string          `yaml:"base_url" env:"BASE_URL" env-required:"true"`
	StoragePath          string          `yaml:"conn_string" env:"CONN_STRING"`
	AccessTokenTTL       time.Duration   `yaml:"access_token_ttl" env-required:"true"`
	RefreshTokenTTL      time.Duration   `yaml:"refresh_token_ttl" env-required:"true"`
	IDTokenTTL           time.Duration   `yaml:"id_token_ttl" env-required:"true"`
	SessionTTL           time.Duration   `yaml:"session_ttl" env-required:"true"`
	AuthorizationCodeTTL time.Duration   `yaml:"authorization_code_ttl" env-default:"10m"`
	UseCache             bool            `yaml:"use_cache"`
	HTTP                 HTTPConfig      `yaml:"http" env-required:"true"`
	Redis                RedisConfig     `yaml:"redis"`
	Keys                 KeysConfig      `yaml:"keys" env-required:"true"`
	Providers            ProvidersConfig `yaml:"providers"`
}

type HTTPConfig struct {
	Port    int           `yaml:"port" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

type RedisConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db"`
	SessionTTL time.Duration `yaml:"session_ttl" env-default:"24h"`
}

// KeysConfig selects where the signing key material comes from:
// a local PEM directory or a Vault KV secret.
type KeysConfig struct {
	Source    string      `yaml:"source" env-default:"file"`
	Dir       string      `yaml:"dir"`
	ActiveKID string      `yaml:"active_kid"`
	Vault     VaultConfig `yaml:"vault"`
}

type VaultConfig struct {
	Address string `yaml:"address" env:"VAULT_ADDR"`
	Token   string `yaml:"token" env:"VAULT_TOKEN"`
	Mount   string `yaml:"mount" env-default:"secret"`
	Path    string `yaml:"path" env-default:"idp/jwt-keys"`
}

type ProvidersConfig struct {
	Google   SocialProviderConfig `yaml:"google"`
	Facebook SocialProviderConfig `yaml:"facebook"`
	Line     SocialProviderConfig `yaml:"line"`
}

type SocialProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	CallbackURL  string `yaml:"callback_url"`
}

// Enabled reports whether the provider has credentials configured
func (c SocialProviderConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config path does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic(err)
	}

	return &cfg
}

func MustLoadPath(path string) *Config {
	if path == "" {
		panic("config path is empty")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config path does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// Priority: flag > env > default
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
