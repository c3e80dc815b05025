package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	AppEnv      string   `mapstructure:"app_env"`
	LogLevel    string   `mapstructure:"log_level"`
	HTTPAddr    string   `mapstructure:"http_addr"`
	Port        string   `mapstructure:"port"`
	Store       string   `mapstructure:"store"`
	Seed        bool     `mapstructure:"seed"`
	JWTSecret   string   `mapstructure:"jwt_secret"`
	CORSOrigins []string `mapstructure:"-"`
	DB          DB       `mapstructure:",squash"`
}

type DB struct {
	URL      string `mapstructure:"db_dsn"`
	Host     string `mapstructure:"db_host"`
	Port     string `mapstructure:"db_port"`
	User     string `mapstructure:"db_user"`
	Password string `mapstructure:"db_password"`
	Name     string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"db_sslmode"`
}

// Load reads .env, then an optional config file, then the environment. Later sources win.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("techcart", pflag.ContinueOnError)
	file := flags.String("config", "", "optional config file (yaml, json or toml)")
	addr := flags.String("addr", "", "listen address, overrides HTTP_ADDR")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if *file != "" {
		v.SetConfigFile(*file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", *file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetString("cors_origins"))
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":" + cfg.Port
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))

	return cfg, cfg.validate()
}

// Every key needs a default so AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", "")
	v.SetDefault("port", "8080")
	v.SetDefault("store", StorePostgres)
	v.SetDefault("seed", false)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("db_dsn", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "techcart")
	v.SetDefault("db_sslmode", "disable")
}

func (c Config) validate() error {
	var errs []error
	if c.Store != StorePostgres && c.Store != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE: unknown store %q", c.Store))
	}
	if c.JWTSecret == "" && !c.IsDev() {
		errs = append(errs, errors.New("JWT_SECRET: required outside development"))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Secret returns the JWT secret, falling back to a fixed key in development.
func (c Config) Secret() []byte {
	if c.JWTSecret == "" && c.IsDev() {
		return []byte("dev-insecure")
	}
	return []byte(c.JWTSecret)
}

// DSN returns DB_DSN or assembles one from the DB_* parts.
func (d DB) DSN() string {
	if strings.TrimSpace(d.URL) != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
