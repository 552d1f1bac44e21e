package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "dev-secret"

type MailConfig struct {
	Service string
	User    string
	Pass    string
	From    string
	Host    string
	Port    int
	Secure  bool
}

// Configured reports whether credentials are present. Without them mail is
// only logged.
func (m MailConfig) Configured() bool {
	return m.User != "" && m.Pass != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// Config is read from the environment once in main and handed to every
// component that needs it.
type Config struct {
	Port     int
	Env      string
	LogLevel string

	MongoURI string
	MongoDB  string

	JWTSecret []byte
	JWTTTL    time.Duration

	BootstrapToken string
	CORSOrigins    []string

	Mail  MailConfig
	Redis RedisConfig
	Admin AdminSeed

	parseErrs []error
}

func Load() *Config {
	r := &envReader{}
	cfg := &Config{
		Port:     r.envInt("PORT", 4000),
		Env:      envString("APP_ENV", "dev"),
		LogLevel: envString("LOG_LEVEL", "info"),

		MongoURI: os.Getenv("MONGODB_URI"),
		MongoDB:  envString("MONGODB_DB", "freelancehub"),

		JWTSecret: []byte(envString("JWT_SECRET", defaultJWTSecret)),
		JWTTTL:    r.envDuration("JWT_TTL", 7*24*time.Hour),

		BootstrapToken: os.Getenv("ADMIN_BOOTSTRAP_TOKEN"),
		CORSOrigins:    splitList(envString("CORS_ORIGINS", "*")),

		Mail: MailConfig{
			Service: strings.ToLower(os.Getenv("MAIL_SERVICE")),
			User:    os.Getenv("MAIL_USER"),
			Pass:    os.Getenv("MAIL_PASS"),
			From:    os.Getenv("MAIL_FROM"),
			Host:    envString("MAIL_HOST", "smtp.gmail.com"),
			Port:    r.envInt("MAIL_PORT", 465),
			Secure:  r.envBool("MAIL_SECURE", true),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       r.envInt("REDIS_DB", 0),
		},
		Admin: AdminSeed{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Name:     envString("ADMIN_NAME", "Administrator"),
		},
	}
	cfg.parseErrs = r.errs
	if cfg.Mail.Service == "gmail" {
		cfg.Mail.Host = "smtp.gmail.com"
		cfg.Mail.Port = 465
		cfg.Mail.Secure = true
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.User
	}
	return cfg
}

func (c *Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, errors.New("PORT must be between 1 and 65535"))
	}
	if c.Mail.User != "" && c.Mail.Pass == "" {
		errs = append(errs, errors.New("MAIL_PASS is required when MAIL_USER is set"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProd() bool { return c.Env == "prod" }

// DefaultSecret reports whether the built-in development JWT secret is in use.
func (c *Config) DefaultSecret() bool {
	return string(c.JWTSecret) == defaultJWTSecret
}

func (c *Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

// envReader collects values that are set but unparsable so Validate can
// report them instead of silently using the default.
type envReader struct {
	errs []error
}

func (r *envReader) fail(key, value, want string) {
	r.errs = append(r.errs, fmt.Errorf("%s=%q is not %s", key, value, want))
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *envReader) envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, "an integer")
		return def
	}
	return n
}

func (r *envReader) envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, "a boolean")
		return def
	}
	return b
}

func (r *envReader) envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, "a duration")
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
