package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"promo-raffle/internal/domain/model"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. RAFFLE_DATABASE_URL.
const EnvPrefix = "RAFFLE"

const drawLayout = "2006-01-02T15:04:05"

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"             envconfig:"ADDR"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  envconfig:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	CORSOrigin      string        `yaml:"cors_origin"      envconfig:"CORS_ORIGIN"`
	TrustProxy      bool          `yaml:"trust_proxy"      envconfig:"TRUST_PROXY"` // honour X-Forwarded-For / X-Real-IP
	Locale          string        `yaml:"locale"           envconfig:"LOCALE"`      // language of API error messages
}

type LogConfig struct {
	Level    string `yaml:"level"    envconfig:"LEVEL"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"   envconfig:"FORMAT"`   // json|console
	Sampling bool   `yaml:"sampling" envconfig:"SAMPLING"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"       envconfig:"URL"`
	MaxConns int32  `yaml:"max_conns" envconfig:"MAX_CONNS"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"      envconfig:"URL"` // empty disables redis-backed features
	Password string        `yaml:"password" envconfig:"PASSWORD"`
	DB       int           `yaml:"db"       envconfig:"DB"`
	TTL      time.Duration `yaml:"ttl"      envconfig:"TTL"`
}

type AdminConfig struct {
	Email        string        `yaml:"email"         envconfig:"EMAIL"`
	PasswordHash string        `yaml:"password_hash" envconfig:"PASSWORD_HASH"` // bcrypt
	JWTSecret    string        `yaml:"jwt_secret"    envconfig:"JWT_SECRET"`
	SessionTTL   time.Duration `yaml:"session_ttl"   envconfig:"SESSION_TTL"`
	SecureCookie bool          `yaml:"secure_cookie" envconfig:"SECURE_COOKIE"`
	CookieDomain string        `yaml:"cookie_domain" envconfig:"COOKIE_DOMAIN"`
}

type CampaignConfig struct {
	Brand     string `yaml:"brand"     envconfig:"BRAND"`
	Instagram string `yaml:"instagram" envconfig:"INSTAGRAM"`
	BaseURL   string `yaml:"base_url"  envconfig:"BASE_URL"`
	DrawAt    string `yaml:"draw_at"   envconfig:"DRAW_AT"` // 2006-01-02T15:04:05 in TimeZone; empty keeps registration open
	TimeZone  string `yaml:"time_zone" envconfig:"TIME_ZONE"`
}

type CodesConfig struct {
	Length       int           `yaml:"length"         envconfig:"LENGTH"`
	MaxLength    int           `yaml:"max_length"     envconfig:"MAX_LENGTH"`
	LengthStep   int           `yaml:"length_step"    envconfig:"LENGTH_STEP"`
	MaxAttempts  int           `yaml:"max_attempts"   envconfig:"MAX_ATTEMPTS"`
	MaxBatch     int           `yaml:"max_batch"      envconfig:"MAX_BATCH"`
	IssueLockTTL time.Duration `yaml:"issue_lock_ttl" envconfig:"ISSUE_LOCK_TTL"`
}

type RateLimitConfig struct {
	Registrations int           `yaml:"registrations" envconfig:"REGISTRATIONS"` // per client per window; 0 disables
	Window        time.Duration `yaml:"window"        envconfig:"WINDOW"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"       envconfig:"HTTP"`
	Log       LogConfig       `yaml:"log"        envconfig:"LOG"`
	Database  DatabaseConfig  `yaml:"database"   envconfig:"DATABASE"`
	Redis     RedisConfig     `yaml:"redis"      envconfig:"REDIS"`
	Admin     AdminConfig     `yaml:"admin"      envconfig:"ADMIN"`
	Campaign  CampaignConfig  `yaml:"campaign"   envconfig:"CAMPAIGN"`
	Codes     CodesConfig     `yaml:"codes"      envconfig:"CODES"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`

	Runtime RuntimeConfig `yaml:"-" ignored:"true"`
}

// Defaults returns the configuration used when neither file nor env set a value.
func Defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			RequestTimeout:  15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Locale:          "pt-BR",
		},
		Log:      LogConfig{Level: "info", Format: "json"},
		Database: DatabaseConfig{MaxConns: 10},
		Redis:    RedisConfig{TTL: time.Minute},
		Admin:    AdminConfig{SessionTTL: 8 * time.Hour, SecureCookie: true},
		Campaign: CampaignConfig{
			Brand:     "ALFA PRIME",
			Instagram: "@alfa.prime_",
			BaseURL:   "http://localhost:8080",
			TimeZone:  "America/Sao_Paulo",
		},
		Codes: CodesConfig{
			Length:       8,
			MaxLength:    16,
			LengthStep:   2,
			MaxAttempts:  16,
			MaxBatch:     1000,
			IssueLockTTL: 2 * time.Minute,
		},
		RateLimit: RateLimitConfig{Registrations: 10, Window: 10 * time.Minute},
	}
}

// LoadConfig overlays the YAML file at path (optional when empty) on the
// defaults, then applies RAFFLE_* environment overrides.
func LoadConfig(path string, dev bool) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	cfg.normalize()
	cfg.Runtime.Dev = dev
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Database.MaxConns <= 0 {
		c.Database.MaxConns = 10
	}
	c.Redis.TTL = normalizeTTL(c.Redis.TTL, time.Minute)
	c.Admin.SessionTTL = normalizeTTL(c.Admin.SessionTTL, 8*time.Hour)
	c.HTTP.RequestTimeout = normalizeTTL(c.HTTP.RequestTimeout, 15*time.Second)
	c.HTTP.ShutdownTimeout = normalizeTTL(c.HTTP.ShutdownTimeout, 10*time.Second)
	if c.HTTP.Locale == "" {
		c.HTTP.Locale = "pt-BR"
	}
	c.Codes.IssueLockTTL = normalizeTTL(c.Codes.IssueLockTTL, 2*time.Minute)
	c.RateLimit.Window = normalizeTTL(c.RateLimit.Window, 10*time.Minute)

	if c.Codes.Length <= 0 {
		c.Codes.Length = 8
	}
	if c.Codes.MaxLength < c.Codes.Length {
		c.Codes.MaxLength = c.Codes.Length
	}
	if c.Codes.LengthStep < 0 {
		c.Codes.LengthStep = 0
	}
	if c.Codes.MaxAttempts <= 0 {
		c.Codes.MaxAttempts = 16
	}
	if c.Codes.MaxBatch <= 0 {
		c.Codes.MaxBatch = 1000
	}
	c.Campaign.Instagram = model.NormalizeInstagram(c.Campaign.Instagram)
}

// Validate checks what the HTTP server needs to run.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Admin.Email == "" {
		errs = append(errs, errors.New("admin.email is required"))
	}
	if !strings.HasPrefix(c.Admin.PasswordHash, "$2") {
		errs = append(errs, errors.New("admin.password_hash must be a bcrypt hash"))
	}
	if len(c.Admin.JWTSecret) < 32 {
		errs = append(errs, errors.New("admin.jwt_secret must be at least 32 bytes"))
	}
	if _, err := c.Campaign.Build(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Build turns the campaign section into the domain value.
func (c CampaignConfig) Build() (model.Campaign, error) {
	loc := time.UTC
	if c.TimeZone != "" {
		l, err := time.LoadLocation(c.TimeZone)
		if err != nil {
			return model.Campaign{}, fmt.Errorf("campaign.time_zone: %w", err)
		}
		loc = l
	}
	var drawAt time.Time
	if c.DrawAt != "" {
		t, err := time.ParseInLocation(drawLayout, c.DrawAt, loc)
		if err != nil {
			return model.Campaign{}, fmt.Errorf("campaign.draw_at: %w", err)
		}
		drawAt = t
	}
	return model.Campaign{
		Brand:     c.Brand,
		Instagram: c.Instagram,
		BaseURL:   c.BaseURL,
		DrawAt:    drawAt,
		Location:  loc,
	}, nil
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
