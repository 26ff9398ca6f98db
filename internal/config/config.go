package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	APIPort int    `env:"API_PORT" envDefault:"8080" validate:"min=1,max=65535"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	// PORT is injected by container platforms; used when API_PORT is unset
	PlatformPort int `env:"PORT" validate:"omitempty,min=1,max=65535"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// Security
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	// Rate Limiting
	RateLimitRequests float64 `env:"RATE_LIMIT_REQUESTS" envDefault:"10"`
	RateLimitBurst    int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// Google Sheets
	CredentialsFile      string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"credentials.json"`
	ListingSpreadsheetID string `env:"LISTING_SPREADSHEET_ID,required" validate:"required"`
	FormSpreadsheetID    string `env:"FORM_SPREADSHEET_ID,required" validate:"required"`

	// Listing source ranges
	SaleRange   string `env:"SALE_RANGE" envDefault:"販売案件!A3:L" validate:"required"`
	BrokerRange string `env:"BROKER_RANGE" envDefault:"仲介案件!A3:K" validate:"required"`

	// Submission ledger ranges; columns A and B belong to the downstream process
	OfferRange   string `env:"OFFER_RANGE" envDefault:"買付申込フォーム管理表!C:S" validate:"required"`
	ViewingRange string `env:"VIEWING_RANGE" envDefault:"内見受付フォーム管理表!C:P" validate:"required"`
	NDARange     string `env:"NDA_RANGE" envDefault:"CA受付フォーム管理表!C:K" validate:"required"`

	// Viewability policy for /fetch_naiken
	NaikenPolicy string `env:"NAIKEN_POLICY" envDefault:"exact" validate:"oneof=exact exclude status"`
	NaikenMarker string `env:"NAIKEN_MARKER"`

	// Uploads
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"./tmp/uploads" validate:"required"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880" validate:"gt=0"`

	// Mail
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587" validate:"min=1,max=65535"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPTLS      string `env:"SMTP_TLS" validate:"omitempty,oneof=none starttls implicit"`
	MailFrom     string `env:"MAIL_FROM" validate:"omitempty,email"`
	MailFromName string `env:"MAIL_FROM_NAME"`
	NotifyTo     string `env:"NOTIFY_TO" validate:"omitempty,email"`
	NotifyCC     string `env:"NOTIFY_CC" validate:"omitempty,email"`
}

var validate = validator.New()

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if _, set := os.LookupEnv("API_PORT"); !set && cfg.PlatformPort != 0 {
		cfg.APIPort = cfg.PlatformPort
	}
	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' validation", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.SMTPHost != "" && c.MailFrom == "" {
		return fmt.Errorf("MAIL_FROM is required when SMTP_HOST is set")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required in production")
	}

	if c.NotifyTo == "" {
		return fmt.Errorf("NOTIFY_TO is required in production")
	}

	return nil
}

// MailEnabled reports whether an SMTP transport is configured
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// Origins splits AllowedOrigins into a trimmed list
func (c *Config) Origins() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.String("app_env", c.AppEnv),
		slog.String("log_level", c.LogLevel),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
		slog.String("sale_range", c.SaleRange),
		slog.String("broker_range", c.BrokerRange),
		slog.String("offer_range", c.OfferRange),
		slog.String("viewing_range", c.ViewingRange),
		slog.String("nda_range", c.NDARange),
		slog.String("naiken_policy", c.NaikenPolicy),
		slog.String("upload_dir", c.UploadDir),
		slog.Int64("upload_max_bytes", c.UploadMaxBytes),
		slog.Bool("mail_enabled", c.MailEnabled()),
		slog.Bool("smtp_auth_set", c.SMTPUsername != ""),
		slog.String("smtp_tls", c.SMTPTLS),
	)
}
