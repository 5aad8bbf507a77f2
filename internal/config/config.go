package config

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Storage
	ReceiptsDir string
	ExportDir   string

	// Ledger
	TaxRate decimal.Decimal

	// Auth
	AuthSecret   string
	AuthTokenTTL time.Duration

	// Invoice mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	InvoiceFrom  string
}

var appConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "./data/taxledger.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "taxledger")
	v.SetDefault("DB_PASSWORD", "taxledger")
	v.SetDefault("DB_NAME", "taxledger")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("RECEIPTS_DIR", "./data/receipts")
	v.SetDefault("EXPORT_DIR", "./data/receipts_export")

	v.SetDefault("TAX_RATE", "0.25")

	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("AUTH_TOKEN_TTL", "720h")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("INVOICE_FROM", "")
}

// Load loads configuration from the environment, after reading an optional
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetString("PORT"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:     v.GetString("DB_PATH"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),

		ReceiptsDir: v.GetString("RECEIPTS_DIR"),
		ExportDir:   v.GetString("EXPORT_DIR"),

		AuthSecret: v.GetString("AUTH_SECRET"),

		SMTPHost:     v.GetString("SMTP_HOST"),
		SMTPPort:     v.GetInt("SMTP_PORT"),
		SMTPUser:     v.GetString("SMTP_USER"),
		SMTPPassword: v.GetString("SMTP_PASSWORD"),
		InvoiceFrom:  v.GetString("INVOICE_FROM"),
	}

	rate, err := decimal.NewFromString(v.GetString("TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE %q: %w", v.GetString("TAX_RATE"), err)
	}
	config.TaxRate = rate

	ttlStr := v.GetString("AUTH_TOKEN_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		log.Printf("Warning: invalid AUTH_TOKEN_TTL value '%s', falling back to 720h\n", ttlStr)
		ttl = 720 * time.Hour
	}
	config.AuthTokenTTL = ttl

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH cannot be empty when DB_DRIVER is sqlite")
		}
	case "postgres":
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required when DB_DRIVER is postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be sqlite or postgres", c.DBDriver))
	}

	if c.ReceiptsDir == "" {
		problems = append(problems, "RECEIPTS_DIR cannot be empty")
	}

	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		problems = append(problems, fmt.Sprintf("invalid TAX_RATE %s: must be between 0 and 1", c.TaxRate))
	}

	if c.InvoiceFrom != "" {
		if _, err := mail.ParseAddress(c.InvoiceFrom); err != nil {
			problems = append(problems, fmt.Sprintf("invalid INVOICE_FROM '%s': %v", c.InvoiceFrom, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// MailEnabled reports whether invoice e-mail can be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.InvoiceFrom != ""
}

// AuthEnabled reports whether API requests must carry a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

// PostgresDSN returns the gorm connection string for postgres.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the URL form used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}
