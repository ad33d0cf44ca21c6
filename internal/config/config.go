package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort = 3000
	defaultEnv  = "development"

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "rahabenico"
	defaultDBCharset  = "utf8mb4"

	defaultRedisURL = "redis://localhost:6379/0"

	// DefaultAdminPassword is the documented weak fallback. Deployments
	// are expected to override it via ADMIN_PASSWORD.
	DefaultAdminPassword = "rahabenico"

	defaultBaseURL = "https://rahabenico.vercel.app"
)

// AppConfig holds runtime configuration loaded from YAML plus env overrides.
type AppConfig struct {
	Port           int            `yaml:"port"`
	Env            string         `yaml:"env"` // "development" | "production"
	DSN            string         `yaml:"dsn"`
	Database       DatabaseConfig `yaml:"database"`
	RedisURL       string         `yaml:"redis_url"`
	BaseURL        string         `yaml:"base_url"`
	AdminPassword  string         `yaml:"admin_password"`
	JWTSecret      string         `yaml:"jwt_secret"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	Mail           MailConfig     `yaml:"mail"`
	S3             S3Config       `yaml:"s3"`
}

// DatabaseConfig builds the MySQL DSN when dsn is not given verbatim.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// MailConfig configures the Mailjet gateway. ContactRecipient is where
// contact-form submissions land.
type MailConfig struct {
	// Enable is a tri-state: an explicit value in the YAML file wins;
	// when left unset, mail turns on once both API credentials are
	// present.
	Enable           *bool  `yaml:"enable"`
	APIKey           string `yaml:"api_key"`
	APISecret        string `yaml:"api_secret"`
	FromEmail        string `yaml:"from_email"`
	FromName         string `yaml:"from_name"`
	ContactRecipient string `yaml:"contact_recipient"`
}

// S3Config configures gallery object storage.
type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
}

// Load reads the YAML config file, applies defaults and env overrides.
// A missing file is not an error: env-only deployments are supported.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults + env
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.DSN == "" {
		cfg.DSN = cfg.Database.BuildDSN()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
			Charset:  defaultDBCharset,
		},
		RedisURL:      defaultRedisURL,
		BaseURL:       defaultBaseURL,
		AdminPassword: DefaultAdminPassword,
		Mail: MailConfig{
			FromEmail: "noreply@rahabenico.com",
			FromName:  "Rahabenico",
		},
		S3: S3Config{
			Region: "eu-central-1",
		},
	}
}

// applyEnvOverrides keeps the env variable names the hosted deployment used.
func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.DSN, "RB_DSN")
	setString(&cfg.RedisURL, "RB_REDIS_URL")
	setString(&cfg.BaseURL, "BASE_URL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.JWTSecret, "RB_JWT_SECRET")
	setString(&cfg.Mail.APIKey, "MAILJET_API_KEY")
	setString(&cfg.Mail.APISecret, "MAILJET_API_SECRET")
	setString(&cfg.Mail.FromEmail, "MAILJET_SENDER_EMAIL")
	setString(&cfg.Mail.ContactRecipient, "CONTACT_RECIPIENT_EMAIL")
	setString(&cfg.S3.Endpoint, "RB_S3_ENDPOINT")
	setString(&cfg.S3.Region, "RB_S3_REGION")
	setString(&cfg.S3.Bucket, "RB_S3_BUCKET")
	setString(&cfg.S3.AccessKeyID, "RB_S3_ACCESS_KEY_ID")
	setString(&cfg.S3.SecretAccessKey, "RB_S3_SECRET_ACCESS_KEY")

	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("RB_ENV")); v != "" {
		cfg.Env = v
	}
	if cfg.Mail.Enable == nil && cfg.Mail.APIKey != "" && cfg.Mail.APISecret != "" {
		enable := true
		cfg.Mail.Enable = &enable
	}
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

// Enabled reports whether mail sending is switched on.
func (m MailConfig) Enabled() bool {
	return m.Enable != nil && *m.Enable
}

// BuildDSN assembles a go-sql-driver DSN from the structured fields.
func (d DatabaseConfig) BuildDSN() string {
	charset := d.Charset
	if charset == "" {
		charset = defaultDBCharset
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name, charset)
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}
