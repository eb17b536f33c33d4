package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port               string
	Store              string
	DatabaseURL        string
	JWTSecret          string
	JWTExpiry          time.Duration
	RabbitMQURL        string
	MailHost           string
	MailPort           int
	MailUser           string
	MailPass           string
	MailFrom           string
	SalesNotifyEmail   string
	CORSAllowedOrigins []string
	LoginRatePerMinute int
	TrustedProxies     []string
	SecureCookie       bool
	AdminName          string
	AdminEmail         string
	AdminPassword      string
	ReminderSchedule   string
	ReminderDaysAhead  int
}

// Load lê o .env (se existir) e depois as variáveis de ambiente.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:               getEnv("PORT", "8080"),
		Store:              strings.ToLower(getEnv("STORE", StorePostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTExpiry:          time.Duration(getInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		MailHost:           os.Getenv("MAIL_HOST"),
		MailPort:           getInt("MAIL_PORT", 587),
		MailUser:           os.Getenv("MAIL_USER"),
		MailPass:           os.Getenv("MAIL_PASS"),
		MailFrom:           getEnv("MAIL_FROM", "nao-responda@ligue-crm.local"),
		SalesNotifyEmail:   os.Getenv("SALES_NOTIFY_EMAIL"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 10),
		TrustedProxies:     splitList(os.Getenv("TRUSTED_PROXIES")),
		SecureCookie:       getBool("SECURE_COOKIE", false),
		AdminName:          getEnv("ADMIN_NAME", "Admin"),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		ReminderSchedule:   getEnv("REMINDER_SCHEDULE", "0 9 * * *"),
		ReminderDaysAhead:  getInt("REMINDER_DAYS_AHEAD", 7),
	}
}

// ValidateServe confere o mínimo para subir a API.
func (c Config) ValidateServe() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE=postgres"))
		}
	case StoreMemory:
	default:
		errs = append(errs, errors.New("STORE must be postgres or memory"))
	}
	if c.ReminderDaysAhead < 0 {
		errs = append(errs, errors.New("REMINDER_DAYS_AHEAD must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) MailEnabled() bool {
	return c.MailHost != "" && c.SalesNotifyEmail != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
