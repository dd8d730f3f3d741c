package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	RedisURL    string

	JWTSecret    string
	JWTExpiryHrs int
	BcryptRounds int

	FrontendURL string

	RateLimitWindowMin int
	RateLimitMax       int

	UploadDir string

	BrevoAPIKey string // transactional email; empty = no-op sender
	MailFrom    string
	AdminEmail  string // receives contact-form notifications
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" && viper.GetString("DATABASE_URL_TEST") != "" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	return &Config{
		Env:                env,
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           viper.GetString("REDIS_URL"),
		JWTSecret:          viper.GetString("JWT_SECRET"),
		JWTExpiryHrs:       intDefault(viper.GetInt("JWT_EXPIRY_HOURS"), 24),
		BcryptRounds:       intDefault(viper.GetInt("BCRYPT_ROUNDS"), 12),
		FrontendURL:        strDefault(viper.GetString("FRONTEND_URL"), "http://localhost:3000"),
		RateLimitWindowMin: intDefault(viper.GetInt("RATE_LIMIT_WINDOW"), 15),
		RateLimitMax:       intDefault(viper.GetInt("RATE_LIMIT_MAX"), 100),
		UploadDir:          strDefault(viper.GetString("UPLOAD_DIR"), "uploads"),
		BrevoAPIKey:        viper.GetString("BREVO_API_KEY"),
		MailFrom:           strDefault(viper.GetString("MAIL_FROM"), "PlotSure Connect <noreply@plotsureconnect.rw>"),
		AdminEmail:         viper.GetString("ADMIN_EMAIL"),
	}, nil
}

func intDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func strDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
