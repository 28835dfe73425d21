// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// SQLite fact store.
	DBPath string

	// Topaz racing API.
	TopazBaseURL  string
	TopazAPIKey   string
	Jurisdictions []string

	// Politeness delays between upstream calls.
	RaceFetchDelay time.Duration
	ScrapeDelay    time.Duration

	// Racing day boundary timezone.
	Timezone string

	// JWT signing secret (required by the server).
	JWTSecret string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	v := newViper()

	// Defaults
	v.SetDefault("DB_PATH", "runs.db")
	v.SetDefault("TOPAZ_BASE_URL", "https://topaz.grv.org.au/api/topaz-api")
	v.SetDefault("JURISDICTIONS", "VIC,NSW,QLD,SA,WA,TAS,ACT,NT,NZ")
	v.SetDefault("RACE_FETCH_DELAY_MS", 250)
	v.SetDefault("SCRAPE_DELAY_MS", 500)
	v.SetDefault("TIMEZONE", "Australia/Sydney")
	v.SetDefault("PORT", ":3000")
	v.SetDefault("TLS_DOMAINS", "dogapi.app,www.dogapi.app")
	v.SetDefault("DEBUG", false)

	cfg := &Config{
		DBPath:         v.GetString("DB_PATH"),
		TopazBaseURL:   v.GetString("TOPAZ_BASE_URL"),
		TopazAPIKey:    v.GetString("TOPAZ_API_KEY"),
		Jurisdictions:  splitTrimmed(v.GetString("JURISDICTIONS")),
		RaceFetchDelay: time.Duration(v.GetInt("RACE_FETCH_DELAY_MS")) * time.Millisecond,
		ScrapeDelay:    time.Duration(v.GetInt("SCRAPE_DELAY_MS")) * time.Millisecond,
		Timezone:       v.GetString("TIMEZONE"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		Debug:          v.GetBool("DEBUG"),
		Port:           v.GetString("PORT"),
		TLSDomains:     splitTrimmed(v.GetString("TLS_DOMAINS")),
	}

	cfg.validate()
	return cfg
}

// JWTKey returns the JWT signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

// RequireJWT fatals unless a JWT secret is configured. CLIs that never serve
// HTTP skip this; the server calls it at startup.
func (c *Config) RequireJWT() {
	if c.JWTSecret == "" {
		log.Fatal("config: JWT_SECRET must be set")
	}
}

func (c *Config) validate() {
	if c.TopazAPIKey == "" {
		log.Fatal("config: TOPAZ_API_KEY must be set")
	}
	if len(c.Jurisdictions) == 0 {
		log.Fatal("config: JURISDICTIONS must list at least one code")
	}
}

func newViper() *viper.Viper {
	// Loading .env is best effort; production uses real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
