package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/nurpe/mms-documents/internal/policy"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type PolicyConfig struct {
	BudgetLimit    float64
	QuoteThreshold float64
	MinQuotes      int
	Route          policy.RouteTable
}

type DocumentsConfig struct {
	TolerancePercent float64
	DefaultCurrency  string
	SeedDemoData     bool
}

type Config struct {
	Environment string
	StoreDriver string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Policy      PolicyConfig
	Documents   DocumentsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("POLICY_BUDGET_LIMIT", 5000000)
	v.SetDefault("POLICY_QUOTE_THRESHOLD", 100000)
	v.SetDefault("POLICY_MIN_QUOTES", 2)
	v.SetDefault("POLICY_ROUTE_BASE", "Dept Head")
	v.SetDefault("POLICY_ROUTE_STAGES", "100000:Procurement,500000:Finance,1000000:C-Level")
	v.SetDefault("DOCS_TOLERANCE_PERCENT", 5)
	v.SetDefault("DOCS_DEFAULT_CURRENCY", "USD")
	v.SetDefault("SEED_DEMO_DATA", true)

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	stages, err := policy.ParseStages(v.GetString("POLICY_ROUTE_STAGES"))
	if err != nil {
		return nil, err
	}
	route, err := policy.NewRouteTable(v.GetString("POLICY_ROUTE_BASE"), stages)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		StoreDriver: strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
		Policy: PolicyConfig{
			BudgetLimit:    v.GetFloat64("POLICY_BUDGET_LIMIT"),
			QuoteThreshold: v.GetFloat64("POLICY_QUOTE_THRESHOLD"),
			MinQuotes:      v.GetInt("POLICY_MIN_QUOTES"),
			Route:          route,
		},
		Documents: DocumentsConfig{
			TolerancePercent: v.GetFloat64("DOCS_TOLERANCE_PERCENT"),
			DefaultCurrency:  strings.ToUpper(v.GetString("DOCS_DEFAULT_CURRENCY")),
			SeedDemoData:     v.GetBool("SEED_DEMO_DATA"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("DB_DSN is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.HTTP.Port <= 0 {
		return fmt.Errorf("HTTP_PORT must be positive")
	}
	if cfg.Policy.MinQuotes < 0 {
		return fmt.Errorf("POLICY_MIN_QUOTES must not be negative")
	}
	if cfg.Documents.TolerancePercent < 0 {
		return fmt.Errorf("DOCS_TOLERANCE_PERCENT must not be negative")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
