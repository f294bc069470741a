package environment

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"os"
	"strings"
	"time"
)

// Production defines the prod environment
const Production = "prod"

// Staging defines the staging environment
const Staging = "staging"

// Dev defines the dev environment
const Dev = "dev"

// Environment holds every setting the service reads from the process environment or a .env file
type Environment struct {
	Environment              string `mapstructure:"APP_ENV"`
	Cors                     string `mapstructure:"CORS"`
	Secret                   string `mapstructure:"SECRET"`
	Port                     string `mapstructure:"PORT"`
	Database                 string `mapstructure:"DATABASE"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	Redis                    string `mapstructure:"REDIS"`
	RedisPassword            string `mapstructure:"REDIS_PASSWORD"`
	NatsURL                  string `mapstructure:"NATS_URL"`
	GCPProjectID             string `mapstructure:"GCP_PROJECT_ID"`
	LogLevel                 string `mapstructure:"LOG_LEVEL"`
	AnalyticsConfig          string `mapstructure:"ANALYTICS_CONFIG"`
	AnalyticsCacheTTLSeconds int    `mapstructure:"ANALYTICS_CACHE_TTL"`
	AnalyticsCacheSize       int    `mapstructure:"ANALYTICS_CACHE_SIZE"`
	IdleThresholdMinutes     int    `mapstructure:"IDLE_THRESHOLD_MINUTES"`
	AccessTokenExpireMinutes int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
}

// Defaults returns the settings used when nothing is configured
func Defaults() Environment {
	return Environment{
		Environment:              Dev,
		Cors:                     "*",
		Port:                     "8000",
		Database:                 "tracktivity",
		DatabaseURL:              "mongodb://localhost:27017",
		LogLevel:                 "info",
		AnalyticsCacheTTLSeconds: 60,
		AnalyticsCacheSize:       1024,
		IdleThresholdMinutes:     5,
		AccessTokenExpireMinutes: 60,
	}
}

// Load reads the optional dotenv file at path, overlays the process environment and decodes the result
func Load(path string) (*Environment, error) {
	data := map[string]interface{}{}

	if path != "" {
		fileValues, err := godotenv.Read(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("could not read %s: %w", path, err)
		}
		for key, value := range fileValues {
			data[key] = value
		}
	}

	for _, pair := range os.Environ() {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[1] == "" {
			continue
		}
		data[parts[0]] = parts[1]
	}

	env := Defaults()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &env,
	})
	if err != nil {
		return nil, err
	}

	err = decoder.Decode(data)
	if err != nil {
		return nil, err
	}

	err = env.Validate()
	if err != nil {
		return nil, err
	}

	return &env, nil
}

// Validate checks the decoded settings for consistency
func (e *Environment) Validate() error {
	switch e.Environment {
	case Production, Staging, Dev:
	default:
		return fmt.Errorf("APP_ENV must be one of %s, %s, %s", Production, Staging, Dev)
	}

	if e.Environment == Production && (e.Secret == "" || e.Secret == "secret") {
		return fmt.Errorf("SECRET must be set in production")
	}

	if e.AnalyticsCacheTTLSeconds < 0 {
		return fmt.Errorf("ANALYTICS_CACHE_TTL must not be negative")
	}

	if e.IdleThresholdMinutes < 0 {
		return fmt.Errorf("IDLE_THRESHOLD_MINUTES must not be negative")
	}

	if e.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}

	return nil
}

// IsProduction reports whether the service runs in production
func (e *Environment) IsProduction() bool {
	return e.Environment == Production
}

// AnalyticsCacheTTL returns the analytics cache lifetime
func (e *Environment) AnalyticsCacheTTL() time.Duration {
	return time.Duration(e.AnalyticsCacheTTLSeconds) * time.Second
}

// AccessTokenLifetime returns how long issued access tokens stay valid
func (e *Environment) AccessTokenLifetime() time.Duration {
	return time.Duration(e.AccessTokenExpireMinutes) * time.Minute
}
