package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for errors. All problems are collected
// and reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret is required (set it, auth.secret_file, or BOOKMART_SECRET)"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < 0 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must not be negative, got %d", c.Auth.BcryptCost))
	}

	switch c.Storage.Type {
	case "memory":
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn is required when storage.type is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be memory or postgres, got %q", c.Storage.Type))
	}

	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Path == "" {
		errs = append(errs, errors.New("observability.metrics.path is required when metrics are enabled"))
	}

	return errors.Join(errs...)
}
