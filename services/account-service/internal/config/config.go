package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vasapolrittideah/shopit-api/shared/discovery"
	"github.com/vasapolrittideah/shopit-api/shared/events"
	"github.com/vasapolrittideah/shopit-api/shared/logger"
	"github.com/vasapolrittideah/shopit-api/shared/mailer"
)

// AccountServiceConfig holds everything the account service reads from the environment.
type AccountServiceConfig struct {
	HTTPAddr       string `env:"HTTP_ADDR"        envDefault:":4000"`
	GRPCHealthAddr string `env:"GRPC_HEALTH_ADDR" envDefault:":4001"`

	// AppPasswordResetURL is the base of the link mailed for password resets. When empty
	// the link points back at this API on the host the request came in on.
	AppPasswordResetURL string `env:"APP_PASSWORD_RESET_URL"`

	Mongo     MongoConfig
	Token     TokenConfig
	Cookie    CookieConfig
	SMTP      mailer.Config `envPrefix:"SMTP_"`
	Redis     events.RedisConfig
	Discovery discovery.Config
	Log       logger.Config
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI,required,notEmpty"`
	Database string `env:"MONGO_DATABASE"     envDefault:"shopit"`
}

type TokenConfig struct {
	Secret                      string        `env:"JWT_SECRET,required,notEmpty"`
	Issuer                      string        `env:"JWT_ISSUER"                      envDefault:"shopit-api"`
	ExpiresIn                   time.Duration `env:"JWT_EXPIRES_IN"                  envDefault:"168h"`
	PasswordResetTokenExpiresIn time.Duration `env:"RESET_PASSWORD_TOKEN_EXPIRES_IN" envDefault:"15m"`
}

type CookieConfig struct {
	ExpiresIn time.Duration `env:"COOKIE_EXPIRES_IN" envDefault:"168h"`
	Secure    bool          `env:"COOKIE_SECURE"     envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (*AccountServiceConfig, error) {
	cfg, err := env.ParseAs[AccountServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AccountServiceConfig) validate() error {
	var errs []error

	if c.Token.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.Token.PasswordResetTokenExpiresIn <= 0 {
		errs = append(errs, errors.New("RESET_PASSWORD_TOKEN_EXPIRES_IN must be positive"))
	}
	if c.Cookie.ExpiresIn <= 0 {
		errs = append(errs, errors.New("COOKIE_EXPIRES_IN must be positive"))
	}
	if err := c.SMTP.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
