package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type options struct {
	files       []string
	prefix      string
	environment map[string]string
}

// Option tunes a single Load call.
type Option func(*options)

// WithEnvFiles sets the dotenv files read before parsing. Missing files are skipped.
// Defaults to ".env".
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.files = files }
}

// WithPrefix prepends prefix to every env key, e.g. "INTERNHUB_".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvironment parses from the given map instead of the process environment.
// Dotenv files are ignored in this mode.
func WithEnvironment(environment map[string]string) Option {
	return func(o *options) { o.environment = environment }
}

// Load parses environment variables into a new T using `env` and `envDefault`
// struct tags. Values already present in the process environment take
// precedence over values from dotenv files.
//
//	type AppConfig struct {
//		Mongo mongo.Config
//		Redis redis.Config
//		Toast toast.Config
//	}
//
//	cfg, err := config.Load[AppConfig]()
func Load[T any](opts ...Option) (T, error) {
	o := &options{files: []string{".env"}}
	for _, opt := range opts {
		opt(o)
	}

	var cfg T
	if o.environment == nil {
		if err := loadDotenv(o.files...); err != nil {
			return cfg, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      o.prefix,
		Environment: o.environment,
	}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// MustLoad works like Load but panics on failure.
// Meant for process start-up where a broken config must stop the binary.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

func loadDotenv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}
