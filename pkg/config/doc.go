// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct tag parsing). Each component owns its
// config struct with `env` and `envDefault` tags; the binary composes them:
//
//	type AppConfig struct {
//		Env   string `env:"APP_ENV" envDefault:"development"`
//		Mongo mongo.Config
//		HTTP  httpserver.Config
//	}
//
//	cfg := config.MustLoad[AppConfig]()
//
// Tests can bypass the process environment entirely:
//
//	cfg, err := config.Load[AppConfig](config.WithEnvironment(map[string]string{
//		"MONGODB_URL": "mongodb://localhost:27017",
//	}))
//
// Parse failures wrap ErrParsingConfig and can be checked with errors.Is.
package config
