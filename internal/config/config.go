package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	StoragePath string `env:"STORAGE_PATH" envDefault:"eventpass.db"`

	Backend Backend `envPrefix:"BACKEND_"`
}

// Backend locates the remote ticketing API.
type Backend struct {
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000/api"`
	// Timeout bounds every request; multipart uploads get UploadTimeout.
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"10s"`
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"60s"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"127.0.0.1"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
