package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database `envPrefix:"DB_"`
	Payment     Payment  `envPrefix:"PAYMENT_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	// Driver selects the gorm dialect: "sqlite" or "mysql".
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	URL    string `env:"URL" envDefault:"storefront.db"`
}

type Payment struct {
	// SessionTTL is how long a buyer has to confirm a pending payment.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	// ProcessingDelay simulates the provider round-trip before the
	// confirmation transaction opens. Zero in tests.
	ProcessingDelay time.Duration `env:"PROCESSING_DELAY" envDefault:"2s"`
}
