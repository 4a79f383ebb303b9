package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Postgres PostgresConfig `yaml:"postgres"`
	Session  SessionConfig  `yaml:"session"`
	Tasks    TasksConfig    `yaml:"tasks"`
}

type ServerConfig struct {
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type PostgresConfig struct {
	Host     string        `yaml:"host" env:"POSTGRES_HOST"`
	Port     string        `yaml:"port" env:"POSTGRES_PORT"`
	DBName   string        `yaml:"dbname" env:"POSTGRES_DB"`
	User     string        `yaml:"user" env:"POSTGRES_USER"`
	Password string        `yaml:"password" env:"POSTGRES_PASSWORD"`
	Timeout  time.Duration `yaml:"timeout" env-default:"30s"`
}

// SessionConfig controls login sessions. TTL applies to a plain login,
// RememberTTL when the "remember me" box is checked.
type SessionConfig struct {
	Secret      string        `yaml:"secret" env:"SESSION_SECRET"`
	CookieName  string        `yaml:"cookie_name" env-default:"task_session"`
	TTL         time.Duration `yaml:"ttl" env-default:"12h"`
	RememberTTL time.Duration `yaml:"remember_ttl" env-default:"336h"`
}

type TasksConfig struct {
	PageSize int `yaml:"page_size" env-default:"10"`
}

func MustLoad() Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	var config Config
	err := cleanenv.ReadConfig(configPath, &config)
	if err != nil {
		log.Fatalf("config not read: %v", err)
	}
	if config.Session.Secret == "" {
		log.Fatal("session secret is not set")
	}
	return config
}
