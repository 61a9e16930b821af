// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	StorageRoot             string `yaml:"storage_root" env:"STORAGE_ROOT" env-default:"./data/documents"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RabbitConnection        string        `yaml:"rabbit_connection" env:"RABBIT_CONNECTION"`
	RabbitMaxRetries        int           `yaml:"rabbit_max_retries" env:"RABBIT_MAX_RETRIES" env-default:"5"`
	RabbitRetryDelay        time.Duration `yaml:"rabbit_retry_delay" env:"RABBIT_RETRY_DELAY" env-default:"3s"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Approval                `yaml:"approval"`
	DefaultAdmin            `yaml:"default_admin"`
	SMTP                    `yaml:"smtp"`
}

// SMTP настройки почтового сервера для писем воркера уведомлений
type SMTP struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8752"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Approval параметры workflow одобрения скачиваний.
// ApprovalTTL — срок действия одобренной заявки, параметр развертывания.
type Approval struct {
	ApprovalTTL time.Duration `yaml:"approval_ttl" env:"APPROVAL_TTL" env-default:"72h"`
}

// DefaultAdmin учетные данные администратора, создаваемого при первом запуске
type DefaultAdmin struct {
	AdminEmail    string `yaml:"admin_email" env:"DEFAULT_ADMIN_EMAIL" env-default:"admin@docvault.local"`
	AdminUsername string `yaml:"admin_username" env:"DEFAULT_ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `yaml:"admin_password" env:"DEFAULT_ADMIN_PASSWORD" env-default:"admin123"`
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"StorageRoot: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"Approval:\n"+
			"  ApprovalTTL: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.StorageRoot,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.ApprovalTTL,
	)
}
