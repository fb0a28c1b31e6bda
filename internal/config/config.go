// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
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
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Delivery                `yaml:"delivery"`
	Scheduler               `yaml:"scheduler"`
	Defaults                `yaml:"defaults"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// RateLimit допустимое число запросов участника в секунду.
	RateLimit float64 `yaml:"rate_limit" env-default:"10"`
	RateBurst int     `yaml:"rate_burst" env-default:"20"`
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
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// RabbitMQ настройки подключения к брокеру уведомлений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP настройки почтового сервера для рассылки уведомлений.
type SMTP struct {
	SMTPHost     string `yaml:"host"`
	SMTPPort     int    `yaml:"port"`
	SMTPUser     string `yaml:"user"`
	SMTPPassword string `yaml:"password"`
}

// Delivery описывает недельный ритм выдачи.
type Delivery struct {
	// DeliveryWeekday день выдачи по ISO, от 1 (понедельник) до 7 (воскресенье).
	DeliveryWeekday int `yaml:"weekday" env-default:"3"`
	// EveryFourWeeksAnchor дата, от которой отсчитываются выдачи раз в четыре недели (YYYY-MM-DD).
	EveryFourWeeksAnchor string `yaml:"every_four_weeks_anchor"`
	// JokerChangeNoticeDays за сколько дней до выдачи закрываются изменения джокеров.
	JokerChangeNoticeDays int `yaml:"joker_change_notice_days" env-default:"6"`
}

// Weekday возвращает день выдачи в виде time.Weekday.
func (d Delivery) Weekday() time.Weekday {
	return time.Weekday(d.DeliveryWeekday % 7)
}

// Scheduler настройки периодической генерации платежей.
type Scheduler struct {
	PaymentsSchedule string `yaml:"payments_schedule" env-default:"0 3 1 * *"`
}

// Defaults значения параметров, если они не заданы в базе данных.
type Defaults struct {
	JokersEnabled            bool   `yaml:"jokers_enabled"`
	MaxJokersPerContract     int    `yaml:"max_jokers_per_contract"`
	JokerRestrictions        string `yaml:"joker_restrictions"`
	PaymentDueDay            int    `yaml:"payment_due_day" env-default:"15"`
	PickupLocationChangeDays int    `yaml:"pickup_location_change_notice_days" env-default:"7"`
	DefaultNoticePeriod      int    `yaml:"default_notice_period" env-default:"2"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из config/config.go
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

// FourWeeksAnchor разбирает дату отсчёта цикла «раз в четыре недели».
// Пустое значение означает, что цикл не настроен.
func (d Delivery) FourWeeksAnchor() (time.Time, error) {
	if d.EveryFourWeeksAnchor == "" {
		return time.Time{}, nil
	}
	anchor, err := time.Parse(time.DateOnly, d.EveryFourWeeksAnchor)
	if err != nil {
		return time.Time{}, fmt.Errorf("config.FourWeeksAnchor: %w", err)
	}
	return anchor, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Delivery:\n"+
			"  Weekday: %d\n"+
			"  EveryFourWeeksAnchor: %s\n"+
			"Scheduler:\n"+
			"  PaymentsSchedule: %s\n",
		c.Env,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.DeliveryWeekday,
		c.EveryFourWeeksAnchor,
		c.PaymentsSchedule,
	)
}
