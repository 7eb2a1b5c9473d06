package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Email     EmailConfig     `mapstructure:"email"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	OEmbed    OEmbedConfig    `mapstructure:"oembed"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`
	WriteTimeout int      `mapstructure:"write_timeout"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	// AnswersPerMinute ограничивает частоту отправки ответов одним пользователем
	AnswersPerMinute int `mapstructure:"answers_per_minute"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт) для всех режимов
	Addrs []string `mapstructure:"addrs"`
	// Addr используется, если Addrs пуст
	Addr string `mapstructure:"addr"`

	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret            string `mapstructure:"secret"`
	ExpirationHrs     int    `mapstructure:"expiration_hrs"`
	WSTicketExpirySec int    `mapstructure:"ws_ticket_expiry_sec"`
}

// EmailConfig содержит настройки отправки писем через Resend.
// Пустой APIKey отключает отправку.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// QuizConfig содержит настройки викторин
type QuizConfig struct {
	DraftTTL time.Duration `mapstructure:"draft_ttl"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// SchedulerConfig содержит расписания фоновых задач
type SchedulerConfig struct {
	LeaderboardSpec string        `mapstructure:"leaderboard_spec"`
	CleanupSpec     string        `mapstructure:"cleanup_spec"`
	StaleAttemptTTL time.Duration `mapstructure:"stale_attempt_ttl"`
	StaleSessionTTL time.Duration `mapstructure:"stale_session_ttl"`
	JobTimeout      time.Duration `mapstructure:"job_timeout"`
}

// OEmbedConfig содержит адреса провайдеров метаданных видео
type OEmbedConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	YouTubeURL string        `mapstructure:"youtube_url"`
	VimeoURL   string        `mapstructure:"vimeo_url"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MigrateURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) MigrateURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// envBindings связывает ключи конфигурации с переменными окружения
var envBindings = map[string]string{
	"server.port":               "SERVER_PORT",
	"server.cors_origins":       "SERVER_CORS_ORIGINS",
	"server.answers_per_minute": "SERVER_ANSWERS_PER_MINUTE",

	"database.host":     "DATABASE_HOST",
	"database.port":     "DATABASE_PORT",
	"database.user":     "DATABASE_USER",
	"database.password": "DATABASE_PASSWORD",
	"database.dbname":   "DATABASE_DBNAME",
	"database.sslmode":  "DATABASE_SSLMODE",

	"redis.mode":        "REDIS_MODE",
	"redis.addrs":       "REDIS_ADDRS",
	"redis.addr":        "REDIS_ADDR",
	"redis.password":    "REDIS_PASSWORD",
	"redis.db":          "REDIS_DB",
	"redis.master_name": "REDIS_MASTER_NAME",

	"jwt.secret":               "JWT_SECRET",
	"jwt.expiration_hrs":       "JWT_EXPIRATION_HRS",
	"jwt.ws_ticket_expiry_sec": "JWT_WS_TICKET_EXPIRY_SEC",

	"email.resend_api_key": "RESEND_API_KEY",
	"email.from":           "EMAIL_FROM",

	"quiz.draft_ttl": "QUIZ_DRAFT_TTL",
	"quiz.cache_ttl": "QUIZ_CACHE_TTL",

	"scheduler.leaderboard_spec":  "SCHEDULER_LEADERBOARD_SPEC",
	"scheduler.cleanup_spec":      "SCHEDULER_CLEANUP_SPEC",
	"scheduler.stale_attempt_ttl": "SCHEDULER_STALE_ATTEMPT_TTL",
	"scheduler.stale_session_ttl": "SCHEDULER_STALE_SESSION_TTL",

	"oembed.timeout": "OEMBED_TIMEOUT",

	"gin_mode": "GIN_MODE",
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 15)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	vip.SetDefault("server.answers_per_minute", 60)

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")

	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")

	vip.SetDefault("jwt.expiration_hrs", 24)
	vip.SetDefault("jwt.ws_ticket_expiry_sec", 60)

	vip.SetDefault("email.from", "LMS <noreply@lms.local>")

	vip.SetDefault("quiz.draft_ttl", 7*24*time.Hour)
	vip.SetDefault("quiz.cache_ttl", 10*time.Minute)

	// cron с секундами
	vip.SetDefault("scheduler.leaderboard_spec", "0 */15 * * * *")
	vip.SetDefault("scheduler.cleanup_spec", "0 30 3 * * *")
	vip.SetDefault("scheduler.stale_attempt_ttl", 48*time.Hour)
	vip.SetDefault("scheduler.stale_session_ttl", 30*24*time.Hour)
	vip.SetDefault("scheduler.job_timeout", time.Minute)

	vip.SetDefault("oembed.timeout", 5*time.Second)
}

// Load загружает конфигурацию из файла и переменных окружения.
// Переменные из .env подхватываются, если файл существует.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[Config] Предупреждение: не удалось прочитать .env: %v", err)
	}

	vip := viper.New()
	setDefaults(vip)

	for key, env := range envBindings {
		if err := vip.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				log.Printf("[Config] Файл конфигурации '%s' не найден, используются переменные окружения", configPath)
			} else {
				log.Printf("[Config] Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ginMode := vip.GetString("gin_mode")
	if ginMode != "release" {
		log.Printf("[Config] database=%s:%s/%s redis=%s(%s) port=%s email=%t",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName,
			cfg.Redis.Addr, cfg.Redis.Mode, cfg.Server.Port, cfg.Email.ResendAPIKey != "")
	}

	if err := cfg.validate(ginMode); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate(ginMode string) error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if ginMode != "debug" && c.Database.Password == "" {
		return fmt.Errorf("database password is required outside debug mode (check DATABASE_PASSWORD env var)")
	}
	return nil
}
