package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	AppName            string
	Build              string
	Env                string
	Debug              bool
	TestMode           bool
	SecretKey          string
	DefaultFromEmail   string
	SendgridApiKey     string
	RollbarToken       string
	LogLevel           string
	EmailNotifications bool

	Server struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration // 0: tokens never expire
	}

	Storage struct {
		Driver string
		Dir    string
	}

	Database struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Payment struct {
		Delay   time.Duration
		Timeout time.Duration
	}

	Upload struct {
		Delay   time.Duration
		Timeout time.Duration
	}

	Kafka struct {
		Brokers  []string
		Topic    string
		Username string
		Password string
	}
}

func (c *Config) DefaultFromAddress() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
	}
	return *addr
}

func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0 && c.Kafka.Topic != ""
}

func (c *Config) DatabaseAddress() string {
	return net.JoinHostPort(c.Database.Host, c.Database.Port)
}

// NewConfig reads the configuration from the environment, optionally loading `config/.env.<env>` first.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("app_name", "SkillX")
	v.SetDefault("build", "develop")
	v.SetDefault("secret_key", "sk1llx-dev-2q$v+e7!kq9#p0m@w8x*f4l&z6r)c3t(y5u")
	v.SetDefault("default_from_email", "SkillX <noreply@localhost>")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("log_level", "debug")
	v.SetDefault("email_notifications", false)
	v.SetDefault("server_host", ":8000")
	v.SetDefault("server_debug_host", ":4000")
	v.SetDefault("server_shutdown_timeout", 5*time.Second)
	v.SetDefault("jwt_expiration_delta", time.Duration(0))
	v.SetDefault("storage_driver", StorageMemory)
	v.SetDefault("storage_dir", "data")
	v.SetDefault("database_engine", "postgres")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", "5432")
	v.SetDefault("database_name", "skillx")
	v.SetDefault("database_user", "skillx")
	v.SetDefault("database_password", "skillx")
	v.SetDefault("database_admin_user", "postgres")
	v.SetDefault("database_admin_password", "postgres")
	v.SetDefault("database_disable_tls", true)
	v.SetDefault("payment_delay", 2*time.Second)
	v.SetDefault("payment_timeout", 30*time.Second)
	v.SetDefault("upload_delay", 1500*time.Millisecond)
	v.SetDefault("upload_timeout", 30*time.Second)
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "skillx.events")
	v.SetDefault("kafka_username", "")
	v.SetDefault("kafka_password", "")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		AppName:            v.GetString("app_name"),
		Build:              v.GetString("build"),
		Env:                env,
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("test_mode"),
		SecretKey:          v.GetString("secret_key"),
		DefaultFromEmail:   v.GetString("default_from_email"),
		SendgridApiKey:     v.GetString("sendgrid_api_key"),
		RollbarToken:       v.GetString("rollbar_token"),
		LogLevel:           v.GetString("log_level"),
		EmailNotifications: v.GetBool("email_notifications"),
	}
	conf.Server.Host = v.GetString("server_host")
	conf.Server.DebugHost = v.GetString("server_debug_host")
	conf.Server.ShutdownTimeout = v.GetDuration("server_shutdown_timeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwt_expiration_delta")

	conf.Storage.Driver = strings.ToLower(v.GetString("storage_driver"))
	conf.Storage.Dir = v.GetString("storage_dir")

	conf.Database.Engine = v.GetString("database_engine")
	conf.Database.Host = v.GetString("database_host")
	conf.Database.Port = v.GetString("database_port")
	conf.Database.Name = v.GetString("database_name")
	conf.Database.User = v.GetString("database_user")
	conf.Database.Password = v.GetString("database_password")
	conf.Database.AdminUser = v.GetString("database_admin_user")
	conf.Database.AdminPassword = v.GetString("database_admin_password")
	conf.Database.DisableTLS = v.GetBool("database_disable_tls")

	conf.Payment.Delay = v.GetDuration("payment_delay")
	conf.Payment.Timeout = v.GetDuration("payment_timeout")
	conf.Upload.Delay = v.GetDuration("upload_delay")
	conf.Upload.Timeout = v.GetDuration("upload_timeout")

	conf.Kafka.Brokers = splitList(v.GetString("kafka_brokers"))
	conf.Kafka.Topic = v.GetString("kafka_topic")
	conf.Kafka.Username = v.GetString("kafka_username")
	conf.Kafka.Password = v.GetString("kafka_password")
	return conf
}

// NewTestConfig returns the configuration used by tests: no delays, no external services.
func NewTestConfig() *Config {
	conf := &Config{
		AppName:          "SkillX",
		Build:            "test",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret",
		DefaultFromEmail: "SkillX <noreply@test.local>",
		LogLevel:         "disabled",
	}
	conf.Server.ShutdownTimeout = time.Second
	conf.Storage.Driver = StorageMemory
	conf.Payment.Timeout = time.Second
	conf.Upload.Timeout = time.Second
	return conf
}

func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = CleanString(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
