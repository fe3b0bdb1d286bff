package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name        string
	Env         string
	FrontendURL string
	HTTP        HTTP
	Admin       AdminHTTP
}

type Log struct {
	Level      string
	JSON       bool
	File       string // empty: stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type JWT struct {
	Secret       string
	Issuer       string
	CookieSecure bool
}

type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	ItemTTLSec int    `mapstructure:"itemttlsec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mail struct {
	Driver   string // "smtp" or "log"
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type S3 struct {
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

type Security struct {
	BcryptCost     int
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int64
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Mail     Mail
	S3       S3
	Security Security
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.name", "sick-fits")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.frontendurl", "http://localhost:7777")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 4444)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 4445)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 7)
	v.SetDefault("log.maxagedays", 30)
	v.SetDefault("jwt.issuer", "sick-fits")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:sickfits.db?cache=shared")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("redis.itemttlsec", 60)
	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "billy@billybunn.com")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.ratelimitrps", 200)
	v.SetDefault("security.ratelimitburst", 400)
	v.SetDefault("security.maxconcurrent", 300)
}

// Load reads the YAML file at path (CONFIG_PATH, then the local default) and
// overlays APP_* environment variables. The variables the storefront has
// always used (APP_SECRET, FRONTEND_URL, MAIL_FROM) are bound explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("jwt.secret", "APP_JWT_SECRET", "APP_SECRET")
	_ = v.BindEnv("app.frontendurl", "APP_APP_FRONTENDURL", "FRONTEND_URL")
	_ = v.BindEnv("mail.from", "APP_MAIL_FROM", "MAIL_FROM")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret (APP_SECRET) is required")
	}
	switch c.Mail.Driver {
	case "smtp":
		if c.Mail.Host == "" {
			return fmt.Errorf("config: mail.host is required for the smtp driver")
		}
	case "log", "":
	default:
		return fmt.Errorf("config: unknown mail.driver %q", c.Mail.Driver)
	}
	return nil
}

func (c *Config) IsProd() bool { return c.App.Env == "prod" }
