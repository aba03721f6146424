package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env-default:"local"`
	DSN     string        `yaml:"dsn" env:"DSN" env-required:"true"`
	HTTP    HTTPConfig    `yaml:"http"`
	Redis   RedisConf     `yaml:"redis"`
	Session SessionConfig `yaml:"session"`
	Backend BackendConfig `yaml:"backend"`
	AI      AIConfig      `yaml:"ai"`
	Mailer  MailerConfig  `yaml:"mailer"`
	Cache   CacheConfig   `yaml:"cache"`
	Drafts  DraftsConfig  `yaml:"drafts"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret" env:"SESSION_SECRET" env-required:"true"`
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL   time.Duration `yaml:"token_ttl" env-default:"24h"`
	CookieName string        `yaml:"cookie_name" env-default:"storyadmin_session"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url" env:"BACKEND_URL" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

type AIConfig struct {
	WebhookURL string        `yaml:"webhook_url" env:"AI_WEBHOOK_URL"`
	Timeout    time.Duration `yaml:"timeout" env-default:"120s"`
}

type MailerConfig struct {
	ProviderURL string `yaml:"provider_url" env:"MAILER_URL"`
	APIKey      string `yaml:"api_key" env:"MAILER_API_KEY"`
	Sender      string `yaml:"sender"`
}

type CacheConfig struct {
	StoryTTL time.Duration `yaml:"story_ttl" env-default:"5m"`
}

type DraftsConfig struct {
	MaxEntries int           `yaml:"max_entries" env-default:"10"`
	Retention  time.Duration `yaml:"retention" env-default:"336h"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
