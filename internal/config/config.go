package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrConfigPathIsEmpty = errors.New("config path is empty")

const masked = "******"

type Config struct {
	App         `yaml:"app"`
	Logger      `yaml:"log"`
	Database    `yaml:"database"`
	Redis       `yaml:"redis"`
	HTTPServer  `yaml:"http_server"`
	Elastic     `yaml:"elastic"`
	Broker      `yaml:"broker"`
	Publisher   `yaml:"publisher"`
	Subscribers `yaml:"subscribers"`
	Realtime    `yaml:"realtime"`
}

type App struct {
	ServiceName string `yaml:"service_name" env:"APP_SERVICE_NAME" env-default:"taskhub"`
	Version     string `yaml:"version"      env:"APP_VERSION"      env-default:"0.1.0"`
}

type Logger struct {
	Level      string   `yaml:"level"       env:"LOG_LEVEL" env-default:"info"`
	FormatJSON bool     `yaml:"format_json" env:"LOG_FORMAT_JSON"`
	Rotation   Rotation `yaml:"rotation"`
}

type Rotation struct {
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

type Database struct {
	Host      string    `yaml:"host"      env:"DB_HOST"     env-default:"localhost"`
	Port      uint16    `yaml:"port"      env:"DB_PORT"     env-default:"5432"`
	User      string    `yaml:"user"      env:"DB_USER"`
	Password  string    `yaml:"password"  env:"DB_PASSWORD"`
	Name      string    `yaml:"name"      env:"DB_NAME"`
	SSLMode   string    `yaml:"ssl_mode"  env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns  int32     `yaml:"max_conns" env-default:"10"`
	MinConns  int32     `yaml:"min_conns" env-default:"1"`
	Migration Migration `yaml:"migration"`
}

type Migration struct {
	Path      string `yaml:"path"       env-default:"migrations"`
	AutoApply bool   `yaml:"auto_apply" env:"DB_MIGRATION_AUTO_APPLY"`
}

type Redis struct {
	Enable   bool   `yaml:"enable"   env:"REDIS_ENABLE"`
	Host     string `yaml:"host"     env:"REDIS_HOST"     env-default:"localhost"`
	Port     uint16 `yaml:"port"     env:"REDIS_PORT"     env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"REDIS_DB"`
}

type HTTPServer struct {
	Host     string  `yaml:"host"      env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port     uint16  `yaml:"port"      env:"HTTP_PORT" env-default:"8080"`
	BasePath string  `yaml:"base_path" env-default:"/api"`
	Timeout  Timeout `yaml:"timeout"`
	CORS     CORS    `yaml:"cors"`
	JWT      JWT     `yaml:"jwt"`
}

type Timeout struct {
	Request time.Duration `yaml:"request" env-default:"10s"`
	Read    time.Duration `yaml:"read"    env-default:"5s"`
	Write   time.Duration `yaml:"write"   env-default:"10s"`
	Idle    time.Duration `yaml:"idle"    env-default:"60s"`
}

type CORS struct {
	Enabled          bool          `yaml:"enabled"`
	AllowAllOrigins  bool          `yaml:"allow_all_origins"`
	AllowOrigins     []string      `yaml:"allow_origins"`
	AllowMethods     []string      `yaml:"allow_methods"`
	AllowHeaders     []string      `yaml:"allow_headers"`
	ExposeHeaders    []string      `yaml:"expose_headers"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age"`
	AllowWebSockets  bool          `yaml:"allow_websockets"`
	AllowFiles       bool          `yaml:"allow_files"`
}

// JWT tokens are issued elsewhere, only the public key is needed to verify them.
type JWT struct {
	PublicKeyPath string `yaml:"public_key_path" env:"JWT_PUBLIC_KEY_PATH"`
}

type Elastic struct {
	Enable    bool          `yaml:"enable"    env:"ELASTIC_ENABLE"`
	Addresses []string      `yaml:"addresses" env:"ELASTIC_ADDRESSES" env-separator:","`
	Username  string        `yaml:"username"  env:"ELASTIC_USERNAME"`
	Password  string        `yaml:"password"  env:"ELASTIC_PASSWORD"`
	CloudID   string        `yaml:"cloud_id"`
	APIKey    string        `yaml:"api_key"   env:"ELASTIC_API_KEY"`
	Timeout   time.Duration `yaml:"timeout"   env-default:"5s"`
}

type Broker struct {
	Driver     string   `yaml:"driver"      env:"BROKER_DRIVER" env-default:"memory"`
	Topic      string   `yaml:"topic"       env:"BROKER_TOPIC"  env-default:"taskhub.events"`
	BufferSize int      `yaml:"buffer_size" env-default:"1000"`
	Kafka      Kafka    `yaml:"kafka"`
	RabbitMQ   RabbitMQ `yaml:"rabbitmq"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
}

type RabbitMQ struct {
	URL      string `yaml:"url"      env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env-default:"taskhub.events"`
	Prefetch int    `yaml:"prefetch" env-default:"50"`
}

type Publisher struct {
	Name         string        `yaml:"name"          env-default:"outbox"`
	PollInterval time.Duration `yaml:"poll_interval" env-default:"1s"`
	BatchSize    int           `yaml:"batch_size"    env-default:"1000"`
	LockKey      string        `yaml:"lock_key"`
	LockTTL      time.Duration `yaml:"lock_ttl"      env-default:"30s"`
	Breaker      Breaker       `yaml:"breaker"`
}

type Breaker struct {
	MaxRequests      uint32        `yaml:"max_requests"      env-default:"1"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"           env-default:"30s"`
	ConsecutiveFails uint32        `yaml:"consecutive_fails" env-default:"5"`
}

type Subscribers struct {
	Notification Subscriber `yaml:"notification"`
	Activity     Subscriber `yaml:"activity"`
	Feed         Subscriber `yaml:"feed"`
	Search       Subscriber `yaml:"search"`
	Audit        Subscriber `yaml:"audit"`
}

type Subscriber struct {
	Name          string        `yaml:"name"`
	Enabled       bool          `yaml:"enabled"`
	WorkerCount   int           `yaml:"worker_count"   env-default:"1"`
	BufferSize    int           `yaml:"buffer_size"    env-default:"100"`
	HandleTimeout time.Duration `yaml:"handle_timeout" env-default:"30s"`
}

type Realtime struct {
	Channel    string        `yaml:"channel"     env-default:"taskhub:realtime"`
	WriteWait  time.Duration `yaml:"write_wait"  env-default:"10s"`
	PongWait   time.Duration `yaml:"pong_wait"   env-default:"60s"`
	SendBuffer int           `yaml:"send_buffer" env-default:"256"`
}

func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	return cfg
}

func LoadConfig() (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	path := fetchConfigPath()
	if path == "" {
		return nil, ErrConfigPathIsEmpty
	}

	return LoadConfigFromFile(path)
}

// LoadConfigFromFile reads the yaml file at path, environment variables override it.
func LoadConfigFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var config Config

	if err := cleanenv.ReadConfig(path, &config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if config.Publisher.LockKey == "" {
		config.Publisher.LockKey = "lock:outbox:" + config.Publisher.Name
	}

	return &config, nil
}

func MustPrintConfig(cfg *Config) {
	if err := PrintConfig(cfg); err != nil {
		panic(err)
	}
}

func PrintConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg.redacted())
	if err != nil {
		return err
	}

	println(string(data))

	return nil
}

func (c *Config) redacted() Config {
	cp := *c

	if cp.Database.Password != "" {
		cp.Database.Password = masked
	}

	if cp.Redis.Password != "" {
		cp.Redis.Password = masked
	}

	if cp.Elastic.Password != "" {
		cp.Elastic.Password = masked
	}

	if cp.Elastic.APIKey != "" {
		cp.Elastic.APIKey = masked
	}

	if cp.Broker.RabbitMQ.URL != "" {
		cp.Broker.RabbitMQ.URL = masked
	}

	return cp
}

func fetchConfigPath() string {
	var result string

	flag.StringVar(&result, "config", "", "Path to config file")
	flag.Parse()

	if result == "" {
		result = os.Getenv("CONFIG_PATH")
	}

	return result
}
