package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	TInvest struct {
		Token          string        `yaml:"token"`
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Tickers        []string      `yaml:"tickers"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		RateLimit      int           `yaml:"rate_limit"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"tinvest"`
	Scanner struct {
		MinGap    float64 `yaml:"min_gap"`
		TickSize  float64 `yaml:"tick_size"`
		Timeframe string  `yaml:"timeframe"`
		RunAt     string  `yaml:"run_at"`
	} `yaml:"scanner"`
	Report struct {
		Dir     string   `yaml:"dir"`
		Formats []string `yaml:"formats"`
	} `yaml:"report"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		CacheTTL struct {
			Candles  time.Duration `yaml:"candles"`
			Patterns time.Duration `yaml:"patterns"`
		} `yaml:"cache_ttl"`
		Queue struct {
			Stream  string `yaml:"stream"`
			Group   string `yaml:"group"`
			Workers int    `yaml:"workers"`
		} `yaml:"queue"`
	} `yaml:"redis"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("TINKOFF_TOKEN"); v != "" {
		c.TInvest.Token = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.TInvest.Tickers = strings.Split(v, ",")
	}
	if v := os.Getenv("MIN_GAP"); v != "" {
		g, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse MIN_GAP: %w", err)
		}
		c.Scanner.MinGap = g
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REPORT_DIR"); v != "" {
		c.Report.Dir = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Scanner.MinGap == 0 {
		c.Scanner.MinGap = 0.10
	}
	if c.Scanner.TickSize == 0 {
		c.Scanner.TickSize = 0.01
	}
	if c.Scanner.Timeframe == "" {
		c.Scanner.Timeframe = "5m"
	}
	if c.TInvest.RequestTimeout == 0 {
		c.TInvest.RequestTimeout = 30 * time.Second
	}
	if c.TInvest.RateLimit == 0 {
		c.TInvest.RateLimit = 100
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	if len(c.Report.Formats) == 0 {
		c.Report.Formats = []string{"csv", "md"}
	}
	if c.Redis.Queue.Workers == 0 {
		c.Redis.Queue.Workers = 4
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.TInvest.Token == "" {
		return fmt.Errorf("tinvest.token is required")
	}
	if len(c.TInvest.Tickers) == 0 {
		return fmt.Errorf("tinvest.tickers cannot be empty")
	}
	if c.Scanner.MinGap < 0 {
		return fmt.Errorf("scanner.min_gap must be non-negative, got %v", c.Scanner.MinGap)
	}
	if c.Scanner.TickSize <= 0 {
		return fmt.Errorf("scanner.tick_size must be positive, got %v", c.Scanner.TickSize)
	}
	if c.Scanner.RunAt != "" {
		if _, err := time.Parse("15:04", c.Scanner.RunAt); err != nil {
			return fmt.Errorf("scanner.run_at must be HH:MM, got %q", c.Scanner.RunAt)
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka.topic is required when kafka is enabled")
		}
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	return nil
}
