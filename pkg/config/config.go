package config

import (
	"fmt"
	"os"
	"strings"
	"time"

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
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Upstream struct {
		CoingeckoBaseURL   string        `yaml:"coingecko_base_url"`
		AlternativeBaseURL string        `yaml:"alternative_base_url"`
		Timeout            time.Duration `yaml:"timeout"`
		MaxRetries         int           `yaml:"max_retries"`
		BaseBackoff        time.Duration `yaml:"base_backoff"`
		RateLimit          struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"upstream"`
	Assets struct {
		Primary   string `yaml:"primary"`   // dominance + ladder base, e.g. bitcoin
		Secondary string `yaml:"secondary"` // ratio numerator, e.g. ethereum
	} `yaml:"assets"`
	Cache struct {
		TTL struct {
			Prices    time.Duration `yaml:"prices"`
			Global    time.Duration `yaml:"global"`
			Sentiment time.Duration `yaml:"sentiment"`
			Markets   time.Duration `yaml:"markets"`
			History   time.Duration `yaml:"history"`
		} `yaml:"ttl"`
		MemoryMaxSize int `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Thresholds struct {
		DominanceBreak1     float64 `yaml:"dominance_break_1"`
		DominanceBreak2     float64 `yaml:"dominance_break_2"`
		RatioBreakoutLevel  float64 `yaml:"ratio_breakout_level"`
		SentimentHigh       int     `yaml:"sentiment_high"`
		TechnicalOverbought float64 `yaml:"technical_overbought"`
		ConfluenceModerate  int     `yaml:"confluence_moderate"`
		ConfluenceHigh      int     `yaml:"confluence_high"`
	} `yaml:"thresholds"`
	Ladder struct {
		EntryPrices     map[string]float64 `yaml:"entry_prices"` // per asset id
		StepPct         float64            `yaml:"step_pct"`
		SellPctPerStep  float64            `yaml:"sell_pct_per_step"`
		MaxSteps        int                `yaml:"max_steps"`
		TrailingStopPct *float64           `yaml:"trailing_stop_pct"`
	} `yaml:"ladder"`
	Rotation struct {
		TopN                   int     `yaml:"top_n"`
		TargetAltAllocationPct float64 `yaml:"target_alt_allocation_pct"`
	} `yaml:"rotation"`
	// Technical readings are externally supplied placeholders, not computed
	// here. Absent values leave the dependent signals inactive.
	Technical struct {
		RSI              *float64 `yaml:"rsi"`
		MACDDivergence   *bool    `yaml:"macd_divergence"`
		VolumeDivergence *bool    `yaml:"volume_divergence"`
	} `yaml:"technical"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
	} `yaml:"kafka"`
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
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.Upstream.CoingeckoBaseURL = v
	}
	if v := os.Getenv("ALTERNATIVE_BASE_URL"); v != "" {
		c.Upstream.AlternativeBaseURL = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	return c, nil
}

// applyDefaults fills unset fields with the dashboard's stock parameters.
func (c *Config) applyDefaults() {
	if c.Upstream.CoingeckoBaseURL == "" {
		c.Upstream.CoingeckoBaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Upstream.AlternativeBaseURL == "" {
		c.Upstream.AlternativeBaseURL = "https://api.alternative.me"
	}
	if c.Upstream.Timeout <= 0 {
		c.Upstream.Timeout = 20 * time.Second
	}
	if c.Upstream.MaxRetries <= 0 {
		c.Upstream.MaxRetries = 3
	}
	if c.Upstream.BaseBackoff <= 0 {
		c.Upstream.BaseBackoff = time.Second
	}
	if c.Upstream.RateLimit.Capacity <= 0 {
		c.Upstream.RateLimit.Capacity = 10
	}
	if c.Upstream.RateLimit.RefillPerSec <= 0 {
		c.Upstream.RateLimit.RefillPerSec = 0.5
	}
	if c.Assets.Primary == "" {
		c.Assets.Primary = "bitcoin"
	}
	if c.Assets.Secondary == "" {
		c.Assets.Secondary = "ethereum"
	}
	if c.Cache.TTL.Prices <= 0 {
		c.Cache.TTL.Prices = 60 * time.Second
	}
	if c.Cache.TTL.Global <= 0 {
		c.Cache.TTL.Global = 5 * time.Minute
	}
	if c.Cache.TTL.Sentiment <= 0 {
		c.Cache.TTL.Sentiment = 5 * time.Minute
	}
	if c.Cache.TTL.Markets <= 0 {
		c.Cache.TTL.Markets = 2 * time.Minute
	}
	if c.Cache.TTL.History <= 0 {
		c.Cache.TTL.History = time.Hour
	}
	if c.Cache.MemoryMaxSize <= 0 {
		c.Cache.MemoryMaxSize = 1000
	}
	if c.Thresholds.DominanceBreak1 == 0 {
		c.Thresholds.DominanceBreak1 = 58.29
	}
	if c.Thresholds.DominanceBreak2 == 0 {
		c.Thresholds.DominanceBreak2 = 54.66
	}
	if c.Thresholds.RatioBreakoutLevel == 0 {
		c.Thresholds.RatioBreakoutLevel = 0.054
	}
	if c.Thresholds.SentimentHigh == 0 {
		c.Thresholds.SentimentHigh = 80
	}
	if c.Thresholds.TechnicalOverbought == 0 {
		c.Thresholds.TechnicalOverbought = 70
	}
	if c.Thresholds.ConfluenceModerate == 0 {
		c.Thresholds.ConfluenceModerate = 2
	}
	if c.Thresholds.ConfluenceHigh == 0 {
		c.Thresholds.ConfluenceHigh = 4
	}
	if c.Ladder.StepPct == 0 {
		c.Ladder.StepPct = 10
	}
	if c.Ladder.SellPctPerStep == 0 {
		c.Ladder.SellPctPerStep = 10
	}
	if c.Ladder.MaxSteps == 0 {
		c.Ladder.MaxSteps = 8
	}
	if c.Rotation.TopN == 0 {
		c.Rotation.TopN = 50
	}
	if c.Rotation.TargetAltAllocationPct == 0 {
		c.Rotation.TargetAltAllocationPct = 40
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Thresholds.DominanceBreak1 < 0 || c.Thresholds.DominanceBreak1 > 100 {
		return fmt.Errorf("thresholds.dominance_break_1 must be in [0,100], got %v", c.Thresholds.DominanceBreak1)
	}
	if c.Thresholds.DominanceBreak2 < 0 || c.Thresholds.DominanceBreak2 > 100 {
		return fmt.Errorf("thresholds.dominance_break_2 must be in [0,100], got %v", c.Thresholds.DominanceBreak2)
	}
	if c.Thresholds.SentimentHigh < 0 || c.Thresholds.SentimentHigh > 100 {
		return fmt.Errorf("thresholds.sentiment_high must be in [0,100], got %d", c.Thresholds.SentimentHigh)
	}
	if c.Ladder.StepPct < 1 || c.Ladder.StepPct > 50 {
		return fmt.Errorf("ladder.step_pct must be in [1,50], got %v", c.Ladder.StepPct)
	}
	if c.Ladder.SellPctPerStep < 1 || c.Ladder.SellPctPerStep > 50 {
		return fmt.Errorf("ladder.sell_pct_per_step must be in [1,50], got %v", c.Ladder.SellPctPerStep)
	}
	if c.Ladder.MaxSteps < 1 || c.Ladder.MaxSteps > 30 {
		return fmt.Errorf("ladder.max_steps must be in [1,30], got %d", c.Ladder.MaxSteps)
	}
	if p := c.Ladder.TrailingStopPct; p != nil && (*p < 5 || *p > 50) {
		return fmt.Errorf("ladder.trailing_stop_pct must be in [5,50], got %v", *p)
	}
	if c.Upstream.MaxRetries > 5 {
		return fmt.Errorf("upstream.max_retries must be at most 5, got %d", c.Upstream.MaxRetries)
	}
	if c.Rotation.TopN < 1 || c.Rotation.TopN > 250 {
		return fmt.Errorf("rotation.top_n must be in [1,250], got %d", c.Rotation.TopN)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.Kafka.Enabled && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic required when kafka is enabled")
	}
	return nil
}
