package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
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
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		FilingsTopic string   `yaml:"filings_topic" default:"sedi.filings.raw"`
		SignalsTopic string   `yaml:"signals_topic" default:"sedi.signals"`
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
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"sedipull"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database" default:"sedipull"`
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
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	MarketData struct {
		BaseURL  string        `yaml:"base_url"`
		Timeout  time.Duration `yaml:"timeout"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
		// Quote lookups are rate limited to stay under provider quotas.
		MaxPerMinute float64 `yaml:"max_per_minute" default:"30"`
	} `yaml:"marketdata"`
	News struct {
		BaseURL     string        `yaml:"base_url"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxArticles int           `yaml:"max_articles" default:"5"`
		MaxAgeDays  int           `yaml:"max_age_days" default:"14"`
	} `yaml:"news"`
	Commentary struct {
		Enabled   bool          `yaml:"enabled"`
		APIKey    string        `yaml:"api_key"`
		Model     string        `yaml:"model"`
		MaxTokens int           `yaml:"max_tokens" default:"1024"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"commentary"`
	Stream struct {
		URL            string        `yaml:"url"`
		Token          string        `yaml:"token"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Scanner struct {
		Workers  int           `yaml:"workers" default:"1"`
		Interval time.Duration `yaml:"interval" default:"1h"`
		MinDelay time.Duration `yaml:"min_delay"`
		MaxDelay time.Duration `yaml:"max_delay"`
	} `yaml:"scanner"`
	Watchlist []string `yaml:"watchlist"`
	Scoring   Scoring  `yaml:"scoring"`
}

// Scoring is the full engine configuration: every weight, threshold and
// code table the pipeline consults. Injected once at construction and
// treated as immutable for the lifetime of a run.
type Scoring struct {
	// Base scores by buy category.
	PremiumCommonBuy int `yaml:"premium_common_buy" default:"80"`
	MarketBuy        int `yaml:"market_buy" default:"50"`
	PrivateBuy       int `yaml:"private_buy" default:"15"`
	PlanBuy          int `yaml:"plan_buy" default:"5"`

	// Bonuses and penalties.
	RankBonus       int `yaml:"rank_bonus" default:"25"`
	SizeBonus       int `yaml:"size_bonus" default:"20"`
	PremiumBuyBonus int `yaml:"premium_buy_bonus" default:"25"`
	DiscountPenalty int `yaml:"discount_penalty" default:"-30"`
	UptrendBonus    int `yaml:"uptrend_bonus" default:"10"`
	DilutionPenalty int `yaml:"dilution_penalty" default:"-40"`
	ClusterPenalty  int `yaml:"cluster_penalty" default:"-50"`

	// Thresholds.
	LookbackDays           int     `yaml:"lookback_days" default:"30"`
	LargeSize              float64 `yaml:"large_size" default:"50000"`
	SignificantImpactRatio float64 `yaml:"significant_impact_ratio" default:"0.001"`
	USDCADRate             float64 `yaml:"usd_cad_rate" default:"1.40"`
	MinNetCash             float64 `yaml:"min_net_cash" default:"5000"`
	BuyerMinNetCash        float64 `yaml:"buyer_min_net_cash" default:"3000"`
	BuyerMinScore          int     `yaml:"buyer_min_score" default:"15"`
	ActiveScore            int     `yaml:"active_score" default:"20"`
	EscalationTriggerScore int     `yaml:"escalation_trigger_score" default:"90"`

	// Price efficiency bands, relative to live market price.
	PremiumBand  float64 `yaml:"premium_band" default:"0.05"`
	DiscountBand float64 `yaml:"discount_band" default:"0.30"`

	// Anomaly bounds.
	MaxPriceDiscrepancy float64 `yaml:"max_price_discrepancy" default:"5.0"`
	MaxCapImpact        float64 `yaml:"max_cap_impact" default:"0.10"`
	PriceVolTolerance   float64 `yaml:"price_vol_tolerance" default:"1.0"`
	CollisionPriceFloor float64 `yaml:"collision_price_floor" default:"100"`

	// Consensus.
	ClusterStep  float64 `yaml:"cluster_step" default:"0.2"`
	ClusterCap   float64 `yaml:"cluster_cap" default:"2.0"`
	PlanMajority float64 `yaml:"plan_majority" default:"0.5"`

	// Display normalization (sigmoid midpoint and slope).
	DisplayMidpoint float64 `yaml:"display_midpoint" default:"60"`
	DisplaySlope    float64 `yaml:"display_slope" default:"0.05"`

	// Code tables. The mapping changed repeatedly across revisions, so it
	// is data, not logic.
	Codes CodeTables `yaml:"codes"`
}

// CodeTables maps SEDI transaction codes to semantic categories.
type CodeTables struct {
	PublicBuy  []string `yaml:"public_buy" default:"[\"10\"]"`
	PrivateBuy []string `yaml:"private_buy" default:"[\"11\",\"16\"]"`
	PlanBuy    []string `yaml:"plan_buy" default:"[\"30\",\"31\"]"`
	Exercise   []string `yaml:"exercise" default:"[\"51\",\"54\",\"57\",\"59\"]"`
	Grant      []string `yaml:"grant" default:"[\"50\",\"52\",\"53\",\"55\",\"56\"]"`
	Noise      []string `yaml:"noise" default:"[\"90\",\"97\",\"99\",\"00\",\"35\",\"37\",\"38\"]"`
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

	// Fill unset fields, then validate.
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// Default returns a configuration with every default applied and no file
// read. Used by tests and by the engine when embedded as a library.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	c.Environment = "dev"
	return &c
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Commentary.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = strings.Split(v, ",")
	}
	if v := os.Getenv("STREAM_TOKEN"); v != "" {
		c.Stream.Token = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Commentary.Enabled && c.Commentary.APIKey == "" {
		return fmt.Errorf("commentary.api_key is required when commentary is enabled")
	}
	return nil
}

// Validate rejects scoring parameters that would make the pipeline
// degenerate rather than just mistuned.
func (s *Scoring) Validate() error {
	if s.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive, got %d", s.LookbackDays)
	}
	if s.PlanMajority <= 0 || s.PlanMajority >= 1 {
		return fmt.Errorf("plan_majority must be in (0,1), got %v", s.PlanMajority)
	}
	if s.ClusterStep < 0 || s.ClusterCap < 0 {
		return fmt.Errorf("cluster step/cap must be non-negative")
	}
	if s.MaxPriceDiscrepancy <= 1 {
		return fmt.Errorf("max_price_discrepancy must exceed 1, got %v", s.MaxPriceDiscrepancy)
	}
	if s.MaxCapImpact <= 0 || s.MaxCapImpact > 1 {
		return fmt.Errorf("max_cap_impact must be in (0,1], got %v", s.MaxCapImpact)
	}
	if s.USDCADRate <= 0 {
		return fmt.Errorf("usd_cad_rate must be positive, got %v", s.USDCADRate)
	}
	return nil
}

// Watched builds the watchlist lookup set.
func (c *Config) Watched() map[string]bool {
	set := make(map[string]bool, len(c.Watchlist))
	for _, s := range c.Watchlist {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym != "" {
			set[sym] = true
		}
	}
	return set
}
