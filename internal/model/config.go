package model

import "time"

// Version is the scaleproof release version
const Version = "0.1.0"

// DefaultUserAgent identifies scaleproof to the sources it checks
const DefaultUserAgent = "Scaleproof/0.1 (+https://github.com/ppiankov/scaleproof)"

// Config is the complete scaleproof configuration
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Validation   ValidationConfig   `yaml:"validation" mapstructure:"validation"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// HTTPConfig controls every outbound request
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per request
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ValidationConfig holds retry policy and the tunable heuristic thresholds
type ValidationConfig struct {
	RetryAttempts       int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryDelay          time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`
	KeywordThreshold    float64       `yaml:"keyword_threshold" mapstructure:"keyword_threshold"`       // Share of title keywords a page must contain
	ConfidenceThreshold float64       `yaml:"confidence_threshold" mapstructure:"confidence_threshold"` // Minimum search confidence to count as a confirmation
	DiversityLimit      float64       `yaml:"diversity_limit" mapstructure:"diversity_limit"`           // Max share of verified scales one source may back
	PerformanceTarget   time.Duration `yaml:"performance_target" mapstructure:"performance_target"`
	SkipPreflight       bool          `yaml:"skip_preflight" mapstructure:"skip_preflight"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Batch         bool `yaml:"batch" mapstructure:"batch"`
	BatchSize     int  `yaml:"batch_size" mapstructure:"batch_size"`
	ProbeWorkers  int  `yaml:"probe_workers" mapstructure:"probe_workers"`
	SearchWorkers int  `yaml:"search_workers" mapstructure:"search_workers"`
}

// RateLimitingConfig controls per-host politeness
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables limiting
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls caching of fetched citation pages
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"` // Empty keeps the cache in memory only
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// SearchConfig selects the search capability used for internet verification
type SearchConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`                 // reference, http, llm
	Endpoint   string `yaml:"endpoint,omitempty" mapstructure:"endpoint"`       // http provider URL template with {query} and {site}
	ResultPath string `yaml:"result_path,omitempty" mapstructure:"result_path"` // gjson path to the hit array
	APIKey     string `yaml:"-" mapstructure:"api_key"`                         // Sent as a bearer token
}

// LLMConfig configures the LLM-backed search provider
type LLMConfig struct {
	Provider  string `yaml:"provider,omitempty" mapstructure:"provider"` // openai, anthropic, ollama
	Model     string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls report output and progress
type OutputConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`
	Format   string `yaml:"format" mapstructure:"format"` // json, markdown, html, both, all
	Verbose  bool   `yaml:"verbose" mapstructure:"verbose"`
	Progress bool   `yaml:"progress" mapstructure:"progress"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 2_000_000,
		},
		Validation: ValidationConfig{
			RetryAttempts:       3,
			RetryDelay:          time.Second,
			KeywordThreshold:    0.6,
			ConfidenceThreshold: 0.5,
			DiversityLimit:      0.4,
			PerformanceTarget:   30 * time.Second,
		},
		Concurrency: ConcurrencyConfig{
			BatchSize:     10,
			ProbeWorkers:  8,
			SearchWorkers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Search: SearchConfig{
			Provider: "reference",
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 300,
		},
		Output: OutputConfig{
			Dir:      "./scaleproof-reports",
			Format:   "both",
			Progress: true,
		},
	}
}
