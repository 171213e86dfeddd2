// Package config loads the scoring profile and tool settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"

	"github.com/datar-psa/answereval/composite"
	"github.com/datar-psa/answereval/heuristic"
)

// EnvPrefix prefixes every environment override, e.g. ANSWEREVAL_CONCURRENCY
const EnvPrefix = "ANSWEREVAL_"

// Pattern is a named technical term class
type Pattern struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
	// WordBounded drops matches touching a Unicode letter, digit or underscore
	WordBounded bool `yaml:"word_bounded"`
}

// Extraction tunes keyword and technical term extraction
type Extraction struct {
	// StopWords replaces the default stop words when set
	StopWords      []string `yaml:"stop_words" env:"STOP_WORDS"`
	ExtraStopWords []string `yaml:"extra_stop_words" env:"EXTRA_STOP_WORDS"`
	// MinKeywordLength drops keywords of at most this many runes
	MinKeywordLength int `yaml:"min_keyword_length" env:"MIN_KEYWORD_LENGTH"`
	// TechnicalPatterns replaces the default term classes when set
	TechnicalPatterns      []Pattern `yaml:"technical_patterns"`
	ExtraTechnicalPatterns []Pattern `yaml:"extra_technical_patterns"`
	// SequenceAutoJunk reproduces scores computed with Python difflib defaults
	SequenceAutoJunk bool `yaml:"sequence_autojunk" env:"SEQUENCE_AUTOJUNK"`
}

// Log selects the log level and format
type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Collector configures answer collection
type Collector struct {
	ServiceURL     string        `yaml:"service_url" env:"SERVICE_URL"`
	Question       string        `yaml:"question" env:"QUESTION"`
	Delay          time.Duration `yaml:"delay" env:"DELAY"`
	MaxTries       uint          `yaml:"max_tries" env:"MAX_TRIES"`
	GeminiModel    string        `yaml:"gemini_model" env:"GEMINI_MODEL"`
	GoogleProject  string        `yaml:"google_project" env:"GOOGLE_PROJECT"`
	GoogleLocation string        `yaml:"google_location" env:"GOOGLE_LOCATION"`
}

// Config is the complete tool configuration
type Config struct {
	// Weights replaces the whole table when present, so a weights section must list all five
	Weights    composite.Weights `yaml:"weights" envPrefix:"WEIGHT_"`
	Extraction Extraction        `yaml:"extraction" envPrefix:"EXTRACTION_"`
	// Concurrency bounds parallel scoring; 0 means GOMAXPROCS
	Concurrency int       `yaml:"concurrency" env:"CONCURRENCY"`
	SkipInvalid bool      `yaml:"skip_invalid" env:"SKIP_INVALID"`
	Log         Log       `yaml:"log" envPrefix:"LOG_"`
	Collector   Collector `yaml:"collector" envPrefix:"COLLECTOR_"`
}

// Default returns the reference scoring profile and tool defaults
func Default() Config {
	return Config{
		Weights: composite.DefaultWeights(),
		Extraction: Extraction{
			MinKeywordLength: heuristic.DefaultExtractionConfig().MinKeywordLength,
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
		Collector: Collector{
			ServiceURL: "http://localhost:9000",
			Delay:      time.Second,
			MaxTries:   3,
		},
	}
}

// Load reads path (optional, empty means defaults only) and then applies ANSWEREVAL_ environment overrides
func Load(path string) (*Config, error) {
	return load(path, env.Options{Prefix: EnvPrefix})
}

// LoadWithEnv is Load with an explicit environment instead of the process one
func LoadWithEnv(path string, environ map[string]string) (*Config, error) {
	return load(path, env.Options{Prefix: EnvPrefix, Environment: environ})
}

func load(path string, opts env.Options) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse overlays YAML data onto cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	if len(data) == 0 {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// Validate checks that the configuration can build a scorer
func (c *Config) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.Extraction.MinKeywordLength < 0 {
		return fmt.Errorf("min_keyword_length must not be negative, got %d", c.Extraction.MinKeywordLength)
	}
	if _, err := c.Composite(); err != nil {
		return err
	}
	return nil
}

// Composite builds the scorer configuration: weights and compiled extraction settings
func (c *Config) Composite() (composite.Config, error) {
	if err := c.Weights.Validate(); err != nil {
		return composite.Config{}, err
	}

	extraction, err := c.Extraction.compile()
	if err != nil {
		return composite.Config{}, err
	}
	return composite.Config{Weights: c.Weights, Extraction: extraction}, nil
}

func (e Extraction) compile() (heuristic.ExtractionConfig, error) {
	cfg := heuristic.DefaultExtractionConfig()
	cfg.MinKeywordLength = e.MinKeywordLength
	cfg.SequenceAutoJunk = e.SequenceAutoJunk

	if len(e.StopWords) > 0 {
		cfg.StopWords = make(map[string]struct{}, len(e.StopWords))
	}
	for _, w := range append(append([]string(nil), e.StopWords...), e.ExtraStopWords...) {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			cfg.StopWords[w] = struct{}{}
		}
	}

	if len(e.TechnicalPatterns) > 0 {
		cfg.TechnicalPatterns = nil
	}
	for _, p := range append(append([]Pattern(nil), e.TechnicalPatterns...), e.ExtraTechnicalPatterns...) {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return heuristic.ExtractionConfig{}, fmt.Errorf("technical pattern %q: %w", p.Name, err)
		}
		cfg.TechnicalPatterns = append(cfg.TechnicalPatterns, heuristic.TermPattern{Name: p.Name, Pattern: re, WordBounded: p.WordBounded})
	}
	return cfg, nil
}
