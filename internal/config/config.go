package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	LLM        LLMConfig
	Defaults   DefaultsConfig
	Extraction ExtractionConfig
	Redis      RedisConfig
	CacheTTLs  CacheTTLConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// LLMConfig describes the hosted model every generation call goes to.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // langchain, openai or gemini
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultsConfig holds the generation parameters used when a request omits them.
type DefaultsConfig struct {
	FlashcardCount     int    `yaml:"flashcard_count"`
	QuizQuestionCount  int    `yaml:"quiz_question_count"`
	ScenarioCount      int    `yaml:"scenario_count"`
	ScenarioDifficulty string `yaml:"scenario_difficulty"`
	SummaryLength      string `yaml:"summary_length"`
}

type ExtractionConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheTTLConfig struct {
	Extraction string `yaml:"extraction"`
}

const (
	ProviderLangchain = "langchain"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

const (
	DefaultProvider    = ProviderLangchain
	DefaultBaseURL     = "https://llm.onerouter.pro/v1"
	DefaultModel       = "gpt-4o"
	DefaultLLMTimeout  = 120 * time.Second
	DefaultMaxFileSize = 10 * 1024 * 1024

	// StreamWriteMargin is the minimum gap kept between the model timeout and
	// the server write timeout.
	StreamWriteMargin = 30 * time.Second
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 180)
	v.SetDefault("server.body_limit", DefaultMaxFileSize+1024*1024)
	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("llm.provider", DefaultProvider)
	v.SetDefault("llm.model", DefaultModel)
	v.SetDefault("llm.timeout", int(DefaultLLMTimeout/time.Second))
	v.SetDefault("defaults.flashcard_count", 10)
	v.SetDefault("defaults.quiz_question_count", 12)
	v.SetDefault("defaults.scenario_count", 10)
	v.SetDefault("defaults.scenario_difficulty", "medium")
	v.SetDefault("defaults.summary_length", "detailed")
	v.SetDefault("extraction.max_file_size", DefaultMaxFileSize)
	v.SetDefault("cache_ttls.extraction", "24h")
}

// LoadConfig reads config.yaml from the usual locations and applies
// environment overrides. A missing config file is not an error; every
// setting has a default except the LLM API key.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Log the config file being used
	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", absPath)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	config := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(v.GetString("llm.provider")),
			BaseURL:  v.GetString("llm.base_url"),
			APIKey:   v.GetString("llm.api_key"),
			Model:    v.GetString("llm.model"),
			Timeout:  time.Duration(v.GetInt("llm.timeout")) * time.Second,
		},
		Defaults: DefaultsConfig{
			FlashcardCount:     v.GetInt("defaults.flashcard_count"),
			QuizQuestionCount:  v.GetInt("defaults.quiz_question_count"),
			ScenarioCount:      v.GetInt("defaults.scenario_count"),
			ScenarioDifficulty: v.GetString("defaults.scenario_difficulty"),
			SummaryLength:      v.GetString("defaults.summary_length"),
		},
		Extraction: ExtractionConfig{
			MaxFileSize: v.GetInt64("extraction.max_file_size"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		CacheTTLs: CacheTTLConfig{
			Extraction: v.GetString("cache_ttls.extraction"),
		},
	}

	// LLM_API_KEY is covered by AutomaticEnv; OPENAI_API_KEY is honored as a fallback
	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	// The gemini SDK knows its own endpoint; the others speak the OpenAI protocol
	if config.LLM.BaseURL == "" && config.LLM.Provider != ProviderGemini {
		config.LLM.BaseURL = DefaultBaseURL
	}
	// The write timeout bounds a whole response, summary streams included,
	// so it must outlast the model call feeding the stream.
	if minWrite := config.LLM.Timeout + StreamWriteMargin; config.LLM.Timeout > 0 && config.Server.WriteTimeout < minWrite {
		config.Server.WriteTimeout = minWrite
	}

	return config
}

// ParseTTLStringOrDefault parses a Go duration string, falling back to
// defaultTTL when it is empty, malformed or not positive.
func (c *Config) ParseTTLStringOrDefault(ttlString string, defaultTTL time.Duration) time.Duration {
	if ttlString == "" {
		return defaultTTL
	}
	d, err := time.ParseDuration(ttlString)
	if err != nil || d <= 0 {
		return defaultTTL
	}
	return d
}
