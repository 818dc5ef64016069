package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Footium  FootiumConfig  `yaml:"footium"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Session  SessionConfig  `yaml:"session"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// UpstreamConfig controls the live match subscriptions. MaxMessages bounds
// how many stream messages a connector consumes before closing; it mirrors
// the upstream sampling window, not a "match finished" signal. MaxDuration
// is a hard deadline so a silent upstream cannot hold a subscription open.
type UpstreamConfig struct {
	URL         string        `yaml:"url"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	MaxMessages int           `yaml:"max_messages"`
	MaxDuration time.Duration `yaml:"max_duration"`
}

type FootiumConfig struct {
	GraphQLURL string        `yaml:"graphql_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// OpenAIConfig configures the narrative generator. The API key comes from
// the OPENAI_API_KEY environment variable, never from the config file.
type OpenAIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
	APIKey  string        `yaml:"-"`
}

// KafkaConfig configures the optional classified-event sink. Empty Brokers
// disables it.
type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 5000,
			Host: "0.0.0.0",
		},
		Upstream: UpstreamConfig{
			URL:         "wss://live.api.footium.club/api/graphql",
			DialTimeout: 10 * time.Second,
			MaxMessages: 2,
			MaxDuration: 5 * time.Minute,
		},
		Footium: FootiumConfig{
			GraphQLURL: "https://live.api.footium.club/api/graphql",
			Timeout:    10 * time.Second,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic: "match-events",
		},
		Session: SessionConfig{
			TTL:           2 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")

	return cfg, nil
}

// KafkaEnabled reports whether the classified-event sink is configured.
func (c *Config) KafkaEnabled() bool {
	return c.Kafka.Brokers != ""
}
