package config

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed defaults.yaml
var defaults []byte

type Config struct {
	Port                   int
	LogLevel               string
	LogFormat              string
	DatabaseURL            string
	NatsURL                string
	NatsToken              string
	RedisURL               string
	ReviewTTL              time.Duration
	GroqAPIKey             string
	GroqModel              string
	GroqTranscriptionModel string
	GroqBaseURL            string
	JWTSecret              string
	SlackBotToken          string
	SlackChannel           string
}

// Load reads the embedded defaults and overrides them from the environment.
// Env vars map to keys by lowercasing (GROQ_API_KEY -> groq_api_key); unknown
// variables are ignored. An empty value falls back to the default, except
// NATS_URL, where it turns live updates off.
func Load() (Config, error) {
	base := koanf.New(".")
	if err := base.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaults), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if !base.Exists(key) {
			return ""
		}
		return key
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	return Config{
		Port:                   intOr(k, base, "port"),
		LogLevel:               strOr(k, base, "log_level"),
		LogFormat:              strOr(k, base, "log_format"),
		DatabaseURL:            k.String("database_url"),
		NatsURL:                k.String("nats_url"),
		NatsToken:              k.String("nats_token"),
		RedisURL:               k.String("redis_url"),
		ReviewTTL:              durationOr(k, base, "review_ttl"),
		GroqAPIKey:             k.String("groq_api_key"),
		GroqModel:              strOr(k, base, "groq_model"),
		GroqTranscriptionModel: strOr(k, base, "groq_transcription_model"),
		GroqBaseURL:            strOr(k, base, "groq_base_url"),
		JWTSecret:              k.String("supabase_jwt_secret"),
		SlackBotToken:          k.String("slack_bot_token"),
		SlackChannel:           k.String("slack_channel"),
	}, nil
}

func strOr(k, base *koanf.Koanf, key string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return base.String(key)
}

func intOr(k, base *koanf.Koanf, key string) int {
	if n := k.Int(key); n > 0 {
		return n
	}
	return base.Int(key)
}

func durationOr(k, base *koanf.Koanf, key string) time.Duration {
	if d := k.Duration(key); d > 0 {
		return d
	}
	return base.Duration(key)
}
