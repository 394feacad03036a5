// Package config loads EduAgent settings from a YAML file, the environment
// and built-in defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/llm"
)

// EnvPrefix prefixes every environment variable that overrides a key,
// e.g. EDUAGENT_LLM_OLLAMA_MODEL for llm.ollama.model.
const EnvPrefix = "EDUAGENT"

type Config struct {
	Server     ServerConfig   `mapstructure:"server"`
	DB         string         `mapstructure:"db"`
	LogLevel   string         `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LLM        llm.Config     `mapstructure:"llm"`
	Generation content.Config `mapstructure:"generation"`
}

type ServerConfig struct {
	Addr         string   `mapstructure:"addr" validate:"required"`
	AllowOrigins []string `mapstructure:"allow_origins" validate:"min=1,dive,required"`
}

// apiKeyEnv lists the conventional variables each provider key is read
// from, after the prefixed one.
var apiKeyEnv = map[string]string{
	"llm.anthropic.api_key":  "ANTHROPIC_API_KEY",
	"llm.openai.api_key":     "OPENAI_API_KEY",
	"llm.gemini.api_key":     "GEMINI_API_KEY",
	"llm.openrouter.api_key": "OPENROUTER_API_KEY",
}

// Load reads configuration. An empty configFile searches for eduagent.yaml
// in the working directory and $HOME/.config/eduagent; a missing file is
// not an error unless it was named explicitly.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("eduagent")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/eduagent")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, conventional := range apiKeyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, conventional); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", conventional, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	g := content.DefaultConfig()

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("db", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)
	v.SetDefault("llm.ollama.base_url", l.Ollama.BaseURL)
	v.SetDefault("llm.ollama.model", l.Ollama.Model)
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")

	v.SetDefault("generation.max_tokens", g.MaxTokens)
	v.SetDefault("generation.temperature", g.Temperature)
	v.SetDefault("generation.top_p", g.TopP)
	v.SetDefault("generation.structured", g.Structured)
}

// Validate checks field constraints, then the selected provider's
// credentials.
func (c *Config) Validate() error {
	validate, trans, err := newValidator()
	if err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("validate configuration: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", strings.TrimPrefix(e.Namespace(), "Config."), e.Translate(trans)))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
