package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Server     Server     `mapstructure:"server"`
	Simulator  Simulator  `mapstructure:"simulator"`
	Translator Translator `mapstructure:"translator"`
	Auth       Auth       `mapstructure:"auth"`
	Data       Data       `mapstructure:"data"`
	Peer       Peer       `mapstructure:"peer"`
}

type Server struct {
	Addr      string `mapstructure:"addr"`
	Mode      string `mapstructure:"mode"`
	StaticDir string `mapstructure:"static_dir"`
}

type Simulator struct {
	URL          string        `mapstructure:"url"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReplyTimeout time.Duration `mapstructure:"reply_timeout"`
}

type Translator struct {
	Mode        string        `mapstructure:"mode"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Auth struct {
	Enable bool   `mapstructure:"enable"`
	Token  string `mapstructure:"token"`
}

type Data struct {
	DBPath string `mapstructure:"db_path"`
}

type Peer struct {
	Addr string `mapstructure:"addr"`
}

// EnvPrefix is prepended to every environment override, e.g.
// RELAY_SIMULATOR_URL.
const EnvPrefix = "RELAY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.static_dir", "")

	v.SetDefault("simulator.url", "ws://localhost:8765/ws")
	v.SetDefault("simulator.dial_timeout", 5*time.Second)
	v.SetDefault("simulator.reply_timeout", 30*time.Second)

	v.SetDefault("translator.mode", "auto")
	v.SetDefault("translator.base_url", "https://api.openai.com/v1")
	v.SetDefault("translator.api_key", "")
	v.SetDefault("translator.model", "gpt-3.5-turbo")
	v.SetDefault("translator.temperature", 0.1)
	v.SetDefault("translator.timeout", 30*time.Second)

	v.SetDefault("auth.enable", false)
	v.SetDefault("auth.token", "")

	v.SetDefault("data.db_path", "relay.db")
	v.SetDefault("peer.addr", ":8765")
}

// Load reads configuration from defaults, an optional file, the environment
// and flags, in increasing order of precedence. configFile may be empty.
// Flags are bound by their viper key, so a flag named "simulator.url"
// overrides that key.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The usual OpenAI variable works without the prefix.
	if err := v.BindEnv("translator.api_key", EnvPrefix+"_TRANSLATOR_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the relay cannot start with.
func (c *Config) Validate() error {
	if c.Simulator.URL == "" {
		return fmt.Errorf("simulator.url is required")
	}
	if !strings.HasPrefix(c.Simulator.URL, "ws://") && !strings.HasPrefix(c.Simulator.URL, "wss://") {
		return fmt.Errorf("simulator.url must be a ws:// or wss:// url, got %q", c.Simulator.URL)
	}
	switch c.Translator.Mode {
	case "auto", "llm", "phrase":
	default:
		return fmt.Errorf("translator.mode must be auto, llm or phrase, got %q", c.Translator.Mode)
	}
	if c.Translator.Mode == "llm" && c.Translator.APIKey == "" {
		return fmt.Errorf("translator.mode llm requires translator.api_key or OPENAI_API_KEY")
	}
	if c.Auth.Enable && c.Auth.Token == "" {
		return fmt.Errorf("auth.enable requires auth.token")
	}
	return nil
}
