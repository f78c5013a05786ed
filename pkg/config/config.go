package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full file-backed configuration. Env vars and flags are
// layered on top by LoadEffective: flags win over env, env wins over file.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		DBPath  string `yaml:"db_path"`
	} `yaml:"server"`
	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		Timeout     string  `yaml:"timeout"`
	} `yaml:"llm"`
	Security struct {
		CORS struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"security"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// LLMTimeout parses the configured gateway timeout, defaulting to 60s.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLM.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Load reads the YAML config at path. A missing file is not an error; the
// zero config plus env/flags is a valid deployment.
func Load(path string) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// ParseCommandFlags defines and parses command-line flags and returns their
// values along with a map indicating which flags were explicitly set.
func ParseCommandFlags() (addr string, dbPath string, cfgPath string, setFlags map[string]bool) {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return *addrPtr, *dbPtr, *cfgPtr, setFlags
}

// LoadEnvOverrides applies PORTAL_* environment overrides onto cfg and
// reports whether any were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false
	parseList := func(v string) []string {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := os.Getenv("PORTAL_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				cfg.Server.Port = pi
			}
		}
	}
	if v := os.Getenv("PORTAL_DB_PATH"); v != "" {
		envUsed = true
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("PORTAL_LLM_BASE_URL"); v != "" {
		envUsed = true
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("PORTAL_LLM_KEY"); v != "" {
		envUsed = true
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("PORTAL_LLM_MODEL"); v != "" {
		envUsed = true
		cfg.LLM.Model = v
	}
	if v := os.Getenv("PORTAL_CORS_ORIGINS"); v != "" {
		envUsed = true
		cfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("PORTAL_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	return envUsed
}

// Effective is the merged configuration handed to the app.
type Effective struct {
	Config *Config
	Addr   string
	Source string // flags | env | config | defaults
}

// LoadEffective loads the file config, applies env overrides and returns
// the effective configuration.
func LoadEffective(path string) (*Effective, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	src := "config"
	if LoadEnvOverrides(cfg) {
		src = "env"
	}
	return &Effective{Config: cfg, Addr: cfg.Addr(), Source: src}, nil
}
