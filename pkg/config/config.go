package config

import (
	"flag"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// ParseFlags parses command-line flags and returns them as a Flags struct.
func ParseFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: setFlags}
}

// ResolveConfigPath picks the config path: an explicit flag wins, then the
// NEBULA_CONFIG environment variable, then the flag default.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet {
		return flagVal
	}
	if p := os.Getenv("NEBULA_CONFIG"); p != "" {
		return p
	}
	return flagVal
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEffective loads the config file (a missing file is not an error) and
// applies environment overrides on top. Flags win over both; the caller
// applies those.
func LoadEffective(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = &Config{}
		} else {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays supported environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("NEBULA_ADDR"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("NEBULA_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("NEBULA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("NEBULA_GATEWAY_ENDPOINT"); v != "" {
		cfg.Gateway.Endpoint = v
	}
	if v := os.Getenv("NEBULA_GATEWAY_MODEL"); v != "" {
		cfg.Gateway.Model = v
	}
	if v := os.Getenv("NEBULA_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("NEBULA_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.RateLimit.Burst = n
		}
	}
}
