package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jimezsa/jobminer/internal/resource"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "jobminer"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
)

// Config contains defaults for mining runs.
type Config struct {
	BaseURL           string   `json:"base_url"`
	Country           string   `json:"country"`
	DefaultPages      int      `json:"default_pages"`
	Concurrency       int      `json:"concurrency"`
	TimeoutSeconds    int      `json:"timeout_seconds"`
	RequestsPerSecond float64  `json:"requests_per_second"`
	Retries           int      `json:"retries"`
	RetryDelayMS      int      `json:"retry_delay_ms"`
	StopWordsURL      string   `json:"stopwords_url"`
	StopWordsLanguage string   `json:"stopwords_language"`
	ExtraStopWords    []string `json:"extra_stop_words"`
	DataDir           string   `json:"data_dir"`
	Width             int      `json:"width"`
	Height            int      `json:"height"`
	MaxWords          int      `json:"max_words"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           envString("JOBMINER_BASE_URL", ""),
		Country:           envString("JOBMINER_COUNTRY", "us"),
		DefaultPages:      envInt("JOBMINER_DEFAULT_PAGES", 1),
		Concurrency:       envInt("JOBMINER_CONCURRENCY", 1),
		TimeoutSeconds:    envInt("JOBMINER_TIMEOUT_SECONDS", 30),
		RequestsPerSecond: envFloat("JOBMINER_REQUESTS_PER_SECOND", 2),
		Retries:           envInt("JOBMINER_RETRIES", 0),
		RetryDelayMS:      envInt("JOBMINER_RETRY_DELAY_MS", 500),
		StopWordsURL:      envString("JOBMINER_STOPWORDS_URL", resource.DefaultStopWords),
		StopWordsLanguage: envString("JOBMINER_STOPWORDS_LANGUAGE", resource.DefaultLanguage),
		DataDir:           envString("JOBMINER_DATA_DIR", ""),
		Width:             800,
		Height:            600,
		MaxWords:          500,
	}
}

func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("JOBMINER_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

// DataDirectory returns where downloaded resources live.
func (c Config) DataDirectory() string {
	if strings.TrimSpace(c.DataDir) != "" {
		return c.DataDir
	}
	return resource.DefaultDir()
}

func Load() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("JOBMINER_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
