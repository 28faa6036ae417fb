package config

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"faqbot/internal/embedding/tfidf"
	"faqbot/internal/index"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid configuration")

// EngineConfig tunes matching and indexing.
type EngineConfig struct {
	Threshold      float64 `yaml:"threshold" toml:"threshold"`
	NGramMin       int     `yaml:"ngram_min" toml:"ngram_min"`
	NGramMax       int     `yaml:"ngram_max" toml:"ngram_max"`
	MinDF          int     `yaml:"min_df" toml:"min_df"`
	MaxDF          float64 `yaml:"max_df" toml:"max_df"`
	SublinearTF    bool    `yaml:"sublinear_tf" toml:"sublinear_tf"`
	IndexAnswers   bool    `yaml:"index_answers" toml:"index_answers"`
	MinTokenLength int     `yaml:"min_token_length" toml:"min_token_length"`
	StopwordsFile  string  `yaml:"stopwords_file,omitempty" toml:"stopwords_file,omitempty"`
	TopK           int     `yaml:"top_k" toml:"top_k"`
	BuildWorkers   int     `yaml:"build_workers" toml:"build_workers"`
	DeferMessage   string  `yaml:"defer_message" toml:"defer_message"`
	EmptyMessage   string  `yaml:"empty_message" toml:"empty_message"`
}

// CorpusConfig selects where FAQ entries are read from: "json" or "sqlite".
type CorpusConfig struct {
	Type string `yaml:"type" toml:"type"`
	Path string `yaml:"path" toml:"path"`
}

// IndexConfig selects where built indexes are persisted:
// "none", "memory", "file" or "badger".
type IndexConfig struct {
	Type string `yaml:"type" toml:"type"`
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// ServerConfig configures the HTTP listener.
// ReloadRate is the number of reloads allowed per second.
type ServerConfig struct {
	Addr        string  `yaml:"addr" toml:"addr"`
	ReloadRate  float64 `yaml:"reload_rate" toml:"reload_rate"`
	ReloadBurst int     `yaml:"reload_burst" toml:"reload_burst"`
}

// WatchConfig enables reloading when the corpus file changes.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms" toml:"debounce_ms"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Engine EngineConfig `yaml:"engine" toml:"engine"`
	Corpus CorpusConfig `yaml:"corpus" toml:"corpus"`
	Index  IndexConfig  `yaml:"index" toml:"index"`
	Server ServerConfig `yaml:"server" toml:"server"`
	Watch  WatchConfig  `yaml:"watch" toml:"watch"`
}

const (
	DefaultDeferMessage = "I'm not sure. Can you rephrase or be more specific?"
	DefaultEmptyMessage = "Please type a question."
	DefaultTopK         = 5
)

// Load reads a config from a specified path. Files ending in .toml are read
// as TOML, anything else as YAML. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./faqbot.yaml first, then ~/.config/faqbot/config.yaml.
// If neither exists, it writes defaults to ~/.config/faqbot/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "faqbot.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from FAQBOT_ADDR, FAQBOT_THRESHOLD and FAQBOT_CORPUS.
func ApplyEnv(cfg *AppConfig) error {
	if v := os.Getenv("FAQBOT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FAQBOT_CORPUS"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("FAQBOT_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FAQBOT_THRESHOLD: %w", err)
		}
		cfg.Engine.Threshold = t
	}
	return nil
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	switch c.Corpus.Type {
	case "json", "sqlite":
	default:
		return fmt.Errorf("%w: corpus.type %q", ErrInvalid, c.Corpus.Type)
	}
	if c.Corpus.Path == "" {
		return fmt.Errorf("%w: corpus.path is empty", ErrInvalid)
	}
	switch c.Index.Type {
	case "none", "memory":
	case "file", "badger":
		if c.Index.Path == "" {
			return fmt.Errorf("%w: index.path is required for %s", ErrInvalid, c.Index.Type)
		}
	default:
		return fmt.Errorf("%w: index.type %q", ErrInvalid, c.Index.Type)
	}
	if c.Server.ReloadRate < 0 || c.Server.ReloadBurst < 0 {
		return fmt.Errorf("%w: server reload limits must not be negative", ErrInvalid)
	}
	return nil
}

// Validate checks the engine settings. The threshold must be in (0, 1]:
// a zero threshold would answer queries that share no term with any entry.
func (e EngineConfig) Validate() error {
	if math.IsNaN(e.Threshold) || e.Threshold <= 0 || e.Threshold > 1 {
		return fmt.Errorf("%w: engine.threshold %v must be in (0, 1]", ErrInvalid, e.Threshold)
	}
	if e.TopK < 0 {
		return fmt.Errorf("%w: engine.top_k must not be negative", ErrInvalid)
	}
	if e.BuildWorkers < 0 {
		return fmt.Errorf("%w: engine.build_workers must not be negative", ErrInvalid)
	}
	if err := e.tfidf(nil).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Settings returns the index settings described by the engine section,
// reading the stopwords file if one is configured.
func (e EngineConfig) Settings() (index.Settings, error) {
	var stopwords []string
	if e.StopwordsFile != "" {
		var err error
		if stopwords, err = LoadStopwords(e.StopwordsFile); err != nil {
			return index.Settings{}, err
		}
	}
	s := index.Settings{Config: e.tfidf(stopwords), IndexAnswers: e.IndexAnswers}
	if err := s.Validate(); err != nil {
		return index.Settings{}, err
	}
	return s, nil
}

// Gate returns the confidence gate for the configured threshold.
func (e EngineConfig) Gate() index.Gate { return index.Gate{Threshold: e.Threshold} }

func (e EngineConfig) tfidf(stopwords []string) tfidf.Config {
	return tfidf.Config{
		NGramMin:       e.NGramMin,
		NGramMax:       e.NGramMax,
		MinDF:          e.MinDF,
		MaxDF:          e.MaxDF,
		SublinearTF:    e.SublinearTF,
		MinTokenLength: e.MinTokenLength,
		Stopwords:      stopwords,
	}
}

// LoadStopwords reads one word per line. Blank lines and lines starting
// with '#' are skipped.
func LoadStopwords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stopwords: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stopwords: %w", err)
	}
	return words, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Corpus: CorpusConfig{Type: "json", Path: "faqs.json"},
		Index:  IndexConfig{Type: "none"},
		Server: ServerConfig{Addr: ":8000"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "faqbot", "config.yaml"), nil
}

func applyConfigDefaults(cfg *AppConfig) {
	def := tfidf.DefaultConfig()
	e := &cfg.Engine
	if e.Threshold == 0 {
		e.Threshold = index.DefaultThreshold
	}
	if e.NGramMin == 0 {
		e.NGramMin = def.NGramMin
	}
	if e.NGramMax == 0 {
		e.NGramMax = max(def.NGramMax, e.NGramMin)
	}
	if e.MinDF == 0 {
		e.MinDF = def.MinDF
	}
	if e.MaxDF == 0 {
		e.MaxDF = def.MaxDF
	}
	if e.MinTokenLength == 0 {
		e.MinTokenLength = def.MinTokenLength
	}
	if e.TopK == 0 {
		e.TopK = DefaultTopK
	}
	if e.DeferMessage == "" {
		e.DeferMessage = DefaultDeferMessage
	}
	if e.EmptyMessage == "" {
		e.EmptyMessage = DefaultEmptyMessage
	}
	if cfg.Corpus.Type == "" {
		cfg.Corpus.Type = "json"
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "none"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ReloadRate == 0 {
		cfg.Server.ReloadRate = 0.2
	}
	if cfg.Server.ReloadBurst == 0 {
		cfg.Server.ReloadBurst = 1
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 500
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
