package lisp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes how a Lisp reads and evaluates its module.
type Config struct {
	Module        string `yaml:"module"`
	DotSigil      string `yaml:"dot_sigil"`
	KeywordPrefix string `yaml:"keyword_prefix"`
	Prelude       bool   `yaml:"prelude"`
}

func DefaultConfig() Config {
	return Config{
		Module:        "user",
		DotSigil:      DefaultDotSigil,
		KeywordPrefix: DefaultKeywordPrefix,
		Prelude:       true,
	}
}

// ConfigError aggregates config validation failures.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig reads a YAML config file. Fields left out keep their defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()
	cfg, err := ParseConfig(file)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", absPath, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML from r on top of DefaultConfig. Unknown fields
// are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs ConfigError
	if c.Module == "" {
		errs.Issues = append(errs.Issues, "module must be provided")
	}
	if c.DotSigil == "" {
		errs.Issues = append(errs.Issues, "dot_sigil must be provided")
	} else if strings.ContainsAny(c.DotSigil, " \t\n()[]\";,") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("dot_sigil %q contains reserved characters", c.DotSigil))
	}
	if c.KeywordPrefix == "" {
		errs.Issues = append(errs.Issues, "keyword_prefix must be provided")
	} else if strings.ContainsAny(c.KeywordPrefix, " \t\n()[]\";,0123456789") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("keyword_prefix %q contains reserved characters", c.KeywordPrefix))
	}
	if c.DotSigil != "" && c.DotSigil == c.KeywordPrefix {
		errs.Issues = append(errs.Issues, "dot_sigil and keyword_prefix must differ")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}
