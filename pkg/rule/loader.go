package rule

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/glesirok/targetpattern/pkg/engine"
	"github.com/glesirok/targetpattern/pkg/path"
	"github.com/glesirok/targetpattern/pkg/pattern"
)

// Format is the on-disk format of a pattern file.
type Format string

const (
	// FormatYAML is a YAML document with an offset and a pattern list.
	FormatYAML Format = "yaml"
	// FormatText is one pattern per line; blank lines and "#" comments are
	// ignored.
	FormatText Format = "text"
)

var (
	ErrInvalidRule   = errors.New("invalid rule")
	ErrUnknownFormat = errors.New("unknown pattern file format")
)

// Config is a pattern file.
type Config struct {
	// Offset is the working directory relative patterns are resolved against.
	Offset string `json:"offset,omitempty" yaml:"offset,omitempty" jsonschema:"title=Working Directory"`
	// Patterns are applied in order; a leading "-" excludes.
	Patterns []string `json:"patterns" yaml:"patterns" jsonschema:"title=Target Patterns"`
}

// Rules converts the pattern list into engine rules.
func (c *Config) Rules() []*engine.Rule {
	return engine.ParseRuleLines(c.Patterns)
}

// ResolvedOffset joins the file's offset below base, the working directory
// of whoever reads the file.
func (c *Config) ResolvedOffset(base string) string {
	return path.Join(base, c.Offset)
}

// FormatFromPath picks the format by file extension.
func FormatFromPath(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// LoadFromFile reads a pattern file and validates it below baseOffset.
func LoadFromFile(filePath, baseOffset string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return Load(data, FormatFromPath(filePath), baseOffset)
}

// Load decodes pattern file contents and validates them below baseOffset.
func Load(data []byte, format Format, baseOffset string) (*Config, error) {
	var config Config

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}

	case FormatText:
		patterns, err := ParseText(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		config.Patterns = patterns

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := Validate(&config, baseOffset); err != nil {
		return nil, err
	}

	return &config, nil
}

// ParseText reads one pattern per line.
func ParseText(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	patterns := make([]string, 0, 16)

	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patterns = append(patterns, line)
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan patterns: %w", err)
	}

	return patterns, nil
}

// Validate checks that every pattern parses against the offset it will be
// planned with: the file's offset joined below baseOffset.
func Validate(config *Config, baseOffset string) error {
	parser, err := pattern.NewParser(config.ResolvedOffset(baseOffset))
	if err != nil {
		return fmt.Errorf("%w: offset: %w", ErrInvalidRule, err)
	}

	for i, r := range config.Rules() {
		if r.Pattern == "" {
			return fmt.Errorf("rule %d: %w: empty pattern", i, ErrInvalidRule)
		}

		if _, err := parser.Parse(r.Pattern); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}

	return nil
}

// Schema returns the JSON schema of the YAML pattern file format.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	s := r.Reflect(&Config{})
	s.Title = "Target pattern file"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return data, nil
}
