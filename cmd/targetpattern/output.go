package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/glesirok/targetpattern/pkg/engine"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

var (
	errUnknownOutput = errors.New("unknown output format")

	allOutputs = []string{
		string(outputText),
		string(outputJSON),
		string(outputYAML),
	}
)

// render writes v as JSON or YAML, or calls text for the plain format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch outputFormat(format) {
	case outputText:
		return text(w)

	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)

	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	}

	return fmt.Errorf("%w: %q", errUnknownOutput, format)
}

func writeStep(w io.Writer, s *engine.Step) error {
	fields := []string{string(s.Rule.Action), s.Pattern.String()}

	switch {
	case s.Subsumed:
		fields = append(fields, "subsumed")
	case s.Absorbed:
		fields = append(fields, "absorbed")
	}

	if len(s.ExcludedSubdirectories) > 0 {
		fields = append(fields, "excluding "+strings.Join(s.ExcludedSubdirectories, ","))
	}

	_, err := fmt.Fprintln(w, strings.Join(fields, "\t"))

	return err
}
