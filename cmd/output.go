package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/ui/components"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", f)
}

// writeEnvelope prints a run in the chosen format. JSON matches the API
// response body; YAML carries the parsed fields.
func writeEnvelope(w io.Writer, env *content.Envelope, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(env)

	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(struct {
			ID     string         `yaml:"id"`
			Result content.Result `yaml:",inline"`
		}{env.ID, *env.Result})

	default:
		_, err := lipgloss.Fprintln(w, components.ResultCards(env.Result, 0))
		return err
	}
}
