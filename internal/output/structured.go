package output

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONFormatter renders a report as JSON
type JSONFormatter struct {
	Pretty bool // If true, format with indentation
}

func (JSONFormatter) Name() string { return "json" }

func (jf JSONFormatter) Format(r *Report) ([]byte, error) {
	if jf.Pretty {
		return json.MarshalIndent(r, "", "  ")
	}
	return json.Marshal(r)
}

// YAMLFormatter renders a report as YAML
type YAMLFormatter struct{}

func (YAMLFormatter) Name() string { return "yaml" }

func (YAMLFormatter) Format(r *Report) ([]byte, error) {
	return yaml.Marshal(r)
}
