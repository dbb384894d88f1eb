package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/webbreaker/webinspect/pkg/config"
	"github.com/webbreaker/webinspect/pkg/kind"
	"github.com/webbreaker/webinspect/pkg/logger"
	"github.com/webbreaker/webinspect/pkg/proto"
)

// OutputFormat is the code(int) for each format
type OutputFormat int

const (
	// JSON displays the output in JSON format
	JSON OutputFormat = iota
	// HUMAN displays the outut in a way that's nice for humans to read
	HUMAN
	// TOML displays the output in TOML format
	TOML
	// YAML displays the output in YAML format
	YAML
)

var outputFormatNames = map[string]OutputFormat{
	"JSON":  JSON,
	"HUMAN": HUMAN,
	"TOML":  TOML,
	"YAML":  YAML,
}

// Formatter renders responses in the configured format
type Formatter struct {
	format OutputFormat
}

// NewFormatter creates new formatter
func NewFormatter(cfg config.Formatter) (*Formatter, error) {
	format, err := GetOutputFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return &Formatter{format: format}, nil
}

// GetOutputFormat takes the string and returns OutputFormat or an error
func GetOutputFormat(format string) (OutputFormat, error) {
	for name, outputFormat := range outputFormatNames {
		if kind.KindsMatch(name, format) {
			return outputFormat, nil
		}
	}

	return JSON, fmt.Errorf("invalid output format option: format=%q", format)
}

// Format renders a response structure to the set format as a string
func (f *Formatter) Format(r *proto.Response) string {
	var output string
	switch f.format {
	case JSON:
		output = f.formatJSON(r)
	case HUMAN:
		output = f.formatHuman(r)
	case TOML:
		output = f.formatTOML(r)
	case YAML:
		output = f.formatYAML(r)
	}
	return output
}

func (f *Formatter) formatJSON(r *proto.Response) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(r); err != nil {
		logger.Error("could not marshal response: error=%q", err)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// formatHuman prints the status lines followed by the data. Text data is
// printed as is, anything else as indented JSON.
func (f *Formatter) formatHuman(r *proto.Response) string {
	var out strings.Builder

	if len(r.RequestID) > 0 {
		_, _ = fmt.Fprintf(&out, "%-14s: %s\n", "Request ID", r.RequestID)
	}
	_, _ = fmt.Fprintf(&out, "%-14s: %t\n", "Success", r.Success)
	_, _ = fmt.Fprintf(&out, "%-14s: %d\n", "Response Code", r.ResponseCode)
	_, _ = fmt.Fprintf(&out, "%-14s: %s\n", "Message", r.Message)

	if r.Error != nil {
		_, _ = fmt.Fprintf(&out, "%-14s: %s\n", "Error", r.Error.Kind)
	}

	if r.Data == nil {
		return out.String()
	}

	_, _ = fmt.Fprintf(&out, "%-14s:\n", "Data")

	if text, ok := r.Data.(string); ok {
		out.WriteString(text)
	} else {
		data, err := json.MarshalIndent(r.Data, "", "    ")
		if err != nil {
			logger.Error("could not marshal response data: error=%q", err)
		}
		out.Write(data)
	}

	out.WriteRune('\n')
	return out.String()
}

func (f *Formatter) formatTOML(r *proto.Response) string {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).Encode(r); err != nil {
		logger.Error("could not marshal response: error=%q", err)
	}
	return buf.String()
}

func (f *Formatter) formatYAML(r *proto.Response) string {
	out, err := yaml.Marshal(r)
	if err != nil {
		logger.Error("could not marshal response: error=%q", err)
	}
	return string(out)
}
