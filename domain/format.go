package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by the --format flag.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatRaw  = "raw"
)

// FormatResult renders a Result in the requested output format.
func FormatResult(result *Result, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(out) + "\n", nil
	case FormatYAML, "yml":
		out, err := yaml.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return string(out), nil
	case FormatText, "":
		return formatText(result), nil
	case FormatRaw:
		return formatRaw(result)
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: text, json, yaml, raw)", format)
	}
}

// isWarning reports whether a finding should not be listed as an error.
func isWarning(e Error) bool {
	return e.Severity == "warning" || e.Severity == "info"
}

func formatText(result *Result) string {
	var sb strings.Builder

	if result.Success {
		sb.WriteString("✓ Success")
	} else {
		sb.WriteString("✗ Failed")
	}
	if result.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(result.Message)
	}
	sb.WriteString("\n")

	var errs, warnings []Error
	for _, e := range result.Errors {
		if isWarning(e) {
			warnings = append(warnings, e)
		} else {
			errs = append(errs, e)
		}
	}
	writeFindings(&sb, "Errors", errs)
	writeFindings(&sb, "Warnings", warnings)

	if result.Data != nil {
		sb.WriteString("\nData:\n")
		out, err := yaml.Marshal(result.Data)
		if err != nil {
			fmt.Fprintf(&sb, "  %v\n", result.Data)
			return sb.String()
		}
		for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func writeFindings(sb *strings.Builder, title string, findings []Error) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for i, e := range findings {
		fmt.Fprintf(sb, "  %d. %s\n", i+1, e.String())
	}
}

// formatRaw prints only the Data field, so a plan can be piped into a file.
// Strings pass through unchanged; anything else is emitted as a YAML document.
func formatRaw(result *Result) (string, error) {
	switch v := result.Data.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		out, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal raw data: %w", err)
		}
		return string(out), nil
	}
}
