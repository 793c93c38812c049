package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// render writes v in the format chosen with --output. Table output uses
// headers and rows; json and yaml serialise v itself.
func render(cmd *cobra.Command, v any, headers []string, rows [][]string) error {
	format, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputTable, "":
		if len(rows) == 0 {
			_, err := fmt.Fprintln(out, mutedStyle.Render("(none)"))
			return err
		}
		_, err := fmt.Fprintln(out, renderTable(headers, rows))
		return err
	default:
		return fmt.Errorf("unknown output format %q (use table, json or yaml)", format)
	}
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

// renderFields prints a key/value listing in table mode.
func renderFields(cmd *cobra.Command, v any, fields [][2]string) error {
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f[0], f[1]}
	}
	return render(cmd, v, []string{"FIELD", "VALUE"}, rows)
}

// summarizeBody extracts the backend's error message from a response body.
func summarizeBody(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil && len(payload) > 0 {
		if detail, ok := payload["detail"].(string); ok {
			return detail
		}
		keys := make([]string, 0, len(payload))
		for k := range payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, flatten(payload[k])))
		}
		return strings.Join(parts, "; ")
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "(empty body)"
	}
	if len(text) > 120 {
		text = text[:120] + "..."
	}
	return text
}

func flatten(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "✅ "+format+"\n", args...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
