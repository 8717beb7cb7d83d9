// package formatter renders duplicate, health and tagging job reports in various formats (JSON, YAML, CSV, Markdown,
// plain text, terminal tables)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/desertthunder/digger/internal/shared"
)

// Format selects a report encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted values in help order.
var Formats = []Format{FormatTable, FormatText, FormatJSON, FormatYAML, FormatCSV, FormatMarkdown}

// ParseFormat accepts a format name or its common aliases ("md", "yml", "txt"). Empty means table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension is the file extension for reports in f.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

// report is the tabular core every report shares. Structured formats encode value instead of the rows.
type report struct {
	title   string
	summary [][2]string
	headers []string
	rows    [][]string
	right   map[int]bool // right-aligned columns in table output
	value   any
}

func (r report) render(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := shared.MarshalJSON(r.value, true)
		if err != nil {
			return nil, fmt.Errorf("failed to encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(r.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return data, nil
	case FormatCSV:
		return r.csv()
	case FormatMarkdown:
		return r.markdown(), nil
	case FormatText:
		return r.text(), nil
	case FormatTable:
		return r.table(), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

func (r report) csv() ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(r.headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range r.rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (r report) markdown() []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.title))
	for _, kv := range r.summary {
		buf.WriteString(fmt.Sprintf("**%s**: %s\n", kv[0], kv[1]))
	}
	if len(r.summary) > 0 {
		buf.WriteString("\n")
	}
	if len(r.rows) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("| " + strings.Join(r.headers, " | ") + " |\n")
	sep := make([]string, len(r.headers))
	for i := range sep {
		sep[i] = "---"
		if r.right[i] {
			sep[i] = "--:"
		}
	}
	buf.WriteString("| " + strings.Join(sep, " | ") + " |\n")
	for _, row := range r.rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return buf.Bytes()
}

func (r report) text() []byte {
	var buf bytes.Buffer

	buf.WriteString(r.title + "\n")
	for _, kv := range r.summary {
		buf.WriteString(fmt.Sprintf("%s: %s\n", kv[0], kv[1]))
	}
	if len(r.rows) > 0 {
		buf.WriteString("\n")
	}
	for _, row := range r.rows {
		buf.WriteString(strings.Join(row, "\t") + "\n")
	}
	return buf.Bytes()
}

func (r report) table() []byte {
	var buf bytes.Buffer

	buf.WriteString(r.title + "\n")
	for _, kv := range r.summary {
		buf.WriteString(fmt.Sprintf("  %s: %s\n", kv[0], kv[1]))
	}
	if len(r.rows) > 0 {
		buf.WriteString(renderTable(r.headers, r.rows, r.right))
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func renderTable(headers []string, rows [][]string, right map[int]bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if right[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// WriteReport writes data to path, creating parent directories.
func WriteReport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
