// package formatter renders download reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/tasks"
)

func status(o models.Outcome) string {
	if o.OK() {
		return "downloaded"
	}
	return o.Reason.String()
}

func errorText(o models.Outcome) string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// ExportToCSV converts a run to CSV format with columns: Query, Stem, Status, Attempts, Path, Error
func ExportToCSV(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Query", "Stem", "Status", "Attempts", "Path", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range result.Report.Outcomes {
		record := []string{
			o.Query.Text,
			o.Query.Stem,
			status(o),
			strconv.Itoa(o.Attempts),
			o.Path,
			errorText(o),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a run to a Markdown document with a summary and a per-track list
func ExportToMarkdown(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	report := result.Report

	buf.WriteString(fmt.Sprintf("# %s %s\n\n", result.List.Source.Kind, result.List.Source.ID))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(result.List.Tracks)))
	buf.WriteString(fmt.Sprintf("**Already present**: %d\n", result.List.Existing()))
	buf.WriteString(fmt.Sprintf("**Downloaded**: %d\n", report.Downloaded))
	buf.WriteString(fmt.Sprintf("**Skipped**: %d\n", report.Failed))
	if report.Cancelled > 0 {
		buf.WriteString(fmt.Sprintf("**Cancelled**: %d\n", report.Cancelled))
	}

	buf.WriteString("\n## Tracks\n\n")
	for i, o := range report.Outcomes {
		if o.OK() {
			buf.WriteString(fmt.Sprintf("%d. [x] %s (`%s`)\n", i+1, o.Query.Text, filepath.Base(o.Path)))
			continue
		}
		buf.WriteString(fmt.Sprintf("%d. [ ] %s (%s after %d attempts)\n", i+1, o.Query.Text, status(o), o.Attempts))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a run to plain text format
func ExportToText(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	report := result.Report

	buf.WriteString(fmt.Sprintf("Source: %s %s\n", result.List.Source.Kind, result.List.Source.ID))
	buf.WriteString(fmt.Sprintf("Downloaded: %d/%d\n\n", report.Downloaded, report.Total))

	for i, o := range report.Outcomes {
		line := fmt.Sprintf("%d. %s: %s", i+1, o.Query.Text, status(o))
		if o.Err != nil {
			line += " (" + o.Err.Error() + ")"
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// WriteReport renders result according to the extension of path (.csv, .md, anything else as text) and writes it.
func WriteReport(result *tasks.RunResult, path string) error {
	if result == nil || result.List == nil || result.Report == nil {
		return fmt.Errorf("empty run result")
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = ExportToCSV(result)
	case ".md", ".markdown":
		data, err = ExportToMarkdown(result)
	default:
		data, err = ExportToText(result)
	}
	if err != nil {
		return err
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
