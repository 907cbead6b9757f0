package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Formatter renders a report in one output format
type Formatter interface {
	Name() string
	Format(r *Report) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface
type FormatterFunc struct {
	ID string
	F  func(r *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(r *Report) ([]byte, error) { return f.F(r) }

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"json":    JSONFormatter{Pretty: true},
	"csv":     CSVFormatter{},
	"yaml":    YAMLFormatter{},
	"html":    HTMLFormatter{},
}

var extensions = map[string]string{
	"console": "txt",
	"json":    "json",
	"csv":     "csv",
	"yaml":    "yaml",
	"html":    "html",
}

// GetFormatter returns the formatter registered under name
func GetFormatter(name string) (Formatter, error) {
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s (available: %v)", name, FormatNames())
	}
	return f, nil
}

// FormatNames lists the registered output formats
func FormatNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted validates and renders a report to w
func WriteFormatted(w io.Writer, f Formatter, r *Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := f.Format(r)
	if err != nil {
		return fmt.Errorf("failed to format %s report as %s: %w", r.Kind, f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// SaveReport writes a report into dir under a timestamped file name and returns the path
func SaveReport(dir string, f Formatter, r *Report) (string, error) {
	ext, ok := extensions[f.Name()]
	if !ok {
		ext = "out"
	}
	at := r.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	path := filepath.Join(dir, fmt.Sprintf("facplan_%s_%s.%s", r.Kind, at.Format("20060102_150405"), ext))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := WriteFormatted(file, f, r); err != nil {
		return "", err
	}
	return path, nil
}
