package output

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
)

// HTMLFormatter renders a report as a standalone HTML page
type HTMLFormatter struct{}

func (HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":  FormatCurrency,
	"pct":   FormatPercentage,
	"perPt": formatCostPerPoint,
	"join":  strings.Join,
	"f1":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).Parse(htmlTemplateSource))

func (HTMLFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
