package availability

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"aqdaily/pkg/contracts/domain"
)

// Styles controls the inline CSS of the HTML summary.
type Styles struct {
	THStyle       string `yaml:"th_style"`
	TDStyle       string `yaml:"td_style"`
	PassColour    string `yaml:"pass_colour"`
	WarningColour string `yaml:"warning_colour"`
	FailColour    string `yaml:"fail_colour"`
}

// DefaultStyles returns the stock colour scheme.
func DefaultStyles() Styles {
	return Styles{
		THStyle:       "border: 1px solid #dddddd; padding: 4px 8px; background-color: #f2f2f2;",
		TDStyle:       "border: 1px solid #dddddd; padding: 4px 8px; text-align: right;",
		PassColour:    "#c6efce",
		WarningColour: "#ffeb9c",
		FailColour:    "#ffc7ce",
	}
}

var pctPattern = regexp.MustCompile(`\(([0-9]+)%\)`)

const summaryTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Data availability {{.Report.Day}}</title>
</head>
<body>
<div>
<h1>Data availability for {{.Report.Day}}</h1>
<p>Window {{.Report.Start.Format "2006-01-02 15:04:05"}} to {{.Report.End.Format "2006-01-02 15:04:05"}}</p>
{{- range .Report.Tables}}
<h2>{{.Manufacturer}}</h2>
{{- if .Failed}}
<p style="background-color: {{$.Styles.FailColour | css}};">No data: {{join .Failed ", "}}</p>
{{- end}}
<table style="border-collapse: collapse;">
{{- if .Rows}}
<thead><tr>
{{- range index .Rows 0}}<th style="{{$.Styles.THStyle | css}}">{{.}}</th>{{end -}}
</tr></thead>
<tbody>
{{- range $i, $row := .Rows}}{{if $i}}
<tr>{{range $row}}<td style="{{cellStyle .}}">{{.}}</td>{{end}}</tr>
{{- end}}{{end}}
</tbody>
{{- end}}
</table>
{{- end}}
</div>
</body>
</html>
`

// RenderHTML renders the report as a standalone HTML document. Cells holding
// a percentage are coloured pass at 100%, fail at 0% and warning in between.
func RenderHTML(report domain.AvailabilityReport, styles Styles) (string, error) {
	tmpl, err := template.New("summary").Funcs(template.FuncMap{
		"css":       func(s string) template.CSS { return template.CSS(s) },
		"join":      strings.Join,
		"cellStyle": func(cell string) template.CSS { return template.CSS(styles.TDStyle + cellColour(cell, styles)) },
	}).Parse(summaryTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse summary template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Report domain.AvailabilityReport
		Styles Styles
	}{report, styles}); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}

func cellColour(cell string, styles Styles) string {
	m := pctPattern.FindStringSubmatch(cell)
	if m == nil {
		return ""
	}
	pct, err := strconv.Atoi(m[1])
	colour := "#ffffff"
	switch {
	case err != nil:
	case pct == 100:
		colour = styles.PassColour
	case pct == 0:
		colour = styles.FailColour
	case pct > 0 && pct < 100:
		colour = styles.WarningColour
	}
	return "background-color: " + colour + ";"
}
