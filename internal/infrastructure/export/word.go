package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
)

var wordTemplate = template.Must(template.New("word").Parse(`<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
table {border-collapse: collapse; width: 100%; margin-bottom: 20px;}
th, td {border: 1px solid #ddd; padding: 8px; text-align: left;}
th {background-color: #f2f2f2;}
h1 {text-align: center;}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .Cells}}<td>{{.}}</td>{{end}}{{range .Periods}}<td>Başlangıç: {{.Start}}<br>Bitiş: {{.End}}</td>{{end}}</tr>
{{- end}}
</table>
<p>Oluşturulma tarihi: {{.Generated}}</p>
</body>
</html>
`))

type wordPeriod struct {
	Start, End string
}

type wordRow struct {
	Cells   []string
	Periods []wordPeriod
}

type wordData struct {
	Title     string
	Generated string
	Columns   []string
	Rows      []wordRow
}

// wordColumns - в документе каждая пара дат занимает одну колонку
func wordColumns(entry catalog.Entry) []string {
	cols := make([]string, 0, len(baseColumns)+len(entry.Documents))
	cols = append(cols, baseColumns...)
	for _, doc := range entry.Documents {
		if doc == domain.DocumentLicense {
			cols = append(cols, "Ruhsat Tarihleri")
			continue
		}
		cols = append(cols, doc.Label())
	}
	return cols
}

// Word пишет HTML документ, который Word открывает как .doc
func (e *Exporter) Word(w io.Writer, entry catalog.Entry, records []*domain.ComplianceRecord) error {
	ref := e.reportTime()
	data := wordData{
		Title:     fmt.Sprintf("%s Plaka Kayıtları", entry.Code),
		Generated: ref.Format(DateLayout + " 15:04"),
		Columns:   wordColumns(entry),
		Rows:      make([]wordRow, 0, len(records)),
	}
	for _, r := range records {
		row := wordRow{Cells: e.baseCells(entry, r, ref)}
		for _, doc := range entry.Documents {
			start, end := e.period(r, doc)
			row.Periods = append(row.Periods, wordPeriod{Start: start, End: end})
		}
		data.Rows = append(data.Rows, row)
	}

	if err := wordTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render word document: %w", err)
	}
	return nil
}
