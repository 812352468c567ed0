package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/textutil"
	"github.com/frontandrew/plakatakip/internal/usecase/dashboard"
)

var rangeLabels = map[dashboard.TimeRange]string{
	dashboard.RangeWeek:    "Haftalık",
	dashboard.RangeMonth:   "Aylık",
	dashboard.RangeQuarter: "Üç Aylık",
}

// pdfWriter - обертка над fpdf; встроенные шрифты не содержат турецких букв,
// поэтому весь текст проходит через textutil.ASCII
type pdfWriter struct {
	pdf *fpdf.Fpdf
}

func (p *pdfWriter) heading(text string) {
	p.pdf.Ln(4)
	p.pdf.SetFont("Helvetica", "B", 12)
	p.pdf.CellFormat(0, 8, textutil.ASCII(text), "", 1, "L", false, 0, "")
}

func (p *pdfWriter) table(widths []float64, header []string, rows [][]string) {
	p.pdf.SetFont("Helvetica", "B", 9)
	p.pdf.SetFillColor(242, 242, 242)
	for i, h := range header {
		p.pdf.CellFormat(widths[i], 7, textutil.ASCII(h), "1", 0, "L", true, 0, "")
	}
	p.pdf.Ln(-1)

	p.pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, cell := range row {
			align := "L"
			if i > 0 {
				align = "R"
			}
			p.pdf.CellFormat(widths[i], 6, textutil.ASCII(cell), "1", 0, align, false, 0, "")
		}
		p.pdf.Ln(-1)
	}
}

// bars рисует горизонтальную диаграмму распределения по категориям
func (p *pdfWriter) bars(dist []dashboard.CategoryCount) {
	max := 0
	for _, c := range dist {
		if c.Count > max {
			max = c.Count
		}
	}
	if max == 0 {
		return
	}
	const labelW, barMaxW, h = 30.0, 120.0, 5.0

	p.pdf.SetFont("Helvetica", "", 9)
	p.pdf.SetFillColor(59, 130, 246)
	for _, c := range dist {
		p.pdf.CellFormat(labelW, h, textutil.ASCII(c.Label), "", 0, "L", false, 0, "")
		x, y := p.pdf.GetXY()
		w := barMaxW * float64(c.Count) / float64(max)
		if w > 0 {
			p.pdf.Rect(x, y+1, w, h-2, "F")
		}
		p.pdf.SetXY(x+w+2, y)
		p.pdf.CellFormat(15, h, strconv.Itoa(c.Count), "", 1, "L", false, 0, "")
	}
}

// ReportPDF печатает отчет: распределение, статистику периода,
// прогноз на шесть месяцев и сравнение владельцев с водителями.
func (e *Exporter) ReportPDF(w io.Writer, rep *dashboard.Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Plaka Takip Raporu", false)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	p := &pdfWriter{pdf: pdf}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Plaka Takip Raporu", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	generated := rep.GeneratedAt
	if generated.IsZero() {
		generated = e.reportTime()
	}
	pdf.CellFormat(0, 6, textutil.ASCII("Oluşturulma tarihi: "+generated.In(e.loc).Format(DateLayout+" 15:04")),
		"", 1, "C", false, 0, "")

	p.heading("Özet")
	p.table([]float64{90, 40}, []string{"Gösterge", "Değer"}, [][]string{
		{"Toplam kayıt", strconv.Itoa(rep.TotalRecords)},
		{"Süresi dolmuş belge", strconv.Itoa(rep.ExpiredCount)},
		{fmt.Sprintf("%d gün içinde dolacak belge", rep.Range.Days), strconv.Itoa(rep.Range.Total)},
	})

	p.heading("Plaka Türlerine Göre Dağılım")
	distRows := make([][]string, 0, len(rep.Distribution))
	for _, c := range rep.Distribution {
		distRows = append(distRows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	p.table([]float64{90, 40}, []string{"Plaka Türü", "Kayıt Sayısı"}, distRows)
	pdf.Ln(2)
	p.bars(rep.Distribution)

	docs := domain.ForecastDocumentTypes()

	label := rangeLabels[rep.Range.Range]
	if label == "" {
		label = string(rep.Range.Range)
	}
	p.heading(fmt.Sprintf("%s Süre Dolumları (%d gün)", label, rep.Range.Days))
	rangeRows := make([][]string, 0, len(docs)+1)
	for _, doc := range docs {
		rangeRows = append(rangeRows, []string{doc.Label(), strconv.Itoa(rep.Range.Counts[doc])})
	}
	rangeRows = append(rangeRows, []string{"Toplam", strconv.Itoa(rep.Range.Total)})
	p.table([]float64{90, 40}, []string{"Belge Türü", "Adet"}, rangeRows)

	p.heading("6 Aylık Tahmin")
	header := []string{"Ay"}
	widths := []float64{40}
	for _, doc := range docs {
		header = append(header, doc.Label())
		widths = append(widths, 28)
	}
	header = append(header, "Toplam")
	widths = append(widths, 24)
	forecastRows := make([][]string, 0, len(rep.Forecast))
	for _, fp := range rep.Forecast {
		row := []string{fp.Label}
		for _, doc := range docs {
			row = append(row, strconv.Itoa(fp.Counts[doc]))
		}
		row = append(row, strconv.Itoa(fp.Total))
		forecastRows = append(forecastRows, row)
	}
	p.table(widths, header, forecastRows)

	p.heading("Araç Sahibi / Şoför Karşılaştırması")
	ownerRows := make([][]string, 0, len(rep.OwnerComparison))
	for _, c := range rep.OwnerComparison {
		ownerRows = append(ownerRows, []string{
			c.Label,
			strconv.Itoa(c.Owner.Records), strconv.Itoa(c.Owner.Expiring), strconv.Itoa(c.Owner.Expired),
			strconv.Itoa(c.Driver.Records), strconv.Itoa(c.Driver.Expiring), strconv.Itoa(c.Driver.Expired),
		})
	}
	p.table([]float64{30, 25, 25, 25, 25, 25, 25},
		[]string{"Plaka Türü", "Sahip", "Sahip Yakın", "Sahip Dolmuş", "Şoför", "Şoför Yakın", "Şoför Dolmuş"},
		ownerRows)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
