// Package export строит файлы выгрузки записей и отчетов: xlsx, doc и pdf.
package export

import (
	"strconv"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
)

// DateLayout - формат дат в выгрузках
const DateLayout = "02.01.2006"

// Имена файлов, типы содержимого и подписи колонок
const (
	ReportPDFName    = "plaka-takip-raporu.pdf"
	AllRecordsXLSX   = "plaka-takip-verileri.xlsx"
	ContentTypeXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeWord  = "application/msword"
	ContentTypePDF   = "application/pdf"
	missing          = "-"
	startLabelSuffix = " Başlangıç"
	endLabelSuffix   = " Bitiş"
)

// FileName возвращает имя файла выгрузки категории, например M_Plaka_Kayitlari.xlsx
func FileName(entry catalog.Entry, ext string) string {
	return string(entry.Code) + "_Plaka_Kayitlari." + ext
}

// Sheet - записи одной категории
type Sheet struct {
	Entry   catalog.Entry
	Records []*domain.ComplianceRecord
}

// Exporter форматирует даты в заданном часовом поясе
type Exporter struct {
	loc *time.Location
	now func() time.Time
}

// New создает Exporter; nil loc - UTC
func New(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{loc: loc, now: time.Now}
}

var baseColumns = []string{
	"Adı Soyadı",
	"Sicil No",
	"Araç Sahibi / Şoför",
	"Araç Plakası",
	"Telefon",
	"Araç Yaşı",
	"Sabıka Kaydı",
	"Vergi Levhası",
	"Oda Kaydı",
	"SGK Hizmet Listesi",
	"Ceza Puanı",
	"Durum",
}

// Columns возвращает заголовки таблицы для категории
func Columns(entry catalog.Entry) []string {
	cols := make([]string, 0, len(baseColumns)+2*len(entry.Documents))
	cols = append(cols, baseColumns...)
	for _, doc := range entry.Documents {
		cols = append(cols, doc.Label()+startLabelSuffix, doc.Label()+endLabelSuffix)
	}
	return cols
}

// reportTime - момент построения выгрузки
func (e *Exporter) reportTime() time.Time {
	return e.now().In(e.loc)
}

func (e *Exporter) date(t time.Time) string {
	if t.IsZero() {
		return missing
	}
	return t.In(e.loc).Format(DateLayout)
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}

// baseCells - ячейки до пар дат
func (e *Exporter) baseCells(entry catalog.Entry, r *domain.ComplianceRecord, ref time.Time) []string {
	status := domain.RecordStatus(r, entry.Documents, ref).Label()
	if !r.Active {
		status += " (Pasif)"
	}
	return []string{
		r.Name,
		orMissing(r.RegistrationNumber),
		r.OwnerType.Label(),
		r.LicensePlate,
		orMissing(r.Phone),
		strconv.Itoa(r.VehicleAge),
		r.CriminalRecord.Label(),
		r.TaxCertificate.Label(),
		r.ChamberRegistration.Label(),
		r.SGKServiceList.Label(),
		r.PenaltyPoints.Label(),
		status,
	}
}

// period - начало и окончание документа, "-" если периода нет
func (e *Exporter) period(r *domain.ComplianceRecord, doc domain.DocumentType) (string, string) {
	dr := r.Range(doc)
	if dr == nil {
		return missing, missing
	}
	return e.date(dr.StartDate), e.date(dr.EndDate)
}

// Row возвращает строку таблицы в порядке Columns
func (e *Exporter) Row(entry catalog.Entry, r *domain.ComplianceRecord, ref time.Time) []string {
	row := e.baseCells(entry, r, ref)
	for _, doc := range entry.Documents {
		start, end := e.period(r, doc)
		row = append(row, start, end)
	}
	return row
}
