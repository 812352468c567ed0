package dashboard

import (
	"sort"
	"strconv"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
)

// Snapshot - записи всех категорий на момент расчета
type Snapshot map[domain.Category][]*domain.ComplianceRecord

// ExpiryEntry - один документ, попавший в окно истечения
type ExpiryEntry struct {
	ID                string              `json:"id"`
	RecordID          string              `json:"recordId"`
	Name              string              `json:"name"`
	Phone             string              `json:"phone"`
	LicensePlate      string              `json:"licensePlate"`
	Category          domain.Category     `json:"category"`
	CategoryLabel     string              `json:"categoryLabel"`
	DocumentType      domain.DocumentType `json:"documentType"`
	DocumentTypeLabel string              `json:"documentTypeLabel"`
	ExpiryDate        time.Time           `json:"expiryDate"`
	DaysLeft          int                 `json:"daysLeft"`
	Status            domain.Status       `json:"status"`
	OwnerType         domain.OwnerType    `json:"ownerType"`
	Active            bool                `json:"active"`
}

// eachDocument обходит все периоды всех записей в порядке каталога
func eachDocument(cat *catalog.Catalog, all Snapshot, fn func(entry catalog.Entry, r *domain.ComplianceRecord, doc domain.DocumentType, dr *domain.DateRange)) {
	for _, entry := range cat.Entries() {
		for _, r := range all[entry.Code] {
			for _, doc := range domain.AllDocumentTypes() {
				if !entry.Applies(doc) {
					continue
				}
				dr := r.Range(doc)
				if dr == nil {
					continue
				}
				fn(entry, r, doc, dr)
			}
		}
	}
}

// ComputeExpiringDocuments собирает документы, у которых до окончания
// осталось не больше windowDays дней. Нижней границы нет: просроченные
// документы включаются с отрицательным daysLeft. Сортировка по daysLeft
// устойчивая, порядок обхода - каталог, записи, типы документов.
func ComputeExpiringDocuments(cat *catalog.Catalog, all Snapshot, windowDays int, ref time.Time) []ExpiryEntry {
	entries := []ExpiryEntry{}
	eachDocument(cat, all, func(entry catalog.Entry, r *domain.ComplianceRecord, doc domain.DocumentType, dr *domain.DateRange) {
		daysLeft := domain.DaysBetween(dr.EndDate, ref)
		if daysLeft > windowDays {
			return
		}
		phone := r.Phone
		if phone == "" {
			phone = "-"
		}
		entries = append(entries, ExpiryEntry{
			ID:                doc.EntryID(r.ID),
			RecordID:          r.ID,
			Name:              r.Name,
			Phone:             phone,
			LicensePlate:      r.LicensePlate,
			Category:          entry.Code,
			CategoryLabel:     entry.Label,
			DocumentType:      doc,
			DocumentTypeLabel: doc.Label(),
			ExpiryDate:        dr.EndDate,
			DaysLeft:          daysLeft,
			Status:            domain.Classify(dr.EndDate, ref, r.Active),
			OwnerType:         r.OwnerType,
			Active:            r.Active,
		})
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysLeft < entries[j].DaysLeft
	})
	return entries
}

// CountExpired - документы с daysLeft < 0
func CountExpired(entries []ExpiryEntry) int {
	n := 0
	for _, e := range entries {
		if e.DaysLeft < 0 {
			n++
		}
	}
	return n
}

// CountExpiringSoon - документы с 0 <= daysLeft <= 7
func CountExpiringSoon(entries []ExpiryEntry) int {
	n := 0
	for _, e := range entries {
		if e.DaysLeft >= 0 && e.DaysLeft <= domain.WarningWindowDays {
			n++
		}
	}
	return n
}

// CategoryCount - размер коллекции категории
type CategoryCount struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Count    int             `json:"count"`
}

// Distribution возвращает размеры коллекций в порядке каталога
func Distribution(cat *catalog.Catalog, all Snapshot) []CategoryCount {
	out := make([]CategoryCount, 0, len(all))
	for _, entry := range cat.Entries() {
		out = append(out, CategoryCount{
			Category: entry.Code,
			Label:    entry.Label,
			Count:    len(all[entry.Code]),
		})
	}
	return out
}

// OwnerCounts - счетчики для одного типа владельца
type OwnerCounts struct {
	Records  int `json:"records"`
	Expiring int `json:"expiring"`
	Expired  int `json:"expired"`
}

// OwnerComparison - сравнение владельцев и водителей внутри категории
type OwnerComparison struct {
	Category domain.Category `json:"category"`
	Label    string          `json:"label"`
	Owner    OwnerCounts     `json:"owner"`
	Driver   OwnerCounts     `json:"driver"`
}

// CompareOwnerTypes делит записи и документы в окне по типу владельца
func CompareOwnerTypes(cat *catalog.Catalog, all Snapshot, windowDays int, ref time.Time) []OwnerComparison {
	byCategory := make(map[domain.Category]*OwnerComparison)
	out := make([]OwnerComparison, 0, len(all))
	for _, entry := range cat.Entries() {
		out = append(out, OwnerComparison{Category: entry.Code, Label: entry.Label})
	}
	for i := range out {
		byCategory[out[i].Category] = &out[i]
	}

	pick := func(c *OwnerComparison, o domain.OwnerType) *OwnerCounts {
		if o == domain.OwnerTypeDriver {
			return &c.Driver
		}
		return &c.Owner
	}

	for _, entry := range cat.Entries() {
		for _, r := range all[entry.Code] {
			pick(byCategory[entry.Code], r.OwnerType).Records++
		}
	}

	for _, e := range ComputeExpiringDocuments(cat, all, windowDays, ref) {
		counts := pick(byCategory[e.Category], e.OwnerType)
		if e.DaysLeft < 0 {
			counts.Expired++
		} else {
			counts.Expiring++
		}
	}
	return out
}

// TimeRange - период отчета
type TimeRange string

const (
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
)

var rangeDays = map[TimeRange]int{
	RangeWeek:    7,
	RangeMonth:   30,
	RangeQuarter: 90,
}

// Days возвращает длину периода в днях
func (r TimeRange) Days() (int, bool) {
	d, ok := rangeDays[r]
	return d, ok
}

// RangeStats - число документов каждого типа, истекающих в периоде
type RangeStats struct {
	Range  TimeRange                   `json:"range"`
	Days   int                         `json:"days"`
	Counts map[domain.DocumentType]int `json:"counts"`
	Total  int                         `json:"total"`
}

// ComputeRangeStats считает документы с 0 <= daysLeft <= days
func ComputeRangeStats(cat *catalog.Catalog, all Snapshot, r TimeRange, days int, ref time.Time) RangeStats {
	stats := RangeStats{Range: r, Days: days, Counts: make(map[domain.DocumentType]int)}
	for _, doc := range domain.ForecastDocumentTypes() {
		stats.Counts[doc] = 0
	}
	eachDocument(cat, all, func(_ catalog.Entry, _ *domain.ComplianceRecord, doc domain.DocumentType, dr *domain.DateRange) {
		if _, tracked := stats.Counts[doc]; !tracked {
			return
		}
		daysLeft := domain.DaysBetween(dr.EndDate, ref)
		if daysLeft >= 0 && daysLeft <= days {
			stats.Counts[doc]++
			stats.Total++
		}
	})
	return stats
}

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// MonthName возвращает турецкое название месяца
func MonthName(m time.Month) string {
	return turkishMonths[m-1]
}

// ForecastPoint - прогноз на один календарный месяц
type ForecastPoint struct {
	Label  string                      `json:"label"`
	Year   int                         `json:"year"`
	Month  int                         `json:"month"`
	Start  time.Time                   `json:"start"`
	End    time.Time                   `json:"end"`
	Counts map[domain.DocumentType]int `json:"counts"`
	Total  int                         `json:"total"`
}

// ForecastMonths - горизонт прогноза
const ForecastMonths = 6

// Forecast считает документы по месяцам. Месяц i - календарный месяц,
// содержащий дату ref + 30*i дней; границы месяца включительно.
func Forecast(cat *catalog.Catalog, all Snapshot, ref time.Time, months int) []ForecastPoint {
	loc := ref.Location()
	y, m, d := ref.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	points := make([]ForecastPoint, 0, months)
	for i := 0; i < months; i++ {
		anchor := today.AddDate(0, 0, 30*i)
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

		p := ForecastPoint{
			Label:  MonthName(anchor.Month()) + " " + strconv.Itoa(anchor.Year()),
			Year:   anchor.Year(),
			Month:  int(anchor.Month()),
			Start:  start,
			End:    end,
			Counts: make(map[domain.DocumentType]int),
		}
		for _, doc := range domain.ForecastDocumentTypes() {
			p.Counts[doc] = 0
		}
		points = append(points, p)
	}

	eachDocument(cat, all, func(_ catalog.Entry, _ *domain.ComplianceRecord, doc domain.DocumentType, dr *domain.DateRange) {
		end := dr.EndDate.In(loc)
		for i := range points {
			if _, tracked := points[i].Counts[doc]; !tracked {
				return
			}
			if !end.Before(points[i].Start) && !end.After(points[i].End) {
				points[i].Counts[doc]++
				points[i].Total++
			}
		}
	})
	return points
}

