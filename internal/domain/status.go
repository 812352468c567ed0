package domain

import "time"

// Status - состояние документа относительно срока действия
type Status string

const (
	StatusNormal  Status = "normal"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
)

// WarningWindowDays - сколько дней до окончания считается "скоро истекает"
const WarningWindowDays = 7

var statusLabels = map[Status]string{
	StatusDanger:  "Süresi dolmuş",
	StatusWarning: "Son 7 gün",
	StatusNormal:  "Geçerli",
}

// Label возвращает турецкое название статуса
func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) severity() int {
	switch s {
	case StatusDanger:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// DaysBetween возвращает количество календарных дней от ref до end.
// Обе даты приводятся к календарному дню в часовом поясе ref.
// Результат отрицательный, если end уже прошел.
func DaysBetween(end, ref time.Time) int {
	loc := ref.Location()
	e := end.In(loc)
	ey, em, ed := e.Date()
	ry, rm, rd := ref.Date()
	// UTC исключает сдвиги летнего времени
	eu := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	ru := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	return int((eu.Unix() - ru.Unix()) / 86400)
}

// ClassifyDays классифицирует по числу оставшихся дней
func ClassifyDays(daysLeft int) Status {
	switch {
	case daysLeft < 0:
		return StatusDanger
	case daysLeft <= WarningWindowDays:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// Classify вычисляет статус даты окончания на момент ref.
// Для неактивной записи всегда возвращается normal.
func Classify(end, ref time.Time, active bool) Status {
	if !active {
		return StatusNormal
	}
	return ClassifyDays(DaysBetween(end, ref))
}

// Worst возвращает наиболее серьезный статус: danger > warning > normal.
// Пустой список дает normal.
func Worst(statuses ...Status) Status {
	worst := StatusNormal
	for _, s := range statuses {
		if s.severity() > worst.severity() {
			worst = s
		}
	}
	return worst
}

// RecordStatus вычисляет итоговый статус записи по всем ее периодам,
// применимым к категории. applicable == nil означает все типы документов.
func RecordStatus(r *ComplianceRecord, applicable []DocumentType, ref time.Time) Status {
	if applicable == nil {
		applicable = AllDocumentTypes()
	}
	statuses := make([]Status, 0, len(applicable))
	for _, doc := range applicable {
		dr := r.Range(doc)
		if dr == nil {
			continue
		}
		statuses = append(statuses, Classify(dr.EndDate, ref, r.Active))
	}
	return Worst(statuses...)
}
