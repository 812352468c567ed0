// Package sample генерирует демонстрационный набор записей для категории.
// Используется при первом запуске и при восстановлении поврежденных данных.
package sample

import (
	"fmt"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
)

type template struct {
	name   string
	phone  string
	number string
	age    int
	owner  domain.OwnerType
	// смещения дат окончания относительно сегодняшнего дня
	license, health, seat, psycho int
}

var templates = []template{
	{name: "Ahmet Yılmaz", phone: "0532 111 22 33", number: "1234", age: 3, owner: domain.OwnerTypeOwner,
		license: 15, health: 30, seat: 5, psycho: -3},
	{name: "Mehmet Demir", phone: "0533 444 55 66", number: "5678", age: 5, owner: domain.OwnerTypeDriver,
		license: 3, health: 60, seat: 45, psycho: 10},
	{name: "Ayşe Kaya", phone: "0544 777 88 99", number: "9012", age: 2, owner: domain.OwnerTypeOwner,
		license: -5, health: 7, seat: 180, psycho: 90},
}

// Records возвращает демонстрационные записи категории на дату now
func Records(entry catalog.Entry, now time.Time) []*domain.ComplianceRecord {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	yearAgo := today.AddDate(-1, 0, 0)

	out := make([]*domain.ComplianceRecord, 0, len(templates))
	for i, t := range templates {
		r := &domain.ComplianceRecord{
			ID:           fmt.Sprintf("%d", i+1),
			Name:         t.name,
			Phone:        t.phone,
			LicensePlate: fmt.Sprintf("34 %s %s", entry.Code, t.number),
			VehicleAge:   t.age,
			OwnerType:    t.owner,
			Active:       true,
			StartDate:    yearAgo,
			EndDate:      today.AddDate(0, 0, t.license),
		}
		ranges := map[domain.DocumentType]int{
			domain.DocumentHealthReport:  t.health,
			domain.DocumentSeatInsurance: t.seat,
			domain.DocumentPsychotechnic: t.psycho,
		}
		for doc, offset := range ranges {
			if !entry.Applies(doc) {
				continue
			}
			r.SetRange(doc, &domain.DateRange{StartDate: yearAgo, EndDate: today.AddDate(0, 0, offset)})
		}
		r.ApplyDefaults()
		out = append(out, r)
	}
	return out
}
