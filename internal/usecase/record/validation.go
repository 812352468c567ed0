package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/catalog"
)

// Date - дата из формы. Принимает RFC3339, "2006-01-02" и "02.01.2006".
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02", "02.01.2006"}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time)
}

// SaveRequest - данные формы записи
type SaveRequest struct {
	ID                 string `json:"id,omitempty"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"sicilNo,omitempty"`
	Phone              string `json:"phone"`
	LicensePlatePrefix string `json:"licensePlatePrefix"`
	LicensePlateNumber string `json:"licensePlateNumber"`
	// LicensePlate - полный номер; используется, если части не заданы
	LicensePlate string `json:"licensePlate,omitempty"`
	VehicleAge   int    `json:"vehicleAge"`

	OwnerType domain.OwnerType `json:"ownerType,omitempty"`
	Active    *bool            `json:"active,omitempty"`

	StartDate       *Date `json:"startDate,omitempty"`
	EndDate         *Date `json:"endDate,omitempty"`
	HealthStartDate *Date `json:"healthStartDate,omitempty"`
	HealthEndDate   *Date `json:"healthEndDate,omitempty"`
	SeatStartDate   *Date `json:"seatStartDate,omitempty"`
	SeatEndDate     *Date `json:"seatEndDate,omitempty"`
	PsychoStartDate *Date `json:"psychoStartDate,omitempty"`
	PsychoEndDate   *Date `json:"psychoEndDate,omitempty"`
	SRCStartDate    *Date `json:"srcStartDate,omitempty"`
	SRCEndDate      *Date `json:"srcEndDate,omitempty"`

	CriminalRecord      domain.YesNo `json:"criminalRecord,omitempty"`
	TaxCertificate      domain.YesNo `json:"taxCertificate,omitempty"`
	ChamberRegistration domain.YesNo `json:"chamberRegistration,omitempty"`
	SGKServiceList      domain.YesNo `json:"sgkServiceList,omitempty"`
	PenaltyPoints       domain.YesNo `json:"penaltyPoints,omitempty"`

	LicenseDocument string `json:"licenseDocument,omitempty"`
}

// dateField - пара полей формы для одного типа документа
type dateField struct {
	doc        domain.DocumentType
	startField string
	endField   string
	start, end *Date
}

func (r *SaveRequest) dateFields() []dateField {
	return []dateField{
		{domain.DocumentLicense, "startDate", "endDate", r.StartDate, r.EndDate},
		{domain.DocumentHealthReport, "healthStartDate", "healthEndDate", r.HealthStartDate, r.HealthEndDate},
		{domain.DocumentSeatInsurance, "seatStartDate", "seatEndDate", r.SeatStartDate, r.SeatEndDate},
		{domain.DocumentPsychotechnic, "psychoStartDate", "psychoEndDate", r.PsychoStartDate, r.PsychoEndDate},
		{domain.DocumentSRC, "srcStartDate", "srcEndDate", r.SRCStartDate, r.SRCEndDate},
	}
}

// plateParts возвращает префикс и номер из частей или из полного номера
func (r *SaveRequest) plateParts() (string, string) {
	prefix := strings.TrimSpace(r.LicensePlatePrefix)
	number := strings.TrimSpace(r.LicensePlateNumber)
	if prefix == "" && number == "" && r.LicensePlate != "" {
		if p, err := domain.ParsePlate(r.LicensePlate); err == nil {
			return p.Prefix, p.Number
		}
		// неразборный номер: пусть валидация пометит оба поля
		return "", ""
	}
	return prefix, number
}

// ErrorMap - поле формы -> есть ошибка
type ErrorMap map[string]bool

// Fields возвращает отсортированный список полей с ошибками
func (m ErrorMap) Fields() []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ValidationError - запись отклонена целиком из-за ошибок в полях
type ValidationError struct {
	Fields ErrorMap
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrValidation, strings.Join(e.Fields.Fields(), ", "))
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}

// Validate проверяет форму по правилам категории.
// Поля независимы, кроме разбора номера; пустая карта - ошибок нет.
func Validate(req *SaveRequest, entry catalog.Entry) ErrorMap {
	errs := ErrorMap{}

	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = true
	}
	if strings.TrimSpace(req.Phone) == "" {
		errs["phone"] = true
	}

	prefix, number := req.plateParts()
	if !domain.ValidPlatePrefix(prefix) {
		errs["licensePlatePrefix"] = true
	}
	if !domain.ValidPlateNumber(number) {
		errs["licensePlateNumber"] = true
	}

	if req.VehicleAge < 0 {
		errs["vehicleAge"] = true
	}
	if req.OwnerType != "" && !req.OwnerType.IsValid() {
		errs["ownerType"] = true
	}

	flags := map[string]domain.YesNo{
		"criminalRecord":      req.CriminalRecord,
		"taxCertificate":      req.TaxCertificate,
		"chamberRegistration": req.ChamberRegistration,
		"sgkServiceList":      req.SGKServiceList,
		"penaltyPoints":       req.PenaltyPoints,
	}
	for field, v := range flags {
		if v != "" && !v.IsValid() {
			errs[field] = true
		}
	}

	for _, f := range req.dateFields() {
		if !entry.Applies(f.doc) {
			continue
		}
		required := entry.Requires(f.doc)
		hasStart := f.start != nil && !f.start.IsZero()
		hasEnd := f.end != nil && !f.end.IsZero()

		if required && !hasStart {
			errs[f.startField] = true
		}
		if required && !hasEnd {
			errs[f.endField] = true
		}
		// необязательный период задается либо целиком, либо никак
		if !required && hasStart != hasEnd {
			errs[f.startField] = !hasStart
			errs[f.endField] = !hasEnd
		}
	}

	for k, v := range errs {
		if !v {
			delete(errs, k)
		}
	}
	return errs
}
