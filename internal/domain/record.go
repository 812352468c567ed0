package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// OwnerType - владелец транспортного средства или наемный водитель
type OwnerType string

const (
	OwnerTypeOwner  OwnerType = "owner"
	OwnerTypeDriver OwnerType = "driver"
)

// Label возвращает турецкое название
func (o OwnerType) Label() string {
	if o == OwnerTypeDriver {
		return "Şoför"
	}
	return "Araç Sahibi"
}

// IsValid проверяет значение перечисления
func (o OwnerType) IsValid() bool {
	return o == OwnerTypeOwner || o == OwnerTypeDriver
}

// YesNo - флаг наличия документа
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// Label возвращает "Var"/"Yok" для отчетов
func (y YesNo) Label() string {
	if y == Yes {
		return "Var"
	}
	return "Yok"
}

// IsValid проверяет значение перечисления
func (y YesNo) IsValid() bool {
	return y == Yes || y == No
}

// DateRange - период действия документа
type DateRange struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// ComplianceRecord - учетная карточка водителя/автомобиля в одной категории
type ComplianceRecord struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	RegistrationNumber string     `json:"sicilNo,omitempty"`
	Phone              string     `json:"phone"`
	LicensePlate       string     `json:"licensePlate"`
	VehicleAge         int        `json:"vehicleAge"`
	OwnerType          OwnerType  `json:"ownerType"`
	Active             bool       `json:"active"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	HealthReport       *DateRange `json:"healthReport,omitempty"`
	SeatInsurance      *DateRange `json:"seatInsurance,omitempty"`
	Psychotechnic      *DateRange `json:"psychotechnic,omitempty"`
	SRCCertificate     *DateRange `json:"srcCertificate,omitempty"`

	CriminalRecord      YesNo `json:"criminalRecord"`
	TaxCertificate      YesNo `json:"taxCertificate"`
	ChamberRegistration YesNo `json:"chamberRegistration"`
	SGKServiceList      YesNo `json:"sgkServiceList"`
	PenaltyPoints       YesNo `json:"penaltyPoints"`

	LicenseDocument string `json:"licenseDocument,omitempty"`
}

// LicensePeriod возвращает основной период действия разрешения
func (r *ComplianceRecord) LicensePeriod() DateRange {
	return DateRange{StartDate: r.StartDate, EndDate: r.EndDate}
}

// Range возвращает период документа указанного типа или nil, если его нет
func (r *ComplianceRecord) Range(doc DocumentType) *DateRange {
	switch doc {
	case DocumentLicense:
		if r.EndDate.IsZero() {
			return nil
		}
		lp := r.LicensePeriod()
		return &lp
	case DocumentHealthReport:
		return r.HealthReport
	case DocumentSeatInsurance:
		return r.SeatInsurance
	case DocumentPsychotechnic:
		return r.Psychotechnic
	case DocumentSRC:
		return r.SRCCertificate
	default:
		return nil
	}
}

// SetRange устанавливает период документа указанного типа
func (r *ComplianceRecord) SetRange(doc DocumentType, dr *DateRange) {
	switch doc {
	case DocumentLicense:
		if dr == nil {
			r.StartDate, r.EndDate = time.Time{}, time.Time{}
			return
		}
		r.StartDate, r.EndDate = dr.StartDate, dr.EndDate
	case DocumentHealthReport:
		r.HealthReport = dr
	case DocumentSeatInsurance:
		r.SeatInsurance = dr
	case DocumentPsychotechnic:
		r.Psychotechnic = dr
	case DocumentSRC:
		r.SRCCertificate = dr
	}
}

// ApplyDefaults заполняет необязательные поля значениями по умолчанию
func (r *ComplianceRecord) ApplyDefaults() {
	if r.OwnerType == "" {
		r.OwnerType = OwnerTypeOwner
	}
	for _, flag := range []*YesNo{
		&r.CriminalRecord,
		&r.TaxCertificate,
		&r.ChamberRegistration,
		&r.SGKServiceList,
		&r.PenaltyPoints,
	} {
		if *flag == "" {
			*flag = No
		}
	}
}

var (
	platePrefixRe = regexp.MustCompile(`^\d{1,2}$`)
	plateNumberRe = regexp.MustCompile(`^\d{1,5}$`)
)

// ValidPlatePrefix проверяет код провинции (1-2 цифры)
func ValidPlatePrefix(s string) bool {
	return platePrefixRe.MatchString(s)
}

// ValidPlateNumber проверяет порядковый номер (1-5 цифр)
func ValidPlateNumber(s string) bool {
	return plateNumberRe.MatchString(s)
}

// ComposePlate собирает номер в формате "<prefix> <CATEGORY> <number>"
func ComposePlate(prefix string, category Category, number string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	number = strings.TrimSpace(number)
	if !ValidPlatePrefix(prefix) || !ValidPlateNumber(number) {
		return "", fmt.Errorf("%w: %q %q", ErrInvalidPlate, prefix, number)
	}
	return fmt.Sprintf("%s %s %s", prefix, category, number), nil
}

// PlateParts - составные части номерного знака
type PlateParts struct {
	Prefix  string
	Letters string
	Number  string
}

// ParsePlate разбирает номер обратно на части.
// Допускает произвольное количество пробелов между частями.
func ParsePlate(plate string) (PlateParts, error) {
	fields := strings.Fields(plate)
	if len(fields) != 3 {
		return PlateParts{}, fmt.Errorf("%w: %q", ErrInvalidPlate, plate)
	}
	p := PlateParts{Prefix: fields[0], Letters: fields[1], Number: fields[2]}
	if !ValidPlatePrefix(p.Prefix) || !ValidPlateNumber(p.Number) {
		return PlateParts{}, fmt.Errorf("%w: %q", ErrInvalidPlate, plate)
	}
	return p, nil
}
