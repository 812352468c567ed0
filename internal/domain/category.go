package domain

import "strings"

// Category - категория номерного знака (тип разрешения)
type Category string

const (
	CategoryM   Category = "M"
	CategoryS   Category = "S"
	CategoryJ   Category = "J"
	CategoryD4  Category = "D4"
	CategoryD4S Category = "D4S"
)

// AllCategories возвращает категории в каноническом порядке обхода
func AllCategories() []Category {
	return []Category{CategoryM, CategoryS, CategoryJ, CategoryD4, CategoryD4S}
}

func (c Category) String() string {
	return string(c)
}

// DocumentType - тип отслеживаемого документа с периодом действия
type DocumentType string

const (
	DocumentLicense       DocumentType = "license"
	DocumentHealthReport  DocumentType = "health"
	DocumentSeatInsurance DocumentType = "seat"
	DocumentPsychotechnic DocumentType = "psycho"
	DocumentSRC           DocumentType = "src"
)

// AllDocumentTypes возвращает все типы документов в порядке колонок
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentLicense,
		DocumentHealthReport,
		DocumentSeatInsurance,
		DocumentPsychotechnic,
		DocumentSRC,
	}
}

// ForecastDocumentTypes - типы, участвующие в помесячном прогнозе
func ForecastDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentLicense,
		DocumentHealthReport,
		DocumentSeatInsurance,
		DocumentPsychotechnic,
	}
}

var documentLabels = map[DocumentType]string{
	DocumentLicense:       "Ruhsat",
	DocumentHealthReport:  "Sağlık Raporu",
	DocumentSeatInsurance: "Koltuk Sigortası",
	DocumentPsychotechnic: "Psikoteknik",
	DocumentSRC:           "SRC Belgesi",
}

// Label возвращает турецкое название типа документа
func (d DocumentType) Label() string {
	if label, ok := documentLabels[d]; ok {
		return label
	}
	return string(d)
}

// IsValid проверяет, что тип документа известен
func (d DocumentType) IsValid() bool {
	_, ok := documentLabels[d]
	return ok
}

// EntryID формирует идентификатор записи об истечении.
// Для лицензии используется id самой записи, для остальных - id с суффиксом.
func (d DocumentType) EntryID(recordID string) string {
	if d == DocumentLicense {
		return recordID
	}
	return recordID + "-" + string(d)
}

// ParseDocumentType разбирает тип документа, в том числе по турецкому названию
func ParseDocumentType(s string) (DocumentType, error) {
	v := strings.TrimSpace(s)
	for _, d := range AllDocumentTypes() {
		if strings.EqualFold(v, string(d)) || v == d.Label() {
			return d, nil
		}
	}
	return "", ErrInvalidDocumentType
}
