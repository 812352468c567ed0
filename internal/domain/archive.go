package domain

import "time"

// ArchiveDocument - загруженный файл в архиве документов.
// Связан с записями только текстовым номером знака.
type ArchiveDocument struct {
	ID           string    `json:"id"`
	LicensePlate string    `json:"licensePlate"`
	DocumentType string    `json:"documentType"`
	FileName     string    `json:"fileName"`
	UploadDate   time.Time `json:"uploadDate"`
	StorageKey   string    `json:"storageKey,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum,omitempty"`
}

// SMSStatus - результат отправки SMS
type SMSStatus string

const (
	SMSStatusSent   SMSStatus = "sent"
	SMSStatusFailed SMSStatus = "failed"
	SMSStatusLogged SMSStatus = "logged"
)

// SMSHistoryEntry - запись в журнале отправленных SMS
type SMSHistoryEntry struct {
	ID            string    `json:"id"`
	PhoneNumber   string    `json:"phoneNumber"`
	LicensePlate  string    `json:"licensePlate"`
	RecipientName string    `json:"recipientName"`
	Message       string    `json:"message"`
	SentDate      time.Time `json:"sentDate"`
	Status        SMSStatus `json:"status"`
}
