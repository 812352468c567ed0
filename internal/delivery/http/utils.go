package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/usecase/archive"
	"github.com/frontandrew/plakatakip/internal/usecase/record"
)

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"Failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondSuccess отправляет {"success":true,"data":...}
func respondSuccess(w http.ResponseWriter, code int, data interface{}) {
	respondJSON(w, code, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// respondError отправляет JSON ответ с ошибкой
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// errorStatus сопоставляет доменные ошибки с HTTP кодами и сообщениями
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "Record not found"
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "Document not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrUnknownCategory):
		return http.StatusNotFound, "Unknown plate type"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "Validation failed"
	case errors.Is(err, domain.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge, "File too large"
	case errors.Is(err, domain.ErrInvalidUpload),
		errors.Is(err, domain.ErrInvalidPlate),
		errors.Is(err, domain.ErrInvalidDocumentType),
		errors.Is(err, domain.ErrCategoryMismatch),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrNoPhoneNumber),
		errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Insufficient permissions"
	case errors.Is(err, domain.ErrSMSGateway):
		return http.StatusBadGateway, "SMS gateway error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondServiceError логирует неожиданные ошибки и отвечает соответствующим кодом.
// Ошибки валидации и загрузки отдаются с подробностями для формы.
func respondServiceError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	var verr *record.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"success": false,
			"error":   "Lütfen zorunlu alanları doldurun",
			"fields":  verr.Fields,
		})
		return
	}
	var uerr *archive.UploadError
	if errors.As(err, &uerr) {
		code, _ := errorStatus(err)
		respondError(w, code, uerr.Message)
		return
	}

	code, message := errorStatus(err)
	if code >= http.StatusInternalServerError {
		log.Error(op, map[string]interface{}{
			"error": err.Error(),
		})
	}
	respondError(w, code, message)
}

// decodeJSON читает тело запроса
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	return nil
}

// queryInt читает целый параметр запроса; def если пусто
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrBadRequest, name)
	}
	return v, nil
}

// attachment выставляет заголовки файла для скачивания
func attachment(w http.ResponseWriter, contentType, fileName string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
}
