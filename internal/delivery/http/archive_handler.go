package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/usecase/archive"
	"github.com/go-chi/chi/v5"
)

// multipartMemory - часть формы, которая держится в памяти; остальное уходит во временные файлы
const multipartMemory = 8 << 20

// ArchiveService - архив загруженных документов
type ArchiveService interface {
	Upload(ctx context.Context, req *archive.UploadRequest) (*domain.ArchiveDocument, error)
	List(ctx context.Context, query string) ([]*domain.ArchiveDocument, error)
	Open(ctx context.Context, id string) (*domain.ArchiveDocument, io.ReadCloser, error)
}

// ArchiveHandler обрабатывает загрузку и скачивание документов
type ArchiveHandler struct {
	archiveService ArchiveService
	maxBodyBytes   int64
	logger         logger.Logger
}

// NewArchiveHandler создает новый handler; maxBodyBytes <= 0 снимает ограничение тела запроса
func NewArchiveHandler(archiveService ArchiveService, maxBodyBytes int64, logger logger.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		archiveService: archiveService,
		maxBodyBytes:   maxBodyBytes,
		logger:         logger,
	}
}

// Upload принимает файл из поля document (или file) вместе с номером и типом
// POST /api/upload
func (h *ArchiveHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		if r.ContentLength > h.maxBodyBytes {
			respondError(w, http.StatusRequestEntityTooLarge, archive.MsgFileTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, archive.MsgFileTooLarge)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := &archive.UploadRequest{
		LicensePlate: r.FormValue("licensePlate"),
		DocumentType: r.FormValue("documentType"),
	}

	file, header, err := formFile(r, "document", "file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		respondError(w, http.StatusBadRequest, "Invalid file")
		return
	}
	if file != nil {
		defer file.Close()
		req.Content = file
		req.FileName = header.Filename
		req.ContentType = header.Header.Get("Content-Type")
	}

	doc, err := h.archiveService.Upload(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, "Failed to upload document", err)
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"document": doc,
	})
}

func formFile(r *http.Request, names ...string) (multipart.File, *multipart.FileHeader, error) {
	for _, name := range names {
		file, header, err := r.FormFile(name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		return file, header, err
	}
	return nil, nil, http.ErrMissingFile
}

// List возвращает документы архива, новые первыми
// GET /api/documents?q=
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.archiveService.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to list documents", err)
		return
	}

	respondSuccess(w, http.StatusOK, docs)
}

// Download отдает содержимое документа
// GET /api/documents/{id}/download
func (h *ArchiveHandler) Download(w http.ResponseWriter, r *http.Request) {
	doc, body, err := h.archiveService.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, "Failed to open document", err)
		return
	}
	defer body.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	attachment(w, contentType, doc.FileName)
	if doc.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("Document download interrupted", map[string]interface{}{
			"id":    doc.ID,
			"error": err.Error(),
		})
	}
}
