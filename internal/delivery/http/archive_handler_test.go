package http

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/usecase/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockArchiveService - мок для archive service
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Upload(ctx context.Context, req *archive.UploadRequest) (*domain.ArchiveDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArchiveDocument), args.Error(1)
}

func (m *MockArchiveService) List(ctx context.Context, query string) ([]*domain.ArchiveDocument, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArchiveDocument), args.Error(1)
}

func (m *MockArchiveService) Open(ctx context.Context, id string) (*domain.ArchiveDocument, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ArchiveDocument), args.Get(1).(io.ReadCloser), args.Error(2)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// TestArchiveHandler_Upload тестирует загрузку документа
func TestArchiveHandler_Upload(t *testing.T) {
	fields := map[string]string{"licensePlate": "35 M 1234", "documentType": "ruhsat"}

	tests := []struct {
		name           string
		fileField      string
		maxBody        int64
		mockSetup      func(*MockArchiveService)
		expectedStatus int
		checkResponse  func(*testing.T, map[string]interface{})
	}{
		{
			name:      "поле document",
			fileField: "document",
			mockSetup: func(m *MockArchiveService) {
				m.On("Upload", mock.Anything, mock.MatchedBy(func(req *archive.UploadRequest) bool {
					body, _ := io.ReadAll(req.Content)
					return req.LicensePlate == "35 M 1234" && req.FileName == "ruhsat.pdf" && string(body) == "%PDF-1.4"
				})).Return(&domain.ArchiveDocument{ID: "doc-1", LicensePlate: "35 M 1234", FileName: "ruhsat.pdf"}, nil)
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertSuccess(t, resp)
				doc := resp["data"].(map[string]interface{})["document"].(map[string]interface{})
				assert.Equal(t, "doc-1", doc["id"])
			},
		},
		{
			name:      "поле file",
			fileField: "file",
			mockSetup: func(m *MockArchiveService) {
				m.On("Upload", mock.Anything, mock.MatchedBy(func(req *archive.UploadRequest) bool {
					return req.Content != nil
				})).Return(&domain.ArchiveDocument{ID: "doc-2"}, nil)
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertSuccess(t, resp)
			},
		},
		{
			name: "файл не выбран",
			mockSetup: func(m *MockArchiveService) {
				m.On("Upload", mock.Anything, mock.MatchedBy(func(req *archive.UploadRequest) bool {
					return req.Content == nil
				})).Return(nil, &archive.UploadError{Message: archive.MsgFileRequired, Err: domain.ErrInvalidUpload})
			},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
				assert.Equal(t, archive.MsgFileRequired, resp["error"])
			},
		},
		{
			name:           "тело больше лимита",
			fileField:      "document",
			maxBody:        64,
			mockSetup:      func(m *MockArchiveService) {},
			expectedStatus: http.StatusRequestEntityTooLarge,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
				assert.Equal(t, archive.MsgFileTooLarge, resp["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockArchiveService)
			tt.mockSetup(mockService)
			handler := NewArchiveHandler(mockService, tt.maxBody, logger.NewDevelopment())

			body, contentType := multipartBody(t, fields, tt.fileField, "ruhsat.pdf", []byte("%PDF-1.4"))
			req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			handler.Upload(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.checkResponse(t, DecodeResponse(t, w))
			mockService.AssertExpectations(t)
		})
	}
}

// TestArchiveHandler_List тестирует список архива
func TestArchiveHandler_List(t *testing.T) {
	mockService := new(MockArchiveService)
	mockService.On("List", mock.Anything, "35M").Return([]*domain.ArchiveDocument{{ID: "a"}, {ID: "b"}}, nil)
	handler := NewArchiveHandler(mockService, 0, logger.NewDevelopment())

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/documents?q=35M", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := DecodeResponse(t, w)
	AssertSuccess(t, resp)
	assert.Len(t, resp["data"].([]interface{}), 2)
	mockService.AssertExpectations(t)
}

// TestArchiveHandler_Download тестирует скачивание документа
func TestArchiveHandler_Download(t *testing.T) {
	mockService := new(MockArchiveService)
	mockService.On("Open", mock.Anything, "doc-1").Return(
		&domain.ArchiveDocument{ID: "doc-1", FileName: "ruhsat.pdf", ContentType: "application/pdf", Size: 8},
		io.NopCloser(bytes.NewReader([]byte("%PDF-1.4"))), nil)
	mockService.On("Open", mock.Anything, "missing").Return(nil, nil, domain.ErrDocumentNotFound)
	handler := NewArchiveHandler(mockService, 0, logger.NewDevelopment())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/doc-1/download", nil)
	req = req.WithContext(WithURLParams(req.Context(), map[string]string{"id": "doc-1"}))
	w := httptest.NewRecorder()
	handler.Download(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ruhsat.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/documents/missing/download", nil)
	req = req.WithContext(WithURLParams(req.Context(), map[string]string{"id": "missing"}))
	w = httptest.NewRecorder()
	handler.Download(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.AssertExpectations(t)
}
