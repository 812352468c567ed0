package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/infrastructure/storage"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/pkg/metrics"
	"github.com/frontandrew/plakatakip/internal/repository/kv"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, m *metrics.Metrics) *Service {
	t.Helper()
	st, err := storage.NewFileSystem(t.TempDir())
	require.NoError(t, err)
	return NewService(kv.NewArchiveRepository(kv.NewMemoryStore()), st, 16, m, logger.NewNoop())
}

func upload(plate, docType, name, content string) *UploadRequest {
	req := &UploadRequest{LicensePlate: plate, DocumentType: docType, FileName: name, ContentType: "application/pdf"}
	if content != "" {
		req.Content = strings.NewReader(content)
	}
	return req
}

func TestService_UploadValidation(t *testing.T) {
	s := newTestService(t, nil)

	tests := []struct {
		name    string
		req     *UploadRequest
		message string
		err     error
	}{
		{name: "нет номера", req: upload("  ", "Ruhsat", "a.pdf", "x"), message: MsgPlateRequired, err: domain.ErrInvalidUpload},
		{name: "нет типа", req: upload("34 M 1234", "", "a.pdf", "x"), message: MsgTypeRequired, err: domain.ErrInvalidUpload},
		{name: "нет файла", req: upload("34 M 1234", "Ruhsat", "a.pdf", ""), message: MsgFileRequired, err: domain.ErrInvalidUpload},
		{name: "нет имени файла", req: upload("34 M 1234", "Ruhsat", "", "x"), message: MsgFileRequired, err: domain.ErrInvalidUpload},
		{name: "слишком большой", req: upload("34 M 1234", "Ruhsat", "a.pdf", strings.Repeat("x", 17)), message: MsgFileTooLarge, err: domain.ErrUploadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Upload(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err))

			var uerr *UploadError
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, tt.message, uerr.Message)
		})
	}
}

func TestService_UploadReadError(t *testing.T) {
	st, err := storage.NewFileSystem(t.TempDir())
	require.NoError(t, err)
	readErr := errors.New("connection reset")

	for _, maxBytes := range []int64{0, 16} {
		s := NewService(kv.NewArchiveRepository(kv.NewMemoryStore()), st, maxBytes, nil, logger.NewNoop())
		req := upload("34 M 1234", "Ruhsat", "a.pdf", "")
		req.Content = iotest.ErrReader(readErr)

		_, err := s.Upload(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, readErr)
		assert.Contains(t, err.Error(), "read upload")
	}
}

func TestService_UploadAndOpen(t *testing.T) {
	m := metrics.New()
	s := newTestService(t, m)
	s.now = func() time.Time { return time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	doc, err := s.Upload(ctx, upload(" 34  M 1234 ", "health", "Sağlık Raporu Ağustos.PDF", "%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "34 M 1234", doc.LicensePlate)
	assert.Equal(t, "Sağlık Raporu", doc.DocumentType)
	assert.Equal(t, "Sağlık Raporu Ağustos.PDF", doc.FileName)
	assert.Equal(t, int64(8), doc.Size)
	assert.Len(t, doc.Checksum, 16)
	assert.Equal(t, "2024/04/"+doc.ID+"-saglik-raporu-agustos.pdf", doc.StorageKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsStored))

	got, rc, err := s.Open(ctx, doc.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, doc.Checksum, got.Checksum)

	_, _, err = s.Open(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestService_List(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	base := time.Date(2024, time.April, 1, 10, 0, 0, 0, time.UTC)
	files := []struct{ plate, docType string }{
		{"34 M 1234", "Ruhsat"},
		{"06 S 42", "Psikoteknik"},
		{"34 J 77", "Diğer"},
	}
	for i, f := range files {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		_, err := s.Upload(ctx, upload(f.plate, f.docType, "f.pdf", "x"))
		require.NoError(t, err)
	}

	tests := []struct {
		query  string
		plates []string
	}{
		{query: "", plates: []string{"34 J 77", "06 S 42", "34 M 1234"}},
		{query: "34", plates: []string{"34 J 77", "34 M 1234"}},
		{query: "34M1234", plates: []string{"34 M 1234"}},
		{query: "psikoteknik", plates: []string{"06 S 42"}},
		{query: "diger", plates: []string{"34 J 77"}},
		{query: "zzz", plates: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			docs, err := s.List(ctx, tt.query)
			require.NoError(t, err)
			plates := []string{}
			for _, d := range docs {
				plates = append(plates, d.LicensePlate)
			}
			assert.Equal(t, tt.plates, plates)
		})
	}
}
