package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "a/b.pdf", want: "a/b.pdf"},
		{key: "../../etc/passwd", want: "etc/passwd"},
		{key: "a\\..\\b.pdf", want: "b.pdf"},
		{key: "/", wantErr: true},
		{key: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := cleanKey(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func exerciseStorage(t *testing.T, st Storage) {
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "2024/04/ruhsat.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf"))

	rc, err := st.Open(ctx, "2024/04/ruhsat.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, st.Put(ctx, "2024/04/ruhsat.pdf", strings.NewReader("v2"), 2, "application/pdf"))
	rc, err = st.Open(ctx, "2024/04/ruhsat.pdf")
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "v2", string(data))

	require.NoError(t, st.Delete(ctx, "2024/04/ruhsat.pdf"))
	_, err = st.Open(ctx, "2024/04/ruhsat.pdf")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.NoError(t, st.Delete(ctx, "missing.pdf"))
}

func TestFileSystem(t *testing.T) {
	st, err := NewFileSystem(t.TempDir())
	require.NoError(t, err)
	exerciseStorage(t, st)
}

// fakeS3 - S3 в памяти, поддерживает только одиночный PutObject
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	panic("multipart not expected")
}

func (f *fakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	panic("multipart not expected")
}

func (f *fakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	panic("multipart not expected")
}

func (f *fakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	panic("multipart not expected")
}

func TestS3(t *testing.T) {
	fake := newFakeS3()
	st := NewS3(fake, "plaka", "/documents/")
	exerciseStorage(t, st)

	require.NoError(t, st.Put(context.Background(), "x.pdf", strings.NewReader("1"), 1, "application/pdf"))
	assert.Contains(t, fake.objects, "plaka/documents/x.pdf")
	assert.Equal(t, "application/pdf", fake.types["plaka/documents/x.pdf"])
}
