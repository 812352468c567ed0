// Package storage хранит содержимое загруженных документов.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Storage - хранилище файлов по ключу
type Storage interface {
	// Put сохраняет содержимое под ключом, перезаписывая существующее
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Open открывает содержимое. domain.ErrDocumentNotFound, если ключа нет.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete удаляет содержимое; отсутствующий ключ не ошибка
	Delete(ctx context.Context, key string) error
}

// cleanKey приводит ключ к относительному пути без выхода за корень
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return k, nil
}
