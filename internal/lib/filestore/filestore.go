// Package filestore хранит содержимое документов на локальном диске.
//
// Каждый документ лежит в собственном каталоге <root>/<documentID>/<имя файла>,
// имя файла предварительно очищается от управляющих символов и разделителей пути.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store управляет файлами документов под корневым каталогом.
type Store struct {
	root string
}

// New создаёт хранилище с корнем root, при необходимости создавая каталог.
func New(root string) (*Store, error) {
	const op = "filestore.New"

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{root: root}, nil
}

// SanitizeFilename очищает имя файла для безопасного сохранения на диске:
// убирает компоненты пути и управляющие символы, пустой результат
// заменяется на "file".
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20, r == 0x7f:
		case r == '/', r == '\\':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "file"
	}
	return cleaned
}

// Save записывает содержимое src в каталог документа и возвращает
// относительный путь сохранённого файла и количество записанных байт.
func (s *Store) Save(documentID, filename string, src io.Reader) (string, int64, error) {
	const op = "filestore.Save"

	relPath := filepath.Join(documentID, SanitizeFilename(filename))
	fullPath := filepath.Join(s.root, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	written, err := io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()
		_ = os.Remove(fullPath)
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	if err = dst.Close(); err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}
	return relPath, written, nil
}

// Open открывает сохранённый файл по относительному пути.
// Путь за пределами корня отклоняется.
func (s *Store) Open(relPath string) (*os.File, error) {
	const op = "filestore.Open"

	fullPath := filepath.Join(s.root, filepath.Clean("/"+relPath))
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f, nil
}

// Remove удаляет каталог документа вместе с содержимым.
// Отсутствие каталога ошибкой не считается.
func (s *Store) Remove(documentID string) error {
	const op = "filestore.Remove"

	if documentID == "" {
		return fmt.Errorf("%s: empty document id", op)
	}
	if err := os.RemoveAll(filepath.Join(s.root, documentID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
