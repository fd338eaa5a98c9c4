package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrFileNotFound = errors.New("file not found")

// StoredFile describes one blob on disk. Key is the storage address; Name is
// display metadata only and never touches the filesystem.
type StoredFile struct {
	Key         string
	Name        string
	ContentType string
	Size        int64
}

// LocalStore keeps blobs in a flat directory, keyed by a generated UUID plus
// the original extension. Two uploads of the same client filename never
// collide.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// Save writes the blob and returns its metadata. The content type comes from
// the filename extension, with sniffing of the first 512 bytes as fallback.
func (s *LocalStore) Save(name string, r io.Reader) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(name))
	key := uuid.NewString() + ext

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType := TypeByName(name)
	if contentType == "" {
		contentType = strings.Split(http.DetectContentType(head), ";")[0]
	}

	absPath := filepath.Join(s.baseDir, key)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := dst.Write(head)
	if err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	rest, err := io.Copy(dst, r)
	if err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StoredFile{
		Key:         key,
		Name:        filepath.Base(name),
		ContentType: contentType,
		Size:        int64(written) + rest,
	}, nil
}

func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.baseDir, filepath.Base(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// Remove cleans up a blob after a failed database write. The file may
// already be gone.
func (s *LocalStore) Remove(key string) error {
	err := os.Remove(filepath.Join(s.baseDir, filepath.Base(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// TypeByName maps a filename extension to a MIME type. Returns "" when the
// extension is unknown; it never sniffs content.
func TypeByName(name string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	return strings.Split(t, ";")[0]
}
