package document

import (
	"context"
	"io"

	"docvault/internal/domain"
	"docvault/internal/storage"

	"gorm.io/gorm"
)

// DocumentRepositoryInterface — only the methods the document service uses.
// DB is exposed so the service can own the upload transaction boundary.
type DocumentRepositoryInterface interface {
	DB() *gorm.DB
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	Exists(ctx context.Context, id int64) (bool, error)
	SearchByTitle(ctx context.Context, q string) ([]domain.Document, error)
	ListVersions(ctx context.Context, documentID int64) ([]domain.DocumentVersion, error)
	GetVersion(ctx context.Context, documentID, versionID int64) (*domain.DocumentVersion, error)
	GetVersionByID(ctx context.Context, versionID int64) (*domain.DocumentVersion, error)
}

type BlobStore interface {
	Save(name string, r io.Reader) (*storage.StoredFile, error)
	Open(key string) (io.ReadCloser, error)
	Remove(key string) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type PermissionChecker interface {
	Exists(ctx context.Context, documentID, departmentID int64) (bool, error)
}
