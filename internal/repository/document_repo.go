package repository

import (
	"context"
	"strings"

	"docvault/internal/domain"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// DB exposes the underlying handle for multi-step transactions owned by the
// service layer.
func (r *DocumentRepository) DB() *gorm.DB {
	return r.db
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	var doc domain.Document
	tx := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number ASC")
		}).
		First(&doc, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &doc, nil
}

func (r *DocumentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&domain.Document{}).
		Where("id = ?", id).
		Count(&count)
	return count > 0, tx.Error
}

// SearchByTitle does a substring match on the title. Results come back in
// insertion order; an empty result is a valid answer, not an error.
func (r *DocumentRepository) SearchByTitle(ctx context.Context, q string) ([]domain.Document, error) {
	pattern := "%" + escapeLike(q) + "%"
	var docs []domain.Document
	tx := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number ASC")
		}).
		Where("title LIKE ? ESCAPE '\\'", pattern).
		Order("id ASC").
		Find(&docs)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return docs, nil
}

func (r *DocumentRepository) ListVersions(ctx context.Context, documentID int64) ([]domain.DocumentVersion, error) {
	var versions []domain.DocumentVersion
	tx := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("version_number ASC").
		Find(&versions)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return versions, nil
}

func (r *DocumentRepository) GetVersion(ctx context.Context, documentID, versionID int64) (*domain.DocumentVersion, error) {
	var v domain.DocumentVersion
	tx := r.db.WithContext(ctx).
		Where("document_id = ? AND id = ?", documentID, versionID).
		First(&v)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &v, nil
}

func (r *DocumentRepository) GetVersionByID(ctx context.Context, versionID int64) (*domain.DocumentVersion, error) {
	var v domain.DocumentVersion
	tx := r.db.WithContext(ctx).First(&v, versionID)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &v, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
