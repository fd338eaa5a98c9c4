package document

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"docvault/internal/domain"
	"docvault/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns the document workflow: uploads, version attachment, lookup,
// search and preview. Every multi-step write runs in one transaction; the
// blob is written first and removed if the transaction fails, so a DB error
// never leaves a dangling record and a blob error never leaves a dangling
// row.
type Service struct {
	docs  DocumentRepositoryInterface
	users UserReader
	blobs BlobStore
}

func NewService(docs DocumentRepositoryInterface, users UserReader, blobs BlobStore) *Service {
	return &Service{docs: docs, users: users, blobs: blobs}
}

// Upload creates a document, its tag set, its first version and a permission
// grant for the uploader's department, atomically.
func (s *Service) Upload(ctx context.Context, uploaderID int64, form UploadForm, fileName string, file io.Reader) (*domain.Document, error) {
	uploader, err := s.users.GetByID(ctx, uploaderID)
	if err != nil {
		return nil, err
	}

	stored, err := s.blobs.Save(fileName, file)
	if err != nil {
		return nil, err
	}

	var docID int64
	err = s.docs.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc := domain.Document{Title: form.Title}
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}

		for _, name := range splitTags(form.Tags) {
			var tag domain.Tag
			if err := tx.Where(domain.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			if err := tx.Model(&doc).Association("Tags").Append(&tag); err != nil {
				return err
			}
		}

		version := domain.DocumentVersion{
			DocumentID:    doc.ID,
			UploadedBy:    uploaderID,
			VersionNumber: 1,
			FileKey:       stored.Key,
			FileName:      stored.Name,
			ContentType:   stored.ContentType,
			Size:          stored.Size,
			UploadedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		if err := tx.Model(&doc).Update("current_version_id", version.ID).Error; err != nil {
			return err
		}

		if uploader.DepartmentID != nil {
			grant := domain.Permission{DocumentID: doc.ID, DepartmentID: *uploader.DepartmentID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
				return err
			}
		}

		docID = doc.ID
		return nil
	})
	if err != nil {
		_ = s.blobs.Remove(stored.Key)
		return nil, err
	}

	return s.Get(ctx, docID)
}

// AttachVersion appends a new version. The version number is server-assigned
// (max existing + 1) inside the transaction, and the current-version pointer
// only ever moves forward.
func (s *Service) AttachVersion(ctx context.Context, documentID, uploaderID int64, fileName string, file io.Reader) (*domain.DocumentVersion, error) {
	exists, err := s.docs.Exists(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDocumentNotFound
	}

	stored, err := s.blobs.Save(fileName, file)
	if err != nil {
		return nil, err
	}

	var version domain.DocumentVersion
	err = s.docs.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Concurrent attachers racing on max(version_number) collide on the
		// unique (document_id, version_number) index and roll back.
		var doc domain.Document
		if err := tx.First(&doc, documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}

		var maxNumber int
		row := tx.Model(&domain.DocumentVersion{}).
			Where("document_id = ?", documentID).
			Select("COALESCE(MAX(version_number), 0)").
			Row()
		if err := row.Scan(&maxNumber); err != nil {
			return err
		}

		version = domain.DocumentVersion{
			DocumentID:    documentID,
			UploadedBy:    uploaderID,
			VersionNumber: maxNumber + 1,
			FileKey:       stored.Key,
			FileName:      stored.Name,
			ContentType:   stored.ContentType,
			Size:          stored.Size,
			UploadedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		// Monotonic pointer policy: never move the current version backwards.
		if doc.CurrentVersionID != nil {
			var current domain.DocumentVersion
			if err := tx.First(&current, *doc.CurrentVersionID).Error; err != nil {
				return err
			}
			if version.VersionNumber <= current.VersionNumber {
				return nil
			}
		}

		return tx.Model(&doc).Update("current_version_id", version.ID).Error
	})
	if err != nil {
		_ = s.blobs.Remove(stored.Key)
		return nil, err
	}

	return &version, nil
}

func (s *Service) Get(ctx context.Context, documentID int64) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *Service) SearchByTitle(ctx context.Context, q string) ([]domain.Document, error) {
	return s.docs.SearchByTitle(ctx, q)
}

// ListVersions mirrors the original API: an unknown document yields an empty
// list, not an error.
func (s *Service) ListVersions(ctx context.Context, documentID int64) ([]domain.DocumentVersion, error) {
	return s.docs.ListVersions(ctx, documentID)
}

// Download streams the current version's bytes. A missing blob on disk is a
// not-found condition, never a crash.
func (s *Service) Download(ctx context.Context, documentID int64) (*domain.DocumentVersion, io.ReadCloser, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if doc.CurrentVersionID == nil {
		return nil, nil, ErrVersionNotFound
	}

	version, err := s.docs.GetVersionByID(ctx, *doc.CurrentVersionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrVersionNotFound
		}
		return nil, nil, err
	}

	rc, err := s.blobs.Open(version.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, nil, ErrFileMissing
		}
		return nil, nil, err
	}
	return version, rc, nil
}

// Preview returns the bytes of a specific version for inline rendering.
// Only image, text, JSON and XML types are supported; the decision is based
// on the original filename's extension alone.
func (s *Service) Preview(ctx context.Context, documentID, versionID int64) (*domain.DocumentVersion, string, io.ReadCloser, error) {
	version, err := s.docs.GetVersion(ctx, documentID, versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", nil, ErrVersionNotFound
		}
		return nil, "", nil, err
	}

	rc, err := s.blobs.Open(version.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, "", nil, ErrFileMissing
		}
		return nil, "", nil, err
	}

	mimeType := storage.TypeByName(version.FileName)
	if !previewable(mimeType) {
		_ = rc.Close()
		return nil, "", nil, ErrUnsupportedPreview
	}

	return version, mimeType, rc, nil
}

func previewable(mimeType string) bool {
	switch {
	case mimeType == "":
		return false
	case strings.HasPrefix(mimeType, "image/"):
		return true
	case strings.HasPrefix(mimeType, "text/"):
		return true
	case mimeType == "application/json" || mimeType == "application/xml":
		return true
	}
	return false
}

func splitTags(csv string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, raw := range strings.Split(csv, ",") {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
