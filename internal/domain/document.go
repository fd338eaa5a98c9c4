package domain

import "time"

// Document is the aggregate root for its versions and tag associations.
// CurrentVersionID always references a version belonging to this document.
type Document struct {
	ID               int64             `gorm:"column:id;primaryKey" json:"id"`
	Title            string            `gorm:"column:title" json:"title"`
	CurrentVersionID *int64            `gorm:"column:current_version_id" json:"current_version_id,omitempty"`
	Tags             []Tag             `gorm:"many2many:document_tags" json:"tags"`
	Versions         []DocumentVersion `gorm:"foreignKey:DocumentID" json:"versions"`
	CreatedAt        time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (Document) TableName() string { return "documents" }

// DocumentVersion is an immutable snapshot of a document's file content.
// Rows are append-only; version numbers are assigned by the server and are
// unique per document.
type DocumentVersion struct {
	ID            int64     `gorm:"column:id;primaryKey" json:"id"`
	DocumentID    int64     `gorm:"column:document_id;uniqueIndex:idx_document_version_number" json:"document_id"`
	UploadedBy    int64     `gorm:"column:uploaded_by" json:"uploaded_by"`
	VersionNumber int       `gorm:"column:version_number;uniqueIndex:idx_document_version_number" json:"version_number"`
	FileKey       string    `gorm:"column:file_key" json:"-"` // blob store key, never the client filename
	FileName      string    `gorm:"column:file_name" json:"file_name"`
	ContentType   string    `gorm:"column:content_type" json:"content_type"`
	Size          int64     `gorm:"column:size" json:"size"`
	UploadedAt    time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (DocumentVersion) TableName() string { return "document_versions" }

type Tag struct {
	ID   int64  `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;uniqueIndex" json:"name"`
}

func (Tag) TableName() string { return "tags" }

// Permission grants a department read access to a document.
type Permission struct {
	DocumentID   int64 `gorm:"column:document_id;primaryKey" json:"document_id"`
	DepartmentID int64 `gorm:"column:department_id;primaryKey" json:"department_id"`
}

func (Permission) TableName() string { return "permissions" }
