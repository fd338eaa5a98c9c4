package document

import "errors"

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrVersionNotFound    = errors.New("version not found")
	ErrFileMissing        = errors.New("stored file is missing")
	ErrUnsupportedPreview = errors.New("preview not supported for this file type")
	ErrEmptyFile          = errors.New("file is empty")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
)
