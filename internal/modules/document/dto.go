package document

// UploadForm carries the multipart fields of a document upload; the file
// itself arrives as the "file" form part.
type UploadForm struct {
	Title string `form:"title" binding:"required"`
	Tags  string `form:"tags"` // comma-separated
}
