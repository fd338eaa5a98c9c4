package document

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"docvault/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler exposes the document workflow over HTTP.
type Handler struct {
	service       *Service
	policy        AccessPolicy
	maxUploadSize int64
}

func NewHandler(service *Service, policy AccessPolicy, maxUploadSize int64) *Handler {
	return &Handler{service: service, policy: policy, maxUploadSize: maxUploadSize}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	docs := v1.Group("/documents")
	{
		docs.GET("/search", h.Search)
		docs.GET("/:id/versions", h.ListVersions)
		docs.GET("/:id/download", h.Download)
		docs.GET("/:id/versions/:version_id/preview", h.Preview)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	docs := protected.Group("/documents")
	{
		docs.POST("", h.Upload)
		docs.GET("/:id", h.Get)
		docs.POST("/:id/versions", h.AttachVersion)
	}
}

// Upload godoc
// @Summary Upload a new document
// @Description Creates a document with its first version and tag set in one transaction.
// @Tags Documents
// @Accept multipart/form-data
// @Security BearerAuth
// @Param title formData string true "Document title"
// @Param tags formData string false "Comma-separated tag names"
// @Param file formData file true "File payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,413,500 {object} map[string]interface{}
// @Router /documents [POST]
func (h *Handler) Upload(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var form UploadForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Title is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file provided")
		return
	}
	if fileHeader.Size == 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrEmptyFile.Error())
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ErrFileTooLarge.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read file")
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), userID, form, fileHeader.Filename, file)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to upload document")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"document": doc})
}

// AttachVersion godoc
// @Summary Attach a new version to a document
// @Tags Documents
// @Accept multipart/form-data
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param file formData file true "File payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,404,413,500 {object} map[string]interface{}
// @Router /documents/{id}/versions [POST]
func (h *Handler) AttachVersion(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	docID, ok := paramID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file provided")
		return
	}
	if fileHeader.Size == 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", ErrEmptyFile.Error())
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ErrFileTooLarge.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to read file")
		return
	}
	defer file.Close()

	version, err := h.service.AttachVersion(c.Request.Context(), docID, userID, fileHeader.Filename, file)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to attach version")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"version": version})
}

// Get godoc
// @Summary Fetch a document with its tags and versions
// @Tags Documents
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401,403,404,500 {object} map[string]interface{}
// @Router /documents/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	docID, ok := paramID(c, "id")
	if !ok {
		return
	}

	allowed, err := h.policy.CanRead(c.Request.Context(), docID, userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "POLICY_CHECK_FAILED", "Failed to evaluate access")
		return
	}
	if !allowed {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Your department has no access to this document")
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to fetch document")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"document": doc})
}

// Search godoc
// @Summary Search documents by title substring
// @Tags Documents
// @Param q query string true "Title substring"
// @Success 200 {object} map[string]interface{}
// @Router /documents/search [GET]
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")

	docs, err := h.service.SearchByTitle(c.Request.Context(), q)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SEARCH_FAILED", "Failed to search documents")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"documents": docs})
}

// ListVersions godoc
// @Summary List all versions of a document
// @Tags Documents
// @Param id path int true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Router /documents/{id}/versions [GET]
func (h *Handler) ListVersions(c *gin.Context) {
	docID, ok := paramID(c, "id")
	if !ok {
		return
	}

	versions, err := h.service.ListVersions(c.Request.Context(), docID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list versions")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"versions": versions})
}

// Download godoc
// @Summary Download the current version's file
// @Tags Documents
// @Param id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 404,500 {object} map[string]interface{}
// @Router /documents/{id}/download [GET]
func (h *Handler) Download(c *gin.Context) {
	docID, ok := paramID(c, "id")
	if !ok {
		return
	}

	version, rc, err := h.service.Download(c.Request.Context(), docID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
		case errors.Is(err, ErrVersionNotFound):
			response.Error(c, http.StatusNotFound, "VERSION_NOT_FOUND", "Document has no current version")
		case errors.Is(err, ErrFileMissing):
			response.Error(c, http.StatusNotFound, "FILE_NOT_FOUND", "Stored file is missing")
		default:
			response.Error(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", "Failed to download document")
		}
		return
	}
	defer rc.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", version.FileName),
	}
	c.DataFromReader(http.StatusOK, version.Size, version.ContentType, rc, extraHeaders)
}

// Preview godoc
// @Summary Render a version inline (image, text, JSON or XML)
// @Tags Documents
// @Param id path int true "Document ID"
// @Param version_id path int true "Version ID"
// @Success 200 {file} binary
// @Failure 404,415,500 {object} map[string]interface{}
// @Router /documents/{id}/versions/{version_id}/preview [GET]
func (h *Handler) Preview(c *gin.Context) {
	docID, ok := paramID(c, "id")
	if !ok {
		return
	}
	versionID, ok := paramID(c, "version_id")
	if !ok {
		return
	}

	version, mimeType, rc, err := h.service.Preview(c.Request.Context(), docID, versionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrVersionNotFound):
			response.Error(c, http.StatusNotFound, "VERSION_NOT_FOUND", "Version not found")
		case errors.Is(err, ErrFileMissing):
			response.Error(c, http.StatusNotFound, "FILE_NOT_FOUND", "Stored file is missing")
		case errors.Is(err, ErrUnsupportedPreview):
			response.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA", ErrUnsupportedPreview.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "PREVIEW_FAILED", "Failed to preview version")
		}
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, version.Size, mimeType, rc, nil)
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}
