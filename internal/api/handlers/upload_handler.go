package handlers

import (
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/ylvish/torque/internal/storage"
	"github.com/ylvish/torque/internal/tasks"
)

// Upload folders accepted from clients. Anything else lands in "misc" so
// arbitrary key prefixes cannot be minted through the API.
var allowedUploadFolders = map[string]bool{
	"submissions": true,
	"listings":    true,
	"documents":   true,
}

// UploadHandler handles staff file uploads.
type UploadHandler struct {
	storageService storage.IS3Storage
	taskClient     *asynq.Client
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(storageService storage.IS3Storage, taskClient *asynq.Client) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		taskClient:     taskClient,
	}
}

func normalizeFolder(folder string) string {
	folder = strings.ToLower(strings.TrimSpace(folder))
	if !allowedUploadFolders[folder] {
		return "misc"
	}
	return folder
}

func contentTypeOf(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ct
}

// enqueueImageProcessing requests normalization for image uploads. Documents
// pass through untouched.
func (h *UploadHandler) enqueueImageProcessing(contentType, key string) {
	if h.taskClient == nil || !strings.HasPrefix(contentType, "image/") {
		return
	}
	if err := tasks.EnqueueImageProcess(h.taskClient, tasks.ImageProcessPayload{S3Key: key}); err != nil {
		log.Printf("Failed to enqueue image processing for %s: %v", key, err)
	}
}

// Upload handles POST /v1/staff/uploads with a single multipart "file" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file field"})
		return
	}
	folder := normalizeFolder(c.PostForm("folder"))

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.storageService.Upload(c.Request.Context(), folder, fileHeader.Filename, contentTypeOf(fileHeader), file)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	h.enqueueImageProcessing(contentTypeOf(fileHeader), result.Key)

	c.JSON(http.StatusCreated, result)
}

// UploadBatch handles POST /v1/staff/uploads/batch with a multipart "files"
// field repeated per file. Files upload one at a time; a mid-batch failure
// reports the URLs that made it.
func (h *UploadHandler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing files field"})
		return
	}
	folder := normalizeFolder(c.PostForm("folder"))

	files := make([]storage.FileInput, 0, len(fileHeaders))
	opened := make([]multipart.File, 0, len(fileHeaders))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		opened = append(opened, f)
		files = append(files, storage.FileInput{
			Filename:    fh.Filename,
			ContentType: contentTypeOf(fh),
			Body:        f,
		})
	}

	results, err := h.storageService.UploadBatch(c.Request.Context(), folder, files, func(uploaded, total int) {
		log.Printf("Batch upload progress: %d/%d", uploaded, total)
	})

	for i, result := range results {
		h.enqueueImageProcessing(files[i].ContentType, result.Key)
	}

	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Batch upload failed",
			"uploaded": results,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"uploaded": results})
}

// presignRequest asks for a client-direct upload URL.
type presignRequest struct {
	Folder      string `json:"folder"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// PresignUpload handles POST /v1/staff/uploads/presign.
func (h *UploadHandler) PresignUpload(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filename is required"})
		return
	}
	if req.ContentType == "" {
		req.ContentType = "application/octet-stream"
	}

	url, key, err := h.storageService.GeneratePresignedPutURL(c.Request.Context(), normalizeFolder(req.Folder), req.Filename, req.ContentType)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}
