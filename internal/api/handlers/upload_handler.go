package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/inventory-optimizer/internal/service"
)

type UploadHandler struct {
	uploads  *service.UploadService
	maxBytes int64
}

// NewUploadHandler creates the upload handler. maxBytes <= 0 disables the size limit.
func NewUploadHandler(uploads *service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{uploads: uploads, maxBytes: maxBytes}
}

// Upload accepts a workbook in the multipart field "file".
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}

	res, err := h.uploads.Upload(c.Request.Context(), sessionID(c), header.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "File uploaded successfully",
		"sessionId": res.SessionID,
		"fileName":  res.FileName,
		"rowCount":  res.RowCount,
		"preview":   res.Preview,
	})
}

// Status reports whether the session holds data.
func (h *UploadHandler) Status(c *gin.Context) {
	status, err := h.uploads.Status(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
