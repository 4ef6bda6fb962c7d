package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"restaurant-platform-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 2 * 1024 * 1024 // 2 MiB

var allowedImageMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UploadImage stores an admin-uploaded image in the blob store and returns
// its public URL. The stored name is random so uploads never collide or
// overwrite; only the extension survives from the client filename.
func UploadImage(uploader storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uploader == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image storage not configured"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if !allowedImageMime[contentType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image type"})
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExt[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file extension"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
			return
		}
		defer file.Close()

		// Read one byte past the cap to detect oversized uploads without
		// buffering them whole.
		content, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
			return
		}
		if len(content) > maxUploadSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
			return
		}

		filename := uuid.New().String() + ext
		url, err := uploader.Upload(c.Request.Context(), filename, contentType, content)
		if err != nil {
			logrus.WithError(err).Error("image upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}
