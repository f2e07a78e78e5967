package handler

import (
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/imaging"
	"civictriage/backend/internal/models"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// UploadAttachments stores the multipart "files" in order and returns their URLs.
func (h *Handler) UploadAttachments(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadRequestBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, tooManyFiles())
			return
		}
		h.fail(c, badBody(err))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		h.fail(c, models.NewValidationError("files", "error.files_required", "no files uploaded"))
		return
	}
	if len(headers) > config.MaxFilesPerUpload {
		h.fail(c, tooManyFiles())
		return
	}

	files := make([]imaging.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > config.MaxUploadBytes {
			h.fail(c, models.NewValidationError("files", "error.file_too_large", "File is too large. Maximum size is 10MB."))
			return
		}
		data, err := readPart(fh)
		if err != nil {
			h.fail(c, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err))
			return
		}
		files = append(files, imaging.File{Name: fh.Filename, Data: data})
	}

	urls, err := h.Uploader.UploadAll(c.Request.Context(), files, func(done, total int) {
		log.WithFields(log.Fields{"done": done, "total": total}).Debug("attachment stored")
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"urls": urls})
}

// один запит не може тримати більше MaxFilesPerUpload повнорозмірних файлів
const maxUploadRequestBytes = config.MaxFilesPerUpload*config.MaxUploadBytes + 1<<20

func tooManyFiles() error {
	return models.NewValidationError("files", "error.too_many_files", "too many files in one upload")
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) GetAttachment(c *gin.Context) {
	a, err := h.Storage.GetAttachment(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, a.ContentType, a.Data)
}
