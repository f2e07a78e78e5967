package handler

import (
	"civictriage/backend/internal/models"
	"civictriage/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) lang(c *gin.Context) string {
	return h.Localizer.Match(c.GetHeader("Accept-Language"))
}

// fail maps an error to its response. Validation errors keep their field, a missing
// record is a 404, and anything else is logged and answered with a generic 500.
func (h *Handler) fail(c *gin.Context, err error) {
	lang := h.lang(c)

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": h.Localizer.Message(lang, verr)}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": h.text(lang, "error.not_found", "not found")})
	default:
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.text(lang, "error.internal", "internal error")})
	}
}

// text is a translated string, or fallback when the key has no translation.
func (h *Handler) text(lang, key, fallback string) string {
	if msg := h.Localizer.GetString(lang, key); msg != key {
		return msg
	}
	return fallback
}

func badBody(err error) error {
	return models.NewValidationError("", "error.body_invalid", err.Error())
}
