package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"canteen/internal/directory"
)

// GetSubjects lists all registered subjects.
func (h *Handler) GetSubjects(c *gin.Context) {
	subjects, err := h.subjects.List(c.Request.Context())
	if err != nil {
		internalError(c, "list subjects", err)
		return
	}
	if subjects == nil {
		subjects = []directory.Subject{}
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// PostSubjects creates a subject. The externalId is immutable afterwards and
// must be unique.
func (h *Handler) PostSubjects(c *gin.Context) {
	var req struct {
		ExternalID string `json:"externalId"`
		Name       string `json:"name"`
		Email      string `json:"email"`
		GroupLabel string `json:"groupLabel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	s, err := h.subjects.Create(c.Request.Context(), directory.Subject{
		ExternalID: strings.TrimSpace(req.ExternalID),
		Name:       strings.TrimSpace(req.Name),
		Email:      req.Email,
		GroupLabel: req.GroupLabel,
	})
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "external id already exists"})
		case errors.Is(err, directory.ErrInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "externalId and name are required"})
		default:
			internalError(c, "create subject", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subject": s})
}

// GetSubject returns a single subject.
func (h *Handler) GetSubject(c *gin.Context) {
	s, err := h.subjects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.subjectError(c, "get subject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": s})
}

// PutSubject updates a subject's mutable fields. externalId in the body is
// ignored; the card id never changes.
func (h *Handler) PutSubject(c *gin.Context) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		GroupLabel string `json:"groupLabel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	s, err := h.subjects.Update(c.Request.Context(), c.Param("id"), strings.TrimSpace(req.Name), req.Email, req.GroupLabel)
	if err != nil {
		if errors.Is(err, directory.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		h.subjectError(c, "update subject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": s})
}

// DeleteSubject removes a subject from the registry. Historical scan rows keep
// their denormalized snapshot.
func (h *Handler) DeleteSubject(c *gin.Context) {
	if err := h.subjects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.subjectError(c, "delete subject", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) subjectError(c *gin.Context, action string, err error) {
	if errors.Is(err, directory.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}
	internalError(c, action, err)
}
