package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/mailinglist"
)

// GetMailingList returns the course site's mailing list, initializing an
// unsaved record with a derived name when none exists yet.
func (h *Handler) GetMailingList(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	course, ok := h.getCourseOrRespond(c, siteID)
	if !ok {
		return
	}
	list, err := h.lists.FindOrInitialize(c.Request.Context(), course)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mailing list"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateMailingList stores a mailing list for the course site. Admins may
// override the derived name.
func (h *Handler) CreateMailingList(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	course, ok := h.getCourseOrRespond(c, siteID)
	if !ok {
		return
	}
	var params struct {
		ListName string `json:"listName"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	list, err := h.lists.Create(c.Request.Context(), course, params.ListName)
	if errors.Is(err, mailinglist.ErrAlreadyExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mailing list already exists for this course site"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create mailing list"})
		return
	}
	c.JSON(http.StatusCreated, list)
}
