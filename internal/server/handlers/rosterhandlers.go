package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// GetRoster returns the enrolled students of a course site's official
// sections, grouped with the section list.
func (h *Handler) GetRoster(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	official, sectionIDs, sorted, err := h.officialSections(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load official sections"})
		return
	}
	students := []types.RosterStudent{}
	if len(sectionIDs) > 0 {
		students, err = h.loch.SectionEnrollments(c.Request.Context(), sorted[0].TermID, sectionIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load roster"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"sections": official,
		"students": students,
	})
}

// ExportRoster streams the roster as CSV.
func (h *Handler) ExportRoster(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	_, sectionIDs, sorted, err := h.officialSections(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load official sections"})
		return
	}
	var students []types.RosterStudent
	if len(sectionIDs) > 0 {
		students, err = h.loch.SectionEnrollments(c.Request.Context(), sorted[0].TermID, sectionIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load roster"})
			return
		}
	}

	// One CSV line per student, with their section ids joined.
	sectionsByStudent := map[string][]string{}
	var order []string
	bySID := map[string]types.RosterStudent{}
	for _, student := range students {
		if _, ok := bySID[student.SID]; !ok {
			order = append(order, student.SID)
			bySID[student.SID] = student
		}
		sectionsByStudent[student.SID] = append(sectionsByStudent[student.SID], student.SectionID)
	}

	filename := fmt.Sprintf("course_%d_rosters-%s.csv", siteID, time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"Name", "Student ID", "UID", "Email", "Sections"})
	for _, sid := range order {
		student := bySID[sid]
		email := ""
		if student.Email != nil {
			email = *student.Email
		}
		name := strings.TrimSpace(student.FirstName + " " + student.LastName)
		_ = writer.Write([]string{name, student.SID, student.UID, email, strings.Join(sectionsByStudent[sid], ", ")})
	}
	writer.Flush()
}
