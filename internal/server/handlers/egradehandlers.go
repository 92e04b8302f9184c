package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/jobs"
	"github.com/ets-berkeley-edu/ripley/internal/sections"
	"github.com/ets-berkeley-edu/ripley/internal/server/middleware"
)

// GetEGradeExportOptions lists the official sections and teaching terms
// available for an e-grades export.
func (h *Handler) GetEGradeExportOptions(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	settings, err := h.canvas.GetCourseSettings(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load course settings"})
		return
	}
	official, sectionIDs, sorted, err := h.officialSections(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load official sections"})
		return
	}
	var sectionTerms []sections.TeachingTermGroup
	if len(sectionIDs) > 0 {
		sectionTerms, err = h.teachingTerms(c.Request.Context(), middleware.UserFrom(c), sectionIDs, sorted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load teaching terms"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"gradingStandardEnabled": settings.GradingStandardEnabled,
		"officialSections":       official,
		"sectionTerms":           sectionTerms,
	})
}

// PrepareEGradeExport enqueues the job staging an e-grades download.
func (h *Handler) PrepareEGradeExport(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	if _, ok := h.getCourseOrRespond(c, siteID); !ok {
		return
	}
	job, err := h.queue.Enqueue(c.Request.Context(), jobs.FuncPrepareEGradeExport, jobs.EGradeExportArgs{CanvasSiteID: siteID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updates cannot be completed at this time"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobId":            job.ID,
		"jobRequestStatus": "Success",
	})
}

// EGradeExportStatus reports progress of a previously enqueued export job.
func (h *Handler) EGradeExportStatus(c *gin.Context) {
	var params struct {
		JobID string `json:"jobId"`
	}
	if err := c.ShouldBindJSON(&params); err != nil || params.JobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required parameters are missing"})
		return
	}
	job, err := h.queue.Job(c.Request.Context(), params.JobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no job found with ID " + params.JobID})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job status"})
		return
	}
	percentComplete := 0.0
	switch job.Status {
	case jobs.StatusStarted:
		percentComplete = 0.5
	case jobs.StatusFinished:
		percentComplete = 1.0
	}
	c.JSON(http.StatusOK, gin.H{
		"jobStatus":       string(job.Status),
		"percentComplete": percentComplete,
	})
}

// gradingBasisComments maps SIS grading bases to the comment column of the
// e-grades CSV.
var gradingBasisComments = map[string]string{
	"CPN": "P/NP grade",
	"DPN": "P/NP grade",
	"EPN": "P/NP grade",
	"PNP": "P/NP grade",
	"ESU": "S/U grade",
	"SUS": "S/U grade",
	"CNC": "C/NC grade",
}

// DownloadEGrades streams the e-grades CSV for one section.
func (h *Handler) DownloadEGrades(c *gin.Context) {
	gradeType := c.Query("gradeType")
	pnpCutoff := c.Query("pnpCutoff")
	sectionID := c.Query("sectionId")
	termID := c.Query("termId")
	if gradeType == "" || pnpCutoff == "" || sectionID == "" || termID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required parameters are missing"})
		return
	}
	if gradeType != "current" && gradeType != "final" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gradeType value: " + gradeType})
		return
	}
	if pnpCutoff != "ignore" && !isLetterGrade(pnpCutoff) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pnpCutoff value: " + pnpCutoff})
		return
	}
	term, err := berkeley.FromSISTermID(termID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid termId value: " + termID})
		return
	}

	rows, err := h.loch.ProfileAndGrades(c.Request.Context(), termID, []string{sectionID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load grades"})
		return
	}

	user := middleware.UserFrom(c)
	filename := fmt.Sprintf("egrades-%s-%s-#%s-%d-%d.csv", gradeType, sectionID, term.Season, term.Year, user.CanvasSiteID)
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"ID", "Name", "Grade", "Grading Basis", "Comments"})
	for _, row := range rows {
		basis := strings.ToUpper(string(row.GradingBasis))
		_ = writer.Write([]string{row.SID, row.Name, string(row.Grade), basis, gradingBasisComments[basis]})
	}
	writer.Flush()
}

func isLetterGrade(grade string) bool {
	for _, letter := range berkeley.LetterGrades {
		if grade == letter {
			return true
		}
	}
	return false
}
