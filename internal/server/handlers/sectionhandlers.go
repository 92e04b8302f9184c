package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/jobs"
	"github.com/ets-berkeley-edu/ripley/internal/sections"
	"github.com/ets-berkeley-edu/ripley/internal/server/middleware"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// GetOfficialSections returns the merged official-sections view of a course
// site plus the acting user's teaching terms.
func (h *Handler) GetOfficialSections(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	course, ok := h.getCourseOrRespond(c, siteID)
	if !ok {
		return
	}
	user := middleware.UserFrom(c)
	canEdit := user.HasAnyRole("TeacherEnrollment", "Lead TA")

	official, sectionIDs, sorted, err := h.officialSections(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load official sections"})
		return
	}

	var teachingTerms []sections.TeachingTermGroup
	if len(sectionIDs) > 0 {
		teachingTerms, err = h.teachingTerms(c.Request.Context(), user, sectionIDs, sorted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load teaching terms"})
			return
		}
	}

	site := gin.H{
		"canEdit":          canEdit,
		"officialSections": official,
	}
	if course.Term != nil && course.Term.SISTermID != nil {
		if term, err := berkeley.FromCanvasSISTermID(*course.Term.SISTermID); err == nil {
			site["term"] = term.ToAPI()
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"canvasSite":    site,
		"teachingTerms": teachingTerms,
	})
}

// officialSections reconciles a course site's Canvas sections with their SIS
// rows. The sorted rows are returned for reuse by the teaching-terms view.
func (h *Handler) officialSections(ctx context.Context, siteID int) ([]sections.OfficialSection, []string, []types.SectionRow, error) {
	canvasSections, err := h.canvas.GetCourseSections(ctx, siteID)
	if err != nil {
		return nil, nil, nil, err
	}
	projected := sections.ProjectCanvasSections(canvasSections)
	if len(projected) == 0 {
		return nil, nil, nil, nil
	}
	sectionIDs := sections.SectionIDs(projected)
	rows, err := h.loch.Sections(ctx, projected[0].TermID, sectionIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	official, sorted := sections.ReconcileOfficial(projected, rows)
	return official, sectionIDs, sorted, nil
}

// teachingTerms builds the cross-term view of everything the user teaches,
// falling back to the course site's own rows for non-instructors.
func (h *Handler) teachingTerms(ctx context.Context, user types.CurrentUser, sectionIDs []string, fallbackRows []types.SectionRow) ([]sections.TeachingTermGroup, error) {
	index, err := h.loch.CurrentTermIndex(ctx)
	if err != nil {
		return nil, err
	}
	current, err := berkeley.FromEnglish(index.CurrentTermName)
	if err != nil {
		return nil, err
	}
	canvasTerms, err := h.canvas.GetTerms(ctx)
	if err != nil {
		return nil, err
	}
	canvasTermIDs := make([]string, 0, len(canvasTerms))
	for _, term := range canvasTerms {
		if term.SISTermID != nil {
			canvasTermIDs = append(canvasTermIDs, *term.SISTermID)
		}
	}
	candidates := sections.CandidateTerms(berkeley.CurrentTerms(current), canvasTermIDs)

	rows := fallbackRows
	if user.IsTeaching || user.MasqueradingUserID != "" {
		termIDs := make([]string, 0, len(candidates))
		for _, term := range candidates {
			termIDs = append(termIDs, term.SISTermID())
		}
		instructing, err := h.loch.InstructingSections(ctx, user.UID, termIDs)
		if err != nil {
			return nil, err
		}
		if len(instructing) > 0 {
			rows = berkeley.SortCourseSections(instructing)
		}
	}
	return sections.TeachingTerms(rows, sectionIDs), nil
}

// EditSections enqueues a background job applying section adds, removals and
// updates to a course site.
func (h *Handler) EditSections(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	course, ok := h.getCourseOrRespond(c, siteID)
	if !ok {
		return
	}

	var params struct {
		SectionIDsToAdd    []string `json:"sectionIdsToAdd"`
		SectionIDsToRemove []string `json:"sectionIdsToRemove"`
		SectionIDsToUpdate []string `json:"sectionIdsToUpdate"`
	}
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(params.SectionIDsToAdd)+len(params.SectionIDsToRemove)+len(params.SectionIDsToUpdate) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required parameters are missing"})
		return
	}

	termID := ""
	if course.Term != nil && course.Term.SISTermID != nil {
		if term, err := berkeley.FromCanvasSISTermID(*course.Term.SISTermID); err == nil {
			termID = term.SISTermID()
		}
	}
	if termID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course site has no SIS term"})
		return
	}

	job, err := h.queue.Enqueue(c.Request.Context(), jobs.FuncUpdateSections, jobs.UpdateSectionsArgs{
		CanvasSiteID:       siteID,
		TermID:             termID,
		SectionIDsToAdd:    params.SectionIDsToAdd,
		SectionIDsToRemove: params.SectionIDsToRemove,
		SectionIDsToUpdate: params.SectionIDsToUpdate,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updates cannot be completed at this time"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobId":     job.ID,
		"jobStatus": "sendingRequest",
	})
}

// GetProvisionStatus reports the state of a provisioning job.
func (h *Handler) GetProvisionStatus(c *gin.Context) {
	jobID := c.Query("jobId")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required parameters are missing"})
		return
	}
	job, err := h.queue.Job(c.Request.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no job found with ID " + jobID})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"jobId":     job.ID,
		"jobStatus": string(job.Status),
	})
}
