package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/canvas"
	"github.com/ets-berkeley-edu/ripley/internal/dataloch"
	"github.com/ets-berkeley-edu/ripley/internal/jobs"
	"github.com/ets-berkeley-edu/ripley/internal/mailinglist"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// CanvasClient is the slice of the Canvas API the handlers consume.
type CanvasClient interface {
	GetCourse(ctx context.Context, siteID int) (*types.CanvasSite, error)
	GetCourseSections(ctx context.Context, siteID int) ([]types.CanvasSection, error)
	GetCourseUsers(ctx context.Context, siteID int) ([]types.CanvasUser, error)
	GetCourseSettings(ctx context.Context, siteID int) (*types.CourseSettings, error)
	GetTerms(ctx context.Context) ([]types.CanvasTerm, error)
}

// Warehouse is the slice of the data loch the handlers consume.
type Warehouse interface {
	GradesWithDemographics(ctx context.Context, termID string, sectionIDs []string) ([]types.EnrollmentGradeRow, error)
	GradesWithEnrollments(ctx context.Context, termID string, sectionIDs []string) ([]types.EnrollmentGradeRow, error)
	Sections(ctx context.Context, termID string, sectionIDs []string) ([]types.SectionRow, error)
	InstructingSections(ctx context.Context, instructorUID string, termIDs []string) ([]types.SectionRow, error)
	CurrentTermIndex(ctx context.Context) (dataloch.TermIndex, error)
	ProfileAndGrades(ctx context.Context, termID string, sectionIDs []string) ([]types.StudentGradeRow, error)
	SectionEnrollments(ctx context.Context, termID string, sectionIDs []string) ([]types.RosterStudent, error)
}

// JobQueue is the slice of the job queue the handlers consume.
type JobQueue interface {
	Enqueue(ctx context.Context, funcName string, args any) (*jobs.Job, error)
	Job(ctx context.Context, id string) (*jobs.Job, error)
}

// ListStore is the slice of the mailing list store the handlers consume.
type ListStore interface {
	FindOrInitialize(ctx context.Context, site *types.CanvasSite) (*mailinglist.MailingList, error)
	Create(ctx context.Context, site *types.CanvasSite, listName string) (*mailinglist.MailingList, error)
}

// Handler serves every API route.
type Handler struct {
	canvas             CanvasClient
	loch               Warehouse
	queue              JobQueue
	lists              ListStore
	maxDistinctCourses int
}

// New wires the handler with its collaborators.
func New(canvasClient CanvasClient, loch Warehouse, queue JobQueue, lists ListStore, maxDistinctCourses int) *Handler {
	return &Handler{
		canvas:             canvasClient,
		loch:               loch,
		queue:              queue,
		lists:              lists,
		maxDistinctCourses: maxDistinctCourses,
	}
}

// Health responds with a simple service heartbeat.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "ripley API is running",
	})
}

func siteIDOrRespond(c *gin.Context) (int, bool) {
	siteID, err := strconv.Atoi(c.Param("canvasSiteId"))
	if err != nil || siteID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "canvasSiteId must be a positive integer"})
		return 0, false
	}
	return siteID, true
}

// getCourseOrRespond loads a course site, answering 404 or 500 on failure.
func (h *Handler) getCourseOrRespond(c *gin.Context, siteID int) (*types.CanvasSite, bool) {
	course, err := h.canvas.GetCourse(c.Request.Context(), siteID)
	if errors.Is(err, canvas.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no Canvas course site found with ID " + strconv.Itoa(siteID)})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load course site"})
		return nil, false
	}
	return course, true
}

// siteJSON is the API projection of a course site.
func siteJSON(site *types.CanvasSite) gin.H {
	projection := gin.H{
		"canvasSiteId": site.ID,
		"courseCode":   site.CourseCode,
		"name":         site.Name,
		"url":          site.URL,
	}
	if site.Term != nil && site.Term.SISTermID != nil {
		projection["termId"] = *site.Term.SISTermID
	}
	return projection
}
