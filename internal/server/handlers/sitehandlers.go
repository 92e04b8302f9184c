package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/gradedist"
	"github.com/ets-berkeley-edu/ripley/internal/sections"
)

// GetCanvasSite loads one course site, optionally including its users.
func (h *Handler) GetCanvasSite(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	course, ok := h.getCourseOrRespond(c, siteID)
	if !ok {
		return
	}

	response := siteJSON(course)
	if c.Query("includeUsers") == "true" {
		canvasUsers, err := h.canvas.GetCourseUsers(c.Request.Context(), siteID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load course site users"})
			return
		}
		users := make([]gin.H, 0, len(canvasUsers))
		for _, user := range canvasUsers {
			users = append(users, gin.H{
				"id":           user.ID,
				"name":         user.Name,
				"sortableName": user.SortableName,
				"uid":          user.LoginID,
				"email":        user.Email,
				"enrollments":  user.Enrollments,
			})
		}
		sort.Slice(users, func(i, j int) bool {
			return users[i]["sortableName"].(string) < users[j]["sortableName"].(string)
		})
		response["users"] = users
	}
	c.JSON(http.StatusOK, response)
}

// GetGradeDistribution aggregates grades for a course site's official
// sections: a demographic breakdown plus distributions of the most popular
// companion courses. Sites without official sections render empty structures.
func (h *Handler) GetGradeDistribution(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	course, ok := h.getCourseOrRespond(c, siteID)
	if !ok {
		return
	}
	canvasSections, err := h.canvas.GetCourseSections(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load course site sections"})
		return
	}
	projected := sections.ProjectCanvasSections(canvasSections)

	response := gin.H{
		"canvasSite":       siteJSON(course),
		"officialSections": projected,
		"demographics":     []gradedist.GradeSummary{},
		"enrollments":      map[string][]gradedist.GradeCount{},
	}
	if len(projected) == 0 {
		c.JSON(http.StatusOK, response)
		return
	}

	termID := projected[0].TermID
	sectionIDs := sections.SectionIDs(projected)

	demographicRows, err := h.loch.GradesWithDemographics(c.Request.Context(), termID, sectionIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load grades"})
		return
	}
	response["demographics"] = gradedist.Demographics(demographicRows)

	enrollmentRows, err := h.loch.GradesWithEnrollments(c.Request.Context(), termID, sectionIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load grades"})
		return
	}
	enrollments, err := gradedist.ByCourse(enrollmentRows, h.maxDistinctCourses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response["enrollments"] = enrollments

	c.JSON(http.StatusOK, response)
}

// RedirectToCanvasProfile sends the browser to a student's profile on the
// Canvas site.
func (h *Handler) RedirectToCanvasProfile(c *gin.Context) {
	siteID, ok := siteIDOrRespond(c)
	if !ok {
		return
	}
	uid := c.Param("uid")
	users, err := h.canvas.GetCourseUsers(c.Request.Context(), siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load course site users"})
		return
	}
	for _, user := range users {
		if user.LoginID != nil && *user.LoginID == uid {
			c.Redirect(http.StatusFound, "/courses/"+strconv.Itoa(siteID)+"/users/"+strconv.Itoa(user.ID))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "no course site user found with UID " + uid})
}
