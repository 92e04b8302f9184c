package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ets-berkeley-edu/ripley/internal/server/handlers"
	"github.com/ets-berkeley-edu/ripley/internal/server/middleware"
)

// New wires handlers and middleware into an HTTP router.
func New(handler *handlers.Handler, mw *middleware.Manager) http.Handler {
	router := gin.Default()
	router.Use(mw.CurrentUser())

	router.GET("/health", handler.Health)

	api := router.Group("/api")
	api.Use(mw.RateLimit(120, time.Minute))

	site := api.Group("/canvas_site")
	{
		site.GET("/provision/status",
			mw.RequireRole("TeacherEnrollment"), handler.GetProvisionStatus)

		site.GET("/:canvasSiteId", handler.GetCanvasSite)
		site.GET("/:canvasSiteId/grade_distribution",
			mw.RequireRole("TeacherEnrollment", "Lead TA"), handler.GetGradeDistribution)
		site.GET("/:canvasSiteId/provision/sections",
			mw.RequireRole("DesignerEnrollment", "TeacherEnrollment", "TaEnrollment", "Lead TA", "Reader"),
			handler.GetOfficialSections)
		site.POST("/:canvasSiteId/provision/sections",
			mw.RequireRole("TeacherEnrollment", "Lead TA"), handler.EditSections)

		site.GET("/:canvasSiteId/egrade_export/options",
			mw.RequireRole("TeacherEnrollment"), handler.GetEGradeExportOptions)
		site.POST("/:canvasSiteId/egrade_export/prepare",
			mw.RequireRole("TeacherEnrollment"), handler.PrepareEGradeExport)
		site.GET("/egrade_export/download",
			mw.RequireRole("TeacherEnrollment"), handler.DownloadEGrades)
		site.POST("/egrade_export/status",
			mw.RequireRole("TeacherEnrollment"), handler.EGradeExportStatus)

		site.GET("/:canvasSiteId/roster",
			mw.RequireRole("TeacherEnrollment", "TaEnrollment", "Lead TA"), handler.GetRoster)
		site.GET("/:canvasSiteId/export_roster",
			mw.RequireRole("TeacherEnrollment", "TaEnrollment", "Lead TA"), handler.ExportRoster)
	}

	lists := api.Group("/mailing_list")
	lists.Use(mw.RequireRole("TeacherEnrollment", "Lead TA"))
	{
		lists.GET("/:canvasSiteId", handler.GetMailingList)
		lists.POST("/:canvasSiteId/create", handler.CreateMailingList)
	}

	redirects := router.Group("/redirect/canvas")
	redirects.Use(mw.RequireUser())
	{
		redirects.GET("/:canvasSiteId/user/:uid", handler.RedirectToCanvasProfile)
	}

	return router
}
