package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revisehub/revisehub/internal/auth"
	"github.com/revisehub/revisehub/internal/dto"
)

type Controller struct {
	revisions *RevisionController
	runs      *RunController
	verifier  *auth.Verifier
}

func NewController(revisions *RevisionController, runs *RunController, verifier *auth.Verifier) *Controller {
	return &Controller{revisions: revisions, runs: runs, verifier: verifier}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
	})

	apiV1 := router.Group("/api/v1")
	apiV1.Use(auth.Middleware(ctrl.verifier))
	{
		apiV1.GET("/me", ctrl.runs.Me)

		revisions := apiV1.Group("/revisions")
		revisions.POST("", ctrl.revisions.CreateRevision)
		revisions.GET("", ctrl.revisions.ListRevisions)
		revisions.DELETE("/:revision_id", ctrl.revisions.DeleteRevision)
		revisions.POST("/:revision_id/runs", ctrl.runs.StartRun)
		revisions.GET("/:revision_id/runs", ctrl.runs.ListRunsForRevision)

		apiV1.GET("/subjects", ctrl.revisions.ListSubjects)

		runs := apiV1.Group("/runs")
		runs.GET("", ctrl.runs.ListRuns)
		runs.GET("/:run_id/next-question", ctrl.runs.NextQuestion)
		runs.GET("/:run_id/question-count", ctrl.runs.QuestionCount)
		runs.POST("/:run_id/answers", ctrl.runs.SubmitAnswer)
		runs.POST("/:run_id/finish", ctrl.runs.FinishRun)
		runs.GET("/:run_id/summary", ctrl.runs.RunSummary)

		apiV1.GET("/completed-runs", ctrl.runs.CompletedRuns)
	}
}
