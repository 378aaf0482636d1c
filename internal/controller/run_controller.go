package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/auth"
	"github.com/revisehub/revisehub/internal/dto"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/service"
)

type RunController struct {
	coordinator service.RunCoordinator
}

func NewRunController(coordinator service.RunCoordinator) *RunController {
	return &RunController{coordinator: coordinator}
}

// StartRun godoc
// @Summary Start a new run for a revision
// @Description Creates a run and generates its questions up front.
// @Tags Runs
// @Produce json
// @Param revision_id path string true "Revision ID"
// @Success 201 {object} dto.RunResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /revisions/{revision_id}/runs [post]
func (c *RunController) StartRun(ctx *gin.Context) {
	run, err := c.coordinator.Start(ctx.Request.Context(), auth.IdentityFrom(ctx), ctx.Param("revision_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.RunResponse{
		ID:            run.ID,
		RevisionID:    run.RevisionID,
		State:         string(run.State),
		QuestionCount: len(run.Questions),
		CreatedAt:     run.CreatedAt,
	})
}

// ListRuns godoc
// @Summary List the caller's runs
// @Tags Runs
// @Produce json
// @Success 200 {array} dto.RunResponse
// @Router /runs [get]
func (c *RunController) ListRuns(ctx *gin.Context) {
	c.listRuns(ctx, "")
}

// ListRunsForRevision godoc
// @Summary List the runs of one revision
// @Tags Runs
// @Produce json
// @Param revision_id path string true "Revision ID"
// @Success 200 {array} dto.RunResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /revisions/{revision_id}/runs [get]
func (c *RunController) ListRunsForRevision(ctx *gin.Context) {
	c.listRuns(ctx, ctx.Param("revision_id"))
}

func (c *RunController) listRuns(ctx *gin.Context, revisionID string) {
	runs, err := c.coordinator.ListRuns(auth.IdentityFrom(ctx), revisionID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	resp := make([]dto.RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, dto.RunResponse{
			ID:            run.ID,
			RevisionID:    run.RevisionID,
			State:         string(run.State),
			QuestionCount: len(run.Questions),
			CreatedAt:     run.CreatedAt,
		})
	}
	ctx.JSON(http.StatusOK, resp)
}

// NextQuestion godoc
// @Summary Fetch the next question of a run
// @Description Serves the question at the cursor and advances it. Once the run is exhausted the question is null and done is true.
// @Tags Runs
// @Produce json
// @Param run_id path string true "Run ID"
// @Success 200 {object} dto.NextQuestionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /runs/{run_id}/next-question [get]
func (c *RunController) NextQuestion(ctx *gin.Context) {
	q, err := c.coordinator.NextQuestion(auth.IdentityFrom(ctx), ctx.Param("run_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if q == nil {
		ctx.JSON(http.StatusOK, dto.NextQuestionResponse{Done: true})
		return
	}
	ctx.JSON(http.StatusOK, dto.NextQuestionResponse{
		Question: &dto.QuestionResponse{ID: q.ID, Text: q.Text, Style: q.Style, Choices: q.Choices},
	})
}

// QuestionCount godoc
// @Summary Number of questions in a run
// @Tags Runs
// @Produce json
// @Param run_id path string true "Run ID"
// @Success 200 {object} dto.QuestionCountResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /runs/{run_id}/question-count [get]
func (c *RunController) QuestionCount(ctx *gin.Context) {
	count, err := c.coordinator.QuestionCount(auth.IdentityFrom(ctx), ctx.Param("run_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.QuestionCountResponse{Count: count})
}

// SubmitAnswer godoc
// @Summary Submit an answer for grading
// @Description Grades the answer and stores the result. Resubmitting for the same question overwrites the previous answer.
// @Tags Runs
// @Accept json
// @Produce json
// @Param run_id path string true "Run ID"
// @Param answer body dto.SubmitAnswerRequest true "The answer"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse "The answer could not be graded"
// @Router /runs/{run_id}/answers [post]
func (c *RunController) SubmitAnswer(ctx *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, fmt.Errorf("%w: %s", apperr.ErrValidation, err))
		return
	}
	answer, err := c.coordinator.SubmitAnswer(ctx.Request.Context(), auth.IdentityFrom(ctx), ctx.Param("run_id"), req.QuestionID, req.Answer)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, answerToDTO(*answer))
}

// FinishRun godoc
// @Summary Finish a run and get its summary
// @Description Marks the run completed. Finishing an already completed run returns the same summary.
// @Tags Runs
// @Produce json
// @Param run_id path string true "Run ID"
// @Success 200 {object} dto.RunSummaryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /runs/{run_id}/finish [post]
func (c *RunController) FinishRun(ctx *gin.Context) {
	summary, err := c.coordinator.Finish(auth.IdentityFrom(ctx), ctx.Param("run_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summaryToDTO(*summary))
}

// RunSummary godoc
// @Summary Current summary of a run
// @Tags Runs
// @Produce json
// @Param run_id path string true "Run ID"
// @Success 200 {object} dto.RunSummaryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /runs/{run_id}/summary [get]
func (c *RunController) RunSummary(ctx *gin.Context) {
	summary, err := c.coordinator.Summarize(auth.IdentityFrom(ctx), ctx.Param("run_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summaryToDTO(*summary))
}

// CompletedRuns godoc
// @Summary List the caller's completed runs
// @Tags Runs
// @Produce json
// @Success 200 {object} dto.CompletedRunsResponse
// @Router /completed-runs [get]
func (c *RunController) CompletedRuns(ctx *gin.Context) {
	summaries, err := c.coordinator.ListCompleted(auth.IdentityFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	runs := make([]dto.RunSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		runs = append(runs, summaryToDTO(s))
	}
	ctx.JSON(http.StatusOK, dto.CompletedRunsResponse{Runs: runs})
}

// Me godoc
// @Summary The caller's identity
// @Tags Identity
// @Produce json
// @Success 200 {object} dto.IdentityResponse
// @Router /me [get]
func (c *RunController) Me(ctx *gin.Context) {
	identity := auth.IdentityFrom(ctx)
	ctx.JSON(http.StatusOK, dto.IdentityResponse{
		Authenticated: identity.Authenticated(),
		UserID:        identity.UserID,
		Email:         identity.Email,
		Name:          identity.Name,
		SessionID:     identity.SessionID,
	})
}

func answerToDTO(a model.Answer) dto.AnswerResponse {
	return dto.AnswerResponse{
		QuestionID:    a.QuestionID,
		StudentAnswer: a.StudentAnswer,
		Tier:          string(a.Tier),
		CorrectAnswer: a.CorrectAnswer,
		Explanation:   a.Explanation,
		GradedAt:      a.GradedAt,
	}
}

func summaryToDTO(s service.Summary) dto.RunSummaryResponse {
	answers := make([]dto.AnswerResponse, 0, len(s.Answers))
	for _, a := range s.Answers {
		answers = append(answers, answerToDTO(a))
	}
	return dto.RunSummaryResponse{
		RunID:         s.RunID,
		RevisionID:    s.RevisionID,
		State:         string(s.State),
		QuestionCount: s.QuestionCount,
		AnsweredCount: s.AnsweredCount,
		Accuracy:      s.Accuracy,
		ThresholdMet:  s.ThresholdMet,
		Answers:       answers,
		CompletedAt:   s.CompletedAt,
	}
}
