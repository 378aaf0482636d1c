package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/auth"
	"github.com/revisehub/revisehub/internal/dto"
	"github.com/revisehub/revisehub/internal/extract"
	"github.com/revisehub/revisehub/internal/service"
	"github.com/rs/zerolog/log"
)

type RevisionController struct {
	revisionSvc service.RevisionService
	extractor   extract.Extractor
}

func NewRevisionController(revisionSvc service.RevisionService, extractor extract.Extractor) *RevisionController {
	return &RevisionController{revisionSvc: revisionSvc, extractor: extractor}
}

// CreateRevision godoc
// @Summary Create a revision from study material
// @Description Creates a revision. Text is extracted from uploaded image files and joined with the description to form the question material.
// @Tags Revisions
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Revision name"
// @Param subject formData string true "Subject, e.g. Mathematics"
// @Param description formData string false "Free-form description of the material"
// @Param desiredQuestionCount formData int true "How many questions each run should have"
// @Param questionStyle formData string false "free-text (default) or multiple-choice"
// @Param accuracyThreshold formData int false "Accuracy percentage considered a pass"
// @Param files formData file false "Study material images"
// @Success 201 {object} dto.CreateRevisionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /revisions [post]
func (c *RevisionController) CreateRevision(ctx *gin.Context) {
	var req dto.CreateRevisionRequest
	if err := ctx.ShouldBind(&req); err != nil {
		respondError(ctx, fmt.Errorf("%w: %s", apperr.ErrValidation, err))
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil && err != http.ErrNotMultipart {
		respondError(ctx, fmt.Errorf("%w: %s", apperr.ErrValidation, err))
		return
	}
	var results []extract.Result
	if form != nil && len(form.File["files"]) > 0 {
		results = c.extractor.ExtractAll(ctx.Request.Context(), form.File["files"])
	}

	identity := auth.IdentityFrom(ctx)
	material := extract.JoinMaterial(req.Description, results)
	rev, err := c.revisionSvc.Create(identity, req, material)
	if err != nil {
		respondError(ctx, err)
		return
	}

	files := make([]dto.ExtractionResultResponse, 0, len(results))
	for _, r := range results {
		fr := dto.ExtractionResultResponse{Filename: r.Filename, Ok: r.Err == nil}
		if r.Err != nil {
			fr.Error = r.Err.Error()
		}
		files = append(files, fr)
	}
	ctx.JSON(http.StatusCreated, dto.CreateRevisionResponse{Revision: *rev, Files: files})
}

// ListRevisions godoc
// @Summary List the caller's revisions
// @Tags Revisions
// @Produce json
// @Success 200 {array} dto.RevisionResponse
// @Router /revisions [get]
func (c *RevisionController) ListRevisions(ctx *gin.Context) {
	revisions, err := c.revisionSvc.List(auth.IdentityFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, revisions)
}

// DeleteRevision godoc
// @Summary Delete a revision and all of its runs
// @Tags Revisions
// @Produce json
// @Param revision_id path string true "Revision ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /revisions/{revision_id} [delete]
func (c *RevisionController) DeleteRevision(ctx *gin.Context) {
	revisionID := ctx.Param("revision_id")
	if err := c.revisionSvc.Delete(auth.IdentityFrom(ctx), revisionID); err != nil {
		respondError(ctx, err)
		return
	}
	log.Info().Str("revisionID", revisionID).Msg("Revision deleted")
	ctx.Status(http.StatusNoContent)
}

// ListSubjects godoc
// @Summary List the distinct subjects of the caller's revisions
// @Tags Revisions
// @Produce json
// @Success 200 {object} dto.SubjectsResponse
// @Router /subjects [get]
func (c *RevisionController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.revisionSvc.Subjects(auth.IdentityFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SubjectsResponse{Subjects: subjects})
}
