package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/dto"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors onto HTTP statuses. A grading failure is
// surfaced as a bad-gateway with a fixed body so clients can distinguish
// "the grader broke" from "the answer was wrong".
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrGradingFailure):
		log.Error().Err(err).Msg("Grading failure surfaced to client")
		ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "answer could not be graded"})
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
