package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/cbt-core/internal/dto"
	"github.com/lshigami/cbt-core/internal/model"
	"github.com/lshigami/cbt-core/internal/service"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	attemptService service.AttemptService
}

func NewAttemptController(attemptService service.AttemptService) *AttemptController {
	return &AttemptController{attemptService: attemptService}
}

// StartAttempt godoc
// @Summary Start a new exam attempt
// @Description Creates an IN_PROGRESS attempt for the given exam. Omit user_id for a guest attempt.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param request body dto.StartAttemptRequest true "Exam ID and optional User ID"
// @Success 201 {object} dto.AttemptDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "Exam or user not found"
// @Router /attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	attempt, err := c.attemptService.Start(req)
	if err != nil {
		respondServiceError(ctx, err, "Failed to start attempt")
		return
	}
	ctx.JSON(http.StatusCreated, attempt)
}

// GetAttemptDetail godoc
// @Summary Get attempt detail with ordered questions
// @Description Returns exam metadata and the questions in this attempt's fixed order, answer keys stripped.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param user_id query int false "Caller's user ID (required for owned attempts)"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 401 {object} dto.ErrorResponse "Not the attempt owner"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id} [get]
func (c *AttemptController) GetAttemptDetail(ctx *gin.Context) {
	attemptID, userID, ok := attemptAndUser(ctx)
	if !ok {
		return
	}
	detail, err := c.attemptService.GetDetail(attemptID, userID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to get attempt detail")
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

// SaveAnswers godoc
// @Summary Save (upsert) answers for an attempt
// @Description Idempotent per (attempt, question) pair; answers for questions outside the exam are silently skipped.
// @Tags Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param request body dto.SaveAnswersRequest true "Answers to save"
// @Success 204 "Saved"
// @Failure 401 {object} dto.ErrorResponse "Not the attempt owner"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already graded"
// @Router /attempts/{attempt_id}/answers [post]
func (c *AttemptController) SaveAnswers(ctx *gin.Context) {
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	var req dto.SaveAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	if err := c.attemptService.SaveAnswers(attemptID, req.UserID, req.Answers); err != nil {
		respondServiceError(ctx, err, "Failed to save answers")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SubmitAttempt godoc
// @Summary Submit and auto-grade an attempt
// @Description Grades all saved answers, finalizes the attempt and triggers ranking propagation for non-guest attempts.
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param user_id query int false "Caller's user ID (required for owned attempts)"
// @Success 200 {object} dto.SubmitResultDTO
// @Failure 401 {object} dto.ErrorResponse "Not the attempt owner"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already submitted"
// @Router /attempts/{attempt_id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, userID, ok := attemptAndUser(ctx)
	if !ok {
		return
	}
	result, err := c.attemptService.Submit(ctx.Request.Context(), attemptID, userID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to submit attempt")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetReview godoc
// @Summary Review a graded attempt question by question
// @Tags Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param user_id query int false "Caller's user ID (required for owned attempts)"
// @Success 200 {array} dto.ReviewItemDTO
// @Failure 401 {object} dto.ErrorResponse "Not the attempt owner"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id}/review [get]
func (c *AttemptController) GetReview(ctx *gin.Context) {
	attemptID, userID, ok := attemptAndUser(ctx)
	if !ok {
		return
	}
	items, err := c.attemptService.Review(attemptID, userID)
	if err != nil {
		respondServiceError(ctx, err, "Failed to build review")
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// GetHistory godoc
// @Summary List a user's attempts, most recent first
// @Tags Attempts
// @Produce json
// @Param user_id query int true "User ID"
// @Param limit query int false "Max rows (default 20)"
// @Success 200 {array} dto.AttemptHistoryDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid user_id"
// @Router /attempts/history [get]
func (c *AttemptController) GetHistory(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	if userID == nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "user_id query parameter is required"})
		return
	}

	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	history, err := c.attemptService.GetHistory(*userID, limit)
	if err != nil {
		respondServiceError(ctx, err, "Failed to load attempt history")
		return
	}
	ctx.JSON(http.StatusOK, history)
}

// respondServiceError maps the sentinel error kinds onto HTTP statuses.
func respondServiceError(ctx *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, model.ErrUnauthorized):
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, model.ErrAlreadySubmitted):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	default:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Unhandled service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
	}
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(v), true
}

// queryUserID parses the optional user_id query param. The auth layer is an
// external collaborator; until it fronts this API the caller identity rides
// on the query string, same shortcut the rest of the surface uses.
func queryUserID(ctx *gin.Context) (*uint, bool) {
	raw := ctx.Query("user_id")
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id format in query"})
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func attemptAndUser(ctx *gin.Context) (uint, *uint, bool) {
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return 0, nil, false
	}
	userID, ok := queryUserID(ctx)
	if !ok {
		return 0, nil, false
	}
	return attemptID, userID, true
}
