package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/cbt-core/internal/dto"
	"github.com/lshigami/cbt-core/internal/ranking"
	"github.com/rs/zerolog/log"
)

type RankingController struct {
	rankingService ranking.Service
}

func NewRankingController(rankingService ranking.Service) *RankingController {
	return &RankingController{rankingService: rankingService}
}

// GetExamRanking godoc
// @Summary Top-N score leaderboard for one exam
// @Tags Rankings
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} dto.RankDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid exam_id"
// @Router /rankings/exams/{exam_id} [get]
func (c *RankingController) GetExamRanking(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}
	ranks, err := c.rankingService.GetExamRanking(ctx.Request.Context(), examID, limitParam(ctx, 50))
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("GetExamRanking: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load exam ranking"})
		return
	}
	ctx.JSON(http.StatusOK, ranks)
}

// GetGlobalSubmissionRanking godoc
// @Summary Top-N global submission-count leaderboard
// @Tags Rankings
// @Produce json
// @Param limit query int false "Max rows (default 50)"
// @Success 200 {array} dto.RankDTO
// @Router /rankings/submissions [get]
func (c *RankingController) GetGlobalSubmissionRanking(ctx *gin.Context) {
	ranks, err := c.rankingService.GetGlobalSubmissionRanking(ctx.Request.Context(), limitParam(ctx, 50))
	if err != nil {
		log.Error().Err(err).Msg("GetGlobalSubmissionRanking: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load submission ranking"})
		return
	}
	ctx.JSON(http.StatusOK, ranks)
}

// GetMySubmissionRank godoc
// @Summary A single user's rank on the global submission board
// @Tags Rankings
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} dto.RankDTO
// @Failure 404 {object} dto.ErrorResponse "User has no ranked submissions"
// @Router /rankings/submissions/me [get]
func (c *RankingController) GetMySubmissionRank(ctx *gin.Context) {
	userID, ok := queryUserID(ctx)
	if !ok {
		return
	}
	if userID == nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "user_id query parameter is required"})
		return
	}

	rank, err := c.rankingService.GetMySubmissionRank(ctx.Request.Context(), *userID)
	if err != nil {
		log.Error().Err(err).Uint("userID", *userID).Msg("GetMySubmissionRank: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load rank"})
		return
	}
	if rank == nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "No ranked submissions for this user"})
		return
	}
	ctx.JSON(http.StatusOK, rank)
}

func limitParam(ctx *gin.Context, fallback int) int {
	raw := ctx.Query("limit")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
