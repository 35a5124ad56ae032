package api

import (
	"net/http"

	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"
	"ClearTracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ClearStatusHandler 按难易度的通关状态
type ClearStatusHandler struct {
	statusService *service.ClearStatusService
	logger        *logrus.Logger
}

// NewClearStatusHandler 创建 ClearStatusHandler
func NewClearStatusHandler(db *gorm.DB, logger *logrus.Logger, strictRules bool) *ClearStatusHandler {
	return &ClearStatusHandler{
		statusService: service.NewClearStatusService(repository.NewClearStatusRepository(db), logger, strictRules),
		logger:        logger,
	}
}

// markNotClearedRequest 取消通关标记
type markNotClearedRequest struct {
	GameID     uint64 `json:"game_id"`
	Difficulty string `json:"difficulty"`
}

// ListStatus 调用方的通关状态
// GET /api/clear-status?game_id=6
func (h *ClearStatusHandler) ListStatus(c *gin.Context) {
	gameID, present, ok := queryGameID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var (
		rows []*model.ClearStatus
		err  error
	)
	if present {
		rows, err = h.statusService.ListByUserAndGame(ctx, userID, gameID)
	} else {
		rows, err = h.statusService.ListByUser(ctx, userID)
	}
	if err != nil {
		writeError(c, h.logger, "ListStatus", err)
		return
	}
	c.JSON(http.StatusOK, toClearStatusResponses(rows))
}

// GetStatus 单条状态
// GET /api/clear-status/:id
func (h *ClearStatusHandler) GetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	st, err := h.statusService.GetByID(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		writeError(c, h.logger, "GetStatus", err)
		return
	}
	if st == nil {
		notFound(c, "clear status")
		return
	}
	c.JSON(http.StatusOK, toClearStatusResponse(st))
}

// CreateStatus 新建状态，(game, difficulty) 已存在时 409
// POST /api/clear-status
func (h *ClearStatusHandler) CreateStatus(c *gin.Context) {
	var p service.ClearStatusPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.statusService.Create(c.Request.Context(), currentUserID(c), p)
	if err != nil {
		writeError(c, h.logger, "CreateStatus", err)
		return
	}
	c.JSON(http.StatusCreated, toClearStatusResponse(st))
}

// UpdateStatus 局部更新
// PUT /api/clear-status/:id
func (h *ClearStatusHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch service.ClearStatusPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.statusService.Update(c.Request.Context(), id, currentUserID(c), patch)
	if err != nil {
		writeError(c, h.logger, "UpdateStatus", err)
		return
	}
	if st == nil {
		notFound(c, "clear status")
		return
	}
	c.JSON(http.StatusOK, toClearStatusResponse(st))
}

// DeleteStatus 删除状态
// DELETE /api/clear-status/:id
func (h *ClearStatusHandler) DeleteStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.statusService.Delete(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		writeError(c, h.logger, "DeleteStatus", err)
		return
	}
	if !deleted {
		notFound(c, "clear status")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkCleared 标记通关：不存在则创建，clear_count 累加
// POST /api/clear-status/mark-cleared
func (h *ClearStatusHandler) MarkCleared(c *gin.Context) {
	var req service.MarkClearedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.statusService.MarkCleared(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		writeError(c, h.logger, "MarkCleared", err)
		return
	}
	c.JSON(http.StatusOK, toClearStatusResponse(st))
}

// MarkNotCleared 取消通关标记，保留 clear_count/score/memo
// POST /api/clear-status/mark-not-cleared
func (h *ClearStatusHandler) MarkNotCleared(c *gin.Context) {
	var req markNotClearedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.statusService.MarkNotCleared(c.Request.Context(), currentUserID(c), req.GameID, req.Difficulty)
	if err != nil {
		writeError(c, h.logger, "MarkNotCleared", err)
		return
	}
	if st == nil {
		notFound(c, "clear status")
		return
	}
	c.JSON(http.StatusOK, toClearStatusResponse(st))
}
