package api

import (
	"net/http"

	"ClearTracker/internal/repository"
	"ClearTracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GameMemoHandler 作品备注
type GameMemoHandler struct {
	memoService *service.GameMemoService
	logger      *logrus.Logger
}

// NewGameMemoHandler 创建 GameMemoHandler
func NewGameMemoHandler(db *gorm.DB, logger *logrus.Logger) *GameMemoHandler {
	return &GameMemoHandler{
		memoService: service.NewGameMemoService(repository.NewGameMemoRepository(db), logger),
		logger:      logger,
	}
}

// ListMemos 调用方全部备注
// GET /api/game-memos
func (h *GameMemoHandler) ListMemos(c *gin.Context) {
	memos, err := h.memoService.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, "ListMemos", err)
		return
	}
	out := make([]GameMemoResponse, 0, len(memos))
	for _, m := range memos {
		out = append(out, toGameMemoResponse(m))
	}
	c.JSON(http.StatusOK, out)
}

// GetMemo 某作品的备注
// GET /api/game-memos/games/:game_id
func (h *GameMemoHandler) GetMemo(c *gin.Context) {
	gameID, ok := paramID(c, "game_id")
	if !ok {
		return
	}
	m, err := h.memoService.Get(c.Request.Context(), currentUserID(c), gameID)
	if err != nil {
		writeError(c, h.logger, "GetMemo", err)
		return
	}
	if m == nil {
		notFound(c, "game memo")
		return
	}
	c.JSON(http.StatusOK, toGameMemoResponse(m))
}

// PutMemo 按 (user, game) 保存备注
// PUT /api/game-memos/games/:game_id
func (h *GameMemoHandler) PutMemo(c *gin.Context) {
	gameID, ok := paramID(c, "game_id")
	if !ok {
		return
	}
	var p service.GameMemoPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.memoService.Upsert(c.Request.Context(), currentUserID(c), gameID, p)
	if err != nil {
		writeError(c, h.logger, "PutMemo", err)
		return
	}
	c.JSON(http.StatusOK, toGameMemoResponse(m))
}

// UpdateMemo 按 ID 修改备注
// PUT /api/game-memos/:id
func (h *GameMemoHandler) UpdateMemo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p service.GameMemoPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.memoService.Update(c.Request.Context(), id, currentUserID(c), p)
	if err != nil {
		writeError(c, h.logger, "UpdateMemo", err)
		return
	}
	if m == nil {
		notFound(c, "game memo")
		return
	}
	c.JSON(http.StatusOK, toGameMemoResponse(m))
}

// DeleteMemo 删除备注
// DELETE /api/game-memos/:id
func (h *GameMemoHandler) DeleteMemo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.memoService.Delete(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		writeError(c, h.logger, "DeleteMemo", err)
		return
	}
	if !deleted {
		notFound(c, "game memo")
		return
	}
	c.Status(http.StatusNoContent)
}
