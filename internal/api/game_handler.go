package api

import (
	"net/http"
	"strconv"

	"ClearTracker/internal/model"
	"ClearTracker/internal/repository"
	"ClearTracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GameHandler 作品目录、机体与规则查询
type GameHandler struct {
	gameService      *service.GameService
	characterService *service.GameCharacterService
	logger           *logrus.Logger
}

// NewGameHandler 创建 GameHandler
func NewGameHandler(db *gorm.DB, logger *logrus.Logger) *GameHandler {
	gameRepo := repository.NewGameRepository(db)
	return &GameHandler{
		gameService:      service.NewGameService(gameRepo, logger),
		characterService: service.NewGameCharacterService(repository.NewGameCharacterRepository(db), gameRepo, logger),
		logger:           logger,
	}
}

// ListGames 作品列表
// GET /api/games?series_number=6&game_type=main_series
func (h *GameHandler) ListGames(c *gin.Context) {
	var filter repository.GameFilter
	if raw := c.Query("series_number"); raw != "" {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid series_number"})
			return
		}
		filter.SeriesNumber = &n
	}
	if raw := c.Query("game_type"); raw != "" {
		gt, err := model.ParseGameType(raw)
		if err != nil {
			writeError(c, h.logger, "ListGames", err)
			return
		}
		filter.GameType = gt
	}

	games, err := h.gameService.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, "ListGames", err)
		return
	}
	out := make([]GameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, toGameResponse(g))
	}
	c.JSON(http.StatusOK, out)
}

// GetGame 作品详情
// GET /api/games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := h.gameService.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "GetGame", err)
		return
	}
	if g == nil {
		notFound(c, "game")
		return
	}
	c.JSON(http.StatusOK, toGameResponse(g))
}

// CreateGame 新建作品（管理员）
// POST /api/games
func (h *GameHandler) CreateGame(c *gin.Context) {
	var p service.GamePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	g, err := h.gameService.Create(c.Request.Context(), p)
	if err != nil {
		writeError(c, h.logger, "CreateGame", err)
		return
	}
	c.JSON(http.StatusCreated, toGameResponse(g))
}

// UpdateGame 整体更新作品（管理员）
// PUT /api/games/:id
func (h *GameHandler) UpdateGame(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p service.GamePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	g, err := h.gameService.Update(c.Request.Context(), id, p)
	if err != nil {
		writeError(c, h.logger, "UpdateGame", err)
		return
	}
	if g == nil {
		notFound(c, "game")
		return
	}
	c.JSON(http.StatusOK, toGameResponse(g))
}

// DeleteGame 删除作品（管理员）
// DELETE /api/games/:id
func (h *GameHandler) DeleteGame(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.gameService.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "DeleteGame", err)
		return
	}
	if !deleted {
		notFound(c, "game")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetRules 作品规则：模式、难易度、特殊条件与机体区间
// GET /api/games/:id/rules
func (h *GameHandler) GetRules(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.gameService.Rules(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "GetRules", err)
		return
	}
	if res == nil {
		notFound(c, "game")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListCharacters 作品的机体列表
// GET /api/games/:id/characters
func (h *GameHandler) ListCharacters(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	chars, err := h.characterService.ListByGame(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "ListCharacters", err)
		return
	}
	out := make([]GameCharacterResponse, 0, len(chars))
	for _, ch := range chars {
		out = append(out, toGameCharacterResponse(ch))
	}
	c.JSON(http.StatusOK, out)
}

// CreateCharacter 新增机体（管理员）
// POST /api/games/:id/characters
func (h *GameHandler) CreateCharacter(c *gin.Context) {
	gameID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p service.GameCharacterPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	ch, err := h.characterService.Create(c.Request.Context(), gameID, p)
	if err != nil {
		writeError(c, h.logger, "CreateCharacter", err)
		return
	}
	if ch == nil {
		notFound(c, "game")
		return
	}
	c.JSON(http.StatusCreated, toGameCharacterResponse(ch))
}

// UpdateCharacter 修改机体（管理员）
// PUT /api/game-characters/:id
func (h *GameHandler) UpdateCharacter(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p service.GameCharacterPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	ch, err := h.characterService.Update(c.Request.Context(), id, p)
	if err != nil {
		writeError(c, h.logger, "UpdateCharacter", err)
		return
	}
	if ch == nil {
		notFound(c, "character")
		return
	}
	c.JSON(http.StatusOK, toGameCharacterResponse(ch))
}

// DeleteCharacter 删除机体（管理员）
// DELETE /api/game-characters/:id
func (h *GameHandler) DeleteCharacter(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.characterService.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "DeleteCharacter", err)
		return
	}
	if !deleted {
		notFound(c, "character")
		return
	}
	c.Status(http.StatusNoContent)
}
