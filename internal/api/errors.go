package api

import (
	"errors"
	"net/http"
	"strconv"

	"ClearTracker/internal/model"
	"ClearTracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeError 把服务层错误映射为 HTTP 状态码：
// ValidationError → 400，ErrConflict → 409，ErrNotFound → 404，其余 → 500
func writeError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	body := gin.H{"error": err.Error()}
	var batchErr *service.BatchItemError
	if errors.As(err, &batchErr) {
		body["index"] = batchErr.Index
	}

	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		body["field"] = ve.Field
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, model.ErrConflict):
		logger.WithError(err).Warn(op + " conflict")
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, body)
	default:
		logger.WithError(err).Error(op + " failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// paramID 解析路径参数中的正整数 ID，失败时直接写 400
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// queryGameID 可选的 ?game_id= 参数
func queryGameID(c *gin.Context) (gameID uint64, present bool, ok bool) {
	raw, exists := c.GetQuery("game_id")
	if !exists || raw == "" {
		return 0, false, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game_id"})
		return 0, true, false
	}
	return id, true, true
}
