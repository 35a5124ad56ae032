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

// ClearRecordHandler 通关记录接口，所有操作只作用于调用方自己的记录
type ClearRecordHandler struct {
	recordService *service.ClearRecordService
	logger        *logrus.Logger
}

// NewClearRecordHandler 创建 ClearRecordHandler
func NewClearRecordHandler(db *gorm.DB, logger *logrus.Logger, strictRules bool) *ClearRecordHandler {
	return &ClearRecordHandler{
		recordService: service.NewClearRecordService(repository.NewClearRecordRepository(db), logger, strictRules),
		logger:        logger,
	}
}

// ListRecords 调用方的通关记录
// GET /api/clear-records?game_id=6
func (h *ClearRecordHandler) ListRecords(c *gin.Context) {
	gameID, present, ok := queryGameID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var (
		records []*model.ClearRecord
		err     error
	)
	if present {
		records, err = h.recordService.GetUserGameRecords(ctx, userID, gameID)
	} else {
		records, err = h.recordService.GetUserRecords(ctx, userID)
	}
	if err != nil {
		writeError(c, h.logger, "ListRecords", err)
		return
	}
	c.JSON(http.StatusOK, toClearRecordResponses(records))
}

// GetRecord 单条记录；不存在或不属于调用方都返回 404
// GET /api/clear-records/:id
func (h *ClearRecordHandler) GetRecord(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rec, err := h.recordService.GetByID(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		writeError(c, h.logger, "GetRecord", err)
		return
	}
	if rec == nil {
		notFound(c, "clear record")
		return
	}
	c.JSON(http.StatusOK, toClearRecordResponse(rec))
}

// CreateRecord 新建记录，自然键已存在时 409
// POST /api/clear-records
func (h *ClearRecordHandler) CreateRecord(c *gin.Context) {
	var p service.ClearRecordPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	rec, err := h.recordService.Create(c.Request.Context(), currentUserID(c), p)
	if err != nil {
		writeError(c, h.logger, "CreateRecord", err)
		return
	}
	c.JSON(http.StatusCreated, toClearRecordResponse(rec))
}

// UpdateRecord 局部更新：缺省字段不变，显式 null 清空
// PUT /api/clear-records/:id
func (h *ClearRecordHandler) UpdateRecord(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch service.ClearRecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	rec, err := h.recordService.Update(c.Request.Context(), id, currentUserID(c), patch)
	if err != nil {
		writeError(c, h.logger, "UpdateRecord", err)
		return
	}
	if rec == nil {
		notFound(c, "clear record")
		return
	}
	c.JSON(http.StatusOK, toClearRecordResponse(rec))
}

// DeleteRecord 删除记录
// DELETE /api/clear-records/:id
func (h *ClearRecordHandler) DeleteRecord(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.recordService.Delete(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		writeError(c, h.logger, "DeleteRecord", err)
		return
	}
	if !deleted {
		notFound(c, "clear record")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpsertRecord 按自然键插入或整体覆盖
// POST /api/clear-records/upsert
func (h *ClearRecordHandler) UpsertRecord(c *gin.Context) {
	var p service.ClearRecordPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	rec, err := h.recordService.Upsert(c.Request.Context(), currentUserID(c), p)
	if err != nil {
		writeError(c, h.logger, "UpsertRecord", err)
		return
	}
	c.JSON(http.StatusOK, toClearRecordResponse(rec))
}

// BatchUpsertRecords 按顺序逐条 upsert，遇到第一条失败即停止（已写入的不回滚），错误体带 index
// POST /api/clear-records/batch
func (h *ClearRecordHandler) BatchUpsertRecords(c *gin.Context) {
	var payloads []service.ClearRecordPayload
	if err := c.ShouldBindJSON(&payloads); err != nil {
		badRequest(c, err)
		return
	}
	recs, err := h.recordService.BatchUpsert(c.Request.Context(), currentUserID(c), payloads)
	if err != nil {
		writeError(c, h.logger, "BatchUpsertRecords", err)
		return
	}
	c.JSON(http.StatusOK, toClearRecordResponses(recs))
}
