package handler

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/civitas-ai/civitas-ai/app/logic/v1"
	"github.com/civitas-ai/civitas-ai/app/response"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type StoreEmbeddingsRequest struct {
	ContentID string                 `json:"content_id" binding:"required"`
	FileID    string                 `json:"file_id" binding:"required"`
	Entries   []types.EmbeddingInput `json:"entries" binding:"required"`
}

func (s *HttpSrv) StoreStructuredEmbeddings(c *gin.Context) {
	var req StoreEmbeddingsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewSemanticLogic(c, s.Core).StoreStructuredEmbeddings(req.ContentID, req.FileID, req.Entries, v1.InjectUserContext(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

type ListEmbeddingsRequest struct {
	ContentID     string `json:"content_id" form:"content_id"`
	FileID        string `json:"file_id" form:"file_id"`
	ColumnName    string `json:"column_name" form:"column_name"`
	SemanticID    string `json:"semantic_id" form:"semantic_id"`
	EmbeddingType string `json:"embedding_type" form:"embedding_type"`
	Page          uint64 `json:"page" form:"page"`
	PageSize      uint64 `json:"pagesize" form:"pagesize"`
}

func (s *HttpSrv) ListStructuredEmbeddings(c *gin.Context) {
	var req ListEmbeddingsRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	opts := types.GetEmbeddingsOptions{
		ContentID:     req.ContentID,
		FileID:        req.FileID,
		ColumnName:    req.ColumnName,
		SemanticID:    req.SemanticID,
		EmbeddingType: req.EmbeddingType,
		TenantID:      v1.InjectUserContext(c).GetTenantID(),
	}
	list, err := v1.NewSemanticLogic(c, s.Core).GetStructuredEmbeddings(opts, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": list})
}

type VectorSearchRequest struct {
	QueryVector []float32 `json:"query_vector" binding:"required"`
	ContentID   string    `json:"content_id"`
	FileID      string    `json:"file_id"`
	Limit       uint64    `json:"limit"`
}

func (s *HttpSrv) VectorSearch(c *gin.Context) {
	var req VectorSearchRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	opts := types.GetEmbeddingsOptions{
		ContentID: req.ContentID,
		FileID:    req.FileID,
		TenantID:  v1.InjectUserContext(c).GetTenantID(),
	}
	list, err := v1.NewSemanticLogic(c, s.Core).VectorSearch(req.QueryVector, opts, req.Limit)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"list": list})
}

type StoreGraphRequest struct {
	ContentID string                   `json:"content_id" binding:"required"`
	FileID    string                   `json:"file_id" binding:"required"`
	Graph     types.SemanticGraphInput `json:"graph" binding:"required"`
}

func (s *HttpSrv) StoreSemanticGraph(c *gin.Context) {
	var req StoreGraphRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewSemanticLogic(c, s.Core).StoreSemanticGraph(req.ContentID, req.FileID, req.Graph, v1.InjectUserContext(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

type GetGraphRequest struct {
	ContentID string `json:"content_id" form:"content_id" binding:"required"`
	FileID    string `json:"file_id" form:"file_id"`
}

func (s *HttpSrv) GetSemanticGraph(c *gin.Context) {
	var req GetGraphRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res, err := v1.NewSemanticLogic(c, s.Core).GetSemanticGraph(req.ContentID, req.FileID, v1.InjectUserContext(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

type StoreCorrelationMapRequest struct {
	ContentID   string         `json:"content_id" binding:"required"`
	FileID      string         `json:"file_id" binding:"required"`
	Correlation map[string]any `json:"correlation" binding:"required"`
}

func (s *HttpSrv) StoreCorrelationMap(c *gin.Context) {
	var req StoreCorrelationMapRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	id, err := v1.NewSemanticLogic(c, s.Core).StoreCorrelationMap(req.ContentID, req.FileID, req.Correlation, v1.InjectUserContext(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"id": id})
}

func (s *HttpSrv) GetCorrelationMap(c *gin.Context) {
	var req GetGraphRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	correlation, err := v1.NewSemanticLogic(c, s.Core).GetCorrelationMap(req.ContentID, req.FileID, v1.InjectUserContext(c))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, gin.H{"correlation": correlation})
}
