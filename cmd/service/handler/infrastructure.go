package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/civitas-ai/civitas-ai/app/logic/v1"
	"github.com/civitas-ai/civitas-ai/app/response"
	"github.com/civitas-ai/civitas-ai/pkg/errors"
	"github.com/civitas-ai/civitas-ai/pkg/i18n"
	"github.com/civitas-ai/civitas-ai/pkg/types"
	"github.com/civitas-ai/civitas-ai/pkg/utils"
)

type PromoteStateRequest struct {
	StateID        string         `json:"state_id" binding:"required"`
	StateData      map[string]any `json:"state_data" binding:"required"`
	SessionContext map[string]any `json:"session_context"`
}

func (s *HttpSrv) PromoteTrafficCopState(c *gin.Context) {
	var req PromoteStateRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res := v1.NewDataInfrastructureLogic(c, s.Core).PromoteTrafficCopState(req.StateID, req.StateData, req.SessionContext, v1.InjectUserContext(c))
	response.APISuccess(c, res)
}

type RetrieveStateRequest struct {
	StateID string `json:"state_id" form:"state_id" binding:"required"`
}

func (s *HttpSrv) RetrieveTrafficCopState(c *gin.Context) {
	var req RetrieveStateRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res := v1.NewDataInfrastructureLogic(c, s.Core).RetrieveTrafficCopState(req.StateID, v1.InjectUserContext(c))
	response.APISuccess(c, res)
}

type CreatePolicyRequest struct {
	PolicyName  string         `json:"policy_name" binding:"required"`
	PolicyType  string         `json:"policy_type" binding:"required"`
	Description string         `json:"description"`
	Rules       map[string]any `json:"rules"`
}

func (s *HttpSrv) CreateGovernancePolicy(c *gin.Context) {
	var req CreatePolicyRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res := v1.NewDataInfrastructureLogic(c, s.Core).CreateGovernancePolicy(req.PolicyName, req.PolicyType, req.Description, req.Rules, v1.InjectUserContext(c))
	response.APISuccess(c, res)
}

type TrackLineageRequest struct {
	AssetID        string         `json:"asset_id" binding:"required"`
	SourceSystem   string         `json:"source_system" binding:"required"`
	TargetSystem   string         `json:"target_system" binding:"required"`
	Operation      string         `json:"operation"`
	Transformation string         `json:"transformation"`
	Metadata       map[string]any `json:"metadata"`
}

func (s *HttpSrv) TrackDataLineage(c *gin.Context) {
	var req TrackLineageRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res := v1.NewDataInfrastructureLogic(c, s.Core).TrackDataLineage(req.AssetID, req.SourceSystem, req.TargetSystem, req.Operation, req.Transformation, req.Metadata, v1.InjectUserContext(c))
	response.APISuccess(c, res)
}

type EnforceComplianceRequest struct {
	AssetID    string         `json:"asset_id" binding:"required"`
	AssetData  map[string]any `json:"asset_data"`
	PolicyType string         `json:"policy_type"`
}

func (s *HttpSrv) EnforceGovernanceCompliance(c *gin.Context) {
	var req EnforceComplianceRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res := v1.NewDataInfrastructureLogic(c, s.Core).EnforceGovernanceCompliance(req.AssetID, req.AssetData, req.PolicyType, v1.InjectUserContext(c))
	response.APISuccess(c, res)
}

func (s *HttpSrv) ProcessContentUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.APIError(c, errors.New("api.ProcessContentUpload.FormFile", i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest))
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.APIError(c, errors.New("api.ProcessContentUpload.Open", i18n.ERROR_INTERNAL, err))
		return
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		response.APIError(c, errors.New("api.ProcessContentUpload.ReadAll", i18n.ERROR_INTERNAL, err))
		return
	}

	metadata := map[string]any{}
	for key, values := range c.Request.PostForm {
		if key == "file" || len(values) == 0 {
			continue
		}
		metadata[key] = values[0]
	}

	res := v1.NewDataInfrastructureLogic(c, s.Core).ProcessContentUpload(file.Filename, content, metadata, v1.InjectUserContext(c))
	response.APISuccess(c, res)
}

type CoordinateWorkflowRequest struct {
	WorkflowID string               `json:"workflow_id" binding:"required"`
	Steps      []types.WorkflowStep `json:"steps" binding:"required"`
}

func (s *HttpSrv) CoordinateDataWorkflow(c *gin.Context) {
	var req CoordinateWorkflowRequest
	if err := utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	res := v1.NewDataInfrastructureLogic(c, s.Core).CoordinateDataWorkflow(req.WorkflowID, req.Steps, v1.InjectUserContext(c))
	response.APISuccess(c, res)
}

func (s *HttpSrv) GetInfrastructureStatus(c *gin.Context) {
	res := v1.NewDataInfrastructureLogic(c, s.Core).GetInfrastructureStatus(v1.InjectUserContext(c))
	response.APISuccess(c, res)
}
