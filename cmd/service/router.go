package service

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civitas-ai/civitas-ai/app/core"
	"github.com/civitas-ai/civitas-ai/app/response"
	"github.com/civitas-ai/civitas-ai/cmd/service/handler"
	"github.com/civitas-ai/civitas-ai/cmd/service/middleware"
	"github.com/civitas-ai/civitas-ai/pkg/metrics"
)

func serve(core *core.Core) {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	setupHttpRouter(httpSrv)

	core.HttpEngine().Run(core.Cfg().Addr)
}

func apiTimer(appCore *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := appCore.Metrics().ApiResponseTimer(metrics.FmtFixer(c.FullPath()))
		defer timer.ObserveDuration()
		c.Next()
		if c.Writer.Status() >= http.StatusBadRequest {
			appCore.Metrics().ApiErrorInc(c.Request.Method, c.FullPath(), c.Writer.Status())
		}
	}
}

func setupHttpRouter(s *handler.HttpSrv) {
	s.Engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": s.Core.ServiceName()})
	})
	s.Engine.GET("/metrics", metrics.DefaultExportHandler())

	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors)
	s.Engine.Use(middleware.UserContext())
	s.Engine.Use(apiTimer(s.Core))

	apiV1 := s.Engine.Group("/api/v1")
	{
		observability := apiV1.Group("/observability")
		{
			observability.POST("/logs", s.RecordPlatformLog)
			observability.GET("/logs", s.ListPlatformLogs)
			observability.POST("/metrics", s.RecordPlatformMetric)
			observability.GET("/metrics", s.ListPlatformMetrics)
			observability.POST("/traces", s.RecordPlatformTrace)
			observability.GET("/traces", s.ListPlatformTraces)
			observability.POST("/agents", s.RecordAgentExecution)
			observability.GET("/agents", s.ListAgentExecutions)
		}

		semantic := apiV1.Group("/semantic")
		{
			semantic.POST("/embeddings", s.StoreStructuredEmbeddings)
			semantic.GET("/embeddings", s.ListStructuredEmbeddings)
			semantic.POST("/embeddings/search", s.VectorSearch)
			semantic.POST("/graph", s.StoreSemanticGraph)
			semantic.GET("/graph", s.GetSemanticGraph)
			semantic.PUT("/correlation", s.StoreCorrelationMap)
			semantic.GET("/correlation", s.GetCorrelationMap)
		}

		state := apiV1.Group("/state")
		{
			state.POST("/promote", s.PromoteTrafficCopState)
			state.GET("", s.RetrieveTrafficCopState)
		}

		governance := apiV1.Group("/governance")
		{
			governance.POST("/policy", s.CreateGovernancePolicy)
			governance.POST("/lineage", s.TrackDataLineage)
			governance.POST("/enforce", s.EnforceGovernanceCompliance)
		}

		apiV1.POST("/content/upload", s.ProcessContentUpload)
		apiV1.POST("/workflow", s.CoordinateDataWorkflow)
		apiV1.GET("/status", s.GetInfrastructureStatus)
	}
}
