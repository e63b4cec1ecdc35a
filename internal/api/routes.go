package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gsarma/samplefeed/internal/auth"
)

// RegisterRoutes mounts the read-only sample API on r.
func RegisterRoutes(r *gin.Engine, samples SampleFetcher, guard *auth.Guard, logger zerolog.Logger) *Handler {
	h := &Handler{samples: samples}

	r.Use(RequestID(), AccessLog(logger))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := r.Group("/samples", guard.Middleware())
	{
		authed.GET("", h.ListSamples)
		authed.GET("/:job_id", h.GetSample)
		authed.GET("/:job_id/result", h.GetSampleResult)
	}
	return h
}
