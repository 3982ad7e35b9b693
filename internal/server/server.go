// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/server/api"
)

func NewServer(
	serviceName string,
	adminUser, adminPass string,
	members db.MemberStore,
	handler *api.Handler,
) *Server {
	s := &Server{
		logger:      slog.Default().WithGroup("http"),
		serviceName: serviceName,
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	mux := gin.New()

	middlewares := []gin.HandlerFunc{
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.serviceName), slogAddTraceAttributes,
	}

	selfService := mux.Group("/r")
	selfService.Use(append(middlewares, tokenExists(members))...)
	selfService.GET("/:token", handler.State)
	selfService.POST("/:token/preferences", handler.SubmitPreference)
	selfService.POST("/:token/attendance", handler.ConfirmAttendance)
	selfService.POST("/:token/special-vote", handler.RequestSpecialVote)

	adminArea := mux.Group("/admin")
	adminArea.Use(append(middlewares, gin.BasicAuth(gin.Accounts{
		adminUser: adminPass,
	}))...)
	adminArea.GET("/members", handler.ListMembers)
	adminArea.POST("/members", handler.InviteMember)
	adminArea.POST("/segments/preview", handler.PreviewSegment)
	adminArea.POST("/members/:id/venue", handler.AssignVenue)
	adminArea.POST("/members/:id/ticket", handler.IssueTicket)
	adminArea.POST("/members/:id/ticket/resend", handler.ResendTicket)
	adminArea.POST("/members/:id/checkin", handler.CheckIn)
	adminArea.POST("/members/:id/special-vote", handler.DecideSpecialVote)
	adminArea.POST("/members/:id/stage", handler.OverrideStage)
	adminArea.POST("/campaigns", handler.CreateCampaign)
	adminArea.GET("/campaigns/:id", handler.CampaignReport)
	adminArea.POST("/events", handler.CreateEvent)
	adminArea.GET("/events", handler.ListEvents)
	adminArea.GET("/export", handler.Export)

	mux.NoRoute(notFound)

	s.mux = mux
	return s
}

type Server struct {
	serviceName string
	logger      *slog.Logger
	mux         *gin.Engine
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// tokenExists guards the self-service routes. Unknown and malformed
// tokens answer identically, so the route leaks nothing about which
// lookup failed.
func tokenExists(members db.MemberStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := uuid.Parse(c.Param("token"))
		if err != nil {
			notFound(c)
			return
		}
		if _, err := members.GetMemberByToken(c.Request.Context(), token); err != nil {
			notFound(c)
			return
		}
		c.Next()
	}
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "not found"})
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}
