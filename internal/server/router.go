package server

import (
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/app"
	"github.com/julianstephens/limitless/internal/documents"
	httpH "github.com/julianstephens/limitless/internal/server/handlers"
	httpMW "github.com/julianstephens/limitless/internal/server/middleware"
)

const maxBodyBytes = 1 << 20

// NewRouter registers every route of the file server on a new engine.
func NewRouter(a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger())
	r.Use(httpMW.CORS(a.Config.CORSOrigins))
	r.Use(httpMW.BodyLimit(maxBodyBytes))

	docs := httpH.NewDocumentHandler(a.Docs)
	events := httpH.NewEventHandler(a.Events)
	boss := httpH.NewEventHandler(a.Boss)
	history := httpH.NewHistoryHandler(a.Archive)
	votes := httpH.NewVoteHandler(a.Votes)
	badges := httpH.NewBadgeHandler(a.Badges)
	health := httpH.NewHealthHandler(a)

	// Health
	r.GET("/health", health.HealthCheck)

	// Documents
	for _, name := range documents.Names() {
		r.GET("/"+name, docs.Get(name))
	}
	for _, name := range documents.MergeableNames() {
		r.POST("/"+name, docs.Merge(name))
	}
	r.POST("/work-sessions/start", docs.Stamped(documents.WorkSessions, "startedAt"))
	r.POST("/work-sessions/end", docs.Stamped(documents.WorkSessions, "endedAt"))

	// Logs
	r.GET("/events", events.List)
	r.POST("/events", events.Append)
	r.GET("/boss-encounters", boss.List)
	r.POST("/boss-encounters", badges.RecordBossEncounter)

	// History
	r.GET("/history", history.Dates)
	r.GET("/history/:date", history.Snapshot)
	r.GET("/history/:date/:file", history.File)

	// Votes
	r.POST("/votes", votes.Append)

	// Badges
	r.GET("/badges", badges.Catalog)
	r.GET("/badges/missions", badges.MissionCatalog)
	r.POST("/badge-progress/exercise", badges.RecordExercise)
	r.POST("/badge-missions/assign", badges.AssignMissions)
	r.POST("/badge-missions/complete", badges.CompleteMission)
	r.POST("/vf-game", badges.PlayVFGame)

	return r
}
