package api

import (
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eden-guild/pianobot/bot/command"
	"github.com/eden-guild/pianobot/pkg/redis"
	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/task"
)

// activityRowLimit covers two days of five-minute guild_activity buckets,
// enough for external dashboards to draw a chart.
const activityRowLimit = 576

// Api serves operational status over HTTP: bot identity, per-job run
// bookkeeping and the prometheus metrics endpoint.
type Api struct {
	version        string
	commit         string
	discordSession *discordgo.Session
	redisDriver    *redis.Driver
	psql           *storage.PsqlInterface
	registry       *prometheus.Registry
}

func NewApi(version, commit string, discordSession *discordgo.Session, driver *redis.Driver, psql *storage.PsqlInterface, registry *prometheus.Registry) *Api {
	return &Api{
		version:        version,
		commit:         commit,
		discordSession: discordSession,
		redisDriver:    driver,
		psql:           psql,
		registry:       registry,
	}
}

func (api *Api) StartServer(port string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	botGroup := r.Group("/bot")
	botGroup.GET("/info", handleGetInfo(api))
	botGroup.GET("/jobs", handleGetJobs(api))
	botGroup.GET("/commands", handleGetCommands())
	botGroup.GET("/activity", handleGetActivity(api))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(api.registry, promhttp.HandlerOpts{})))

	return r.Run(":" + port)
}

type botInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	User    string `json:"user"`
	Guilds  int    `json:"guilds"`
}

func handleGetInfo(api *Api) func(c *gin.Context) {
	return func(c *gin.Context) {
		info := botInfo{Version: api.version, Commit: api.commit}
		if state := api.discordSession.State; state != nil && state.User != nil {
			info.User = state.User.Username
			info.Guilds = len(state.Guilds)
		}
		c.JSON(http.StatusOK, info)
	}
}

func handleGetJobs(api *Api) func(c *gin.Context) {
	return func(c *gin.Context) {
		jobs := make(map[string]redis.TaskStats, len(task.Names))
		for _, name := range task.Names {
			jobs[name] = api.redisDriver.GetTaskStats(name)
		}
		c.JSON(http.StatusOK, jobs)
	}
}

func handleGetCommands() func(c *gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, command.All)
	}
}

// handleGetActivity serves the recent per-guild online counts the activity
// job collects, newest first, for external charting.
func handleGetActivity(api *Api) func(c *gin.Context) {
	return func(c *gin.Context) {
		rows, err := api.psql.GetLastActivityRows(activityRowLimit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guild activity"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
