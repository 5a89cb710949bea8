package dashboard

import (
	"net/http"

	"archon/session"

	"github.com/gin-gonic/gin"
)

var PathDashboard = "/v1/dashboard"

func RegisterDashboardRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDashboard, middleWares...)

	g.GET("stats", handleDashboardStats)
	g.GET("my-tasks", handleMyTasks)
	g.GET("team-performance", handleTeamPerformance)
}

func handleDashboardStats(c *gin.Context) {
	stats, err := LoadDashboardStatsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stats)
}

func handleMyTasks(c *gin.Context) {
	details, err := LoadMyTasksFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, details)
}

func handleTeamPerformance(c *gin.Context) {
	members, err := LoadTeamPerformanceFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, members)
}
