package indices

import (
	"net/http"
	"time"

	"archon/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	PathIndexRequests        = "/v1/index-request"
	PathPendingIndexRecovery = "/v1/pending-index-recovery"

	// one recovery kick per interval is enough, replays are idempotent
	indexLogRecoveryLimiter = rate.NewLimiter(rate.Every(30*time.Second), 1)

	IndexlogRecoveryRoutineFunc = IndexlogRecoveryRun
)

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)

	p := r.Group(PathPendingIndexRecovery, middleWares...)
	p.POST("", handlePendingIndexRecovery)
}

func handleIndexRequest(c *gin.Context) {
	success, err := ScheduleNewSyncRunFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": success})
}

func handlePendingIndexRecovery(c *gin.Context) {
	if !indexLogRecoveryLimiter.Allow() {
		c.JSON(http.StatusOK, gin.H{"result": "request rate limited"})
		return
	}

	if err := IndexlogRecoveryRoutineFunc(session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"result": "started"})
}
