package activity

import (
	"net/http"

	"archon/bizerror"
	"archon/common"
	"archon/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathActivities = "/v1/activities"
)

func RegisterActivitiesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathActivities, middleWares...)
	g.GET("", handleQueryActivities)
}

func handleQueryActivities(c *gin.Context) {
	query := ActivityQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := QueryActivitiesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &common.PagedBody{List: records, Total: uint64(len(records))})
}
