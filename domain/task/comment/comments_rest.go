package comment

import (
	"errors"
	"net/http"

	"archon/bizerror"
	"archon/domain"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathTaskComments = "/v1/tasks"

func RegisterTaskCommentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathTaskComments, middleWares...)

	g.POST(":id/comments", handleCreateComment)
	g.GET(":id/comments", handleQueryComments)
}

func handleCreateComment(c *gin.Context) {
	taskId := parseTaskId(c)
	creation := domain.CommentCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateCommentFunc(taskId, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryComments(c *gin.Context) {
	taskId := parseTaskId(c)
	details, err := QueryCommentsFunc(taskId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, details)
}

func parseTaskId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
