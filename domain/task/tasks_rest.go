package task

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

var PathTasks = "/v1/tasks"

func RegisterTasksRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathTasks, middleWares...)

	g.POST("", handleCreateTask)
	g.GET("", handleQueryTasks)
	g.PUT(":id", handleUpdateTask)
	g.DELETE(":id", handleDeleteTask)
}

func handleCreateTask(c *gin.Context) {
	creation := domain.TaskCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateTaskFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryTasks(c *gin.Context) {
	query := domain.TaskQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	details, err := QueryTasksFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, details)
}

func handleUpdateTask(c *gin.Context) {
	id := parseTaskId(c)
	updating := domain.TaskUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := UpdateTaskFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteTask(c *gin.Context) {
	id := parseTaskId(c)
	if err := DeleteTaskFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func parseTaskId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
