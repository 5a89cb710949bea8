package avatar

import (
	"errors"
	"net/http"

	"archon/bizerror"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathAccountAvatars = "/v1/account-avatars"

	DetailAvatarFunc = DetailAvatar
	CreateAvatarFunc = CreateAvatar
)

func RegisterAvatarsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAccountAvatars, middleWares...)
	g.GET(":id", handleDetailAvatar)
	g.POST(":id", handleCreateAvatar)
}

func handleDetailAvatar(c *gin.Context) {
	id := parseAvatarId(c)
	bytes, err := DetailAvatarFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}

	c.Data(http.StatusOK, "image/png", bytes)
}

func handleCreateAvatar(c *gin.Context) {
	id := parseAvatarId(c)

	file, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	if err := CreateAvatarFunc(id, src, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}

	c.JSON(http.StatusOK, gin.H{})
}

func parseAvatarId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
