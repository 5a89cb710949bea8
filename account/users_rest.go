package account

import (
	"errors"
	"net/http"

	"archon/bizerror"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathUsers        = "/v1/users"
	PathRegistration = "/v1/registrations"
	PathSessionUsers = "/v1/session-users"
)

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.GET("", handleQueryUsers)
	g.POST("", handleCreateUser)
	g.PUT(":id/role", handleAssignRole)
	g.PUT(":id/status", handleToggleUserStatus)

	u := r.Group(PathSessionUsers, middleWares...)
	u.GET("me", handleDetailMe)
	u.PUT("basic-auths", handleUpdateBasicAuth)
}

// RegisterRegistrationsRestAPI is mounted without the auth filter:
// self-registration issues the first session token.
func RegisterRegistrationsRestAPI(r *gin.Engine) {
	g := r.Group(PathRegistration)
	g.POST("", handleRegisterUser)
}

func handleRegisterUser(c *gin.Context) {
	creation := UserRegistration{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user, err := RegisterUserFunc(&creation)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, issueToken(user))
}

func handleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user, err := CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func handleAssignRole(c *gin.Context) {
	userId := parseUserId(c)
	assignment := RoleAssignment{}
	if err := c.ShouldBindBodyWith(&assignment, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user, err := AssignRoleFunc(userId, &assignment, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func handleToggleUserStatus(c *gin.Context) {
	userId := parseUserId(c)
	user, err := ToggleUserStatusFunc(userId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func handleDetailMe(c *gin.Context) {
	info, err := DetailMeFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, info)
}

func handleUpdateBasicAuth(c *gin.Context) {
	payload := BasicAuthUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateBasicAuthSecretFunc(&payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func parseUserId(c *gin.Context) types.ID {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return parsedId
}
