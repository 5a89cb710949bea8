package account

import (
	"net/http"
	"time"

	"archon/bizerror"
	"archon/persistence"
	"archon/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

var (
	PathSessions = "/v1/sessions"
)

func RegisterSessionsRestAPI(r *gin.Engine) {
	g := r.Group(PathSessions)
	g.POST("", handleLogin)
	g.DELETE("", handleLogout)
}

func handleLogin(c *gin.Context) {
	login := LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user, err := findLoginUser(c, login.Email, login.Password)
	if err != nil {
		panic(err)
	}

	secCtx := issueToken(user)
	c.SetCookie(session.KeySecToken, secCtx.Token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, secCtx)
}

func handleLogout(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func findLoginUser(c *gin.Context, email, password string) (*User, error) {
	user := User{}
	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	if err := db.Where("email = ? AND secret = ?", normalizeEmail(email), HashSha256(password)).
		First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.Active {
		return nil, bizerror.ErrAccountDisabled
	}
	return &user, nil
}

func issueToken(user *User) *session.Session {
	token := uuid.New().String()
	secCtx := session.Session{
		Token: token,
		Identity: session.Identity{
			ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role,
		},
		SigningTime: time.Now(),
	}
	session.TokenCache.Set(token, &secCtx, cache.DefaultExpiration)
	return &secCtx
}
