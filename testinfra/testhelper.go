package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds an authenticated session for tests.
func BuildSecCtx(uid types.ID, role string) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: uid, Name: "user-" + uid.String(), Role: role},
		Context:  context.Background(),
	}
}

// ExecuteRequest drives a request through the router and drains the
// response body.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, string(bodyBytes), resp
}
