package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"archon/bizerror"
	"archon/session"
	"archon/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestSimpleAuthFilter(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling(), session.SimpleAuthFilter())
	var capturedSession *session.Session
	router.GET("/", func(c *gin.Context) {
		capturedSession = session.ExtractSessionFromGinContext(c)
		c.Status(http.StatusOK)
	})

	t.Run("should reject a request without the token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated", "message":"unauthenticated", "data":null}`))
	})

	t.Run("should reject an unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "no-such-token"})
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should attach the session of a valid token", func(t *testing.T) {
		session.TokenCache.Set("good-token", &session.Session{
			Token:    "good-token",
			Identity: session.Identity{ID: 100, Name: "Asha", Role: "worker"},
		}, 0)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "good-token"})
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(capturedSession).ToNot(BeNil())
		Expect(capturedSession.Identity.Name).To(Equal("Asha"))
		Expect(capturedSession.Context).ToNot(BeNil())
	})
}

func TestExtractSessionFromGinContext(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should fall back to an anonymous session", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		s := session.ExtractSessionFromGinContext(c)
		Expect(s).ToNot(BeNil())
		Expect(s.Token).To(BeEmpty())
		Expect(s.Context).ToNot(BeNil())
	})
}
