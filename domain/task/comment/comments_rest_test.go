package comment_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"archon/bizerror"
	"archon/domain"
	"archon/domain/task/comment"
	"archon/session"
	"archon/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestCreateCommentAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	comment.RegisterTaskCommentsRestAPI(router)

	t.Run("should be able to validate parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, comment.PathTaskComments+"/abc/comments", strings.NewReader(`{}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param", "message":"invalid id 'abc'", "data":null}`))

		req = httptest.NewRequest(http.MethodPost, comment.PathTaskComments+"/100/comments", strings.NewReader(`{}`))
		status, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
		"message": "Key: 'CommentCreation.Content' Error:Field validation for 'Content' failed on the 'required' tag",
		"data":null}`))
	})

	t.Run("should be able to handle error", func(t *testing.T) {
		comment.CreateCommentFunc = func(taskId types.ID, c *domain.CommentCreation, s *session.Session) (*domain.Comment, error) {
			return nil, errors.New("some error")
		}

		req := httptest.NewRequest(http.MethodPost, comment.PathTaskComments+"/100/comments",
			strings.NewReader(`{"content":"on it"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error", "message":"some error", "data":null}`))
	})

	t.Run("should be able to create comment successfully", func(t *testing.T) {
		demoTime := types.TimestampOfDate(2025, 1, 1, 1, 0, 0, 0, time.Now().Location())
		timeBytes, err := demoTime.Time().MarshalJSON()
		Expect(err).To(BeNil())
		timeString := strings.Trim(string(timeBytes), `"`)

		comment.CreateCommentFunc = func(taskId types.ID, c *domain.CommentCreation, s *session.Session) (*domain.Comment, error) {
			return &domain.Comment{ID: 4000, TaskID: taskId, UserID: 10, Content: c.Content, CreateTime: demoTime}, nil
		}

		req := httptest.NewRequest(http.MethodPost, comment.PathTaskComments+"/100/comments",
			strings.NewReader(`{"content":"on it"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(MatchJSON(`{"id": "4000", "taskId": "100", "userId": "10", "content": "on it",
			"createTime": "` + timeString + `"}`))
	})
}

func TestQueryCommentsAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	comment.RegisterTaskCommentsRestAPI(router)

	t.Run("should return comments with authors", func(t *testing.T) {
		demoTime := types.TimestampOfDate(2025, 1, 1, 1, 0, 0, 0, time.Now().Location())
		timeBytes, err := demoTime.Time().MarshalJSON()
		Expect(err).To(BeNil())
		timeString := strings.Trim(string(timeBytes), `"`)

		comment.QueryCommentsFunc = func(taskId types.ID, s *session.Session) ([]domain.CommentDetail, error) {
			return []domain.CommentDetail{{
				Comment: domain.Comment{ID: 4000, TaskID: taskId, UserID: 10, Content: "on it", CreateTime: demoTime},
				User:    &domain.CommentAuthor{ID: 10, Name: "Asha", Avatar: "https://example/avatar.png"},
			}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, comment.PathTaskComments+"/100/comments", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[{"id": "4000", "taskId": "100", "userId": "10", "content": "on it",
			"createTime": "` + timeString + `",
			"user": {"id": "10", "name": "Asha", "avatar": "https://example/avatar.png"}}]`))
	})
}
