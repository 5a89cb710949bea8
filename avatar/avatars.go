package avatar

import (
	"io"
	"io/ioutil"

	"archon/bizerror"
	"archon/client/s3"
	"archon/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

// DetailAvatar loads an uploaded avatar image. Accounts without an
// upload get 404 here and fall back to the generated avatar url.
func DetailAvatar(id types.ID, s *session.Session) ([]byte, error) {
	r, err := s3.GetObjectFunc("avatars/"+id.String()+".png", s)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return ioutil.ReadAll(r)
}

// CreateAvatar stores an avatar image. Only the owner may upload.
func CreateAvatar(id types.ID, r io.Reader, s *session.Session) error {
	if id != s.Identity.ID {
		return bizerror.ErrForbidden
	}

	return s3.PutObjectFunc("avatars/"+id.String()+".png", r, s)
}
