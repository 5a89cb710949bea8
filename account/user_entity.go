package account

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"archon/authority"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID    types.ID `json:"id" gorm:"primary_key"`
	Email string   `json:"email" gorm:"unique_index" sql:"type:VARCHAR(128) NOT NULL"`

	// Secret is the sha256 of the password, never exposed over the API.
	Secret string `json:"-"`

	Name       string `json:"name"`
	Role       string `json:"role" sql:"type:VARCHAR(16)"`
	Department string `json:"department"`
	Phone      string `json:"phone"`
	Avatar     string `json:"avatar"`
	Active     bool   `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (u *User) TableName() string {
	return "users"
}

type UserTaskStats struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	InProgress     int     `json:"inProgress"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completionRate"`
}

type UserInfo struct {
	ID         types.ID        `json:"id"`
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Role       string          `json:"role"`
	Department string          `json:"department"`
	Phone      string          `json:"phone"`
	Avatar     string          `json:"avatar"`
	Active     bool            `json:"active"`
	CreateTime types.Timestamp `json:"createTime"`

	Stats UserTaskStats `json:"stats"`
}

type UserRegistration struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`

	Department string `json:"department"`
	Phone      string `json:"phone"`
}

type UserCreation struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`

	Department string `json:"department"`
	Phone      string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RoleAssignment struct {
	Role string `json:"role" binding:"required"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret" binding:"required"`
	NewSecret      string `json:"newSecret" binding:"required,min=8"`
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var roleAvatarColors = map[string]string{
	authority.RoleCeo:        "B22222",
	authority.RoleFinance:    "B8860B",
	authority.RoleOperations: "03624C",
	authority.RoleWorker:     "666666",
}

// DefaultAvatarURL builds the ui-avatars fallback image url, colored by role.
func DefaultAvatarURL(name, role string) string {
	color, found := roleAvatarColors[role]
	if !found {
		color = roleAvatarColors[authority.RoleWorker]
	}
	return "https://ui-avatars.com/api/?name=" + strings.ReplaceAll(name, " ", "+") +
		"&background=" + color + "&color=fff"
}
