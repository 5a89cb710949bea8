package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

func IsValidTaskStatus(s string) bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress || s == TaskStatusReview || s == TaskStatusDone
}

func IsValidTaskPriority(p string) bool {
	return p == TaskPriorityLow || p == TaskPriorityMedium || p == TaskPriorityHigh || p == TaskPriorityUrgent
}

// Task is a tracked unit of work under exactly one contract. ContractID is
// immutable after creation. CompletedAt is stamped the first time the
// status becomes done and is never cleared by later status changes.
type Task struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Title       string   `json:"title"`
	Description string   `json:"description" sql:"type:TEXT"`
	ContractID  types.ID `json:"contractId" gorm:"index:idx_task_contract"`

	AssignedTo types.ID `json:"assignedTo"`
	Priority   string   `json:"priority" sql:"type:VARCHAR(16)"`
	Status     string   `json:"status" sql:"type:VARCHAR(16)"`

	DueDate     types.Timestamp `json:"dueDate" sql:"type:DATETIME(6)"`
	CompletedAt types.Timestamp `json:"completedAt" sql:"type:DATETIME(6)"`

	CreatorID  types.ID        `json:"creatorId"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (t *Task) TableName() string {
	return "tasks"
}

type TaskAssignedUser struct {
	ID     types.ID `json:"id"`
	Name   string   `json:"name"`
	Avatar string   `json:"avatar"`
}

type TaskDetail struct {
	Task

	AssignedUser   *TaskAssignedUser `json:"assignedUser,omitempty" gorm:"-"`
	ContractNumber string            `json:"contractNumber" gorm:"-"`
	CommentCount   int               `json:"commentCount" gorm:"-"`
}

type TaskCreation struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	ContractID  types.ID        `json:"contractId" binding:"required"`
	AssignedTo  types.ID        `json:"assignedTo"`
	Priority    string          `json:"priority"`
	DueDate     types.Timestamp `json:"dueDate"`
}

// TaskUpdating lists the only task fields a client may patch. Absent
// fields (nil) are left untouched; ContractID is deliberately not here.
type TaskUpdating struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Status      *string          `json:"status"`
	AssignedTo  *types.ID        `json:"assignedTo"`
	Priority    *string          `json:"priority"`
	DueDate     *types.Timestamp `json:"dueDate"`
}

type TaskQuery struct {
	ContractID types.ID `json:"contractId" form:"contractId"`
	AssignedTo types.ID `json:"assignedTo" form:"assignedTo"`
	Status     string   `json:"status" form:"status"`

	// OpenOnly drops done tasks; DueDateAsc orders by due date instead
	// of newest first. Both are set by the personal feed.
	OpenOnly   bool `json:"-" form:"-"`
	DueDateAsc bool `json:"-" form:"-"`
}

// Comment is an immutable remark on a task, listed oldest first.
type Comment struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	TaskID  types.ID `json:"taskId" gorm:"index:idx_comment_task"`
	UserID  types.ID `json:"userId"`
	Content string   `json:"content" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *Comment) TableName() string {
	return "comments"
}

type CommentAuthor struct {
	ID     types.ID `json:"id"`
	Name   string   `json:"name"`
	Avatar string   `json:"avatar"`
}

type CommentDetail struct {
	Comment

	User *CommentAuthor `json:"user,omitempty" gorm:"-"`
}

type CommentCreation struct {
	Content string `json:"content" binding:"required"`
}
