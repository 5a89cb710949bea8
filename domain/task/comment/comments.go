package comment

import (
	"archon/account"
	"archon/activity"
	"archon/authority"
	"archon/domain"
	"archon/idgen"
	"archon/persistence"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	commentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCommentFunc = CreateComment
	QueryCommentsFunc = QueryComments
)

// CreateComment appends a remark to a task. Comments are immutable,
// there is no edit or delete short of deleting the task.
func CreateComment(taskId types.ID, c *domain.CommentCreation, s *session.Session) (*domain.Comment, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionManageTask); err != nil {
		return nil, err
	}

	record := domain.Comment{
		ID:      idgen.NextID(commentIdWorker),
		TaskID:  taskId,
		UserID:  s.Identity.ID,
		Content: c.Content,

		CreateTime: types.CurrentTimestamp(),
	}

	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		task := domain.Task{}
		if err := tx.Where(&domain.Task{ID: taskId}).First(&task).Error; err != nil {
			return err
		}

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity("commented_on_task", activity.EntityTypeComment,
			task.ID, task.Title, task.ContractID, &s.Identity, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	activity.InvokeHandlersFunc(act)
	return &record, nil
}

// QueryComments lists a task's comments oldest first with the author
// profile attached.
func QueryComments(taskId types.ID, s *session.Session) ([]domain.CommentDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	var records []domain.Comment
	if err := db.Where("task_id = ?", taskId).Order("create_time ASC").Find(&records).Error; err != nil {
		return nil, err
	}

	authors := map[types.ID]*domain.CommentAuthor{}
	details := make([]domain.CommentDetail, 0, len(records))
	for _, record := range records {
		author, found := authors[record.UserID]
		if !found {
			user := account.User{}
			err := db.Where(&account.User{ID: record.UserID}).First(&user).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, err
			}
			if err == nil {
				author = &domain.CommentAuthor{ID: user.ID, Name: user.Name, Avatar: user.Avatar}
			}
			authors[record.UserID] = author
		}
		details = append(details, domain.CommentDetail{Comment: record, User: author})
	}
	return details, nil
}
