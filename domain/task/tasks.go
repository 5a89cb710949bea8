package task

import (
	"fmt"

	"archon/account"
	"archon/activity"
	"archon/authority"
	"archon/bizerror"
	"archon/domain"
	"archon/idgen"
	"archon/persistence"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	taskIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateTaskFunc = CreateTask
	QueryTasksFunc = QueryTasks
	UpdateTaskFunc = UpdateTask
	DeleteTaskFunc = DeleteTask
)

// CreateTask opens a task under an existing contract. The contract is
// loaded inside the transaction, so a task can never point at a
// contract that was not there.
func CreateTask(c *domain.TaskCreation, s *session.Session) (*domain.Task, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionManageTask); err != nil {
		return nil, err
	}

	priority := c.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !domain.IsValidTaskPriority(priority) {
		return nil, &bizerror.ErrBadParam{Cause: errInvalidPriority(priority)}
	}

	now := types.CurrentTimestamp()
	record := domain.Task{
		ID:          idgen.NextID(taskIdWorker),
		Title:       c.Title,
		Description: c.Description,
		ContractID:  c.ContractID,

		AssignedTo: c.AssignedTo,
		Priority:   priority,
		Status:     domain.TaskStatusTodo,
		DueDate:    c.DueDate,

		CreatorID:  s.Identity.ID,
		CreateTime: now,
		UpdateTime: now,
	}

	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		contract := domain.Contract{}
		if err := tx.Where(&domain.Contract{ID: c.ContractID}).First(&contract).Error; err != nil {
			return err
		}

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity("created_task", activity.EntityTypeTask,
			record.ID, record.Title, record.ContractID, &s.Identity, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	activity.InvokeHandlersFunc(act)
	return &record, nil
}

// QueryTasks lists tasks newest first, enriched with the assignee
// profile, the owning contract number and the comment count.
func QueryTasks(q *domain.TaskQuery, s *session.Session) ([]domain.TaskDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	query := db.Model(&domain.Task{})
	if q.ContractID != 0 {
		query = query.Where("contract_id = ?", q.ContractID)
	}
	if q.AssignedTo != 0 {
		query = query.Where("assigned_to = ?", q.AssignedTo)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.OpenOnly {
		query = query.Where("status != ?", domain.TaskStatusDone)
	}

	order := "create_time DESC"
	if q.DueDateAsc {
		order = "due_date ASC"
	}

	var records []domain.Task
	if err := query.Order(order).Find(&records).Error; err != nil {
		return nil, err
	}
	return enrichTasks(db, records)
}

// UpdateTask patches the mutable task fields. A status move to done
// stamps CompletedAt once; later moves never clear or restamp it.
func UpdateTask(id types.ID, u *domain.TaskUpdating, s *session.Session) (*domain.Task, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionManageTask); err != nil {
		return nil, err
	}
	if u.Status != nil && !domain.IsValidTaskStatus(*u.Status) {
		return nil, bizerror.ErrUnknownTaskState
	}
	if u.Priority != nil && !domain.IsValidTaskPriority(*u.Priority) {
		return nil, &bizerror.ErrBadParam{Cause: errInvalidPriority(*u.Priority)}
	}

	var updated domain.Task
	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Task{}
		if err := tx.Where(&domain.Task{ID: id}).First(&record).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{"update_time": types.CurrentTimestamp()}
		if u.Title != nil {
			changes["title"] = *u.Title
		}
		if u.Description != nil {
			changes["description"] = *u.Description
		}
		if u.AssignedTo != nil {
			changes["assigned_to"] = *u.AssignedTo
		}
		if u.Priority != nil {
			changes["priority"] = *u.Priority
		}
		if u.DueDate != nil {
			changes["due_date"] = *u.DueDate
		}

		action := "updated_task"
		if u.Status != nil && *u.Status != record.Status {
			changes["status"] = *u.Status
			action = "moved_task_to_" + *u.Status
			if *u.Status == domain.TaskStatusDone && record.CompletedAt.IsZero() {
				changes["completed_at"] = types.CurrentTimestamp()
			}
		}

		if err := tx.Model(&domain.Task{}).Where("id = ?", id).Update(changes).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity(action, activity.EntityTypeTask,
			record.ID, record.Title, record.ContractID, &s.Identity, tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Task{ID: id}).First(&updated).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	activity.InvokeHandlersFunc(act)
	return &updated, nil
}

// DeleteTask removes a task and its comments in one transaction, so a
// failure leaves both in place.
func DeleteTask(id types.ID, s *session.Session) error {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionManageTask); err != nil {
		return err
	}

	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Task{}
		if err := tx.Where(&domain.Task{ID: id}).First(&record).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Task{ID: id}).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity("deleted_task", activity.EntityTypeTask,
			record.ID, record.Title, record.ContractID, &s.Identity, tx)
		return err
	})
	if txErr != nil {
		return txErr
	}

	activity.InvokeHandlersFunc(act)
	return nil
}

func enrichTasks(db *gorm.DB, records []domain.Task) ([]domain.TaskDetail, error) {
	assignees := map[types.ID]*domain.TaskAssignedUser{}
	contractNumbers := map[types.ID]string{}

	details := make([]domain.TaskDetail, 0, len(records))
	for _, record := range records {
		detail := domain.TaskDetail{Task: record}

		if record.AssignedTo != 0 {
			assignee, found := assignees[record.AssignedTo]
			if !found {
				user := account.User{}
				err := db.Where(&account.User{ID: record.AssignedTo}).First(&user).Error
				if err != nil && err != gorm.ErrRecordNotFound {
					return nil, err
				}
				if err == nil {
					assignee = &domain.TaskAssignedUser{ID: user.ID, Name: user.Name, Avatar: user.Avatar}
				}
				assignees[record.AssignedTo] = assignee
			}
			detail.AssignedUser = assignee
		}

		number, found := contractNumbers[record.ContractID]
		if !found {
			contract := domain.Contract{}
			err := db.Where(&domain.Contract{ID: record.ContractID}).First(&contract).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, err
			}
			number = contract.ContractNumber
			contractNumbers[record.ContractID] = number
		}
		detail.ContractNumber = number

		if err := db.Model(&domain.Comment{}).Where("task_id = ?", record.ID).
			Count(&detail.CommentCount).Error; err != nil {
			return nil, err
		}

		details = append(details, detail)
	}
	return details, nil
}

func errInvalidPriority(value string) error {
	return fmt.Errorf("invalid priority '%s'", value)
}
