package account

import (
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
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RegisterUserFunc          = RegisterUser
	QueryUsersFunc            = QueryUsers
	CreateUserFunc            = CreateUser
	AssignRoleFunc            = AssignRole
	ToggleUserStatusFunc      = ToggleUserStatus
	UpdateBasicAuthSecretFunc = UpdateBasicAuthSecret
	DetailMeFunc              = DetailMe
)

// RegisterUser is the public self-registration. Every registration starts
// as a worker, role upgrades are done by the ceo afterwards.
func RegisterUser(c *UserRegistration) (*User, error) {
	department := c.Department
	if department == "" {
		department = "Staff"
	}
	user := User{
		ID:     idgen.NextID(userIdWorker),
		Email:  normalizeEmail(c.Email),
		Secret: HashSha256(c.Password),

		Name:       c.Name,
		Role:       authority.RoleWorker,
		Department: department,
		Phone:      c.Phone,
		Avatar:     DefaultAvatarURL(c.Name, authority.RoleWorker),
		Active:     true,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := persistence.ActiveDataSourceManager.GormDB(nil).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser lets the ceo or operations add a worker account directly.
func CreateUser(c *UserCreation, s *session.Session) (*User, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionCreateUser); err != nil {
		return nil, err
	}
	return RegisterUser(&UserRegistration{
		Email: c.Email, Password: c.Password, Name: c.Name,
		Department: c.Department, Phone: c.Phone,
	})
}

func QueryUsers(s *session.Session) ([]UserInfo, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	var users []User
	if err := db.Order("create_time ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	infos := make([]UserInfo, 0, len(users))
	for _, u := range users {
		stats, err := loadUserTaskStats(db, u.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, UserInfo{
			ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
			Department: u.Department, Phone: u.Phone, Avatar: u.Avatar,
			Active: u.Active, CreateTime: u.CreateTime, Stats: *stats,
		})
	}
	return infos, nil
}

// DetailMe returns the caller's own profile with personal task stats.
func DetailMe(s *session.Session) (*UserInfo, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	user := User{}
	if err := db.Where(&User{ID: s.Identity.ID}).First(&user).Error; err != nil {
		return nil, err
	}
	stats, err := loadUserTaskStats(db, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserInfo{
		ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role,
		Department: user.Department, Phone: user.Phone, Avatar: user.Avatar,
		Active: user.Active, CreateTime: user.CreateTime, Stats: *stats,
	}, nil
}

func loadUserTaskStats(db *gorm.DB, userId types.ID) (*UserTaskStats, error) {
	stats := UserTaskStats{}
	if err := db.Model(&domain.Task{}).Where("assigned_to = ?", userId).Count(&stats.TotalTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Task{}).Where("assigned_to = ? AND status = ?", userId, domain.TaskStatusDone).
		Count(&stats.CompletedTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Task{}).Where("assigned_to = ? AND status = ?", userId, domain.TaskStatusInProgress).
		Count(&stats.InProgress).Error; err != nil {
		return nil, err
	}
	// a done task is never overdue, whatever its due date says
	if err := db.Model(&domain.Task{}).
		Where("assigned_to = ? AND due_date != ? AND due_date < ? AND status != ?",
			userId, types.Timestamp{}, types.CurrentTimestamp(), domain.TaskStatusDone).
		Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}
	stats.CompletionRate = CompletionRate(stats.CompletedTasks, stats.TotalTasks)
	return &stats, nil
}

// CompletionRate is completed/total as a percentage rounded to one
// decimal, zero when there is nothing assigned.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return float64(int(rate*10+0.5)) / 10
}

// AssignRole lets the ceo appoint finance/operations officers or demote
// back to worker. The ceo role itself is not assignable.
func AssignRole(userId types.ID, c *RoleAssignment, s *session.Session) (*User, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionAssignRole); err != nil {
		return nil, err
	}
	if !authority.IsAssignableRole(c.Role) {
		return nil, bizerror.ErrInvalidRole
	}

	var updated User
	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where(&User{ID: userId}).First(&user).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{"role": c.Role, "avatar": DefaultAvatarURL(user.Name, c.Role)}
		if err := tx.Model(&User{}).Where("id = ?", userId).Update(changes).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity("assigned_"+c.Role+"_role", activity.EntityTypeUser,
			user.ID, user.Name, 0, &s.Identity, tx)
		if err != nil {
			return err
		}

		return tx.Where(&User{ID: userId}).First(&updated).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if activity.InvokeHandlersFunc != nil {
		activity.InvokeHandlersFunc(act)
	}
	return &updated, nil
}

// ToggleUserStatus deactivates or reactivates an account. Accounts are
// never hard-deleted.
func ToggleUserStatus(userId types.ID, s *session.Session) (*User, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionToggleUserStatus); err != nil {
		return nil, err
	}

	var updated User
	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		user := User{}
		if err := tx.Where(&User{ID: userId}).First(&user).Error; err != nil {
			return err
		}

		action := "deactivated_user"
		if !user.Active {
			action = "activated_user"
		}
		if err := tx.Model(&User{}).Where("id = ?", userId).
			Update(map[string]interface{}{"active": !user.Active}).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity(action, activity.EntityTypeUser, user.ID, user.Name, 0, &s.Identity, tx)
		if err != nil {
			return err
		}

		return tx.Where(&User{ID: userId}).First(&updated).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	if activity.InvokeHandlersFunc != nil {
		activity.InvokeHandlersFunc(act)
	}
	return &updated, nil
}

func UpdateBasicAuthSecret(u *BasicAuthUpdating, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	user := User{}
	if err := db.Where(&User{ID: s.Identity.ID, Secret: HashSha256(u.OriginalSecret)}).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return bizerror.ErrInvalidPassword
		}
		return err
	}

	return db.Model(&User{}).Where("id = ?", s.Identity.ID).
		Update(map[string]interface{}{"secret": HashSha256(u.NewSecret)}).Error
}
