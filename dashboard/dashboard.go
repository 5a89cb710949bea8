package dashboard

import (
	"sort"
	"time"

	"archon/account"
	"archon/authority"
	"archon/domain"
	"archon/domain/contract"
	"archon/domain/lifecycle"
	"archon/domain/profit"
	"archon/domain/task"
	"archon/persistence"
	"archon/session"

	"github.com/fundwit/go-commons/types"
)

var (
	LoadDashboardStatsFunc  = LoadDashboardStats
	LoadMyTasksFunc         = LoadMyTasks
	LoadTeamPerformanceFunc = LoadTeamPerformance
)

type ContractStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Active   int `json:"active"`
	Expired  int `json:"expired"`
	Inactive int `json:"inactive"`

	TotalValue        float64 `json:"totalValue"`
	TotalTargetProfit float64 `json:"totalTargetProfit"`
	TotalActualProfit float64 `json:"totalActualProfit"`

	ProfitGreen  int `json:"profitGreen"`
	ProfitOrange int `json:"profitOrange"`
	ProfitRed    int `json:"profitRed"`
}

type TaskStats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Review     int `json:"review"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}

type DashboardStats struct {
	Contracts ContractStats         `json:"contracts"`
	Tasks     TaskStats             `json:"tasks"`
	TeamSize  int                   `json:"teamSize"`
	MyStats   account.UserTaskStats `json:"myStats"`
}

type MemberPerformance struct {
	UserID     types.ID `json:"userId"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Department string   `json:"department"`
	Avatar     string   `json:"avatar"`

	Stats account.UserTaskStats `json:"stats"`
}

// LoadDashboardStats aggregates contract, task and personal numbers for
// the landing page. Contract statuses are recomputed before counting,
// so a project that expired overnight lands in the expired bucket.
func LoadDashboardStats(s *session.Session) (*DashboardStats, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	stats := DashboardStats{}

	var contracts []domain.Contract
	if err := db.Find(&contracts).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range contracts {
		contract.RefreshDerivedState(&contracts[i], now)
		c := &contracts[i]

		stats.Contracts.Total++
		stats.Contracts.TotalValue += c.ContractValue
		stats.Contracts.TotalTargetProfit += c.TargetProfit
		stats.Contracts.TotalActualProfit += c.ActualProfit

		switch c.ProjectStatus {
		case lifecycle.StatusPending:
			stats.Contracts.Pending++
		case lifecycle.StatusActive:
			stats.Contracts.Active++
		case lifecycle.StatusExpired:
			stats.Contracts.Expired++
		case lifecycle.StatusInactive:
			stats.Contracts.Inactive++
		}
		switch c.ProfitStatus {
		case profit.StatusGreen:
			stats.Contracts.ProfitGreen++
		case profit.StatusOrange:
			stats.Contracts.ProfitOrange++
		case profit.StatusRed:
			stats.Contracts.ProfitRed++
		}
	}

	if err := db.Model(&domain.Task{}).Count(&stats.Tasks.Total).Error; err != nil {
		return nil, err
	}
	counts := []struct {
		status string
		target *int
	}{
		{domain.TaskStatusTodo, &stats.Tasks.Todo},
		{domain.TaskStatusInProgress, &stats.Tasks.InProgress},
		{domain.TaskStatusReview, &stats.Tasks.Review},
		{domain.TaskStatusDone, &stats.Tasks.Done},
	}
	for _, c := range counts {
		if err := db.Model(&domain.Task{}).Where("status = ?", c.status).Count(c.target).Error; err != nil {
			return nil, err
		}
	}
	// a done task is never overdue, whatever its due date says
	if err := db.Model(&domain.Task{}).
		Where("due_date != ? AND due_date < ? AND status != ?",
			types.Timestamp{}, types.CurrentTimestamp(), domain.TaskStatusDone).
		Count(&stats.Tasks.Overdue).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&account.User{}).Where("active = ?", true).Count(&stats.TeamSize).Error; err != nil {
		return nil, err
	}

	me, err := account.DetailMeFunc(s)
	if err != nil {
		return nil, err
	}
	stats.MyStats = me.Stats

	return &stats, nil
}

// LoadMyTasks lists the caller's open tasks ordered by due date,
// enriched the same way as the task board. Done tasks never show up
// here.
func LoadMyTasks(s *session.Session) ([]domain.TaskDetail, error) {
	return task.QueryTasksFunc(&domain.TaskQuery{
		AssignedTo: s.Identity.ID, OpenOnly: true, DueDateAsc: true,
	}, s)
}

// LoadTeamPerformance ranks active members by completion rate. The sort
// is stable so members with equal rates keep their account order.
func LoadTeamPerformance(s *session.Session) ([]MemberPerformance, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionViewTeamPerformance); err != nil {
		return nil, err
	}

	users, err := account.QueryUsersFunc(s)
	if err != nil {
		return nil, err
	}

	members := make([]MemberPerformance, 0, len(users))
	for _, u := range users {
		if !u.Active {
			continue
		}
		members = append(members, MemberPerformance{
			UserID: u.ID, Name: u.Name, Role: u.Role,
			Department: u.Department, Avatar: u.Avatar,
			Stats: u.Stats,
		})
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Stats.CompletionRate > members[j].Stats.CompletionRate
	})
	return members, nil
}
