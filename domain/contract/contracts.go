package contract

import (
	"fmt"
	"time"

	"archon/activity"
	"archon/authority"
	"archon/bizerror"
	"archon/domain"
	"archon/domain/lifecycle"
	"archon/domain/profit"
	"archon/idgen"
	"archon/persistence"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	contractIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateContractFunc  = CreateContract
	QueryContractsFunc  = QueryContracts
	DetailContractFunc  = DetailContract
	AllocateFinanceFunc = AllocateFinance
	SetupOperationsFunc = SetupOperations
	AddStaffFunc        = AddStaff
)

// CreateContract registers a new engagement with its client and value.
// The contract number is drawn from the per-year sequence inside the
// same transaction, so two concurrent creations never share a number.
func CreateContract(c *domain.ContractCreation, s *session.Session) (*domain.ContractDetail, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionCreateContract); err != nil {
		return nil, err
	}

	now := types.CurrentTimestamp()
	target, actual, profitStatus := profit.Classify(c.ContractValue, 0, 0, 0, 0, 0)

	record := domain.Contract{
		ID:         idgen.NextID(contractIdWorker),
		ClientName: c.ClientName,

		ContractValue: c.ContractValue,
		TargetProfit:  target,
		ActualProfit:  actual,
		ProfitStatus:  profitStatus,
		ProjectStatus: lifecycle.StatusPending,

		CreateTime: now,
		UpdateTime: now,
	}

	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		number, err := nextContractNumber(now.Time().Year(), tx)
		if err != nil {
			return err
		}
		record.ContractNumber = number

		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		act, err = activity.CreateActivity("created_contract", activity.EntityTypeContract,
			record.ID, record.ContractNumber, record.ID, &s.Identity, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	activity.InvokeHandlersFunc(act)
	return &domain.ContractDetail{Contract: record, StaffList: []domain.StaffEntry{}}, nil
}

// QueryContracts lists contracts newest first. Profit and project
// statuses are recomputed before the status filters apply, so a
// contract that expired since its last write is already filtered as
// expired.
func QueryContracts(q *domain.ContractQuery, s *session.Session) ([]domain.ContractDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	query := db.Model(&domain.Contract{})
	if q.Number != "" {
		query = query.Where("contract_number LIKE ?", "%"+q.Number+"%")
	}
	if q.ClientName != "" {
		query = query.Where("client_name LIKE ?", "%"+q.ClientName+"%")
	}

	var records []domain.Contract
	if err := query.Order("create_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	details := make([]domain.ContractDetail, 0, len(records))
	for i := range records {
		RefreshDerivedState(&records[i], now)
		if q.ProjectStatus != "" && string(records[i].ProjectStatus) != q.ProjectStatus {
			continue
		}
		if q.ProfitStatus != "" && string(records[i].ProfitStatus) != q.ProfitStatus {
			continue
		}

		detail, err := buildContractDetail(db, &records[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// DetailContract resolves a contract by id, falling back to the
// contract number so links like ARC-2025-0001 work directly.
func DetailContract(identifier string, s *session.Session) (*domain.ContractDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	record, err := findContract(db, identifier)
	if err != nil {
		return nil, err
	}

	RefreshDerivedState(record, time.Now())
	return buildContractDetail(db, record)
}

// AllocateFinance replaces the finance-owned economic inputs and stamps
// the acting finance officer. The profit fields are derived here, never
// taken from the request.
func AllocateFinance(id types.ID, alloc *domain.FinanceAllocation, s *session.Session) (*domain.ContractDetail, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionAllocateFinance); err != nil {
		return nil, err
	}

	target, actual, profitStatus := profit.Classify(alloc.ContractValue,
		alloc.StaffCost, alloc.Commission, alloc.Tax, alloc.AdminFee, alloc.OverheadCost)

	officerName := alloc.FinanceOfficerName
	if officerName == "" {
		officerName = s.Identity.Name
	}

	var updated domain.Contract
	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Contract{}
		if err := tx.Where(&domain.Contract{ID: id}).First(&record).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{
			"contract_value": alloc.ContractValue,
			"staff_count":    alloc.StaffCount,
			"tax":            alloc.Tax,
			"overhead_cost":  alloc.OverheadCost,
			"commission":     alloc.Commission,
			"admin_fee":      alloc.AdminFee,
			"staff_cost":     alloc.StaffCost,

			"target_profit": target,
			"actual_profit": actual,
			"profit_status": profitStatus,

			"finance_allocated":    true,
			"finance_officer_id":   s.Identity.ID,
			"finance_officer_name": officerName,
			"update_time":          types.CurrentTimestamp(),
		}
		if err := tx.Model(&domain.Contract{}).Where("id = ?", id).Update(changes).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity("allocated_finance", activity.EntityTypeContract,
			record.ID, record.ContractNumber, record.ID, &s.Identity, tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Contract{ID: id}).First(&updated).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	activity.InvokeHandlersFunc(act)

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	RefreshDerivedState(&updated, time.Now())
	return buildContractDetail(db, &updated)
}

// SetupOperations replaces the operations-owned execution inputs. The
// only accepted manual status is "inactive"; clearing it also clears
// the inactive reason.
func SetupOperations(id types.ID, setup *domain.OperationsSetup, s *session.Session) (*domain.ContractDetail, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionConfigureOperations); err != nil {
		return nil, err
	}
	if setup.ManualStatus != "" && setup.ManualStatus != lifecycle.ManualStatusInactive {
		return nil, &bizerror.ErrBadParam{Cause: errInvalidManualStatus(setup.ManualStatus)}
	}

	inactiveReason := setup.InactiveReason
	if setup.ManualStatus != lifecycle.ManualStatusInactive {
		inactiveReason = ""
	}
	projectStatus := lifecycle.Resolve(time.Now(), setup.ProjectStartDate, setup.ProjectEndDate, setup.ManualStatus)

	officerName := setup.OperationsOfficerName
	if officerName == "" {
		officerName = s.Identity.Name
	}

	var updated domain.Contract
	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Contract{}
		if err := tx.Where(&domain.Contract{ID: id}).First(&record).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{
			"project_start_date": setup.ProjectStartDate,
			"project_end_date":   setup.ProjectEndDate,
			"project_type":       setup.ProjectType,
			"duration_type":      setup.DurationType,
			"manual_status":      setup.ManualStatus,
			"inactive_reason":    inactiveReason,
			"project_status":     projectStatus,

			"operations_configured":   true,
			"operations_officer_id":   s.Identity.ID,
			"operations_officer_name": officerName,
			"update_time":             types.CurrentTimestamp(),
		}
		if err := tx.Model(&domain.Contract{}).Where("id = ?", id).Update(changes).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity("configured_operations", activity.EntityTypeContract,
			record.ID, record.ContractNumber, record.ID, &s.Identity, tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Contract{ID: id}).First(&updated).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	activity.InvokeHandlersFunc(act)

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	RefreshDerivedState(&updated, time.Now())
	return buildContractDetail(db, &updated)
}

// AddStaff appends a staffing record to a contract. Entries are
// append-only, there is no update or removal.
func AddStaff(id types.ID, assignment *domain.StaffAssignment, s *session.Session) (*domain.StaffEntry, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionAssignStaff); err != nil {
		return nil, err
	}

	taskStatus := assignment.TaskStatus
	if taskStatus == "" {
		taskStatus = "Pending"
	}

	entry := domain.StaffEntry{
		ID:         idgen.NextID(contractIdWorker),
		ContractID: id,

		Name:             assignment.Name,
		Contact:          assignment.Contact,
		PaymentStructure: assignment.PaymentStructure,
		TaskStatus:       taskStatus,

		AddTime: types.CurrentTimestamp(),
	}

	var act *activity.ActivityRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		record := domain.Contract{}
		if err := tx.Where(&domain.Contract{ID: id}).First(&record).Error; err != nil {
			return err
		}

		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var err error
		act, err = activity.CreateActivity("assigned_staff", activity.EntityTypeContract,
			record.ID, record.ContractNumber, record.ID, &s.Identity, tx)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	activity.InvokeHandlersFunc(act)
	return &entry, nil
}

// LoadContracts pages through all contracts by ascending id, for index
// rebuilds.
func LoadContracts(page, size int) ([]domain.Contract, error) {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	var records []domain.Contract
	if err := db.Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&records).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range records {
		RefreshDerivedState(&records[i], now)
	}
	return records, nil
}

// RefreshDerivedState recomputes the profit and lifecycle fields from
// their inputs. Reads never trust the persisted derived values, since a
// project may have started or expired since the last write.
func RefreshDerivedState(c *domain.Contract, now time.Time) {
	c.TargetProfit, c.ActualProfit, c.ProfitStatus = profit.Classify(c.ContractValue,
		c.StaffCost, c.Commission, c.Tax, c.AdminFee, c.OverheadCost)
	c.ProjectStatus = lifecycle.Resolve(now, c.ProjectStartDate, c.ProjectEndDate, c.ManualStatus)
}

func findContract(db *gorm.DB, identifier string) (*domain.Contract, error) {
	query := db.Where("contract_number = ?", identifier)
	if id, err := types.ParseID(identifier); err == nil {
		query = db.Where("id = ? OR contract_number = ?", id, identifier)
	}

	record := domain.Contract{}
	if err := query.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func buildContractDetail(db *gorm.DB, record *domain.Contract) (*domain.ContractDetail, error) {
	staffList := []domain.StaffEntry{}
	if err := db.Where("contract_id = ?", record.ID).Order("add_time ASC").Find(&staffList).Error; err != nil {
		return nil, err
	}

	stats, err := loadContractTaskStats(db, record.ID)
	if err != nil {
		return nil, err
	}

	return &domain.ContractDetail{Contract: *record, StaffList: staffList, TaskStats: *stats}, nil
}

func errInvalidManualStatus(value string) error {
	return fmt.Errorf("invalid manual status '%s'", value)
}

func loadContractTaskStats(db *gorm.DB, contractId types.ID) (*domain.ContractTaskStats, error) {
	stats := domain.ContractTaskStats{}
	if err := db.Model(&domain.Task{}).Where("contract_id = ?", contractId).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Task{}).Where("contract_id = ? AND status = ?", contractId, domain.TaskStatusDone).
		Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.Progress = float64(int(rate*10+0.5)) / 10
	}
	return &stats, nil
}
