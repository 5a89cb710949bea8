package domain

import (
	"archon/domain/lifecycle"
	"archon/domain/profit"

	"github.com/fundwit/go-commons/types"
)

// Contract is the billable engagement whose economics and execution
// status the service tracks. TargetProfit, ActualProfit, ProfitStatus and
// ProjectStatus are derived values: they are persisted for reporting
// queries but recomputed from their inputs on every read and write.
type Contract struct {
	ID             types.ID `json:"id" gorm:"primary_key"`
	ContractNumber string   `json:"contractNumber" gorm:"unique_index" sql:"type:VARCHAR(32) NOT NULL"`
	ClientName     string   `json:"clientName"`

	ContractValue float64 `json:"contractValue"`
	StaffCount    int     `json:"staffCount"`
	Tax           float64 `json:"tax"`
	OverheadCost  float64 `json:"overheadCost"`
	Commission    float64 `json:"commission"`
	AdminFee      float64 `json:"adminFee"`
	StaffCost     float64 `json:"staffCost"`

	TargetProfit float64       `json:"targetProfit"`
	ActualProfit float64       `json:"actualProfit"`
	ProfitStatus profit.Status `json:"profitStatus" sql:"type:VARCHAR(16)"`

	ProjectType      string `json:"projectType"`
	DurationType     string `json:"durationType"`
	ProjectStartDate string `json:"projectStartDate"`
	ProjectEndDate   string `json:"projectEndDate"`
	ManualStatus     string `json:"manualStatus"`
	InactiveReason   string `json:"inactiveReason"`

	ProjectStatus lifecycle.ProjectStatus `json:"projectStatus" sql:"type:VARCHAR(16)"`

	FinanceAllocated     bool `json:"financeAllocated"`
	OperationsConfigured bool `json:"operationsConfigured"`

	FinanceOfficerID      types.ID `json:"financeOfficerId"`
	FinanceOfficerName    string   `json:"financeOfficerName"`
	OperationsOfficerID   types.ID `json:"operationsOfficerId"`
	OperationsOfficerName string   `json:"operationsOfficerName"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	UpdateTime types.Timestamp `json:"updateTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *Contract) TableName() string {
	return "contracts"
}

// StaffEntry is an append-only staffing record of a contract. Entries are
// never updated or removed once added.
type StaffEntry struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	ContractID types.ID `json:"contractId" gorm:"index:idx_staff_contract"`

	Name             string `json:"name"`
	Contact          string `json:"contact"`
	PaymentStructure string `json:"paymentStructure"`
	TaskStatus       string `json:"taskStatus"`

	AddTime types.Timestamp `json:"addTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (e *StaffEntry) TableName() string {
	return "contract_staff_entries"
}

type ContractTaskStats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Progress  float64 `json:"progress"`
}

type ContractDetail struct {
	Contract

	StaffList []StaffEntry      `json:"staffList" gorm:"-"`
	TaskStats ContractTaskStats `json:"taskStats" gorm:"-"`
}

type ContractCreation struct {
	ClientName    string  `json:"clientName" binding:"required"`
	ContractValue float64 `json:"contractValue" binding:"required"`
}

// FinanceAllocation carries the finance-owned economic inputs. It lists
// every field the allocation action may touch; the derived profit fields
// are recomputed by the server and cannot be supplied.
type FinanceAllocation struct {
	ContractValue float64 `json:"contractValue" binding:"required"`
	StaffCount    int     `json:"staffCount"`
	Tax           float64 `json:"tax"`
	OverheadCost  float64 `json:"overheadCost"`
	Commission    float64 `json:"commission"`
	AdminFee      float64 `json:"adminFee"`
	StaffCost     float64 `json:"staffCost"`

	FinanceOfficerName string `json:"financeOfficerName"`
}

// OperationsSetup carries the operations-owned execution inputs.
type OperationsSetup struct {
	ProjectStartDate string `json:"projectStartDate"`
	ProjectEndDate   string `json:"projectEndDate"`
	ProjectType      string `json:"projectType"`
	DurationType     string `json:"durationType"`
	ManualStatus     string `json:"manualStatus"`
	InactiveReason   string `json:"inactiveReason"`

	OperationsOfficerName string `json:"operationsOfficerName"`
}

type StaffAssignment struct {
	Name             string `json:"name" binding:"required"`
	Contact          string `json:"contact" binding:"required"`
	PaymentStructure string `json:"paymentStructure"`
	TaskStatus       string `json:"taskStatus"`
}

type ContractQuery struct {
	Number        string `json:"number" form:"number"`
	ClientName    string `json:"clientName" form:"clientName"`
	ProjectStatus string `json:"projectStatus" form:"projectStatus"`
	ProfitStatus  string `json:"profitStatus" form:"profitStatus"`
}
