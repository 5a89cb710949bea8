package activity

import (
	"github.com/fundwit/go-commons/types"
)

const (
	EntityTypeContract = "contract"
	EntityTypeTask     = "task"
	EntityTypeComment  = "comment"
	EntityTypeUser     = "user"
)

type Activity struct {
	ActorID   types.ID `json:"actorId"`
	ActorName string   `json:"actorName"`

	Action     string   `json:"action"`
	EntityType string   `json:"entityType" gorm:"index:idx_activity_entity"`
	EntityID   types.ID `json:"entityId" gorm:"index:idx_activity_entity"`
	EntityName string   `json:"entityName"`

	// ContractID is zero for activities not related to a contract,
	// e.g. role assignments.
	ContractID types.ID `json:"contractId" gorm:"index:idx_activity_contract"`
}

// ActivityRecord is an append-only audit row. Records are never updated
// or deleted.
type ActivityRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Activity

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *ActivityRecord) TableName() string {
	return "activities"
}
