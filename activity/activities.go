package activity

import (
	"archon/idgen"
	"archon/persistence"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	activityIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	ActivityPersistCreateFunc = activityPersistCreate
	QueryActivitiesFunc       = QueryActivities
)

// CreateActivity appends an audit record inside the caller's transaction.
// The returned record is handed to InvokeHandlersFunc by the caller after
// the transaction committed.
func CreateActivity(action, entityType string, entityID types.ID, entityName string, contractID types.ID,
	identity *session.Identity, tx *gorm.DB) (*ActivityRecord, error) {

	record := ActivityRecord{
		ID: idgen.NextID(activityIdWorker),
		Activity: Activity{
			ActorID:   identity.ID,
			ActorName: identity.Name,

			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			EntityName: entityName,
			ContractID: contractID,
		},
		CreateTime: types.CurrentTimestamp(),
	}
	if err := ActivityPersistCreateFunc(&record, tx); err != nil {
		return nil, err
	}
	return &record, nil
}

func activityPersistCreate(record *ActivityRecord, tx *gorm.DB) error {
	return tx.Create(record).Error
}

type ActivityHandler func(r *ActivityRecord) *ActivityHandleResult

type ActivityHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var ActivityHandlers []ActivityHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *ActivityRecord) []ActivityHandleResult {
	if record == nil {
		return nil
	}
	results := []ActivityHandleResult{}
	for _, handler := range ActivityHandlers {
		logrus.Debug("pre handle activity ", record.Activity)
		r := handler(record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		if r.Success {
			logrus.Info("post handle activity. ", r)
		} else {
			logrus.Error("post handler error. ", r)
		}
	}
	return results
}

type ActivityQuery struct {
	ContractID types.ID `json:"contractId" form:"contractId"`
	Limit      int      `json:"limit" form:"limit"`
}

const defaultQueryLimit = 50

// QueryActivities lists audit records newest first.
func QueryActivities(query *ActivityQuery, s *session.Session) ([]ActivityRecord, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	records := []ActivityRecord{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := db.Model(&ActivityRecord{})
	if query.ContractID != 0 {
		q = q.Where("contract_id = ?", query.ContractID)
	}
	if err := q.Order("create_time DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
