package indices

import (
	"context"
	"fmt"
	"sync"

	"archon/activity"
	"archon/authority"
	"archon/bizerror"
	"archon/domain"
	"archon/domain/contract"
	"archon/idgen"
	"archon/indices/indexlog"
	"archon/persistence"
	"archon/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	ContractIndexHandlerName = "contractIndexer"
	IndexLogSourceContract   = "CONTRACT"

	// indexRobot is the synthetic identity index routines run under.
	indexRobot = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot", Role: authority.RoleCeo},
	}

	indexLogIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
	LoadContractsFunc      = contract.LoadContracts
	DetailContractFunc     = contract.DetailContract
	IndexContractsFunc     = IndexContracts
)

// ScheduleNewSyncRun kicks off a full index rebuild in the background.
// At most one run is active at a time, a second request while one is
// running returns false.
func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionRebuildIndex); err != nil {
		return false, err
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500

	// consecutive load failures tolerated before a full sync aborts
	syncLoadFailureCap = 3
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	loadFailures := 0
	for {
		contracts, err := LoadContractsFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve contracts(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			loadFailures++
			if loadFailures >= syncLoadFailureCap {
				return fmt.Errorf("indices full sync aborted after %d load failures: %v", loadFailures, err)
			}
			page++
			continue
		}
		loadFailures = 0

		if len(contracts) == 0 {
			logrus.Infof("indices fully sync: there are no more contract to index")
			return nil // loop exit
		}

		if err := IndexContractsFunc(contracts, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index contracts(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

// IndexContractActivityHandle pushes the touched contract into the
// search index after any contract-scoped activity committed. A pending
// index log is written first, so a failed push is replayed by the
// recovery routine instead of being lost.
func IndexContractActivityHandle(r *activity.ActivityRecord) *activity.ActivityHandleResult {
	if r.ContractID == 0 {
		return nil
	}

	var logRecord *indexlog.IndexLogRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(context.Background()).Transaction(func(tx *gorm.DB) error {
		var err error
		logRecord, err = indexlog.CreateIndexLogFunc(idgen.NextID(indexLogIdWorker), IndexLogSourceContract,
			r.ContractID, r.EntityName, types.CurrentTimestamp(), tx)
		return err
	})
	if txErr != nil {
		return &activity.ActivityHandleResult{
			Message:           fmt.Sprintf("create index log for contract %d, %v", r.ContractID, txErr),
			HandlerIdentifier: ContractIndexHandlerName,
		}
	}

	if err := indexContractById(r.ContractID.String()); err != nil {
		return &activity.ActivityHandleResult{
			Message:           fmt.Sprintf("index contract %d, %v", r.ContractID, err),
			HandlerIdentifier: ContractIndexHandlerName,
		}
	}

	if err := indexlog.FinishIndexLogFunc(logRecord.ID); err != nil {
		return &activity.ActivityHandleResult{
			Message:           fmt.Sprintf("finish index log %d, %v", logRecord.ID, err),
			HandlerIdentifier: ContractIndexHandlerName,
		}
	}
	return &activity.ActivityHandleResult{Success: true, HandlerIdentifier: ContractIndexHandlerName}
}

// IndexlogRecoveryRun replays pending index logs until none are left.
func IndexlogRecoveryRun(s *session.Session) error {
	if err := authority.CheckRole(s.Identity.Role, authority.ActionRebuildIndex); err != nil {
		return err
	}

	for {
		logs, err := indexlog.LoadPendingIndexLogFunc(1, SyncBatchSize)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			return nil
		}

		for _, logRecord := range logs {
			if err := indexContractById(logRecord.SourceId.String()); err != nil {
				if err == bizerror.ErrNotFound || gorm.IsRecordNotFoundError(err) {
					if err := indexlog.ObsoleteIndexLogFunc(logRecord.ID); err != nil {
						return err
					}
					continue
				}
				return err
			}
			if err := indexlog.FinishIndexLogFunc(logRecord.ID); err != nil {
				return err
			}
		}
	}
}

func indexContractById(identifier string) error {
	detail, err := DetailContractFunc(identifier, indexRobot)
	if err != nil {
		return err
	}
	return IndexContractsFunc([]domain.Contract{detail.Contract}, indexRobot)
}
