package indexlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"archon/persistence"
	"archon/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func TestCreateIndexLog(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return error when failed to persist index log", func(t *testing.T) {
		testErr := errors.New("test error")
		IndexLogPersistCreateFunc = func(record *IndexLogRecord, tx *gorm.DB) error {
			return testErr
		}
		var tx = &gorm.DB{Value: 10000}
		ret, err := CreateIndexLog(100, "CONTRACT", 1234, "ARC-2025-1234",
			types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local), tx)
		Expect(ret).To(BeNil())
		Expect(err).To(Equal(testErr))
	})

	t.Run("should be able to create index log", func(t *testing.T) {
		var log IndexLogRecord
		var db *gorm.DB
		IndexLogPersistCreateFunc = func(record *IndexLogRecord, tx *gorm.DB) error {
			log = *record
			db = tx
			return nil
		}

		var tx = &gorm.DB{Value: 10000}
		ret, err := CreateIndexLog(100, "CONTRACT", 1234, "ARC-2025-1234",
			types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local), tx)
		Expect(err).To(BeNil())

		expectIndexLog := IndexLogRecord{
			IndexLog: IndexLog{
				SourceType: "CONTRACT",
				SourceId:   1234,
				SourceDesc: "ARC-2025-1234",
			},
			ID:          100,
			Timestamp:   types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
			IndexedTime: types.Timestamp{},
		}
		Expect(*ret).To(Equal(expectIndexLog))
		Expect(log).To(Equal(expectIndexLog))
		Expect(db).To(Equal(tx))
	})
}

func indexLogPersistTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartMysqlTestDatabase("archon")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&IndexLogRecord{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
}
func indexLogPersistTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	if testDatabase != nil {
		testinfra.StopMysqlTestDatabase(testDatabase)
	}
}

func TestIndexLogPersistCreate(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should obsolete earlier pending logs of the same source only", func(t *testing.T) {
		defer indexLogPersistTestTeardown(t, testDatabase)
		indexLogPersistTestSetup(t, &testDatabase)

		indexlog1 := IndexLogRecord{
			IndexLog:    IndexLog{SourceType: "CONTRACT", SourceId: 1000, SourceDesc: "ARC-2025-1000"},
			ID:          100,
			Timestamp:   types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
			IndexedTime: types.TimestampOfDate(2025, 1, 1, 12, 12, 13, 0, time.Local),
		}
		assert.Nil(t, indexLogPersistCreate(&indexlog1, testDatabase.DS.GormDB(context.Background())))

		indexlog1a := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 1000, SourceDesc: "ARC-2025-1000"},
			ID:        110,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		assert.Nil(t, indexLogPersistCreate(&indexlog1a, testDatabase.DS.GormDB(context.Background())))

		indexlog2 := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 2000, SourceDesc: "ARC-2025-2000"},
			ID:        200,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		assert.Nil(t, indexLogPersistCreate(&indexlog2, testDatabase.DS.GormDB(context.Background())))

		indexlog1b := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 1000, SourceDesc: "ARC-2025-1000"},
			ID:        300,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		assert.Nil(t, indexLogPersistCreate(&indexlog1b, testDatabase.DS.GormDB(context.Background())))

		records := []IndexLogRecord{}
		Expect(testDatabase.DS.GormDB(context.Background()).Model(&IndexLogRecord{}).Find(&records).Error).To(BeNil())
		Expect(len(records)).To(Equal(4))
		Expect(records[3]).To(Equal(indexlog1b))
		Expect(records[2]).To(Equal(indexlog2)) // untouched, different source
		indexlog1a.Obsolete = true
		Expect(records[1]).To(Equal(indexlog1a)) // obsoleted, it was still pending
		Expect(records[0]).To(Equal(indexlog1))  // untouched, it was already indexed
	})
}

func TestFinishIndexLog(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should be able to finish index log", func(t *testing.T) {
		defer indexLogPersistTestTeardown(t, testDatabase)
		indexLogPersistTestSetup(t, &testDatabase)

		indexlog1 := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 1000, SourceDesc: "ARC-2025-1000"},
			ID:        110,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
			Obsolete:  true,
		}
		assert.Nil(t, indexLogPersistCreate(&indexlog1, testDatabase.DS.GormDB(context.Background())))
		Expect(FinishIndexLog(indexlog1.ID)).To(BeNil())
		records := []IndexLogRecord{}
		Expect(testDatabase.DS.GormDB(context.Background()).Model(&IndexLogRecord{}).Find(&records).Error).To(BeNil())
		Expect(time.Since(records[0].IndexedTime.Time()) < time.Second).To(BeTrue())
		Expect(records[0].Obsolete).To(BeFalse())

		// finishing again refreshes the indexed time
		oldIndexedTime := records[0].IndexedTime
		time.Sleep(10 * time.Millisecond)
		Expect(FinishIndexLog(indexlog1.ID)).To(BeNil())
		records = []IndexLogRecord{}
		Expect(testDatabase.DS.GormDB(context.Background()).Model(&IndexLogRecord{}).Find(&records).Error).To(BeNil())
		Expect(records[0].IndexedTime.Time().After(oldIndexedTime.Time())).To(BeTrue())
		Expect(records[0].Obsolete).To(BeFalse())
	})
}

func TestObsoleteIndexLog(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should be able to obsolete index log", func(t *testing.T) {
		defer indexLogPersistTestTeardown(t, testDatabase)
		indexLogPersistTestSetup(t, &testDatabase)

		indexlog1 := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 1000, SourceDesc: "ARC-2025-1000"},
			ID:        110,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		assert.Nil(t, indexLogPersistCreate(&indexlog1, testDatabase.DS.GormDB(context.Background())))
		Expect(ObsoleteIndexLog(indexlog1.ID)).To(BeNil())
		records := []IndexLogRecord{}
		Expect(testDatabase.DS.GormDB(context.Background()).Model(&IndexLogRecord{}).Find(&records).Error).To(BeNil())
		Expect(records[0].IndexedTime).To(BeZero())
		Expect(records[0].Obsolete).To(BeTrue())
	})
}

func TestLoadPendingIndexLog(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should page through pending logs only", func(t *testing.T) {
		defer indexLogPersistTestTeardown(t, testDatabase)
		indexLogPersistTestSetup(t, &testDatabase)

		indexlog1 := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 10001, SourceDesc: "ARC-2025-0001"},
			ID:        101,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		Expect(indexLogPersistCreate(&indexlog1, testDatabase.DS.GormDB(context.Background()))).To(BeNil())

		indexlog2 := IndexLogRecord{
			IndexLog:    IndexLog{SourceType: "CONTRACT", SourceId: 10002, SourceDesc: "ARC-2025-0002"},
			ID:          102,
			Timestamp:   types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
			IndexedTime: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		Expect(indexLogPersistCreate(&indexlog2, testDatabase.DS.GormDB(context.Background()))).To(BeNil())

		indexlog3 := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 10003, SourceDesc: "ARC-2025-0003"},
			ID:        103,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
			Obsolete:  true,
		}
		Expect(indexLogPersistCreate(&indexlog3, testDatabase.DS.GormDB(context.Background()))).To(BeNil())

		indexlog4 := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 10004, SourceDesc: "ARC-2025-0004"},
			ID:        104,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		Expect(indexLogPersistCreate(&indexlog4, testDatabase.DS.GormDB(context.Background()))).To(BeNil())

		indexlog5 := IndexLogRecord{
			IndexLog:  IndexLog{SourceType: "CONTRACT", SourceId: 10005, SourceDesc: "ARC-2025-0005"},
			ID:        105,
			Timestamp: types.TimestampOfDate(2025, 1, 1, 12, 12, 12, 0, time.Local),
		}
		Expect(indexLogPersistCreate(&indexlog5, testDatabase.DS.GormDB(context.Background()))).To(BeNil())

		ret, err := LoadPendingIndexLog(1, 2)
		Expect(err).To(BeNil())
		Expect(len(ret)).To(Equal(2))
		Expect(ret[0]).To(Equal(indexlog1))
		Expect(ret[1]).To(Equal(indexlog4))

		ret, err = LoadPendingIndexLog(2, 2)
		Expect(err).To(BeNil())
		Expect(len(ret)).To(Equal(1))
		Expect(ret[0]).To(Equal(indexlog5))
	})
}
