package main

import (
	"log"
	"net/http"

	"archon/account"
	"archon/activity"
	"archon/avatar"
	"archon/bizerror"
	"archon/client/es"
	"archon/client/s3"
	"archon/common"
	"archon/dashboard"
	"archon/domain"
	"archon/domain/contract"
	"archon/domain/task"
	"archon/domain/task/comment"
	"archon/indices"
	"archon/indices/indexlog"
	"archon/indices/search"
	"archon/infra/tracing"
	"archon/persistence"
	"archon/servehttp"
	"archon/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.Infoln("service start")

	tracingCloser, err := tracing.Bootstrap(common.GetServiceName())
	if err != nil {
		log.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer tracingCloser.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&domain.Contract{}, &domain.StaffEntry{},
		&domain.Task{}, &domain.Comment{},
		&activity.ActivityRecord{},
		&contract.Sequence{},
		&indexlog.IndexLogRecord{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.Bootstrap(); err != nil {
		log.Fatalf("account bootstrap failed %v\n", err)
	}

	es.CreateClientFromEnv()
	s3.Bootstrap()

	activity.ActivityHandlers = append(activity.ActivityHandlers, indices.IndexContractActivityHandle)

	engine := gin.Default()
	engine.Use(tracing.TracingIngress())
	engine.Use(bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	account.RegisterRegistrationsRestAPI(engine)
	account.RegisterSessionsRestAPI(engine)

	auth := session.SimpleAuthFilter()
	account.RegisterUsersRestAPI(engine, auth)
	contract.RegisterContractsRestAPI(engine, auth)
	task.RegisterTasksRestAPI(engine, auth)
	comment.RegisterTaskCommentsRestAPI(engine, auth)
	dashboard.RegisterDashboardRestAPI(engine, auth)
	activity.RegisterActivitiesRestAPI(engine, auth)
	avatar.RegisterAvatarsRestAPI(engine, auth)
	indices.RegisterIndicesRestAPI(engine, auth)
	search.RegisterContractSearchRestAPI(engine, auth)

	servehttp.StartHTTPServer(engine)
}
