package persistence

import (
	"database/sql"
	"errors"
	"os"
	"strings"
)

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv DATABASE_DRIVER (default "mysql"),
// DATABASE_ARGS e.g. "root:root@(127.0.0.1:3306)/archon?charset=utf8mb4&parseTime=True&loc=Local"
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driverType := os.Getenv("DATABASE_DRIVER")
	if driverType == "" {
		driverType = "mysql"
	}
	driverArgs := os.ExpandEnv(os.Getenv("DATABASE_ARGS"))
	if driverArgs == "" {
		return nil, errors.New("environment variable DATABASE_ARGS is not set")
	}
	return &DatabaseConfig{DriverType: driverType, DriverArgs: driverArgs}, nil
}

// PrepareMysqlDatabase create the database when absent.
// The database name is cut out of the dsn, because a connection to a
// non-existing database is rejected by mysql.
func PrepareMysqlDatabase(driverArgs string) error {
	idx := strings.Index(driverArgs, "/")
	if idx < 0 {
		return errors.New("invalid mysql driver args")
	}
	databaseName := driverArgs[idx+1:]
	if paramsIdx := strings.Index(databaseName, "?"); paramsIdx >= 0 {
		databaseName = databaseName[0:paramsIdx]
	}
	if databaseName == "" {
		return errors.New("database name is not found in mysql driver args")
	}

	db, err := sql.Open("mysql", driverArgs[0:idx+1])
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS " + databaseName +
		" DEFAULT CHARACTER SET utf8mb4 DEFAULT COLLATE utf8mb4_general_ci")
	return err
}
