package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	configlibsql "course-api/lib/configutil/libsql"
	"course-api/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

// SetupService sets up telemetry for the test and opens a database with the
// given schema applied. The returned cleanup closes both.
func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanupTelemetry := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	if params.DbSchema == "" {
		return ServiceResult{}, cleanupTelemetry
	}

	dbpath := params.DbPath
	if dbpath == "" {
		dbpath = ":memory:"
	}
	db, err := configlibsql.Struct{File: dbpath}.OpenDB(params.DbSchema)
	if err != nil {
		t.Fatal(err)
	}

	return ServiceResult{DB: db}, func() {
		db.Close()
		cleanupTelemetry()
	}
}
