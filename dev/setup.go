package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	devenv "course-api/dev/env"
	configlibsql "course-api/lib/configutil/libsql"
	coursestoredb "course-api/lib/coursestore/db"
	"course-api/lib/pagecache"
	"course-api/services/courseapi"
)

func createDb(file, schema string) error {
	path, err := devenv.ResolvePath(file)
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := configlibsql.Struct{File: file}.OpenDB(schema)
	if err != nil {
		return err
	}
	return db.Close()
}

func CreateEmptyServiceDBs() error {
	cfg := courseapi.DefaultConfig()
	err := createDb(cfg.Cache.Database.File, pagecache.Schema)
	if err != nil {
		return err
	}
	return createDb(cfg.Store.Database.File, coursestoredb.Schema)
}

// WriteDefaultConfig writes the default configuration into dev/.state unless
// a config already exists there, json is valid json5.
func WriteDefaultConfig(name string) error {
	path, err := devenv.GetStateFilePath(name)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("config already exists at", path)
		return nil
	}

	contents, err := json.MarshalIndent(courseapi.DefaultConfig(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println("writing default config to", path)
	return os.WriteFile(path, append(contents, '\n'), 0666)
}

func PrintConfigLocations() {
	slog.Info("the default config was written to dev/.state/config.json5, put local overrides (ex. catalog sources, a remote store database) in dev/.state/config.local.json5 and an otlp config in telemetry.json5 to export traces.")
}
