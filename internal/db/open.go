package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"tagaudit/internal/components/telemetry"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Config selects the database, a remote libsql Url takes precedence over a
// local sqlite File.
type Config struct {
	File      string `json:"file"`
	Url       string `json:"url" validate:"omitempty,url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and makes sure the schema exists.
func (config Config) OpenDB() (*sql.DB, error) {
	var database *sql.DB
	var err error
	switch {
	case config.Url != "":
		database, err = openLibsql(config.Url, config.AuthToken)
	case config.File != "":
		database, err = OpenSqlite(config.File)
	default:
		return nil, fmt.Errorf("a database file or url was not specified")
	}
	if err != nil {
		return nil, telemetry.RedactError(err)
	}

	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", telemetry.RedactError(err))
	}
	return database, nil
}

func openLibsql(rawUrl, authToken string) (*sql.DB, error) {
	if authToken != "" {
		parsed, err := url.Parse(rawUrl)
		if err != nil {
			return nil, err
		}
		values := parsed.Query()
		values.Set("authToken", authToken)
		parsed.RawQuery = values.Encode()
		rawUrl = parsed.String()
	}
	return sql.Open("libsql", rawUrl)
}

// OpenSqlite opens a local sqlite database, `:memory:` is allowed.
func OpenSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite only allows one writer at a time, and every connection to
	// :memory: would otherwise get its own empty database
	database.SetMaxOpenConns(1)

	if path != ":memory:" {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, err
		}
	}
	_, err = database.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}
