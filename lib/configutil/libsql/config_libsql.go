package configlibsql

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct points at either a local sqlite file or a remote libsql database.
type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) Enabled() bool {
	return config.File != "" || config.Url != ""
}

func (config Struct) OpenDB() (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("neither a file nor a url was specified")
		}
		db, err := sql.Open("sqlite", config.File)
		if err != nil {
			return nil, err
		}
		// sqlite only tolerates one writer
		db.SetMaxOpenConns(1)
		return db, nil
	}

	dsn, err := config.DSN()
	if err != nil {
		return nil, err
	}
	return sql.Open("libsql", dsn)
}

// DSN is the remote url with the auth token added to whatever query it already carries.
func (config Struct) DSN() (string, error) {
	u, err := url.Parse(config.Url)
	if err != nil {
		return "", fmt.Errorf("parse libsql url: %w", err)
	}
	if config.AuthToken != "" {
		query := u.Query()
		query.Set("authToken", config.AuthToken)
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
