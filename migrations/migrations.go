// Package migrations embeds the oauth_tokens schema for each supported driver.
package migrations

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgresql/*.sql mysql/*.sql
var files embed.FS

// Source returns the migration source for driver ("postgres" or "mysql").
func Source(driver string) (source.Driver, error) {
	var dir string
	switch driver {
	case "postgres":
		dir = "postgresql"
	case "mysql":
		dir = "mysql"
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	return iofs.New(files, dir)
}
