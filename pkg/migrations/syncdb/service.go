// Package syncdb holds all the migrations for the sync server database
package syncdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the sync server database
var Migrations = migrate.NewMigrations()
