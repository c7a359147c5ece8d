// Package db holds the goose migrations, one directory per SQL dialect.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
