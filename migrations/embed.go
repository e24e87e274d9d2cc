// Package migrations embeds the SQL files that define the cloud document
// store's collections, for use by the goose programmatic API at server
// bootstrap and in integration-test TestMain functions.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.NewProvider instead of relying on a filesystem
// path at runtime.
//
//go:embed *.sql
var FS embed.FS
