//go:build sqlite_cgo

package history

import _ "github.com/mattn/go-sqlite3"

// driverName selects the CGO sqlite driver when built with -tags sqlite_cgo.
const driverName = "sqlite3"
