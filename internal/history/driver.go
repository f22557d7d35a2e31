//go:build !sqlite_cgo

package history

import _ "modernc.org/sqlite"

// driverName selects the pure-Go sqlite driver. Build with -tags sqlite_cgo
// to use the CGO driver instead.
const driverName = "sqlite"
