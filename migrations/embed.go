// Package migrations chứa schema SQL được embed vào binary.
// File đặt tên theo dạng <version>_<name>.up.sql và được apply theo thứ tự version.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
