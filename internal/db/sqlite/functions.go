package sqlite

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// foldFunc lowercases with full Unicode case mapping. The built-in lower()
// only folds ASCII, so "Ō" would never meet a term lowercased in Go.
const foldFunc = "figdex_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
