package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Queryable is satisfied by both *sqlx.DB and *sqlx.Tx, allowing
// stores to be agnostic of whether they're running inside
// of a transaction.
type Queryable interface {
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Select(dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Get(dest any, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExec(query string, arg any) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	Rebind(query string) string
}

// RawJson is a JSON document column which is stored and returned
// verbatim. A nil/empty value is stored as an empty JSON object.
type RawJson json.RawMessage

func (r *RawJson) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case []byte:
		*r = append((*r)[:0], v...)
	case string:
		*r = RawJson(v)
	default:
		return errors.New("unsupported type for RawJson column")
	}

	return nil
}

func (r RawJson) Value() (driver.Value, error) {
	if len(r) == 0 {
		return []byte("{}"), nil
	}

	return []byte(r), nil
}

func (r RawJson) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("{}"), nil
	}

	return r, nil
}
