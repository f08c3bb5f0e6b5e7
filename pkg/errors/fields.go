package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// LogFields describes err for a structured log entry: the wrap chain, typed
// details, and the postgres diagnostics from whichever driver produced it.
// The message and code are left to the logger.
func LogFields(err error) map[string]any {
	fields := map[string]any{}
	if err == nil {
		return fields
	}

	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, fmt.Sprintf("%T", e))
	}
	if len(chain) > 1 {
		fields["error_chain"] = chain
	}
	if typed := As(err); typed != nil && typed.Details() != nil {
		fields["error_details"] = typed.Details()
	}
	for key, value := range postgresDiagnostics(err) {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

func postgresDiagnostics(err error) map[string]string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return map[string]string{
			"pg_code":       pgxErr.Code,
			"pg_constraint": pgxErr.ConstraintName,
			"pg_table":      pgxErr.TableName,
			"pg_column":     pgxErr.ColumnName,
			"pg_detail":     pgxErr.Detail,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return map[string]string{
			"pg_code":       string(pqErr.Code),
			"pg_constraint": pqErr.Constraint,
			"pg_table":      pqErr.Table,
			"pg_column":     pqErr.Column,
			"pg_detail":     pqErr.Detail,
		}
	}
	return nil
}
