package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PGDetails holds the Postgres diagnostics of a driver error from either pgx or lib/pq.
type PGDetails struct {
	Code       string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

// Report is the log-only view of an error. It never reaches a response body.
type Report struct {
	Message string
	Code    Code
	Chain   []string
	PG      *PGDetails
}

func Inspect(err error) Report {
	if err == nil {
		return Report{}
	}
	r := Report{Message: err.Error(), PG: pgDetails(err)}
	if typed := As(err); typed != nil {
		r.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		r.Chain = append(r.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return r
}

func pgDetails(err error) *PGDetails {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDetails{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDetails{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}

// LogFields flattens the report into logger fields. Postgres keys appear only for driver errors.
func (r Report) LogFields() map[string]any {
	fields := map[string]any{
		"error":      r.Message,
		"error_code": r.Code,
	}
	if r.PG != nil {
		fields["pg_code"] = r.PG.Code
		fields["pg_table"] = r.PG.Table
		fields["pg_constraint"] = r.PG.Constraint
		fields["pg_message"] = r.PG.Message
	}
	return fields
}
