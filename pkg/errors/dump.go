package errors

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// StoreError is the driver-level detail behind a failed query.
type StoreError struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorDump flattens an error chain for logs. It is never sent to clients.
type ErrorDump struct {
	TopMessage string      `json:"top_message"`
	Code       Code        `json:"code,omitempty"`
	Chain      []string    `json:"chain,omitempty"`
	Store      *StoreError `json:"store,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), Store: storeError(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// Fields renders the dump as log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if s := d.Store; s != nil {
		fields["db_driver"] = s.Driver
		fields["db_code"] = s.Code
		fields["db_constraint"] = s.Constraint
		fields["db_table"] = s.Table
		fields["db_column"] = s.Column
		fields["db_detail"] = s.Detail
		fields["db_message"] = s.Message
	}
	return fields
}

func storeError(err error) *StoreError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &StoreError{
			Driver:     "pgx",
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
		return &StoreError{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &StoreError{
			Driver:  "sqlite",
			Code:    strconv.Itoa(int(liteErr.ExtendedCode)),
			Message: liteErr.Error(),
		}
	}
	return nil
}
