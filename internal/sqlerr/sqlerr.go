// Package sqlerr translates PostgreSQL driver errors into API errors.
//
// Constraint violations become 400 responses with machine codes derived from
// the table name (task_categories + unique violation becomes
// TASK_CATEGORY_ALREADY_EXISTS), missing rows become 404 and everything else
// is hidden behind a generic 500.
package sqlerr

import "github.com/jackc/pgx/v5/pgconn"

// Code is the normalized class of a database error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	ExclusionViolation  Code = "exclusion_violation"
	InvalidTextValue    Code = "invalid_text_representation"
)

// Severity mirrors the PostgreSQL severity field.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a driver-independent view of a PostgreSQL error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return string(e.Severity) + ": " + e.Message + " (SQLSTATE " + e.DatabaseCode + ")"
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a SQLSTATE onto a Code.
func MapCode(sqlState string) Code {
	switch sqlState {
	case pgerrcodeNotNullViolation:
		return NotNullViolation
	case pgerrcodeForeignKeyViolation:
		return ForeignKeyViolation
	case pgerrcodeUniqueViolation:
		return UniqueViolation
	case pgerrcodeCheckViolation:
		return CheckViolation
	case pgerrcodeExclusionViolation:
		return ExclusionViolation
	case pgerrcodeInvalidTextRepresentation:
		return InvalidTextValue
	default:
		return Other
	}
}

// MapSeverity maps the raw severity string. Unknown values are treated as
// errors.
func MapSeverity(severity string) Severity {
	switch s := Severity(severity); s {
	case SeverityError, SeverityFatal, SeverityPanic, SeverityWarning,
		SeverityNotice, SeverityDebug, SeverityInfo, SeverityLog:
		return s
	default:
		return SeverityError
	}
}

// SQLSTATE class 23 and 22 codes we care about.
const (
	pgerrcodeNotNullViolation          = "23502"
	pgerrcodeForeignKeyViolation       = "23503"
	pgerrcodeUniqueViolation           = "23505"
	pgerrcodeCheckViolation            = "23514"
	pgerrcodeExclusionViolation        = "23P01"
	pgerrcodeInvalidTextRepresentation = "22P02"
)

// ConvertPgError converts a pgconn.PgError into an Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}
