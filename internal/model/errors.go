package model

import "fmt"

// ParseError reports malformed chart or template input.
type ParseError struct {
	Row    int // 1-based line number, 0 if unknown
	Reason string
}

func (e *ParseError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("parse error on line %d: %s", e.Row, e.Reason)
	}
	return "parse error: " + e.Reason
}

// ValidationError reports input that is well formed but not acceptable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation on a record that does not exist.
type NotFoundError struct {
	Kind string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Kind, e.ID)
}

// ConsistencyError reports a bill whose debit and credit totals differ.
type ConsistencyError struct {
	BillID      int
	DebitCents  int64
	CreditCents int64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("bill %d: debits (%d) != credits (%d)", e.BillID, e.DebitCents, e.CreditCents)
}

// PermissionError reports an operation the acting user may not perform.
type PermissionError struct {
	UserID int
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d: %s", e.UserID, e.Reason)
}
