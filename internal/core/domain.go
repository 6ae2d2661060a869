package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending  ExpenseStatus = "pending"
	StatusApproved ExpenseStatus = "approved"
	StatusRejected ExpenseStatus = "rejected"
)

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

type (
	ExpenseStatus string

	Role string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID          string
		SpentOn     Date
		Description string
		Amount      Money
		Category    string
		Status      ExpenseStatus
		Submitter   string
		CreatedAt   time.Time
	}

	User struct {
		ID         string
		Name       string
		Email      string
		Role       Role
		Department string
		Active     bool
		JoinedOn   Date
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptySubmitter   = errors.New("empty submitter")
	ErrUnknownStatus    = errors.New("unknown expense status")
	ErrUnknownRole      = errors.New("unknown role")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrZeroDate         = errors.New("date cannot be zero")
)

// DateLayout is the calendar-date wire format used by filters, storage and exports.
const DateLayout = "2006-01-02"

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseExpenseStatus normalizes s and checks it names a known status.
func ParseExpenseStatus(s string) (ExpenseStatus, error) {
	st := ExpenseStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// ParseRole normalizes s and checks it names a known role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return r, nil
	}
	return "", ErrUnknownRole
}

func (e Expense) Validate() error {
	if err := e.SpentOn.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Submitter) == "" {
		return ErrEmptySubmitter
	}
	if _, err := ParseExpenseStatus(string(e.Status)); err != nil {
		return err
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("empty name")
	}
	at := strings.IndexByte(u.Email, '@')
	if at < 1 || at == len(u.Email)-1 {
		return ErrInvalidEmail
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	return u.JoinedOn.Validate()
}
