package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month, want YYYY-MM")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = errors.New("name too long (max 120 characters)")
	ErrNoteTooLong   = errors.New("note too long (max 255 characters)")
	ErrWeakPassword  = errors.New("password too short (min 6 characters)")

	// Store-level outcomes surfaced through every layer.
	ErrNotFound       = errors.New("not found")
	ErrEmailExists    = errors.New("email already registered")
	ErrCategoryExists = errors.New("category already exists")
	ErrBudgetExists   = errors.New("budget for this category and month already exists")
)

var (
	monthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type (
	// MonthKey identifies a calendar month as a "YYYY-MM" string. All
	// monthly aggregation groups by this key.
	MonthKey string

	// Date is a calendar day without a time component.
	Date struct {
		time.Time
	}

	User struct {
		ID           int64     `json:"id"`
		Email        string    `json:"email"`
		Name         string    `json:"name"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	Category struct {
		ID        int64     `json:"id"`
		UserID    int64     `json:"user_id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Budget struct {
		ID         int64     `json:"id"`
		UserID     int64     `json:"user_id"`
		CategoryID int64     `json:"category_id"`
		Month      MonthKey  `json:"month"`
		Amount     Money     `json:"amount"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}

	// Expense holds a weak reference to its category: the category may be
	// deleted later, in which case CategoryID becomes nil and the expense
	// itself survives.
	Expense struct {
		ID         int64     `json:"id"`
		UserID     int64     `json:"user_id"`
		CategoryID *int64    `json:"category_id"`
		Amount     Money     `json:"amount"`
		Note       string    `json:"note,omitempty"`
		Date       Date      `json:"date"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}
)

// ParseMonth validates and returns a month key.
func ParseMonth(s string) (MonthKey, error) {
	if !monthRe.MatchString(s) {
		return "", ErrInvalidMonth
	}
	if _, err := time.Parse("2006-01", s); err != nil {
		return "", ErrInvalidMonth
	}
	return MonthKey(s), nil
}

func (k MonthKey) Validate() error {
	_, err := ParseMonth(string(k))
	return err
}

func (k MonthKey) String() string { return string(k) }

// ParseDate parses a "YYYY-MM-DD" calendar day.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate builds a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the month key the date falls into.
func (d Date) Month() MonthKey {
	return MonthKey(d.Format("2006-01"))
}

func (d Date) String() string { return d.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidateRegistration checks the fields of a new account.
func ValidateRegistration(email, name, password string) error {
	if !emailRe.MatchString(email) {
		return ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 120 {
		return ErrNameTooLong
	}
	return ValidatePassword(password)
}

// ValidatePassword enforces the minimum credential length.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrWeakPassword
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 120 {
		return ErrNameTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Month.Validate(); err != nil {
		return err
	}
	return b.Amount.Validate()
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(e.Note) > 255 {
		return ErrNoteTooLong
	}
	return e.Amount.Validate()
}
