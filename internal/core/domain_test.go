package core

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2025-08", true},
		{"1999-01", true},
		{"2025-13", false},
		{"2025-00", false},
		{"2025-8", false},
		{"202508", false},
		{"2025-08-01", false},
		{"", false},
	}
	for _, tc := range cases {
		got, err := ParseMonth(tc.in)
		if tc.ok && (err != nil || got != MonthKey(tc.in)) {
			t.Errorf("ParseMonth(%q) = %q, %v; want ok", tc.in, got, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseMonth(%q) should fail", tc.in)
		}
	}
}

func TestDateMonth(t *testing.T) {
	d, err := ParseDate("2025-08-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if d.Month() != "2025-08" {
		t.Errorf("Month() = %q, want 2025-08", d.Month())
	}
	if d.String() != "2025-08-01" {
		t.Errorf("String() = %q, want 2025-08-01", d.String())
	}

	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Error("impossible date should fail to parse")
	}
	if _, err := ParseDate("01/02/2025"); err == nil {
		t.Error("wrong layout should fail to parse")
	}
}

func TestValidateRegistration(t *testing.T) {
	cases := []struct {
		name     string
		email    string
		userName string
		password string
		wantErr  error
	}{
		{"valid", "a@b.com", "Alice", "secret1", nil},
		{"bad email", "not-an-email", "Alice", "secret1", ErrInvalidEmail},
		{"empty name", "a@b.com", "  ", "secret1", ErrEmptyName},
		{"short password", "a@b.com", "Alice", "12345", ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRegistration(tc.email, tc.userName, tc.password)
			if err != tc.wantErr {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Amount: Money{Cents: 100},
		Date:   NewDate(2025, 8, 1),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid expense rejected: %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = Money{}
	if err := zeroAmount.Validate(); err != ErrInvalidAmount {
		t.Errorf("zero amount: got %v, want ErrInvalidAmount", err)
	}

	noDate := valid
	noDate.Date = Date{}
	if err := noDate.Validate(); err != ErrInvalidDate {
		t.Errorf("zero date: got %v, want ErrInvalidDate", err)
	}

	longNote := valid
	longNote.Note = string(make([]byte, 256))
	if err := longNote.Validate(); err != ErrNoteTooLong {
		t.Errorf("long note: got %v, want ErrNoteTooLong", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{Month: "2025-08", Amount: Money{Cents: 50000}}
	if err := b.Validate(); err != nil {
		t.Errorf("valid budget rejected: %v", err)
	}
	b.Month = "2025-8"
	if err := b.Validate(); err != ErrInvalidMonth {
		t.Errorf("bad month: got %v, want ErrInvalidMonth", err)
	}
	b.Month = "2025-08"
	b.Amount = Money{Cents: -1}
	if err := b.Validate(); err != ErrInvalidAmount {
		t.Errorf("negative amount: got %v, want ErrInvalidAmount", err)
	}
}

func TestNewDate(t *testing.T) {
	d := NewDate(2025, 8, 31)
	if d.Year() != 2025 || d.Time.Month() != time.August || d.Day() != 31 {
		t.Errorf("NewDate produced %v", d.Time)
	}
}
