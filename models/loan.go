// models/loan.go
package models

import "time"

const (
	LoanTable = "loans"

	// DateLayout is the on-disk form of every calendar date.
	DateLayout   = "2006-01-02"
	LoanPeriod   = 14
	MaxOpenLoans = 3
)

type Loan struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemKey      string  `gorm:"size:10;not null;index" json:"itemKey"`
	CardID       string  `gorm:"size:8;not null;index" json:"cardId"`
	CheckoutDate string  `gorm:"size:10;not null" json:"checkoutDate"`
	DueDate      string  `gorm:"size:10;not null;index" json:"dueDate"`
	ReturnDate   *string `gorm:"size:10" json:"returnDate,omitempty"` // nil while the item is out

	Item *Item `gorm:"foreignKey:ItemKey;references:Key;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Loan) TableName() string { return LoanTable }

func (l Loan) Active() bool { return l.ReturnDate == nil }

// Date truncates t to its calendar date in t's own location.
func Date(t time.Time) string { return t.Format(DateLayout) }

// DueFrom returns the due date for a checkout on the given day.
func DueFrom(checkout time.Time) string { return Date(checkout.AddDate(0, 0, LoanPeriod)) }

func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DaysBetween is the whole number of calendar days from a to b (b - a).
func DaysBetween(a, b string) (int, error) {
	ta, err := time.Parse(DateLayout, a)
	if err != nil {
		return 0, err
	}
	tb, err := time.Parse(DateLayout, b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
