// models/fine.go
package models

import "github.com/shopspring/decimal"

const FineTable = "fines"

// DailyRate is charged per whole day past the due date.
var DailyRate = decimal.RequireFromString("0.25")

type Fine struct {
	LoanID uint            `gorm:"primaryKey;autoIncrement:false" json:"loanId"`
	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Paid   bool            `gorm:"not null;default:false" json:"paid"`

	Loan *Loan `gorm:"foreignKey:LoanID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Fine) TableName() string { return FineTable }

// FineFor returns the charge for the given number of overdue days, or zero.
func FineFor(overdueDays int) decimal.Decimal {
	if overdueDays <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(overdueDays)).Mul(DailyRate).Round(2)
}
