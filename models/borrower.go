// models/borrower.go
package models

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	BorrowerTable     = "borrowers"
	RegistryLockTable = "registry_locks"

	CardPrefix = "ID"
)

type Borrower struct {
	CardID  string `gorm:"primaryKey;size:8" json:"cardId"`
	GovID   string `gorm:"size:64;uniqueIndex;not null" json:"govId"`
	Name    string `gorm:"size:255;not null" json:"name"`
	Address string `gorm:"size:255;not null" json:"address"`
	Phone   string `gorm:"size:64;not null" json:"phone"`

	// loans.card_id → borrowers.card_id; a borrower with loans cannot be deleted
	Loans []Loan `gorm:"foreignKey:CardID;references:CardID;constraint:OnDelete:RESTRICT" json:"-"`
}

// RegistryLock rows exist only to be locked; registration takes the "borrowers"
// row FOR UPDATE so card ids are handed out one at a time.
type RegistryLock struct {
	Name string `gorm:"primaryKey;size:32"`
}

func (Borrower) TableName() string     { return BorrowerTable }
func (RegistryLock) TableName() string { return RegistryLockTable }

// FormatCardID renders n as "ID" + six zero-padded digits.
func FormatCardID(n int64) string { return fmt.Sprintf("%s%06d", CardPrefix, n) }

// ParseCardID returns the numeric suffix of a card id.
func ParseCardID(id string) (int64, bool) {
	if !strings.HasPrefix(id, CardPrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(id[len(CardPrefix):], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
