// db/repo_borrower.go
package db

import (
	"context"
	"errors"
	"strings"

	"library_circulation/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterInput struct {
	Name    string
	GovID   string
	Address string
	Phone   string
}

// Register creates a borrower and assigns the next card id.
func (r *Repo) Register(ctx context.Context, in RegisterInput) (*models.Borrower, error) {
	b := &models.Borrower{
		Name:    strings.TrimSpace(in.Name),
		GovID:   strings.TrimSpace(in.GovID),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
	}
	if b.Name == "" || b.GovID == "" || b.Address == "" || b.Phone == "" {
		return nil, fail(KindValidation, MsgRequiredFields)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// one registration at a time: the card id is max + 1
		var lock models.RegistryLock
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", models.BorrowerTable).Limit(1).Find(&lock).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&models.Borrower{}).Where("gov_id = ?", b.GovID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fail(KindIntegrity, MsgDuplicateGovID)
		}

		next, err := nextCardNumber(tx)
		if err != nil {
			return err
		}
		b.CardID = models.FormatCardID(next)

		if err := tx.Create(b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fail(KindIntegrity, MsgDuplicateGovID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		err = translate("register", err)
		r.logFailure("register", err)
		return nil, err
	}

	r.log.Info("borrower registered", "card", b.CardID)
	return b, nil
}

func nextCardNumber(tx *gorm.DB) (int64, error) {
	var max int64
	err := tx.Model(&models.Borrower{}).
		Select("COALESCE(MAX(CAST(SUBSTR(card_id, 3) AS INTEGER)), 0)").
		Scan(&max).Error
	return max + 1, err
}
