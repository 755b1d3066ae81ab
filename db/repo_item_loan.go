package db

import (
	"context"
	"errors"
	"strings"

	"library_circulation/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutResult struct {
	LoanID  uint   `json:"loanId"`
	ItemKey string `json:"itemKey"`
	CardID  string `json:"cardId"`
	DueDate string `json:"dueDate"`
	Message string `json:"message"`
}

type CheckinResult struct {
	LoanID     uint   `json:"loanId"`
	ReturnDate string `json:"returnDate"`
	Message    string `json:"message"`
}

// checkoutGuard blocks a checkout by returning a Failure. Guards run in order
// inside the checkout transaction; the first failure wins.
type checkoutGuard func(tx *gorm.DB, itemKey, cardID string) error

var checkoutGuards = []checkoutGuard{
	guardItemIn,
	guardNoUnpaidFines,
	guardUnderLoanCap,
}

func guardItemIn(tx *gorm.DB, itemKey, _ string) error {
	var n int64
	if err := tx.Model(&models.Loan{}).
		Where("item_key = ? AND return_date IS NULL", itemKey).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fail(KindPolicy, MsgAlreadyOut)
	}
	return nil
}

func guardNoUnpaidFines(tx *gorm.DB, _, cardID string) error {
	owed, err := unpaidTotal(tx, cardID)
	if err != nil {
		return err
	}
	if owed.IsPositive() {
		return failf(KindPolicy, "borrower has %s in unpaid fines", owed.StringFixed(2))
	}
	return nil
}

func guardUnderLoanCap(tx *gorm.DB, _, cardID string) error {
	n, err := activeLoanCount(tx, cardID)
	if err != nil {
		return err
	}
	if n >= models.MaxOpenLoans {
		return fail(KindPolicy, MsgLoanCap)
	}
	return nil
}

func activeLoanCount(tx *gorm.DB, cardID string) (int64, error) {
	var n int64
	err := tx.Model(&models.Loan{}).
		Where("card_id = ? AND return_date IS NULL", cardID).
		Count(&n).Error
	return n, err
}

func unpaidTotal(tx *gorm.DB, cardID string) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := tx.Model(&models.Fine{}).
		Joins("JOIN "+models.LoanTable+" ON "+models.LoanTable+".id = "+models.FineTable+".loan_id").
		Where(models.LoanTable+".card_id = ? AND "+models.FineTable+".paid = ?", cardID, false).
		Pluck(models.FineTable+".amount", &amounts).Error; err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...).Round(2), nil
}

// Checkout lends the item to the borrower for the standard loan period.
// 借出：原子操作 = 锁住 borrower/item → 依次校验 → 新建 loan
func (r *Repo) Checkout(ctx context.Context, rawKey, cardID string) (*CheckoutResult, error) {
	key, err := models.NormalizeKey(rawKey)
	if err != nil {
		return nil, fail(KindValidation, MsgInvalidKey)
	}
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, fail(KindValidation, MsgRequiredFields)
	}

	now := r.now()
	var loan models.Loan
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) lock both rows; missing rows are reported after the policy checks
		var b models.Borrower
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("card_id = ?", cardID).Limit(1).Find(&b).Error; err != nil {
			return err
		}
		var it models.Item
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("item_key = ?", key).Limit(1).Find(&it).Error; err != nil {
			return err
		}

		// 2) policy
		for _, guard := range checkoutGuards {
			if err := guard(tx, key, cardID); err != nil {
				return err
			}
		}

		// 3) referential integrity
		if b.CardID == "" || it.Key == "" {
			return fail(KindIntegrity, MsgInvalidReference)
		}

		// 4) 新建 Loan（依赖唯一部分索引防止并发重复借出）
		loan = models.Loan{
			ItemKey:      key,
			CardID:       cardID,
			CheckoutDate: models.Date(now),
			DueDate:      models.DueFrom(now),
		}
		if err := tx.Omit(clause.Associations).Create(&loan).Error; err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return fail(KindPolicy, MsgAlreadyOut)
			case errors.Is(err, gorm.ErrForeignKeyViolated):
				return fail(KindIntegrity, MsgInvalidReference)
			}
			return err
		}
		return nil
	})
	if err != nil {
		err = translate("checkout", err)
		r.logFailure("checkout", err, "item", key, "card", cardID)
		return nil, err
	}

	r.log.Info("checked out", "loan", loan.ID, "item", key, "card", cardID, "due", loan.DueDate)
	return &CheckoutResult{
		LoanID:  loan.ID,
		ItemKey: key,
		CardID:  cardID,
		DueDate: loan.DueDate,
		Message: "Checkout successful, due date is " + loan.DueDate,
	}, nil
}

// Checkin closes an active loan as of today. A closed loan never reopens.
// 归还：只更新仍未归还的那一行
func (r *Repo) Checkin(ctx context.Context, loanID uint) (*CheckinResult, error) {
	today := r.today()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND return_date IS NULL", loanID).
			Update("return_date", today)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fail(KindNotFound, MsgInvalidLoan)
		}
		return nil
	})
	if err != nil {
		err = translate("checkin", err)
		r.logFailure("checkin", err, "loan", loanID)
		return nil, err
	}

	r.log.Info("checked in", "loan", loanID, "date", today)
	return &CheckinResult{
		LoanID:     loanID,
		ReturnDate: today,
		Message:    "Loan checked in",
	}, nil
}

type ImportLoanInput struct {
	ItemKey      string
	CardID       string
	CheckoutDate string
	DueDate      string
	ReturnDate   *string
}

// ImportLoan writes a historical loan as given. It is an administrative path:
// only store constraints apply, not the checkout policy.
func (r *Repo) ImportLoan(ctx context.Context, in ImportLoanInput) (*models.Loan, error) {
	key, err := models.NormalizeKey(in.ItemKey)
	if err != nil {
		return nil, fail(KindValidation, MsgInvalidKey)
	}
	dates := []string{in.CheckoutDate, in.DueDate}
	if in.ReturnDate != nil {
		dates = append(dates, *in.ReturnDate)
	}
	for _, d := range dates {
		if !models.ValidDate(d) {
			return nil, failf(KindValidation, "invalid date %q", d)
		}
	}

	loan := &models.Loan{
		ItemKey:      key,
		CardID:       strings.TrimSpace(in.CardID),
		CheckoutDate: in.CheckoutDate,
		DueDate:      in.DueDate,
		ReturnDate:   in.ReturnDate,
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := borrowerExists(tx, loan.CardID)
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Item{}).Where("item_key = ?", key).Count(&n).Error; err != nil {
			return err
		}
		if !ok || n == 0 {
			return fail(KindIntegrity, MsgInvalidReference)
		}
		if loan.Active() {
			if err := guardItemIn(tx, key, loan.CardID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(loan).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fail(KindPolicy, MsgAlreadyOut)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, translate("import loan", err)
	}
	return loan, nil
}

func (r *Repo) logFailure(op string, err error, args ...any) {
	args = append(args, "op", op, "kind", KindOf(err).String(), "error", err)
	if KindOf(err) == KindStoreUnavailable {
		r.log.Warn("operation failed", args...)
		return
	}
	r.log.Debug("operation refused", args...)
}
