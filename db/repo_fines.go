// db/repo_fines.go
package db

import (
	"context"
	"strings"

	"library_circulation/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FineLine struct {
	LoanID   uint            `json:"loanId"`
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Paid     bool            `json:"paid"`
	StillOut bool            `json:"stillOut"`
}

type FineSummary struct {
	CardID string          `json:"cardId"`
	Total  decimal.Decimal `json:"total"`
	Lines  []FineLine      `json:"lines"`
}

// AccrueFines recomputes the fine of every overdue loan as of today and
// returns how many fine rows it inserted or raised. Paid fines are frozen.
func (r *Repo) AccrueFines(ctx context.Context) (int, error) {
	today := r.today()
	written := 0

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		overdue := "COALESCE(return_date, ?) > due_date"

		var loans []models.Loan
		if err := tx.Where(overdue, today).Order("id").Find(&loans).Error; err != nil {
			return err
		}
		if len(loans) == 0 {
			return nil
		}

		var fines []models.Fine
		if err := tx.Where("loan_id IN (?)",
			tx.Model(&models.Loan{}).Select("id").Where(overdue, today),
		).Find(&fines).Error; err != nil {
			return err
		}
		existing := make(map[uint]models.Fine, len(fines))
		for _, f := range fines {
			existing[f.LoanID] = f
		}

		for _, l := range loans {
			until := today
			if l.ReturnDate != nil {
				until = *l.ReturnDate
			}
			days, err := models.DaysBetween(l.DueDate, until)
			if err != nil {
				return err
			}
			amount := models.FineFor(days)
			if !amount.IsPositive() {
				continue
			}

			f, ok := existing[l.ID]
			switch {
			case !ok:
				if err := tx.Create(&models.Fine{LoanID: l.ID, Amount: amount}).Error; err != nil {
					return err
				}
			// paid fines are frozen; an unpaid amount only grows
			case f.Paid || !amount.GreaterThan(f.Amount):
				continue
			default:
				if err := tx.Model(&models.Fine{}).
					Where("loan_id = ? AND paid = ?", l.ID, false).
					Update("amount", amount).Error; err != nil {
					return err
				}
			}
			written++
		}
		return nil
	})
	if err != nil {
		err = translate("accrue fines", err)
		r.logFailure("accrue fines", err)
		return 0, err
	}

	r.log.Info("fines accrued", "date", today, "written", written)
	return written, nil
}

// FineSummary totals a borrower's unpaid fines, or all fines with includePaid.
func (r *Repo) FineSummary(ctx context.Context, cardID string, includePaid bool) (*FineSummary, error) {
	cardID = strings.TrimSpace(cardID)
	db := r.DB.WithContext(ctx)

	ok, err := borrowerExists(db, cardID)
	if err != nil {
		return nil, translate("fine summary", err)
	}
	if !ok {
		return nil, fail(KindNotFound, MsgUnknownBorrower)
	}

	q := db.Table(models.FineTable+" f").
		Select("f.loan_id, i.title, f.amount, f.paid, l.return_date").
		Joins("JOIN "+models.LoanTable+" l ON l.id = f.loan_id").
		Joins("JOIN "+models.ItemTable+" i ON i.item_key = l.item_key").
		Where("l.card_id = ?", cardID)
	if !includePaid {
		q = q.Where("f.paid = ?", false)
	}

	var rows []struct {
		LoanID     uint
		Title      string
		Amount     decimal.Decimal
		Paid       bool
		ReturnDate *string
	}
	if err := q.Order("f.loan_id").Scan(&rows).Error; err != nil {
		return nil, translate("fine summary", err)
	}

	sum := &FineSummary{CardID: cardID, Total: decimal.Zero, Lines: make([]FineLine, 0, len(rows))}
	for _, row := range rows {
		sum.Lines = append(sum.Lines, FineLine{
			LoanID:   row.LoanID,
			Title:    row.Title,
			Amount:   row.Amount,
			Paid:     row.Paid,
			StillOut: row.ReturnDate == nil,
		})
		sum.Total = sum.Total.Add(row.Amount)
	}
	sum.Total = sum.Total.Round(2)
	return sum, nil
}

// Settle marks every unpaid fine of the borrower as paid. It is refused while
// the borrower still holds an overdue item.
func (r *Repo) Settle(ctx context.Context, cardID string) (int, error) {
	cardID = strings.TrimSpace(cardID)
	today := r.today()
	var settled int64

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := borrowerExists(tx, cardID)
		if err != nil {
			return err
		}
		if !ok {
			return fail(KindNotFound, MsgUnknownBorrower)
		}

		var n int64
		if err := tx.Model(&models.Loan{}).
			Where("card_id = ? AND return_date IS NULL AND due_date < ?", cardID, today).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fail(KindPolicy, MsgOverdueOut)
		}

		res := tx.Model(&models.Fine{}).
			Where("paid = ? AND loan_id IN (?)", false,
				tx.Model(&models.Loan{}).Select("id").Where("card_id = ?", cardID)).
			Update("paid", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fail(KindNotFound, MsgNoUnpaidFines)
		}
		settled = res.RowsAffected
		return nil
	})
	if err != nil {
		err = translate("settle", err)
		r.logFailure("settle", err, "card", cardID)
		return 0, err
	}

	r.log.Info("fines settled", "card", cardID, "count", settled)
	return int(settled), nil
}
