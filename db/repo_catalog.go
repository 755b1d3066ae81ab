// db/repo_catalog.go
package db

import (
	"context"
	"errors"
	"strings"

	"library_circulation/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	Available  = "IN"
	CheckedOut = "OUT"
)

type ItemSummary struct {
	Key          string `gorm:"column:item_key" json:"key"`
	Title        string `gorm:"column:title" json:"title"`
	Contributors string `gorm:"-" json:"contributors"` // comma-joined, creation order
	Availability string `gorm:"column:availability" json:"availability"`
}

type ActiveLoanRow struct {
	LoanID       uint   `gorm:"column:loan_id" json:"loanId"`
	ItemKey      string `gorm:"column:item_key" json:"itemKey"`
	Title        string `gorm:"column:title" json:"title"`
	CardID       string `gorm:"column:card_id" json:"cardId"`
	BorrowerName string `gorm:"column:borrower_name" json:"borrowerName"`
	CheckoutDate string `gorm:"column:checkout_date" json:"checkoutDate"`
	DueDate      string `gorm:"column:due_date" json:"dueDate"`
}

const availabilityExpr = `CASE WHEN EXISTS (
	SELECT 1 FROM ` + models.LoanTable + ` l
	WHERE l.item_key = i.item_key AND l.return_date IS NULL
) THEN 'OUT' ELSE 'IN' END`

// itemsMatching builds the filtered item query shared by the search variants.
// Title and contributor names match case-insensitively; the key matches with
// separators stripped.
func itemsMatching(db *gorm.DB, term string) *gorm.DB {
	q := db.Table(models.ItemTable + " i")
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	pat := likePattern(strings.ToLower(term))
	keyPat := pat
	if k := strings.NewReplacer("-", "", " ", "").Replace(term); k != "" {
		keyPat = likePattern(strings.ToLower(k))
	}
	return q.Where(`(LOWER(i.title) LIKE ? ESCAPE '\'
		OR LOWER(i.item_key) LIKE ? ESCAPE '\'
		OR EXISTS (
			SELECT 1 FROM `+models.ItemContributorTable+` ic
			JOIN `+models.ContributorTable+` c ON c.id = ic.contributor_id
			WHERE ic.item_key = i.item_key AND LOWER(c.name) LIKE ? ESCAPE '\'
		))`, pat, keyPat, pat)
}

// Search returns every item whose title, contributor name or key contains term,
// ordered by title. An empty term lists the whole catalog.
func (r *Repo) Search(ctx context.Context, term string) ([]ItemSummary, error) {
	return r.search(ctx, term, false)
}

// ListAvailableItems is Search restricted to items with no active loan.
func (r *Repo) ListAvailableItems(ctx context.Context, term string) ([]ItemSummary, error) {
	return r.search(ctx, term, true)
}

func (r *Repo) search(ctx context.Context, term string, onlyAvailable bool) ([]ItemSummary, error) {
	db := r.DB.WithContext(ctx)

	q := itemsMatching(db, term).
		Select("i.item_key, i.title, " + availabilityExpr + " AS availability")
	if onlyAvailable {
		q = q.Where("NOT EXISTS (SELECT 1 FROM " + models.LoanTable + " l WHERE l.item_key = i.item_key AND l.return_date IS NULL)")
	}

	var rows []ItemSummary
	if err := q.Order("i.title ASC, i.item_key ASC").Scan(&rows).Error; err != nil {
		return nil, translate("search", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	names, err := contributorNames(db, itemsMatching(db, term).Select("i.item_key"))
	if err != nil {
		return nil, translate("search", err)
	}
	for i := range rows {
		rows[i].Contributors = strings.Join(names[rows[i].Key], ", ")
	}
	return rows, nil
}

// contributorNames maps item key → contributor names in contributor creation order.
func contributorNames(db *gorm.DB, keys *gorm.DB) (map[string][]string, error) {
	var pairs []struct {
		ItemKey string
		Name    string
	}
	err := db.Table(models.ItemContributorTable+" ic").
		Select("ic.item_key, c.name").
		Joins("JOIN "+models.ContributorTable+" c ON c.id = ic.contributor_id").
		Where("ic.item_key IN (?)", keys).
		Order("ic.item_key, c.id").
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, p := range pairs {
		out[p.ItemKey] = append(out[p.ItemKey], p.Name)
	}
	return out, nil
}

// CurrentBorrowerOf returns the card id holding the item, if it is out.
func (r *Repo) CurrentBorrowerOf(ctx context.Context, rawKey string) (string, bool, error) {
	key, err := models.NormalizeKey(rawKey)
	if err != nil {
		return "", false, fail(KindValidation, MsgInvalidKey)
	}
	var cardIDs []string
	if err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("item_key = ? AND return_date IS NULL", key).
		Limit(1).
		Pluck("card_id", &cardIDs).Error; err != nil {
		return "", false, translate("current borrower", err)
	}
	if len(cardIDs) == 0 {
		return "", false, nil
	}
	return cardIDs[0], true, nil
}

// ListActiveLoans lists open loans whose item key, card id or borrower name
// contains filter, soonest due first.
func (r *Repo) ListActiveLoans(ctx context.Context, filter string) ([]ActiveLoanRow, error) {
	q := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select(`
			l.id          AS loan_id,
			l.item_key,
			i.title,
			l.card_id,
			b.name        AS borrower_name,
			l.checkout_date,
			l.due_date
		`).
		Joins("JOIN "+models.ItemTable+" i ON i.item_key = l.item_key").
		Joins("JOIN "+models.BorrowerTable+" b ON b.card_id = l.card_id").
		Where("l.return_date IS NULL")

	if s := strings.TrimSpace(filter); s != "" {
		pat := likePattern(strings.ToLower(s))
		q = q.Where(`(LOWER(l.item_key) LIKE ? ESCAPE '\'
			OR LOWER(l.card_id) LIKE ? ESCAPE '\'
			OR LOWER(b.name) LIKE ? ESCAPE '\')`, pat, pat, pat)
	}

	var rows []ActiveLoanRow
	if err := q.Order("l.due_date ASC, l.id ASC").Scan(&rows).Error; err != nil {
		return nil, translate("list active loans", err)
	}
	return rows, nil
}

type AddItemInput struct {
	Key          string
	Title        string
	Contributors []string
}

// AddItem registers a catalog item, creating contributors by name as needed.
func (r *Repo) AddItem(ctx context.Context, in AddItemInput) (*models.Item, error) {
	key, err := models.NormalizeKey(in.Key)
	if err != nil {
		return nil, fail(KindValidation, MsgInvalidKey)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fail(KindValidation, MsgRequiredFields)
	}

	it := &models.Item{Key: key, Title: title}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Item{}).Where("item_key = ?", key).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fail(KindIntegrity, MsgDuplicateKey)
		}
		if err := tx.Omit(clause.Associations).Create(it).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fail(KindIntegrity, MsgDuplicateKey)
			}
			return err
		}

		seen := map[string]bool{}
		for _, raw := range in.Contributors {
			name := strings.TrimSpace(raw)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true

			var c models.Contributor
			if err := tx.Where("name = ?", name).Order("id").Limit(1).Find(&c).Error; err != nil {
				return err
			}
			if c.ID == 0 {
				c = models.Contributor{Name: name}
				if err := tx.Create(&c).Error; err != nil {
					return err
				}
			}
			link := models.ItemContributor{ContributorID: c.ID, ItemKey: key}
			if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translate("add item", err)
	}
	r.log.Info("item added", "item", key)
	return it, nil
}

func (r *Repo) FindItem(ctx context.Context, rawKey string) (*models.Item, error) {
	key, err := models.NormalizeKey(rawKey)
	if err != nil {
		return nil, fail(KindValidation, MsgInvalidKey)
	}
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "item_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(KindNotFound, MsgUnknownItem)
		}
		return nil, translate("find item", err)
	}
	return &it, nil
}
