package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"library_circulation/models"

	"gorm.io/gorm"
)

// Repo is the circulation engine. It keeps no state between calls: every
// operation runs against the store and returns.
type Repo struct {
	DB  *gorm.DB
	now func() time.Time
	log *slog.Logger
}

type Option func(*Repo)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option { return func(r *Repo) { r.now = now } }

func WithLogger(l *slog.Logger) Option { return func(r *Repo) { r.log = l } }

func NewRepo(db *gorm.DB, opts ...Option) *Repo {
	r := &Repo{DB: db, now: time.Now, log: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Repo) today() string { return models.Date(r.now()) }

// Borrowers

func (r *Repo) FindBorrower(ctx context.Context, cardID string) (*models.Borrower, error) {
	var b models.Borrower
	if err := r.DB.WithContext(ctx).First(&b, "card_id = ?", strings.TrimSpace(cardID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(KindNotFound, MsgUnknownBorrower)
		}
		return nil, translate("find borrower", err)
	}
	return &b, nil
}

func borrowerExists(tx *gorm.DB, cardID string) (bool, error) {
	var n int64
	err := tx.Model(&models.Borrower{}).Where("card_id = ?", cardID).Count(&n).Error
	return n > 0, err
}

// Loans

func (r *Repo) FindLoan(ctx context.Context, id uint) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(KindNotFound, MsgUnknownLoan)
		}
		return nil, translate("find loan", err)
	}
	return &l, nil
}

// likePattern escapes LIKE wildcards in s and wraps it for substring matching.
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
