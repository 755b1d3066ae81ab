// models/item.go
package models

import (
	"errors"
	"strings"
)

const (
	ItemTable            = "items"
	ContributorTable     = "contributors"
	ItemContributorTable = "item_contributors"

	KeyWidth = 10
)

var ErrInvalidKey = errors.New("catalog key must be 1 to 10 characters")

type Item struct {
	Key   string `gorm:"column:item_key;primaryKey;size:10" json:"key"`
	Title string `gorm:"size:255;not null" json:"title"`
}

type Contributor struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:255;not null;index" json:"name"`
}

// ItemContributor is the junction between items and their authors.
type ItemContributor struct {
	ContributorID uint   `gorm:"primaryKey;autoIncrement:false" json:"contributorId"`
	ItemKey       string `gorm:"primaryKey;size:10" json:"itemKey"`

	Contributor *Contributor `gorm:"foreignKey:ContributorID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Item        *Item        `gorm:"foreignKey:ItemKey;references:Key;constraint:OnDelete:CASCADE" json:"-"`
}

func (Item) TableName() string            { return ItemTable }
func (Contributor) TableName() string     { return ContributorTable }
func (ItemContributor) TableName() string { return ItemContributorTable }

// NormalizeKey strips separators and left-pads with zeros to the canonical width.
func NormalizeKey(raw string) (string, error) {
	k := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(raw))
	if k == "" || len(k) > KeyWidth {
		return "", ErrInvalidKey
	}
	return strings.Repeat("0", KeyWidth-len(k)) + k, nil
}
