package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library_circulation/db"
)

func givenCatalog(t *testing.T, f *fixture) {
	t.Helper()
	f.givenItem(t, "0385504209", "The Da Vinci Code", "Dan Brown")
	f.givenItem(t, "0060853980", "Good Omens", "Terry Pratchett", "Neil Gaiman")
	f.givenItem(t, "0-06-093546-4", "To Kill a Mockingbird", "Harper Lee")
	f.givenItem(t, "380795272", "American Gods", "Neil Gaiman")
}

func Test_Search_EmptyTermListsCatalogByTitle(t *testing.T) {
	// arrange
	f := newFixture(t)
	givenCatalog(t, f)

	// act
	items, err := f.repo.Search(context.Background(), "")

	// assert
	require.NoError(t, err)
	require.Len(t, items, 4)
	titles := []string{items[0].Title, items[1].Title, items[2].Title, items[3].Title}
	assert.Equal(t, []string{"American Gods", "Good Omens", "The Da Vinci Code", "To Kill a Mockingbird"}, titles)

	assert.Equal(t, "0380795272", items[0].Key)
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", items[1].Contributors)
	for _, it := range items {
		assert.Equal(t, db.Available, it.Availability)
	}
}

func Test_Search_Matching(t *testing.T) {
	f := newFixture(t)
	givenCatalog(t, f)

	testCases := []struct {
		name string
		term string
		want []string
	}{
		{name: "title, case-insensitive", term: "GOOD", want: []string{"0060853980"}},
		{name: "contributor name", term: "gaiman", want: []string{"0380795272", "0060853980"}},
		{name: "key substring", term: "0609354", want: []string{"0060935464"}},
		{name: "key with separators", term: "0-06-093546", want: []string{"0060935464"}},
		{name: "no match", term: "tolkien", want: nil},
		{name: "wildcards are literal", term: "%", want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := f.repo.Search(context.Background(), tc.term)
			require.NoError(t, err)

			var keys []string
			for _, it := range items {
				keys = append(keys, it.Key)
			}
			assert.Equal(t, tc.want, keys)
		})
	}
}

func Test_Search_AvailabilityFollowsActiveLoan(t *testing.T) {
	// arrange
	f := newFixture(t)
	givenCatalog(t, f)
	card := f.givenBorrower(t, "Ann Reader", "111-11-1111")
	ctx := context.Background()

	// act + assert: OUT right after checkout
	res, err := f.repo.Checkout(ctx, "0060853980", card)
	require.NoError(t, err)

	items, err := f.repo.Search(ctx, "Good Omens")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, db.CheckedOut, items[0].Availability)

	holder, out, err := f.repo.CurrentBorrowerOf(ctx, "0-06-085398-0")
	require.NoError(t, err)
	assert.True(t, out)
	assert.Equal(t, card, holder)

	// act + assert: IN right after checkin
	_, err = f.repo.Checkin(ctx, res.LoanID)
	require.NoError(t, err)

	items, err = f.repo.Search(ctx, "Good Omens")
	require.NoError(t, err)
	assert.Equal(t, db.Available, items[0].Availability)

	_, out, err = f.repo.CurrentBorrowerOf(ctx, "0060853980")
	require.NoError(t, err)
	assert.False(t, out)
}

func Test_ListAvailableItems_ExcludesItemsOut(t *testing.T) {
	f := newFixture(t)
	givenCatalog(t, f)
	card := f.givenBorrower(t, "Ann Reader", "111-11-1111")
	_, err := f.repo.Checkout(context.Background(), "0385504209", card)
	require.NoError(t, err)

	items, err := f.repo.ListAvailableItems(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, it := range items {
		assert.NotEqual(t, "0385504209", it.Key)
	}
}

func Test_ListActiveLoans_FiltersAndOrdersByDueDate(t *testing.T) {
	// arrange
	f := newFixture(t)
	givenCatalog(t, f)
	ann := f.givenBorrower(t, "Ann Reader", "111-11-1111")
	bob := f.givenBorrower(t, "Bob Writer", "222-22-2222")
	f.givenLoan(t, "0385504209", ann, -5, 9, nil)
	f.givenLoan(t, "0060853980", ann, -10, 4, nil)
	f.givenLoan(t, "0060935464", bob, -1, 13, nil)
	f.givenLoan(t, "0380795272", bob, -30, -16, ptr(-20))

	// act
	all, err := f.repo.ListActiveLoans(context.Background(), "")
	require.NoError(t, err)
	byName, err := f.repo.ListActiveLoans(context.Background(), "ann")
	require.NoError(t, err)
	byCard, err := f.repo.ListActiveLoans(context.Background(), bob)
	require.NoError(t, err)
	byKey, err := f.repo.ListActiveLoans(context.Background(), "385504")
	require.NoError(t, err)

	// assert
	require.Len(t, all, 3)
	assert.Equal(t, "0060853980", all[0].ItemKey)
	assert.Equal(t, "0385504209", all[1].ItemKey)
	assert.Equal(t, "0060935464", all[2].ItemKey)
	assert.Equal(t, "Ann Reader", all[0].BorrowerName)
	assert.Equal(t, "Good Omens", all[0].Title)
	assert.Equal(t, f.day(4), all[0].DueDate)

	assert.Len(t, byName, 2)
	require.Len(t, byCard, 1)
	assert.Equal(t, "0060935464", byCard[0].ItemKey)
	require.Len(t, byKey, 1)
	assert.Equal(t, ann, byKey[0].CardID)
}

func Test_AddItem_Failures(t *testing.T) {
	f := newFixture(t)
	f.givenItem(t, "0385504209", "The Da Vinci Code", "Dan Brown")
	ctx := context.Background()

	_, err := f.repo.AddItem(ctx, db.AddItemInput{Key: "0-385-50420-9", Title: "Copy"})
	requireKind(t, db.KindIntegrity, err)

	_, err = f.repo.AddItem(ctx, db.AddItemInput{Key: "12345678901", Title: "Too long"})
	requireKind(t, db.KindValidation, err)

	_, err = f.repo.AddItem(ctx, db.AddItemInput{Key: "1", Title: "  "})
	requireKind(t, db.KindValidation, err)
}

func Test_AddItem_ReusesContributorsByName(t *testing.T) {
	f := newFixture(t)
	f.givenItem(t, "0060853980", "Good Omens", "Terry Pratchett", "Neil Gaiman")
	f.givenItem(t, "0380795272", "American Gods", "Neil Gaiman", "Neil Gaiman")

	var n int64
	require.NoError(t, f.gdb.Table("contributors").Count(&n).Error)
	assert.Equal(t, int64(2), n)

	it, err := f.repo.FindItem(context.Background(), "380795272")
	require.NoError(t, err)
	assert.Equal(t, "American Gods", it.Title)
}
