package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/pickquality"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/replay"
)

func testDraft(t *testing.T) *replay.Draft {
	t.Helper()
	return &replay.Draft{
		Cards:  testCards(t),
		Basics: []int{3},
		InitialState: [][]replay.Pack{
			{{Cards: []int{0, 1}}},
			{{Cards: []int{2, 4}, Steps: []draft.Step{
				{Action: draft.ActionPick, Amount: 1},
				{Action: draft.ActionPass, Amount: 1},
				{Action: draft.ActionPick, Amount: 1},
			}}},
		},
		Seats: []replay.Seat{
			{Name: "Alice", PickOrder: []int{0, 4}},
			{Name: "Bot", Bot: true, PickOrder: []int{2, 1}},
		},
	}
}

func TestDraftSaveAndGet(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t))
	ctx := context.Background()
	d := testDraft(t)

	id, err := repo.Save(ctx, d)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "generated id should be a UUID")

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)

	d.ID = id
	assert.Equal(t, d, got)

	// The stored draft replays like the original.
	want, err := replay.Replay(d, 0, replay.AtEnd())
	require.NoError(t, err)
	end, err := replay.Replay(got, 0, replay.AtEnd())
	require.NoError(t, err)
	assert.Equal(t, want.Picked, end.Picked)
}

func TestDraftSaveKeepsID(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	d := testDraft(t)
	d.ID = "league-1"
	id, err := repo.Save(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "league-1", id)

	// Saving again replaces the stored draft and its cards.
	d.Seats[0].Name = "Alicia"
	d.Cards = d.Cards[:4]
	_, err = repo.Save(ctx, d)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "league-1")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.Seats[0].Name)
	assert.Len(t, got.Cards, 4)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "league-1", list[0].ID)
	assert.Equal(t, 2, list[0].NumSeats)
	assert.Equal(t, 1, list[0].NumPacks)
	assert.False(t, list[0].CreatedAt.IsZero())

	// The draft's cards are also visible as a catalog.
	catalogs, err := NewCatalogRepository(db).Catalogs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []CatalogSummary{{Name: "league-1", Cards: 4}}, catalogs)
}

func TestDraftSaveInvalid(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t))

	d := testDraft(t)
	d.Seats = d.Seats[:1]
	_, err := repo.Save(context.Background(), d)
	assert.ErrorIs(t, err, replay.ErrInvalidDraft)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDraftGetMissing(t *testing.T) {
	repo := NewDraftRepository(openTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPickGrades(t *testing.T) {
	db := openTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	id, err := repo.Save(ctx, testDraft(t))
	require.NoError(t, err)

	grades := []*pickquality.PickQuality{
		{
			PickNumber: 0, Card: 1, Name: "Counterspell", Grade: "A", Rank: 2, PackSize: 2,
			BestScore: 3.5, PickedScore: 2.25, BotPick: 0,
			Alternatives: []pickquality.Alternative{{Card: 0, Name: "Serra Angel", Score: 3.5, Rank: 1}},
		},
		{
			PickNumber: 1, Card: 4, Name: "Sunken Hollow", Grade: "A+", Rank: 1, PackSize: 1,
			BestScore: 1, PickedScore: 1, BotPick: 4,
			Alternatives: []pickquality.Alternative{},
		},
	}
	require.NoError(t, repo.SaveGrades(ctx, id, 0, grades))

	got, err := repo.Grades(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, grades, got)

	// Saving again replaces the seat's grades.
	require.NoError(t, repo.SaveGrades(ctx, id, 0, grades[:1]))
	got, err = repo.Grades(ctx, id, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	other, err := repo.Grades(ctx, id, 1)
	require.NoError(t, err)
	assert.Empty(t, other)

	// Deleting the draft removes its grades and cards.
	require.NoError(t, repo.Delete(ctx, id))
	got, err = repo.Grades(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NewCatalogRepository(db).LoadCatalog(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
