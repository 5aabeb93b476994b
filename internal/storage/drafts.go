package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/pickquality"
	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft/replay"
)

// DraftSummary describes one stored draft.
type DraftSummary struct {
	ID        string
	NumSeats  int
	NumPacks  int
	CreatedAt time.Time
}

// draftData is the JSON payload of a stored draft. Cards live in the
// draft's catalog.
type draftData struct {
	Basics       []int           `json:"basics"`
	InitialState [][]replay.Pack `json:"initial_state"`
	Seats        []replay.Seat   `json:"seats"`
}

// DraftRepository stores recorded drafts and their pick grades.
type DraftRepository struct {
	db *DB
}

// NewDraftRepository creates a new draft repository.
func NewDraftRepository(db *DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save stores a draft and its cards, replacing a draft with the same ID.
// Drafts without an ID get a new UUID. It returns the stored ID.
func (r *DraftRepository) Save(ctx context.Context, d *replay.Draft) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}

	data, err := json.Marshal(draftData{
		Basics:       d.Basics,
		InitialState: d.InitialState,
		Seats:        d.Seats,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal draft: %w", err)
	}

	err = r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := replaceCards(ctx, tx, id, d.Cards); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO drafts (id, catalog, num_seats, num_packs, data, created_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				catalog = excluded.catalog,
				num_seats = excluded.num_seats,
				num_packs = excluded.num_packs,
				data = excluded.data
		`, id, id, d.NumSeats(), len(d.InitialState[0]), string(data))
		if err != nil {
			return fmt.Errorf("failed to upsert draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get loads a draft with its cards.
func (r *DraftRepository) Get(ctx context.Context, id string) (*replay.Draft, error) {
	var catalog, data string
	err := r.db.conn.QueryRowContext(ctx, `SELECT catalog, data FROM drafts WHERE id = ?`, id).Scan(&catalog, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var payload draftData
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	cards, err := loadCards(ctx, r.db.conn, catalog)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return &replay.Draft{
		ID:           id,
		Cards:        cards,
		Basics:       payload.Basics,
		InitialState: payload.InitialState,
		Seats:        payload.Seats,
	}, nil
}

// List returns every stored draft, newest first.
func (r *DraftRepository) List(ctx context.Context) ([]DraftSummary, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT id, num_seats, num_packs, created_at
		FROM drafts
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []DraftSummary
	for rows.Next() {
		var s DraftSummary
		if err := rows.Scan(&s.ID, &s.NumSeats, &s.NumPacks, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, s)
	}
	return drafts, rows.Err()
}

// Delete removes a draft, its grades and its cards.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("draft %q: %w", id, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE catalog = ?`, id); err != nil {
			return fmt.Errorf("failed to delete draft cards: %w", err)
		}
		return nil
	})
}

// SaveGrades replaces the pick grades of one seat.
func (r *DraftRepository) SaveGrades(ctx context.Context, draftID string, seat int, grades []*pickquality.PickQuality) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pick_grades WHERE draft_id = ? AND seat = ?`, draftID, seat); err != nil {
			return fmt.Errorf("failed to clear grades: %w", err)
		}

		query := `
			INSERT INTO pick_grades (draft_id, seat, pick_number, card, card_name, grade, pick_rank, pack_size,
				best_score, picked_score, bot_pick, alternatives_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		for _, g := range grades {
			alternatives, err := pickquality.SerializeAlternatives(g.Alternatives)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, query,
				draftID, seat, g.PickNumber, g.Card, g.Name, g.Grade, g.Rank, g.PackSize,
				g.BestScore, g.PickedScore, g.BotPick, alternatives,
			)
			if err != nil {
				return fmt.Errorf("failed to insert grade for pick %d: %w", g.PickNumber, err)
			}
		}
		return nil
	})
}

// Grades returns the stored pick grades of one seat in pick order.
func (r *DraftRepository) Grades(ctx context.Context, draftID string, seat int) ([]*pickquality.PickQuality, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT pick_number, card, card_name, grade, pick_rank, pack_size, best_score, picked_score, bot_pick, alternatives_json
		FROM pick_grades
		WHERE draft_id = ? AND seat = ?
		ORDER BY pick_number
	`, draftID, seat)
	if err != nil {
		return nil, fmt.Errorf("failed to get grades: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var grades []*pickquality.PickQuality
	for rows.Next() {
		var g pickquality.PickQuality
		var alternatives string
		if err := rows.Scan(
			&g.PickNumber, &g.Card, &g.Name, &g.Grade, &g.Rank, &g.PackSize,
			&g.BestScore, &g.PickedScore, &g.BotPick, &alternatives,
		); err != nil {
			return nil, fmt.Errorf("failed to scan grade: %w", err)
		}
		if g.Alternatives, err = pickquality.DeserializeAlternatives(alternatives); err != nil {
			return nil, err
		}
		grades = append(grades, &g)
	}
	return grades, rows.Err()
}
