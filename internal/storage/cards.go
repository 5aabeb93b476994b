package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ramonehamilton/mtga-draftbots/internal/mtga/draft"
)

// ErrNotFound is returned when a catalog or draft does not exist.
var ErrNotFound = errors.New("not found")

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CatalogSummary describes one stored catalog.
type CatalogSummary struct {
	Name  string
	Cards int
}

// CatalogRepository stores card catalogs. Each catalog keeps its cards in
// index order so it loads back as a draft.CardList.
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ReplaceCatalog stores cards under catalog, replacing any previous contents.
func (r *CatalogRepository) ReplaceCatalog(ctx context.Context, catalog string, cards draft.CardList) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return replaceCards(ctx, tx, catalog, cards)
	})
}

// LoadCatalog reads a catalog back in index order.
func (r *CatalogRepository) LoadCatalog(ctx context.Context, catalog string) (draft.CardList, error) {
	return loadCards(ctx, r.db.conn, catalog)
}

// Catalogs lists stored catalogs by name.
func (r *CatalogRepository) Catalogs(ctx context.Context) ([]CatalogSummary, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT catalog, COUNT(*)
		FROM cards
		GROUP BY catalog
		ORDER BY catalog
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var catalogs []CatalogSummary
	for rows.Next() {
		var c CatalogSummary
		if err := rows.Scan(&c.Name, &c.Cards); err != nil {
			return nil, fmt.Errorf("failed to scan catalog: %w", err)
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, rows.Err()
}

// DeleteCatalog removes every card in catalog.
func (r *CatalogRepository) DeleteCatalog(ctx context.Context, catalog string) error {
	if _, err := r.db.conn.ExecContext(ctx, `DELETE FROM cards WHERE catalog = ?`, catalog); err != nil {
		return fmt.Errorf("failed to delete catalog: %w", err)
	}
	return nil
}

func replaceCards(ctx context.Context, q querier, catalog string, cards draft.CardList) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM cards WHERE catalog = ?`, catalog); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	query := `
		INSERT INTO cards (catalog, idx, card_id, name, color_identity, mana_cost, cmc, type_line, elo, embedding, produced_mana, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	for i := range cards {
		c := &cards[i]
		cost, err := json.Marshal(c.ManaCost)
		if err != nil {
			return fmt.Errorf("failed to marshal mana cost: %w", err)
		}
		if c.ManaCost == nil {
			cost = []byte("[]")
		}
		_, err = q.ExecContext(ctx, query,
			catalog, i, c.Key(), c.Name, c.ColorIdentity.String(), string(cost),
			c.CMC, c.TypeLine, c.Elo, encodeEmbedding(c.Embedding), c.ProducedMana.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert card %q: %w", c.Name, err)
		}
	}
	return nil
}

func loadCards(ctx context.Context, q querier, catalog string) (draft.CardList, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT idx, card_id, name, color_identity, mana_cost, cmc, type_line, elo, embedding, produced_mana
		FROM cards
		WHERE catalog = ?
		ORDER BY idx
	`, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards draft.CardList
	for rows.Next() {
		var (
			c                  draft.Card
			identity, produced string
			cost               string
			embedding          []byte
		)
		if err := rows.Scan(
			&c.Index, &c.ID, &c.Name, &identity, &cost,
			&c.CMC, &c.TypeLine, &c.Elo, &embedding, &produced,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		if c.Index != len(cards) {
			return nil, fmt.Errorf("catalog %q has a gap at index %d", catalog, len(cards))
		}
		if err := json.Unmarshal([]byte(cost), &c.ManaCost); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mana cost for %q: %w", c.Name, err)
		}
		if c.Embedding, err = decodeEmbedding(embedding); err != nil {
			return nil, fmt.Errorf("card %q: %w", c.Name, err)
		}
		c.ColorIdentity = draft.ParseColors(identity)
		c.ProducedMana = draft.ParseColors(produced)
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("catalog %q: %w", catalog, ErrNotFound)
	}
	return cards, nil
}

// encodeEmbedding packs an embedding as little-endian float64 values.
func encodeEmbedding(v []float64) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(f))
	}
	return buf
}

func decodeEmbedding(buf []byte) ([]float64, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("embedding blob has %d bytes, not a multiple of 8", len(buf))
	}
	v := make([]float64, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return v, nil
}
