package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-snack-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
)

// Store reads and writes the inventory row (id = 1). The row may not
// exist yet; reads then report found=false and zero counts.
type Store struct{ DB postgres.DBTX }

// WithTx returns a Store bound to tx.
func (s *Store) WithTx(tx pgx.Tx) *Store { return &Store{DB: tx} }

func (s *Store) Get(ctx context.Context) (rec Record, found bool, err error) {
	return s.get(ctx, `SELECT maxi_vasos, bolsas FROM inventory WHERE id = 1`)
}

// GetForShare is used by order submission so the stock check sees a
// stable row until commit.
func (s *Store) GetForShare(ctx context.Context) (Record, bool, error) {
	return s.get(ctx, `SELECT maxi_vasos, bolsas FROM inventory WHERE id = 1 FOR SHARE`)
}

// GetForUpdate locks the row for a read-modify-write within a tx.
func (s *Store) GetForUpdate(ctx context.Context) (Record, bool, error) {
	return s.get(ctx, `SELECT maxi_vasos, bolsas FROM inventory WHERE id = 1 FOR UPDATE`)
}

func (s *Store) get(ctx context.Context, q string) (Record, bool, error) {
	var r Record
	err := s.DB.QueryRow(ctx, q).Scan(&r.MaxiVasos, &r.Bolsas)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read inventory: %w", err)
	}
	return r, true, nil
}

// Save upserts the row; the first admin write creates it.
func (s *Store) Save(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := s.DB.Exec(ctx, `
		INSERT INTO inventory (id, maxi_vasos, bolsas, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET maxi_vasos = EXCLUDED.maxi_vasos, bolsas = EXCLUDED.bolsas, updated_at = now()
	`, r.MaxiVasos, r.Bolsas)
	if err != nil {
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}

// Update overwrites an existing row and never creates one.
func (s *Store) Update(ctx context.Context, r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	ct, err := s.DB.Exec(ctx, `UPDATE inventory SET maxi_vasos = $1, bolsas = $2, updated_at = now() WHERE id = 1`,
		r.MaxiVasos, r.Bolsas)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("update inventory: row missing")
	}
	return nil
}
