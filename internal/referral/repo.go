package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-snack-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type Repo struct{ DB postgres.DBTX }

func (r *Repo) WithTx(tx pgx.Tx) *Repo { return &Repo{DB: tx} }

// Lookup finds a referrer by its normalized code.
func (r *Repo) Lookup(ctx context.Context, code string) (Referrer, error) {
	var ref Referrer
	err := r.DB.QueryRow(ctx, `
		SELECT num_referido, telefono, puntos_total, vasos_comprados, bolsas_compradas
		FROM refered WHERE num_referido = $1`, code).
		Scan(&ref.NumReferido, &ref.Telefono, &ref.PuntosTotal, &ref.VasosComprados, &ref.BolsasCompradas)
	if errors.Is(err, pgx.ErrNoRows) {
		return Referrer{}, ErrNotFound
	}
	if err != nil {
		return Referrer{}, fmt.Errorf("lookup referral %s: %w", code, err)
	}
	return ref, nil
}

// Credit applies c to the referrer at most once per order. The ledger row
// keyed by orderID is the guard; credited is false when it already existed.
func (r *Repo) Credit(ctx context.Context, orderID, code string, c Credit) (credited bool, err error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO referral_credits (order_id, num_referido, puntos, vasos, bolsas)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING
	`, orderID, code, c.Puntos, c.MaxiVasos, c.Bolsas)
	if err != nil {
		return false, fmt.Errorf("record referral credit: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	ct, err = r.DB.Exec(ctx, `
		UPDATE refered
		SET puntos_total = puntos_total + $2,
		    vasos_comprados = vasos_comprados + $3,
		    bolsas_compradas = bolsas_compradas + $4
		WHERE num_referido = $1
	`, code, c.Puntos, c.MaxiVasos, c.Bolsas)
	if err != nil {
		return false, fmt.Errorf("credit referrer %s: %w", code, err)
	}
	if ct.RowsAffected() != 1 {
		return false, ErrNotFound
	}
	return true, nil
}
