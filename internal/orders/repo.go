package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-snack-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repo struct{ DB postgres.DBTX }

func (r *Repo) WithTx(tx pgx.Tx) *Repo { return &Repo{DB: tx} }

const orderColumns = `id::text, COALESCE(external_id, ''), nombre, telefono, tipo_orden,
	ubicacion, hora_entrega, imagen_url, fecha_entrega, comentarios,
	maxi_vasos, bolsas, codigo_referido, codigo_referido_validado, descuento, total, estado, fecha`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                                  Order
		kind, estado                       string
		ubic, hora, img, fechaEnt, coments string
	)
	err := row.Scan(&o.ID, &o.ExternalID, &o.Nombre, &o.Telefono, &kind,
		&ubic, &hora, &img, &fechaEnt, &coments,
		&o.MaxiVasos, &o.Bolsas, &o.CodigoReferido, &o.CodigoReferidoValidado, &o.Descuento, &o.Total, &estado, &o.Fecha)
	if err != nil {
		return Order{}, err
	}
	o.Estado = Status(estado)
	o.Kind = Kind(kind)
	if o.Kind == KindScheduled {
		o.Scheduled = &Scheduled{FechaEntrega: fechaEnt, Comentarios: coments}
	} else {
		o.Immediate = &Immediate{Ubicacion: ubic, HoraEntrega: hora, ImagenURL: img}
	}
	return o, nil
}

// Insert stores a new order. Fecha is assigned by the database.
func (r *Repo) Insert(ctx context.Context, o *Order) error {
	var ubic, hora, img, fechaEnt, coments string
	if im := o.Immediate; im != nil {
		ubic, hora, img = im.Ubicacion, im.HoraEntrega, im.ImagenURL
	}
	if sc := o.Scheduled; sc != nil {
		fechaEnt, coments = sc.FechaEntrega, sc.Comentarios
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders (id, external_id, nombre, telefono, tipo_orden,
			ubicacion, hora_entrega, imagen_url, fecha_entrega, comentarios,
			maxi_vasos, bolsas, codigo_referido, codigo_referido_validado, descuento, total, estado, fecha)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now())
		RETURNING fecha`,
		o.ID, nullIfEmpty(o.ExternalID), o.Nombre, o.Telefono, string(o.Kind),
		ubic, hora, img, fechaEnt, coments,
		o.MaxiVasos, o.Bolsas, o.CodigoReferido, o.CodigoReferidoValidado, o.Descuento, o.Total, string(o.Estado),
	).Scan(&o.Fecha)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate locks the order row until the surrounding tx ends.
func (r *Repo) GetForUpdate(ctx context.Context, id string) (Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE external_id = $1`, externalID)
}

func (r *Repo) getOne(ctx context.Context, q string, arg string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListAll returns every order, newest first.
func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY fecha DESC`)
}

func (r *Repo) ListByPhone(ctx context.Context, phone string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE telefono = $1 ORDER BY fecha DESC`, phone)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repo) SetStatus(ctx context.Context, id string, s Status) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET estado = $2 WHERE id = $1`, id, string(s))
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the order. A non-empty phone restricts the delete to
// orders placed with that phone.
func (r *Repo) Delete(ctx context.Context, id, phone string) error {
	var (
		ct  pgconn.CommandTag
		err error
	)
	if phone == "" {
		ct, err = r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	} else {
		ct, err = r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND telefono = $2`, id, phone)
	}
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
