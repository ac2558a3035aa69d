package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkax "github.com/ariefcatur/go-snack-orders/internal/kafka"
	"github.com/ariefcatur/go-snack-orders/internal/inventory"
	"github.com/ariefcatur/go-snack-orders/internal/postgres"
	"github.com/ariefcatur/go-snack-orders/internal/redisx"
	"github.com/ariefcatur/go-snack-orders/internal/referral"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service runs the order lifecycle. Every operation that writes more than
// one row does so in a single transaction.
type Service struct {
	DB        postgres.TxBeginner
	Orders    *Repo
	Inventory *inventory.Store
	Referrals *referral.Repo

	// Optional collaborators; nil disables them.
	Redis         redis.Cmdable
	Stock         *inventory.Reader
	Created       Publisher
	StatusChanged Publisher
	Deleted       Publisher

	Name     string
	Location *time.Location
	Now      func() time.Time
}

// Transition is the outcome of a status change.
type Transition struct {
	Order            Order
	Plan             Plan
	ReferralCredited bool
}

func (s *Service) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Submit validates, prices and stores a new order. Stock is checked but not
// taken; that happens when the order goes en_camino.
func (s *Service) Submit(ctx context.Context, d Draft) (Receipt, error) {
	code, err := referral.NormalizeCode(d.CodigoReferido)
	if err != nil {
		return Receipt{}, invalid("codigoReferido", "El código de referido debe tener máximo 5 caracteres")
	}
	d.CodigoReferido = code

	if d.ExternalID != "" {
		if o, ok, err := s.findExisting(ctx, d.ExternalID); err != nil {
			return Receipt{}, err
		} else if ok {
			return o.Receipt(true), nil
		}
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Receipt{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inv, _, err := s.Inventory.WithTx(tx).GetForShare(ctx)
	if err != nil {
		return Receipt{}, err
	}
	if err := Validate(d, inv, s.now()); err != nil {
		return Receipt{}, err
	}

	phone := NormalizePhone(d.Telefono)
	subtotal := Subtotal(d.MaxiVasos, d.Bolsas)
	o := Order{
		ID:             uuid.NewString(),
		ExternalID:     d.ExternalID,
		Nombre:         d.Nombre,
		Telefono:       phone,
		MaxiVasos:      d.MaxiVasos,
		Bolsas:         d.Bolsas,
		CodigoReferido: code,
		Estado:         InitialStatus(d.Kind),
		Details:        d.Details,
	}
	if code != "" {
		ref, err := s.Referrals.WithTx(tx).Lookup(ctx, code)
		if err != nil {
			return Receipt{}, err
		}
		if err := referral.CheckSelf(ref, phone); err != nil {
			return Receipt{}, err
		}
		o.Descuento = referral.Discount(subtotal)
		o.CodigoReferidoValidado = true
	}
	o.Total = subtotal - o.Descuento

	if err := s.Orders.WithTx(tx).Insert(ctx, &o); err != nil {
		if errors.Is(err, ErrAlreadyExists) && d.ExternalID != "" {
			_ = tx.Rollback(ctx)
			existing, err := s.Orders.GetByExternalID(ctx, d.ExternalID)
			if err != nil {
				return Receipt{}, err
			}
			return existing.Receipt(true), nil
		}
		return Receipt{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, fmt.Errorf("commit: %w", err)
	}

	slog.Info("order created", "order_id", o.ID, "estado", o.Estado, "total", o.Total, "descuento", o.Descuento)

	if s.Redis != nil {
		if d.ExternalID != "" {
			_ = s.Redis.Set(ctx, fmt.Sprintf(redisx.KeyIdemOrderCreate, d.ExternalID), o.ID, redisx.TTLIdempotency).Err()
		}
		s.cacheStatus(ctx, o.ID, o.Estado)
	}
	s.publish(ctx, s.Created, EventOrderCreated, o.ID, OrderCreatedPayload{Order: o.Document()})

	return o.Receipt(false), nil
}

// findExisting resolves a repeated submission: Redis first, the database
// is the source of truth.
func (s *Service) findExisting(ctx context.Context, externalID string) (Order, bool, error) {
	if s.Redis != nil {
		if id, err := s.Redis.Get(ctx, fmt.Sprintf(redisx.KeyIdemOrderCreate, externalID)).Result(); err == nil && id != "" {
			if o, err := s.Orders.Get(ctx, id); err == nil {
				return o, true, nil
			}
		}
	}
	o, err := s.Orders.GetByExternalID(ctx, externalID)
	if errors.Is(err, ErrNotFound) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	return o, true, nil
}

// UpdateStatus moves an order to status to, adjusting stock and crediting
// the referrer in the same transaction. Nothing is written on error.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (Transition, error) {
	if !to.Valid() {
		return Transition{}, invalid("estado", "Estado inválido")
	}
	if !validID(id) {
		return Transition{}, ErrNotFound
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transition{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orders := s.Orders.WithTx(tx)
	stock := s.Inventory.WithTx(tx)
	refs := s.Referrals.WithTx(tx)

	o, err := orders.GetForUpdate(ctx, id)
	if err != nil {
		return Transition{}, err
	}
	inv, found, err := stock.GetForUpdate(ctx)
	if err != nil {
		return Transition{}, err
	}

	plan := Reconcile(o, to, inv, found)
	if err := orders.SetStatus(ctx, id, to); err != nil {
		return Transition{}, err
	}
	if plan.InventoryChanged {
		if err := stock.Update(ctx, plan.Inventory); err != nil {
			return Transition{}, err
		}
	}

	credited := false
	if plan.CreditReferral {
		_, err := refs.Lookup(ctx, o.CodigoReferido)
		switch {
		case errors.Is(err, referral.ErrNotFound):
			slog.Warn("referral code no longer exists, skipping credit", "order_id", id, "code", o.CodigoReferido)
		case err != nil:
			return Transition{}, err
		default:
			if credited, err = refs.Credit(ctx, o.ID, o.CodigoReferido, plan.Credit); err != nil {
				return Transition{}, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Transition{}, fmt.Errorf("commit: %w", err)
	}
	o.Estado = to

	slog.Info("order status changed", "order_id", id, "from", plan.From, "to", to,
		"inventory_changed", plan.InventoryChanged, "clamped", plan.Clamped, "referral_credited", credited)
	if plan.Clamped {
		slog.Warn("stock clamped at zero", "order_id", id, "maxi_vasos", o.MaxiVasos, "bolsas", o.Bolsas)
	}

	if s.Redis != nil {
		s.cacheStatus(ctx, id, to)
	}
	if plan.InventoryChanged && s.Stock != nil {
		s.Stock.Invalidate(ctx)
	}
	payload := OrderStatusChangedPayload{
		OrderID:          id,
		Nombre:           o.Nombre,
		Telefono:         o.Telefono,
		From:             plan.From,
		To:               to,
		InventoryChanged: plan.InventoryChanged,
		Clamped:          plan.Clamped,
		ReferralCredited: credited,
		CodigoReferido:   o.CodigoReferido,
	}
	if plan.InventoryChanged {
		payload.MaxiVasosLeft, payload.BolsasLeft = plan.Inventory.MaxiVasos, plan.Inventory.Bolsas
	}
	if credited {
		payload.PuntosOtorgados = plan.Credit.Puntos
	}
	s.publish(ctx, s.StatusChanged, EventOrderStatusChanged, id, payload)

	return Transition{Order: o, Plan: plan, ReferralCredited: credited}, nil
}

// Delete removes an order as an admin. Stock is never touched.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, id, "")
}

// CancelByCustomer removes an order placed with the given phone.
func (s *Service) CancelByCustomer(ctx context.Context, id, phone string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	return s.delete(ctx, id, NormalizePhone(phone))
}

func (s *Service) delete(ctx context.Context, id, phone string) error {
	if !validID(id) {
		return ErrNotFound
	}
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Orders.Delete(ctx, id, phone); err != nil {
		return err
	}
	slog.Info("order deleted", "order_id", id, "by_admin", phone == "", "estado", o.Estado)

	if s.Redis != nil {
		_ = s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id)).Err()
	}
	s.publish(ctx, s.Deleted, EventOrderDeleted, id, OrderDeletedPayload{OrderID: id, ByAdmin: phone == "", LastState: o.Estado})
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	if !validID(id) {
		return Order{}, ErrNotFound
	}
	return s.Orders.Get(ctx, id)
}

// StatusOf answers status polls, from the Redis cache when possible.
func (s *Service) StatusOf(ctx context.Context, id string) (Status, error) {
	if s.Redis != nil {
		if b, err := s.Redis.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id)).Bytes(); err == nil {
			var cached statusDoc
			if json.Unmarshal(b, &cached) == nil && cached.Estado.Valid() {
				return cached.Estado, nil
			}
		}
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.Redis != nil {
		s.cacheStatus(ctx, id, o.Estado)
	}
	return o.Estado, nil
}

func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.Orders.ListAll(ctx)
}

func (s *Service) ListByPhone(ctx context.Context, phone string) ([]Order, error) {
	p := NormalizePhone(phone)
	if p == "" {
		return nil, invalid("telefono", "Ingresa un número de teléfono para buscar tus pedidos")
	}
	return s.Orders.ListByPhone(ctx, p)
}

type statusDoc struct {
	Estado Status `json:"estado"`
}

func (s *Service) cacheStatus(ctx context.Context, id string, st Status) {
	b, _ := json.Marshal(statusDoc{Estado: st})
	if err := s.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, id), b, redisx.TTLStatusCache).Err(); err != nil {
		slog.Warn("status cache write failed", "order_id", id, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, p Publisher, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Name,
		TraceID:       TraceID(ctx),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev), kafkax.EventHeaders(eventType, 1)...)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type traceKey struct{}

// WithTraceID tags ctx so published events carry the request id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
