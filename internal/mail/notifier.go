package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkax "github.com/ariefcatur/go-snack-orders/internal/kafka"
	"github.com/ariefcatur/go-snack-orders/internal/orders"
	"github.com/ariefcatur/go-snack-orders/internal/postgres"
	"github.com/ariefcatur/go-snack-orders/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type Repo struct{ DB postgres.DBTX }

// Insert stores a mail document once per event.
func (r *Repo) Insert(ctx context.Context, eventID, to, subject, html string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO mail (id, event_id, recipient, subject, html)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING
	`, uuid.NewString(), eventID, to, subject, html)
	if err != nil {
		return false, fmt.Errorf("insert mail: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Notifier consumes order events and writes mail documents.
type Notifier struct {
	Repo  *Repo
	Redis redis.Cmdable
	To    string
}

// HandleEvent is installed as a kafka consumer handler.
func (n *Notifier) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		slog.Error("undecodable event, skipping", "topic", m.Topic, "offset", m.Offset, "error", err)
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "mailer", env.EventID)
	if n.Redis != nil {
		first, err := redisx.Claim(ctx, n.Redis, dkey, redisx.TTLDedup)
		if err != nil {
			slog.Warn("dedup claim failed, relying on database", "event_id", env.EventID, "error", err)
		} else if !first {
			return nil
		}
	}

	subject, html, ok, err := Render(env)
	if err != nil {
		slog.Error("render mail", "event_id", env.EventID, "type", env.EventType, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	inserted, err := n.Repo.Insert(ctx, env.EventID, n.To, subject, html)
	if err != nil {
		if n.Redis != nil {
			_ = redisx.Release(ctx, n.Redis, dkey)
		}
		return err
	}
	if inserted {
		slog.Info("mail queued", "event_id", env.EventID, "order_id", env.CorrelationID, "subject", subject)
	}
	return nil
}

func decode[T any](env orders.Envelope) (T, error) {
	return kafkax.UnwrapPayload[T](env.Payload)
}
