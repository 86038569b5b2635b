package notify

import (
	"context"
	"encoding/json"

	"drively-backend/internal/booking"
	"drively-backend/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultChannel is the Redis channel lifecycle events are published on.
const DefaultChannel = "drively:reservations"

// RedisPublisher pushes every lifecycle event as JSON onto a Redis channel
// for downstream consumers (emails, push, ops tooling). Delivery is
// best-effort: a publish failure is logged, never surfaced to the engine.
type RedisPublisher struct {
	Rdb     *redis.Client
	Channel string
}

func (p *RedisPublisher) Notify(ctx context.Context, ev booking.Event) {
	channel := p.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	b, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("Reservation event marshal failed")
		return
	}
	if err := p.Rdb.Publish(ctx, channel, b).Err(); err != nil {
		log.Warn().Err(err).Str("kind", string(ev.Kind)).Uint64("reservation_id", ev.ReservationID).Msg("Reservation event publish failed")
	}
}

// EventStore writes every lifecycle event to the ReservationEvents audit
// table. Best-effort like RedisPublisher.
type EventStore struct {
	DB *gorm.DB
}

func (s *EventStore) Notify(ctx context.Context, ev booking.Event) {
	payload, _ := json.Marshal(ev)
	row := domain.ReservationEvent{
		EventType:     string(ev.Kind),
		ActorID:       ev.ActorID,
		VehicleID:     ev.VehicleID,
		ReservationID: ev.ReservationID,
		EventData:     datatypes.JSON(payload),
	}
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		log.Warn().Err(err).Str("kind", string(ev.Kind)).Uint64("reservation_id", ev.ReservationID).Msg("Reservation event persist failed")
	}
}

// Multi fans one event out to several notifiers in order.
type Multi []booking.Notifier

func (m Multi) Notify(ctx context.Context, ev booking.Event) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}

// Noop drops events; used when Redis is not configured.
type Noop struct{}

func (Noop) Notify(context.Context, booking.Event) {}
