package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
)

// NATSPublisher publishes each event on "<prefix>.<event type>",
// e.g. hotel.booking.created.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("hotel-booking"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func Subject(prefix string, eventType domain.EventType) string {
	if prefix == "" {
		return string(eventType)
	}

	return prefix + "." + string(eventType)
}

func (p *NATSPublisher) Publish(ctx context.Context, event domain.BookingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(event)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(Subject(p.prefix, event.Type))
	msg.Header.Set(nats.MsgIdHdr, event.ID.String())
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
