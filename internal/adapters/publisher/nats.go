package publisher

import (
	"context"
	"cruise-status-service/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	metrics PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("cruise-status-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &NATSPublisher{nc: nc, prefix: prefix, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// StatusMessage is the JSON payload published for one ship.
type StatusMessage struct {
	Ship             string    `json:"ship"`
	Status           string    `json:"status"`
	Display          string    `json:"display"`
	CurrentPort      string    `json:"currentPort,omitempty"`
	PreviousPort     string    `json:"previousPort,omitempty"`
	NextPorts        []string  `json:"nextPorts"`
	Holding          bool      `json:"holding,omitempty"`
	RemainingMinutes int64     `json:"remainingMinutes,omitempty"`
	Zone             string    `json:"zone"`
	AsOf             time.Time `json:"asOf"`
}

func NewStatusMessage(r domain.StatusRecord) StatusMessage {
	next := r.NextPorts
	if next == nil {
		next = []string{}
	}
	return StatusMessage{
		Ship:             r.Ship,
		Status:           string(r.Tag),
		Display:          r.Display,
		CurrentPort:      r.CurrentPort,
		PreviousPort:     r.PreviousPort,
		NextPorts:        next,
		Holding:          r.Holding,
		RemainingMinutes: int64(r.Remaining.Round(time.Minute) / time.Minute),
		Zone:             r.Zone,
		AsOf:             r.AsOf,
	}
}

// Subject returns "{prefix}.{SHIP}" with the ship reduced to a valid NATS token.
func Subject(prefix, ship string) string {
	if prefix = strings.Trim(prefix, ". "); prefix == "" {
		return subjectToken(ship)
	}
	return prefix + "." + subjectToken(ship)
}

// PublishStatuses sends one message per ship. Every record is attempted; the
// returned error joins all failures.
func (p *NATSPublisher) PublishStatuses(ctx context.Context, statuses []domain.StatusRecord) error {
	var errs []error
	for _, r := range statuses {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := p.publish(r); err != nil {
			errs = append(errs, fmt.Errorf("publish %q: %w", r.Ship, err))
		}
	}
	return errors.Join(errs...)
}

func (p *NATSPublisher) publish(r domain.StatusRecord) error {
	b, err := json.Marshal(NewStatusMessage(r))
	if err != nil {
		return err
	}
	err = p.nc.Publish(Subject(p.prefix, r.Ship), b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain whitespace, '.', '>' or '*'.
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
