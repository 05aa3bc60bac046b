package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	TopicTournamentCreated   = "tournament.created"
	TopicBracketStarted      = "tournament.bracket_started"
	TopicMatchCompleted      = "match.completed"
	TopicRoundStarted        = "tournament.round_started"
	TopicTournamentCompleted = "tournament.completed"
)

var Topics = []string{
	TopicTournamentCreated,
	TopicBracketStarted,
	TopicMatchCompleted,
	TopicRoundStarted,
	TopicTournamentCompleted,
}

// Event is a committed state transition of one tournament. Type doubles as the topic.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	TournamentID int64     `json:"tournament_id"`
	Round        int       `json:"round,omitempty"`
	MatchID      int64     `json:"match_id,omitempty"`
	Winner       string    `json:"winner,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func New(eventType string, tournamentID int64) Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Event{
		ID:           id.String(),
		Type:         eventType,
		TournamentID: tournamentID,
		OccurredAt:   time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Bus is an in-process pub/sub. Subscribers only see events published after they subscribed.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return &Bus{pubsub: pubsub, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, events ...Event) error {
	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal %s event: %w", e.Type, err)
		}

		msg := message.NewMessage(e.ID, payload)
		msg.SetContext(ctx)
		msg.Metadata.Set("tournament_id", strconv.FormatInt(e.TournamentID, 10))

		if err := b.pubsub.Publish(e.Type, msg); err != nil {
			return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
		}
		b.logger.Debug("Published event", "type", e.Type, "tournament_id", e.TournamentID, "event_id", e.ID)
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func Decode(msg *message.Message) (Event, error) {
	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event %s: %w", msg.UUID, err)
	}
	return e, nil
}
