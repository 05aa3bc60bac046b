package events

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/alexandrevicenzi/go-sse"
)

// Broadcaster is the part of *sse.Server the relay writes to.
type Broadcaster interface {
	SendMessage(channelName string, message *sse.Message)
}

// Channel is the SSE channel name clients of one tournament listen on.
func Channel(tournamentID int64) string {
	return "/tournaments/" + strconv.FormatInt(tournamentID, 10)
}

// Relay forwards every bus event to the SSE channel of its tournament.
type Relay struct {
	bus    *Bus
	out    Broadcaster
	logger *slog.Logger
}

func NewRelay(bus *Bus, out Broadcaster, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{bus: bus, out: out, logger: logger}
}

// Run subscribes to all topics and blocks until ctx is cancelled or the bus is closed.
func (r *Relay) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, topic := range Topics {
		messages, err := r.bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			for msg := range messages {
				e, err := Decode(msg)
				if err != nil {
					r.logger.Warn("Dropping undecodable event", "topic", topic, "error", err)
					msg.Ack()
					continue
				}
				r.out.SendMessage(Channel(e.TournamentID), sse.NewMessage(e.ID, string(msg.Payload), e.Type))
				msg.Ack()
			}
		}(topic)
	}

	wg.Wait()
	return nil
}
