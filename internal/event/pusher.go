package event

import (
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"

	"github.com/putridahliana91-coder/senoplan/internal/lib/logger/sl"
)

// PusherPublisher mirrors events to Pusher Channels for externally hosted
// dashboards. Optional; enabled by config.
type PusherPublisher struct {
	log    *slog.Logger
	client *pusher.Client
}

func NewPusherPublisher(log *slog.Logger, client *pusher.Client) *PusherPublisher {
	return &PusherPublisher{
		log:    log,
		client: client,
	}
}

func (p *PusherPublisher) Publish(msg Message) error {
	if err := p.client.Trigger(msg.Channel, msg.Event, msg.Data); err != nil {
		p.log.Error("failed to trigger pusher event", sl.Err(err))

		return err
	}

	return nil
}
