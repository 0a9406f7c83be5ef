package automatic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NatsPublisher sends block summaries as JSON to a NATS subject so a
// long training run can be watched from elsewhere.
type NatsPublisher struct {
	nc      *nats.Conn
	subject string
}

func NewNatsPublisher(url, subject string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("threes-trainer"), nats.Timeout(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	log.Info().Str("subject", subject).Msg("nats-publisher-connected")
	return &NatsPublisher{nc: nc, subject: subject}, nil
}

func (p *NatsPublisher) PublishBlock(ctx context.Context, s BlockSummary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return err
	}
	if err := p.nc.LastError(); err != nil {
		return err
	}
	return nil
}

// Close flushes anything still buffered and disconnects.
func (p *NatsPublisher) Close() error {
	err := p.nc.Flush()
	p.nc.Close()
	return err
}
