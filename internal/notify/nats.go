package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "pin"

// publisher is the subset of *nats.Conn used by [NATS].
type publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATS publishes events as JSON on "<prefix>.up" and "<prefix>.down".
type NATS struct {
	pub    publisher
	prefix string
}

// NewNATS returns a notifier publishing through nc.
func NewNATS(nc *nats.Conn, prefix string) *NATS {
	return newNATS(nc, prefix)
}

func newNATS(pub publisher, prefix string) *NATS {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{pub: pub, prefix: prefix}
}

// Subject returns the subject an event of the given kind is published on.
func (n *NATS) Subject(kind Kind) string {
	return fmt.Sprintf("%s.%s", n.prefix, kind)
}

func (n *NATS) Notify(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &nats.Msg{
		Subject: n.Subject(evt.Kind),
		Data:    payload,
		Header:  nats.Header{},
	}
	msg.Header.Set("Target", evt.Target)
	if err := n.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}
