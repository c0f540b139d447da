package output

import (
	"context"

	"github.com/c360/joli/errors"
)

// NATS publishes each value as compact JSON to a subject.
type NATS struct {
	publisher Publisher
	subject   string
}

// NewNATS creates a nats outputter over an established connection.
func NewNATS(p Publisher, subject string) *NATS {
	return &NATS{publisher: p, subject: subject}
}

// Output implements Outputter.
func (n *NATS) Output(ctx context.Context, data any) error {
	b, err := Marshal(data, false)
	if err != nil {
		return errors.WrapInvalid(err, "NATS", "Output", "marshal value")
	}
	return n.publisher.Publish(ctx, n.subject, b)
}
