package events

import "context"

var _ Publisher = (*Nop)(nil)

// Nop drops every event. Used by the CLI and tests when no broker is
// configured.
type Nop struct{}

func NewNop() Nop {
	return Nop{}
}

func (Nop) Publish(ctx context.Context, event Event) error {
	return nil
}

func (Nop) Close() {}
