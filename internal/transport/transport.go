// SPDX-License-Identifier: MIT

// Package transport publishes engine telemetry to external consumers.
// Implementations must be safe for concurrent use and must never block
// the tick loop: a slow consumer drops frames, it does not stall the
// choreography.
package transport

// Transport sends telemetry snapshots or events to one downstream
// surface.
type Transport interface {
	Send(data any) error
	Close() error
}

// Fanout broadcasts to several transports as one. Send delivers to
// every member and reports the first error; Close closes every member.
type Fanout []Transport

func (f Fanout) Send(data any) error {
	var first error
	for _, t := range f {
		if err := t.Send(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) Close() error {
	var first error
	for _, t := range f {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var _ Transport = (Fanout)(nil)
