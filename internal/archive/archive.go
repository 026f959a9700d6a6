// Package archive persists finalized complaints for deployments that opt in.
// The default is to keep nothing: session state is the only home of complaint
// data unless an operator explicitly selects a backend.
package archive

import "context"

// Archiver stores a confirmed complaint. Failures are reported to the caller
// but must never block the conversational reply.
type Archiver interface {
	SaveComplaint(ctx context.Context, ref string, fields map[string]string) error
	Close() error
}

// Noop discards complaints. It is the default backend.
type Noop struct{}

func (Noop) SaveComplaint(ctx context.Context, ref string, fields map[string]string) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
