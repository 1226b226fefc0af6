// Package delivery defines the transport-agnostic serving contract.
package delivery

import "context"

// Delivery is implemented by every serving surface (HTTP API, worker).
type Delivery interface {
	Serve(ctx context.Context) error
}
