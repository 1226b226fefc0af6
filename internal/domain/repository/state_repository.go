// Package repository defines the persistence ports of the domain.
package repository

import (
	"context"

	"waypoint/internal/domain/entity"
	"waypoint/internal/errors"
)

// ErrStateNotFound is returned when a persisted document does not exist yet.
var ErrStateNotFound = errors.New("persisted state not found")

// StateRepository is the durable key-value persistence boundary. It stores
// three JSON documents: the location-storage snapshot, the scheduled
// notification index, and the capped notification history.
type StateRepository interface {
	LoadState(ctx context.Context) (*entity.LocationState, error)
	SaveState(ctx context.Context, state *entity.LocationState) error

	LoadScheduled(ctx context.Context) ([]*entity.ScheduledNotification, error)
	SaveScheduled(ctx context.Context, notifications []*entity.ScheduledNotification) error

	LoadHistory(ctx context.Context) ([]*entity.DeliveredNotification, error)
	SaveHistory(ctx context.Context, history []*entity.DeliveredNotification) error
}
