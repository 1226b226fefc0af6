// Package kv implements the durable key-value persistence boundary on top
// of a gocloud.dev blob bucket, so the same store runs against a local
// directory (file://), memory (mem://) or a cloud bucket.
package kv

import (
	"context"
	"encoding/json"

	"waypoint/config"
	"waypoint/internal/domain/entity"
	"waypoint/internal/domain/repository"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// bucket driver
	_ "gocloud.dev/blob/memblob"  // mem:// bucket driver
	"gocloud.dev/gcerrors"
)

// Persisted document keys. The layouts match the client's storage contract.
const (
	keyLocationState = "location-storage"
	keyScheduled     = "scheduled_notifications"
	keyHistory       = "notification_history"
)

// Store is the blob-backed StateRepository implementation.
type Store struct {
	bucket *blob.Bucket
}

// Params holds dependencies for the Store, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Ctx    context.Context
	Config *config.Config
}

// New opens the configured bucket and registers its shutdown hook.
func New(params Params) (repository.StateRepository, error) {
	bucket, err := blob.OpenBucket(params.Ctx, params.Config.Storage.Bucket)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open storage bucket %s", params.Config.Storage.Bucket)
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return errors.WithStack(bucket.Close())
		},
	})

	return &Store{bucket: bucket}, nil
}

// NewWithBucket wraps an already opened bucket; used by tests with mem://.
func NewWithBucket(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

func (s *Store) LoadState(ctx context.Context) (*entity.LocationState, error) {
	state := new(entity.LocationState)
	if err := s.load(ctx, keyLocationState, state); err != nil {
		return nil, err
	}

	return state, nil
}

func (s *Store) SaveState(ctx context.Context, state *entity.LocationState) error {
	return s.save(ctx, keyLocationState, state)
}

func (s *Store) LoadScheduled(ctx context.Context) ([]*entity.ScheduledNotification, error) {
	var scheduled []*entity.ScheduledNotification
	if err := s.load(ctx, keyScheduled, &scheduled); err != nil {
		return nil, err
	}

	return scheduled, nil
}

func (s *Store) SaveScheduled(ctx context.Context, notifications []*entity.ScheduledNotification) error {
	if notifications == nil {
		notifications = []*entity.ScheduledNotification{}
	}

	return s.save(ctx, keyScheduled, notifications)
}

func (s *Store) LoadHistory(ctx context.Context) ([]*entity.DeliveredNotification, error) {
	var history []*entity.DeliveredNotification
	if err := s.load(ctx, keyHistory, &history); err != nil {
		return nil, err
	}

	return history, nil
}

func (s *Store) SaveHistory(ctx context.Context, history []*entity.DeliveredNotification) error {
	if history == nil {
		history = []*entity.DeliveredNotification{}
	}

	return s.save(ctx, keyHistory, history)
}

func (s *Store) load(ctx context.Context, key string, out any) error {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return repository.ErrStateNotFound
		}

		return errors.Wrapf(err, "failed to read %s", key)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s", key)
	}

	return nil
}

func (s *Store) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", key)
	}
	if err := s.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return errors.Wrapf(err, "failed to write %s", key)
	}

	return nil
}
