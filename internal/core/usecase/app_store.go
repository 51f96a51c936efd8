package usecase

import (
	"context"

	"houseclay-client/internal/store"
)

// AppStore - часть хранилища, которая нужна сценариям.
type AppStore interface {
	State() store.State
	Dispatch(ctx context.Context, a store.Action) error
	Subscribe(fn store.Listener) func()
}
