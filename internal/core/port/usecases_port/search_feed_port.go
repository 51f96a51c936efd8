package usecases_port

import (
	"context"

	"houseclay-client/internal/core/domain"
)

// SearchFeedView - накопленная выдача и флаги загрузки.
type SearchFeedView struct {
	Query   domain.SearchQuery
	Page    domain.SearchResultPage
	Loading bool
	Error   string
}

type SearchFeedUseCase interface {
	SetQuery(ctx context.Context, q domain.SearchQuery) error
	// LoadMore возвращает false, если запрос подавлен.
	LoadMore(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) error
	Snapshot() SearchFeedView
	Close()
}
