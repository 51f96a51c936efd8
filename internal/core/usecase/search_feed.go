package usecase

import (
	"context"
	"sync"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/internal/core/port/usecases_port"
)

// SearchFeed - подписчик на выдачу одного запроса. Смена параметров
// сразу загружает первую страницу, LoadMore дописывает следующую.
type SearchFeed struct {
	search port.PropertySearchPort

	mu       sync.Mutex
	query    domain.SearchQuery
	hasQuery bool
	page     domain.SearchResultPage
	loading  bool
	errMsg   string
	release  func()
	gen      uint64
	closed   bool
}

func NewSearchFeed(search port.PropertySearchPort) *SearchFeed {
	return &SearchFeed{search: search}
}

// SetQuery переключает выдачу на новые параметры. Повторный вызов с теми
// же параметрами ничего не делает.
func (f *SearchFeed) SetQuery(ctx context.Context, q domain.SearchQuery) error {
	q = q.WithPage(0)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return domain.ErrFlowClosed
	}
	if f.hasQuery && f.query.Identity() == q.Identity() {
		f.mu.Unlock()
		return nil
	}
	if f.release != nil {
		f.release()
	}
	f.release = f.search.RetainSearch(q)
	f.query = q
	f.hasQuery = true
	f.gen++
	gen := f.gen
	f.page, _ = f.search.CachedSearch(q)
	f.loading = true
	f.errMsg = ""
	f.mu.Unlock()

	contextkeys.LoggerFromContext(ctx).Debug("Search query changed", port.Fields{
		"component": "SearchFeed",
		"category":  string(q.PropertyCategory),
		"page_size": q.Size,
	})
	return f.fetch(ctx, q, true, gen)
}

// LoadMore запрашивает следующую страницу. Подавляется, пока идёт
// загрузка или если сервер сообщил, что страниц больше нет.
func (f *SearchFeed) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.closed || !f.hasQuery || f.loading || !f.page.HasNext {
		f.mu.Unlock()
		return false, nil
	}
	next := f.query.WithPage(f.page.Page + 1)
	f.loading = true
	gen := f.gen
	f.mu.Unlock()

	return true, f.fetch(ctx, next, false, gen)
}

// Refresh перезагружает первую страницу.
func (f *SearchFeed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	if f.closed || !f.hasQuery {
		f.mu.Unlock()
		return nil
	}
	if f.loading {
		f.mu.Unlock()
		return domain.ErrInFlight
	}
	q := f.query
	f.loading = true
	gen := f.gen
	f.mu.Unlock()

	return f.fetch(ctx, q, true, gen)
}

func (f *SearchFeed) fetch(ctx context.Context, q domain.SearchQuery, force bool, gen uint64) error {
	page, err := f.search.SearchProperties(ctx, q, port.SearchOptions{Force: force})

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || f.closed {
		// Параметры уже сменились, результат устарел.
		return err
	}
	f.loading = false
	if err != nil {
		f.errMsg = domain.NormalizeError(err)
		return err
	}
	f.errMsg = ""
	f.page = page
	return nil
}

func (f *SearchFeed) Snapshot() usecases_port.SearchFeedView {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := f.page
	page.Items = append([]domain.PropertyListing(nil), f.page.Items...)
	return usecases_port.SearchFeedView{
		Query:   f.query,
		Page:    page,
		Loading: f.loading,
		Error:   f.errMsg,
	}
}

// Close отпускает запись кеша.
func (f *SearchFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.gen++
	if f.release != nil {
		f.release()
		f.release = nil
	}
}
