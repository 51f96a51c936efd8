package api_client

import (
	"context"
	"net/http"

	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
)

// searchByLocationQuery: ключ кеша не включает страницу, страницы
// накапливаются в одной записи.
var searchByLocationQuery = &QueryDef[domain.SearchQuery, domain.SearchResultPage]{
	Endpoint: EndpointSearchByLocation,
	Query: func(q domain.SearchQuery) Request {
		return Request{Method: http.MethodGet, Path: "/property/search", Query: q.Values()}
	},
	Decode: decodeJSON[domain.SearchResultPage],
	SerializeArgs: func(q domain.SearchQuery) string {
		return q.Identity()
	},
	Merge: func(current, incoming domain.SearchResultPage, arg domain.SearchQuery) domain.SearchResultPage {
		if arg.Page == 0 {
			return incoming.Replace()
		}
		return current.Append(incoming)
	},
	ForceRefetch: func(current, previous domain.SearchQuery) bool {
		return current.Page != previous.Page
	},
}

func (c *Client) normalizeSearch(q domain.SearchQuery) domain.SearchQuery {
	if q.Size <= 0 {
		q.Size = c.pageSize
	}
	return q
}

// SearchProperties загружает страницу q.Page и возвращает всю накопленную выдачу.
func (c *Client) SearchProperties(ctx context.Context, q domain.SearchQuery, opts port.SearchOptions) (domain.SearchResultPage, error) {
	return runQuery(ctx, c, searchByLocationQuery, c.normalizeSearch(q), opts.Force)
}

// CachedSearch возвращает накопленную выдачу без сети.
func (c *Client) CachedSearch(q domain.SearchQuery) (domain.SearchResultPage, bool) {
	data, ok := c.cache.peek(searchByLocationQuery.cacheKey(c.normalizeSearch(q)))
	if !ok {
		return domain.SearchResultPage{}, false
	}
	page, ok := data.(domain.SearchResultPage)
	return page, ok
}

// RetainSearch не даёт вытеснить выдачу, пока её показывают.
func (c *Client) RetainSearch(q domain.SearchQuery) func() {
	return c.cache.retain(searchByLocationQuery.cacheKey(c.normalizeSearch(q)))
}
