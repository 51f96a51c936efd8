package api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
	"houseclay-client/pkg/clock"

	"golang.org/x/sync/singleflight"
)

// QueryDef - кешируемый запрос на чтение.
type QueryDef[A, R any] struct {
	Endpoint EndpointID
	Query    func(arg A) Request
	Decode   func(resp *Response) (R, error)

	// SerializeArgs задаёт ключ кеша. По умолчанию - JSON аргумента.
	SerializeArgs func(arg A) string
	// Merge объединяет пришедший результат с текущим. По умолчанию - замена.
	Merge func(current R, incoming R, arg A) R
	// ForceRefetch требует сеть, даже если данные в кеше свежие.
	ForceRefetch func(current, previous A) bool

	ProvidesTags  []Tag
	KeepUnusedFor time.Duration
}

// MutationDef - запрос на запись, который может инвалидировать кеш.
type MutationDef[A, R any] struct {
	Endpoint        EndpointID
	Query           func(arg A) Request
	Decode          func(resp *Response) (R, error)
	InvalidatesTags []Tag
}

// Client - реестр эндпоинтов поверх Pipeline с кешем запросов.
type Client struct {
	pipeline *Pipeline
	cache    *queryCache
	flight   singleflight.Group
	pageSize int
}

// NewClient собирает клиента. pageSize используется, если в запросе поиска размер не задан.
func NewClient(pipeline *Pipeline, clk clock.Clock, pageSize int) *Client {
	if clk == nil {
		clk = clock.Real()
	}
	if pageSize <= 0 {
		pageSize = domain.DefaultSearchPageSize
	}
	return &Client{pipeline: pipeline, cache: newQueryCache(clk), pageSize: pageSize}
}

// Pipeline возвращает транспорт клиента.
func (c *Client) Pipeline() *Pipeline { return c.pipeline }

// ResetCache забывает все закешированные ответы.
func (c *Client) ResetCache() {
	c.cache.reset()
}

func defaultSerialize(arg any) string {
	data, err := json.Marshal(arg)
	if err != nil {
		return fmt.Sprintf("%v", arg)
	}
	return string(data)
}

func (d *QueryDef[A, R]) cacheKey(arg A) string {
	if d.SerializeArgs != nil {
		return d.Endpoint.String() + "(" + d.SerializeArgs(arg) + ")"
	}
	return d.Endpoint.String() + "(" + defaultSerialize(arg) + ")"
}

// runQuery отдаёт данные из кеша или идёт в сеть. Одинаковые запросы,
// выполняющиеся одновременно, разделяют один сетевой вызов.
func runQuery[A, R any](ctx context.Context, c *Client, def *QueryDef[A, R], arg A, force bool) (R, error) {
	var zero R
	key := def.cacheKey(arg)
	log := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ApiClient",
		"endpoint":  def.Endpoint.String(),
	})

	if !force {
		var needRefetch func(any) bool
		if def.ForceRefetch != nil {
			needRefetch = func(last any) bool {
				prev, ok := last.(A)
				return ok && def.ForceRefetch(arg, prev)
			}
		}
		if data, ok := c.cache.lookup(key, needRefetch); ok {
			log.Debug("Cache hit", port.Fields{"cache_key": key})
			out, _ := data.(R)
			return out, nil
		}
	}

	flightKey := def.Endpoint.String() + "(" + defaultSerialize(arg) + ")"
	v, err, shared := c.flight.Do(flightKey, func() (any, error) {
		seq := c.cache.begin(key)
		defer c.cache.end(key)

		req := def.Query(arg)
		req.Endpoint = def.Endpoint
		resp, err := c.pipeline.Execute(ctx, req)
		if err != nil {
			return nil, err
		}
		result, err := def.Decode(resp)
		if err != nil {
			return nil, err
		}

		data, applied := c.cache.apply(key, applyOptions{
			seq:           seq,
			arg:           arg,
			tags:          def.ProvidesTags,
			keepUnusedFor: def.KeepUnusedFor,
			merge: func(current any, hasCurrent bool) any {
				if def.Merge == nil {
					return result
				}
				cur, _ := current.(R)
				if !hasCurrent {
					cur = zero
				}
				return def.Merge(cur, result, arg)
			},
		})
		if !applied {
			log.Debug("Discarding response of an older request", port.Fields{"cache_key": key, "seq": seq})
			if data == nil {
				return result, nil
			}
		}
		return data, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		log.Debug("Joined in-flight request", port.Fields{"cache_key": key})
	}
	out, _ := v.(R)
	return out, nil
}

// runMutation выполняет запись и при успехе инвалидирует метки кеша.
func runMutation[A, R any](ctx context.Context, c *Client, def *MutationDef[A, R], arg A) (R, error) {
	var zero R
	req := def.Query(arg)
	req.Endpoint = def.Endpoint
	resp, err := c.pipeline.Execute(ctx, req)
	if err != nil {
		return zero, err
	}
	result, err := def.Decode(resp)
	if err != nil {
		return zero, err
	}
	if n := c.cache.invalidate(def.InvalidatesTags); n > 0 {
		contextkeys.LoggerFromContext(ctx).Debug("Cache entries invalidated", port.Fields{
			"endpoint": def.Endpoint.String(),
			"tags":     def.InvalidatesTags,
			"entries":  n,
		})
	}
	return result, nil
}

// decodeJSON разбирает тело ответа. Ошибка разбора - PARSING_ERROR с телом как есть.
func decodeJSON[T any](resp *Response) (T, error) {
	var out T
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, &domain.RequestError{
			Kind:    domain.KindParsing,
			Status:  resp.Status,
			RawBody: strings.TrimSpace(string(resp.Body)),
			Cause:   err,
		}
	}
	return out, nil
}

func decodeText(resp *Response) (string, error) {
	return string(resp.Body), nil
}

func decodeNothing(*Response) (struct{}, error) {
	return struct{}{}, nil
}

// isJSON смотрит на Content-Type, как делает обработчик ответа логина.
func isJSON(resp *Response) bool {
	return strings.Contains(resp.ContentType(), "application/json")
}
