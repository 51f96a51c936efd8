package api_client

import (
	"sync"
	"time"

	"houseclay-client/pkg/clock"
)

// DefaultKeepUnusedFor - сколько живёт запись кеша без подписчиков.
const DefaultKeepUnusedFor = 60 * time.Second

type cacheEntry struct {
	data    any
	hasData bool
	stale   bool
	lastArg any

	tags          []Tag
	keepUnusedFor time.Duration
	lastUsed      time.Time
	subscribers   int
	inFlight      int

	// Порядковые номера запросов: ответ применяется, только если его
	// запрос стартовал позже уже применённого.
	startedSeq uint64
	appliedSeq uint64
}

// queryCache хранит результаты запросов по ключу "эндпоинт(аргументы)".
type queryCache struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]*cacheEntry
	seq     uint64
	// floorSeq - ответы на запросы, начатые до reset, не применяются.
	floorSeq uint64
}

func newQueryCache(c clock.Clock) *queryCache {
	return &queryCache{clock: c, entries: make(map[string]*cacheEntry)}
}

func (c *queryCache) entryLocked(key string) *cacheEntry {
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{keepUnusedFor: DefaultKeepUnusedFor, lastUsed: c.clock.Now()}
		c.entries[key] = e
	}
	return e
}

// lookup возвращает данные, если они есть и не помечены устаревшими.
// needRefetch может потребовать сеть, сравнив текущий аргумент с предыдущим.
func (c *queryCache) lookup(key string, needRefetch func(lastArg any) bool) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()

	e, ok := c.entries[key]
	if !ok || !e.hasData || e.stale {
		return nil, false
	}
	e.lastUsed = c.clock.Now()
	if needRefetch != nil && needRefetch(e.lastArg) {
		return nil, false
	}
	return e.data, true
}

// peek отдаёт данные, даже устаревшие, не трогая сеть.
func (c *queryCache) peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}

// begin регистрирует старт запроса и возвращает его номер.
func (c *queryCache) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	e := c.entryLocked(key)
	e.startedSeq = c.seq
	e.inFlight++
	return c.seq
}

// end отмечает завершение запроса, успешного или нет.
func (c *queryCache) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.inFlight > 0 {
		e.inFlight--
	}
}

type applyOptions struct {
	seq           uint64
	arg           any
	tags          []Tag
	keepUnusedFor time.Duration
	// merge строит новое значение из текущего (если есть) и пришедшего.
	merge func(current any, hasCurrent bool) any
}

// apply записывает результат запроса. Если уже применён ответ на более
// поздний запрос, результат отбрасывается и возвращаются текущие данные.
func (c *queryCache) apply(key string, opts applyOptions) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	if opts.seq <= e.appliedSeq || opts.seq <= c.floorSeq {
		return e.data, false
	}

	e.data = opts.merge(e.data, e.hasData)
	e.hasData = true
	e.stale = false
	e.appliedSeq = opts.seq
	e.lastArg = opts.arg
	e.tags = opts.tags
	e.lastUsed = c.clock.Now()
	if opts.keepUnusedFor > 0 {
		e.keepUnusedFor = opts.keepUnusedFor
	}
	return e.data, true
}

// invalidate помечает устаревшими все записи с любой из меток.
func (c *queryCache) invalidate(tags []Tag) int {
	if len(tags) == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, e := range c.entries {
		if e.stale || !e.hasData {
			continue
		}
		if sharesTag(e.tags, tags) {
			e.stale = true
			count++
		}
	}
	return count
}

func sharesTag(have, want []Tag) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// retain подписывает потребителя на запись: пока подписка жива, запись не вытесняется.
func (c *queryCache) retain(key string) func() {
	c.mu.Lock()
	c.entryLocked(key).subscribers++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if e, ok := c.entries[key]; ok && e.subscribers > 0 {
				e.subscribers--
				e.lastUsed = c.clock.Now()
			}
		})
	}
}

// evictLocked удаляет записи без подписчиков, не использованные дольше keepUnusedFor.
func (c *queryCache) evictLocked() {
	now := c.clock.Now()
	for key, e := range c.entries {
		if e.subscribers > 0 || e.inFlight > 0 {
			continue
		}
		if now.Sub(e.lastUsed) > e.keepUnusedFor {
			delete(c.entries, key)
		}
	}
}

func (c *queryCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.floorSeq = c.seq
}

func (c *queryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
