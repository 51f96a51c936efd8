package api_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"houseclay-client/internal/core/port"
)

// CookieStore сохраняет cookies сессии между запусками CLI.
type CookieStore interface {
	LoadCookies(ctx context.Context) ([]*http.Cookie, error)
	SaveCookies(ctx context.Context, cookies []*http.Cookie) error
}

// sessionJar - cookiejar, который можно сбросить при выходе.
type sessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newSessionJar() (*sessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &sessionJar{jar: jar}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) Reset() {
	jar, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
}

const cookiesSlice = "cookies"

type persistedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PersistedCookieStore хранит cookies в том же хранилище, что и состояние клиента.
type PersistedCookieStore struct {
	persister port.StatePersisterPort
}

func NewPersistedCookieStore(persister port.StatePersisterPort) *PersistedCookieStore {
	return &PersistedCookieStore{persister: persister}
}

func (s *PersistedCookieStore) LoadCookies(ctx context.Context) ([]*http.Cookie, error) {
	slices, err := s.persister.Load(ctx)
	if err != nil {
		return nil, err
	}
	payload, ok := slices[cookiesSlice]
	if !ok {
		return nil, nil
	}
	var saved []persistedCookie
	if err := json.Unmarshal(payload, &saved); err != nil {
		return nil, fmt.Errorf("failed to decode saved cookies: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies, nil
}

func (s *PersistedCookieStore) SaveCookies(ctx context.Context, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return s.persister.Delete(ctx, cookiesSlice)
	}
	saved := make([]persistedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, persistedCookie{Name: c.Name, Value: c.Value})
	}
	payload, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	return s.persister.Save(ctx, cookiesSlice, payload)
}
