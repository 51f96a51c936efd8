package api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"houseclay-client/internal/contextkeys"
	"houseclay-client/internal/core/domain"
	"houseclay-client/internal/core/port"
)

// PipelineConfig - зависимости пайплайна.
type PipelineConfig struct {
	BaseURL    string
	LoginPath  string
	Timeout    time.Duration
	Navigator  port.NavigatorPort
	HTTPClient *http.Client
	Cookies    CookieStore
	// OnSessionExpired вызывается один раз на каждое истечение сессии,
	// до редиректа на страницу входа.
	OnSessionExpired func(ctx context.Context)
}

// Pipeline - единственный транспорт для всех эндпоинтов. При 401 на любом
// запросе, кроме logout, он один раз завершает сессию и уводит на вход.
type Pipeline struct {
	baseURL   *url.URL
	loginPath string
	timeout   time.Duration
	navigator port.NavigatorPort

	httpClient *http.Client
	jar        *sessionJar
	cookies    CookieStore

	onSessionExpired func(ctx context.Context)
	expired          atomic.Bool
	background       sync.WaitGroup
}

// NewPipeline создаёт пайплайн. Сохранённые cookies восстанавливаются сразу.
func NewPipeline(ctx context.Context, cfg PipelineConfig) (*Pipeline, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}
	if cfg.Navigator == nil {
		return nil, fmt.Errorf("navigator is required")
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	clientCopy := *httpClient
	clientCopy.Jar = jar

	p := &Pipeline{
		baseURL:          base,
		loginPath:        cfg.LoginPath,
		timeout:          cfg.Timeout,
		navigator:        cfg.Navigator,
		httpClient:       &clientCopy,
		jar:              jar,
		cookies:          cfg.Cookies,
		onSessionExpired: cfg.OnSessionExpired,
	}

	if p.cookies != nil {
		saved, err := p.cookies.LoadCookies(ctx)
		if err != nil {
			contextkeys.LoggerFromContext(ctx).Warn("Failed to restore session cookies", port.Fields{"error": err.Error()})
		} else if len(saved) > 0 {
			jar.SetCookies(base, saved)
		}
	}

	return p, nil
}

// Rearm снова включает обработку 401. Вызывается после успешного входа.
func (p *Pipeline) Rearm() {
	p.expired.Store(false)
}

// Wait дожидается фоновых запросов logout.
func (p *Pipeline) Wait() {
	p.background.Wait()
}

// ClearSession забывает cookies сессии локально.
func (p *Pipeline) ClearSession(ctx context.Context) {
	p.jar.Reset()
	p.persistCookies(ctx)
}

// Execute выполняет запрос как есть. Ошибка всегда *domain.RequestError.
// Ответ возвращается и при ошибке статуса, чтобы вызывающий мог его изучить.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Response, error) {
	ctx, traceID := contextkeys.EnsureTraceID(ctx)
	log := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "Pipeline",
		"endpoint":  req.Endpoint.String(),
		"trace_id":  traceID,
	})

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpResp, err := p.doRequest(ctx, req, traceID)
	if err != nil {
		log.Error("Request failed before a response was received", err, port.Fields{"method": req.Method, "path": req.Path})
		return nil, &domain.RequestError{Kind: domain.KindFetch, Cause: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Error("Failed to read response body", err, port.Fields{"status_code": httpResp.StatusCode})
		return nil, &domain.RequestError{Kind: domain.KindFetch, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: body}
	if len(httpResp.Cookies()) > 0 {
		p.persistCookies(ctx)
	}

	log.Debug("Response received", port.Fields{"status_code": resp.Status, "bytes": len(body)})

	if resp.Status == http.StatusUnauthorized && req.Endpoint != EndpointLogout {
		p.handleSessionExpired(ctx, log)
	}

	if resp.Status < 200 || resp.Status >= 300 {
		return resp, errorFromResponse(resp)
	}
	return resp, nil
}

// doRequest - внутренний хелпер для выполнения запросов
func (p *Pipeline) doRequest(ctx context.Context, req Request, traceID string) (*http.Response, error) {
	target := *p.baseURL
	target.Path = p.baseURL.Path + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("X-Trace-ID", traceID)
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return p.httpClient.Do(httpReq)
}

func (p *Pipeline) handleSessionExpired(ctx context.Context, log port.LoggerPort) {
	if !p.expired.CompareAndSwap(false, true) {
		log.Debug("Session expiry already handled, skipping redirect", nil)
		return
	}
	log.Warn("Session expired, forcing logout", nil)

	p.background.Add(1)
	go func() {
		defer p.background.Done()
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()
		// Результат не важен: сессия уже считается завершённой
		if _, err := p.Execute(logoutCtx, Request{Endpoint: EndpointLogout, Method: http.MethodPost, Path: logoutPath}); err != nil {
			log.Debug("Best-effort logout failed", port.Fields{"error": err.Error()})
		}
	}()

	if p.onSessionExpired != nil {
		p.onSessionExpired(ctx)
	}

	from := p.navigator.CurrentLocation()
	p.navigator.HardRedirect(p.loginPath + "?from=" + url.QueryEscape(from))
}

func (p *Pipeline) persistCookies(ctx context.Context) {
	if p.cookies == nil {
		return
	}
	if err := p.cookies.SaveCookies(ctx, p.jar.Cookies(p.baseURL)); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Failed to persist session cookies", port.Fields{"error": err.Error()})
	}
}

// errorFromResponse строит ошибку из не-2xx ответа. Тело, которое не
// разбирается как JSON, превращается в PARSING_ERROR с исходным статусом.
func errorFromResponse(resp *Response) *domain.RequestError {
	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) == 0 {
		return &domain.RequestError{Kind: domain.KindHTTP, Status: resp.Status}
	}
	var data any
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return &domain.RequestError{
			Kind:    domain.KindParsing,
			Status:  resp.Status,
			RawBody: string(trimmed),
			Cause:   err,
		}
	}
	return &domain.RequestError{Kind: domain.KindHTTP, Status: resp.Status, Data: data}
}
