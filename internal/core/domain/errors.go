package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrInvalidPhone   = errors.New("Enter a valid 10-digit phone number")
	ErrMissingProfile = errors.New("Please enter name and email")
	ErrIncompleteOTP  = errors.New("Enter all OTP digits")
	ErrResendNotReady = errors.New("OTP can be resent once the timer runs out")
	ErrWrongStep      = errors.New("action is not available at this step")
	ErrFlowClosed     = errors.New("auth flow is closed")
	ErrInFlight       = errors.New("request is already in progress")
	ErrDraftNotFound  = errors.New("no saved draft")
	ErrDraftInvalid   = errors.New("draft is not ready to submit")
)

// RequestErrorKind - вид сбоя запроса.
type RequestErrorKind string

const (
	// KindHTTP - сервер ответил не-2xx, тело (если есть) разобрано как JSON.
	KindHTTP RequestErrorKind = "HTTP_ERROR"
	// KindParsing - тело ответа не удалось разобрать, RawBody содержит его как есть.
	KindParsing RequestErrorKind = "PARSING_ERROR"
	// KindFetch - запрос не дошёл до сервера или ответ не был получен.
	KindFetch RequestErrorKind = "FETCH_ERROR"
	// KindCustom - ошибка, сформированная самим клиентом.
	KindCustom RequestErrorKind = "CUSTOM_ERROR"
)

// RequestError - единая форма любой ошибки обращения к API.
type RequestError struct {
	Kind    RequestErrorKind
	Status  int
	Data    any
	RawBody string
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status > 0:
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, NormalizeError(e))
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, NormalizeError(e))
	}
}

func (e *RequestError) Unwrap() error { return e.Cause }

// HTTPStatus возвращает код ответа сервера, если ответ был получен.
func (e *RequestError) HTTPStatus() (int, bool) {
	if (e.Kind == KindHTTP || e.Kind == KindParsing) && e.Status > 0 {
		return e.Status, true
	}
	return 0, false
}

// StatusOf достаёт HTTP-статус из цепочки ошибок.
func StatusOf(err error) (int, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatus()
	}
	return 0, false
}

// IsUnauthorized сообщает, что сервер ответил 401.
func IsUnauthorized(err error) bool {
	status, ok := StatusOf(err)
	return ok && status == 401
}

const (
	unknownErrorMessage = "Unknown error occurred"
	genericErrorMessage = "Request failed. Please try again."
	parsingErrorMessage = "Request failed"
)

// NormalizeError превращает любую ошибку в сообщение для пользователя.
// Результат не пустой и зависит только от входа.
func NormalizeError(err error) string {
	if err == nil {
		return unknownErrorMessage
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			return msg
		}
		return genericErrorMessage
	}
	if reqErr == nil {
		return unknownErrorMessage
	}

	switch reqErr.Kind {
	case KindParsing:
		if reqErr.RawBody != "" {
			return reqErr.RawBody
		}
		return parsingErrorMessage
	case KindHTTP:
		if reqErr.Status > 0 {
			if body, ok := reqErr.Data.(map[string]any); ok {
				if msg, ok := body["message"].(string); ok && msg != "" {
					return msg
				}
				if msg, ok := body["error"].(string); ok && msg != "" {
					return msg
				}
			}
			return fmt.Sprintf("HTTP error %d", reqErr.Status)
		}
	}

	if reqErr.Message != "" {
		return reqErr.Message
	}
	return genericErrorMessage
}
