package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrReauthRequired — обновление токенов невозможно (отказ /auth/refresh или исчерпан
	// счётчик попыток); учётные данные очищены, нужен повторный вход.
	ErrReauthRequired = errors.New("reauthentication required")

	// ErrRefreshBudgetExhausted — счётчик попыток достиг предела, /auth/refresh не вызывался.
	ErrRefreshBudgetExhausted = errors.New("refresh attempts exhausted")

	// ErrNoRefreshToken — в хранилище нет refresh-токена (режим bearer-header).
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrRefreshRejected — /auth/refresh ответил ошибкой или без токенов.
	ErrRefreshRejected = errors.New("refresh rejected")

	// ErrInvalidRequest — некорректный дескриптор (метод/путь).
	ErrInvalidRequest = errors.New("invalid request")
)

// ReauthError — терминальный отказ. errors.Is(err, ErrReauthRequired) == true,
// причина (ErrRefreshBudgetExhausted, ErrRefreshRejected, ...) доступна через errors.Is/As.
type ReauthError struct {
	Cause error
}

func (e *ReauthError) Error() string {
	if e.Cause == nil {
		return ErrReauthRequired.Error()
	}

	return ErrReauthRequired.Error() + ": " + e.Cause.Error()
}

func (e *ReauthError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrReauthRequired}
	}

	return []error{ErrReauthRequired, e.Cause}
}

// HTTPError — ответ бэкенда со статусом вне 2xx. Пробрасывается без изменений:
// без повторов и без изменения учётных данных.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
	Body    []byte
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}

	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// NetworkError — ответ не получен (DNS, соединение, таймаут). Повторов нет.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsReauthRequired — ошибка требует повторного входа.
func IsReauthRequired(err error) bool { return errors.Is(err, ErrReauthRequired) }

// IsNetwork — ответ от бэкенда не был получен.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusOf возвращает HTTP-статус из *HTTPError или 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}

	return 0
}

// newHTTPError разбирает тело ошибки. Поддерживаемые формы:
//   - {"statusCode":404,"message":"Not found","error":"Not Found"} (message может быть списком);
//   - {"error":{"code":"not_found","message":"not found"}};
//   - произвольный текст (обрезается).
func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	e := &HTTPError{Method: method, Path: path, Status: status, Body: body}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return e
	}

	var flat struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &flat); err != nil {
		e.Message = truncate(string(trimmed), 200)
		return e
	}

	var nested struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if len(flat.Error) > 0 && json.Unmarshal(flat.Error, &nested) == nil {
		e.Code = nested.Code
		e.Message = nested.Message
	}

	if m := decodeMessage(flat.Message); m != "" {
		e.Message = m
	}
	if e.Code == "" {
		var s string
		if json.Unmarshal(flat.Error, &s) == nil {
			e.Code = s
		}
	}

	return e
}

func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}

	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
