// errors стандартизирует ответы об ошибках HTTP-слоя шлюза.
// На вход он принимает ошибку ресурсных API (apiclient/service),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Ответ бэкенда 4xx (*apiclient.HTTPError) сохраняет свой статус и сообщение:
// бэкенд формирует их для пользователя. 5xx бэкенда отдаётся как 502 без деталей.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/apiclient/interceptors"
	"github.com/pribylovaa/pharma-portal/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrInvalidArgument — локальная ошибка разбора запроса (тело, параметры пути).
var ErrInvalidArgument = errors.New("invalid argument")

// ErrUnauthenticated — в сессии шлюза нет пары токенов.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal;
//   - ReauthRequired - 401/reauth_required (фронт уводит на вход);
//   - *HTTPError бэкенда - тот же статус и сообщение (5xx - 502/upstream_error);
//   - *NetworkError - 504 по таймауту, 499 при отмене клиентом, иначе 502;
//   - ошибки ввода - 400/invalid_argument;
//   - прочее - 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)

	return status, ErrorResponse{
		Error: APIError{
			Code:    code,
			Message: msg,
		},
	}
}

func classify(err error) (int, string, string) {
	if err == nil {
		return http.StatusInternalServerError, "internal", "internal error"
	}

	if apiclient.IsReauthRequired(err) {
		return http.StatusUnauthorized, "reauth_required", "reauthentication required"
	}

	var he *apiclient.HTTPError
	if errors.As(err, &he) {
		status, code, msg := baseFromStatus(he.Status)
		if he.Message != "" && he.Status < 500 {
			msg = he.Message
		}
		return status, code, msg
	}

	if errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	}

	if errors.Is(err, ErrInvalidArgument) || errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	}

	if errors.Is(err, service.ErrMissingToken) {
		return http.StatusBadGateway, "bad_gateway", "upstream returned no tokens"
	}

	var ne *apiclient.NetworkError
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fromNetwork(err)
	}

	return http.StatusInternalServerError, "internal", "internal error"
}

func fromNetwork(err error) (int, string, string) {
	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &nerr) && nerr.Timeout():
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	default:
		return http.StatusBadGateway, "bad_gateway", "upstream unavailable"
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get(interceptors.HeaderRequestID); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// baseFromStatus — код и сообщение по статусу ответа бэкенда.
func baseFromStatus(status int) (int, string, string) {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return status, "invalid_argument", "invalid argument"
	case http.StatusUnauthorized:
		return status, "unauthenticated", "unauthenticated"
	case http.StatusForbidden:
		return status, "permission_denied", "permission denied"
	case http.StatusNotFound:
		return status, "not_found", "not found"
	case http.StatusConflict:
		return status, "already_exists", "already exists"
	case http.StatusTooManyRequests:
		return status, "resource_exhausted", "resource exhausted"
	case http.StatusServiceUnavailable:
		return status, "unavailable", "service unavailable"
	case http.StatusGatewayTimeout:
		return status, "deadline_exceeded", "deadline exceeded"
	}

	if status >= 400 && status < 500 {
		return status, "bad_request", http.StatusText(status)
	}

	return http.StatusBadGateway, "upstream_error", "upstream error"
}
