// interceptors — цепочка http.RoundTripper для исходящих вызовов к REST-бэкенду.
// Аналог клиентских unary-интерсепторов: metadata -> timeout -> logging.
//
// Каждый интерсептор клонирует запрос перед изменением заголовков/контекста,
// как того требует контракт http.RoundTripper.
package interceptors

import "net/http"

type CtxKey string

// CtxRequestID — ключ контекста, под которым gateway кладёт X-Request-Id входящего запроса.
const CtxRequestID CtxKey = "request_id"

const HeaderRequestID = "X-Request-Id"

// RoundTripperFunc — функция как http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Interceptor оборачивает RoundTripper.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// Chain применяет интерсепторы в порядке перечисления: первый — самый внешний.
func Chain(rt http.RoundTripper, its ...Interceptor) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}

	for i := len(its) - 1; i >= 0; i-- {
		rt = its[i](rt)
	}

	return rt
}
