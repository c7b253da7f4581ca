package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request — дескриптор логического запроса к бэкенду.
//
// Path — относительный путь ресурса ("/products/42"), добавляется к пути BaseURL.
// Body сериализуется в JSON один раз; при повторе после обновления токенов
// отправляются те же байты.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	// Body — значение для json.Marshal; []byte и json.RawMessage отправляются как есть.
	Body any
	// Anonymous — запрос без обновления токенов: 401 возвращается как *HTTPError
	// (вход, регистрация, сброс пароля).
	Anonymous bool

	payload []byte
	// retried — для дескриптора уже выполнялось обновление токенов.
	retried bool
}

// Get, Post, Put, Patch, Delete — короткие конструкторы дескрипторов.
func Get(path string, query url.Values) *Request {
	return &Request{Method: http.MethodGet, Path: path, Query: query}
}

func Post(path string, body any) *Request {
	return &Request{Method: http.MethodPost, Path: path, Body: body}
}

func Put(path string, body any) *Request {
	return &Request{Method: http.MethodPut, Path: path, Body: body}
}

func Patch(path string, body any) *Request {
	return &Request{Method: http.MethodPatch, Path: path, Body: body}
}

func Delete(path string) *Request {
	return &Request{Method: http.MethodDelete, Path: path}
}

// Retried — для дескриптора уже выполнялось обновление токенов.
func (r *Request) Retried() bool { return r.retried }

func (r *Request) prepare() error {
	const op = "apiclient.Request.prepare"

	switch r.Method {
	case "":
		r.Method = http.MethodGet
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead:
	default:
		return fmt.Errorf("%s: %w: method %q", op, ErrInvalidRequest, r.Method)
	}

	if r.Path == "" || strings.Contains(r.Path, "://") {
		return fmt.Errorf("%s: %w: path %q must be relative", op, ErrInvalidRequest, r.Path)
	}

	if r.Body == nil || r.payload != nil {
		return nil
	}

	switch b := r.Body.(type) {
	case []byte:
		r.payload = b
	case json.RawMessage:
		r.payload = b
	default:
		p, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("%s: marshal body: %w", op, err)
		}
		r.payload = p
	}

	return nil
}

// resolve строит абсолютный URL: путь BaseURL + путь ресурса, параметры объединяются.
func resolve(base *url.URL, path string, query url.Values) string {
	u := *base

	ref, err := url.Parse(path)
	if err != nil {
		ref = &url.URL{Path: path}
	}

	u.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawPath = ""

	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}

func (r *Request) build(ctx context.Context, base *url.URL) (*http.Request, error) {
	var body io.Reader
	if r.payload != nil {
		body = bytes.NewReader(r.payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, resolve(base, r.Path, r.Query), body)
	if err != nil {
		return nil, err
	}

	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
