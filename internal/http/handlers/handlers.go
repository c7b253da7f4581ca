package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/portal"
)

// Handlers агрегирует зависимости: реестр порталов сессий.
// Портал текущего запроса кладёт в контекст middleware.Session.
type Handlers struct {
	Registry *portal.Registry
}

func New(reg *portal.Registry) *Handlers {
	return &Handlers{Registry: reg}
}

var errNoPortal = errors.New("no session portal in context")

type statusResponse struct {
	Status string `json:"status"`
}

var statusOK = statusResponse{Status: "ok"}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// portalOf достаёт портал сессии; без него ответ уже записан.
func portalOf(w http.ResponseWriter, r *http.Request) (*portal.Portal, bool) {
	p := portal.FromRequest(r)
	if p == nil {
		apierrors.WriteError(w, r, errNoPortal)
		return nil, false
	}

	return p, true
}

// pathID — положительный целочисленный параметр пути.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, apierrors.ErrInvalidArgument
	}

	return id, nil
}
