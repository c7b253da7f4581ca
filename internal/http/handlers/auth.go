package handlers

import (
	"errors"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	Expired   bool      `json:"expired"`
}

type activateResponse struct {
	User          *models.User `json:"user,omitempty"`
	Authenticated bool         `json:"authenticated"`
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	u, err := p.Session.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	u, err := p.Session.Signup(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

// Logout закрывает сессию и выбрасывает портал: следующий запрос получит новый Budget.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	err := p.Session.Logout(r.Context())
	h.Registry.Drop(p.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	if err := p.Session.Refresh(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.ForgotPasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := p.Session.ForgotPassword(r.Context(), in.Email); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, statusOK)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.ResetPasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := p.Session.ResetPassword(r.Context(), in.Code, in.Password); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.ChangePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	if err := p.Session.ChangePassword(r.Context(), in.CurrentPassword, in.NewPassword); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusOK)
}

// ActivateAccount подтверждает e-mail; если бэкенд выдал пару, сессия открывается сразу.
func (h *Handlers) ActivateAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.VerifyEmailRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	u, authed, err := p.Session.VerifyEmail(r.Context(), in.Code)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := activateResponse{Authenticated: authed}
	if authed {
		out.User = &u
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	u, err := p.Session.FetchProfile(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	var in models.ProfileUpdate
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrInvalidArgument)
		return
	}

	u, err := p.Session.UpdateProfile(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// Me — кто вошёл, по claims access-токена сессии, без запроса к бэкенду.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := portalOf(w, r)
	if !ok {
		return
	}

	pair, err := p.Client().Store().Get(r.Context())
	if errors.Is(err, credentials.ErrNotFound) || (err == nil && pair.AccessToken == "") {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	claims, err := credentials.ParseClaims(pair.AccessToken)
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrUnauthenticated)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:        claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		ExpiresAt: claims.ExpiresAt,
		Expired:   !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(time.Now()),
	})
}
