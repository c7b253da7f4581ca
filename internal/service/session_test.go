package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
	"github.com/pribylovaa/pharma-portal/internal/models"
	"github.com/pribylovaa/pharma-portal/mocks"
)

func newSession(t *testing.T, store credentials.Store) (*Session, *mocks.MockAuthAPI) {
	t.Helper()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthAPI(ctrl)

	return NewSession(auth, store), auth
}

func TestSession_Login_StoresBothTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := credentials.NewMemoryStore(credentials.Pair{})
	s, auth := newSession(t, store)

	auth.EXPECT().
		Login(gomock.Any(), models.LoginRequest{Email: "doc@clinic.test", Password: "pw"}).
		Return(models.AuthResponse{
			AccessTokenAlt:  "a",
			RefreshTokenAlt: "r",
			User:            &models.User{ID: "u1", FirstName: "Greg", LastName: "House"},
		}, nil)

	u, err := s.Login(ctx, " doc@clinic.test ", "pw")
	require.NoError(t, err)
	require.Equal(t, "Greg House", u.Name)

	p, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, credentials.Pair{AccessToken: "a", RefreshToken: "r"}, p)
	require.True(t, s.Authenticated(ctx))

	cached, ok := s.User()
	require.True(t, ok)
	require.Equal(t, "u1", cached.ID)
}

func TestSession_Login_MissingToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		resp models.AuthResponse
	}{
		{name: "no access", resp: models.AuthResponse{RefreshToken: "r"}},
		{name: "no refresh", resp: models.AuthResponse{AccessToken: "a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := credentials.NewMemoryStore(credentials.Pair{})
			s, auth := newSession(t, store)

			auth.EXPECT().Login(gomock.Any(), gomock.Any()).Return(tc.resp, nil)

			_, err := s.Login(ctx, "doc@clinic.test", "pw")
			require.ErrorIs(t, err, ErrMissingToken)
			require.False(t, s.Authenticated(ctx))
		})
	}
}

func TestSession_Login_InvalidInput(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, credentials.NewMemoryStore(credentials.Pair{}))

	_, err := s.Login(context.Background(), "not-an-email", "pw")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Login(context.Background(), "doc@clinic.test", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSession_Login_BackendErrorPropagates(t *testing.T) {
	t.Parallel()

	s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{}))

	auth.EXPECT().Login(gomock.Any(), gomock.Any()).
		Return(models.AuthResponse{}, &apiclient.HTTPError{Status: http.StatusUnauthorized, Message: "Invalid credentials"})

	_, err := s.Login(context.Background(), "doc@clinic.test", "bad")
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusOf(err))
}

func TestSession_Signup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := credentials.NewMemoryStore(credentials.Pair{})
	s, auth := newSession(t, store)

	in := models.RegisterRequest{Email: "new@clinic.test", Password: "pw", FirstName: "Ann"}
	auth.EXPECT().Register(gomock.Any(), in).
		Return(models.AuthResponse{AccessToken: "a", RefreshToken: "r", User: &models.User{ID: "u2", FirstName: "Ann"}}, nil)

	u, err := s.Signup(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "Ann", u.Name)
	require.True(t, s.Authenticated(ctx))
}

// Выход: бэкенд недоступен, но локальная пара всё равно очищается.
func TestSession_Logout_BackendFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"})
	s, auth := newSession(t, store)

	auth.EXPECT().Logout(gomock.Any()).Return(&apiclient.NetworkError{Err: errors.New("connection refused")})

	require.NoError(t, s.Logout(ctx))
	require.False(t, s.Authenticated(ctx))

	_, ok := s.User()
	require.False(t, ok)
}

func TestSession_Logout_CallsBackendFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthAPI(ctrl)
	store := mocks.NewMockStore(ctrl)

	gomock.InOrder(
		auth.EXPECT().Logout(gomock.Any()).Return(nil),
		store.EXPECT().Clear(gomock.Any()).Return(nil),
	)

	require.NoError(t, NewSession(auth, store).Logout(ctx))
}

func TestSession_FetchProfile(t *testing.T) {
	t.Parallel()

	unauthorized := &apiclient.HTTPError{Status: http.StatusUnauthorized}

	t.Run("first try", func(t *testing.T) {
		t.Parallel()

		s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"}))
		auth.EXPECT().Profile(gomock.Any()).Return(models.User{ID: "u1"}, nil)

		u, err := s.FetchProfile(context.Background())
		require.NoError(t, err)
		require.Equal(t, "u1", u.ID)
	})

	t.Run("refresh then refetch", func(t *testing.T) {
		t.Parallel()

		s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"}))
		gomock.InOrder(
			auth.EXPECT().Profile(gomock.Any()).Return(models.User{}, unauthorized),
			auth.EXPECT().Refresh(gomock.Any()).Return(nil),
			auth.EXPECT().Profile(gomock.Any()).Return(models.User{ID: "u1"}, nil),
		)

		u, err := s.FetchProfile(context.Background())
		require.NoError(t, err)
		require.Equal(t, "u1", u.ID)
	})

	t.Run("refresh fails logs out", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"}))
		auth.EXPECT().Profile(gomock.Any()).Return(models.User{}, unauthorized)
		auth.EXPECT().Refresh(gomock.Any()).Return(apiclient.ErrRefreshRejected)

		_, err := s.FetchProfile(ctx)
		require.ErrorIs(t, err, apiclient.ErrRefreshRejected)
		require.False(t, s.Authenticated(ctx))
	})

	t.Run("second fetch fails logs out", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"}))
		auth.EXPECT().Profile(gomock.Any()).Return(models.User{}, unauthorized).Times(2)
		auth.EXPECT().Refresh(gomock.Any()).Return(nil)

		_, err := s.FetchProfile(ctx)
		require.Error(t, err)
		require.False(t, s.Authenticated(ctx))
	})
}

func TestSession_VerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("tokens returned", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{}))
		auth.EXPECT().VerifyEmail(gomock.Any(), models.VerifyEmailRequest{Code: "1234"}).
			Return(models.AuthResponse{
				AccessTokenAlt:  "a",
				RefreshTokenAlt: "r",
				User:            &models.User{ID: "u1", FirstName: "Greg", LastName: "House"},
			}, nil)

		u, ok, err := s.VerifyEmail(ctx, "1234")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "Greg House", u.Name)
		require.True(t, s.Authenticated(ctx))
	})

	t.Run("only message", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{}))
		auth.EXPECT().VerifyEmail(gomock.Any(), gomock.Any()).
			Return(models.AuthResponse{Message: "verified", AccessToken: "a"}, nil)

		_, ok, err := s.VerifyEmail(ctx, "1234")
		require.NoError(t, err)
		require.False(t, ok)
		require.False(t, s.Authenticated(ctx))
	})

	t.Run("empty code", func(t *testing.T) {
		t.Parallel()

		s, _ := newSession(t, credentials.NewMemoryStore(credentials.Pair{}))
		_, _, err := s.VerifyEmail(context.Background(), "  ")
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestSession_PasswordFlows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"}))

	auth.EXPECT().ChangePassword(gomock.Any(), models.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "new"}).Return(nil)
	auth.EXPECT().ForgotPassword(gomock.Any(), models.ForgotPasswordRequest{Email: "doc@clinic.test"}).Return(nil)
	auth.EXPECT().ResetPassword(gomock.Any(), models.ResetPasswordRequest{Code: "c", Password: "p"}).Return(nil)

	require.NoError(t, s.ChangePassword(ctx, "old", "new"))
	require.NoError(t, s.ForgotPassword(ctx, "doc@clinic.test"))
	require.NoError(t, s.ResetPassword(ctx, "c", "p"))

	require.ErrorIs(t, s.ChangePassword(ctx, "", "new"), ErrInvalidInput)
	require.ErrorIs(t, s.ForgotPassword(ctx, "nope"), ErrInvalidInput)
	require.ErrorIs(t, s.ResetPassword(ctx, "c", ""), ErrInvalidInput)
}

func TestSession_UpdateProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, auth := newSession(t, credentials.NewMemoryStore(credentials.Pair{AccessToken: "a", RefreshToken: "r"}))

	name := "Dr. House"
	auth.EXPECT().UpdateProfile(gomock.Any(), models.ProfileUpdate{Name: &name}).
		Return(models.User{ID: "u1", Name: name}, nil)

	u, err := s.UpdateProfile(ctx, models.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, u.Name)

	cached, ok := s.User()
	require.True(t, ok)
	require.Equal(t, name, cached.Name)

	bad := "nope"
	_, err = s.UpdateProfile(ctx, models.ProfileUpdate{Email: &bad})
	require.ErrorIs(t, err, ErrInvalidInput)
}
