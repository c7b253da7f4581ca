package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
	"github.com/pribylovaa/pharma-portal/internal/models"
)

// recorded — запрос, дошедший до фейкового бэкенда.
type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// fakeServer отвечает по таблице "METHOD /path" -> (status, body) и запоминает запросы.
type fakeServer struct {
	srv *httptest.Server

	mu     sync.Mutex
	routes map[string]route
	calls  []recorded
}

type route struct {
	status int
	body   string
}

func newFakeServer(t *testing.T, routes map[string]route) *fakeServer {
	t.Helper()

	f := &fakeServer{routes: routes}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.calls = append(f.calls, recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   strings.TrimSpace(string(raw)),
		})
		rt, ok := f.routes[r.Method+" "+r.URL.Path]
		f.mu.Unlock()

		if !ok {
			rt = route{status: http.StatusNotFound, body: `{"message":"Cannot ` + r.Method + ` ` + r.URL.Path + `"}`}
		}
		if rt.status == 0 {
			rt.status = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rt.status)
		_, _ = io.WriteString(w, rt.body)
	}))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeServer) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.calls) == 0 {
		return recorded{}
	}

	return f.calls[len(f.calls)-1]
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func newTestAPI(t *testing.T, f *fakeServer, store credentials.Store) *API {
	t.Helper()

	tr := &http.Transport{}
	t.Cleanup(tr.CloseIdleConnections)

	c, err := apiclient.New(apiclient.Options{
		BaseURL:    f.srv.URL,
		HTTPClient: &http.Client{Transport: tr},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, store)
	require.NoError(t, err)

	a, err := New(c)
	require.NoError(t, err)

	return a
}

func loggedIn() *credentials.MemoryStore {
	return credentials.NewMemoryStore(credentials.Pair{AccessToken: "at", RefreshToken: "rt"})
}

func TestNew_NilClient(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"POST /auth/signin": {body: `{"access_token":"a","refresh_token":"r","user":{"id":"u1","email":"doc@clinic.test"}}`},
	})
	a := newTestAPI(t, f, credentials.NewMemoryStore(credentials.Pair{}))

	resp, err := a.Auth.Login(context.Background(), models.LoginRequest{Email: "doc@clinic.test", Password: "pw"})
	require.NoError(t, err)

	at, rt := resp.Tokens()
	require.Equal(t, "a", at)
	require.Equal(t, "r", rt)
	require.Equal(t, "u1", resp.User.ID)
	require.JSONEq(t, `{"email":"doc@clinic.test","password":"pw"}`, f.last().Body)
}

func TestAuth_Endpoints(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"POST /auth/logout":           {body: `{}`},
		"POST /auth/forgot-password":  {body: `{"message":"sent"}`},
		"POST /auth/reset-password":   {body: `{}`},
		"POST /auth/change-password":  {body: `{}`},
		"GET /auth/profile":           {body: `{"id":"u1","email":"doc@clinic.test","firstName":"Greg","lastName":"House"}`},
		"PUT /auth/profile":           {body: `{"id":"u1","email":"new@clinic.test"}`},
		"POST /auth/activate-account": {body: `{"message":"ok","accessToken":"a","refreshToken":"r"}`},
	})
	a := newTestAPI(t, f, loggedIn())
	ctx := context.Background()

	require.NoError(t, a.Auth.Logout(ctx))
	require.Equal(t, "/auth/logout", f.last().Path)

	require.NoError(t, a.Auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "doc@clinic.test"}))
	require.JSONEq(t, `{"email":"doc@clinic.test"}`, f.last().Body)

	require.NoError(t, a.Auth.ResetPassword(ctx, models.ResetPasswordRequest{Code: "123", Password: "pw"}))
	require.NoError(t, a.Auth.ChangePassword(ctx, models.ChangePasswordRequest{CurrentPassword: "a", NewPassword: "b"}))
	require.JSONEq(t, `{"currentPassword":"a","newPassword":"b"}`, f.last().Body)

	u, err := a.Auth.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "Greg House", u.DisplayName())

	email := "new@clinic.test"
	u, err = a.Auth.UpdateProfile(ctx, models.ProfileUpdate{Email: &email})
	require.NoError(t, err)
	require.Equal(t, email, u.Email)
	require.Equal(t, http.MethodPut, f.last().Method)
	require.JSONEq(t, `{"email":"new@clinic.test"}`, f.last().Body)

	vr, err := a.Auth.VerifyEmail(ctx, models.VerifyEmailRequest{Code: "9999"})
	require.NoError(t, err)
	at, _ := vr.Tokens()
	require.Equal(t, "a", at)
}

func TestProducts_SearchDropsEmptyParams(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"GET /products/search": {body: `{"data":[{"id":1,"slug":"aspirin"}],"meta":{"page":1,"limit":10,"total":1,"pages":1}}`},
	})
	a := newTestAPI(t, f, loggedIn())

	page, err := a.Products.Search(context.Background(), models.SearchParams{Query: "aspirin", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, 1, page.Meta.Total)
	require.Equal(t, "limit=10&q=aspirin", f.last().Query)
}

func TestProducts_CartFlow(t *testing.T) {
	t.Parallel()

	cart := `{"items":[{"productId":7,"quantity":2,"product":{"id":7,"slug":"x"},"subtotal":20}],"total":20,"count":2}`
	f := newFakeServer(t, map[string]route{
		"GET /products/cart":             {body: cart},
		"POST /products/cart/add":        {body: cart},
		"PATCH /products/cart/update/7":  {body: cart},
		"DELETE /products/cart/remove/7": {body: `{"items":[],"total":0,"count":0}`},
		"POST /products/cart/clear":      {body: ``},
		"POST /products/checkout":        {body: `{"message":"ok","orderId":15,"total":20,"status":"pending"}`},
		"POST /products/bookmark":        {body: ``},
		"DELETE /products/bookmark/7":    {body: ``},
		"GET /products/bookmarks":        {body: `{"items":[{"id":7,"name":"X","price":10,"slug":"x","createdAt":"2024-01-01"}],"count":1}`},
		"GET /products/7/is-bookmarked":  {body: `true`},
		"GET /products/7":                {body: `{"id":7,"slug":"x"}`},
		"GET /products":                  {body: `[{"id":7,"slug":"x"}]`},
	})
	a := newTestAPI(t, f, loggedIn())
	ctx := context.Background()

	c, err := a.Products.Cart(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, c.Count)

	_, err = a.Products.AddToCart(ctx, models.AddToCartRequest{ProductID: 7, Quantity: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"productId":7,"quantity":2}`, f.last().Body)

	qty := 3
	_, err = a.Products.UpdateCartItem(ctx, 7, models.UpdateCartItemRequest{Quantity: &qty})
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, f.last().Method)

	c, err = a.Products.RemoveFromCart(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, c.Items)

	require.NoError(t, a.Products.ClearCart(ctx))

	co, err := a.Products.Checkout(ctx, models.CheckoutRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	require.Equal(t, 15, co.OrderID)

	require.NoError(t, a.Products.AddBookmark(ctx, 7))
	require.JSONEq(t, `{"productId":7}`, f.last().Body)
	require.NoError(t, a.Products.RemoveBookmark(ctx, 7))

	wl, err := a.Products.Bookmarks(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, wl.Count)

	ok, err := a.Products.IsBookmarked(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)

	p, err := a.Products.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "x", p.Slug)

	list, err := a.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestProducts_NotFoundKeepsBackendMessage(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"GET /products/99": {status: http.StatusNotFound, body: `{"statusCode":404,"message":"Product not found"}`},
	})
	a := newTestAPI(t, f, loggedIn())

	_, err := a.Products.Get(context.Background(), 99)
	require.Error(t, err)

	var he *apiclient.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusNotFound, he.Status)
	require.Equal(t, "Product not found", he.Message)
}

func TestOrders_ListsReturnEmptyOnFailure(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"GET /orders/history":        {status: http.StatusInternalServerError, body: `{"message":"db down"}`},
		"GET /orders":                {status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`},
		"POST /auth/refresh":         {status: http.StatusUnauthorized, body: `{"message":"Invalid refresh token"}`},
		"GET /orders/status/pending": {body: `[{"id":3,"status":"pending"}]`},
	})
	store := loggedIn()
	a := newTestAPI(t, f, store)
	ctx := context.Background()

	h := a.Orders.History(ctx)
	require.NotNil(t, h)
	require.Empty(t, h)

	all := a.Orders.All(ctx)
	require.NotNil(t, all)
	require.Empty(t, all)

	// Отказ обновления терминальный: хранилище очищено.
	_, err := store.Get(ctx)
	require.ErrorIs(t, err, credentials.ErrNotFound)

	pending := a.Orders.ByStatus(ctx, "pending")
	require.Len(t, pending, 1)
	require.Equal(t, "pending", pending[0].Status)
}

func TestOrders_GetAndUpdatePropagateErrors(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"GET /orders/5":          {status: http.StatusForbidden, body: `{"message":"Forbidden resource"}`},
		"PATCH /orders/6/status": {body: `{"id":6,"status":"shipped"}`},
	})
	a := newTestAPI(t, f, loggedIn())
	ctx := context.Background()

	_, err := a.Orders.Get(ctx, 5)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, apiclient.StatusOf(err))

	o, err := a.Orders.UpdateStatus(ctx, 6, "shipped")
	require.NoError(t, err)
	require.Equal(t, "shipped", o.Status)
	require.JSONEq(t, `{"status":"shipped"}`, f.last().Body)
}

func TestOrders_GetReauthPropagates(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"GET /orders/5":      {status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`},
		"POST /auth/refresh": {status: http.StatusUnauthorized, body: `{"message":"Invalid refresh token"}`},
	})
	a := newTestAPI(t, f, loggedIn())

	_, err := a.Orders.Get(context.Background(), 5)
	require.True(t, apiclient.IsReauthRequired(err))
}

func TestPrograms_Endpoints(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"GET /access-program":                {body: `[{"id":1,"name":"EAP-1","status":"open"}]`},
		"GET /access-program/1":              {body: `{"id":1,"name":"EAP-1"}`},
		"GET /access-program/1/patients":     {body: `[{"id":10,"patientId":"P-10","firstName":"Ann","lastName":"Lee","status":"active"}]`},
		"GET /access-program/patients/all":   {body: `[]`},
		"GET /access-program/patients/10":    {body: `{"id":10,"patientId":"P-10"}`},
		"POST /access-program/patients":      {body: `{"id":11,"patientId":"P-11"}`},
		"PATCH /access-program/patients/11":  {body: `{"id":11,"patientId":"P-11","phone":"+100"}`},
		"DELETE /access-program/patients/11": {body: ``},
	})
	a := newTestAPI(t, f, loggedIn())
	ctx := context.Background()

	progs, err := a.Programs.List(ctx)
	require.NoError(t, err)
	require.Len(t, progs, 1)

	p, err := a.Programs.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "EAP-1", p.Name)

	pts, err := a.Programs.PatientsFor(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "P-10", pts[0].PatientID)

	all, err := a.Programs.Patients(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	pt, err := a.Programs.Patient(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 10, pt.ID)

	pt, err = a.Programs.CreatePatient(ctx, models.PatientInput{FirstName: "Bob", LastName: "Ray", ProgramID: 1})
	require.NoError(t, err)
	require.Equal(t, 11, pt.ID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.last().Body), &sent))
	require.Equal(t, "Bob", sent["firstName"])
	require.NotContains(t, sent, "email")

	pt, err = a.Programs.UpdatePatient(ctx, 11, models.PatientInput{Phone: "+100"})
	require.NoError(t, err)
	require.Equal(t, "+100", pt.Phone)
	require.JSONEq(t, `{"phone":"+100"}`, f.last().Body)

	require.NoError(t, a.Programs.DeletePatient(ctx, 11))
	require.Equal(t, 8, f.count())
}

func TestAuth_LoginWrongPassword_NoRefresh(t *testing.T) {
	t.Parallel()

	f := newFakeServer(t, map[string]route{
		"POST /auth/signin": {status: http.StatusUnauthorized, body: `{"statusCode":401,"message":"Invalid credentials"}`},
	})
	a := newTestAPI(t, f, credentials.NewMemoryStore(credentials.Pair{}))

	_, err := a.Auth.Login(context.Background(), models.LoginRequest{Email: "doc@clinic.test", Password: "bad"})
	require.Error(t, err)
	require.False(t, apiclient.IsReauthRequired(err))

	var he *apiclient.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, "Invalid credentials", he.Message)
	require.Equal(t, 1, f.count())
}

// Вход обнуляет бюджет обновлений, накопленный до него.
func TestAuth_LoginResetsRefreshBudget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFakeServer(t, map[string]route{
		"GET /orders/1":      {status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`},
		"POST /auth/refresh": {status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`},
		"POST /auth/signin":  {body: `{"accessToken":"a","refreshToken":"r"}`},
	})
	st := credentials.NewMemoryStore(credentials.Pair{})
	a := newTestAPI(t, f, st)

	for i := 1; i <= 2; i++ {
		require.NoError(t, st.Set(ctx, credentials.Pair{AccessToken: "stale", RefreshToken: "stale"}))
		_, err := a.Orders.Get(ctx, 1)
		require.True(t, apiclient.IsReauthRequired(err))
		require.Equal(t, i, a.Client().Budget().Attempts())
	}

	_, err := a.Auth.Login(ctx, models.LoginRequest{Email: "doc@clinic.test", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, 0, a.Client().Budget().Attempts())
}

func TestProducts_GuestReadsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFakeServer(t, map[string]route{
		"GET /products/cart":            {status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`},
		"GET /products/bookmarks":       {status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`},
		"GET /products/3/is-bookmarked": {status: http.StatusUnauthorized, body: `{"message":"Unauthorized"}`},
	})
	a := newTestAPI(t, f, credentials.NewMemoryStore(credentials.Pair{}))

	cart, err := a.Products.Cart(ctx)
	require.NoError(t, err)
	require.Equal(t, models.EmptyCart(), cart)

	w, err := a.Products.Bookmarks(ctx)
	require.NoError(t, err)
	require.Empty(t, w.Items)
	require.NotNil(t, w.Items)

	marked, err := a.Products.IsBookmarked(ctx, 3)
	require.NoError(t, err)
	require.False(t, marked)

	require.Equal(t, 3, f.count(), "no refresh without a refresh token")
}
