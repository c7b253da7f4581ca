package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthResponse_Tokens_BothNamings(t *testing.T) {
	t.Parallel()

	var camel, snake AuthResponse
	require.NoError(t, json.Unmarshal([]byte(`{"accessToken":"a","refreshToken":"r"}`), &camel))
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"a2","refresh_token":"r2"}`), &snake))

	a, r := camel.Tokens()
	require.Equal(t, "a", a)
	require.Equal(t, "r", r)

	a, r = snake.Tokens()
	require.Equal(t, "a2", a)
	require.Equal(t, "r2", r)
}

func TestUser_DisplayName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Dr. House", User{Name: "Dr. House"}.DisplayName())
	require.Equal(t, "Greg House", User{FirstName: "Greg", LastName: "House"}.DisplayName())
	require.Equal(t, "Greg", User{FirstName: "Greg"}.DisplayName())
	require.Equal(t, "House", User{LastName: "House"}.DisplayName())
}

func TestSearchParams_Values_DropsEmpty(t *testing.T) {
	t.Parallel()

	lo := 2.5
	v := SearchParams{Query: "insulin", MinPrice: &lo, Page: 2}.Values()
	require.Equal(t, "insulin", v.Get("q"))
	require.Equal(t, "2.5", v.Get("minPrice"))
	require.Equal(t, "2", v.Get("page"))
	require.NotContains(t, v, "category")
	require.NotContains(t, v, "maxPrice")
	require.NotContains(t, v, "limit")

	require.Empty(t, SearchParams{}.Values())
}

func TestProduct_Name(t *testing.T) {
	t.Parallel()

	p := Product{Slug: "aspirin-100", ProductTranslations: []ProductTranslation{
		{Locale: "de", Name: "Aspirin DE"},
		{Locale: "en", Name: "Aspirin"},
	}}
	require.Equal(t, "Aspirin", p.Name("en"))
	require.Equal(t, "Aspirin DE", p.Name("fr"))
	require.Equal(t, "aspirin-100", Product{Slug: "aspirin-100"}.Name("en"))
}

func TestEmptyCart_IsNotNil(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(EmptyCart())
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[],"total":0,"count":0}`, string(raw))
}
