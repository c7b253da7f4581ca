package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "github.com/pribylovaa/pharma-portal/internal/errors"
)

func TestSearchParams(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"q":         {"aspirin"},
		"category":  {"analgesics"},
		"minPrice":  {"1.5"},
		"page":      {"2"},
		"limit":     {"20"},
		"sortOrder": {"desc"},
	}

	sp, err := searchParams(q)
	require.NoError(t, err)
	require.Equal(t, "aspirin", sp.Query)
	require.Equal(t, "analgesics", sp.Category)
	require.NotNil(t, sp.MinPrice)
	require.InDelta(t, 1.5, *sp.MinPrice, 1e-9)
	require.Nil(t, sp.MaxPrice)
	require.Equal(t, 2, sp.Page)
	require.Equal(t, 20, sp.Limit)
	require.Equal(t, "desc", sp.SortOrder)
}

func TestSearchParams_Invalid(t *testing.T) {
	t.Parallel()

	for _, q := range []url.Values{
		{"minPrice": {"cheap"}},
		{"maxPrice": {"-1"}},
		{"page": {"two"}},
		{"limit": {"-5"}},
		{"sortOrder": {"sideways"}},
	} {
		_, err := searchParams(q)
		require.ErrorIs(t, err, apierrors.ErrInvalidArgument, q.Encode())
	}
}
