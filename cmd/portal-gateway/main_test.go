package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/config"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
)

func TestSetupSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := []struct {
		name      string
		env       string
		transport apiclient.Transport
		wantErr   bool
		wantNil   bool
	}{
		{name: "cookie_needs_no_store", env: envProd, transport: apiclient.TransportCookie, wantNil: true},
		{name: "bearer_local_in_memory", env: envLocal, transport: apiclient.TransportBearer},
		{name: "bearer_prod_requires_redis", env: envProd, transport: apiclient.TransportBearer, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Env: tc.env}
			cfg.API.CredentialTransport = string(tc.transport)

			sessions, closeFn, err := setupSessions(ctx, cfg)
			require.NotNil(t, closeFn)
			defer closeFn()

			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tc.wantNil {
				require.Nil(t, sessions)
				return
			}
			_, ok := sessions.(*credentials.MemorySessions)
			require.True(t, ok)
		})
	}
}
