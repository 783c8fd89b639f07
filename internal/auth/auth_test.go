package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer tok-123", want: "tok-123"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "empty token", header: "Bearer   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractBearerToken(r)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	tokens := []TokenConfig{
		{Token: "tok-input", Scopes: []string{"input:rw"}},
		{Token: "tok-watch", Scopes: []string{"events:ro"}},
	}

	t.Run("api key grants admin", func(t *testing.T) {
		p, ok := Authenticate("admin-key", "admin-key", tokens)
		require.True(t, ok)
		assert.True(t, HasAnyScope(p, "anything:at_all"))
	})

	t.Run("scoped token", func(t *testing.T) {
		p, ok := Authenticate("tok-input", "admin-key", tokens)
		require.True(t, ok)
		assert.True(t, HasAnyScope(p, "input:rw"))
		// rw implies ro
		assert.True(t, HasAnyScope(p, "input:ro"))
		assert.False(t, HasAnyScope(p, "events:ro"))
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		_, ok := Authenticate("nope", "admin-key", tokens)
		assert.False(t, ok)
	})

	t.Run("empty presented token rejected", func(t *testing.T) {
		_, ok := Authenticate("", "", nil)
		assert.False(t, ok)
	})
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	p := Principal{Token: "tok", Scopes: map[string]struct{}{"*": {}}}
	r, _ := http.NewRequest(http.MethodGet, "/", nil)

	ctx := WithPrincipal(r.Context(), p)
	got, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, p.Token, got.Token)

	_, ok = PrincipalFromContext(r.Context())
	assert.False(t, ok)
}
