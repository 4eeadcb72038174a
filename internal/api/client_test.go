package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmorris/papertrade/internal/models"
)

func TestBearerInjection(t *testing.T) {
	var gotAuth, gotRequestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(map[string]*models.User{"user": {ID: "u1"}})
	}))
	defer srv.Close()

	client := NewClient(
		WithBaseURL(srv.URL),
		WithCredentials(StaticToken("tok-abc")),
	)

	_, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Len(t, gotRequestID, 8)
}

func TestNoBearerWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"data": []models.Coin{}})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithCredentials(StaticToken("")))

	_, err := client.MarketData(context.Background(), 1, 10)
	require.NoError(t, err)
}

func TestUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
	}))
	defer srv.Close()

	hookCalls := 0
	client := NewClient(
		WithBaseURL(srv.URL),
		WithUnauthorizedHook(func() { hookCalls++ }),
	)

	_, err := client.Portfolio(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, hookCalls)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.Unauthorized())
	assert.Equal(t, "token expired", apiErr.Message)
}

func TestErrorDecodePrefersMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "Insufficient balance"})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))

	_, err := client.ExecuteMarketTrade(context.Background(), "bitcoin", "btc", models.SideBuy, 100)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Insufficient balance", apiErr.Message)
	assert.Equal(t, "/trade/market", apiErr.Endpoint)
}

func TestErrorDecodeFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))

	_, err := client.Orders(context.Background())
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestMeWithTokenSkipsUnauthorizedHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-callback", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookCalls := 0
	client := NewClient(
		WithBaseURL(srv.URL),
		WithCredentials(StaticToken("tok-session")),
		WithUnauthorizedHook(func() { hookCalls++ }),
	)

	_, err := client.MeWithToken(context.Background(), "tok-callback")
	require.Error(t, err)
	assert.Zero(t, hookCalls, "A rejected callback token must not tear down the session")
}

func TestNilDataEnvelopes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"data": nil})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	ctx := context.Background()

	coins, err := client.SearchCoins(ctx, "bitcoin")
	require.NoError(t, err)
	assert.NotNil(t, coins)
	assert.Empty(t, coins)

	orders, err := client.Orders(ctx)
	require.NoError(t, err)
	assert.NotNil(t, orders)

	portfolio, err := client.Portfolio(ctx)
	require.NoError(t, err)
	require.NotNil(t, portfolio)
	assert.NotNil(t, portfolio.Holdings)
}

func TestUserNormalizeOnLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "tok-1",
			"user":  map[string]string{"id": "u1", "name": "Ada"},
		})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))

	resp, err := client.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "beginner", resp.User.Experience)
	assert.NotNil(t, resp.User.Interests)
}
