package trade

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebmorris/papertrade/internal/api"
	"github.com/calebmorris/papertrade/internal/models"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := api.NewClient(api.WithBaseURL(srv.URL))
	return NewService(client, nil)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestSubmitMarketTrade(t *testing.T) {
	var body map[string]interface{}

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trade/market":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, map[string]string{"message": "Trade executed"})
		case "/trade/portfolio":
			writeJSON(w, map[string]interface{}{
				"data": models.Portfolio{Balance: 750, Holdings: []models.Holding{{CoinID: "bitcoin", Quantity: 2.5}}},
			})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))

	ticket := NewTicket(testCoin())
	ticket.Quantity = "2.5"
	svc.SetTicket(ticket)

	result, err := svc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Trade executed", result.Message)

	assert.Equal(t, "bitcoin", body["coinId"])
	assert.Equal(t, "buy", body["type"])
	assert.Equal(t, 2.5, body["quantity"])

	// Success clears the ticket and refreshes the snapshot.
	assert.Nil(t, svc.Ticket())
	require.NotNil(t, svc.Portfolio())
	assert.Equal(t, 750.0, svc.Portfolio().Balance)
}

func TestSubmitStandingOrder(t *testing.T) {
	var body map[string]interface{}

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trade/order":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, map[string]string{"message": "Order placed"})
		case "/trade/portfolio":
			writeJSON(w, map[string]interface{}{"data": models.Portfolio{}})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))

	ticket := NewTicket(testCoin())
	ticket.OrderType = models.OrderTypeLimit
	ticket.Quantity = "1"
	ticket.LimitPrice = "95"
	svc.SetTicket(ticket)

	_, err := svc.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "limit", body["orderType"])
	assert.Equal(t, 95.0, body["limitPrice"])
	assert.NotContains(t, body, "stopPrice")
}

func TestSubmitInvalidTicket(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected for an invalid ticket")
	}))

	svc.SetTicket(NewTicket(testCoin()))

	_, err := svc.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// A rejected ticket must not claim the in-flight slot.
	_, err = svc.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestSubmitFailureKeepsTicket(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]string{"message": "Insufficient balance"})
	}))

	ticket := NewTicket(testCoin())
	ticket.Quantity = "1000000"
	svc.SetTicket(ticket)

	_, err := svc.Submit(context.Background())
	require.Error(t, err)

	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Insufficient balance", apiErr.Message)

	// The ticket survives so the user can correct and resubmit.
	assert.Same(t, ticket, svc.Ticket())
}

func TestSubmitRefreshFailureDoesNotFailTrade(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trade/market":
			writeJSON(w, map[string]string{"message": "Trade executed"})
		case "/trade/portfolio":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	ticket := NewTicket(testCoin())
	ticket.Quantity = "1"
	svc.SetTicket(ticket)

	result, err := svc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Trade executed", result.Message)
	assert.Nil(t, svc.Ticket())
	assert.Nil(t, svc.Portfolio())
}

func TestSubmitInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trade/market":
			close(entered)
			<-release
			writeJSON(w, map[string]string{"message": "Trade executed"})
		case "/trade/close-position":
			writeJSON(w, map[string]string{"message": "Position closed"})
		case "/trade/portfolio":
			writeJSON(w, map[string]interface{}{"data": models.Portfolio{}})
		}
	}))

	ticket := NewTicket(testCoin())
	ticket.Quantity = "1"
	svc.SetTicket(ticket)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background())
		done <- err
	}()

	<-entered
	_, err := svc.ClosePosition(context.Background(), "bitcoin", 100)
	assert.ErrorIs(t, err, ErrRequestInFlight)

	close(release)
	require.NoError(t, <-done)

	// The slot frees once the first submission completes.
	_, err = svc.ClosePosition(context.Background(), "bitcoin", 100)
	assert.NoError(t, err)
}

func TestClosePositionClampsPercentage(t *testing.T) {
	var body map[string]interface{}

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/trade/close-position":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, map[string]string{"message": "Position closed"})
		case "/trade/portfolio":
			writeJSON(w, map[string]interface{}{"data": models.Portfolio{}})
		}
	}))

	_, err := svc.ClosePosition(context.Background(), "bitcoin", 150)
	require.NoError(t, err)
	assert.Equal(t, 100.0, body["percentage"])
	assert.Equal(t, "bitcoin", body["coinId"])
}
