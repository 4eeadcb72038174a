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

// recordingServer captures the method and path of each request and
// answers with a fixed JSON body.
func recordingServer(t *testing.T, body interface{}) (*Client, *[]string) {
	t.Helper()

	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return NewClient(WithBaseURL(srv.URL)), &seen
}

func TestFriendRequestEndpoints(t *testing.T) {
	client, seen := recordingServer(t, map[string]string{"message": "ok"})
	ctx := context.Background()

	require.NoError(t, client.SendFriendRequest(ctx, "u2"))
	require.NoError(t, client.AcceptFriendRequest(ctx, "u2"))
	require.NoError(t, client.RejectFriendRequest(ctx, "u2"))
	require.NoError(t, client.RemoveFriend(ctx, "u2"))

	assert.Equal(t, []string{
		"POST /social/friends/request/u2",
		"POST /social/friends/accept/u2",
		"POST /social/friends/reject/u2",
		"DELETE /social/friends/u2",
	}, *seen)
}

func TestFollowEndpoints(t *testing.T) {
	client, seen := recordingServer(t, map[string]interface{}{
		"data": []models.SocialUser{{ID: "u2", Name: "Bee"}},
	})
	ctx := context.Background()

	require.NoError(t, client.FollowUser(ctx, "u2"))
	require.NoError(t, client.UnfollowUser(ctx, "u2"))

	followers, err := client.Followers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bee", followers[0].Name)

	following, err := client.Following(ctx)
	require.NoError(t, err)
	assert.Len(t, following, 1)

	assert.Equal(t, []string{
		"POST /social/follow/u2",
		"DELETE /social/follow/u2",
		"GET /social/followers",
		"GET /social/following",
	}, *seen)
}

func TestSearchUsersEscapesQuery(t *testing.T) {
	client, seen := recordingServer(t, map[string]interface{}{"data": nil})

	hits, err := client.SearchUsers(context.Background(), "ada lovelace")
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	assert.Equal(t, []string{"GET /users/search?q=ada+lovelace"}, *seen)
}

func TestProfileByID(t *testing.T) {
	client, seen := recordingServer(t, map[string]interface{}{
		"data": map[string]string{"id": "u2", "name": "Bee"},
	})

	u, err := client.ProfileByID(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "Bee", u.Name)
	assert.Equal(t, "beginner", u.Experience)

	assert.Equal(t, []string{"GET /user/profile/u2"}, *seen)
}

func TestSocialStatus(t *testing.T) {
	client, seen := recordingServer(t, map[string]interface{}{
		"data": models.SocialStatus{IsFriend: true, IsFollowing: true},
	})

	status, err := client.SocialStatus(context.Background(), "u2")
	require.NoError(t, err)
	assert.True(t, status.IsFriend)
	assert.True(t, status.IsFollowing)
	assert.False(t, status.RequestPending)

	assert.Equal(t, []string{"GET /user/u2/social-status"}, *seen)
}

func TestSocialStatusEmptyData(t *testing.T) {
	client, _ := recordingServer(t, map[string]interface{}{"data": nil})

	status, err := client.SocialStatus(context.Background(), "u2")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.IsFriend)
}

func TestUserTrades(t *testing.T) {
	client, seen := recordingServer(t, map[string]interface{}{
		"data": []models.TradeRecord{{ID: "t1", CoinSymbol: "btc", Quantity: 0.5}},
	})

	trades, err := client.UserTrades(context.Background(), "u2")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "btc", trades[0].CoinSymbol)

	assert.Equal(t, []string{"GET /user/u2/trades"}, *seen)
}
