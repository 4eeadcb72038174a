package api

import (
	"context"
	"net/url"

	"github.com/calebmorris/papertrade/internal/models"
)

// SendFriendRequest sends a friend request to another user.
func (c *Client) SendFriendRequest(ctx context.Context, userID string) error {
	return c.post(ctx, "/social/friends/request/"+url.PathEscape(userID), nil, nil)
}

// AcceptFriendRequest accepts a pending request from a user.
func (c *Client) AcceptFriendRequest(ctx context.Context, userID string) error {
	return c.post(ctx, "/social/friends/accept/"+url.PathEscape(userID), nil, nil)
}

// RejectFriendRequest rejects a pending request from a user.
func (c *Client) RejectFriendRequest(ctx context.Context, userID string) error {
	return c.post(ctx, "/social/friends/reject/"+url.PathEscape(userID), nil, nil)
}

// RemoveFriend removes an existing friend.
func (c *Client) RemoveFriend(ctx context.Context, userID string) error {
	return c.delete(ctx, "/social/friends/"+url.PathEscape(userID), nil)
}

// Friends lists the current user's friends.
func (c *Client) Friends(ctx context.Context) ([]models.SocialUser, error) {
	var resp dataEnvelope[[]models.SocialUser]
	if err := c.get(ctx, "/social/friends", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.SocialUser{}
	}
	return resp.Data, nil
}

// FriendRequests lists pending incoming friend requests.
func (c *Client) FriendRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var resp dataEnvelope[[]models.FriendRequest]
	if err := c.get(ctx, "/social/friends/requests", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.FriendRequest{}
	}
	return resp.Data, nil
}

// FollowUser follows another user.
func (c *Client) FollowUser(ctx context.Context, userID string) error {
	return c.post(ctx, "/social/follow/"+url.PathEscape(userID), nil, nil)
}

// UnfollowUser unfollows another user.
func (c *Client) UnfollowUser(ctx context.Context, userID string) error {
	return c.delete(ctx, "/social/follow/"+url.PathEscape(userID), nil)
}

// Followers lists accounts following the current user.
func (c *Client) Followers(ctx context.Context) ([]models.SocialUser, error) {
	var resp dataEnvelope[[]models.SocialUser]
	if err := c.get(ctx, "/social/followers", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.SocialUser{}
	}
	return resp.Data, nil
}

// Following lists accounts the current user follows.
func (c *Client) Following(ctx context.Context) ([]models.SocialUser, error) {
	var resp dataEnvelope[[]models.SocialUser]
	if err := c.get(ctx, "/social/following", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.SocialUser{}
	}
	return resp.Data, nil
}

// ActivityFeed retrieves the social activity feed.
func (c *Client) ActivityFeed(ctx context.Context) ([]models.Activity, error) {
	var resp dataEnvelope[[]models.Activity]
	if err := c.get(ctx, "/social/feed", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.Activity{}
	}
	return resp.Data, nil
}

// SearchUsers searches accounts by name.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.SocialUser, error) {
	var resp dataEnvelope[[]models.SocialUser]
	if err := c.get(ctx, "/users/search?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.SocialUser{}
	}
	return resp.Data, nil
}
