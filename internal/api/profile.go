package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/calebmorris/papertrade/internal/models"
)

// Profile retrieves the current user's profile.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var resp dataEnvelope[*models.User]
	if err := c.get(ctx, "/user/profile", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("profile: empty response")
	}
	resp.Data.Normalize()
	return resp.Data, nil
}

// ProfileByID retrieves another user's public profile.
func (c *Client) ProfileByID(ctx context.Context, userID string) (*models.User, error) {
	var resp dataEnvelope[*models.User]
	if err := c.get(ctx, "/user/profile/"+url.PathEscape(userID), &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("profile %s: empty response", userID)
	}
	resp.Data.Normalize()
	return resp.Data, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, update *models.ProfileUpdate) (*models.User, error) {
	var resp dataEnvelope[*models.User]
	if err := c.put(ctx, "/user/profile", update, &resp); err != nil {
		return nil, err
	}
	if resp.Data != nil {
		resp.Data.Normalize()
	}
	return resp.Data, nil
}

// CompleteOnboarding submits onboarding details and marks the account
// onboarded. Returns the updated user.
func (c *Client) CompleteOnboarding(ctx context.Context, details *models.OnboardingDetails) (*models.User, error) {
	details.OnboardingComplete = true

	var resp struct {
		User *models.User `json:"user"`
	}
	if err := c.post(ctx, "/user/onboarding", details, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("onboarding: empty response")
	}
	resp.User.Normalize()
	return resp.User, nil
}

// UserTrades retrieves another user's visible trades.
func (c *Client) UserTrades(ctx context.Context, userID string) ([]models.TradeRecord, error) {
	var resp dataEnvelope[[]models.TradeRecord]
	if err := c.get(ctx, "/user/"+url.PathEscape(userID)+"/trades", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.TradeRecord{}
	}
	return resp.Data, nil
}

// SocialStatus retrieves the relationship between the current user and
// another account.
func (c *Client) SocialStatus(ctx context.Context, userID string) (*models.SocialStatus, error) {
	var resp dataEnvelope[*models.SocialStatus]
	if err := c.get(ctx, "/user/"+url.PathEscape(userID)+"/social-status", &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = &models.SocialStatus{}
	}
	return resp.Data, nil
}
