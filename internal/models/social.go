package models

import "time"

// SocialUser is the public view of another account used in friend lists,
// follow lists, and user search results.
type SocialUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// FriendRequest is a pending incoming request.
type FriendRequest struct {
	From      SocialUser `json:"from"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SocialStatus describes the relationship between the current user and
// another account, from /user/:id/social-status.
type SocialStatus struct {
	IsFriend       bool `json:"isFriend"`
	RequestPending bool `json:"requestPending"`
	IsFollowing    bool `json:"isFollowing"`
	IsFollower     bool `json:"isFollower"`
}

// Activity is one entry in the social activity feed.
type Activity struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Type       string    `json:"type"`
	CoinSymbol string    `json:"coinSymbol,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LeaderboardEntry is one ranked row from /leaderboard/:type.
type LeaderboardEntry struct {
	Rank                 int     `json:"rank"`
	UserID               string  `json:"userId"`
	Name                 string  `json:"name"`
	Avatar               string  `json:"avatar,omitempty"`
	PortfolioValue       float64 `json:"portfolioValue"`
	ProfitLossPercentage float64 `json:"profitLossPercentage"`
}
