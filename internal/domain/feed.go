package domain

import "time"

type Post struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Image         string    `json:"image"`
	Caption       string    `json:"caption,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	LikeCount     int       `json:"like_count"`
	LikedByViewer bool      `json:"liked_by_viewer"`
	Comments      []Comment `json:"comments,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type FollowLists struct {
	Followers []string `json:"followers"`
	Following []string `json:"following"`
}

// Profile is the public profile page data for one user.
type Profile struct {
	User      UserSummary `json:"user"`
	Bio       string      `json:"bio,omitempty"`
	Interests string      `json:"interests,omitempty"`
	Badges    []string    `json:"badges,omitempty"`
	Posts     []Post      `json:"posts"`
	Reviews   []Review    `json:"reviews"`
	Followers []string    `json:"followers"`
	Following []string    `json:"following"`
	// ViewerFollows is set only when an authenticated viewer looks at
	// someone else's profile.
	ViewerFollows bool `json:"viewer_follows,omitempty"`
}
