package domain

import "time"

// Grant is a time-boxed permission to PUT exactly one object key. It is
// never persisted in the metadata store; the redis tracker holds it only
// until it expires or is consumed by a commit.
type Grant struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	ProjectID string    `json:"projectId"`
	Category  string    `json:"category"`
	SpaceID   string    `json:"spaceId"`
	ShotID    string    `json:"shotId"`
	ObjectKey string    `json:"objectKey"`
	UploadURL string    `json:"-"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CommitRequest struct {
	ImageURL string `json:"imageUrl"`
	Category string `json:"type"`
	SpaceID  string `json:"spaceId"`
	ShotID   string `json:"shotId"`
}
