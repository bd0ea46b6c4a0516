package models

import "time"

// ThumbnailJob asks the worker to build the resized derivatives of one image.
type ThumbnailJob struct {
	ID         string    `json:"id"`
	FileID     string    `json:"fileId"`
	UserID     string    `json:"userId"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}
