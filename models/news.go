package models

import "time"

// News statuses.
const (
	NewsDraft     = "draft"
	NewsPublished = "published"
	NewsArchived  = "archived"
)

// News is a municipal news item.
type News struct {
	ID          string        `bson:"id" json:"id"`
	Title       LocalizedText `bson:"title" json:"title"`
	Summary     LocalizedText `bson:"summary" json:"summary"`
	Body        LocalizedText `bson:"body" json:"body"`
	Category    string        `bson:"category,omitempty" json:"category,omitempty"`
	Image       FileRef       `bson:"image,omitempty" json:"image,omitempty"`
	Status      string        `bson:"status" json:"status"`
	PublishedAt *time.Time    `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	AuthorID    string        `bson:"authorId" json:"authorId"`
	Timestamps  `bson:",inline"`
}

// NewsRequest creates or replaces a news item.
type NewsRequest struct {
	Title    LocalizedText `json:"title"`
	Summary  LocalizedText `json:"summary"`
	Body     LocalizedText `json:"body"`
	Category string        `json:"category" binding:"omitempty,max=100"`
}

// NewsFilter narrows news listings.
type NewsFilter struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Page
}
