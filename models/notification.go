package models

import "time"

// Notification types.
const (
	NotificationAppealStatus   = "appeal_status"
	NotificationAppealAssigned = "appeal_assigned"
	NotificationNews           = "news"
	NotificationMaintenanceDue = "maintenance_due"
	NotificationRoleChanged    = "role_changed"
	NotificationSystem         = "system"
)

// Notification is an entry of a user's notification feed.
type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"userId" json:"userId"`
	Type      string            `bson:"type" json:"type"`
	Title     LocalizedText     `bson:"title" json:"title"`
	Body      LocalizedText     `bson:"body" json:"body"`
	Link      string            `bson:"link,omitempty" json:"link,omitempty"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	ReadAt    *time.Time        `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

// NotifyInput is what producers hand to the notification service.
type NotifyInput struct {
	UserID string
	Type   string
	Title  LocalizedText
	Body   LocalizedText
	Link   string
	Data   map[string]string
}

// Broadcast audiences.
const (
	AudienceAll       = "all"
	AudienceResidents = "residents"
	AudienceStaff     = "staff"
)

// BroadcastRequest sends one notification to many users.
type BroadcastRequest struct {
	Audience string        `json:"audience" binding:"required,oneof=all residents staff"`
	Type     string        `json:"type" binding:"omitempty,oneof=news system"`
	Title    LocalizedText `json:"title"`
	Body     LocalizedText `json:"body"`
	Link     string        `json:"link" binding:"omitempty,max=500"`
}

// NotificationFilter narrows a user's feed.
type NotificationFilter struct {
	UserID     string `form:"-"`
	UnreadOnly bool   `form:"unread"`
	Page
}

// PushTokenRequest registers an FCM token for the signed-in user.
type PushTokenRequest struct {
	Token string `json:"token" binding:"required,max=4096"`
}
