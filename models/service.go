package models

// Catalog service statuses.
const (
	ServiceActive    = "active"
	ServiceSuspended = "suspended"
	ServiceArchived  = "archived"
)

// Service is a catalog entry describing a municipal offering.
type Service struct {
	ID                string          `bson:"id" json:"id"`
	Name              LocalizedText   `bson:"name" json:"name"`
	Description       LocalizedText   `bson:"description" json:"description"`
	Category          string          `bson:"category" json:"category"`
	Department        string          `bson:"department,omitempty" json:"department,omitempty"`
	ProcessingDays    int             `bson:"processingDays" json:"processingDays"`
	Fee               float64         `bson:"fee" json:"fee"`
	RequiredDocuments []LocalizedText `bson:"requiredDocuments,omitempty" json:"requiredDocuments,omitempty"`
	Status            string          `bson:"status" json:"status"`
	Online            bool            `bson:"online" json:"online"`
	Timestamps        `bson:",inline"`
}

// ServiceRequest creates or replaces a catalog entry.
type ServiceRequest struct {
	Name              LocalizedText   `json:"name"`
	Description       LocalizedText   `json:"description"`
	Category          string          `json:"category" binding:"required,max=100"`
	Department        string          `json:"department" binding:"omitempty,max=200"`
	ProcessingDays    int             `json:"processingDays" binding:"gte=0,lte=365"`
	Fee               float64         `json:"fee" binding:"gte=0"`
	RequiredDocuments []LocalizedText `json:"requiredDocuments"`
	Status            string          `json:"status" binding:"omitempty,oneof=active suspended archived"`
	Online            bool            `json:"online"`
}

// ServiceFilter narrows catalog listings.
type ServiceFilter struct {
	Category string `form:"category"`
	Status   string `form:"status"`
	Online   *bool  `form:"online"`
	Search   string `form:"q"`
	Page
}
