package models

// Document visibility levels.
const (
	VisibilityPublic   = "public"
	VisibilityInternal = "internal"
	VisibilityPrivate  = "private"
)

// Document is stored file metadata.
type Document struct {
	ID         string        `bson:"id" json:"id"`
	Title      LocalizedText `bson:"title" json:"title"`
	Category   string        `bson:"category" json:"category"`
	Visibility string        `bson:"visibility" json:"visibility"`
	OwnerID    string        `bson:"ownerId" json:"ownerId"`
	AppealID   string        `bson:"appealId,omitempty" json:"appealId,omitempty"`
	File       FileRef       `bson:"file" json:"file"`
	Timestamps `bson:",inline"`
}

// DocumentMeta is the metadata sent along with an upload or a metadata update.
type DocumentMeta struct {
	TitleEN    string `form:"titleEn" json:"titleEn" binding:"omitempty,max=300"`
	TitleRU    string `form:"titleRu" json:"titleRu" binding:"omitempty,max=300"`
	Category   string `form:"category" json:"category" binding:"omitempty,max=100"`
	Visibility string `form:"visibility" json:"visibility" binding:"omitempty,oneof=public internal private"`
	AppealID   string `form:"appealId" json:"appealId"`
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Category   string `form:"category"`
	Visibility string `form:"visibility"`
	OwnerID    string `form:"ownerId"`
	AppealID   string `form:"appealId"`
	// Viewer scoping, set by the service.
	ViewerID      string `form:"-"`
	ViewerIsStaff bool   `form:"-"`
	Page
}

// DownloadLink is a resolved URL for a stored document.
type DownloadLink struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
}

// VisibleTo applies the document visibility rules: everyone sees public documents and their
// own; staff additionally see internal documents and appeal attachments.
func (d Document) VisibleTo(v Viewer) bool {
	switch {
	case v.UserID != "" && d.OwnerID == v.UserID:
		return true
	case v.IsStaff():
		return d.Visibility != VisibilityPrivate || d.AppealID != ""
	default:
		return d.Visibility == VisibilityPublic
	}
}
