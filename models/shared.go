package models

import (
	"strings"
	"time"
)

// Supported content languages.
const (
	LangEN = "en"
	LangRU = "ru"
)

// LocalizedText is a bilingual string field.
type LocalizedText struct {
	EN string `bson:"en" json:"en"`
	RU string `bson:"ru" json:"ru"`
}

// Pick returns the text for lang, falling back to the other language when empty.
func (t LocalizedText) Pick(lang string) string {
	switch strings.ToLower(lang) {
	case LangRU:
		if t.RU != "" {
			return t.RU
		}
		return t.EN
	default:
		if t.EN != "" {
			return t.EN
		}
		return t.RU
	}
}

// IsEmpty reports whether neither language is filled.
func (t LocalizedText) IsEmpty() bool {
	return strings.TrimSpace(t.EN) == "" && strings.TrimSpace(t.RU) == ""
}

// Contains does a case-insensitive substring match on both languages.
func (t LocalizedText) Contains(q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(t.EN), q) || strings.Contains(strings.ToLower(t.RU), q)
}

// Text builds a LocalizedText with the same value in both languages.
func Text(s string) LocalizedText {
	return LocalizedText{EN: s, RU: s}
}

// Storage buckets.
const (
	BucketDocuments = "documents"
	BucketAvatars   = "avatars"
)

// FileRef points at an object held by the storage provider.
type FileRef struct {
	Provider     string `bson:"provider" json:"provider"`
	Bucket       string `bson:"bucket" json:"bucket"`
	Key          string `bson:"key" json:"key"`
	ResourceType string `bson:"resourceType,omitempty" json:"resourceType,omitempty"`
	Format       string `bson:"format,omitempty" json:"format,omitempty"`
	ContentType  string `bson:"contentType,omitempty" json:"contentType,omitempty"`
	Size         int64  `bson:"size" json:"size"`
	OriginalName string `bson:"originalName,omitempty" json:"originalName,omitempty"`
	URL          string `bson:"url,omitempty" json:"url,omitempty"`
	Public       bool   `bson:"public" json:"public"`
}

// IsZero reports whether the reference is unset.
func (f FileRef) IsZero() bool { return f.Key == "" }

// Page is an offset based page request.
type Page struct {
	Limit  int64 `form:"limit" json:"limit"`
	Offset int64 `form:"offset" json:"offset"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// List is a page of results with the total matching count.
type List[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// NewList wraps items and makes sure Items marshals as [] rather than null.
func NewList[T any](items []T, total int64, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset}
}

// Timestamps are embedded in every record.
type Timestamps struct {
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Touch sets CreatedAt (when unset) and UpdatedAt to now.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}
