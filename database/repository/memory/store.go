// Package memoryRepo holds in-memory repositories used by service and handler tests.
package memoryRepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"cityportal/models"
)

// Store is a process-local database shared by the in-memory repositories.
type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	profiles      map[string]models.Profile
	roles         []models.UserRole
	appeals       map[string]models.Appeal
	services      map[string]models.Service
	resources     map[string]models.Resource
	documents     map[string]models.Document
	notifications map[string]models.Notification
	news          map[string]models.News
}

func NewStore() *Store {
	return &Store{
		users:         make(map[string]models.User),
		profiles:      make(map[string]models.Profile),
		appeals:       make(map[string]models.Appeal),
		services:      make(map[string]models.Service),
		resources:     make(map[string]models.Resource),
		documents:     make(map[string]models.Document),
		notifications: make(map[string]models.Notification),
		news:          make(map[string]models.News),
	}
}

func paginate[T any](items []T, p models.Page) ([]T, int64) {
	p = p.Normalize()
	total := int64(len(items))
	if p.Offset >= total {
		return []T{}, total
	}
	end := p.Offset + p.Limit
	if end > total {
		end = total
	}
	return items[p.Offset:end], total
}

func newestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

func containsFold(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(q)))
}
