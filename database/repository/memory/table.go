package memoryRepo

import (
	"fmt"

	"cityportal/models"
)

// table is a keyed collection guarded by the store mutex.
type table[T any] struct {
	s    *Store
	rows map[string]T
	id   func(T) string
	name string
}

func (t *table[T]) create(v T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.rows[t.id(v)]; ok {
		return fmt.Errorf("%s %s: %w", t.name, t.id(v), models.ErrAlreadyExists)
	}
	t.rows[t.id(v)] = v
	return nil
}

func (t *table[T]) get(id string) (*T, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", t.name, id, models.ErrNotFound)
	}
	return &v, nil
}

func (t *table[T]) replace(v T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.rows[t.id(v)]; !ok {
		return fmt.Errorf("%s %s: %w", t.name, t.id(v), models.ErrNotFound)
	}
	t.rows[t.id(v)] = v
	return nil
}

func (t *table[T]) delete(id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%s %s: %w", t.name, id, models.ErrNotFound)
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) filter(keep func(T) bool) []T {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	var out []T
	for _, v := range t.rows {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
