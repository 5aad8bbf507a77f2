package store

import (
	"fmt"

	"taxledger/internal/models"
	"taxledger/internal/validator"
)

// CategoryDeletion reports the outcome of DeleteCategory. Deleted is false
// when UsageCount transactions still reference the category.
type CategoryDeletion struct {
	Category   models.Category
	UsageCount int
	Deleted    bool
}

// Categories returns a copy of the t category set.
func (s *Store) Categories(t models.TransactionType) ([]models.Category, error) {
	if err := checkType(t); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Category{}, s.categories[t]...), nil
}

// AddCategory appends a category after validating and trimming its name.
// Names are unique per type, ignoring case.
func (s *Store) AddCategory(t models.TransactionType, name, color string) (models.Category, error) {
	if err := checkType(t); err != nil {
		return models.Category{}, err
	}
	name, err := validator.CategoryName(name)
	if err != nil {
		return models.Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if validator.IsDuplicateCategory(name, s.categories[t]) {
		return models.Category{}, fmt.Errorf("%w: %s", ErrDuplicateCategory, name)
	}
	c := models.Category{ID: newID(), Name: name, Color: color}

	set := append(append([]models.Category(nil), s.categories[t]...), c)
	s.categories[t] = set
	s.enqueue(CategoryKey(t), set)
	return c, nil
}

// CategoryUsageCount counts the t transactions whose category equals name.
func (s *Store) CategoryUsageCount(t models.TransactionType, name string) (int, error) {
	if err := checkType(t); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.usage(t, name), nil
}

// DeleteCategory removes a category unless a transaction of the same type
// still uses it. The usage check and the removal happen under one lock.
func (s *Store) DeleteCategory(t models.TransactionType, id string) (CategoryDeletion, error) {
	if err := checkType(t); err != nil {
		return CategoryDeletion{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.categories[t]
	idx := -1
	for i, c := range src {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return CategoryDeletion{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}

	res := CategoryDeletion{Category: src[idx], UsageCount: s.usage(t, src[idx].Name)}
	if res.UsageCount > 0 {
		return res, nil
	}

	set := make([]models.Category, 0, len(src)-1)
	set = append(set, src[:idx]...)
	set = append(set, src[idx+1:]...)
	s.categories[t] = set
	s.enqueue(CategoryKey(t), set)
	res.Deleted = true
	return res, nil
}

// usage must be called with mu held.
func (s *Store) usage(t models.TransactionType, name string) int {
	n := 0
	for _, tx := range s.transactions[t] {
		if tx.Category == name {
			n++
		}
	}
	return n
}

// ThemeMode returns the stored appearance preference.
func (s *Store) ThemeMode() models.ThemeMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetThemeMode stores a new appearance preference.
func (s *Store) SetThemeMode(mode models.ThemeMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidThemeMode, mode)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = mode
	s.enqueue(KeyThemeMode, mode)
	return nil
}
