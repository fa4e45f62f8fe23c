package lifecycle

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/benvon/questlog/internal/apperr"
	"github.com/benvon/questlog/internal/models"
	"github.com/benvon/questlog/internal/storage"
	"github.com/benvon/questlog/internal/validation"
)

// CreateCategoryInput holds the fields accepted for a new category
type CreateCategoryInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreateCategory stores a new category; ParentID is not checked
func (m *Manager) CreateCategory(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	in.Name = validation.SanitizeText(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c := &models.Category{ID: uuid.NewString(), Name: in.Name, ParentID: nonEmpty(in.ParentID)}
	w, err := change[models.Category](storage.CollectionCategories, c.ID, c, nil)
	if err != nil {
		return nil, err
	}
	if err := m.commit(ctx, []write{w}); err != nil {
		return nil, err
	}

	m.categories[c.ID] = c
	m.logger.Info("category_created", zap.String("category_id", c.ID))
	m.trigger.RequestSync(string(storage.CollectionCategories))
	cp := *c
	return &cp, nil
}

// ListCategories returns categories ordered by name
func (m *Manager) ListCategories() []models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DeleteCategory removes a category; tasks referencing it keep the dangling id
func (m *Manager) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.categories[id]
	if !ok {
		return apperr.NotFound("category", id)
	}
	w, err := change[models.Category](storage.CollectionCategories, id, nil, current)
	if err != nil {
		return err
	}
	if err := m.commit(ctx, []write{w}); err != nil {
		return err
	}

	delete(m.categories, id)
	m.logger.Info("category_deleted", zap.String("category_id", id))
	m.trigger.RequestSync(string(storage.CollectionCategories))
	return nil
}
