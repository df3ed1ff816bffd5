package storage

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/smilemakc/contentforge/internal/domain"
)

// ContentRepository implements domain.ContentRepository. Rows are
// insert-only: Phase B never updates a Content row once written, it
// only ever inserts one per work item.
type ContentRepository struct {
	db *bun.DB
}

func NewContentRepository(store *Store) *ContentRepository {
	return &ContentRepository{db: store.db}
}

func (r *ContentRepository) Create(ctx context.Context, content *domain.Content) error {
	model := NewContentModel(*content)
	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	return err
}

func (r *ContentRepository) FindByJobID(ctx context.Context, jobID string) ([]domain.Content, error) {
	models := make([]ContentModel, 0)
	if err := r.db.NewSelect().
		Model(&models).
		Where("job_id = ?", jobID).
		Order("scenario_id ASC").
		Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Content, len(models))
	for i, m := range models {
		out[i] = m.ToDomain()
	}
	return out, nil
}

func (r *ContentRepository) DeleteByJobID(ctx context.Context, jobID string) error {
	_, err := r.db.NewDelete().Model((*ContentModel)(nil)).Where("job_id = ?", jobID).Exec(ctx)
	return err
}
