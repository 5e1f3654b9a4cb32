package repos

import (
	"context"

	"shopsim/internal/domain"
	"shopsim/internal/store"
)

type FileRepo struct{ Collection[domain.StoredFile] }

func NewFileRepo(s *store.Store) *FileRepo {
	return &FileRepo{Collection[domain.StoredFile]{
		store:    s,
		name:     ColFiles,
		resource: "file",
		key:      func(f *domain.StoredFile) string { return f.ID },
	}}
}

func (r *FileRepo) ByUploader(ctx context.Context, userID string) ([]domain.StoredFile, error) {
	return r.byIndex(ctx, "uploader", userID)
}
