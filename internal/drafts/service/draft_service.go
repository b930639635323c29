package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/repository"
)

// DraftService handles saving, listing and deleting build drafts
type DraftService struct {
	store   repository.Store
	builder *Builder
	logger  *zap.Logger
}

// NewDraftService creates a new DraftService
func NewDraftService(store repository.Store, builder *Builder, logger *zap.Logger) *DraftService {
	if builder == nil {
		builder = NewBuilder(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftService{
		store:   store,
		builder: builder,
		logger:  logger,
	}
}

// Save stamps the submitted build and appends it to the collection.
func (s *DraftService) Save(ctx context.Context, raw []byte) (domain.Draft, error) {
	draft, err := s.store.Append(ctx, func(current []domain.Draft) (domain.Draft, error) {
		return s.builder.Build(raw, repository.NextID(current))
	})
	if err != nil {
		var perr *domain.PayloadError
		if errors.As(err, &perr) {
			s.logger.Warn("rejected build payload", zap.Error(err))
		} else {
			draftStoreErrorsTotal.WithLabelValues("save").Inc()
			s.logger.Error("failed to save draft", zap.Error(err))
		}
		return domain.Draft{}, err
	}

	draftsSavedTotal.Inc()
	s.logger.Info("draft saved", zap.Int("build_id", draft.ID), zap.String("timestamp", draft.Timestamp()))
	return draft, nil
}

// List returns every stored draft. Read failures are logged and produce an
// empty list.
func (s *DraftService) List(ctx context.Context) []domain.Draft {
	drafts, err := s.store.Load(ctx)
	if err != nil {
		draftStoreErrorsTotal.WithLabelValues("list").Inc()
		s.logger.Error("failed to load drafts", zap.Error(err))
		return []domain.Draft{}
	}
	if drafts == nil {
		drafts = []domain.Draft{}
	}
	return drafts
}

// Delete removes a draft by id. Returns domain.ErrDraftNotFound when no draft
// has that id.
func (s *DraftService) Delete(ctx context.Context, id int) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		draftStoreErrorsTotal.WithLabelValues("delete").Inc()
		s.logger.Error("failed to delete draft", zap.Int("build_id", id), zap.Error(err))
		return err
	}
	if !removed {
		return domain.ErrDraftNotFound
	}

	draftsDeletedTotal.Inc()
	s.logger.Info("draft deleted", zap.Int("build_id", id))
	return nil
}

// Healthy reports whether the underlying store is reachable.
func (s *DraftService) Healthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}
