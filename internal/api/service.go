package api

import (
	"context"

	"podforge/internal/episodes"
)

// EpisodeReader abstracts library persistence interactions needed for API queries.
type EpisodeReader interface {
	ListRecent(ctx context.Context, limit int) ([]*episodes.Episode, error)
	GetByID(ctx context.Context, id int64) (*episodes.Episode, error)
	Stats(ctx context.Context) (map[episodes.Status]int, error)
}

// EpisodeService exposes read-only library operations returning API DTOs.
type EpisodeService struct {
	store EpisodeReader
}

// NewEpisodeService constructs an EpisodeService around the provided reader.
func NewEpisodeService(store EpisodeReader) *EpisodeService {
	if store == nil {
		return nil
	}
	return &EpisodeService{store: store}
}

// List returns the most recent episodes, newest first.
func (s *EpisodeService) List(ctx context.Context, limit int) ([]Episode, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	eps, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromEpisodes(eps), nil
}

// Describe fetches a single episode.
func (s *EpisodeService) Describe(ctx context.Context, id int64) (*Episode, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	ep, err := s.store.GetByID(ctx, id)
	if err != nil || ep == nil {
		return nil, err
	}
	dto := FromEpisode(ep)
	return &dto, nil
}

// Stats returns library summary counts keyed by status string.
func (s *EpisodeService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeEpisodeStats(stats), nil
}
