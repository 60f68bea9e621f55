package service

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"movie-file-service/config"
	"movie-file-service/constant"
	"movie-file-service/dto"
	"movie-file-service/pkg/mediapath"
)

type LifecycleService interface {
	DeleteArtifact(ctx context.Context, movieID string, category constant.Category) (bool, error)
	DeleteAllArtifacts(ctx context.Context, movieID string) dto.DeleteAllResponse
}

type lifecycleService struct {
	cfg   *config.Config
	store Storage
}

func NewLifecycleService(cfg *config.Config, store Storage) LifecycleService {
	return &lifecycleService{cfg: cfg, store: store}
}

// DeleteArtifact removes the category's artifact for an asset and reports
// whether anything was there. For films it also sweeps the transcoded
// output and collapses the directory if that leaves it empty. Absent files
// are not an error, so repeated deletes are safe.
func (s *lifecycleService) DeleteArtifact(ctx context.Context, movieID string, category constant.Category) (bool, error) {
	if !category.Valid() {
		return false, invalidCategory(category.String())
	}

	code := category.Code()
	found := false
	for _, ext := range constant.AllowedExtensions[code] {
		p := mediapath.ArtifactPath(s.cfg.FTP.Root, movieID, code, ext)
		exists, err := s.store.Exists(p)
		if err != nil {
			return found, err
		}
		if !exists {
			continue
		}
		if err := s.store.Remove(p); err != nil {
			return found, err
		}
		found = true
	}

	if category == constant.CategoryFilm {
		swept, err := s.sweepTranscoded(ctx, movieID, code)
		if err != nil {
			return found, err
		}
		found = found || swept
	}

	return found, nil
}

func (s *lifecycleService) sweepTranscoded(ctx context.Context, movieID, code string) (bool, error) {
	dir := mediapath.TranscodedDir(s.cfg.FTP.Root, movieID)
	names, err := s.store.List(dir)
	if err != nil {
		return false, err
	}

	found := false
	for _, name := range names {
		if !strings.HasPrefix(name, code) {
			continue
		}
		if err := s.store.Remove(path.Join(dir, name)); err != nil {
			return found, err
		}
		found = true
	}

	removed, err := s.store.RemoveDirIfEmpty(dir)
	if err != nil {
		return found, err
	}
	if removed {
		zerolog.Ctx(ctx).Info().Str("movie_id", movieID).Str("dir", dir).Msg("removed empty transcoded directory")
	}
	return found, nil
}

// DeleteAllArtifacts deletes every category and then the asset's base
// directory, when all three deletions succeeded and nothing else lives
// there. The per-category map lets callers see exactly what happened.
func (s *lifecycleService) DeleteAllArtifacts(ctx context.Context, movieID string) dto.DeleteAllResponse {
	resp := dto.DeleteAllResponse{
		MovieID:    movieID,
		Categories: make(map[string]dto.CategoryResult),
	}

	allOK := true
	for _, category := range constant.Categories() {
		found, err := s.DeleteArtifact(ctx, movieID, category)
		result := dto.CategoryResult{Found: found}
		if err != nil {
			result.Error = err.Error()
			allOK = false
		}
		resp.Categories[category.String()] = result
	}

	if !allOK {
		resp.Status = dto.DeleteStatusFailed
		return resp
	}

	baseDir := mediapath.MovieDir(s.cfg.FTP.Root, movieID)
	exists, err := s.store.Exists(baseDir)
	if err != nil {
		resp.Status = dto.DeleteStatusPartial
		return resp
	}
	if !exists {
		resp.Status = dto.DeleteStatusDeleted
		return resp
	}

	removed, err := s.store.RemoveDirIfEmpty(baseDir)
	if err != nil || !removed {
		resp.Status = dto.DeleteStatusPartial
		return resp
	}
	resp.Status = dto.DeleteStatusDeleted
	return resp
}
