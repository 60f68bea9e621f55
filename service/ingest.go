package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"movie-file-service/config"
	"movie-file-service/constant"
	"movie-file-service/dto"
	"movie-file-service/pkg/mediapath"
	"movie-file-service/repository"
)

type IngestService interface {
	Ingest(ctx context.Context, movieID string, category constant.Category, filename string, file io.Reader) (string, error)
}

type ingestService struct {
	cfg       *config.Config
	store     Storage
	publisher Publisher
	repo      repository.JobRepository // nil disables the job ledger
}

func NewIngestService(cfg *config.Config, store Storage, publisher Publisher, repo repository.JobRepository) IngestService {
	return &ingestService{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		repo:      repo,
	}
}

// Ingest validates the upload, stores it at the category's canonical path
// and, for films, publishes a transcode job. The upload is committed once
// storage succeeds; a publish failure is logged and reported in the logs
// only, never rolled back — the job can be re-published administratively.
func (s *ingestService) Ingest(ctx context.Context, movieID string, category constant.Category, filename string, file io.Reader) (string, error) {
	if !category.Valid() {
		return "", invalidCategory(category.String())
	}

	code := category.Code()
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := constant.AllowedExtensions[code]
	if !slices.Contains(allowed, ext) {
		return "", invalidFormat(category.String(), allowed)
	}

	baseDir := mediapath.MovieDir(s.cfg.FTP.Root, movieID)
	if err := s.store.EnsureDir(baseDir); err != nil {
		return "", fmt.Errorf("ensure dir %s: %w", baseDir, err)
	}

	remotePath := mediapath.ArtifactPath(s.cfg.FTP.Root, movieID, code, ext)
	if err := s.store.UploadReader(file, remotePath); err != nil {
		return "", fmt.Errorf("upload %s: %w", remotePath, err)
	}

	fileURL := mediapath.PublicURL(s.cfg.App.PublicBaseURL, movieID, code+ext)

	if category == constant.CategoryFilm {
		s.publishJob(ctx, movieID, fileURL)
	}

	return fileURL, nil
}

func (s *ingestService) publishJob(ctx context.Context, movieID, fileURL string) {
	log := zerolog.Ctx(ctx).With().Str("movie_id", movieID).Logger()

	jobID := uuid.Nil
	if s.repo != nil {
		job, err := s.repo.CreateJob(ctx, movieID)
		if err != nil {
			// Ledger trouble must not block the pipeline; the job just
			// loses duplicate detection.
			log.Error().Err(err).Msg("failed to record job in ledger")
		} else {
			jobID = job.ID
		}
	}

	msg := dto.TranscodeJob{
		MovieID:     dto.MovieID(movieID),
		FileURL:     fileURL,
		FTPUser:     s.cfg.FTP.User,
		FTPPassword: s.cfg.FTP.Pass,
		JobId:       jobID,
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		log.Error().Err(err).Str("file_url", fileURL).Msg("failed to publish transcode job; re-publish manually")
	}
}
