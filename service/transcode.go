package service

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"movie-file-service/config"
	"movie-file-service/constant"
	"movie-file-service/dto"
	"movie-file-service/pkg/execx"
	"movie-file-service/pkg/mediapath"
	"movie-file-service/repository"
)

type TranscodeService interface {
	Process(ctx context.Context, job dto.TranscodeJob) error
}

type transcodeService struct {
	cfg        *config.Config
	repo       repository.JobRepository // nil disables the job ledger
	runner     execx.Runner
	newStorage StorageFactory
	ladder     []Rendition
}

func NewTranscodeService(cfg *config.Config, repo repository.JobRepository, runner execx.Runner, newStorage StorageFactory) TranscodeService {
	return &transcodeService{
		cfg:        cfg,
		repo:       repo,
		runner:     runner,
		newStorage: newStorage,
		ladder:     DefaultLadder,
	}
}

// Process runs one transcode job end to end: sweep the remote transcoded
// directory, run the engine into a private staging directory, upload the
// renditions, then the master playlist last. Any error is a terminal
// failure for this delivery; nothing is retried automatically.
func (s *transcodeService) Process(ctx context.Context, job dto.TranscodeJob) (err error) {
	log := zerolog.Ctx(ctx).With().Str("movie_id", job.MovieID.String()).Logger()
	log.Info().Str("file_url", job.FileURL).Msg("processing transcode job")

	if s.repo != nil && job.JobId != uuid.Nil {
		skip, ledgerErr := s.claimJob(ctx, job.JobId)
		if ledgerErr != nil {
			log.Error().Err(ledgerErr).Msg("job ledger unavailable")
			return ledgerErr
		}
		if skip {
			log.Info().Str("job_id", job.JobId.String()).Msg("job already handled, skipping duplicate delivery")
			return nil
		}
		defer func() {
			status := constant.JobStatusCompleted
			if err != nil {
				status = constant.JobStatusFailed
			}
			if updateErr := s.repo.UpdateStatusJob(ctx, status, job.JobId); updateErr != nil {
				log.Error().Err(updateErr).Msg("failed to update job status")
			}
		}()
	}

	src, err := url.Parse(job.FileURL)
	if err != nil {
		return fmt.Errorf("parse file_url: %w", err)
	}
	host := src.Hostname()
	remoteDir := path.Dir(src.Path)
	baseName := strings.TrimSuffix(path.Base(src.Path), path.Ext(src.Path))

	staging, err := os.MkdirTemp(s.cfg.Transcode.StagingDir, "transcode-"+job.MovieID.String()+"-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	store := s.newStorage(host, job.FTPUser, job.FTPPassword)
	transcodedDir := path.Join(remoteDir, "transcoded")

	if err := s.sweepRenditions(store, transcodedDir); err != nil {
		log.Error().Err(err).Str("stage", "sweep").Msg("transcode failed")
		return err
	}

	// The engine reads the source straight off the storage host.
	sourceURL := fmt.Sprintf("ftp://%s:%s@%s%s", job.FTPUser, job.FTPPassword, host, src.Path)
	spec := EncodeSpec{
		Source:   sourceURL,
		OutDir:   staging,
		BaseName: baseName,
		Ladder:   s.ladder,
	}

	runCtx := ctx
	if s.cfg.Transcode.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Transcode.Timeout)
		defer cancel()
	}

	log.Info().Msg("running transcode engine")
	out, err := s.runner.Run(runCtx, s.cfg.Transcode.FFmpegPath, spec.Args()...)
	if err != nil {
		log.Error().Err(err).Str("stage", "encode").Str("output", tail(out, 2048)).Msg("transcode failed")
		return fmt.Errorf("engine: %w", err)
	}

	if err := s.uploadStaging(store, staging, transcodedDir); err != nil {
		log.Error().Err(err).Str("stage", "upload").Msg("transcode failed")
		return err
	}

	// Master playlist goes last: its presence means the full rendition set
	// is in place.
	masterPath := filepath.Join(staging, mediapath.MasterName(baseName))
	if err := os.WriteFile(masterPath, []byte(MasterPlaylist(baseName, s.ladder)), 0o644); err != nil {
		return fmt.Errorf("write master playlist: %w", err)
	}
	if err := store.Upload(masterPath, path.Join(transcodedDir, mediapath.MasterName(baseName))); err != nil {
		log.Error().Err(err).Str("stage", "manifest").Msg("transcode failed")
		return err
	}

	log.Info().Str("dir", transcodedDir).Msg("transcode job completed")
	return nil
}

// claimJob moves a PENDING ledger row to PROCESSING. It reports skip=true
// for rows another delivery already claimed or finished.
func (s *transcodeService) claimJob(ctx context.Context, jobID uuid.UUID) (skip bool, err error) {
	job, err := s.repo.FindJobById(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job.Status != constant.JobStatusPending {
		return true, nil
	}
	if err := s.repo.UpdateStatusJob(ctx, constant.JobStatusProcessing, jobID); err != nil {
		return false, err
	}
	return false, nil
}

// sweepRenditions empties the remote transcoded directory of prior output
// so a re-encode can never merge with stale segments.
func (s *transcodeService) sweepRenditions(store Storage, transcodedDir string) error {
	if err := store.EnsureDir(transcodedDir); err != nil {
		return err
	}
	names, err := store.List(transcodedDir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if !strings.HasSuffix(name, ".ts") && !strings.HasSuffix(name, ".m3u8") {
			continue
		}
		if err := store.Remove(path.Join(transcodedDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *transcodeService) uploadStaging(store Storage, staging, transcodedDir string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		local := filepath.Join(staging, entry.Name())
		if err := store.Upload(local, path.Join(transcodedDir, entry.Name())); err != nil {
			return fmt.Errorf("upload %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
