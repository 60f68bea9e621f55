package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"movie-file-service/config"
	"movie-file-service/constant"
	"movie-file-service/dto"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.App{
			Environment:   "develop",
			PublicBaseURL: "ftp://ftp-server/media/movies",
		},
		FTP: &config.FTP{
			Host: "ftp-server",
			Port: 21,
			User: "ftpuser",
			Pass: "ftppass",
			Root: "/media",
		},
	}
}

func TestIngestStoresFilmAndPublishesJob(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{}
	svc := NewIngestService(testConfig(), store, pub, nil)

	fileURL, err := svc.Ingest(context.Background(), "42", constant.CategoryFilm, "movie.mp4", strings.NewReader("video-bytes"))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if want := "ftp://ftp-server/media/movies/42/m.mp4"; fileURL != want {
		t.Fatalf("file url = %q, want %q", fileURL, want)
	}

	if got := string(store.files["/media/movies/42/m.mp4"]); got != "video-bytes" {
		t.Fatalf("stored artifact = %q", got)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d jobs, want 1", len(pub.published))
	}
	job, ok := pub.published[0].(dto.TranscodeJob)
	if !ok {
		t.Fatalf("published payload has type %T", pub.published[0])
	}
	if job.MovieID != "42" || job.FileURL != fileURL || job.FTPUser != "ftpuser" || job.FTPPassword != "ftppass" {
		t.Fatalf("unexpected job payload: %+v", job)
	}
}

func TestIngestAuxiliaryCategoriesDoNotPublish(t *testing.T) {
	for _, tc := range []struct {
		category constant.Category
		filename string
		wantPath string
	}{
		{constant.CategoryPoster, "poster.JPG", "/media/movies/7/p.jpg"},
		{constant.CategoryTrailer, "teaser.webm", "/media/movies/7/t.webm"},
	} {
		store := newMemStore()
		pub := &fakePublisher{}
		svc := NewIngestService(testConfig(), store, pub, nil)

		if _, err := svc.Ingest(context.Background(), "7", tc.category, tc.filename, strings.NewReader("x")); err != nil {
			t.Fatalf("%s: ingest: %v", tc.category, err)
		}
		if _, ok := store.files[tc.wantPath]; !ok {
			t.Fatalf("%s: artifact not stored at %s", tc.category, tc.wantPath)
		}
		if len(pub.published) != 0 {
			t.Fatalf("%s: published %d jobs, want 0", tc.category, len(pub.published))
		}
	}
}

func TestIngestValidation(t *testing.T) {
	cases := []struct {
		name     string
		category constant.Category
		filename string
		ok       bool
	}{
		{"film mp4", constant.CategoryFilm, "a.mp4", true},
		{"film mkv", constant.CategoryFilm, "a.mkv", true},
		{"film avi", constant.CategoryFilm, "a.avi", true},
		{"film mov rejected", constant.CategoryFilm, "a.mov", false},
		{"film no extension", constant.CategoryFilm, "a", false},
		{"trailer mp4", constant.CategoryTrailer, "a.mp4", true},
		{"trailer mov", constant.CategoryTrailer, "a.mov", true},
		{"trailer webm", constant.CategoryTrailer, "a.webm", true},
		{"trailer mkv rejected", constant.CategoryTrailer, "a.mkv", false},
		{"poster jpg", constant.CategoryPoster, "a.jpg", true},
		{"poster jpeg", constant.CategoryPoster, "a.jpeg", true},
		{"poster png", constant.CategoryPoster, "a.png", true},
		{"poster gif rejected", constant.CategoryPoster, "a.gif", false},
		{"unknown category", constant.Category("subtitles"), "a.srt", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			svc := NewIngestService(testConfig(), store, &fakePublisher{}, nil)

			_, err := svc.Ingest(context.Background(), "1", tc.category, tc.filename, strings.NewReader("x"))
			if tc.ok {
				if err != nil {
					t.Fatalf("want accept, got %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if store.calls != 0 {
				t.Fatalf("rejected upload touched storage (%d calls)", store.calls)
			}
		})
	}
}

func TestIngestRejectionNamesAllowedFormats(t *testing.T) {
	svc := NewIngestService(testConfig(), newMemStore(), &fakePublisher{}, nil)

	_, err := svc.Ingest(context.Background(), "1", constant.CategoryFilm, "a.mov", strings.NewReader("x"))
	if err == nil {
		t.Fatal("want error")
	}
	for _, ext := range []string{".mp4", ".mkv", ".avi"} {
		if !strings.Contains(err.Error(), ext) {
			t.Fatalf("error %q does not name allowed extension %s", err, ext)
		}
	}
}

func TestIngestPublishFailureKeepsUpload(t *testing.T) {
	store := newMemStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewIngestService(testConfig(), store, pub, nil)

	fileURL, err := svc.Ingest(context.Background(), "42", constant.CategoryFilm, "movie.mp4", strings.NewReader("v"))
	if err != nil {
		t.Fatalf("publish failure must not fail the upload: %v", err)
	}
	if fileURL == "" {
		t.Fatal("want file url despite publish failure")
	}
	if _, ok := store.files["/media/movies/42/m.mp4"]; !ok {
		t.Fatal("artifact missing after publish failure")
	}
}

func TestIngestOverwritesExistingArtifact(t *testing.T) {
	store := newMemStore()
	store.addFile("/media/movies/42/p.jpg", []byte("old"))
	svc := NewIngestService(testConfig(), store, &fakePublisher{}, nil)

	if _, err := svc.Ingest(context.Background(), "42", constant.CategoryPoster, "new.jpg", strings.NewReader("new")); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if got := string(store.files["/media/movies/42/p.jpg"]); got != "new" {
		t.Fatalf("artifact = %q, want overwrite", got)
	}
}
