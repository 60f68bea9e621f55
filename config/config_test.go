package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Queue.Queue != "transcode_queue" {
		t.Errorf("queue = %q", cfg.Queue.Queue)
	}
	if cfg.Queue.ReconnectDelay != 10*time.Second {
		t.Errorf("reconnect delay = %v", cfg.Queue.ReconnectDelay)
	}
	if cfg.Queue.MaxReconnectAttempts != 0 {
		t.Errorf("max reconnect attempts = %d, want unbounded", cfg.Queue.MaxReconnectAttempts)
	}
	if cfg.FTP.Port != 21 || cfg.FTP.Root != "/media" {
		t.Errorf("ftp = %+v", cfg.FTP)
	}
	if cfg.App.PublicBaseURL != "ftp://ftp-server/media/movies" {
		t.Errorf("public base url = %q", cfg.App.PublicBaseURL)
	}
	if cfg.DB != nil {
		t.Error("job ledger must stay off without a dsn")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RABBITMQ_QUEUE", "video_uploads")
	t.Setenv("FTP_HOST", "storage.internal")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Queue.Queue != "video_uploads" {
		t.Errorf("queue = %q, env override ignored", cfg.Queue.Queue)
	}
	if cfg.FTP.Host != "storage.internal" {
		t.Errorf("ftp host = %q, env override ignored", cfg.FTP.Host)
	}
}
