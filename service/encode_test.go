package service

import (
	"strings"
	"testing"
)

func TestEncodeSpecArgs(t *testing.T) {
	spec := EncodeSpec{
		Source:   "ftp://u:p@host/media/movies/42/m.mp4",
		OutDir:   "/tmp/stage",
		BaseName: "m",
		Ladder:   DefaultLadder,
	}
	args := strings.Join(spec.Args(), " ")

	for _, want := range []string{
		"-i ftp://u:p@host/media/movies/42/m.mp4",
		"split=3",
		"scale=-2:480[480v]",
		"scale=-2:720[720v]",
		"scale=-2:1080[1080v]",
		"-b:v 1000k -maxrate 1000k -bufsize 2000k",
		"-b:v 2500k -maxrate 2500k -bufsize 5000k",
		"-b:v 5000k -maxrate 5000k -bufsize 10000k",
		"-hls_time 2",
		"-hls_segment_filename /tmp/stage/m_480_%03d.ts",
		"/tmp/stage/m_1080.m3u8",
		"-copyts",
		"-vsync passthrough",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q", want)
		}
	}

	// Deterministic segment boundaries: forced keyframes every GOP, no
	// scene-cut insertion, on every rendition.
	for _, flag := range []string{"-force_key_frames expr:gte(n,n_forced*30)", "-g 30", "-keyint_min 30", "-sc_threshold 0"} {
		if got := strings.Count(args, flag); got != len(DefaultLadder) {
			t.Errorf("%q appears %d times, want %d", flag, got, len(DefaultLadder))
		}
	}
}

func TestMasterPlaylist(t *testing.T) {
	got := MasterPlaylist("m", DefaultLadder)
	want := "#EXTM3U\n" +
		"#EXT-X-VERSION:3\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=1000000,RESOLUTION=854x480\n" +
		"m_480.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=2500000,RESOLUTION=1280x720\n" +
		"m_720.m3u8\n" +
		"#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080\n" +
		"m_1080.m3u8\n"
	if got != want {
		t.Fatalf("master playlist:\n%s\nwant:\n%s", got, want)
	}
}
