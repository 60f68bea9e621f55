package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"movie-file-service/pkg/mediapath"
)

// Rendition is one rung of the ABR ladder.
type Rendition struct {
	Label     string // playlist suffix, e.g. "480"
	Width     int
	Height    int
	Bitrate   string // target and max video bitrate
	BufSize   string // rate-control buffer, 2x bitrate
	Bandwidth int    // nominal BANDWIDTH advertised in the master playlist
}

// DefaultLadder is the fixed rendition set every film is transcoded to.
var DefaultLadder = []Rendition{
	{Label: "480", Width: 854, Height: 480, Bitrate: "1000k", BufSize: "2000k", Bandwidth: 1000000},
	{Label: "720", Width: 1280, Height: 720, Bitrate: "2500k", BufSize: "5000k", Bandwidth: 2500000},
	{Label: "1080", Width: 1920, Height: 1080, Bitrate: "5000k", BufSize: "10000k", Bandwidth: 5000000},
}

// Segments are 2 seconds at a closed GOP of 30 frames; keyframes are forced
// on that cadence and scene-cut insertion is disabled so segment boundaries
// are deterministic.
const (
	segmentSeconds   = 2
	keyframeInterval = 30
	audioBitrate     = "128k"
)

// EncodeSpec describes one engine invocation: a single decode of Source
// split into one scale+encode branch per ladder rung, all written as
// segmented HLS into OutDir.
type EncodeSpec struct {
	Source   string
	OutDir   string
	BaseName string
	Ladder   []Rendition
}

// Args renders the spec to the ffmpeg argument contract. The ladder is the
// only variable part; everything else preserves original timestamps so
// audio and video stay in sync across renditions.
func (s EncodeSpec) Args() []string {
	args := []string{
		"-i", s.Source,

		"-fflags", "+genpts+igndts",
		"-flags", "+global_header",
		"-strict", "experimental",
		"-vsync", "passthrough",

		"-filter_complex", s.filterGraph(),

		"-avoid_negative_ts", "make_zero",
		"-copyts",
		"-start_at_zero",
	}

	for _, r := range s.Ladder {
		args = append(args,
			"-map", fmt.Sprintf("[%sv]", r.Label), "-map", "0:a:0",
			"-c:v", "libx264", "-preset", "medium",
			"-b:v", r.Bitrate, "-maxrate", r.Bitrate, "-bufsize", r.BufSize,
			"-c:a", "aac", "-b:a", audioBitrate,

			"-force_key_frames", fmt.Sprintf("expr:gte(n,n_forced*%d)", keyframeInterval),
			"-g", fmt.Sprint(keyframeInterval),
			"-keyint_min", fmt.Sprint(keyframeInterval),
			"-sc_threshold", "0",

			"-f", "hls",
			"-hls_time", fmt.Sprint(segmentSeconds),
			"-hls_flags", "independent_segments+discont_start+append_list",
			"-hls_playlist_type", "vod",
			"-hls_segment_type", "mpegts",
			"-hls_segment_filename", filepath.Join(s.OutDir, mediapath.SegmentPattern(s.BaseName, r.Label)),
			filepath.Join(s.OutDir, mediapath.PlaylistName(s.BaseName, r.Label)),
		)
	}

	return args
}

// filterGraph splits the decoded video once and scales each branch to its
// rung height, keeping the aspect ratio (-2 rounds the width to an even
// value for libx264).
func (s EncodeSpec) filterGraph() string {
	var b strings.Builder
	b.WriteString("[0:v]setpts=N/FRAME_RATE/TB,split=")
	b.WriteString(fmt.Sprint(len(s.Ladder)))
	for i := range s.Ladder {
		fmt.Fprintf(&b, "[s%d]", i)
	}
	for i, r := range s.Ladder {
		fmt.Fprintf(&b, ";[s%d]scale=-2:%d[%sv]", i, r.Height, r.Label)
	}
	return b.String()
}

// MasterPlaylist builds the master manifest text referencing the
// sub-playlists with their static bandwidth and resolution metadata.
func MasterPlaylist(baseName string, ladder []Rendition) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	for _, r := range ladder {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d\n", r.Bandwidth, r.Width, r.Height)
		b.WriteString(mediapath.PlaylistName(baseName, r.Label) + "\n")
	}
	return b.String()
}
