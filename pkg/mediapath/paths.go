// Package mediapath computes the remote storage layout. Every artifact and
// rendition path is a pure function of the movie id and base filename, which
// is what makes re-running uploads and transcodes idempotent.
package mediapath

import (
	"fmt"
	"path"
)

// MovieDir is the asset's base directory: <root>/movies/<id>.
func MovieDir(root, movieID string) string {
	return path.Join(root, "movies", movieID)
}

// ArtifactPath is <base>/<code><ext>, e.g. movies/42/m.mp4.
func ArtifactPath(root, movieID, code, ext string) string {
	return path.Join(MovieDir(root, movieID), code+ext)
}

// TranscodedDir holds renditions and playlists for an asset.
func TranscodedDir(root, movieID string) string {
	return path.Join(MovieDir(root, movieID), "transcoded")
}

// SegmentPattern is the ffmpeg segment filename template for one rendition,
// e.g. m_480_%03d.ts.
func SegmentPattern(base, label string) string {
	return fmt.Sprintf("%s_%s_%%03d.ts", base, label)
}

// PlaylistName is the per-rendition sub-playlist, e.g. m_480.m3u8.
func PlaylistName(base, label string) string {
	return fmt.Sprintf("%s_%s.m3u8", base, label)
}

// MasterName is the master playlist filename, e.g. m_master.m3u8.
func MasterName(base string) string {
	return base + "_master.m3u8"
}

// PublicURL is the externally served location of an artifact.
func PublicURL(baseURL, movieID, name string) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, movieID, name)
}
