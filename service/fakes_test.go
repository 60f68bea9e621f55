package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// memStore is an in-memory Storage with FTP-like semantics: uploads need an
// existing parent directory, removing an absent file succeeds, listing an
// absent directory yields nothing.
type memStore struct {
	files map[string][]byte
	dirs  map[string]bool
	calls int
}

func newMemStore() *memStore {
	return &memStore{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

func (m *memStore) addDir(dir string) {
	for d := path.Clean(dir); d != "/" && d != "."; d = path.Dir(d) {
		m.dirs[d] = true
	}
}

func (m *memStore) addFile(p string, content []byte) {
	m.addDir(path.Dir(p))
	m.files[path.Clean(p)] = content
}

func (m *memStore) EnsureDir(dir string) error {
	m.calls++
	m.addDir(dir)
	return nil
}

func (m *memStore) Upload(localPath, remotePath string) error {
	b, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	return m.UploadReader(bytes.NewReader(b), remotePath)
}

func (m *memStore) UploadReader(r io.Reader, remotePath string) error {
	m.calls++
	remotePath = path.Clean(remotePath)
	if !m.dirs[path.Dir(remotePath)] {
		return &missingDirError{dir: path.Dir(remotePath)}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[remotePath] = b
	return nil
}

type missingDirError struct{ dir string }

func (e *missingDirError) Error() string { return "no such directory: " + e.dir }

func (m *memStore) List(dir string) ([]string, error) {
	m.calls++
	dir = path.Clean(dir)
	if !m.dirs[dir] {
		return nil, nil
	}
	seen := make(map[string]bool)
	for p := range m.files {
		if path.Dir(p) == dir {
			seen[path.Base(p)] = true
		}
	}
	for d := range m.dirs {
		if path.Dir(d) == dir {
			seen[path.Base(d)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *memStore) Exists(p string) (bool, error) {
	m.calls++
	p = path.Clean(p)
	if _, ok := m.files[p]; ok {
		return true, nil
	}
	return m.dirs[p], nil
}

func (m *memStore) Remove(p string) error {
	m.calls++
	delete(m.files, path.Clean(p))
	return nil
}

func (m *memStore) RemoveDirIfEmpty(dir string) (bool, error) {
	m.calls++
	dir = path.Clean(dir)
	if !m.dirs[dir] {
		return false, nil
	}
	for p := range m.files {
		if strings.HasPrefix(p, dir+"/") {
			return false, nil
		}
	}
	for d := range m.dirs {
		if d != dir && strings.HasPrefix(d, dir+"/") {
			return false, nil
		}
	}
	delete(m.dirs, dir)
	return true, nil
}

type fakePublisher struct {
	published []any
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}
