package service

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Storage is the slice of the remote store the services need. Implemented
// by ftpstore.Client; tests swap in an in-memory store.
type Storage interface {
	EnsureDir(dir string) error
	Upload(localPath, remotePath string) error
	UploadReader(r io.Reader, remotePath string) error
	List(dir string) ([]string, error)
	Exists(p string) (bool, error)
	Remove(p string) error
	RemoveDirIfEmpty(dir string) (bool, error)
}

// StorageFactory builds a Storage against a given host with per-job
// credentials. The worker cannot use a fixed client because each job
// message carries the credentials for the host its source lives on.
type StorageFactory func(host, user, pass string) Storage

// Publisher hands a job payload to the durable queue.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

// ValidationError is a user-correctable rejection: wrong category, wrong
// extension. The HTTP layer renders these as 400s.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalidCategory(category string) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf("Invalid content_type %q", category)}
}

func invalidFormat(category string, allowed []string) *ValidationError {
	return &ValidationError{
		Msg: fmt.Sprintf("Invalid file format for %s. Allowed formats: %s", category, strings.Join(allowed, ", ")),
	}
}
