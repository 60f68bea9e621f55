package dto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MovieID is opaque to this service. Producers send it as a JSON number or
// string; both decode to the canonical string form used in storage paths.
type MovieID string

func (id *MovieID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = MovieID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = MovieID(n.String())
		return nil
	}
	return fmt.Errorf("movie_id must be a string or number, got %s", data)
}

func (id MovieID) String() string {
	return string(id)
}

// TranscodeJob is the broker payload published on film upload. The four
// wire fields are required; JobId is optional and enables duplicate
// detection when the job ledger is configured.
type TranscodeJob struct {
	MovieID     MovieID   `json:"movie_id"`
	FileURL     string    `json:"file_url"`
	FTPUser     string    `json:"ftp_user"`
	FTPPassword string    `json:"ftp_password"`
	JobId       uuid.UUID `json:"job_id"` // uuid.Nil when the ledger is off
}

// Complete reports whether every required wire field is present.
func (j TranscodeJob) Complete() bool {
	return j.MovieID != "" && j.FileURL != "" && j.FTPUser != "" && j.FTPPassword != ""
}

type UploadResponse struct {
	MovieID string `json:"movie_id"`
	FileURL string `json:"file_url"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// DeleteStatus summarizes a delete-all run.
type DeleteStatus string

const (
	DeleteStatusDeleted DeleteStatus = "deleted"
	DeleteStatusPartial DeleteStatus = "partial"
	DeleteStatusFailed  DeleteStatus = "failed"
)

type CategoryResult struct {
	Found bool   `json:"found"`
	Error string `json:"error,omitempty"`
}

type DeleteAllResponse struct {
	MovieID    string                    `json:"movie_id"`
	Status     DeleteStatus              `json:"status"`
	Categories map[string]CategoryResult `json:"categories"`
}
