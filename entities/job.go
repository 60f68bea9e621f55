package entities

import (
	"time"

	"github.com/google/uuid"

	"movie-file-service/constant"
)

// Job is one row of the transcode job ledger. The ledger exists for
// duplicate-delivery detection; the queue itself stays the source of work.
type Job struct {
	ID        uuid.UUID          `json:"id"`
	MovieID   string             `json:"movie_id"`
	Status    constant.JobStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (Job) TableName() string {
	return "transcode_jobs"
}
