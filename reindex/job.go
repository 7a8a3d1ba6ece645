package reindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultBatchSize is the page size used when an external trigger does not
// specify one.
const DefaultBatchSize = 500

// Base is the persisted state of a reindex chain: constant run id, advancing
// cursor, fixed page size, and a 1-based batch counter.
//
// Invariants:
//   - AfterID is nil only for BatchNumber == 1
//   - for later batches AfterID equals the id of the last row processed by the
//     previous batch and is strictly increasing across the run
type Base struct {
	ReindexID   uuid.UUID  `json:"reindex_id"`
	AfterID     *uuid.UUID `json:"after_id"`
	BatchSize   uint       `json:"batch_size"`
	BatchNumber uint       `json:"batch_number"`
}

// Job is the wire payload of both reindex subjects.
type Job struct {
	Base Base `json:"base"`
}

// NewJob creates the first job of a fresh reindex run.
//
// Parameters:
//   - batchSize: Rows per batch; 0 selects DefaultBatchSize
//
// Returns:
//   - Job: Batch 1 with a nil cursor and a new run id
//   - error: Run id generation failure
func NewJob(batchSize uint) (Job, error) {
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Job{}, fmt.Errorf("failed to generate reindex id: %w", err)
	}

	return Job{Base: Base{
		ReindexID:   id,
		AfterID:     nil,
		BatchSize:   batchSize,
		BatchNumber: 1,
	}}, nil
}

// Next constructs the successor job: same run id and page size, cursor
// advanced to lastID, batch counter incremented.
func (j Job) Next(lastID uuid.UUID) Job {
	return Job{Base: Base{
		ReindexID:   j.Base.ReindexID,
		AfterID:     &lastID,
		BatchSize:   j.Base.BatchSize,
		BatchNumber: j.Base.BatchNumber + 1,
	}}
}

// Validate checks the chain invariants on a decoded payload.
func (b Base) Validate() error {
	if b.ReindexID == uuid.Nil {
		return errors.New("reindex id is required")
	}
	if b.BatchSize == 0 {
		return errors.New("batch size must be >= 1")
	}
	if b.BatchNumber == 0 {
		return errors.New("batch number starts at 1")
	}
	if b.AfterID == nil && b.BatchNumber != 1 {
		return fmt.Errorf("batch %d is missing its cursor", b.BatchNumber)
	}
	if b.AfterID != nil && b.BatchNumber == 1 {
		return errors.New("batch 1 must not carry a cursor")
	}

	return nil
}

// Publisher is the narrow publishing contract chain handlers use to continue
// a run. *mofujobs.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, subject string, job any) error
}
