package db

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Journal records provisioning and teardown runs. A nil *Journal is valid
// and records nothing, so callers never need to guard their calls.
type Journal struct {
	db *gorm.DB
}

func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Run is an open journal entry for one invocation.
type Run struct {
	journal *Journal
	id      uuid.UUID
}

// Begin opens a journal entry. Journal failures are logged and swallowed;
// bookkeeping must never fail an operator-facing run.
func (j *Journal) Begin(operation, projectName string) *Run {
	if j == nil {
		return nil
	}

	model := RunModel{
		BaseModel:   BaseModel{ID: uuid.New()},
		Operation:   operation,
		ProjectName: projectName,
		Status:      RunStatusInProgress,
	}
	if err := j.db.Create(&model).Error; err != nil {
		slog.Warn("Failed to record run in journal", "error", err)
		return nil
	}
	return &Run{journal: j, id: model.ID}
}

// Step records one orchestration step outcome.
func (r *Run) Step(name, status, detail string) {
	if r == nil {
		return
	}

	model := StepModel{
		BaseModel: BaseModel{ID: uuid.New()},
		RunID:     r.id,
		Name:      name,
		Status:    status,
		Detail:    detail,
	}
	if err := r.journal.db.Create(&model).Error; err != nil {
		slog.Warn("Failed to record step in journal", "step", name, "error", err)
	}
}

// Finish closes the journal entry with a final status.
func (r *Run) Finish(status string) {
	if r == nil {
		return
	}

	now := time.Now()
	err := r.journal.db.Model(&RunModel{}).
		Where("id = ?", r.id).
		Updates(map[string]any{"status": status, "finished_at": &now}).Error
	if err != nil {
		slog.Warn("Failed to finish run in journal", "error", err)
	}
}

// ListRuns returns past runs, most recent first.
func (j *Journal) ListRuns(limit int) ([]*RunModel, error) {
	if j == nil {
		return nil, nil
	}

	var runs []*RunModel
	query := j.db.Preload("Steps").Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
