package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	RunStatusInProgress = "in_progress"
	RunStatusSucceeded  = "succeeded"
	RunStatusFailed     = "failed"
	RunStatusPartial    = "partial"
	RunStatusCancelled  = "cancelled"
)

// Step statuses.
const (
	StepStatusCreated = "created"
	StepStatusSkipped = "skipped"
	StepStatusWarned  = "warned"
	StepStatusFailed  = "failed"
)

type BaseModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RunModel struct {
	BaseModel
	Operation   string `gorm:"not null;check:operation <> ''"` // provision, teardown
	ProjectName string `gorm:"not null;check:project_name <> ''"`
	Status      string `gorm:"not null;check:status <> ''"`
	FinishedAt  *time.Time

	Steps []StepModel `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (RunModel) TableName() string {
	return "runs"
}

type StepModel struct {
	BaseModel
	RunID  uuid.UUID `gorm:"not null;index"`
	Name   string    `gorm:"not null;check:name <> ''"`
	Status string    `gorm:"not null;check:status <> ''"`
	Detail string    `gorm:"type:text"`
}

func (StepModel) TableName() string {
	return "steps"
}
