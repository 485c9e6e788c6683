package archive

import (
	"time"

	"gorm.io/gorm"
)

// InterviewRecord stores one finished interview for later review and
// export. Live session state stays in the session store; this table is
// append-only history.
type InterviewRecord struct {
	gorm.Model
	SessionID       string     `gorm:"uniqueIndex;not null" json:"session_id"`
	PhoneNumber     string     `gorm:"not null" json:"phone_number"`
	Status          string     `gorm:"not null" json:"status"`
	QuestionCount   int        `gorm:"not null" json:"question_count"`
	DurationSeconds int        `gorm:"not null" json:"duration_seconds"`
	TurnsJSON       string     `gorm:"type:text;not null" json:"-"`
	Summary         string     `gorm:"type:text" json:"summary"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	EndedAt         time.Time  `json:"ended_at"`
	Exported        bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt      *time.Time `json:"exported_at"`
}

// ExportLine is one JSONL line in an archive export.
type ExportLine struct {
	SessionID       string       `json:"session_id"`
	PhoneNumber     string       `json:"phone_number"`
	Status          string       `json:"status"`
	DurationSeconds int          `json:"duration_seconds"`
	Turns           []ExportTurn `json:"turns"`
	Summary         string       `json:"summary"`
}

type ExportTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
