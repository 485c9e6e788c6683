package archive

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/boam79/ai-interview/internal/session"
)

// Manager handles interview history storage and export
type Manager struct {
	db *gorm.DB
}

// NewManager creates a new archive manager
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// Migrate creates the archive tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&InterviewRecord{})
}

// Store records a finished session. Duplicate session ids are rejected
// by the unique index.
func (m *Manager) Store(s *session.Session) error {
	turnsJSON, err := json.Marshal(s.Turns)
	if err != nil {
		return fmt.Errorf("failed to marshal turns: %w", err)
	}

	endedAt := time.Now().UTC()
	if s.EndedAt != nil {
		endedAt = *s.EndedAt
	}

	record := &InterviewRecord{
		SessionID:       s.ID,
		PhoneNumber:     s.PhoneNumber,
		Status:          string(s.Status),
		QuestionCount:   len(s.Turns),
		DurationSeconds: s.Duration(),
		TurnsJSON:       string(turnsJSON),
		Summary:         s.Summary,
		StartedAt:       s.StartedAt,
		EndedAt:         endedAt,
		Exported:        false,
	}

	if err := m.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store interview record: %w", err)
	}

	log.Printf("Archived interview: session=%s, status=%s, turns=%d", s.ID, s.Status, len(s.Turns))
	return nil
}

// ListRecent returns the most recently finished interviews.
func (m *Manager) ListRecent(limit int) ([]InterviewRecord, error) {
	var records []InterviewRecord

	query := m.db.Order("ended_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list interview records: %w", err)
	}

	return records, nil
}

// GetUnexported retrieves records that haven't been exported yet
func (m *Manager) GetUnexported(limit int) ([]InterviewRecord, error) {
	var records []InterviewRecord

	query := m.db.Where("exported = ?", false).Order("ended_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported records: %w", err)
	}

	return records, nil
}

// MarkAsExported marks archive records as exported
func (m *Manager) MarkAsExported(recordIDs []uint) error {
	now := time.Now()
	result := m.db.Model(&InterviewRecord{}).
		Where("id IN ?", recordIDs).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark records as exported: %w", result.Error)
	}

	log.Printf("Marked %d interview records as exported", result.RowsAffected)
	return nil
}

// ExportToJSONL exports interview records to JSONL format, one line
// per session.
func (m *Manager) ExportToJSONL(records []InterviewRecord) ([]byte, error) {
	var jsonlLines []string

	for _, record := range records {
		var turns []session.Turn
		if err := json.Unmarshal([]byte(record.TurnsJSON), &turns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turns for %s: %w", record.SessionID, err)
		}

		exportTurns := make([]ExportTurn, len(turns))
		for i, turn := range turns {
			exportTurns[i] = ExportTurn{Question: turn.Question, Answer: turn.Answer}
		}

		line := ExportLine{
			SessionID:       record.SessionID,
			PhoneNumber:     record.PhoneNumber,
			Status:          record.Status,
			DurationSeconds: record.DurationSeconds,
			Turns:           exportTurns,
			Summary:         record.Summary,
		}

		jsonBytes, err := json.Marshal(line)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal export line: %w", err)
		}

		jsonlLines = append(jsonlLines, string(jsonBytes))
	}

	return []byte(strings.Join(jsonlLines, "\n")), nil
}
