package archive

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/boam79/ai-interview/internal/session"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dsn := fmt.Sprintf("file:%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewManager(db)
}

func testSession(id string, endedOffset time.Duration) *session.Session {
	started := time.Now().Add(-10 * time.Minute).UTC()
	ended := started.Add(endedOffset)
	return &session.Session{
		ID:             id,
		PhoneNumber:    "01012345678",
		StartedAt:      started,
		EndedAt:        &ended,
		Status:         session.StatusCompleted,
		QuestionIndex:  2,
		QuestionBudget: 5,
		Turns: []session.Turn{
			{Question: "자기소개를 해주세요", Answer: "안녕하세요", AnsweredAt: started.Add(time.Minute)},
			{Question: "경험을 말해주세요", Answer: "큰 프로젝트를 했습니다", AnsweredAt: started.Add(2 * time.Minute)},
		},
		Summary: "좋은 면접이었습니다.",
	}
}

func TestStoreAndListRecent(t *testing.T) {
	m := newTestManager(t)

	if err := m.Store(testSession("interview_1", 3*time.Minute)); err != nil {
		t.Fatalf("failed to store: %v", err)
	}
	if err := m.Store(testSession("interview_2", 8*time.Minute)); err != nil {
		t.Fatalf("failed to store: %v", err)
	}

	records, err := m.ListRecent(10)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// most recently ended first
	if records[0].SessionID != "interview_2" {
		t.Fatalf("expected interview_2 first, got %s", records[0].SessionID)
	}
	if records[0].QuestionCount != 2 {
		t.Fatalf("unexpected question count: %d", records[0].QuestionCount)
	}
}

func TestStoreDuplicateSessionRejected(t *testing.T) {
	m := newTestManager(t)

	if err := m.Store(testSession("interview_dup", time.Minute)); err != nil {
		t.Fatalf("failed to store: %v", err)
	}
	if err := m.Store(testSession("interview_dup", time.Minute)); err == nil {
		t.Fatal("expected duplicate session id to be rejected")
	}
}

func TestExportLifecycle(t *testing.T) {
	m := newTestManager(t)

	m.Store(testSession("interview_a", time.Minute))
	m.Store(testSession("interview_b", 2*time.Minute))

	unexported, err := m.GetUnexported(0)
	if err != nil {
		t.Fatalf("failed to get unexported: %v", err)
	}
	if len(unexported) != 2 {
		t.Fatalf("expected 2 unexported records, got %d", len(unexported))
	}

	data, err := m.ExportToJSONL(unexported)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}
	lines := strings.Split(string(data), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"session_id"`) || !strings.Contains(string(data), "interview_a") {
		t.Fatalf("unexpected export content: %s", data)
	}

	ids := []uint{unexported[0].ID, unexported[1].ID}
	if err := m.MarkAsExported(ids); err != nil {
		t.Fatalf("failed to mark exported: %v", err)
	}

	remaining, err := m.GetUnexported(0)
	if err != nil {
		t.Fatalf("failed to get unexported: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no unexported records, got %d", len(remaining))
	}
}

func TestExportToJSONLRoundTripsTurns(t *testing.T) {
	m := newTestManager(t)

	s := testSession("interview_turns", time.Minute)
	m.Store(s)

	records, _ := m.ListRecent(1)
	data, err := m.ExportToJSONL(records)
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}
	for _, turn := range s.Turns {
		if !strings.Contains(string(data), turn.Question) {
			t.Fatalf("export missing question %q", turn.Question)
		}
	}
}
