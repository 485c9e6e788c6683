package jobs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/boam79/ai-interview/internal/archive"
)

// ArchiveExporterJob writes finished interviews to JSONL files on a schedule
type ArchiveExporterJob struct {
	archiveManager *archive.Manager
	config         *ExporterConfig
	cron           *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
}

// NewArchiveExporterJob creates a new exporter job
func NewArchiveExporterJob(archiveManager *archive.Manager, config *ExporterConfig) *ArchiveExporterJob {
	return &ArchiveExporterJob{
		archiveManager: archiveManager,
		config:         config,
		cron:           cron.New(),
	}
}

// Start begins the scheduled export job
func (aej *ArchiveExporterJob) Start() error {
	if !aej.config.ExportEnabled {
		log.Println("Interview export is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting interview exporter with schedule: %s", aej.config.Schedule)

	_, err := aej.cron.AddFunc(aej.config.Schedule, func() {
		if err := aej.RunExport(); err != nil {
			log.Printf("Export job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	aej.cron.Start()
	log.Println("Interview exporter started successfully")

	return nil
}

// Stop stops the scheduled export job
func (aej *ArchiveExporterJob) Stop() {
	if aej.cron != nil {
		aej.cron.Stop()
		log.Println("Interview exporter stopped")
	}
}

// RunExport performs a single export run
func (aej *ArchiveExporterJob) RunExport() error {
	log.Println("Starting interview export job...")

	records, err := aej.archiveManager.GetUnexported(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported records: %w", err)
	}

	if len(records) == 0 {
		log.Println("No unexported interviews found")
		return nil
	}

	log.Printf("Found %d unexported interview records", len(records))

	jsonlData, err := aej.archiveManager.ExportToJSONL(records)
	if err != nil {
		return fmt.Errorf("failed to export to JSONL: %w", err)
	}

	if err := os.MkdirAll(aej.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("interview_export_%s.jsonl", timestamp)
	exportPath := filepath.Join(aej.config.ExportDir, filename)

	if err := os.WriteFile(exportPath, jsonlData, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	log.Printf("Exported %d interviews to %s", len(records), exportPath)

	recordIDs := make([]uint, len(records))
	for i, record := range records {
		recordIDs[i] = record.ID
	}

	if err := aej.archiveManager.MarkAsExported(recordIDs); err != nil {
		return fmt.Errorf("failed to mark as exported: %w", err)
	}

	return nil
}
