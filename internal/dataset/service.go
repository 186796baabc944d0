package dataset

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spendlens/spendlens/internal/analytics"
	"github.com/spendlens/spendlens/internal/ingest"
	"github.com/spendlens/spendlens/internal/lineitem"
	"github.com/spendlens/spendlens/internal/scanning"
)

// IDGenerator generates unique IDs for datasets
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates IDs using random UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service manages line item datasets and produces analytics reports over
// them. The scanner is optional; without one, receipt photo uploads are
// rejected and CSV import is the only ingestion path.
type Service struct {
	db          DB
	scanner     scanning.Scanner
	storage     Storage
	engine      *analytics.Engine
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default dependencies
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		engine:      analytics.NewEngine(),
		idGenerator: &uuidGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, engine *analytics.Engine, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		engine:      engine,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and
// truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "upload"
	}

	return base + ext
}

// ImportCSV parses a normalized line-item CSV export, keeps the source file,
// and stores the records as a new dataset.
func (s *Service) ImportCSV(name, filename string, data []byte) (*lineitem.Dataset, error) {
	records, err := ingest.ParseCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv contains no line items")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	cleanFilename := sanitizeFilename(filename)
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving source file: %w", err)
	}

	if name == "" {
		name = strings.TrimSuffix(cleanFilename, filepath.Ext(cleanFilename))
	}

	ds := &lineitem.Dataset{
		ID:          id,
		Name:        name,
		SourceFile:  savedPath,
		RecordCount: len(records),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.SaveRecords(id, records); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving records: %w", err)
	}
	if err := s.db.SaveDataset(ds); err != nil {
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving dataset: %w", err)
	}

	slog.Info("Imported dataset", "id", id, "name", name, "records", len(records))
	return ds, nil
}

// ScanReceipt extracts line items from a receipt image/PDF and appends them
// to an existing dataset.
func (s *Service) ScanReceipt(datasetID, filename string, data []byte, contentType string) (*lineitem.Dataset, error) {
	if s.scanner == nil {
		return nil, fmt.Errorf("receipt scanning is not enabled")
	}

	ds, err := s.db.GetDataset(datasetID)
	if err != nil {
		return nil, fmt.Errorf("getting dataset: %w", err)
	}

	scanned, err := s.scanner.ScanReceipt(data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}
	if len(scanned.Items) == 0 {
		return nil, fmt.Errorf("no line items found on receipt")
	}

	cleanFilename := sanitizeFilename(filename)
	if _, err := s.storage.Save(fmt.Sprintf("%s_%s", ds.ID, cleanFilename), data); err != nil {
		return nil, fmt.Errorf("saving receipt file: %w", err)
	}

	records, err := s.db.GetRecords(datasetID)
	if err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}
	records = append(records, s.recordsFromScan(scanned)...)

	now := s.timeSource.Now()
	ds.RecordCount = len(records)
	ds.UpdatedAt = now

	if err := s.db.SaveRecords(datasetID, records); err != nil {
		return nil, fmt.Errorf("saving records: %w", err)
	}
	if err := s.db.SaveDataset(ds); err != nil {
		return nil, fmt.Errorf("saving dataset: %w", err)
	}

	slog.Info("Appended scanned receipt", "dataset", datasetID, "items", len(scanned.Items))
	return ds, nil
}

// recordsFromScan converts scanner output into normalized records. A receipt
// without a readable number still needs a stable receipt key, so one is
// generated.
func (s *Service) recordsFromScan(scanned *scanning.ScannedReceipt) []lineitem.Record {
	receiptID := scanned.ReceiptID
	if receiptID == "" {
		receiptID = s.idGenerator.Generate()
	}

	var date *time.Time
	if scanned.Date != "" {
		if d, err := time.Parse("2006-01-02", scanned.Date); err == nil {
			date = &d
		}
	}

	records := make([]lineitem.Record, 0, len(scanned.Items))
	for _, item := range scanned.Items {
		records = append(records, lineitem.Record{
			ReceiptID:      receiptID,
			Date:           date,
			Department:     item.Department,
			SKU:            item.SKU,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			LineTotal:      item.LineTotal,
			InstantSavings: item.InstantSavings,
		})
	}
	return records
}

// Report runs the analytics engine over a dataset's full record sequence.
func (s *Service) Report(datasetID string) (*analytics.Report, error) {
	records, err := s.db.GetRecords(datasetID)
	if err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}
	return s.engine.Analyze(records), nil
}

// GetDataset retrieves a dataset by ID
func (s *Service) GetDataset(id string) (*lineitem.Dataset, error) {
	ds, err := s.db.GetDataset(id)
	if err != nil {
		return nil, fmt.Errorf("getting dataset: %w", err)
	}
	return ds, nil
}

// ListDatasets returns all datasets
func (s *Service) ListDatasets() ([]*lineitem.Dataset, error) {
	datasets, err := s.db.ListDatasets()
	if err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	return datasets, nil
}

// DeleteDataset removes a dataset, its records, and its stored source file
func (s *Service) DeleteDataset(id string) error {
	ds, err := s.db.GetDataset(id)
	if err != nil {
		return fmt.Errorf("getting dataset for deletion: %w", err)
	}

	if ds.SourceFile != "" {
		if err := s.storage.Delete(ds.SourceFile); err != nil {
			slog.Warn("Failed to delete source file", "filename", ds.SourceFile, "error", err)
		}
	}

	if err := s.db.DeleteDataset(id); err != nil {
		return fmt.Errorf("deleting dataset: %w", err)
	}
	return nil
}
