package core

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/crmport/internal/config"
	"github.com/JonMunkholm/crmport/internal/logging"
)

// Service is the entry point for import, validation and export. It is safe
// for concurrent use; each import owns its own resolution state.
type Service struct {
	store   Store
	cfg     config.ImportConfig
	limiter *ImportLimiter
	history *history
}

// NewService creates a Service over store.
func NewService(store Store, cfg config.ImportConfig) *Service {
	return &Service{
		store:   store,
		cfg:     cfg,
		limiter: NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		history: newHistory(cfg.HistorySize),
	}
}

// Import runs one import under the concurrency limit and the configured
// timeout. The returned error is non-nil only when no slot could be acquired
// (ErrTooManyImports or ctx's error); every other outcome is in the Report.
//
// Cancellation of ctx does not stop an import that has started: store writes
// already issued cannot be undone, so a run is only cut short by its own
// timeout.
func (s *Service) Import(ctx context.Context, data []byte, filename string) (*Report, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	runCtx := context.WithoutCancel(ctx)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.cfg.Timeout)
		defer cancel()
	}

	runID := uuid.New()
	runCtx = logging.NewContext(runCtx, logging.WithFields(runCtx, "import_id", runID))

	start := time.Now()
	report := s.safeImport(runCtx, data, filename)

	s.history.add(ImportRun{
		ID:         runID,
		FileName:   filename,
		Size:       len(data),
		StartedAt:  start,
		DurationMS: time.Since(start).Milliseconds(),
		Report:     report,
	})

	return report, nil
}

// safeImport converts a panic inside the import into a failed report.
func (s *Service) safeImport(ctx context.Context, data []byte, filename string) (report *Report) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Error("panic in import",
				"file", filename,
				"panic", r,
			)
			report = newReport()
			report.addError(fmt.Sprintf("Import failed: %v", r))
		}
	}()
	return ProcessImport(ctx, s.store, data, filename)
}

// Validate checks a file without writing anything.
func (s *Service) Validate(data []byte, filename string) ([]MemberValidation, error) {
	return ValidateImport(data, filename)
}

// Export reads every entity from the store and renders the full-dump archive.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	contacts, err := s.store.ListContacts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}
	comms, err := s.store.ListCommunications(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list communications")
	}
	opps, err := s.store.ListOpportunities(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list opportunities")
	}

	data, err := ExportAll(accounts, contacts, comms, opps)
	if err != nil {
		return nil, errors.Wrap(err, "render export")
	}

	logging.FromContext(ctx).Info("export generated",
		"accounts", len(accounts),
		"contacts", len(contacts),
		"communications", len(comms),
		"opportunities", len(opps),
		"bytes", len(data),
	)
	return data, nil
}

// ExportSample renders the import template archive.
func (s *Service) ExportSample() ([]byte, error) {
	return ExportSample()
}

// History returns recent import runs, newest first.
func (s *Service) History() []ImportRun {
	return s.history.recent()
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ExportFileName is the download name of a full export taken at t.
func ExportFileName(t time.Time) string {
	return "CRM_Data_Export_" + t.Format("2006-01-02") + ".zip"
}

// SampleFileName is the download name of the import template.
const SampleFileName = "CRM_Import_Template.zip"
