// Package aggregation implements the report aggregation engine: record
// classification, header-driven schema discovery, date-keyed upserts into
// the summary report, and the deduplicating event-ledger upsert.
package aggregation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tmori/recruitsum/internal/domain"
	"github.com/tmori/recruitsum/internal/grid"
	"github.com/tmori/recruitsum/internal/metrics"
	"github.com/tmori/recruitsum/internal/notify"
	"github.com/tmori/recruitsum/internal/repository"
	"github.com/tmori/recruitsum/internal/source"
)

// Logical table names resolved through the configuration collaborator.
const (
	LogicalUsersExport = "users_export"
	LogicalUsersReport = "users_report"
	LogicalEntryExport = "entryprocess_export"
	LogicalEntryLedger = "entryprocess_ledger"
)

// Kind selects which aggregation to run.
type Kind string

const (
	KindUsers        Kind = "users"
	KindEntryProcess Kind = "entryprocess"
	KindBoth         Kind = "both"
)

// ParseKind validates a kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindUsers:
		return KindUsers, nil
	case KindEntryProcess:
		return KindEntryProcess, nil
	case KindBoth:
		return KindBoth, nil
	default:
		return "", fmt.Errorf("unknown aggregation kind %q", raw)
	}
}

// Result carries the per-kind success flags. A kind that was not requested
// reports true.
type Result struct {
	UsersOK        bool
	EntryProcessOK bool
}

// OK reports overall success.
func (r Result) OK() bool {
	return r.UsersOK && r.EntryProcessOK
}

// TableResolver maps logical table names to physical identifiers.
type TableResolver interface {
	Resolve(logical string) (string, error)
}

// EventFieldNames names the export columns carrying an event's composite
// key.
type EventFieldNames struct {
	Identity  string
	Category  string
	EventDate string
	GroupCode string
	GroupName string
}

func (f EventFieldNames) list() []string {
	return []string{f.Identity, f.Category, f.EventDate, f.GroupCode, f.GroupName}
}

// Settings is the declarative part of the engine: vocabularies, field
// names, and grid layout constants.
type Settings struct {
	Categories      []string
	Routes          []string
	OverallSection  string
	TotalLabel      string
	ExcludedMarkers []string
	CategoryField   string
	RouteField      string
	EventFields     EventFieldNames

	// ReportHeaderRows is the number of header rows in the summary report
	// (two: sections, then categories). LedgerHeaderRows covers the ledger.
	ReportHeaderRows int
	LedgerHeaderRows int
}

// Service runs the aggregation kinds against the collaborators it was built
// with. All dependencies are injected; there are no ambient singletons.
type Service struct {
	settings Settings
	tables   TableResolver
	source   source.Reader
	grid     grid.Client

	notifier notify.Notifier
	runs     repository.RunLogRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time

	categories domain.Vocabulary
	routes     domain.Vocabulary
	resolver   *SchemaResolver
	planner    *Planner
	sections   map[string]string
}

// Option customizes the service.
type Option func(*Service)

// WithNotifier attaches an error notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRunLog attaches a run log repository.
func WithRunLog(r repository.RunLogRepository) Option {
	return func(s *Service) { s.runs = r }
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the aggregation engine.
func NewService(settings Settings, tables TableResolver, src source.Reader, gridClient grid.Client, opts ...Option) *Service {
	if settings.ReportHeaderRows <= 0 {
		settings.ReportHeaderRows = 2
	}
	if settings.LedgerHeaderRows < 0 {
		settings.LedgerHeaderRows = 0
	}

	s := &Service{
		settings: settings,
		tables:   tables,
		source:   src,
		grid:     gridClient,
		notifier: notify.Nop{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.categories = domain.NewVocabulary(settings.Categories)
	s.routes = domain.NewVocabulary(settings.Routes)
	s.resolver = NewSchemaResolver(s.categories, settings.TotalLabel, settings.ExcludedMarkers, s.logger)
	s.planner = NewPlanner(settings.TotalLabel, s.logger)

	s.sections = map[string]string{domain.OverallKey: domain.Normalize(settings.OverallSection)}
	for _, route := range s.routes.Labels() {
		s.sections[route] = route
	}

	return s
}

// Run executes the requested aggregation kind(s). Kinds run sequentially
// and a failure in one is isolated from the other; the flags in Result are
// the only cross-kind coupling.
func (s *Service) Run(ctx context.Context, kind Kind) (Result, error) {
	result := Result{UsersOK: true, EntryProcessOK: true}
	switch kind {
	case KindUsers:
		result.UsersOK = s.runUsers(ctx) == nil
	case KindEntryProcess:
		result.EntryProcessOK = s.runEntryProcess(ctx) == nil
	case KindBoth:
		result.UsersOK = s.runUsers(ctx) == nil
		result.EntryProcessOK = s.runEntryProcess(ctx) == nil
	default:
		return Result{}, fmt.Errorf("unknown aggregation kind %q", kind)
	}
	return result, nil
}

func (s *Service) runUsers(ctx context.Context) error {
	entry := s.newRunEntry(string(KindUsers))
	unmatched := map[string]map[string]int{}

	err := s.aggregateUsers(ctx, &entry, unmatched)
	return s.finishRun(ctx, &entry, unmatched, err)
}

func (s *Service) runEntryProcess(ctx context.Context) error {
	entry := s.newRunEntry(string(KindEntryProcess))

	err := s.aggregateEntryProcess(ctx, &entry)
	return s.finishRun(ctx, &entry, nil, err)
}

func (s *Service) aggregateUsers(ctx context.Context, entry *domain.RunLogEntry, unmatched map[string]map[string]int) error {
	exportTable, err := s.resolveTable(LogicalUsersExport)
	if err != nil {
		return err
	}
	reportTable, err := s.resolveTable(LogicalUsersReport)
	if err != nil {
		return err
	}
	entry.DestinationTable = reportTable

	headers, rows, err := s.source.ReadAllRows(ctx, exportTable)
	if err != nil {
		return &ConnectionError{Op: "read source", Table: exportTable, Err: err}
	}
	if missing := source.MissingColumns(headers, s.settings.CategoryField); len(missing) > 0 {
		return &SchemaError{Reason: fmt.Sprintf("source %s missing required columns %v", exportTable, missing)}
	}
	entry.TotalRows = len(rows)

	classifier := NewClassifier(s.categories, s.routes, s.logger)
	buckets := domain.NewBucketSet(s.categories, s.routes.Labels())
	for i, row := range rows {
		record := domain.NewRawRecord(headers, row)
		classification, classErr := classifier.Classify(record, s.settings.CategoryField, s.settings.RouteField)
		if classErr != nil {
			s.logger.Warn("malformed row skipped", zap.Int("row", i+2), zap.Error(classErr))
			continue
		}
		classifier.Accumulate(buckets, classification)
	}
	entry.UnmatchedRows = classifier.UnmatchedCategoryTotal()
	entry.MatchedRows = buckets.Total(domain.OverallKey)
	unmatched[s.settings.CategoryField] = classifier.UnmatchedCategories()
	unmatched[s.settings.RouteField] = classifier.UnmatchedSubdimensions()

	cells, err := s.grid.ReadAll(ctx, reportTable)
	if err != nil {
		return &ConnectionError{Op: "read grid", Table: reportTable, Err: err}
	}

	var sectionRow, categoryRow []string
	if len(cells) > 0 {
		sectionRow = cells[0]
	}
	if len(cells) > 1 {
		categoryRow = cells[1]
	}
	columns, err := s.resolver.Resolve(sectionRow, categoryRow)
	if err != nil {
		return err
	}

	lookup := LocateDateRow(cells, entry.DateKey, s.settings.ReportHeaderRows)
	updates := s.planner.Plan(buckets, columns, lookup.Row, entry.DateKey, s.sections)

	if err := s.grid.BatchWrite(ctx, reportTable, updates); err != nil {
		return &WriteError{Table: reportTable, Err: err}
	}

	s.countCells(string(KindUsers), len(updates))
	s.logger.Info("user phase aggregation written",
		zap.String("table", reportTable),
		zap.String("date_key", entry.DateKey),
		zap.Int("row", lookup.Row),
		zap.Bool("row_existed", lookup.Found),
		zap.Int("cells", len(updates)))
	return nil
}

func (s *Service) aggregateEntryProcess(ctx context.Context, entry *domain.RunLogEntry) error {
	exportTable, err := s.resolveTable(LogicalEntryExport)
	if err != nil {
		return err
	}
	ledgerTable, err := s.resolveTable(LogicalEntryLedger)
	if err != nil {
		return err
	}
	entry.DestinationTable = ledgerTable

	headers, rows, err := s.source.ReadAllRows(ctx, exportTable)
	if err != nil {
		return &ConnectionError{Op: "read source", Table: exportTable, Err: err}
	}
	fields := s.settings.EventFields
	if missing := source.MissingColumns(headers, fields.list()...); len(missing) > 0 {
		return &SchemaError{Reason: fmt.Sprintf("source %s missing required columns %v", exportTable, missing)}
	}
	entry.TotalRows = len(rows)

	events := make([]domain.EntryEvent, 0, len(rows))
	for _, row := range rows {
		record := domain.NewRawRecord(headers, row)
		events = append(events, eventFromRecord(record, fields))
	}

	deduped := Dedup(events, s.logger)
	entry.DuplicateRows = deduped.Duplicates
	entry.MatchedRows = len(deduped.Events)

	payload := make([][]string, len(deduped.Events))
	for i, event := range deduped.Events {
		payload[i] = event.LedgerRow()
	}

	writer := NewLedgerWriter(s.grid, s.logger)
	if err := writer.Upsert(ctx, ledgerTable, entry.DateKey, payload, s.settings.LedgerHeaderRows); err != nil {
		return err
	}

	s.countCells(string(KindEntryProcess), len(payload)*6)
	s.countDuplicates(string(KindEntryProcess), deduped.Duplicates)
	s.logger.Info("entry process ledger written",
		zap.String("table", ledgerTable),
		zap.String("date_key", entry.DateKey),
		zap.Int("rows", len(payload)),
		zap.Int("duplicates", deduped.Duplicates),
		zap.Int("unlinked", deduped.Unlinked))
	return nil
}

func eventFromRecord(record domain.RawRecord, fields EventFieldNames) domain.EntryEvent {
	get := func(name string) string {
		value, _ := record.Get(name)
		return strings.TrimSpace(value)
	}
	return domain.EntryEvent{
		Identity:  get(fields.Identity),
		Category:  get(fields.Category),
		EventDate: get(fields.EventDate),
		GroupCode: get(fields.GroupCode),
		GroupName: get(fields.GroupName),
	}
}

func (s *Service) newRunEntry(kind string) domain.RunLogEntry {
	started := s.now()
	return domain.RunLogEntry{
		RunID:     uuid.New(),
		Kind:      kind,
		DateKey:   started.Format(domain.DateKeyLayout),
		StartedAt: started,
	}
}

// finishRun records the outcome in the run log, updates metrics, and
// forwards failures to the notifier. It returns the original error.
func (s *Service) finishRun(ctx context.Context, entry *domain.RunLogEntry, unmatched map[string]map[string]int, runErr error) error {
	entry.FinishedAt = s.now()
	entry.OK = runErr == nil
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
		s.logger.Error("aggregation failed",
			zap.String("kind", entry.Kind),
			zap.String("table", entry.DestinationTable),
			zap.Error(runErr))
		s.notifier.NotifyError(ctx, fmt.Sprintf("%s aggregation failed", entry.Kind), runErr, map[string]string{
			"kind":     entry.Kind,
			"table":    entry.DestinationTable,
			"date_key": entry.DateKey,
			"run_id":   entry.RunID.String(),
		})
	}

	if s.metrics != nil {
		result := "ok"
		if runErr != nil {
			result = "error"
		}
		s.metrics.RunsTotal.WithLabelValues(entry.Kind, result).Inc()
		s.metrics.RunDuration.WithLabelValues(entry.Kind).Observe(entry.FinishedAt.Sub(entry.StartedAt).Seconds())
		s.metrics.RecordsProcessed.WithLabelValues(entry.Kind).Add(float64(entry.TotalRows))
		s.metrics.UnmatchedLabels.WithLabelValues(entry.Kind).Add(float64(entry.UnmatchedRows))
		if runErr == nil {
			s.metrics.LastSuccessTS.WithLabelValues(entry.Kind).Set(float64(entry.FinishedAt.Unix()))
		}
	}

	if s.runs != nil {
		if err := s.runs.RecordRun(ctx, *entry); err != nil {
			s.logger.Warn("record run log", zap.Error(err))
		}
		for field, counts := range unmatched {
			if field == "" || len(counts) == 0 {
				continue
			}
			if err := s.runs.RecordUnmatchedLabels(ctx, entry.RunID, field, counts); err != nil {
				s.logger.Warn("record unmatched labels", zap.Error(err))
			}
		}
	}

	return runErr
}

func (s *Service) resolveTable(logical string) (string, error) {
	physical, err := s.tables.Resolve(logical)
	if err != nil {
		return "", &ConfigurationError{Name: logical, Err: err}
	}
	return physical, nil
}

func (s *Service) countCells(kind string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.CellsWritten.WithLabelValues(kind).Add(float64(n))
	}
}

func (s *Service) countDuplicates(kind string, n int) {
	if s.metrics != nil && n > 0 {
		s.metrics.DuplicatesDropped.WithLabelValues(kind).Add(float64(n))
	}
}
