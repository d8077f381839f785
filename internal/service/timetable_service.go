package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type runRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, run *models.TimetableRun) error
	ListByDataset(ctx context.Context, datasetID string) ([]models.TimetableRun, error)
	List(ctx context.Context, limit int) ([]models.TimetableRun, error)
	FindByID(ctx context.Context, id string) (*models.TimetableRun, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableRunStatus, meta types.JSONText) error
}

type entryRepository interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error
	ListByRun(ctx context.Context, runID string) ([]models.TimetableEntry, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type generationObserver interface {
	ObserveGeneration(duration time.Duration, scheduledClasses int)
	RecordCacheHit(cacheType string)
	RecordCacheMiss(cacheType string)
}

// TimetableService generates schedule proposals and persists accepted runs.
type TimetableService struct {
	runs      runRepository
	entries   entryRepository
	cache     timetableCache
	tx        txProvider
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	store     *proposalStore

	cacheEnabled bool
	cacheTTL     time.Duration
}

// TimetableServiceConfig governs proposal and cache behaviour.
type TimetableServiceConfig struct {
	ProposalTTL  time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewTimetableService wires the timetable dependencies.
func NewTimetableService(
	runs runRepository,
	entries entryRepository,
	cache timetableCache,
	tx txProvider,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &TimetableService{
		runs:         runs,
		entries:      entries,
		cache:        cache,
		tx:           tx,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		store:        newProposalStore(cfg.ProposalTTL),
		cacheEnabled: cfg.CacheEnabled && cache != nil,
		cacheTTL:     cfg.CacheTTL,
	}
}

// Generate runs the greedy scheduler over an inline roster payload.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}
	return s.GenerateRoster(ctx, buildRoster(req))
}

// GenerateRoster schedules a parsed roster. The dataset digest keys both the
// output cache and run versioning, so identical rosters share results.
func (s *TimetableService) GenerateRoster(ctx context.Context, roster models.Roster) (*dto.GenerateTimetableResponse, error) {
	if len(roster.Students) == 0 || len(roster.Rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster requires at least one student and one room")
	}

	datasetID, err := rosterDigest(roster)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fingerprint roster")
	}

	var (
		output *models.ScheduleOutput
		cached bool
		stats  dto.TimetableStats
	)

	cacheKey := "timetable:output:" + datasetID
	if s.cacheEnabled {
		var hit cachedGeneration
		if err := s.cache.Get(ctx, cacheKey, &hit); err == nil && hit.Output != nil {
			output = hit.Output
			stats = hit.Stats
			cached = true
			if s.metrics != nil {
				s.metrics.RecordCacheHit("timetable_output")
			}
		} else if s.metrics != nil {
			s.metrics.RecordCacheMiss("timetable_output")
		}
	}

	if output == nil {
		start := time.Now()
		output = timetable.Generate(roster)
		elapsed := time.Since(start)

		stats = dto.TimetableStats{
			Sections:         len(output.SectionSchedules),
			ScheduledClasses: countScheduled(output),
			DurationMillis:   elapsed.Milliseconds(),
		}
		if s.metrics != nil {
			s.metrics.ObserveGeneration(elapsed, stats.ScheduledClasses)
		}
		if s.cacheEnabled {
			if err := s.cache.Set(ctx, cacheKey, cachedGeneration{Output: output, Stats: stats}, s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache generated timetable", zap.String("dataset_id", datasetID), zap.Error(err))
			}
		}
	}

	proposal := timetableProposal{
		ProposalID:  uuid.NewString(),
		DatasetID:   datasetID,
		Output:      output,
		Stats:       stats,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	s.logger.Info("generated timetable proposal",
		zap.String("proposal_id", proposal.ProposalID),
		zap.String("dataset_id", datasetID),
		zap.Int("sections", stats.Sections),
		zap.Int("scheduled_classes", stats.ScheduledClasses),
		zap.Bool("cached", cached),
	)

	return &dto.GenerateTimetableResponse{
		ProposalID: proposal.ProposalID,
		DatasetID:  datasetID,
		Output:     output,
		Stats:      stats,
		Cached:     cached,
	}, nil
}

// Save persists a proposal as the next versioned run for its dataset.
func (s *TimetableService) Save(ctx context.Context, req dto.SaveTimetableRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save timetable payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	meta := dto.RunMeta{
		Sections:         proposal.Stats.Sections,
		ScheduledClasses: proposal.Stats.ScheduledClasses,
		GeneratedAt:      proposal.RequestedAt,
		Algorithm:        "greedy_first_fit_v1",
	}
	metaBytes, marshalErr := json.Marshal(meta)
	if marshalErr != nil {
		err = appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode run metadata")
		return "", err
	}

	record := &models.TimetableRun{
		DatasetID: proposal.DatasetID,
		Status:    models.TimetableRunStatusDraft,
		Meta:      types.JSONText(metaBytes),
	}
	if err = s.runs.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable run")
		return "", err
	}

	entries, flattenErr := flattenOutput(record.ID, proposal.Output)
	if flattenErr != nil {
		err = appErrors.Wrap(flattenErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode timetable entries")
		return "", err
	}
	if err = s.entries.InsertBatch(ctx, tx, entries); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable entries")
		return "", err
	}

	if req.Publish {
		if err = s.runs.UpdateStatus(ctx, tx, record.ID, models.TimetableRunStatusPublished, nil); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish timetable run")
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return "", err
	}

	s.store.Delete(req.ProposalID)
	return record.ID, nil
}

// List returns stored runs, optionally filtered by dataset digest.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableRunQuery) ([]models.TimetableRun, error) {
	var (
		runs []models.TimetableRun
		err  error
	)
	if query.DatasetID != "" {
		runs, err = s.runs.ListByDataset(ctx, query.DatasetID)
	} else {
		runs, err = s.runs.List(ctx, 0)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable runs")
	}
	return runs, nil
}

// Get returns a stored run together with its entries.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableRunDetail, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "run id is required")
	}
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable run")
	}
	entries, err := s.entries.ListByRun(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable entries")
	}
	return &dto.TimetableRunDetail{Run: *run, Entries: entries}, nil
}

// Delete removes a draft run version.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable run")
	}
	if run.Status != models.TimetableRunStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft runs can be deleted")
	}
	if err := s.runs.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable run")
	}
	return nil
}

func buildRoster(req dto.GenerateTimetableRequest) models.Roster {
	roster := models.Roster{
		Students: make([]models.Student, 0, len(req.Students)),
		Courses:  make(map[string]models.Course, len(req.Courses)),
		Teachers: make(map[string]models.Teacher, len(req.Teachers)),
		Rooms:    make([]models.Room, 0, len(req.Rooms)),
	}
	for _, item := range req.Students {
		roster.Students = append(roster.Students, models.Student{
			ID:      item.ID,
			Name:    item.Name,
			Section: item.Section,
			Courses: item.Courses,
		})
	}
	for _, item := range req.Courses {
		duration := item.Duration
		if duration <= 0 {
			duration = 1
		}
		roster.Courses[item.ID] = models.Course{
			ID:        item.ID,
			Name:      item.Name,
			TeacherID: item.TeacherID,
			Duration:  duration,
		}
	}
	for _, item := range req.Teachers {
		roster.Teachers[item.ID] = models.Teacher{
			ID:      item.ID,
			Name:    item.Name,
			Courses: item.Courses,
		}
	}
	for _, item := range req.Rooms {
		capacity := item.Capacity
		if capacity <= 0 {
			capacity = 50
		}
		roomType := models.RoomType(item.Type)
		if roomType == "" {
			roomType = models.RoomTypeNormal
		}
		roster.Rooms = append(roster.Rooms, models.Room{
			ID:       item.ID,
			Name:     item.Name,
			Type:     roomType,
			Capacity: capacity,
		})
	}
	return roster
}

// rosterDigest fingerprints a roster. Map keys marshal in sorted order, so
// equal rosters always produce the same digest.
func rosterDigest(roster models.Roster) (string, error) {
	payload, err := json.Marshal(roster)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func countScheduled(output *models.ScheduleOutput) int {
	total := 0
	for _, section := range output.SectionSchedules {
		total += len(section.Classes)
	}
	return total
}

func flattenOutput(runID string, output *models.ScheduleOutput) ([]models.TimetableEntry, error) {
	var entries []models.TimetableEntry
	for _, section := range output.SectionSchedules {
		for _, class := range section.Classes {
			students, err := json.Marshal(class.Students)
			if err != nil {
				return nil, err
			}
			entries = append(entries, models.TimetableEntry{
				RunID:       runID,
				Section:     class.Section,
				CourseID:    class.CourseID,
				CourseName:  class.CourseName,
				TeacherID:   class.TeacherID,
				TeacherName: class.TeacherName,
				RoomID:      class.RoomID,
				RoomName:    class.RoomName,
				StartHour:   class.Hour,
				Students:    types.JSONText(students),
			})
		}
	}
	return entries, nil
}

type cachedGeneration struct {
	Output *models.ScheduleOutput `json:"output"`
	Stats  dto.TimetableStats     `json:"stats"`
}

// --- Proposal cache ---

type timetableProposal struct {
	ProposalID  string
	DatasetID   string
	Output      *models.ScheduleOutput
	Stats       dto.TimetableStats
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]timetableProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]timetableProposal),
	}
}

func (s *proposalStore) Save(proposal timetableProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (timetableProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return timetableProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return timetableProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
