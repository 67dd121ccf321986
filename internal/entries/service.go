package entries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/folio-journal/backend/internal/content"
)

var (
	// ErrEntryNotFound indicates the requested entry id does not exist.
	ErrEntryNotFound = errors.New("entries: entry not found")

	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceError wraps a store failure with a stable operation.reason code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew  = "entries.service.new"
	opCreateEntry = "entries.create"
	opGetEntry    = "entries.get"
	opListEntries = "entries.list"
	opUpdateEntry = "entries.update"
	opDeleteEntry = "entries.delete"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies of the entry store service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service owns CRUD over the journals table. The id uniquely identifies an
// entry for its entire lifetime; the date is set once at creation and used
// only for list ordering.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the entry store service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, clock: clock, logger: logger}, nil
}

// Create persists a new entry, assigning its id and creation date. The
// format tag is taken from the draft when supplied and sniffed from the
// text otherwise.
func (s *Service) Create(ctx context.Context, draft Draft) (Entry, error) {
	format := draft.TextFormat
	if format == content.FormatUnknown && draft.Text != nil {
		format = content.DetectFormat(*draft.Text)
	}
	entry := Entry{
		Title:      draft.Title,
		Author:     draft.Author,
		Caption:    draft.Caption,
		Image:      draft.Image,
		Text:       draft.Text,
		TextFormat: string(format),
		Date:       s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logError(opCreateEntry, "insert_failed", err)
		return Entry{}, newServiceError(opCreateEntry, "insert_failed", err)
	}
	return entry, nil
}

// Get loads one entry by id.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, ErrEntryNotFound
	}
	if err != nil {
		s.logError(opGetEntry, "query_failed", err, zap.Int64("entry_id", id))
		return Entry{}, newServiceError(opGetEntry, "query_failed", err)
	}
	return entry, nil
}

// List returns all entries ordered by date descending.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	var result []Entry
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&result).Error; err != nil {
		s.logError(opListEntries, "query_failed", err)
		return nil, newServiceError(opListEntries, "query_failed", err)
	}
	return result, nil
}

// Update applies a partial patch to an existing entry and returns the
// updated row. A missing id yields ErrEntryNotFound; the date is never
// mutated by edits.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Entry, error) {
	var updated Entry
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entry Entry
		err := tx.Where("id = ?", id).Take(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			s.logError(opUpdateEntry, "select_failed", err, zap.Int64("entry_id", id))
			return newServiceError(opUpdateEntry, "select_failed", err)
		}

		if patch.Title != nil {
			entry.Title = patch.Title
		}
		if patch.Author != nil {
			entry.Author = patch.Author
		}
		if patch.Caption != nil {
			entry.Caption = patch.Caption
		}
		if patch.Image != nil {
			entry.Image = patch.Image
		}
		if patch.Text != nil {
			entry.Text = patch.Text
			if patch.TextFormat == nil {
				entry.TextFormat = string(content.DetectFormat(*patch.Text))
			}
		}
		if patch.TextFormat != nil {
			entry.TextFormat = string(*patch.TextFormat)
		}

		if err := tx.Save(&entry).Error; err != nil {
			s.logError(opUpdateEntry, "save_failed", err, zap.Int64("entry_id", id))
			return newServiceError(opUpdateEntry, "save_failed", err)
		}
		updated = entry
		return nil
	})
	if txErr != nil {
		return Entry{}, txErr
	}
	return updated, nil
}

// Delete removes an entry by id, yielding ErrEntryNotFound for unknown ids.
func (s *Service) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Entry{})
	if result.Error != nil {
		s.logError(opDeleteEntry, "delete_failed", result.Error, zap.Int64("entry_id", id))
		return newServiceError(opDeleteEntry, "delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("entries service error", attrs...)
}
