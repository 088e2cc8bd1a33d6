// Package store implements the repository interfaces on SQLite through gorm.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/agentstation/carryon/pkg/catalog"
	"github.com/agentstation/carryon/pkg/errors"
	"github.com/agentstation/carryon/pkg/logging"
	"github.com/agentstation/carryon/pkg/repository"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config configures a Store.
type Config struct {
	// Path is the database file, or MemoryPath.
	Path string
	// Debug logs every SQL statement.
	Debug bool
}

// Store is a repository.Store backed by SQLite.
type Store struct {
	db *gorm.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens the database at cfg.Path and migrates the schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.NewConfigError("store", "database path is required", nil)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	dsn := cfg.Path
	if dsn != MemoryPath {
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", cfg.Path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.NewConfigError("store", "failed to open database "+cfg.Path, err)
	}

	if cfg.Path == MemoryPath {
		// Every connection to :memory: is a separate database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.NewConfigError("store", "failed to access connection pool", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	logging.FromContext(ctx).Debug().Str("path", cfg.Path).Msg("Opened catalog database")
	return s, nil
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&itemRow{}, &batchRow{}, &detectionRow{}); err != nil {
		return errors.WrapResource("migrate", "schema", "", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AllNames returns the {id, name} projection of the catalog ordered by id.
func (s *Store) AllNames(ctx context.Context) ([]catalog.NameRef, error) {
	var rows []itemRow
	if err := s.db.WithContext(ctx).Select("id", "name").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	refs := make([]catalog.NameRef, len(rows))
	for i, r := range rows {
		refs[i] = catalog.NameRef{ID: r.ID, Name: r.Name}
	}
	return refs, nil
}

// EntryByName returns the entry with exactly this name.
func (s *Store) EntryByName(ctx context.Context, name string) (*catalog.Entry, error) {
	var row itemRow
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.entry(), nil
}

// EntryByID returns the entry with this id.
func (s *Store) EntryByID(ctx context.Context, id uint) (*catalog.Entry, error) {
	var row itemRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.entry(), nil
}

// InsertEntry stores a new entry and sets entry.ID.
func (s *Store) InsertEntry(ctx context.Context, entry *catalog.Entry) (uint, error) {
	if entry == nil || entry.Name == "" {
		return 0, errors.NewValidationError("name", "", "catalog entry name is required")
	}

	row := newItemRow(entry)
	err := s.db.WithContext(ctx).Create(row).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, repository.ErrDuplicateName
	}
	if err != nil {
		return 0, err
	}

	entry.ID = row.ID
	return row.ID, nil
}

// InsertDetection stores a new detection record and sets rec.ID.
func (s *Store) InsertDetection(ctx context.Context, rec *catalog.DetectionRecord) (uint, error) {
	if rec == nil || rec.BatchID == "" {
		return 0, errors.NewValidationError("batch_id", "", "batch id is required")
	}

	row := newDetectionRow(rec)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return 0, err
	}

	rec.ID = row.ID
	return row.ID, nil
}

// DeleteDetections removes the given ids. Missing ids are ignored.
func (s *Store) DeleteDetections(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Delete(&detectionRow{}, ids)
	return res.RowsAffected, res.Error
}

// DetectionsByBatch returns the batch's records ordered by id.
func (s *Store) DetectionsByBatch(ctx context.Context, batchID string) ([]catalog.DetectionRecord, error) {
	var rows []detectionRow
	if err := s.db.WithContext(ctx).Where("batch_id = ?", batchID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]catalog.DetectionRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].record()
	}
	return out, nil
}

// Batch returns the batch with this id.
func (s *Store) Batch(ctx context.Context, id string) (*catalog.Batch, error) {
	var row batchRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &catalog.Batch{ID: row.ID, ImageWidth: row.ImageWidth, ImageHeight: row.ImageHeight}, nil
}

// SaveBatch creates or replaces a batch.
func (s *Store) SaveBatch(ctx context.Context, batch *catalog.Batch) error {
	if batch == nil || batch.ID == "" {
		return errors.NewValidationError("id", "", "batch id is required")
	}

	row := batchRow{ID: batch.ID, ImageWidth: batch.ImageWidth, ImageHeight: batch.ImageHeight}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"image_width", "image_height"}),
		}).
		Create(&row).Error
}

// SaveWeightEstimates attaches the estimates to their detections in one
// transaction. Nothing is written if any estimate references an unknown detection.
func (s *Store) SaveWeightEstimates(ctx context.Context, estimates []catalog.WeightEstimate) error {
	if len(estimates) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, est := range estimates {
			res := tx.Model(&detectionRow{}).
				Where("id = ?", est.DetectionID).
				Updates(map[string]any{
					"predicted_value": est.Value,
					"predicted_unit":  string(est.Unit),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errors.NewNotFoundError("detection", strconv.FormatUint(uint64(est.DetectionID), 10))
			}
		}
		return nil
	})
}
