package mlwh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"keel/internal/config"
	"keel/internal/services"
)

// sqlChunkSize bounds batched reads from the warehouse.
const sqlChunkSize = 1000

// recentCreationGrace is subtracted from a window start when looking for
// updated rows. The warehouse loader backdates recorded_at on initial load, so
// rows created just before the window are new rather than updated.
const recentCreationGrace = 24 * time.Hour

// Store provides read access to the ML warehouse plus writes to the
// product location table.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// Open connects to the warehouse using the configured MySQL DSN.
func Open(cfg *config.Config, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(mysql.Open(cfg.MLWHDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to warehouse: %w", err)
	}
	return NewWithDB(db, log), nil
}

// NewWithDB wraps an existing gorm connection (primarily for tests).
func NewWithDB(db *gorm.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log.With(slog.String("component", "mlwh"))}
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ConsentWithdrawnSamples returns all samples marked as having their consent
// withdrawn.
func (s *Store) ConsentWithdrawnSamples(ctx context.Context) ([]Sample, error) {
	var samples []Sample
	err := s.db.WithContext(ctx).
		Where("consent_withdrawn = ?", 1).
		Order("id_sample_tmp").
		Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("find consent withdrawn samples: %w", err)
	}
	return samples, nil
}

// SampleByLimsID returns the sample with the given LIMS sample ID.
func (s *Store) SampleByLimsID(ctx context.Context, sampleID string) (*Sample, error) {
	var sample Sample
	err := s.db.WithContext(ctx).Where("id_sample_lims = ?", sampleID).First(&sample).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.Wrap(services.ErrNotFound, "mlwh", "sample lookup", sampleID, nil)
		}
		return nil, fmt.Errorf("find sample %q: %w", sampleID, err)
	}
	return &sample, nil
}

// StudyByLimsID returns the study with the given LIMS study ID.
func (s *Store) StudyByLimsID(ctx context.Context, studyID string) (*Study, error) {
	var study Study
	err := s.db.WithContext(ctx).Where("id_study_lims = ?", studyID).First(&study).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.Wrap(services.ErrNotFound, "mlwh", "study lookup", studyID, nil)
		}
		return nil, fmt.Errorf("find study %q: %w", studyID, err)
	}
	return &study, nil
}

// StudiesForSample returns the studies linked to a sample through the Illumina
// flowcell table.
func (s *Store) StudiesForSample(ctx context.Context, sampleID string) ([]Study, error) {
	var studies []Study
	err := s.db.WithContext(ctx).
		Distinct("study.*").
		Model(&Study{}).
		Joins("JOIN iseq_flowcell ON iseq_flowcell.id_study_tmp = study.id_study_tmp").
		Joins("JOIN sample ON sample.id_sample_tmp = iseq_flowcell.id_sample_tmp").
		Where("sample.id_sample_lims = ?", sampleID).
		Order("study.id_study_tmp").
		Find(&studies).Error
	if err != nil {
		return nil, fmt.Errorf("find studies for sample %q: %w", sampleID, err)
	}
	return studies, nil
}

// UpdatedSampleIDs returns LIMS IDs of samples updated in the warehouse inside
// the window, excluding rows whose creation falls just before it.
func (s *Store) UpdatedSampleIDs(ctx context.Context, since, until time.Time) ([]string, error) {
	return s.updatedIDs(ctx, &Sample{}, "id_sample_lims", since, until)
}

// UpdatedStudyIDs returns LIMS IDs of studies updated in the warehouse inside
// the window, excluding rows whose creation falls just before it.
func (s *Store) UpdatedStudyIDs(ctx context.Context, since, until time.Time) ([]string, error) {
	return s.updatedIDs(ctx, &Study{}, "id_study_lims", since, until)
}

func (s *Store) updatedIDs(ctx context.Context, model any, column string, since, until time.Time) ([]string, error) {
	recentCreation := since.Add(-recentCreationGrace)

	rows, err := s.db.WithContext(ctx).
		Model(model).
		Select(column).
		Where("recorded_at BETWEEN ? AND ?", since, until).
		Not("created BETWEEN ? AND ?", recentCreation, since).
		Order("recorded_at ASC").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("query updated %s: %w", column, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdatedOntFlowcells returns ONT flowcell rows whose flowcell, sample, or
// study record changed inside the window, with sample and study preloaded.
func (s *Store) UpdatedOntFlowcells(ctx context.Context, since, until time.Time) ([]OseqFlowcell, error) {
	var flowcells []OseqFlowcell
	err := s.db.WithContext(ctx).
		Preload("Sample").
		Preload("Study").
		Joins("JOIN sample ON sample.id_sample_tmp = oseq_flowcell.id_sample_tmp").
		Joins("JOIN study ON study.id_study_tmp = oseq_flowcell.id_study_tmp").
		Where(
			s.db.Where("oseq_flowcell.recorded_at BETWEEN ? AND ?", since, until).
				Or("sample.recorded_at BETWEEN ? AND ?", since, until).
				Or("study.recorded_at BETWEEN ? AND ?", since, until),
		).
		Order("oseq_flowcell.experiment_name, oseq_flowcell.instrument_slot").
		Limit(sqlChunkSize).
		Find(&flowcells).Error
	if err != nil {
		return nil, fmt.Errorf("query updated ONT flowcells: %w", err)
	}
	return flowcells, nil
}

// BackfillResult summarizes a location backfill write.
type BackfillResult struct {
	Created   int
	Updated   int
	Unchanged int
}

// BackfillLocations upserts product location rows inside a single transaction.
// Existing rows are matched by product ID and root collection; rows whose
// paths are unchanged are not written.
func (s *Store) BackfillLocations(ctx context.Context, locations []SeqProductIrodsLocation) (BackfillResult, error) {
	var outcome BackfillResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range locations {
			incoming := locations[i]

			var existing SeqProductIrodsLocation
			err := tx.Where(
				"id_product = ? AND irods_root_collection = ?",
				incoming.IDProduct, incoming.IrodsRootCollection,
			).First(&existing).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				now := time.Now().UTC()
				incoming.Created = &now
				incoming.LastChanged = &now
				if err := tx.Create(&incoming).Error; err != nil {
					return fmt.Errorf("create location for product %q: %w", incoming.IDProduct, err)
				}
				outcome.Created++
			case err != nil:
				return fmt.Errorf("find location for product %q: %w", incoming.IDProduct, err)
			default:
				if locationEqual(existing, incoming) {
					outcome.Unchanged++
					continue
				}
				now := time.Now().UTC()
				updates := map[string]any{
					"seq_platform_name":                  incoming.SeqPlatformName,
					"pipeline_name":                      incoming.PipelineName,
					"irods_data_relative_path":           incoming.IrodsDataRelativePath,
					"irods_secondary_data_relative_path": incoming.IrodsSecondaryDataRelativePath,
					"last_changed":                       &now,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update location for product %q: %w", incoming.IDProduct, err)
				}
				outcome.Updated++
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("rolling back location backfill", slog.Any("error", err))
		return BackfillResult{}, err
	}
	return outcome, nil
}

func locationEqual(a, b SeqProductIrodsLocation) bool {
	return a.SeqPlatformName == b.SeqPlatformName &&
		a.PipelineName == b.PipelineName &&
		stringPtrEqual(a.IrodsDataRelativePath, b.IrodsDataRelativePath) &&
		stringPtrEqual(a.IrodsSecondaryDataRelativePath, b.IrodsSecondaryDataRelativePath)
}

func stringPtrEqual(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}
