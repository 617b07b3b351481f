// Package hangar keeps named ship schemes in a sqlite database.
package hangar

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/milk9111/modular/prefabs"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("hangar: ship not found")

// ShipRecord is one saved scheme. Schemes are stored msgpack-encoded.
type ShipRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Format    string `gorm:"not null"`
	Modules   int
	Scheme    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Hangar struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects to the database at path, creating it and the table if needed.
// An empty path opens a shared in-memory database.
func Open(path string, log zerolog.Logger) (*Hangar, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("hangar: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&ShipRecord{}); err != nil {
		return nil, fmt.Errorf("hangar: migrate: %w", err)
	}
	log.Info().Str("path", dsn).Msg("hangar open")
	return &Hangar{db: db, log: log}, nil
}

// Save stores s under name, replacing any scheme already saved there.
func (h *Hangar) Save(name string, s *prefabs.Scheme) error {
	if name == "" {
		return fmt.Errorf("hangar: save: empty name")
	}
	if s == nil || s.Type == "" {
		return fmt.Errorf("hangar: save %s: empty scheme", name)
	}
	data, err := prefabs.MarshalScheme(s, prefabs.FormatMsgpack)
	if err != nil {
		return fmt.Errorf("hangar: save %s: %w", name, err)
	}
	rec := ShipRecord{
		Name:    name,
		Format:  string(prefabs.FormatMsgpack),
		Modules: s.Count(),
		Scheme:  data,
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"format", "modules", "scheme", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("hangar: save %s: %w", name, err)
	}
	h.log.Debug().Str("ship", name).Int("modules", rec.Modules).Msg("saved")
	return nil
}

func (h *Hangar) Load(name string) (*prefabs.Scheme, error) {
	var rec ShipRecord
	err := h.db.Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("hangar: load %s: %w", name, err)
	}
	s, err := prefabs.UnmarshalScheme(rec.Scheme, prefabs.Format(rec.Format))
	if err != nil {
		return nil, fmt.Errorf("hangar: load %s: %w", name, err)
	}
	return s, nil
}

// List returns saved ship records without their payload, ordered by name.
func (h *Hangar) List() ([]ShipRecord, error) {
	var recs []ShipRecord
	err := h.db.Select("id", "name", "format", "modules", "created_at", "updated_at").
		Order("name").Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("hangar: list: %w", err)
	}
	return recs, nil
}

func (h *Hangar) Delete(name string) error {
	res := h.db.Where("name = ?", name).Delete(&ShipRecord{})
	if res.Error != nil {
		return fmt.Errorf("hangar: delete %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

func (h *Hangar) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("hangar: close: %w", err)
	}
	return sqlDB.Close()
}
