// Package session persists per-terminal state that must survive a restart:
// the cart in progress, the open cash shift and a few UI preferences.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/restaurant-pos/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	KeyCurrentOrder      = "current_order"
	KeyCashFund          = "cash_fund"
	KeyReceiptPaperWidth = "receipt_paper_width"
)

const (
	PaperWidth58 = "58mm"
	PaperWidth80 = "80mm"

	DefaultPaperWidth = PaperWidth58
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get decodes the value stored under key into dst. It reports false when the
// key has never been set.
func (s *Store) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	var row models.SessionValue
	err := s.db.WithContext(ctx).First(&row, "`key` = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(row.Value), dst); err != nil {
		return false, fmt.Errorf("failed to decode session key %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session key %s: %w", key, err)
	}
	row := models.SessionValue{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write session key %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&models.SessionValue{}, "`key` = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete session key %s: %w", key, err)
	}
	return nil
}

func (s *Store) PaperWidth(ctx context.Context) (string, error) {
	var width string
	ok, err := s.Get(ctx, KeyReceiptPaperWidth, &width)
	if err != nil {
		return "", err
	}
	if !ok || !ValidPaperWidth(width) {
		return DefaultPaperWidth, nil
	}
	return width, nil
}

func (s *Store) SetPaperWidth(ctx context.Context, width string) error {
	if !ValidPaperWidth(width) {
		return fmt.Errorf("unsupported receipt paper width %q", width)
	}
	return s.Set(ctx, KeyReceiptPaperWidth, width)
}

func ValidPaperWidth(w string) bool {
	return w == PaperWidth58 || w == PaperWidth80
}
