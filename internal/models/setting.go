package models

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Setting is one key-value configuration row.
type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
	Timestamps
}

// SettingCurrency is the key of the budget currency setting.
const SettingCurrency = "currency"

// DefaultCurrency is used until a currency is configured.
const DefaultCurrency = "MYR"

var ErrSettingKeyEmpty = errors.New("the setting key must not be empty")

// BeforeSave trims whitespace.
func (s *Setting) BeforeSave(_ *gorm.DB) error {
	s.Key = strings.TrimSpace(s.Key)
	s.Value = strings.TrimSpace(s.Value)

	if s.Key == "" {
		return ErrSettingKeyEmpty
	}

	return nil
}

// GetSetting returns the value for a key, or the fallback when the key
// is not set.
func GetSetting(db *gorm.DB, key, fallback string) (string, error) {
	var setting Setting
	err := db.First(&setting, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return fallback, nil
		}
		return "", err
	}

	return setting.Value, nil
}

// SetSetting stores a value for a key, overwriting any previous value.
func SetSetting(db *gorm.DB, key, value string) error {
	setting := Setting{Key: key, Value: value}
	return db.Save(&setting).Error
}

// Currency returns the configured budget currency.
func Currency(db *gorm.DB) (string, error) {
	return GetSetting(db, SettingCurrency, DefaultCurrency)
}
