package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"
)

// Payee is a transaction counterparty.
type Payee struct {
	DefaultModel
	Name string `gorm:"uniqueIndex:payee_name"`
	Note string
}

// MatchType is how a match rule compares its pattern against an
// incoming payee name.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchGlob     MatchType = "glob"
)

// MatchRule maps free-form payee names to a payee. Rules are applied
// in ascending priority order; the first match wins.
type MatchRule struct {
	DefaultModel
	Priority uint
	Match    MatchType
	Pattern  string
	Payee    Payee `json:"-"`
	PayeeID  uuid.UUID
	Archived bool
}

var (
	ErrPayeeNameNotUnique = errors.New("the payee name must be unique")
	ErrPayeeNameEmpty     = errors.New("the payee name must not be empty")
	ErrMatchRuleType      = errors.New("the match type must be one of exact, contains, glob")
	ErrMatchRulePattern   = errors.New("the match rule pattern must not be empty")
)

// BeforeSave trims whitespace from all strings.
func (p *Payee) BeforeSave(_ *gorm.DB) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Note = strings.TrimSpace(p.Note)

	if p.Name == "" {
		return ErrPayeeNameEmpty
	}

	return nil
}

// BeforeSave validates the rule.
func (r *MatchRule) BeforeSave(_ *gorm.DB) error {
	r.Pattern = strings.TrimSpace(r.Pattern)
	if r.Pattern == "" {
		return ErrMatchRulePattern
	}

	switch r.Match {
	case MatchExact, MatchContains, MatchGlob:
	default:
		return fmt.Errorf("%w, got %q", ErrMatchRuleType, r.Match)
	}

	return nil
}

// Matches reports whether the rule applies to a payee name. Matching
// is case-insensitive for all match types.
func (r MatchRule) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	pattern := strings.ToLower(r.Pattern)

	switch r.Match {
	case MatchExact:
		return name == pattern
	case MatchContains:
		return strings.Contains(name, pattern)
	case MatchGlob:
		return glob.Glob(pattern, name)
	}

	return false
}

// MatchPayee resolves a free-form payee name through the match rules.
// Without a matching rule, the payee with the exact name is returned if
// one exists; ok is false when nothing matches.
func MatchPayee(db *gorm.DB, name string) (Payee, bool, error) {
	var rules []MatchRule
	err := db.Where("match_rules.archived = ?", false).Order("match_rules.priority ASC, match_rules.created_at ASC").Find(&rules).Error
	if err != nil {
		return Payee{}, false, err
	}

	for _, rule := range rules {
		if !rule.Matches(name) {
			continue
		}

		var payee Payee
		err := db.First(&payee, rule.PayeeID).Error
		if err != nil {
			return Payee{}, false, err
		}
		return payee, true, nil
	}

	var payee Payee
	err = db.Where("payees.name = ?", strings.TrimSpace(name)).First(&payee).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return Payee{}, false, nil
		}
		return Payee{}, false, err
	}

	return payee, true, nil
}

// ResolveOrCreatePayee returns the payee a name maps to, creating a new
// payee with that name when no rule or existing payee matches.
func ResolveOrCreatePayee(db *gorm.DB, name string) (Payee, error) {
	payee, ok, err := MatchPayee(db, name)
	if err != nil {
		return Payee{}, err
	}
	if ok {
		return payee, nil
	}

	payee = Payee{Name: name}
	err = db.Create(&payee).Error
	if err != nil {
		return Payee{}, err
	}

	return payee, nil
}
