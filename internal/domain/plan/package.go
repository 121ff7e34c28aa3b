package plan

import (
	"fmt"
	"time"
)

// Package is the product family that owns plans. Kind groups packages that
// replace each other on the same host, e.g. every hosting tier of a site.
type Package struct {
	id          uint
	kind        string
	alias       string
	name        string
	placeholder bool
	createdAt   time.Time
	updatedAt   time.Time
}

func NewPackage(kind, alias, name string) (*Package, error) {
	if kind == "" {
		return nil, fmt.Errorf("package kind is required")
	}
	if alias == "" {
		return nil, fmt.Errorf("package alias is required")
	}
	now := time.Now().UTC()
	return &Package{kind: kind, alias: alias, name: name, createdAt: now, updatedAt: now}, nil
}

// NewPlaceholderPackage stands in for a deleted package so historical
// purchases and subscriptions stay readable.
func NewPlaceholderPackage(id uint, kind, alias string, now time.Time) *Package {
	return &Package{
		id:          id,
		kind:        kind,
		alias:       PlaceholderAlias(alias, now),
		name:        alias,
		placeholder: true,
		createdAt:   now,
		updatedAt:   now,
	}
}

// PlaceholderAlias builds "<alias>-removed-<unix>".
func PlaceholderAlias(alias string, now time.Time) string {
	return fmt.Sprintf("%s-removed-%d", alias, now.Unix())
}

func ReconstructPackage(id uint, kind, alias, name string, placeholder bool, createdAt, updatedAt time.Time) (*Package, error) {
	if id == 0 {
		return nil, fmt.Errorf("package ID cannot be zero")
	}
	return &Package{
		id:          id,
		kind:        kind,
		alias:       alias,
		name:        name,
		placeholder: placeholder,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (p *Package) ID() uint { return p.id }

func (p *Package) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("package ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("package ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Package) Kind() string         { return p.kind }
func (p *Package) Alias() string        { return p.alias }
func (p *Package) Name() string         { return p.name }
func (p *Package) IsPlaceholder() bool  { return p.placeholder }
func (p *Package) CreatedAt() time.Time { return p.createdAt }
func (p *Package) UpdatedAt() time.Time { return p.updatedAt }

// Descriptor is the text sent to the gateway as the charge description.
func (p *Package) Descriptor() string {
	if p.name != "" {
		return p.name
	}
	return p.alias
}
