package purchase

import (
	"fmt"
	"time"

	"github.com/ptuchik/billing/internal/domain/shared/ref"
)

// Purchase binds a package to the host it was bought for. There is at most
// one purchase per (host, package) pair.
type Purchase struct {
	id           uint
	userID       uint
	host         ref.Ref
	packageID    uint
	packageKind  string
	packageAlias string
	reference    *ref.Ref
	active       bool
	createdAt    time.Time
	updatedAt    time.Time
}

func NewPurchase(userID uint, host ref.Ref, packageID uint, packageKind, packageAlias string) (*Purchase, error) {
	if host.IsZero() {
		return nil, fmt.Errorf("purchase host is required")
	}
	if packageID == 0 {
		return nil, fmt.Errorf("purchase package is required")
	}
	now := time.Now().UTC()
	return &Purchase{
		userID:       userID,
		host:         host,
		packageID:    packageID,
		packageKind:  packageKind,
		packageAlias: packageAlias,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

type PurchaseParams struct {
	ID           uint
	UserID       uint
	Host         ref.Ref
	PackageID    uint
	PackageKind  string
	PackageAlias string
	Reference    *ref.Ref
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ReconstructPurchase(p PurchaseParams) (*Purchase, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("purchase ID cannot be zero")
	}
	return &Purchase{
		id:           p.ID,
		userID:       p.UserID,
		host:         p.Host,
		packageID:    p.PackageID,
		packageKind:  p.PackageKind,
		packageAlias: p.PackageAlias,
		reference:    p.Reference,
		active:       p.Active,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}, nil
}

func (p *Purchase) ID() uint { return p.id }

func (p *Purchase) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("purchase ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("purchase ID cannot be zero")
	}
	p.id = id
	return nil
}

func (p *Purchase) UserID() uint         { return p.userID }
func (p *Purchase) Host() ref.Ref        { return p.host }
func (p *Purchase) PackageID() uint      { return p.packageID }
func (p *Purchase) PackageKind() string  { return p.packageKind }
func (p *Purchase) PackageAlias() string { return p.packageAlias }
func (p *Purchase) Reference() *ref.Ref  { return p.reference }
func (p *Purchase) IsActive() bool       { return p.active }
func (p *Purchase) CreatedAt() time.Time { return p.createdAt }
func (p *Purchase) UpdatedAt() time.Time { return p.updatedAt }

// SetReference attaches the entity the purchase was made for, such as an
// order or a sub-resource of the host.
func (p *Purchase) SetReference(r *ref.Ref) {
	p.reference = r
	p.updatedAt = time.Now().UTC()
}

// Activate marks the package as owned by the host. It reports whether the
// state changed.
func (p *Purchase) Activate() bool {
	if p.active {
		return false
	}
	p.active = true
	p.updatedAt = time.Now().UTC()
	return true
}

func (p *Purchase) Deactivate() bool {
	if !p.active {
		return false
	}
	p.active = false
	p.updatedAt = time.Now().UTC()
	return true
}
