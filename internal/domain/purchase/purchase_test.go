package purchase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/shared/ref"
)

func TestNewPurchase(t *testing.T) {
	tests := []struct {
		name      string
		host      ref.Ref
		packageID uint
		wantErr   bool
	}{
		{"valid", ref.New("site", 7), 3, false},
		{"missing host", ref.Ref{}, 3, true},
		{"missing package", ref.New("site", 7), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPurchase(1, tt.host, tt.packageID, "hosting", "pro")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, p.IsActive())
			assert.Equal(t, tt.host, p.Host())
		})
	}
}

func TestPurchase_ActivateDeactivate(t *testing.T) {
	p, err := NewPurchase(1, ref.New("site", 7), 3, "hosting", "pro")
	require.NoError(t, err)

	assert.True(t, p.Activate())
	assert.False(t, p.Activate(), "second activation is a no-op")
	assert.True(t, p.IsActive())

	assert.True(t, p.Deactivate())
	assert.False(t, p.Deactivate())
	assert.False(t, p.IsActive())
}

func TestPurchase_SetID(t *testing.T) {
	p, err := NewPurchase(1, ref.New("site", 7), 3, "hosting", "pro")
	require.NoError(t, err)

	assert.Error(t, p.SetID(0))
	require.NoError(t, p.SetID(10))
	assert.Error(t, p.SetID(11))
	assert.Equal(t, uint(10), p.ID())
}
