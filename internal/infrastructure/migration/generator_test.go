package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_CreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000003_create_payment_tables.up.sql"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000003_create_payment_tables.down.sql"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), nil, 0644))

	g := NewGenerator(dir)

	up, down, err := g.CreateMigration("add_invoice_numbers")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "000004_add_invoice_numbers.up.sql"), up)
	assert.Equal(t, filepath.Join(dir, "000004_add_invoice_numbers.down.sql"), down)
	assert.FileExists(t, up)
	assert.FileExists(t, down)

	up, _, err = g.CreateMigration("second")
	require.NoError(t, err)
	assert.Equal(t, "000005_second.up.sql", filepath.Base(up))
}

func TestGenerator_RejectsBadName(t *testing.T) {
	g := NewGenerator(t.TempDir())

	for _, name := range []string{"", "Add Column", "drop;table"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := g.CreateMigration(name)
			assert.Error(t, err)
		})
	}
}

func TestEmbeddedScriptsArePaired(t *testing.T) {
	entries, err := scriptsFS.ReadDir("scripts")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		m := scriptNamePattern.FindStringSubmatch(e.Name())
		require.NotNil(t, m, e.Name())
		if m[2] == "up" {
			ups[m[1]] = true
		} else {
			downs[m[1]] = true
		}
	}
	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}
