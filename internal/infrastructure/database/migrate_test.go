package database

import (
	"testing"
	"testing/fstest"

	"publishing-backend/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_second.up.sql": {Data: []byte("SELECT 2;")},
		"000001_first.up.sql":  {Data: []byte("SELECT 1;")},
		"README.md":            {Data: []byte("ignored")},
	}

	migs, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migs, 2)

	assert.Equal(t, "000001", migs[0].Version)
	assert.Equal(t, "first", migs[0].Name)
	assert.Equal(t, "SELECT 1;", migs[0].SQL)
	assert.Equal(t, "000002", migs[1].Version)
}

func TestLoadMigrationsRejectsDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"000001_a.up.sql": {Data: []byte("SELECT 1;")},
		"000001_b.up.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := LoadMigrations(fsys)
	assert.ErrorContains(t, err, "duplicate migration version")
}

func TestLoadMigrationsRejectsBadNames(t *testing.T) {
	fsys := fstest.MapFS{"nounderscore.up.sql": {Data: []byte("SELECT 1;")}}

	_, err := LoadMigrations(fsys)
	assert.ErrorContains(t, err, "invalid migration file name")
}

func TestEmbeddedSchema(t *testing.T) {
	migs, err := LoadMigrations(migrations.FS)
	require.NoError(t, err)
	require.Len(t, migs, 3)

	assert.Equal(t, "create_users_table", migs[0].Name)
	assert.Contains(t, migs[1].SQL, "organizations_cfe_number_key")
	assert.Contains(t, migs[1].SQL, "organizations_owner_name_key")
	assert.Contains(t, migs[2].SQL, "publications_slug_key")
	assert.Contains(t, migs[2].SQL, "ON DELETE RESTRICT")
}
