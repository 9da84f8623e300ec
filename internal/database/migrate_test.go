package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/tools":   "pgx5://u:p@localhost:5432/tools",
		"postgresql://u:p@localhost:5432/tools": "pgx5://u:p@localhost:5432/tools",
		"pgx5://localhost/tools":                "pgx5://localhost/tools",
	}
	for in, want := range cases {
		assert.Equal(t, want, MigrationURL(in), in)
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}
