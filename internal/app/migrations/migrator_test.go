package migrations

import (
	"io"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := iofs.New(files, "sql")
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	for {
		up, _, err := src.ReadUp(version)
		require.NoError(t, err, "missing up migration for %d", version)
		upSQL, _ := io.ReadAll(up)
		up.Close()
		assert.NotEmpty(t, strings.TrimSpace(string(upSQL)))

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "missing down migration for %d", version)
		down.Close()

		next, err := src.Next(version)
		if err != nil {
			break
		}
		version = next
	}
}

func TestInitialSchemaDeclaresActiveUniqueIndexes(t *testing.T) {
	content, err := files.ReadFile("sql/000001_init.up.sql")
	require.NoError(t, err)
	schema := string(content)

	for _, name := range []string{
		"users_email_active_key",
		"rooms_room_number_active_key",
		"leave_types_name_active_key",
		"staff_employee_code_active_key",
		"students_admission_no_active_key",
		"room_assets_asset_tag_active_key",
		"classes_name_section_year_active_key",
		"fee_structures_class_year_name_active_key",
	} {
		assert.Contains(t, schema, "CREATE UNIQUE INDEX "+name, name)
	}
}
