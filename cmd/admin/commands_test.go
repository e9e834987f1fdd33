package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooldesk/internal/config"
)

type fakeMigrator struct {
	ups, downSteps int
	closed         bool
}

func (m *fakeMigrator) Up() error                    { m.ups++; return nil }
func (m *fakeMigrator) Down(steps int) error         { m.downSteps = steps; return nil }
func (m *fakeMigrator) Version() (uint, bool, error) { return 7, false, nil }
func (m *fakeMigrator) Close() error                 { m.closed = true; return nil }

var errNoDB = errors.New("no database in tests")

func testAdmin(out *bytes.Buffer, m *fakeMigrator, passwords ...string) *admin {
	return &admin{
		out: out,
		loadConfig: func() (*config.Config, zerolog.Logger, error) {
			return &config.Config{}, zerolog.Nop(), nil
		},
		openDB: func(*config.Config) (*pgxpool.Pool, error) { return nil, errNoDB },
		newMigrator: func(*config.Config, zerolog.Logger) (migrator, error) {
			return m, nil
		},
		readPassword: func(int) ([]byte, error) {
			if len(passwords) == 0 {
				return nil, errors.New("no input")
			}
			p := passwords[0]
			passwords = passwords[1:]
			return []byte(p), nil
		},
	}
}

func TestMigrateCommands(t *testing.T) {
	var out bytes.Buffer
	m := &fakeMigrator{}
	app := newApp(testAdmin(&out, m))

	require.NoError(t, app.Run([]string{"admin", "migrate", "up"}))
	assert.Equal(t, 1, m.ups)
	assert.True(t, m.closed)

	require.NoError(t, app.Run([]string{"admin", "migrate", "down", "--steps", "2"}))
	assert.Equal(t, 2, m.downSteps)

	require.NoError(t, app.Run([]string{"admin", "migrate", "version"}))
	assert.Contains(t, out.String(), "version 7 (dirty: false)")
}

func TestCreateAdmin_RequiresEmail(t *testing.T) {
	var out bytes.Buffer
	app := newApp(testAdmin(&out, &fakeMigrator{}, "password1", "password1"))

	assert.Error(t, app.Run([]string{"admin", "create-admin"}))
}

func TestCreateAdmin_PasswordMismatch(t *testing.T) {
	var out bytes.Buffer
	app := newApp(testAdmin(&out, &fakeMigrator{}, "password1", "password2"))

	err := app.Run([]string{"admin", "create-admin", "--email", "head@school.test"})
	assert.ErrorIs(t, err, errPasswordMismatch)
}

func TestCreateAdmin_OpensDatabaseAfterPrompt(t *testing.T) {
	var out bytes.Buffer
	app := newApp(testAdmin(&out, &fakeMigrator{}, "password1", "password1"))

	err := app.Run([]string{"admin", "create-admin", "--email", "head@school.test"})
	assert.ErrorIs(t, err, errNoDB)
	assert.Contains(t, out.String(), "Enter password:")
}
