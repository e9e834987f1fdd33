package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintHelpers(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "rooms_room_number_active_key"}
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "classes_room_id_fkey"}
	wrapped := fmt.Errorf("insert room: %w", unique)

	assert.True(t, IsUniqueViolation(wrapped))
	assert.True(t, IsDuplicateConstraintError(wrapped, "rooms_room_number_active_key"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "other_key"))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.Equal(t, "classes_room_id_fkey", ConstraintName(fk))
	assert.Equal(t, "", ConstraintName(errors.New("plain")))
}
