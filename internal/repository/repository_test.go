package repository

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/nycd79/borough-bash/internal/model"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "registrations_email_unique"}
	assert.True(t, isUniqueViolation(dup))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert registration: %w", dup)))

	other := &pgconn.PgError{Code: "23503"}
	assert.False(t, isUniqueViolation(other))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.False(t, isUniqueViolation(nil))
}

func TestPatchArgHelpers(t *testing.T) {
	assert.Nil(t, regionArg(nil))
	assert.Nil(t, statusArg(nil))

	region := model.Brooklyn
	arg := regionArg(&region)
	if assert.NotNil(t, arg) {
		assert.Equal(t, "Brooklyn", *arg)
	}

	status := model.StatusWaitingList
	sarg := statusArg(&status)
	if assert.NotNil(t, sarg) {
		assert.Equal(t, "waiting_list", *sarg)
	}
}
