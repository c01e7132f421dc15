package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionValid(t *testing.T) {
	for _, r := range Regions() {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Region("Hoboken").Valid())
	assert.False(t, Region("brooklyn").Valid(), "regions are case-sensitive identifiers")
	assert.False(t, Region("").Valid())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusWaitingList.Valid())
	assert.False(t, Status("deleted").Valid())
}

func TestValidProgram(t *testing.T) {
	assert.True(t, ValidProgram("Adult Education"))
	assert.True(t, ValidProgram("Pathways to Graduation (P2G)"))
	assert.False(t, ValidProgram("Adult education"))
	assert.False(t, ValidProgram(""))
}

func TestRegionCountHelpers(t *testing.T) {
	c := RegionCount{Region: Brooklyn, ConfirmedCount: 28, MaxCapacity: 30}
	assert.Equal(t, 2, c.Remaining())
	assert.False(t, c.Full())

	c.ConfirmedCount = 30
	assert.Equal(t, 0, c.Remaining())
	assert.True(t, c.Full())
}

func TestUpdateRequestEmpty(t *testing.T) {
	assert.True(t, UpdateRequest{}.Empty())

	name := "Jamie"
	assert.False(t, UpdateRequest{FirstName: &name}.Empty())

	status := StatusConfirmed
	assert.False(t, UpdateRequest{Status: &status}.Empty())
}
