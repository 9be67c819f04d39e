package syncer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelterlink/welfare-homes-api/models"
	"github.com/shelterlink/welfare-homes-api/syncer"
)

func TestMergeDocumentWins(t *testing.T) {
	doc := []models.Home{
		{Name: "Sunrise", Location: "Pune"},
		{Name: "Hope", Location: "Delhi"},
	}
	flat := []models.Home{
		{Name: "Sunrise", Location: "stale location"},
		{Name: "Haven", Location: "Mumbai"},
	}

	got := syncer.Merge(doc, flat)

	assert.Len(t, got, 3)
	assert.Equal(t, "Pune", got[0].Location)
	assert.Equal(t, "Hope", got[1].Name)
	assert.Equal(t, "Haven", got[2].Name)
}

func TestMergeEmptyInputs(t *testing.T) {
	assert.Empty(t, syncer.Merge[models.Admin](nil, nil))

	flat := []models.Admin{{Username: "root"}}
	got := syncer.Merge(nil, flat)
	assert.Len(t, got, 1)
	assert.Equal(t, "root", got[0].Username)
}

func TestMergeDeduplicatesWithinOneSide(t *testing.T) {
	doc := []models.Report{
		{ID: 1, Location: "first"},
		{ID: 1, Location: "duplicate"},
		{ID: 2, Location: "second"},
	}

	got := syncer.Merge(doc, nil)

	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Location)
}
