package flatfile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
)

func TestInitCreatesAllWorkbooks(t *testing.T) {
	dir := t.TempDir()
	s := flatfile.New(dir)

	err := s.Init()
	assert.NoError(t, err)

	for _, name := range []string{"homes.xlsx", "reports.xlsx", "admins.xlsx", "social-workers.xlsx"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestReadHomesMissingFileCreatesEmpty(t *testing.T) {
	dir := t.TempDir()
	s := flatfile.New(dir)

	homes, err := s.ReadHomes()
	assert.NoError(t, err)
	assert.Empty(t, homes)

	_, err = os.Stat(filepath.Join(dir, "homes.xlsx"))
	assert.NoError(t, err)
}

func TestHomesRoundTrip(t *testing.T) {
	s := flatfile.New(t.TempDir())

	verified := true
	now := primitive.NewDateTimeFromTime(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	in := []models.Home{
		{
			ID:          primitive.NewObjectID(),
			Name:        "Sunrise Shelter",
			Location:    "Pune",
			Lat:         18.52,
			Lng:         73.85,
			Description: "24 bed facility",
			Contact:     "+91 1234567890",
			Verified:    &verified,
			Status:      models.HomeStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	assert.NoError(t, s.WriteHomes(in))

	out, err := s.ReadHomes()
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHomesVerifiedAbsentStaysAbsent(t *testing.T) {
	s := flatfile.New(t.TempDir())

	in := []models.Home{{Name: "Hope House", Location: "Delhi", Lat: 28.6, Lng: 77.2, Status: models.HomeStatusPending}}
	assert.NoError(t, s.WriteHomes(in))

	out, err := s.ReadHomes()
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Nil(t, out[0].Verified)
}

func TestReadHomesSkipsUnreadableRows(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	header := []interface{}{"_id", "name", "location", "lat", "lng", "description", "contact", "verified", "status", "createdAt", "updatedAt"}
	assert.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	good := []interface{}{"", "Good Home", "Mumbai", "19.07", "72.87", "", "", "true", "active", "", ""}
	assert.NoError(t, f.SetSheetRow("Sheet1", "A2", &good))
	bad := []interface{}{"", "Bad Home", "Nowhere", "not-a-number", "72.87", "", "", "", "active", "", ""}
	assert.NoError(t, f.SetSheetRow("Sheet1", "A3", &bad))
	assert.NoError(t, f.SaveAs(filepath.Join(dir, "homes.xlsx")))

	s := flatfile.New(dir)
	out, err := s.ReadHomes()
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "Good Home", out[0].Name)
	if assert.NotNil(t, out[0].Verified) {
		assert.True(t, *out[0].Verified)
	}
}

func TestReadHomesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "homes.xlsx"), []byte("not a workbook"), 0o644))

	s := flatfile.New(dir)
	_, err := s.ReadHomes()
	assert.ErrorIs(t, err, flatfile.ErrCorrupt)
}

func TestReportsRoundTrip(t *testing.T) {
	s := flatfile.New(t.TempDir())

	ts := primitive.NewDateTimeFromTime(time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC))
	in := []models.Report{
		{
			ID:          1715333400000,
			WorkerID:    "SW001",
			PersonName:  "Asha",
			Age:         12,
			Location:    "Railway station",
			Description: "Found near platform 2",
			ImageURL:    "/uploads/abc.jpg",
			Status:      models.ReportStatusPending,
			Timestamp:   ts,
		},
	}
	assert.NoError(t, s.WriteReports(in))

	out, err := s.ReadReports()
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestAdminsAndWorkersRoundTrip(t *testing.T) {
	s := flatfile.New(t.TempDir())

	admins := []models.Admin{{Username: "root", Email: "root@example.com", Password: "$2a$10$hash"}}
	assert.NoError(t, s.WriteAdmins(admins))
	gotAdmins, err := s.ReadAdmins()
	assert.NoError(t, err)
	assert.Equal(t, admins, gotAdmins)

	workers := []models.SocialWorker{{WorkerID: "SW001", Name: "Ravi", Email: "ravi@example.com", Password: "$2a$10$hash", Status: models.WorkerStatusActive}}
	assert.NoError(t, s.WriteSocialWorkers(workers))
	gotWorkers, err := s.ReadSocialWorkers()
	assert.NoError(t, err)
	assert.Equal(t, workers, gotWorkers)
}

func TestWriteReplacesCollection(t *testing.T) {
	s := flatfile.New(t.TempDir())

	assert.NoError(t, s.WriteAdmins([]models.Admin{{Username: "a"}, {Username: "b"}}))
	assert.NoError(t, s.WriteAdmins([]models.Admin{{Username: "c"}}))

	out, err := s.ReadAdmins()
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "c", out[0].Username)
}
