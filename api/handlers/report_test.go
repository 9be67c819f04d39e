package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shelterlink/welfare-homes-api/api/handlers"
	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/databases/mocks"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
)

func newReportMocks() (*mocks.DatabaseHelper, *mocks.CollectionHelper) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "reports").Return(conn)
	return db, conn
}

func TestReport_CreateReportHandlerMissingFields(t *testing.T) {
	db, _ := newReportMocks()
	re := handlers.Report{DB: databases.NewReportDatabase(db), Files: flatfile.New(t.TempDir()), UploadDir: t.TempDir()}

	body := `{"workerId":"SW001","personName":"Asha"}`
	req := httptest.NewRequest("POST", "/api/v1/reports", strings.NewReader(body))
	rr := httptest.NewRecorder()

	re.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to validate report")
}

func TestReport_CreateReportHandlerDefaultsToPending(t *testing.T) {
	db, conn := newReportMocks()
	conn.On("InsertOne", mock.Anything, mock.Anything).Return("inserted-id", nil)

	files := flatfile.New(t.TempDir())
	re := handlers.Report{DB: databases.NewReportDatabase(db), Files: files, UploadDir: t.TempDir()}

	body := `{"workerId":"SW001","personName":"Asha","age":12,"location":"Station","description":"found near platform 2"}`
	req := httptest.NewRequest("POST", "/api/v1/reports", strings.NewReader(body))
	rr := httptest.NewRecorder()

	re.CreateReportHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.ReportStatusPending, got.Status)
	assert.Greater(t, got.ID, int64(0))

	rows, err := files.ReadReports()
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReport_ResolveReportHandlerBadID(t *testing.T) {
	db, _ := newReportMocks()
	re := handlers.Report{DB: databases.NewReportDatabase(db), Files: flatfile.New(t.TempDir())}

	req := httptest.NewRequest("POST", "/api/v1/reports/abc/resolve", nil)
	req = mux.SetURLVars(req, map[string]string{"report_id": "abc"})
	rr := httptest.NewRecorder()

	re.ResolveReportHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid report ID")
}

func TestReport_ResolveReportHandlerAlreadyResolved(t *testing.T) {
	db, conn := newReportMocks()
	// the filter requires status pending, so a resolved report matches nothing
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0}, nil)

	re := handlers.Report{DB: databases.NewReportDatabase(db), Files: flatfile.New(t.TempDir())}

	req := httptest.NewRequest("POST", "/api/v1/reports/1715333400000/resolve", nil)
	req = mux.SetURLVars(req, map[string]string{"report_id": "1715333400000"})
	rr := httptest.NewRecorder()

	re.ResolveReportHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReport_ResolveReportHandlerSuccess(t *testing.T) {
	db, conn := newReportMocks()
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Report)
		(*arg).ID = 1715333400000
		(*arg).WorkerID = "SW001"
		(*arg).Status = models.ReportStatusResolved
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	files := flatfile.New(t.TempDir())
	assert.NoError(t, files.WriteReports([]models.Report{
		{ID: 1715333400000, WorkerID: "SW001", Status: models.ReportStatusPending},
	}))

	re := handlers.Report{DB: databases.NewReportDatabase(db), Files: files}

	req := httptest.NewRequest("POST", "/api/v1/reports/1715333400000/resolve", nil)
	req = mux.SetURLVars(req, map[string]string{"report_id": "1715333400000"})
	rr := httptest.NewRecorder()

	re.ResolveReportHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.ReportStatusResolved, got.Status)

	rows, err := files.ReadReports()
	assert.NoError(t, err)
	if assert.Len(t, rows, 1) {
		assert.Equal(t, models.ReportStatusResolved, rows[0].Status)
	}
}

func TestReport_WorkerReportsHandlerFiltersSheetRows(t *testing.T) {
	db, conn := newReportMocks()
	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor, nil)

	files := flatfile.New(t.TempDir())
	assert.NoError(t, files.WriteReports([]models.Report{
		{ID: 1, WorkerID: "SW001", Status: models.ReportStatusPending},
		{ID: 2, WorkerID: "SW002", Status: models.ReportStatusPending},
	}))

	re := handlers.Report{DB: databases.NewReportDatabase(db), Files: files}

	req := httptest.NewRequest("GET", "/api/v1/reports/worker/SW001", nil)
	req = mux.SetURLVars(req, map[string]string{"worker_id": "SW001"})
	rr := httptest.NewRecorder()

	re.WorkerReportsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.Report
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	if assert.Len(t, got, 1) {
		assert.Equal(t, "SW001", got[0].WorkerID)
	}
}

func TestReport_StatsHandlerCountsMergedReports(t *testing.T) {
	db, conn := newReportMocks()
	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{
			{ID: 1, Status: models.ReportStatusPending},
			{ID: 2, Status: models.ReportStatusResolved},
		}
	}).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	files := flatfile.New(t.TempDir())
	assert.NoError(t, files.WriteReports([]models.Report{
		{ID: 2, WorkerID: "SW001", Status: models.ReportStatusPending}, // stale copy of a resolved case
		{ID: 3, WorkerID: "SW002", Status: models.ReportStatusPending},
	}))

	re := handlers.Report{DB: databases.NewReportDatabase(db), Files: files}

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	rr := httptest.NewRecorder()

	re.StatsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.ReportStats
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 3, got.TotalReports)
	assert.Equal(t, 2, got.ActiveReports)
	assert.Equal(t, 1, got.ResolvedCases)
}
