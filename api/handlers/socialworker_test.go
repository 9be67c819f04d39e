package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelterlink/welfare-homes-api/api/handlers"
	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/databases/mocks"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
)

func newWorkerMocks() (*mocks.DatabaseHelper, *mocks.CollectionHelper) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "socialWorkers").Return(conn)
	return db, conn
}

func TestSocialWorker_RegisterDuplicateWorkerID(t *testing.T) {
	db, conn := newWorkerMocks()
	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	s := handlers.SocialWorker{DB: databases.NewSocialWorkerDatabase(db), Files: flatfile.New(t.TempDir())}

	body := `{"workerId":"SW001","name":"Ravi","email":"ravi@example.com","password":"secret"}`
	req := httptest.NewRequest("POST", "/api/v1/social-workers", strings.NewReader(body))
	rr := httptest.NewRecorder()

	s.RegisterSocialWorkerHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Worker ID already exists")
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestSocialWorker_RegisterSuccess(t *testing.T) {
	db, conn := newWorkerMocks()
	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)
	conn.On("InsertOne", mock.Anything, mock.Anything).Return("inserted-id", nil)

	files := flatfile.New(t.TempDir())
	s := handlers.SocialWorker{DB: databases.NewSocialWorkerDatabase(db), Files: files}

	body := `{"workerId":"SW001","name":"Ravi","email":"ravi@example.com","password":"secret"}`
	req := httptest.NewRequest("POST", "/api/v1/social-workers", strings.NewReader(body))
	rr := httptest.NewRecorder()

	s.RegisterSocialWorkerHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "SW001", got["workerId"])
	assert.Equal(t, true, got["isActive"])
	assert.NotContains(t, rr.Body.String(), "secret")

	rows, err := files.ReadSocialWorkers()
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSocialWorker_LoginIssuesJWT(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	db, conn := newWorkerMocks()
	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.SocialWorker)
		(*arg).WorkerID = "SW001"
		(*arg).Name = "Ravi"
		(*arg).Password = string(hash)
		(*arg).Status = models.WorkerStatusActive
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	s := handlers.SocialWorker{DB: databases.NewSocialWorkerDatabase(db), Files: flatfile.New(t.TempDir()), JWTSecret: "test-secret"}

	body := `{"workerId":"SW001","password":"secret"}`
	req := httptest.NewRequest("POST", "/api/v1/social-worker/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	s.SocialWorkerLoginHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))

	parsed, err := jwt.Parse(got.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "SW001", claims["workerId"])
}

func TestSocialWorker_LoginInactiveAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	db, conn := newWorkerMocks()
	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.SocialWorker)
		(*arg).WorkerID = "SW001"
		(*arg).Password = string(hash)
		(*arg).Status = models.WorkerStatusInactive
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	s := handlers.SocialWorker{DB: databases.NewSocialWorkerDatabase(db), Files: flatfile.New(t.TempDir()), JWTSecret: "test-secret"}

	body := `{"workerId":"SW001","password":"secret"}`
	req := httptest.NewRequest("POST", "/api/v1/social-worker/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	s.SocialWorkerLoginHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSocialWorker_ToggleStatus(t *testing.T) {
	db, conn := newWorkerMocks()
	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.SocialWorker)
		(*arg).WorkerID = "SW001"
		(*arg).Status = models.WorkerStatusActive
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	files := flatfile.New(t.TempDir())
	s := handlers.SocialWorker{DB: databases.NewSocialWorkerDatabase(db), Files: files}

	req := httptest.NewRequest("POST", "/api/v1/social-worker/SW001/toggle-status", nil)
	req = mux.SetURLVars(req, map[string]string{"worker_id": "SW001"})
	rr := httptest.NewRecorder()

	s.ToggleWorkerStatusHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]interface{}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, false, got["isActive"])

	rows, err := files.ReadSocialWorkers()
	assert.NoError(t, err)
	if assert.Len(t, rows, 1) {
		assert.Equal(t, models.WorkerStatusInactive, rows[0].Status)
	}
}

func TestSocialWorker_ResetPasswordReturnsTemporary(t *testing.T) {
	db, conn := newWorkerMocks()
	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.SocialWorker)
		(*arg).WorkerID = "SW001"
		(*arg).Name = "Ravi"
		(*arg).Email = "ravi@example.com"
	}).Return(nil)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	s := handlers.SocialWorker{DB: databases.NewSocialWorkerDatabase(db), Files: flatfile.New(t.TempDir())}

	req := httptest.NewRequest("POST", "/api/v1/social-worker/SW001/reset-password", nil)
	req = mux.SetURLVars(req, map[string]string{"worker_id": "SW001"})
	rr := httptest.NewRecorder()

	s.ResetWorkerPasswordHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got["temporaryPassword"], 12)
}
