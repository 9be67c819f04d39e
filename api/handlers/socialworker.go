package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelterlink/welfare-homes-api/config"
	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
	"github.com/shelterlink/welfare-homes-api/syncer"
)

// SocialWorker handles field worker account requests
type SocialWorker struct {
	DB          databases.SocialWorkerDatabase
	Files       flatfile.Store
	JWTSecret   string
	SendgridKey string
	SenderEmail string
}

type socialWorkerRequest struct {
	WorkerID string `json:"workerId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialWorkerView struct {
	WorkerID   string `json:"workerId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsActive   bool   `json:"isActive"`
	LastActive string `json:"lastActive,omitempty"`
}

func viewOf(sw models.SocialWorker) socialWorkerView {
	v := socialWorkerView{
		WorkerID: sw.WorkerID,
		Name:     sw.Name,
		Email:    sw.Email,
		IsActive: sw.Status == models.WorkerStatusActive,
	}
	if sw.LastLogin != 0 {
		v.LastActive = sw.LastLogin.Time().UTC().Format(time.RFC3339)
	}
	return v
}

// RegisterSocialWorkerHandler creates a new field worker account
func (s SocialWorker) RegisterSocialWorkerHandler(w http.ResponseWriter, r *http.Request) {
	var req socialWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.WorkerID == "" || req.Name == "" || req.Email == "" || req.Password == "" {
		config.ErrorStatus("failed to validate social worker", http.StatusBadRequest, w, errors.New("workerId, name, email and password are required"))
		return
	}

	if taken, msg, err := s.workerExists(r.Context(), req.WorkerID, req.Email); err != nil {
		config.ErrorStatus("failed to check existing social workers", http.StatusInternalServerError, w, err)
		return
	} else if taken {
		config.ErrorStatus(msg, http.StatusBadRequest, w, errors.New(msg))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	worker := models.SocialWorker{
		ID:        primitive.NewObjectID(),
		WorkerID:  req.WorkerID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hash),
		Status:    models.WorkerStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.DB.InsertOne(r.Context(), worker); err != nil {
		config.ErrorStatus("failed to register social worker", http.StatusInternalServerError, w, err)
		return
	}

	s.mirrorUpsert(worker)

	b, err := json.Marshal(viewOf(worker))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// SocialWorkerHandler returns a single worker by its worker id
func (s SocialWorker) SocialWorkerHandler(w http.ResponseWriter, r *http.Request) {
	workerID := mux.Vars(r)["worker_id"]

	worker, err := s.DB.FindOne(r.Context(), bson.M{"workerId": workerID})
	if err != nil {
		config.ErrorStatus("social worker not found", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(viewOf(*worker))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ListSocialWorkersHandler returns the merged worker accounts
func (s SocialWorker) ListSocialWorkersHandler(w http.ResponseWriter, r *http.Request) {
	docWorkers, err := s.DB.Find(context.Background(), bson.M{})
	if err != nil {
		zap.S().Errorw("failed to get social workers from document store", "error", err)
		docWorkers = nil
	}
	flatWorkers, err := s.Files.ReadSocialWorkers()
	if err != nil {
		zap.S().Errorw("failed to read social workers sheet", "error", err)
		flatWorkers = nil
	}

	views := []socialWorkerView{}
	for _, worker := range syncer.Merge(docWorkers, flatWorkers) {
		views = append(views, viewOf(worker))
	}
	b, err := json.Marshal(views)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// SocialWorkerLoginHandler verifies worker credentials and issues a signed
// JWT. The sheet is consulted when the document store has no matching
// account.
func (s SocialWorker) SocialWorkerLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req socialWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	fromSheet := false
	worker, err := s.DB.FindOne(r.Context(), bson.M{"workerId": req.WorkerID})
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("failed to get social worker", http.StatusInternalServerError, w, err)
			return
		}
		worker = s.sheetWorker(req.WorkerID)
		fromSheet = true
	}
	if worker == nil || bcrypt.CompareHashAndPassword([]byte(worker.Password), []byte(req.Password)) != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, errors.New("worker id or password incorrect"))
		return
	}
	if worker.Status != models.WorkerStatusActive {
		config.ErrorStatus("account is inactive", http.StatusUnauthorized, w, fmt.Errorf("worker %s is inactive", worker.WorkerID))
		return
	}

	now := time.Now()
	worker.LastLogin = primitive.NewDateTimeFromTime(now)
	if fromSheet {
		s.mirrorUpsert(*worker)
	} else {
		if _, err := s.DB.UpdateOne(r.Context(), bson.M{"workerId": worker.WorkerID},
			bson.M{"$set": bson.M{"lastLogin": worker.LastLogin}}); err != nil {
			zap.S().Errorw("failed to record last login", "workerId", worker.WorkerID, "error", err)
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"workerId": worker.WorkerID,
		"iat":      now.Unix(),
		"exp":      now.Add(24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(s.JWTSecret))
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(map[string]interface{}{
		"token":  signed,
		"worker": viewOf(*worker),
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ToggleWorkerStatusHandler flips a worker between active and inactive
func (s SocialWorker) ToggleWorkerStatusHandler(w http.ResponseWriter, r *http.Request) {
	workerID := mux.Vars(r)["worker_id"]

	worker, err := s.DB.FindOne(r.Context(), bson.M{"workerId": workerID})
	if err != nil {
		config.ErrorStatus("social worker not found", http.StatusNotFound, w, err)
		return
	}

	if worker.Status == models.WorkerStatusActive {
		worker.Status = models.WorkerStatusInactive
	} else {
		worker.Status = models.WorkerStatusActive
	}
	worker.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	if _, err := s.DB.UpdateOne(r.Context(), bson.M{"workerId": workerID},
		bson.M{"$set": bson.M{"status": worker.Status, "updatedAt": worker.UpdatedAt}}); err != nil {
		config.ErrorStatus("failed to modify social worker", http.StatusInternalServerError, w, err)
		return
	}

	s.mirrorUpsert(*worker)

	b, err := json.Marshal(map[string]interface{}{
		"workerId": worker.WorkerID,
		"isActive": worker.Status == models.WorkerStatusActive,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ResetWorkerPasswordHandler replaces a worker's password with a generated
// temporary one and emails it to the worker
func (s SocialWorker) ResetWorkerPasswordHandler(w http.ResponseWriter, r *http.Request) {
	workerID := mux.Vars(r)["worker_id"]

	worker, err := s.DB.FindOne(r.Context(), bson.M{"workerId": workerID})
	if err != nil {
		config.ErrorStatus("social worker not found", http.StatusNotFound, w, err)
		return
	}

	tempPassword := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	worker.Password = string(hash)
	worker.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
	if _, err := s.DB.UpdateOne(r.Context(), bson.M{"workerId": workerID},
		bson.M{"$set": bson.M{"password": worker.Password, "updatedAt": worker.UpdatedAt}}); err != nil {
		config.ErrorStatus("failed to reset password", http.StatusInternalServerError, w, err)
		return
	}

	s.mirrorUpsert(*worker)
	s.sendTempPassword(worker.Email, worker.Name, tempPassword)

	b, err := json.Marshal(map[string]string{"temporaryPassword": tempPassword})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (s SocialWorker) sendTempPassword(email, name, tempPassword string) {
	if s.SendgridKey == "" || email == "" {
		return
	}
	from := mail.NewEmail("Welfare Homes", s.SenderEmail)
	to := mail.NewEmail(name, email)
	plain := fmt.Sprintf("Hello %s,\n\nYour password has been reset. Temporary password: %s\n\nPlease log in and change it as soon as possible.", name, tempPassword)
	message := mail.NewSingleEmail(from, "Password Reset", to, plain, "")
	client := sendgrid.NewSendClient(s.SendgridKey)
	if _, err := client.Send(message); err != nil {
		zap.S().Errorw("failed to send password reset email", "email", email, "error", err)
	}
}

// workerExists reports whether the worker id or email is taken in either
// store, with a client-facing message naming the conflicting field.
func (s SocialWorker) workerExists(ctx context.Context, workerID, email string) (bool, string, error) {
	if _, err := s.DB.FindOne(ctx, bson.M{"workerId": workerID}); err == nil {
		return true, "Worker ID already exists", nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, "", err
	}
	if _, err := s.DB.FindOne(ctx, bson.M{"email": email}); err == nil {
		return true, "Email already registered", nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, "", err
	}

	rows, err := s.Files.ReadSocialWorkers()
	if err != nil {
		zap.S().Errorw("failed to read social workers sheet", "error", err)
		return false, "", nil
	}
	for _, row := range rows {
		if row.WorkerID == workerID {
			return true, "Worker ID already exists", nil
		}
		if row.Email == email {
			return true, "Email already registered", nil
		}
	}
	return false, "", nil
}

func (s SocialWorker) sheetWorker(workerID string) *models.SocialWorker {
	rows, err := s.Files.ReadSocialWorkers()
	if err != nil {
		zap.S().Errorw("failed to read social workers sheet", "error", err)
		return nil
	}
	for _, row := range rows {
		if row.WorkerID == workerID {
			return &row
		}
	}
	return nil
}

func (s SocialWorker) mirrorUpsert(worker models.SocialWorker) {
	rows, err := s.Files.ReadSocialWorkers()
	if err != nil {
		zap.S().Errorw("failed to read social workers sheet", "error", err)
		rows = nil
	}
	replaced := false
	for i, row := range rows {
		if row.WorkerID == worker.WorkerID {
			rows[i] = worker
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, worker)
	}
	if err := s.Files.WriteSocialWorkers(rows); err != nil {
		zap.S().Errorw("failed to update social workers sheet", "workerId", worker.WorkerID, "error", err)
	}
}
