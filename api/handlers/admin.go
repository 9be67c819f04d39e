package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelterlink/welfare-homes-api/api"
	"github.com/shelterlink/welfare-homes-api/config"
	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
	"github.com/shelterlink/welfare-homes-api/syncer"
)

// Admin handles operator account requests
type Admin struct {
	DB    databases.AdminDatabase
	Files flatfile.Store
}

type adminRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterAdminHandler creates a new operator account
func (a Admin) RegisterAdminHandler(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		config.ErrorStatus("failed to validate admin", http.StatusBadRequest, w, errors.New("username, email and password are required"))
		return
	}

	taken, err := a.adminExists(r.Context(), req.Username, req.Email)
	if err != nil {
		config.ErrorStatus("failed to check existing admins", http.StatusInternalServerError, w, err)
		return
	}
	if taken {
		config.ErrorStatus("admin already exists", http.StatusBadRequest, w, fmt.Errorf("username or email already registered"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	admin := models.Admin{
		ID:        primitive.NewObjectID(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hash),
		UpdatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if err := a.DB.InsertOne(r.Context(), admin); err != nil {
		config.ErrorStatus("failed to register admin", http.StatusInternalServerError, w, err)
		return
	}

	a.mirrorUpsert(admin)

	b, err := json.Marshal(admin)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// AdminLoginHandler verifies operator credentials and issues a bearer token.
// The sheet is consulted when the document store has no matching account.
func (a Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	admin, err := a.DB.FindOne(r.Context(), bson.M{"username": req.Username})
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("failed to get admin", http.StatusInternalServerError, w, err)
			return
		}
		admin = a.sheetAdmin(req.Username)
	}
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)) != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, errors.New("username or password incorrect"))
		return
	}

	token := api.IssueToken(admin.Username, admin.ID.Hex(), r)
	b, err := json.Marshal(adminLoginResponse{Token: token, Username: admin.Username, Email: admin.Email})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ListAdminsHandler returns the merged operator accounts without password
// hashes
func (a Admin) ListAdminsHandler(w http.ResponseWriter, r *http.Request) {
	docAdmins, err := a.DB.Find(context.Background(), bson.M{})
	if err != nil {
		zap.S().Errorw("failed to get admins from document store", "error", err)
		docAdmins = nil
	}
	flatAdmins, err := a.Files.ReadAdmins()
	if err != nil {
		zap.S().Errorw("failed to read admins sheet", "error", err)
		flatAdmins = nil
	}

	admins := syncer.Merge(docAdmins, flatAdmins)
	if len(admins) == 0 {
		admins = []models.Admin{}
	}
	b, err := json.Marshal(admins)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateAdminHandler modifies an operator account's email or password
func (a Admin) UpdateAdminHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Email != "" {
		taken, err := a.adminExists(r.Context(), "", req.Email)
		if err != nil {
			config.ErrorStatus("failed to check existing admins", http.StatusInternalServerError, w, err)
			return
		}
		if taken {
			config.ErrorStatus("email already registered", http.StatusBadRequest, w, fmt.Errorf("email %s is taken", req.Email))
			return
		}
		set["email"] = req.Email
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
			return
		}
		set["password"] = string(hash)
	}

	res, err := a.DB.UpdateOne(r.Context(), bson.M{"username": username}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to modify admin", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("admin not found", http.StatusNotFound, w, fmt.Errorf("no admin named %s", username))
		return
	}

	updated, err := a.DB.FindOne(r.Context(), bson.M{"username": username})
	if err != nil {
		config.ErrorStatus("failed to get admin", http.StatusInternalServerError, w, err)
		return
	}

	a.mirrorUpsert(*updated)

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteAdminHandler removes an operator account from both stores
func (a Admin) DeleteAdminHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	if _, err := a.DB.FindOne(r.Context(), bson.M{"username": username}); err != nil {
		config.ErrorStatus("admin not found", http.StatusNotFound, w, err)
		return
	}
	if err := a.DB.DeleteOne(r.Context(), bson.M{"username": username}); err != nil {
		config.ErrorStatus("failed to delete admin", http.StatusInternalServerError, w, err)
		return
	}

	a.mirrorRemove(username)

	w.WriteHeader(http.StatusNoContent)
}

// adminExists reports whether the username or email is taken in either store.
// Empty arguments are skipped.
func (a Admin) adminExists(ctx context.Context, username, email string) (bool, error) {
	var or []bson.M
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if _, err := a.DB.FindOne(ctx, bson.M{"$or": or}); err == nil {
		return true, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}

	rows, err := a.Files.ReadAdmins()
	if err != nil {
		zap.S().Errorw("failed to read admins sheet", "error", err)
		return false, nil
	}
	for _, row := range rows {
		if (username != "" && row.Username == username) || (email != "" && row.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (a Admin) sheetAdmin(username string) *models.Admin {
	rows, err := a.Files.ReadAdmins()
	if err != nil {
		zap.S().Errorw("failed to read admins sheet", "error", err)
		return nil
	}
	for _, row := range rows {
		if row.Username == username {
			return &row
		}
	}
	return nil
}

func (a Admin) mirrorUpsert(admin models.Admin) {
	rows, err := a.Files.ReadAdmins()
	if err != nil {
		zap.S().Errorw("failed to read admins sheet", "error", err)
		rows = nil
	}
	replaced := false
	for i, row := range rows {
		if row.Username == admin.Username {
			rows[i] = admin
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, admin)
	}
	if err := a.Files.WriteAdmins(rows); err != nil {
		zap.S().Errorw("failed to update admins sheet", "username", admin.Username, "error", err)
	}
}

func (a Admin) mirrorRemove(username string) {
	rows, err := a.Files.ReadAdmins()
	if err != nil {
		zap.S().Errorw("failed to read admins sheet", "error", err)
		return
	}
	kept := rows[:0]
	for _, row := range rows {
		if row.Username != username {
			kept = append(kept, row)
		}
	}
	if err := a.Files.WriteAdmins(kept); err != nil {
		zap.S().Errorw("failed to update admins sheet", "username", username, "error", err)
	}
}
