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

	"github.com/shelterlink/welfare-homes-api/config"
	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
	"github.com/shelterlink/welfare-homes-api/syncer"
)

// Home handles welfare home requests
type Home struct {
	DB     databases.HomeDatabase
	Files  flatfile.Store
	Engine *syncer.Engine
}

type homeRequest struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Description string   `json:"description"`
	Contact     string   `json:"contact"`
	Verified    *bool    `json:"verified"`
	Status      string   `json:"status"`
}

func (hr homeRequest) validate() error {
	if hr.Name == "" || hr.Location == "" || hr.Lat == nil || hr.Lng == nil {
		return errors.New("missing or invalid required fields")
	}
	if *hr.Lat < -90 || *hr.Lat > 90 || *hr.Lng < -180 || *hr.Lng > 180 {
		return errors.New("invalid coordinates")
	}
	if hr.Status != "" && !models.ValidHomeStatus(hr.Status) {
		return errors.New("invalid status value")
	}
	return nil
}

// ListHomesHandler returns the merged home collections, document store first
func (h Home) ListHomesHandler(w http.ResponseWriter, r *http.Request) {
	docHomes, err := h.DB.Find(context.Background(), bson.M{})
	if err != nil {
		zap.S().Errorw("failed to get homes from document store", "error", err)
		docHomes = nil
	}
	flatHomes, err := h.Files.ReadHomes()
	if err != nil {
		zap.S().Errorw("failed to read homes sheet", "error", err)
		flatHomes = nil
	}

	homes := syncer.Merge(docHomes, flatHomes)
	if len(homes) == 0 {
		homes = []models.Home{}
	}
	b, err := json.Marshal(homes)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateHomeHandler creates a new home in both stores
func (h Home) CreateHomeHandler(w http.ResponseWriter, r *http.Request) {
	var req homeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("failed to validate home", http.StatusBadRequest, w, err)
		return
	}
	if h.homeExists(r.Context(), req.Name) {
		config.ErrorStatus("failed to create home", http.StatusBadRequest, w, fmt.Errorf("home %q already exists", req.Name))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	verified := req.Verified != nil && *req.Verified
	home := models.Home{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Location:    req.Location,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Description: req.Description,
		Contact:     req.Contact,
		Verified:    &verified,
		Status:      req.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if home.Status == "" {
		home.Status = models.HomeStatusActive
	}

	if err := h.DB.InsertOne(r.Context(), home); err != nil {
		config.ErrorStatus("failed to create home", http.StatusInternalServerError, w, err)
		return
	}

	// the sheet is a best-effort mirror, a failed append is repaired by the
	// next reconciliation pass
	h.mirrorUpsert(home)

	b, err := json.Marshal(home)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// HomeHandler returns a home given a homeID
func (h Home) HomeHandler(w http.ResponseWriter, r *http.Request) {
	homeID := mux.Vars(r)["home_id"]

	hID, err := primitive.ObjectIDFromHex(homeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := h.DB.FindOne(context.Background(), bson.M{"_id": hID})
	if err != nil {
		config.ErrorStatus("failed to get home by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateHomeHandler updates a home in both stores and reconciles them before
// responding so the client immediately sees convergent state
func (h Home) UpdateHomeHandler(w http.ResponseWriter, r *http.Request) {
	homeID := mux.Vars(r)["home_id"]

	hID, err := primitive.ObjectIDFromHex(homeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req homeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("failed to validate home", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	verified := req.Verified != nil && *req.Verified
	status := req.Status
	if status == "" {
		status = models.HomeStatusActive
	}

	update := bson.M{"$set": bson.M{
		"name":        req.Name,
		"location":    req.Location,
		"lat":         *req.Lat,
		"lng":         *req.Lng,
		"description": req.Description,
		"contact":     req.Contact,
		"verified":    verified,
		"status":      status,
		"updatedAt":   now,
	}}

	res, err := h.DB.UpdateOne(r.Context(), bson.M{"_id": hID}, update)
	if err != nil {
		config.ErrorStatus("failed to update home", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("failed to update home", http.StatusNotFound, w, errors.New("home not found"))
		return
	}

	updated, err := h.DB.FindOne(r.Context(), bson.M{"_id": hID})
	if err != nil {
		config.ErrorStatus("failed to get home by ID", http.StatusInternalServerError, w, err)
		return
	}

	h.mirrorUpsert(*updated)

	if h.Engine != nil {
		h.Engine.Reconcile(r.Context())
	}

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteHomeHandler removes a home from both stores
func (h Home) DeleteHomeHandler(w http.ResponseWriter, r *http.Request) {
	homeID := mux.Vars(r)["home_id"]

	hID, err := primitive.ObjectIDFromHex(homeID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	home, err := h.DB.FindOne(r.Context(), bson.M{"_id": hID})
	if err != nil {
		config.ErrorStatus("failed to get home by ID", http.StatusNotFound, w, err)
		return
	}

	if err := h.DB.DeleteOne(r.Context(), bson.M{"_id": hID}); err != nil {
		config.ErrorStatus("failed to delete home", http.StatusInternalServerError, w, err)
		return
	}

	h.mirrorDelete(*home)

	w.WriteHeader(http.StatusNoContent)
}

// homeExists checks for a duplicate name in either store.
func (h Home) homeExists(ctx context.Context, name string) bool {
	if _, err := h.DB.FindOne(ctx, bson.M{"name": name}); err == nil {
		return true
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		zap.S().Errorw("failed to check for existing home", "name", name, "error", err)
	}
	flatHomes, err := h.Files.ReadHomes()
	if err != nil {
		zap.S().Errorw("failed to read homes sheet", "error", err)
		return false
	}
	for _, fh := range flatHomes {
		if fh.Name == name {
			return true
		}
	}
	return false
}

func (h Home) mirrorUpsert(home models.Home) {
	rows, err := h.Files.ReadHomes()
	if err != nil {
		zap.S().Errorw("failed to read homes sheet", "error", err)
		rows = nil
	}
	replaced := false
	for i, row := range rows {
		if row.ID == home.ID || row.Name == home.Name {
			rows[i] = home
			replaced = true
			break
		}
	}
	if !replaced {
		rows = append(rows, home)
	}
	if err := h.Files.WriteHomes(rows); err != nil {
		zap.S().Errorw("failed to update homes sheet", "name", home.Name, "error", err)
	}
}

func (h Home) mirrorDelete(home models.Home) {
	rows, err := h.Files.ReadHomes()
	if err != nil {
		zap.S().Errorw("failed to read homes sheet", "error", err)
		return
	}
	kept := rows[:0]
	for _, row := range rows {
		if row.ID != home.ID && row.Name != home.Name {
			kept = append(kept, row)
		}
	}
	if err := h.Files.WriteHomes(kept); err != nil {
		zap.S().Errorw("failed to update homes sheet", "name", home.Name, "error", err)
	}
}
