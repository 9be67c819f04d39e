package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shelterlink/welfare-homes-api/config"
	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
	"github.com/shelterlink/welfare-homes-api/syncer"
)

const maxImageSize = 5 << 20 // 5MB

// Report handles case report requests
type Report struct {
	DB        databases.ReportDatabase
	Files     flatfile.Store
	UploadDir string
}

type reportRequest struct {
	WorkerID    string `json:"workerId"`
	PersonName  string `json:"personName"`
	Age         int    `json:"age"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (rr reportRequest) validate() error {
	if rr.WorkerID == "" || rr.PersonName == "" || rr.Location == "" || rr.Description == "" {
		return errors.New("missing required fields")
	}
	if rr.Age <= 0 {
		return errors.New("invalid age")
	}
	return nil
}

// decodeReportRequest reads either a JSON body or a multipart form with an
// optional image file. It returns the saved image URL, if any.
func (re Report) decodeReportRequest(r *http.Request) (reportRequest, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			return reportRequest{}, "", err
		}
		age, _ := strconv.Atoi(r.FormValue("age"))
		req := reportRequest{
			WorkerID:    r.FormValue("workerId"),
			PersonName:  r.FormValue("personName"),
			Age:         age,
			Location:    r.FormValue("location"),
			Description: r.FormValue("description"),
		}
		imageURL, err := re.saveImage(r)
		if err != nil {
			return req, "", err
		}
		return req, imageURL, nil
	}

	var req reportRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, "", err
}

func (re Report) saveImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	if err := os.MkdirAll(re.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.New().String() + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(re.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

// CreateReportHandler creates a new case report
func (re Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	req, imageURL, err := re.decodeReportRequest(r)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("failed to validate report", http.StatusBadRequest, w, err)
		return
	}

	now := time.Now()
	report := models.Report{
		ObjectID:    primitive.NewObjectID(),
		ID:          now.UnixMilli(),
		WorkerID:    req.WorkerID,
		PersonName:  req.PersonName,
		Age:         req.Age,
		Location:    req.Location,
		Description: req.Description,
		ImageURL:    imageURL,
		Status:      models.ReportStatusPending,
		Timestamp:   primitive.NewDateTimeFromTime(now),
	}

	if err := re.DB.InsertOne(r.Context(), report); err != nil {
		config.ErrorStatus("failed to submit report", http.StatusInternalServerError, w, err)
		return
	}

	re.mirrorAppend(report)

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ListReportsHandler returns the merged report collections, newest first
func (re Report) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	re.listReports(w, bson.M{}, "")
}

// WorkerReportsHandler returns the merged reports submitted by one worker
func (re Report) WorkerReportsHandler(w http.ResponseWriter, r *http.Request) {
	workerID := mux.Vars(r)["worker_id"]
	re.listReports(w, bson.M{"workerId": workerID}, workerID)
}

func (re Report) listReports(w http.ResponseWriter, filter bson.M, workerID string) {
	docReports, err := re.DB.Find(context.Background(), filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		zap.S().Errorw("failed to get reports from document store", "error", err)
		docReports = nil
	}
	flatReports, err := re.Files.ReadReports()
	if err != nil {
		zap.S().Errorw("failed to read reports sheet", "error", err)
		flatReports = nil
	}
	if workerID != "" {
		kept := flatReports[:0]
		for _, fr := range flatReports {
			if fr.WorkerID == workerID {
				kept = append(kept, fr)
			}
		}
		flatReports = kept
	}

	reports := syncer.Merge(docReports, flatReports)
	if len(reports) == 0 {
		reports = []models.Report{}
	}
	b, err := json.Marshal(reports)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StatsHandler summarizes the merged report collections
func (re Report) StatsHandler(w http.ResponseWriter, r *http.Request) {
	docReports, err := re.DB.Find(context.Background(), bson.M{})
	if err != nil {
		zap.S().Errorw("failed to get reports from document store", "error", err)
		docReports = nil
	}
	flatReports, err := re.Files.ReadReports()
	if err != nil {
		zap.S().Errorw("failed to read reports sheet", "error", err)
		flatReports = nil
	}

	stats := models.ReportStats{LastUpdate: primitive.NewDateTimeFromTime(time.Now())}
	for _, rep := range syncer.Merge(docReports, flatReports) {
		stats.TotalReports++
		switch rep.Status {
		case models.ReportStatusPending:
			stats.ActiveReports++
		case models.ReportStatusResolved:
			stats.ResolvedCases++
		}
	}

	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ResolveReportHandler transitions a pending report to resolved. The
// transition is one-way: resolving a resolved or unknown id is a not-found.
func (re Report) ResolveReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := parseReportID(r)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	res, err := re.DB.UpdateOne(r.Context(),
		bson.M{"id": reportID, "status": models.ReportStatusPending},
		bson.M{"$set": bson.M{
			"status":    models.ReportStatusResolved,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		}})
	if err != nil {
		config.ErrorStatus("failed to resolve case", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("report not found", http.StatusNotFound, w, fmt.Errorf("no pending report with id %d", reportID))
		return
	}

	re.mirrorSetStatus(reportID, models.ReportStatusResolved)

	updated, err := re.DB.FindOne(r.Context(), bson.M{"id": reportID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}
	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateReportHandler replaces a report's descriptive fields and optionally
// its image
func (re Report) UpdateReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := parseReportID(r)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	req, imageURL, err := re.decodeReportRequest(r)
	if err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := req.validate(); err != nil {
		config.ErrorStatus("failed to validate report", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{
		"workerId":    req.WorkerID,
		"personName":  req.PersonName,
		"age":         req.Age,
		"location":    req.Location,
		"description": req.Description,
		"updatedAt":   primitive.NewDateTimeFromTime(time.Now()),
	}
	if imageURL != "" {
		set["imageUrl"] = imageURL
		if old, err := re.DB.FindOne(r.Context(), bson.M{"id": reportID}); err == nil {
			re.removeImage(old.ImageURL)
		}
	}

	res, err := re.DB.UpdateOne(r.Context(), bson.M{"id": reportID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to modify report", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("report not found", http.StatusNotFound, w, fmt.Errorf("no report with id %d", reportID))
		return
	}

	updated, err := re.DB.FindOne(r.Context(), bson.M{"id": reportID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}

	re.mirrorReplace(*updated)

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteReportHandler removes a report from both stores along with its image
func (re Report) DeleteReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID, err := parseReportID(r)
	if err != nil {
		config.ErrorStatus("invalid report ID", http.StatusBadRequest, w, err)
		return
	}

	report, err := re.DB.FindOne(r.Context(), bson.M{"id": reportID})
	if err != nil {
		config.ErrorStatus("report not found", http.StatusNotFound, w, err)
		return
	}

	if err := re.DB.DeleteOne(r.Context(), bson.M{"id": reportID}); err != nil {
		config.ErrorStatus("failed to delete report", http.StatusInternalServerError, w, err)
		return
	}

	re.mirrorRemove(reportID)
	re.removeImage(report.ImageURL)

	w.WriteHeader(http.StatusNoContent)
}

func parseReportID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["report_id"], 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("report id must be positive, got %d", id)
	}
	return id, nil
}

func (re Report) removeImage(imageURL string) {
	if imageURL == "" {
		return
	}
	path := filepath.Join(re.UploadDir, filepath.Base(imageURL))
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		zap.S().Warnw("failed to remove report image", "path", path, "error", err)
	}
}

func (re Report) mirrorAppend(report models.Report) {
	rows, err := re.Files.ReadReports()
	if err != nil {
		zap.S().Errorw("failed to read reports sheet", "error", err)
		rows = nil
	}
	rows = append(rows, report)
	if err := re.Files.WriteReports(rows); err != nil {
		zap.S().Errorw("failed to update reports sheet", "id", report.ID, "error", err)
	}
}

func (re Report) mirrorReplace(report models.Report) {
	rows, err := re.Files.ReadReports()
	if err != nil {
		zap.S().Errorw("failed to read reports sheet", "error", err)
		return
	}
	for i, row := range rows {
		if row.ID == report.ID {
			rows[i] = report
			if err := re.Files.WriteReports(rows); err != nil {
				zap.S().Errorw("failed to update reports sheet", "id", report.ID, "error", err)
			}
			return
		}
	}
}

func (re Report) mirrorSetStatus(reportID int64, status string) {
	rows, err := re.Files.ReadReports()
	if err != nil {
		zap.S().Errorw("failed to read reports sheet", "error", err)
		return
	}
	for i, row := range rows {
		if row.ID == reportID {
			rows[i].Status = status
			if err := re.Files.WriteReports(rows); err != nil {
				zap.S().Errorw("failed to update reports sheet", "id", reportID, "error", err)
			}
			return
		}
	}
}

func (re Report) mirrorRemove(reportID int64) {
	rows, err := re.Files.ReadReports()
	if err != nil {
		zap.S().Errorw("failed to read reports sheet", "error", err)
		return
	}
	kept := rows[:0]
	for _, row := range rows {
		if row.ID != reportID {
			kept = append(kept, row)
		}
	}
	if err := re.Files.WriteReports(kept); err != nil {
		zap.S().Errorw("failed to update reports sheet", "id", reportID, "error", err)
	}
}
