package flatfile

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shelterlink/welfare-homes-api/models"
)

// cell returns the trimmed value at index i, or "" when the row is short.
// excelize trims trailing empty cells from rows, so short rows are routine.
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func encodeTime(t primitive.DateTime) interface{} {
	if t == 0 {
		return ""
	}
	return t.Time().UTC().Format(time.RFC3339)
}

func decodeTime(s string) primitive.DateTime {
	if s == "" {
		return 0
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return primitive.NewDateTimeFromTime(ts)
}

var homesCodec = sheetCodec[models.Home]{
	file:   "homes.xlsx",
	header: []string{"_id", "name", "location", "lat", "lng", "description", "contact", "verified", "status", "createdAt", "updatedAt"},
	encode: func(h models.Home) []interface{} {
		id := ""
		if !h.ID.IsZero() {
			id = h.ID.Hex()
		}
		verified := ""
		if h.Verified != nil {
			verified = strconv.FormatBool(*h.Verified)
		}
		return []interface{}{
			id, h.Name, h.Location, h.Lat, h.Lng, h.Description, h.Contact,
			verified, h.Status, encodeTime(h.CreatedAt), encodeTime(h.UpdatedAt),
		}
	},
	decode: func(row []string) (models.Home, error) {
		h := models.Home{
			Name:        cell(row, 1),
			Location:    cell(row, 2),
			Description: cell(row, 5),
			Contact:     cell(row, 6),
			Status:      cell(row, 8),
			CreatedAt:   decodeTime(cell(row, 9)),
			UpdatedAt:   decodeTime(cell(row, 10)),
		}
		if h.Name == "" {
			return h, errors.New("missing name")
		}
		if id := cell(row, 0); id != "" {
			if oid, err := primitive.ObjectIDFromHex(id); err == nil {
				h.ID = oid
			}
		}
		var err error
		if h.Lat, err = strconv.ParseFloat(cell(row, 3), 64); err != nil {
			return h, errors.New("invalid lat")
		}
		if h.Lng, err = strconv.ParseFloat(cell(row, 4), 64); err != nil {
			return h, errors.New("invalid lng")
		}
		// an empty cell means the column was never filled in, not false
		if v := cell(row, 7); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				h.Verified = &b
			}
		}
		return h, nil
	},
}

var reportsCodec = sheetCodec[models.Report]{
	file:   "reports.xlsx",
	header: []string{"id", "workerId", "personName", "age", "location", "description", "imageUrl", "status", "timestamp", "updatedAt"},
	encode: func(r models.Report) []interface{} {
		return []interface{}{
			strconv.FormatInt(r.ID, 10), r.WorkerID, r.PersonName, r.Age,
			r.Location, r.Description, r.ImageURL, r.Status,
			encodeTime(r.Timestamp), encodeTime(r.UpdatedAt),
		}
	},
	decode: func(row []string) (models.Report, error) {
		r := models.Report{
			WorkerID:    cell(row, 1),
			PersonName:  cell(row, 2),
			Location:    cell(row, 4),
			Description: cell(row, 5),
			ImageURL:    cell(row, 6),
			Status:      cell(row, 7),
			Timestamp:   decodeTime(cell(row, 8)),
			UpdatedAt:   decodeTime(cell(row, 9)),
		}
		id, err := strconv.ParseInt(cell(row, 0), 10, 64)
		if err != nil || id <= 0 {
			return r, errors.New("invalid report id")
		}
		r.ID = id
		if age := cell(row, 3); age != "" {
			r.Age, _ = strconv.Atoi(age)
		}
		return r, nil
	},
}

var adminsCodec = sheetCodec[models.Admin]{
	file:   "admins.xlsx",
	header: []string{"username", "email", "password", "updatedAt"},
	encode: func(a models.Admin) []interface{} {
		return []interface{}{a.Username, a.Email, a.Password, encodeTime(a.UpdatedAt)}
	},
	decode: func(row []string) (models.Admin, error) {
		a := models.Admin{
			Username:  cell(row, 0),
			Email:     cell(row, 1),
			Password:  cell(row, 2),
			UpdatedAt: decodeTime(cell(row, 3)),
		}
		if a.Username == "" {
			return a, errors.New("missing username")
		}
		return a, nil
	},
}

var socialWorkersCodec = sheetCodec[models.SocialWorker]{
	file:   "social-workers.xlsx",
	header: []string{"workerId", "name", "email", "password", "status", "createdAt", "lastLogin", "updatedAt"},
	encode: func(w models.SocialWorker) []interface{} {
		return []interface{}{
			w.WorkerID, w.Name, w.Email, w.Password, w.Status,
			encodeTime(w.CreatedAt), encodeTime(w.LastLogin), encodeTime(w.UpdatedAt),
		}
	},
	decode: func(row []string) (models.SocialWorker, error) {
		w := models.SocialWorker{
			WorkerID:  cell(row, 0),
			Name:      cell(row, 1),
			Email:     cell(row, 2),
			Password:  cell(row, 3),
			Status:    cell(row, 4),
			CreatedAt: decodeTime(cell(row, 5)),
			LastLogin: decodeTime(cell(row, 6)),
			UpdatedAt: decodeTime(cell(row, 7)),
		}
		if w.WorkerID == "" {
			return w, errors.New("missing workerId")
		}
		return w, nil
	},
}
