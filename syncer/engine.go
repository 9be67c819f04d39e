// Package syncer keeps the document store and the flat-file mirror
// convergent. The flat files may be edited out-of-band, so importing them
// merges record by record; the document store is authoritative for reads,
// so exporting overwrites each sheet wholesale.
package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
)

// Engine runs reconciliation passes between the two stores. Passes are
// serialized by a mutex; a pass triggered while another is running waits
// rather than overlapping it.
type Engine struct {
	homes   databases.HomeDatabase
	reports databases.ReportDatabase
	admins  databases.AdminDatabase
	workers databases.SocialWorkerDatabase
	files   flatfile.Store
	mu      sync.Mutex
}

// New wires an engine to the four typed databases and the flat-file store.
func New(homes databases.HomeDatabase, reports databases.ReportDatabase,
	admins databases.AdminDatabase, workers databases.SocialWorkerDatabase,
	files flatfile.Store) *Engine {
	return &Engine{
		homes:   homes,
		reports: reports,
		admins:  admins,
		workers: workers,
		files:   files,
	}
}

// Reconcile runs both directions back-to-back: first absorb out-of-band
// edits from the flat files, then re-export the canonical document state.
func (e *Engine) Reconcile(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flatFileToDocument(ctx)
	e.documentToFlatFile(ctx)
	zap.S().Debug("reconciliation pass complete")
}

// FlatFileToDocument merges every flat-file collection into the document
// store using the per-kind conflict policy. Idempotent.
func (e *Engine) FlatFileToDocument(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flatFileToDocument(ctx)
}

// DocumentToFlatFile overwrites every flat-file collection with the document
// store's current contents. Idempotent.
func (e *Engine) DocumentToFlatFile(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.documentToFlatFile(ctx)
}

func (e *Engine) flatFileToDocument(ctx context.Context) {
	e.importHomes(ctx)
	e.importReports(ctx)
	e.importAdmins(ctx)
	e.importSocialWorkers(ctx)
}

func (e *Engine) importHomes(ctx context.Context) {
	rows, err := e.files.ReadHomes()
	if err != nil {
		zap.S().Errorw("failed to read homes sheet", "error", err)
		return
	}
	for _, row := range rows {
		if err := e.upsertHome(ctx, row); err != nil {
			zap.S().Errorw("failed to sync home", "name", row.Name, "error", err)
		}
	}
}

// upsertHome matches by stored id when the sheet row carries one, otherwise
// by name. The document store's verified and status values win unless the
// row sets them explicitly.
func (e *Engine) upsertHome(ctx context.Context, row models.Home) error {
	filter := bson.M{"name": row.Name}
	if !row.ID.IsZero() {
		filter = bson.M{"_id": row.ID}
	}
	now := primitive.NewDateTimeFromTime(time.Now())

	existing, err := e.homes.FindOne(ctx, filter)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		verified := row.Verified != nil && *row.Verified
		row.Verified = &verified
		if row.Status == "" {
			row.Status = models.HomeStatusActive
		}
		row.CreatedAt = now
		row.UpdatedAt = now
		return e.homes.InsertOne(ctx, row)
	}

	if row.Verified == nil {
		row.Verified = existing.Verified
	}
	if row.Verified == nil {
		f := false
		row.Verified = &f
	}
	if row.Status == "" {
		row.Status = existing.Status
	}
	if row.Status == "" {
		row.Status = models.HomeStatusActive
	}
	row.ID = existing.ID
	if row.CreatedAt == 0 {
		row.CreatedAt = existing.CreatedAt
	}
	row.UpdatedAt = now

	_, err = e.homes.ReplaceOne(ctx, bson.M{"_id": existing.ID}, row, options.Replace().SetUpsert(true))
	return err
}

func (e *Engine) importReports(ctx context.Context) {
	rows, err := e.files.ReadReports()
	if err != nil {
		zap.S().Errorw("failed to read reports sheet", "error", err)
		return
	}
	for _, row := range rows {
		row.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
		if _, err := e.reports.ReplaceOne(ctx, bson.M{"id": row.ID}, row, options.Replace().SetUpsert(true)); err != nil {
			zap.S().Errorw("failed to sync report", "id", row.ID, "error", err)
		}
	}
}

func (e *Engine) importAdmins(ctx context.Context) {
	rows, err := e.files.ReadAdmins()
	if err != nil {
		zap.S().Errorw("failed to read admins sheet", "error", err)
		return
	}
	for _, row := range rows {
		row.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
		if _, err := e.admins.ReplaceOne(ctx, bson.M{"username": row.Username}, row, options.Replace().SetUpsert(true)); err != nil {
			zap.S().Errorw("failed to sync admin", "username", row.Username, "error", err)
		}
	}
}

func (e *Engine) importSocialWorkers(ctx context.Context) {
	rows, err := e.files.ReadSocialWorkers()
	if err != nil {
		zap.S().Errorw("failed to read social workers sheet", "error", err)
		return
	}
	for _, row := range rows {
		row.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())
		if _, err := e.workers.ReplaceOne(ctx, bson.M{"workerId": row.WorkerID}, row, options.Replace().SetUpsert(true)); err != nil {
			zap.S().Errorw("failed to sync social worker", "workerId", row.WorkerID, "error", err)
		}
	}
}

// documentToFlatFile mirrors each kind independently so one failing kind
// never blocks the others.
func (e *Engine) documentToFlatFile(ctx context.Context) {
	if homes, err := e.homes.Find(ctx, bson.M{}); err != nil {
		zap.S().Errorw("failed to read homes collection", "error", err)
	} else {
		for i := range homes {
			NormalizeHome(&homes[i])
		}
		if err := e.files.WriteHomes(homes); err != nil {
			zap.S().Errorw("failed to write homes sheet", "error", err)
		}
	}

	if reports, err := e.reports.Find(ctx, bson.M{}); err != nil {
		zap.S().Errorw("failed to read reports collection", "error", err)
	} else if err := e.files.WriteReports(reports); err != nil {
		zap.S().Errorw("failed to write reports sheet", "error", err)
	}

	if admins, err := e.admins.Find(ctx, bson.M{}); err != nil {
		zap.S().Errorw("failed to read admins collection", "error", err)
	} else if err := e.files.WriteAdmins(admins); err != nil {
		zap.S().Errorw("failed to write admins sheet", "error", err)
	}

	if workers, err := e.workers.Find(ctx, bson.M{}); err != nil {
		zap.S().Errorw("failed to read social workers collection", "error", err)
	} else if err := e.files.WriteSocialWorkers(workers); err != nil {
		zap.S().Errorw("failed to write social workers sheet", "error", err)
	}
}

// NormalizeHome forces verified to a strict boolean and status to a valid
// enum member before a home leaves the document store.
func NormalizeHome(h *models.Home) {
	if h.Verified == nil {
		f := false
		h.Verified = &f
	}
	if h.Status == "" {
		h.Status = models.HomeStatusActive
	}
}
