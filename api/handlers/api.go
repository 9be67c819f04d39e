package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shelterlink/welfare-homes-api/api"
	"github.com/shelterlink/welfare-homes-api/config"
	"github.com/shelterlink/welfare-homes-api/databases"
	"github.com/shelterlink/welfare-homes-api/flatfile"
	"github.com/shelterlink/welfare-homes-api/models"
	"github.com/shelterlink/welfare-homes-api/syncer"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	files     flatfile.Store
	engine    *syncer.Engine
	scheduler *syncer.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	api.SetupGoGuardian(a.Config.AdminToken)

	h := Home{DB: databases.NewHomeDatabase(a.dbHelper), Files: a.files, Engine: a.engine}
	rep := Report{DB: databases.NewReportDatabase(a.dbHelper), Files: a.files, UploadDir: a.Config.UploadDir}
	adm := Admin{DB: databases.NewAdminDatabase(a.dbHelper), Files: a.files}
	sw := SocialWorker{DB: databases.NewSocialWorkerDatabase(a.dbHelper), Files: a.files, JWTSecret: a.Config.JWTSecret, SendgridKey: a.Config.SendgridKey, SenderEmail: a.Config.SenderEmail}

	r := mux.NewRouter()

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/homes", http.HandlerFunc(h.ListHomesHandler)).Methods("GET")
	apiCreate.Handle("/homes", api.Middleware(http.HandlerFunc(h.CreateHomeHandler))).Methods("POST")
	apiCreate.Handle("/homes/{home_id}", api.Middleware(http.HandlerFunc(h.HomeHandler))).Methods("GET")
	apiCreate.Handle("/homes/{home_id}", api.Middleware(http.HandlerFunc(h.UpdateHomeHandler))).Methods("PUT")
	apiCreate.Handle("/homes/{home_id}", api.Middleware(http.HandlerFunc(h.DeleteHomeHandler))).Methods("DELETE")

	apiCreate.Handle("/reports", http.HandlerFunc(rep.CreateReportHandler)).Methods("POST")
	apiCreate.Handle("/reports", http.HandlerFunc(rep.ListReportsHandler)).Methods("GET")
	apiCreate.Handle("/reports/worker/{worker_id}", http.HandlerFunc(rep.WorkerReportsHandler)).Methods("GET")
	apiCreate.Handle("/reports/{report_id}/resolve", api.Middleware(http.HandlerFunc(rep.ResolveReportHandler))).Methods("POST")
	apiCreate.Handle("/reports/{report_id}", api.Middleware(http.HandlerFunc(rep.UpdateReportHandler))).Methods("PUT")
	apiCreate.Handle("/reports/{report_id}", api.Middleware(http.HandlerFunc(rep.DeleteReportHandler))).Methods("DELETE")
	apiCreate.Handle("/stats", http.HandlerFunc(rep.StatsHandler)).Methods("GET")

	apiCreate.Handle("/admin/register", api.Middleware(http.HandlerFunc(adm.RegisterAdminHandler))).Methods("POST")
	apiCreate.Handle("/admin/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admins", api.Middleware(http.HandlerFunc(adm.ListAdminsHandler))).Methods("GET")
	apiCreate.Handle("/admins/{username}", api.Middleware(http.HandlerFunc(adm.UpdateAdminHandler))).Methods("PUT")
	apiCreate.Handle("/admins/{username}", api.Middleware(http.HandlerFunc(adm.DeleteAdminHandler))).Methods("DELETE")

	apiCreate.Handle("/social-workers", http.HandlerFunc(sw.RegisterSocialWorkerHandler)).Methods("POST")
	apiCreate.Handle("/social-workers", api.Middleware(http.HandlerFunc(sw.ListSocialWorkersHandler))).Methods("GET")
	apiCreate.Handle("/social-workers/{worker_id}", http.HandlerFunc(sw.SocialWorkerHandler)).Methods("GET")
	apiCreate.Handle("/social-worker/login", http.HandlerFunc(sw.SocialWorkerLoginHandler)).Methods("POST")
	apiCreate.Handle("/social-worker/{worker_id}/toggle-status", api.Middleware(http.HandlerFunc(sw.ToggleWorkerStatusHandler))).Methods("POST")
	apiCreate.Handle("/social-worker/{worker_id}/reset-password", api.Middleware(http.HandlerFunc(sw.ResetWorkerPasswordHandler))).Methods("POST")

	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.Config.UploadDir))))

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("welfare-homes-api has connected to the database")

	a.files = flatfile.New(a.Config.DataDir)
	if err := a.files.Init(); err != nil {
		zap.S().Errorw("failed to initialize flat file store", "error", err)
	}

	a.engine = syncer.New(
		databases.NewHomeDatabase(a.dbHelper),
		databases.NewReportDatabase(a.dbHelper),
		databases.NewAdminDatabase(a.dbHelper),
		databases.NewSocialWorkerDatabase(a.dbHelper),
		a.files,
	)

	// absorb any edits made to the flat files while the server was down
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	a.engine.Reconcile(ctx)
	cancel()

	a.scheduler = syncer.NewScheduler(a.engine, a.Config.SyncInterval)
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// Shutdown stops the background scheduler.
func (a *App) Shutdown() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
