package config

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, "mongodb://127.0.0.1:27017", conf.URL)
	assert.Equal(t, "test", conf.DatabaseName)
}

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("ADMIN_TOKEN")
	os.Unsetenv("SYNC_INTERVAL")
	conf := New()

	assert.Equal(t, "admin-token-123", conf.AdminToken)
	assert.Equal(t, 5*time.Minute, conf.SyncInterval)
	assert.Equal(t, "database", conf.DataDir)
}

func TestNewSyncIntervalOverride(t *testing.T) {
	os.Setenv("SYNC_INTERVAL", "30s")
	defer os.Unsetenv("SYNC_INTERVAL")
	conf := New()

	assert.Equal(t, 30*time.Second, conf.SyncInterval)
}

func TestErrorStatus(t *testing.T) {

	ErrorStatus("error it borked", http.StatusBadRequest, httptest.NewRecorder(), errors.New("bad request"))
	assert.True(t, true)
}
