package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL          string        `env:"DB_URI" envDefault:"mongodb://localhost:27017"`
	DatabaseName string        `env:"DB_NAME" envDefault:"welfareDB"`
	BaseURL      string        `env:"BASE_URL"`
	Port         string        `env:"PORT" envDefault:"3000"`
	AdminToken   string        `env:"ADMIN_TOKEN" envDefault:"admin-token-123"`
	DataDir      string        `env:"DATA_DIR" envDefault:"database"`
	UploadDir    string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"5m"`
	JWTSecret    string        `env:"JWT_SECRET" envDefault:"welfare-homes-dev-secret"`
	SendgridKey  string        `env:"SENDGRID_API_KEY"`
	SenderEmail  string        `env:"SENDER_EMAIL" envDefault:"no-reply@welfare-homes.org"`
}

// New sets up all config related services
func New() *Config {

	// a .env file is optional, the environment itself wins
	_ = godotenv.Load()

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		zap.S().With(err).Error("failed to parse environment config")
	}
	return conf
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
	return
}
