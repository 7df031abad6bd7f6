package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/Tantanok221/agentbudget/internal/models"
	"github.com/Tantanok221/agentbudget/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// gin uses debug as the default mode, we use release for
	// security reasons
	ginMode, ok := os.LookupEnv("GIN_MODE")
	if !ok {
		gin.SetMode("release")
	} else {
		gin.SetMode(ginMode)
	}

	// Log format can be explicitly set.
	// If it is not set, it defaults to human readable for development
	// and JSON for release
	logFormat, ok := os.LookupEnv("LOG_FORMAT")
	output := io.Writer(os.Stdout)
	if (!ok && gin.IsDebugging()) || (ok && logFormat == "human") {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if gin.IsDebugging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()

	// Create data directory
	dataDir := filepath.Join(".", "data")
	err := os.MkdirAll(dataDir, os.ModePerm)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// Connect to the database and migrate the schema
	dsn, ok := os.LookupEnv("DB_DSN")
	if !ok {
		dsn = "data/gorm.db?_pragma=foreign_keys(1)"
	}
	err = models.Connect(dsn)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	// The budget is usable right after startup, no separate init call
	// needed for the system envelope.
	_, _, err = models.InitializeSystem(models.DB)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	r, teardown, err := router.Router()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer teardown()

	if err := r.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
