package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/config"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/database"
	apiHttp "github.com/adityamitter15/invoice-ocr-prototype/internal/http"
	submissionHandler "github.com/adityamitter15/invoice-ocr-prototype/internal/http/submission"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/ocr"
	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
	subStore "github.com/adityamitter15/invoice-ocr-prototype/internal/submission/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var engine ocr.Engine = ocr.Noop{}
	if cfg.OCR.URL != "" {
		engine = ocr.NewHTTPEngine(cfg.OCR.URL, cfg.OCR.Engine, cfg.OCR.Timeout)
	} else {
		slog.Warn("no OCR service configured, submissions will have empty extractions")
	}

	submissionService := submission.NewService(subStore.New(db))
	submissionH := submissionHandler.NewHandler(submissionService, engine)

	router := apiHttp.New(submissionH, cfg.CORS.AllowedOrigins)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
