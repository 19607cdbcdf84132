package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"orderboard/internal/infrastructure/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	baseURL := pflag.String("url", "http://127.0.0.1:3030", "order board base URL")
	requests := pflag.IntP("requests", "n", 10, "number of concurrent orders to place")
	table := pflag.Int("table", 1, "table number for every order")
	item := pflag.String("item", "Sushi", "menu item for every order")
	quantity := pflag.Int("quantity", 2, "quantity for every order")
	level := pflag.String("log-level", "info", "log level")
	pflag.Parse()

	zapLogger, err := logger.New(*level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	lg := &loadGenerator{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: *baseURL,
		logger:  zapLogger,
	}

	summary := lg.Run(*requests, orderPayload{TableNumber: *table, MenuItem: *item, Quantity: *quantity})

	zapLogger.Info("finished",
		zap.Int("placed", summary.Placed),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
	)
	if summary.Placed != *requests {
		os.Exit(1)
	}
}
