// Command demo-server runs the full API on in-memory storage pre-filled with
// a handful of guesses and scores, for frontend work without a database.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	mem "arcadeboard/adapters/memory"
	"arcadeboard/api/httpapi"
	"arcadeboard/arcade"
	"arcadeboard/core"
	"arcadeboard/engine"
	"arcadeboard/realtime"
)

func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	hub := realtime.NewHub()
	svc := arcade.New(
		arcade.WithStorage(mem.New()),
		arcade.WithRealtime(hub),
		arcade.WithDispatchMode(engine.DispatchAsync),
	)
	defer svc.Close()

	if err := seed(context.Background(), svc); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	handler := httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:      "/api",
		AllowCORSOrigin: "*",
		MaxLimit:        100,
		Logger:          logger,
	})

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", handler); err != nil { // #nosec G114 - demo only
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

var demoGuesses = []core.NewGuess{
	{PlayerName: "Aino", GuessedNumber: 1250},
	{PlayerName: "Eero", GuessedNumber: 980},
	{PlayerName: "Helmi", GuessedNumber: 1500},
}

var demoScores = []core.NewScore{
	{PlayerName: "Aino", TimeSeconds: 42, GameType: core.GamePuzzle},
	{PlayerName: "Eero", TimeSeconds: 37, GameType: core.GamePuzzle},
	{PlayerName: "Helmi", TimeSeconds: 58, GameType: core.GameNutSort},
	{PlayerName: "Onni", TimeSeconds: 21, GameType: core.GameMemory},
	{PlayerName: "Aino", TimeSeconds: 65, GameType: core.GameQuiz},
}

func seed(ctx context.Context, svc *engine.Service) error {
	for _, g := range demoGuesses {
		if _, err := svc.SubmitGuess(ctx, g); err != nil {
			return err
		}
	}
	for _, sc := range demoScores {
		if _, err := svc.SubmitScore(ctx, sc); err != nil {
			return err
		}
	}
	slog.Info("seeded demo data", "guesses", len(demoGuesses), "scores", len(demoScores))
	return nil
}
