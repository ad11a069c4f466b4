package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	ws "dailybag/adapters/websocket"
	"dailybag/core"
	"dailybag/demo"
	"dailybag/engine"
	"dailybag/realtime"
)

func main() {
	// Use readable text logging for development/demo
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(textHandler))

	ctx := context.Background()
	store := demo.NewStore(nil, demo.DefaultChores(time.Now()))
	hub := realtime.NewHub()

	http.Handle("/ws", ws.Handler(hub))
	http.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		// routes: GET /users/{id}, GET /users/{id}/chores,
		// POST /users/{id}/chores/{choreID}/complete
		parts := split(r.URL.Path, '/')
		if len(parts) < 2 {
			http.NotFound(w, r)
			return
		}
		user := core.UserID(parts[1])
		switch r.Method {
		case http.MethodPost:
			if len(parts) >= 5 && parts[2] == "chores" && parts[4] == "complete" {
				rec, err := store.CompleteChore(user, parts[3])
				if errors.Is(err, engine.ErrChoreNotFound) {
					http.NotFound(w, r)
					return
				}
				if err == nil {
					points := rec.Points
					if rec.FinalPoints != nil {
						points = *rec.FinalPoints
					}
					st := store.Stats(user)
					hub.Broadcast(ctx, core.NewChoreCompleted(user, points, st.Progress.EarnedPoints, rec.Title, 0, 0, core.KindPoints))
				}
				writeJSON(w, map[string]any{"chore": rec, "err": errString(err)})
				return
			}
		case http.MethodGet:
			if len(parts) >= 3 && parts[2] == "chores" {
				var own []core.ChoreRecord
				for _, rec := range store.Records() {
					if rec.AssignedTo == user {
						own = append(own, rec)
					}
				}
				writeJSON(w, own)
				return
			}
			writeJSON(w, store.Stats(user))
			return
		}
		http.NotFound(w, r)
	})

	slog.Info("starting demo server on :8080")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		slog.Error("demo server crashed", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

func split(p string, sep rune) []string {
	var parts []string
	current := make([]rune, 0, len(p))

	for _, r := range p {
		if r == sep {
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = current[:0]
			}
			continue
		}
		current = append(current, r)
	}

	if len(current) > 0 {
		parts = append(parts, string(current))
	}

	return parts
}
