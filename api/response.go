package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/segtrack/carnets/pkg/repository"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, errorResponse{Error: msg}, status)
}

// writeStoreError translates a store error kind to HTTP exactly once, here.
// Unexpected failures on mutating endpoints answer 400 (the carnet either
// committed whole or not at all, so the client can simply retry); reads
// answer 500.
func writeStoreError(w http.ResponseWriter, err error, mutating bool) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, repository.ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, repository.ErrDuplicateID):
		writeError(w, "a carnet with that national id already exists", http.StatusBadRequest)
	case repository.IsValidation(err):
		writeError(w, err.Error(), http.StatusBadRequest)
	case mutating:
		logger.Error("store failure", slog.Any("err", err))
		writeError(w, "operation failed", http.StatusBadRequest)
	default:
		logger.Error("store failure", slog.Any("err", err))
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}
