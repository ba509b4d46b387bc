package drive

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	ingestService *IngestService
}

func NewHandler(ingestService *IngestService) *Handler {
	return &Handler{ingestService: ingestService}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/drive/sync", h.Sync).Methods("POST")
	router.HandleFunc("/api/drive/status", h.Status).Methods("GET")
	router.HandleFunc("/api/drive/ingest", h.IngestFile).Methods("POST")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.ingestService.ListFiles(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list drive files", err)
		return
	}
	if files == nil {
		files = []*File{}
	}
	writeJSON(w, http.StatusOK, files)
}

// Sync imports new or changed files. With force=true every file of the
// folder is imported again.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	sync := h.ingestService.Sync
	if force, _ := strconv.ParseBool(r.URL.Query().Get("force")); force {
		sync = h.ingestService.SyncAll
	}

	run, err := sync(r.Context())
	if errors.Is(err, ErrSyncRunning) {
		writeError(w, http.StatusConflict, "Sync already running", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	run, err := h.ingestService.Status()
	resp := map[string]interface{}{"last_run": run}
	if err != nil {
		resp["last_error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "fileId parameter is required", nil)
		return
	}

	run, err := h.ingestService.IngestFile(r.Context(), fileID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Ingestion failed", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("drive: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	writeJSON(w, status, body)
}
