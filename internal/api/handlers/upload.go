package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/MarcuxOng/finsight/internal/api/middleware"
	"github.com/MarcuxOng/finsight/internal/gcs"
	"github.com/MarcuxOng/finsight/internal/ingest"
	"github.com/MarcuxOng/finsight/internal/jobs"
)

// 10 MiB is plenty for a CSV export of personal transactions.
const maxUploadBytes = 10 << 20

// UploadHandler accepts CSV files, either importing them inline or parking
// them in GCS for the job worker.
type UploadHandler struct {
	importer  *ingest.Importer
	storage   gcs.Storage
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewUploadHandler(importer *ingest.Importer, storage gcs.Storage, publisher jobs.Publisher, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{importer: importer, storage: storage, publisher: publisher, log: log}
}

// UploadCSV handles POST /api/upload/csv
func (h *UploadHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	content, _, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result := h.importer.Import(ctx, user.ID, content)
	middleware.WriteJSON(w, http.StatusOK, result)
}

// UploadCSVAsync handles POST /api/upload/csv/async
func (h *UploadHandler) UploadCSVAsync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	content, filename, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	objectName := gcs.UploadObjectName(time.Now(), filename)
	gcsURI, err := h.storage.UploadBytes(ctx, objectName, []byte(content))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store upload in GCS")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store uploaded file")
		return
	}

	job := &jobs.ImportCSVJob{
		UserID:   user.ID,
		GCSURI:   gcsURI,
		Filename: filename,
	}
	if err := h.publisher.PublishImportCSV(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("user_id", user.ID).
		Str("gcs_uri", gcsURI).
		Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"gcs_uri": gcsURI,
		"status":  string(job.Status),
	})
}

// Template handles GET /api/upload/template
func (h *UploadHandler) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions_template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, ingest.Template())
}

// readUpload pulls the CSV out of a multipart form (field "file") or, when
// the request is not multipart, the raw body.
func (h *UploadHandler) readUpload(w http.ResponseWriter, r *http.Request) (content, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Missing file in multipart form")
			return "", "", false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return "", "", false
		}
		name := filepath.Base(header.Filename)
		if !strings.HasSuffix(strings.ToLower(name), ".csv") {
			middleware.WriteError(w, http.StatusBadRequest, "Only .csv files are supported")
			return "", "", false
		}
		return string(data), name, true
	}

	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "Empty request body")
		return "", "", false
	}
	return string(data), "upload.csv", true
}
