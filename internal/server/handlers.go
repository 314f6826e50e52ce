package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gompdf/scorepdf/internal/failure"
	"github.com/gompdf/scorepdf/internal/preview"
	"github.com/gompdf/scorepdf/internal/storage"
	"github.com/gompdf/scorepdf/pkg/api"
	"github.com/gompdf/scorepdf/pkg/logger"
	"github.com/google/uuid"
)

// reportResponse is returned by POST /v1/reports.
type reportResponse struct {
	ID    string `json:"id"`
	Pages int    `json:"pages"`
	URL   string `json:"url"`
}

type errResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// statusOf maps a failure to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case failure.KindOf(err) == failure.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// readTable reads the uploaded score file: the multipart field "file", or
// the raw request body for JSON and YAML content types. The orientation query
// parameter overrides the configured input orientation.
func (s *Server) readTable(r *http.Request) (*api.Table, error) {
	gen := s.gen
	if o := r.URL.Query().Get("orientation"); o != "" {
		gen = gen.WithOption(api.WithOrientation(o))
	}

	r.Body = http.MaxBytesReader(nil, r.Body, s.maxUpload)

	var src io.Reader
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		f, _, err := r.FormFile("file")
		if err != nil {
			if s.tooLarge(err) {
				return nil, failure.Validationf("upload", "file exceeds %d bytes", s.maxUpload)
			}
			return nil, failure.Validationf("upload", "file required")
		}
		defer f.Close()
		src = f
	} else {
		src = r.Body
	}

	data, err := io.ReadAll(src)
	if err != nil {
		if s.tooLarge(err) {
			return nil, failure.Validationf("upload", "file exceeds %d bytes", s.maxUpload)
		}
		return nil, failure.IO("upload", err)
	}
	return gen.Parse(bytes.NewReader(data))
}

func (s *Server) tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	t, err := s.readTable(r)
	if err != nil {
		writeErr(w, statusOf(err), err.Error())
		return
	}
	var buf bytes.Buffer
	if err := preview.Render(&buf, t); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	t, err := s.readTable(r)
	if err != nil {
		writeErr(w, statusOf(err), err.Error())
		return
	}

	data, res, err := s.gen.GenerateBytes(r.Context(), t)
	if err != nil {
		writeErr(w, statusOf(err), err.Error())
		return
	}

	id := uuid.NewString()
	if _, err := s.store.Put(reportsPrefix+id+".pdf", bytes.NewReader(data)); err != nil {
		s.log.Error(r.Context(), "store report", logger.String("id", id), logger.Error(err))
		writeErr(w, http.StatusInternalServerError, "store error")
		return
	}

	url := "/v1/reports/" + id
	w.Header().Set("Location", url)
	writeJSON(w, http.StatusCreated, reportResponse{ID: id, Pages: res.Pages, URL: url})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid report id")
		return
	}
	rc, err := s.store.Get(reportsPrefix + id + ".pdf")
	if err != nil {
		writeErr(w, statusOf(err), "report not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	_, _ = io.Copy(w, rc)
}
