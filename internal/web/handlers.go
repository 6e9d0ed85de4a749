package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabload/internal/core"
	"github.com/JonMunkholm/tabload/internal/logging"
	"github.com/JonMunkholm/tabload/internal/stats"
	"github.com/JonMunkholm/tabload/internal/store"
	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

var errFileTooLarge = errors.New("file too large")

type healthResponse struct {
	Status  string             `json:"status"`
	Imports core.LimiterStatus `json:"imports"`
}

type tableResponse struct {
	store.Meta
	Header     []string    `json:"header"`
	Rows       []table.Row `json:"rows"`
	Mismatched []int       `json:"mismatched,omitempty"`
}

type nullsResponse struct {
	Columns []stats.ColumnCount `json:"columns"`
	Total   int                 `json:"total"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Imports: s.service.LimiterStatus()})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	metas, err := s.service.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if metas == nil {
		metas = []store.Meta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

// handleImport reads the multipart "file" field into a new table. The table
// is named by the "name" field, falling back to the uploaded file name.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, s.cfg.Upload.MaxFileSize))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}

	meta, err := s.service.Import(r.Context(), name, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/tables/"+meta.ID.String())
	writeJSON(w, http.StatusCreated, meta)
}

// handleGetTable returns a table, or the first/last rows of it when the head
// or tail query parameter is set.
func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tableID(w, r)
	if !ok {
		return
	}

	head, hasHead, err := intParam(r, "head")
	if err != nil {
		respondError(w, r, err)
		return
	}
	tail, hasTail, err := intParam(r, "tail")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if hasHead && hasTail {
		respondError(w, r, fmt.Errorf("%w: head and tail are exclusive", core.ErrBadRequest))
		return
	}

	t, meta, err := s.service.Table(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	switch {
	case hasHead:
		t = t.Head(head)
	case hasTail:
		t = t.Tail(tail)
	}
	// Mismatched indexes the returned rows, not the stored table.
	resp := tableResponse{Meta: meta, Mismatched: t.Mismatched()}
	resp.Header = t.Header
	resp.Rows = t.Rows
	if resp.Rows == nil {
		resp.Rows = []table.Row{}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tableID(w, r)
	if !ok {
		return
	}
	if err := s.service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tableID(w, r)
	if !ok {
		return
	}
	summary, err := s.service.Describe(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if summary.Columns == nil {
		summary.Columns = []stats.ColumnSummary{}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleNulls(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tableID(w, r)
	if !ok {
		return
	}
	counts, err := s.service.Nulls(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nullsResponse{Columns: counts, Total: stats.TotalMissing(counts)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tableID(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": id.String() + ".csv"}))

	// Headers are still unsent if the lookup failed, so errors before the
	// first byte get a JSON reply.
	cw := &countingWriter{w: w}
	if _, err := s.service.Export(r.Context(), id, cw); err != nil {
		if cw.n == 0 {
			respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Error("export interrupted", "table_id", id, "bytes", cw.n, "error", err)
	}
}

type countingWriter struct {
	w http.ResponseWriter
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// tableID parses the {id} path parameter, replying 400 when it is malformed.
func (s *Server) tableID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := core.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return uuid.Nil, false
	}
	return id, true
}

// intParam parses an optional integer query parameter. Negative values are
// accepted and follow Table.Head / Table.Tail semantics.
func intParam(r *http.Request, name string) (int, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s must be an integer", core.ErrBadRequest, name)
	}
	return n, true, nil
}
