package http

import (
	"bytes"
	"net/http"
	"strconv"

	"pengluaran/internal/core"
	"pengluaran/internal/export"
	applog "pengluaran/internal/log"
	"pengluaran/internal/report"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rng, err := report.ParseDateRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, applog.OpReport, badRequest("invalid range", err))
		return
	}

	rep, err := s.reports.Report(r.Context(), userIDFrom(r.Context()), rng)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	NewJSONResponse().Data(rep).Write(w)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.reports.Dashboard(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	NewJSONResponse().Data(dash).Write(w)
}

// handleExport renders the whole file before writing so a failure can still
// be answered with an error status.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, applog.OpExport, badRequest("invalid format", err))
		return
	}
	rng, err := report.ParseDateRange(q.Get("range"))
	if err != nil {
		writeError(w, r, applog.OpExport, badRequest("invalid range", err))
		return
	}

	var buf bytes.Buffer
	if err := s.reports.Export(r.Context(), userIDFrom(r.Context()), rng, format, &buf); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}

	filename := export.Filename(s.reports.Now(), string(format))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type rangeOption struct {
	Code  report.DateRange `json:"code"`
	Label string           `json:"label"`
}

type meta struct {
	Icons         []core.Icon       `json:"icons"`
	Colors        []string          `json:"colors"`
	ChartColors   map[string]string `json:"chart_colors"`
	Ranges        []rangeOption     `json:"ranges"`
	DefaultRange  report.DateRange  `json:"default_range"`
	ExportFormats []export.Format   `json:"export_formats"`
	Currency      string            `json:"currency"`
	Locale        string            `json:"locale"`
	Types         []typeOption      `json:"types"`
}

type typeOption struct {
	Code  core.TransactionType `json:"code"`
	Label string               `json:"label"`
}

// handleMeta lists the fixed vocabularies a client needs to render forms.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	ranges := make([]rangeOption, 0, len(report.DateRanges))
	for _, rng := range report.DateRanges {
		ranges = append(ranges, rangeOption{Code: rng, Label: rng.Label()})
	}

	NewJSONResponse().Data(meta{
		Icons:         core.Icons,
		Colors:        core.CategoryColors,
		ChartColors:   core.ChartColors,
		Ranges:        ranges,
		DefaultRange:  report.DefaultRange,
		ExportFormats: []export.Format{export.FormatCSV, export.FormatJSON, export.FormatXLSX},
		Currency:      s.currency,
		Locale:        s.locale,
		Types: []typeOption{
			{Code: core.Income, Label: core.Income.Label()},
			{Code: core.Expense, Label: core.Expense.Label()},
		},
	}).Write(w)
}
