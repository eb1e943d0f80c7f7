package http

import (
	"net/http"

	"pengluaran/internal/core"
	applog "pengluaran/internal/log"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	t, err := parseTypeParam(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	cats, err := s.categories.List(r.Context(), userIDFrom(r.Context()), t)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewJSONResponse().Data(cats).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	cat, err := s.categories.Create(r.Context(), userIDFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(cat).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	p, err := req.toPatch()
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}

	cat, err := s.categories.Update(r.Context(), userIDFrom(r.Context()), pathID(r), p)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Data(cat).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), userIDFrom(r.Context()), pathID(r)); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}

func (s *Server) handleCategoryUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := s.categories.Usage(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	if usage == nil {
		usage = []core.CategoryUsage{}
	}
	NewJSONResponse().Data(usage).Write(w)
}
