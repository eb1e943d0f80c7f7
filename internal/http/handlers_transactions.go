package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pengluaran/internal/core"
	applog "pengluaran/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := parseFilter(q)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	limit, err := parseLimit(q)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	txs, err := s.transactions.List(r.Context(), userIDFrom(r.Context()), f)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewJSONResponse().Data(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), userIDFrom(r.Context()), pathID(r))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Data(tx).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	tx, err := s.transactions.Create(r.Context(), userIDFrom(r.Context()), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Data(tx).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	p, err := req.toPatch()
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}

	tx, err := s.transactions.Update(r.Context(), userIDFrom(r.Context()), pathID(r), p)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	NewJSONResponse().Data(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), userIDFrom(r.Context()), pathID(r)); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().NoContent().Write(w)
}

func pathID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
