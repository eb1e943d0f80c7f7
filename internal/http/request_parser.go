// Package http serves the JSON API.
//
// This file implements request decoding: JSON bodies into ledger inputs and
// query strings into filters. Malformed requests become *requestError so
// handlers can answer 400; well-formed but invalid values keep the domain
// sentinel errors and are answered with 422.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pengluaran/internal/core"
	"pengluaran/internal/ledger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// requestError marks input that could not be read at all.
type requestError struct {
	msg string
	err error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *requestError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &requestError{msg: msg, err: err}
}

func isBadRequest(err error) bool {
	var re *requestError
	return errors.As(err, &re)
}

// decodeJSON reads one JSON object from r's body into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return badRequest("request body too large", nil)
		case errors.Is(err, io.EOF):
			return badRequest("request body is empty", nil)
		default:
			return badRequest("invalid JSON body", err)
		}
	}
	if dec.More() {
		return badRequest("request body must hold a single JSON object", nil)
	}
	return nil
}

// flexString accepts a JSON string or number, so amounts can be sent either
// as 12.5 or "12,5".
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = flexString(n.String())
	return nil
}

type transactionRequest struct {
	Type        *string     `json:"type"`
	Amount      *flexString `json:"amount"`
	Date        *string     `json:"date"`
	CategoryID  *string     `json:"category_id"`
	Description *string     `json:"description"`
}

// toInput requires type, amount and date.
func (req transactionRequest) toInput() (ledger.TransactionInput, error) {
	if req.Type == nil || req.Amount == nil || req.Date == nil {
		return ledger.TransactionInput{}, badRequest("type, amount and date are required", nil)
	}
	p, err := req.toPatch()
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	in := ledger.TransactionInput{Type: *p.Type, Amount: *p.Amount, Date: *p.Date}
	if p.CategoryID != nil {
		in.CategoryID = *p.CategoryID
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	return in, nil
}

// toPatch converts the fields that were sent.
func (req transactionRequest) toPatch() (ledger.TransactionPatch, error) {
	var p ledger.TransactionPatch
	if req.Type != nil {
		t, err := core.ParseTransactionType(*req.Type)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if req.Amount != nil {
		a, err := core.ParseAmount(string(*req.Amount))
		if err != nil {
			return p, err
		}
		p.Amount = &a
	}
	if req.Date != nil {
		d, err := core.ParseDate(strings.TrimSpace(*req.Date))
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if req.CategoryID != nil {
		id := strings.TrimSpace(*req.CategoryID)
		p.CategoryID = &id
	}
	if req.Description != nil {
		desc := sanitizeInput(*req.Description)
		p.Description = &desc
	}
	return p, nil
}

type categoryRequest struct {
	Name  *string `json:"name"`
	Type  *string `json:"type"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// toInput requires name and type; icon and color fall back to defaults.
func (req categoryRequest) toInput() (ledger.CategoryInput, error) {
	if req.Name == nil || req.Type == nil {
		return ledger.CategoryInput{}, badRequest("name and type are required", nil)
	}
	p, err := req.toPatch()
	if err != nil {
		return ledger.CategoryInput{}, err
	}
	in := ledger.CategoryInput{Name: *p.Name, Type: *p.Type}
	if p.Icon != nil {
		in.Icon = *p.Icon
	}
	if p.Color != nil {
		in.Color = *p.Color
	}
	return in, nil
}

func (req categoryRequest) toPatch() (ledger.CategoryPatch, error) {
	var p ledger.CategoryPatch
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		p.Name = &name
	}
	if req.Type != nil {
		t, err := core.ParseTransactionType(*req.Type)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if req.Icon != nil {
		icon := core.Icon(strings.TrimSpace(*req.Icon))
		p.Icon = &icon
	}
	if req.Color != nil {
		color := strings.TrimSpace(*req.Color)
		p.Color = &color
	}
	return p, nil
}

// parseFilter reads from, to and type from the query string.
func parseFilter(q url.Values) (ledger.Filter, error) {
	var f ledger.Filter
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, badRequest("invalid from date", err)
		}
		f.From = d
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, badRequest("invalid to date", err)
		}
		f.To = d
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, badRequest("to must not be before from", nil)
	}
	t, err := parseTypeParam(q)
	if err != nil {
		return f, err
	}
	f.Type = t
	f.CategoryID = strings.TrimSpace(q.Get("category_id"))
	return f, nil
}

// parseTypeParam returns "" when type is absent.
func parseTypeParam(q url.Values) (core.TransactionType, error) {
	v := strings.TrimSpace(q.Get("type"))
	if v == "" {
		return "", nil
	}
	t, err := core.ParseTransactionType(v)
	if err != nil {
		return "", badRequest("invalid type", err)
	}
	return t, nil
}

// parseLimit reads a positive limit, or returns 0 when absent.
func parseLimit(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("limit"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, badRequest("limit must be a positive integer", nil)
	}
	return n, nil
}
