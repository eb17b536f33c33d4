package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️ Falha ao escrever resposta: %v", err)
	}
}

var statusByCode = map[string]int{
	usecase.CodeInvalidInput:     http.StatusBadRequest,
	usecase.CodeNoChange:         http.StatusConflict,
	usecase.CodeInvalidOperation: http.StatusUnprocessableEntity,
	usecase.CodeUnauthorized:     http.StatusUnauthorized,
	usecase.CodeForbidden:        http.StatusForbidden,
	usecase.CodeNotFound:         http.StatusNotFound,
	usecase.CodeConflict:         http.StatusConflict,
}

// writeError traduz o erro do use case. Erros técnicos não vazam detalhes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Message})
		return
	}

	code := usecase.ErrorCode(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: code, Message: "internal error"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   usecase.CodeInvalidInput,
			Message: "invalid JSON: " + err.Error(),
		})
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   usecase.CodeInvalidInput,
			Message: fmt.Sprintf("%s must be a positive integer", name),
		})
		return 0, false
	}
	return id, true
}
