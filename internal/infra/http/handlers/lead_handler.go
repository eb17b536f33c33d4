package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadHandler struct {
	CreateUC        *usecase.CreateLeadUseCase
	UpdateUC        *usecase.UpdateLeadUseCase
	DispositionUC   *usecase.SetDispositionUseCase
	NoteUC          *usecase.AddNoteUseCase
	ImportantDateUC *usecase.AddImportantDateUseCase
	Query           *usecase.QueryUseCase
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.CreateUC.Execute(r.Context(), usecase.ActorFromContext(r.Context()), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "leadId")
	if !ok {
		return
	}

	lead, err := h.Query.GetLead(r.Context(), usecase.ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "leadId")
	if !ok {
		return
	}
	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.UpdateUC.Execute(r.Context(), usecase.ActorFromContext(r.Context()), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) SetDisposition(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "leadId")
	if !ok {
		return
	}
	var input usecase.SetDispositionInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.DispositionUC.Execute(r.Context(), usecase.ActorFromContext(r.Context()), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.RecordDispositionChange(string(out.Lead.Disposition))
	if out.SaleCreated {
		middleware.RecordSaleCreated()
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "leadId")
	if !ok {
		return
	}
	var input usecase.AddNoteInput
	if !decodeJSON(w, r, &input) {
		return
	}

	note, err := h.NoteUC.Execute(r.Context(), usecase.ActorFromContext(r.Context()), entity.NoteEntityLead, id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *LeadHandler) AddImportantDate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "leadId")
	if !ok {
		return
	}
	var input usecase.AddImportantDateInput
	if !decodeJSON(w, r, &input) {
		return
	}

	lead, err := h.ImportantDateUC.Execute(r.Context(), usecase.ActorFromContext(r.Context()), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "leadId")
	if !ok {
		return
	}

	sale, err := h.Query.GetSaleByLead(r.Context(), usecase.ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}
