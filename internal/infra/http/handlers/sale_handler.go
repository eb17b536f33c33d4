package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type SaleHandler struct {
	UpdateUC *usecase.UpdateSaleUseCase
	NoteUC   *usecase.AddNoteUseCase
	Query    *usecase.QueryUseCase
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "saleId")
	if !ok {
		return
	}

	sale, err := h.Query.GetSale(r.Context(), usecase.ActorFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "saleId")
	if !ok {
		return
	}
	var input usecase.UpdateSaleInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.UpdateUC.Execute(r.Context(), usecase.ActorFromContext(r.Context()), id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// contractTerm é obrigatório, então todo update aceito confirma pagamento.
	middleware.RecordPaymentConfirmed(string(out.Sale.PaymentType))
	if out.Archived != nil {
		middleware.RecordContractArchived()
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SaleHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "saleId")
	if !ok {
		return
	}
	var input usecase.AddNoteInput
	if !decodeJSON(w, r, &input) {
		return
	}

	note, err := h.NoteUC.Execute(r.Context(), usecase.ActorFromContext(r.Context()), entity.NoteEntitySale, id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
