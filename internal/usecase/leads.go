package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CreateLeadUseCase struct {
	Tx       TxManager
	Leads    LeadRepositoryInterface
	Notes    NoteRepositoryInterface
	Counters CounterRepositoryInterface
	Clock    Clock
}

func NewCreateLeadUseCase(tx TxManager, leads LeadRepositoryInterface, notes NoteRepositoryInterface, counters CounterRepositoryInterface) *CreateLeadUseCase {
	return &CreateLeadUseCase{Tx: tx, Leads: leads, Notes: notes, Counters: counters}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, actor *Actor, input CreateLeadInput) (*entity.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	now := uc.Clock.now()
	var lead *entity.Lead

	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		id, err := uc.Counters.Next(ctx, entity.SequenceLead)
		if err != nil {
			return fmt.Errorf("erro ao gerar leadId: %w", err)
		}

		lead = entity.NewLead(id, input.Name, input.Email, input.Phone, input.BusinessName, input.BusinessAddress, actor.Ref(), now)
		if err := uc.Leads.Create(ctx, lead); err != nil {
			return err
		}
		return appendLeadNote(ctx, uc.Notes, lead, fmt.Sprintf("Lead created by %s", actor.DisplayName()), actor.Ref(), now)
	})
	if err != nil {
		return nil, translateError(err)
	}
	return lead, nil
}

// UpdateLeadUseCase edita os campos cadastrais do lead. Os handlers registrados
// recebem as mudanças dentro da mesma transação.
type UpdateLeadUseCase struct {
	Tx       TxManager
	Leads    LeadRepositoryInterface
	Notes    NoteRepositoryInterface
	Handlers []LeadEventHandler
	Clock    Clock
}

func NewUpdateLeadUseCase(tx TxManager, leads LeadRepositoryInterface, notes NoteRepositoryInterface, handlers ...LeadEventHandler) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{Tx: tx, Leads: leads, Notes: notes, Handlers: handlers}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, actor *Actor, leadID int64, input UpdateLeadInput) (*entity.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if input.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*input.Email))
		input.Email = &e
	}
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	now := uc.Clock.now()
	var lead *entity.Lead

	err := uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		lead, err = uc.Leads.FindByIDForUpdate(ctx, leadID)
		if err != nil {
			return err
		}

		changes := applyLeadPatch(lead, input)
		if len(changes) == 0 {
			return &DomainError{Code: CodeNoChange, Message: "no lead fields changed"}
		}

		lead.UpdatedAt = now
		if err := uc.Leads.Update(ctx, lead); err != nil {
			return err
		}
		for _, c := range changes {
			text := fmt.Sprintf("Updated %s from %q to %q", c.Field, c.Old, c.New)
			if err := appendLeadNote(ctx, uc.Notes, lead, text, actor.Ref(), now); err != nil {
				return err
			}
		}

		evt := entity.LeadFieldsChanged{LeadID: lead.ID, Changes: changes}
		for _, h := range uc.Handlers {
			if err := h.HandleLeadFieldsChanged(ctx, actor, evt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return lead, nil
}

func applyLeadPatch(lead *entity.Lead, in UpdateLeadInput) []entity.FieldChange {
	var changes []entity.FieldChange
	set := func(field string, dst *string, v *string) {
		if v == nil || *dst == *v {
			return
		}
		changes = append(changes, entity.FieldChange{Field: field, Old: *dst, New: *v})
		*dst = *v
	}
	set("name", &lead.Name, in.Name)
	set("email", &lead.Email, in.Email)
	set("phone", &lead.Phone, in.Phone)
	set("businessName", &lead.BusinessName, in.BusinessName)
	set("businessAddress", &lead.BusinessAddress, in.BusinessAddress)
	return changes
}

type AddImportantDateUseCase struct {
	Tx    TxManager
	Leads LeadRepositoryInterface
	Notes NoteRepositoryInterface
	Clock Clock
}

func NewAddImportantDateUseCase(tx TxManager, leads LeadRepositoryInterface, notes NoteRepositoryInterface) *AddImportantDateUseCase {
	return &AddImportantDateUseCase{Tx: tx, Leads: leads, Notes: notes}
}

// Execute marca a data no lead. Marcar uma data repetida não altera nada.
func (uc *AddImportantDateUseCase) Execute(ctx context.Context, actor *Actor, leadID int64, input AddImportantDateInput) (*entity.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	d, err := parseDate(input.Date)
	if err != nil {
		return nil, invalidInput("date: " + err.Error())
	}
	date := d.Format("2006-01-02")

	now := uc.Clock.now()
	var lead *entity.Lead

	err = uc.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		lead, err = uc.Leads.FindByIDForUpdate(ctx, leadID)
		if err != nil {
			return err
		}
		if !lead.AddImportantDate(date) {
			return nil
		}

		lead.UpdatedAt = now
		if err := uc.Leads.Update(ctx, lead); err != nil {
			return err
		}
		return appendLeadNote(ctx, uc.Notes, lead, "Important date added: "+date, actor.Ref(), now)
	})
	if err != nil {
		return nil, translateError(err)
	}
	return lead, nil
}
