package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// SaleRepository grava a venda numa linha só. O ledger e o histórico de contratos
// ficam em colunas JSONB porque são sempre lidos e gravados junto com a venda.
type SaleRepository struct {
	DB    *sql.DB
	Notes *NoteRepository
}

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{DB: db, Notes: NewNoteRepository(db)}
}

func (r *SaleRepository) Create(ctx context.Context, s *entity.Sale) error {
	partials, previous, err := marshalLedger(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sales (id, lead_id, name, email, phone, business_name, business_address,
			billing_address, total_amount, payment_type, contract_term, payment_method,
			card, exp, cvv, payment_date, contract_end_date, partial_payments,
			previous_contracts, status, version, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, 1, $21, $22, $23)
	`

	_, err = conn(ctx, r.DB).ExecContext(ctx, query,
		s.ID,
		s.LeadID,
		s.Name,
		nullString(s.Email),
		nullString(s.Phone),
		nullString(s.BusinessName),
		nullString(s.BusinessAddress),
		nullString(s.BillingAddress),
		decimal.NewFromFloat(s.TotalAmount),
		nullString(string(s.PaymentType)),
		s.ContractTerm,
		nullString(string(s.PaymentMethod)),
		nullString(s.Card),
		nullString(s.Exp),
		nullString(s.CVV),
		s.PaymentDate,
		s.ContractEndDate,
		partials,
		previous,
		s.Status,
		s.CreatedBy,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return mapError(err)
	}
	s.Version = 1
	return nil
}

const saleColumns = `id, lead_id, name, COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(business_name, ''), COALESCE(business_address, ''), COALESCE(billing_address, ''),
	total_amount, payment_type, contract_term, payment_method, COALESCE(card, ''),
	COALESCE(exp, ''), COALESCE(cvv, ''), payment_date, contract_end_date, partial_payments,
	previous_contracts, status, version, created_by, created_at, updated_at`

func (r *SaleRepository) FindByID(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.find(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// FindByIDForUpdate trava a linha da venda até o fim da transação.
func (r *SaleRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.find(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepository) FindByLeadID(ctx context.Context, leadID int64) (*entity.Sale, error) {
	return r.find(ctx, `SELECT `+saleColumns+` FROM sales WHERE lead_id = $1`, leadID)
}

// rowScanner cobre *sql.Row e *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var (
		s                   entity.Sale
		total               decimal.Decimal
		paymentType, method sql.NullString
		partials, previous  []byte
	)
	err := row.Scan(
		&s.ID,
		&s.LeadID,
		&s.Name,
		&s.Email,
		&s.Phone,
		&s.BusinessName,
		&s.BusinessAddress,
		&s.BillingAddress,
		&total,
		&paymentType,
		&s.ContractTerm,
		&method,
		&s.Card,
		&s.Exp,
		&s.CVV,
		&s.PaymentDate,
		&s.ContractEndDate,
		&partials,
		&previous,
		&s.Status,
		&s.Version,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.TotalAmount = total.InexactFloat64()
	s.PaymentType = entity.PaymentType(paymentType.String)
	s.PaymentMethod = entity.PaymentMethod(method.String)

	s.PartialPayments = []entity.PartialPayment{}
	if err := json.Unmarshal(partials, &s.PartialPayments); err != nil {
		return nil, fmt.Errorf("partial_payments inválido na venda %d: %w", s.ID, err)
	}
	s.PreviousContracts = []entity.ArchivedContract{}
	if err := json.Unmarshal(previous, &s.PreviousContracts); err != nil {
		return nil, fmt.Errorf("previous_contracts inválido na venda %d: %w", s.ID, err)
	}
	return &s, nil
}

func (r *SaleRepository) find(ctx context.Context, query string, arg int64) (*entity.Sale, error) {
	s, err := scanSale(conn(ctx, r.DB).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrSaleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar venda: %w", err)
	}

	s.Notes, err = r.Notes.List(ctx, entity.NoteEntitySale, s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListContractsEndingBetween devolve as vendas com fim de contrato em [from, to).
func (r *SaleRepository) ListContractsEndingBetween(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM sales
		WHERE contract_end_date >= $1 AND contract_end_date < $2
		ORDER BY id`

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar contratos a vencer: %w", err)
	}

	var sales []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("erro ao ler venda: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Notas só depois de fechar o cursor: dentro de uma transação a conexão é uma só.
	for _, s := range sales {
		if s.Notes, err = r.Notes.List(ctx, entity.NoteEntitySale, s.ID); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

// Update só grava se a versão não mudou desde a leitura e avança a versão.
func (r *SaleRepository) Update(ctx context.Context, s *entity.Sale) error {
	partials, previous, err := marshalLedger(s)
	if err != nil {
		return err
	}

	query := `
		UPDATE sales SET
			name = $3,
			email = $4,
			phone = $5,
			business_name = $6,
			business_address = $7,
			billing_address = $8,
			total_amount = $9,
			payment_type = $10,
			contract_term = $11,
			payment_method = $12,
			card = $13,
			exp = $14,
			cvv = $15,
			payment_date = $16,
			contract_end_date = $17,
			partial_payments = $18,
			previous_contracts = $19,
			status = $20,
			updated_at = $21,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	var version int
	err = conn(ctx, r.DB).QueryRowContext(ctx, query,
		s.ID,
		s.Version,
		s.Name,
		nullString(s.Email),
		nullString(s.Phone),
		nullString(s.BusinessName),
		nullString(s.BusinessAddress),
		nullString(s.BillingAddress),
		decimal.NewFromFloat(s.TotalAmount),
		nullString(string(s.PaymentType)),
		s.ContractTerm,
		nullString(string(s.PaymentMethod)),
		nullString(s.Card),
		nullString(s.Exp),
		nullString(s.CVV),
		s.PaymentDate,
		s.ContractEndDate,
		partials,
		previous,
		s.Status,
		s.UpdatedAt,
	).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return entity.ErrSaleNotFound
		}
		return entity.ErrVersionConflict
	}
	if err != nil {
		return mapError(err)
	}

	s.Version = version
	return nil
}

func marshalLedger(s *entity.Sale) (partials, previous []byte, err error) {
	pp := s.PartialPayments
	if pp == nil {
		pp = []entity.PartialPayment{}
	}
	if partials, err = json.Marshal(pp); err != nil {
		return nil, nil, fmt.Errorf("erro ao serializar partial_payments: %w", err)
	}

	pc := s.PreviousContracts
	if pc == nil {
		pc = []entity.ArchivedContract{}
	}
	if previous, err = json.Marshal(pc); err != nil {
		return nil, nil, fmt.Errorf("erro ao serializar previous_contracts: %w", err)
	}
	return partials, previous, nil
}
