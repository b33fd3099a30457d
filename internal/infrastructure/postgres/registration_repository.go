package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
)

type registrationRow struct {
	EventID      string    `db:"event_id"`
	UserID       string    `db:"user_id"`
	SeatType     string    `db:"seat_type"`
	Paid         bool      `db:"paid"`
	Present      bool      `db:"present"`
	ProofPath    *string   `db:"proof_path"`
	RegisteredAt time.Time `db:"registered_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *registrationRow) toEntity() *registration.Registration {
	return &registration.Registration{
		EventID:      r.EventID,
		UserID:       r.UserID,
		SeatType:     event.SeatType(r.SeatType),
		Paid:         r.Paid,
		Present:      r.Present,
		ProofPath:    r.ProofPath,
		RegisteredAt: r.RegisteredAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const registrationColumns = `event_id, user_id, seat_type, paid, present, proof_path, registered_at, updated_at`

// RegistrationRepository é a implementação PostgreSQL do livro de inscrições.
// A unicidade do par (event_id, user_id) é a chave primária da tabela; a
// corrida entre verificar e inserir é fechada pelo próprio banco.
type RegistrationRepository struct{ db *sqlx.DB }

func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *registration.Registration) error {
	query := `INSERT INTO registrations (` + registrationColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		reg.EventID, reg.UserID, string(reg.SeatType), reg.Paid, reg.Present,
		reg.ProofPath, reg.RegisteredAt, reg.UpdatedAt,
	)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return registration.ErrAlreadyRegistered
			case "23503":
				return event.ErrEventNotFound
			}
		}
		return fmt.Errorf("falha ao criar inscrição: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, eventID, userID); err != nil {
		return false, fmt.Errorf("falha ao verificar inscrição: %w", err)
	}
	return exists, nil
}

func (r *RegistrationRepository) Get(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	var row registrationRow
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND user_id = $2`
	if err := r.db.GetContext(ctx, &row, query, eventID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("falha ao buscar inscrição: %w", err)
	}
	return row.toEntity(), nil
}

// MarkPaid confirma o pagamento em um único UPDATE; nenhuma outra coluna
// é regravada, então uma presença concorrente nunca é desfeita.
func (r *RegistrationRepository) MarkPaid(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	query := `UPDATE registrations SET paid = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 RETURNING ` + registrationColumns
	var row registrationRow
	if err := r.db.GetContext(ctx, &row, query, eventID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("falha ao confirmar pagamento: %w", err)
	}
	return row.toEntity(), nil
}

// MarkPresent registra a presença com a exigência de pagamento dentro do
// próprio WHERE: a decisão e a escrita são o mesmo comando, sem janela
// para um pagamento lido antes e regravado depois.
func (r *RegistrationRepository) MarkPresent(ctx context.Context, eventID, userID string, requirePaid bool) (*registration.Registration, error) {
	query := `UPDATE registrations SET present = TRUE, updated_at = NOW()
		WHERE event_id = $1 AND user_id = $2 AND present = FALSE AND (paid OR NOT $3)
		RETURNING ` + registrationColumns
	var row registrationRow
	err := r.db.GetContext(ctx, &row, query, eventID, userID, requirePaid)
	if err == nil {
		return row.toEntity(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("falha ao registrar presença: %w", err)
	}

	// Zero linhas: distingue ausência, presença repetida e falta de pagamento
	cur, getErr := r.Get(ctx, eventID, userID)
	if getErr != nil {
		return nil, getErr
	}
	if cur.Present {
		return nil, registration.ErrAlreadyPresent
	}
	if requirePaid && !cur.Paid {
		return nil, registration.ErrNotPaid
	}
	return nil, fmt.Errorf("falha ao registrar presença: %w", err)
}

// ChangeSeatType troca o tipo de vaga e retorna o anterior no mesmo comando.
// O FOR UPDATE impede que duas trocas concorrentes leiam o mesmo tipo antigo;
// inscrições com presença registrada não entram na subconsulta.
func (r *RegistrationRepository) ChangeSeatType(ctx context.Context, eventID, userID string, newType event.SeatType) (event.SeatType, error) {
	query := `
		UPDATE registrations r
		SET seat_type = $3, updated_at = NOW()
		FROM (
			SELECT seat_type AS prev FROM registrations
			WHERE event_id = $1 AND user_id = $2 AND present = FALSE
			FOR UPDATE
		) old
		WHERE r.event_id = $1 AND r.user_id = $2
		RETURNING old.prev
	`
	var prev string
	if err := r.db.QueryRowContext(ctx, query, eventID, userID, string(newType)).Scan(&prev); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("falha ao trocar tipo de vaga: %w", err)
		}
		cur, getErr := r.Get(ctx, eventID, userID)
		if getErr != nil {
			return "", getErr
		}
		if cur.Present {
			return "", registration.ErrRegistrationConcluded
		}
		return "", fmt.Errorf("falha ao trocar tipo de vaga: %w", err)
	}
	return event.SeatType(prev), nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	query := `DELETE FROM registrations WHERE event_id = $1 AND user_id = $2 AND present = FALSE
		RETURNING ` + registrationColumns
	var row registrationRow
	if err := r.db.GetContext(ctx, &row, query, eventID, userID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("falha ao remover inscrição: %w", err)
		}
		cur, getErr := r.Get(ctx, eventID, userID)
		if getErr != nil {
			return nil, getErr
		}
		if cur.Present {
			return nil, registration.ErrRegistrationConcluded
		}
		return nil, registration.ErrRegistrationNotFound
	}
	return row.toEntity(), nil
}

func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	var rows []registrationRow
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 ORDER BY registered_at`
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("falha ao listar inscrições: %w", err)
	}
	result := make([]*registration.Registration, len(rows))
	for i, row := range rows {
		result[i] = row.toEntity()
	}
	return result, nil
}

func (r *RegistrationRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID); err != nil {
		return 0, fmt.Errorf("falha ao contar inscrições: %w", err)
	}
	return count, nil
}

var _ registration.Repository = (*RegistrationRepository)(nil)
