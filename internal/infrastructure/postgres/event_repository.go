package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
)

// eventRow representa a linha da tabela events
type eventRow struct {
	ID                   string    `db:"id"`
	Title                string    `db:"title"`
	Venue                *string   `db:"venue"`
	Price                int       `db:"price"`
	OpensAt              time.Time `db:"opens_at"`
	ClosesAt             time.Time `db:"closes_at"`
	TotalWithDevice      int       `db:"total_with_device"`
	ReservedWithDevice   int       `db:"reserved_with_device"`
	TotalWithoutDevice   int       `db:"total_without_device"`
	ReservedWithoutDevice int      `db:"reserved_without_device"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
	Version              int       `db:"version"`
}

// toEntity converte eventRow na entidade Event
func (r *eventRow) toEntity() *event.Event {
	var venue string
	if r.Venue != nil {
		venue = *r.Venue
	}
	return &event.Event{
		ID:       r.ID,
		Title:    r.Title,
		Venue:    venue,
		Price:    r.Price,
		OpensAt:  r.OpensAt,
		ClosesAt: r.ClosesAt,
		Pools: map[event.SeatType]event.SeatPool{
			event.SeatTypeWithDevice:    {Total: r.TotalWithDevice, Reserved: r.ReservedWithDevice},
			event.SeatTypeWithoutDevice: {Total: r.TotalWithoutDevice, Reserved: r.ReservedWithoutDevice},
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

const eventColumns = `id, title, venue, price, opens_at, closes_at,
	total_with_device, reserved_with_device, total_without_device, reserved_without_device,
	created_at, updated_at, version`

// poolColumns mapeia o tipo de vaga para as colunas do contador.
// Os nomes são fixos; o tipo já foi validado contra o enum.
func poolColumns(t event.SeatType) (totalCol, reservedCol string, err error) {
	switch t {
	case event.SeatTypeWithDevice:
		return "total_with_device", "reserved_with_device", nil
	case event.SeatTypeWithoutDevice:
		return "total_without_device", "reserved_without_device", nil
	default:
		return "", "", event.ErrInvalidSeatType
	}
}

// EventRepository é a implementação PostgreSQL do catálogo de eventos
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository cria um EventRepository
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create cria um novo evento com os contadores zerados
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (title, venue, price, opens_at, closes_at,
			total_with_device, total_without_device, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var venue *string
	if e.Venue != "" {
		venue = &e.Venue
	}

	err := r.db.QueryRowContext(ctx, query,
		e.Title, venue, e.Price, e.OpensAt, e.ClosesAt,
		e.Pool(event.SeatTypeWithDevice).Total, e.Pool(event.SeatTypeWithoutDevice).Total,
		e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("falha ao criar evento: %w", err)
	}
	return nil
}

// GetByID busca um evento pelo ID
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("falha ao buscar evento: %w", err)
	}
	return row.toEntity(), nil
}

// List retorna os eventos ordenados pela abertura das inscrições
func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY opens_at DESC LIMIT $1 OFFSET $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("falha ao listar eventos: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// ListOpen retorna os eventos com inscrições abertas no instante informado
func (r *EventRepository) ListOpen(ctx context.Context, now time.Time, limit int) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE opens_at <= $1 AND closes_at >= $1
		ORDER BY closes_at LIMIT $2`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, now, limit); err != nil {
		return nil, fmt.Errorf("falha ao listar eventos abertos: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// Update atualiza os metadados do evento (lock otimista).
// Os contadores de reserva nunca são escritos aqui; o novo total só é aceito
// se não ficar abaixo das reservas atuais.
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET title = $1, venue = $2, price = $3, opens_at = $4, closes_at = $5,
		    total_with_device = $6, total_without_device = $7,
		    updated_at = $8, version = version + 1
		WHERE id = $9 AND version = $10
		  AND reserved_with_device <= $6 AND reserved_without_device <= $7
	`

	var venue *string
	if e.Venue != "" {
		venue = &e.Venue
	}

	result, err := r.db.ExecContext(ctx, query,
		e.Title, venue, e.Price, e.OpensAt, e.ClosesAt,
		e.Pool(event.SeatTypeWithDevice).Total, e.Pool(event.SeatTypeWithoutDevice).Total,
		time.Now(), e.ID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("falha ao atualizar evento: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("falha ao verificar atualização do evento: %w", err)
	}
	if rowsAffected == 0 {
		return r.explainUpdateFailure(ctx, e)
	}

	e.Version++
	return nil
}

// explainUpdateFailure distingue por que o UPDATE condicional não afetou linhas
func (r *EventRepository) explainUpdateFailure(ctx context.Context, e *event.Event) error {
	current, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if current.Version != e.Version {
		return event.ErrOptimisticLockConflict
	}
	return event.ErrSeatTotalBelowReserved
}

// Delete remove um evento que não possui inscrições
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM events
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1)
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("falha ao remover evento: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("falha ao verificar remoção do evento: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return event.ErrEventHasRegistrations
	}
	return nil
}

// TryReserveSeat incrementa o contador do tipo em um único UPDATE condicional.
// A cláusula WHERE garante que verificação e incremento sejam um passo só:
// dois chamadores concorrentes disputando a última vaga nunca vencem ambos.
func (r *EventRepository) TryReserveSeat(ctx context.Context, eventID string, seatType event.SeatType) error {
	totalCol, reservedCol, err := poolColumns(seatType)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE events
		SET %[1]s = %[1]s + 1, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND %[1]s < %[2]s
	`, reservedCol, totalCol)

	result, err := r.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("falha ao reservar vaga: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("falha ao verificar reserva de vaga: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, eventID); err != nil {
			return err
		}
		return event.ErrNoSeatsAvailable
	}
	return nil
}

// ReleaseSeat decrementa o contador do tipo, nunca abaixo de zero
func (r *EventRepository) ReleaseSeat(ctx context.Context, eventID string, seatType event.SeatType) error {
	_, reservedCol, err := poolColumns(seatType)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE events
		SET %[1]s = %[1]s - 1, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND %[1]s > 0
	`, reservedCol)

	result, err := r.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return fmt.Errorf("falha ao liberar vaga: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("falha ao verificar liberação de vaga: %w", err)
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, eventID); err != nil {
			return err
		}
		return event.ErrNoReservedSeats
	}
	return nil
}

var _ event.Repository = (*EventRepository)(nil)
