package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

var _ repository.ReleaseRequestRepository = (*ReleaseRequestRepo)(nil)

const releaseColumns = `id, load_id, requested_by, status, requested_at, responded_at, release_number,
	release_document, customer_notes`

// ReleaseRequestRepo implementación de ReleaseRequestRepository sobre PostgreSQL.
type ReleaseRequestRepo struct {
	q Querier
}

// NewReleaseRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReleaseRequestRepository(q Querier) *ReleaseRequestRepo {
	return &ReleaseRequestRepo{q: q}
}

// Create persiste una solicitud de liberación.
func (r *ReleaseRequestRepo) Create(ctx context.Context, rr *entity.ReleaseRequest) error {
	query := `
		INSERT INTO release_requests (` + releaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, rr.ID, rr.LoadID, rr.RequestedBy, rr.Status, rr.RequestedAt, rr.RespondedAt,
		rr.ReleaseNumber, rr.ReleaseDocument, rr.CustomerNotes)
	if err != nil {
		return fmt.Errorf("insert release request: %w", err)
	}
	return nil
}

// GetActiveByLoad la solicitud más reciente de la carga.
func (r *ReleaseRequestRepo) GetActiveByLoad(ctx context.Context, loadID string) (*entity.ReleaseRequest, error) {
	query := `
		SELECT ` + releaseColumns + `
		FROM release_requests
		WHERE load_id = $1
		ORDER BY requested_at DESC
		LIMIT 1`
	var rr entity.ReleaseRequest
	err := r.q.QueryRow(ctx, query, loadID).Scan(&rr.ID, &rr.LoadID, &rr.RequestedBy, &rr.Status, &rr.RequestedAt,
		&rr.RespondedAt, &rr.ReleaseNumber, &rr.ReleaseDocument, &rr.CustomerNotes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active release request: %w", err)
	}
	return &rr, nil
}

// Update persiste estado, respuesta y datos de liberación.
func (r *ReleaseRequestRepo) Update(ctx context.Context, rr *entity.ReleaseRequest) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE release_requests
		SET status = $2, responded_at = $3, release_number = $4, release_document = $5, customer_notes = $6
		WHERE id = $1`, rr.ID, rr.Status, rr.RespondedAt, rr.ReleaseNumber, rr.ReleaseDocument, rr.CustomerNotes)
	if err != nil {
		return fmt.Errorf("update release request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("solicitud de liberación", rr.ID)
	}
	return nil
}

// DeleteByLoad borra las solicitudes de la carga.
func (r *ReleaseRequestRepo) DeleteByLoad(ctx context.Context, loadID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM release_requests WHERE load_id = $1`, loadID)
	if err != nil {
		return 0, fmt.Errorf("delete release requests: %w", err)
	}
	return tag.RowsAffected(), nil
}
