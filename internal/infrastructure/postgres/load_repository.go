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

var _ repository.LoadRepository = (*LoadRepo)(nil)

const loadColumns = `id, load_number, shipping_date, status, total_pallets, release_number, release_document,
	notes, created_at, updated_at`

// LoadRepo implementación de LoadRepository sobre PostgreSQL.
type LoadRepo struct {
	q Querier
}

// NewLoadRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLoadRepository(q Querier) *LoadRepo {
	return &LoadRepo{q: q}
}

func scanLoad(row scanner) (*entity.ShippingLoad, error) {
	var l entity.ShippingLoad
	err := row.Scan(&l.ID, &l.LoadNumber, &l.ShippingDate, &l.Status, &l.TotalPallets, &l.ReleaseNumber,
		&l.ReleaseDocument, &l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una carga; número duplicado => *domain.ConflictError.
func (r *LoadRepo) Create(ctx context.Context, l *entity.ShippingLoad) error {
	query := `
		INSERT INTO shipping_loads (` + loadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, l.ID, l.LoadNumber, l.ShippingDate, l.Status, l.TotalPallets,
		l.ReleaseNumber, l.ReleaseDocument, l.Notes, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("carga", l.LoadNumber)
		}
		return fmt.Errorf("insert load: %w", err)
	}
	return nil
}

// GetByID obtiene una carga.
func (r *LoadRepo) GetByID(ctx context.Context, id string) (*entity.ShippingLoad, error) {
	l, err := scanLoad(r.q.QueryRow(ctx, `SELECT `+loadColumns+` FROM shipping_loads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get load: %w", err)
	}
	return l, nil
}

// GetForUpdate obtiene la carga y bloquea su fila: serializa las mutaciones sobre la misma carga.
func (r *LoadRepo) GetForUpdate(ctx context.Context, id string) (*entity.ShippingLoad, error) {
	l, err := scanLoad(r.q.QueryRow(ctx, `SELECT `+loadColumns+` FROM shipping_loads WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get load for update: %w", err)
	}
	return l, nil
}

// List cargas, más recientes primero; status vacío no filtra.
func (r *LoadRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.ShippingLoad, error) {
	query := `
		SELECT ` + loadColumns + `
		FROM shipping_loads
		WHERE ($1 = '' OR status = $1)
		ORDER BY shipping_date DESC, load_number
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}
	defer rows.Close()

	var list []*entity.ShippingLoad
	for rows.Next() {
		l, err := scanLoad(rows)
		if err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la carga.
func (r *LoadRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE shipping_loads SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update load status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("carga", id)
	}
	return nil
}

// UpdateRelease guarda número y documento de liberación de la carga.
func (r *LoadRepo) UpdateRelease(ctx context.Context, id, releaseNumber, releaseDocument string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE shipping_loads SET release_number = $2, release_document = $3, updated_at = now()
		WHERE id = $1`, id, releaseNumber, releaseDocument)
	if err != nil {
		return fmt.Errorf("update load release: %w", err)
	}
	return nil
}

// RecountPallets recalcula total_pallets contando membresías; nunca incrementa en sitio.
func (r *LoadRepo) RecountPallets(ctx context.Context, id string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		UPDATE shipping_loads
		SET total_pallets = (SELECT count(*) FROM load_memberships WHERE load_id = $1), updated_at = now()
		WHERE id = $1
		RETURNING total_pallets`, id).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NewNotFoundError("carga", id)
		}
		return 0, fmt.Errorf("recount pallets: %w", err)
	}
	return total, nil
}

// Delete borra la carga (membresías y solicitudes caen en cascada).
func (r *LoadRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM shipping_loads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete load: %w", err)
	}
	return nil
}
