package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

const (
	membershipColumns = `id, load_id, pallet_id, quantity, destination, is_on_hold, release_number,
	release_document, delivery_date, created_at, updated_at`

	palletUniqueConstraint = "load_memberships_pallet_id_key"
)

// MembershipRepo implementación de MembershipRepository sobre PostgreSQL.
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

func scanMembership(row scanner) (*entity.LoadMembership, error) {
	var m entity.LoadMembership
	err := row.Scan(&m.ID, &m.LoadID, &m.PalletID, &m.Quantity, &m.Destination, &m.IsOnHold,
		&m.ReleaseNumber, &m.ReleaseDocument, &m.DeliveryDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMemberships(rows pgx.Rows) ([]*entity.LoadMembership, error) {
	defer rows.Close()
	var list []*entity.LoadMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Create inserta la membresía. UNIQUE(pallet_id) decide la carrera entre peticiones concurrentes.
func (r *MembershipRepo) Create(ctx context.Context, m *entity.LoadMembership) error {
	query := `
		INSERT INTO load_memberships (` + membershipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, m.ID, m.LoadID, m.PalletID, m.Quantity, m.Destination, m.IsOnHold,
		m.ReleaseNumber, m.ReleaseDocument, m.DeliveryDate, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) && violatedConstraint(err) == palletUniqueConstraint {
			return domain.NewAlreadyAssignedError(m.PalletID)
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

// GetByID obtiene una membresía.
func (r *MembershipRepo) GetByID(ctx context.Context, id string) (*entity.LoadMembership, error) {
	m, err := scanMembership(r.q.QueryRow(ctx, `SELECT `+membershipColumns+` FROM load_memberships WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// ListByIDs membresías existentes entre ids (las inexistentes se omiten).
func (r *MembershipRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.LoadMembership, error) {
	rows, err := r.q.Query(ctx, `SELECT `+membershipColumns+` FROM load_memberships WHERE id = ANY($1) ORDER BY pallet_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list memberships by ids: %w", err)
	}
	return collectMemberships(rows)
}

// ExistsForPallet indica si el pallet ya pertenece a alguna carga.
func (r *MembershipRepo) ExistsForPallet(ctx context.Context, palletID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM load_memberships WHERE pallet_id = $1)`, palletID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("membership exists: %w", err)
	}
	return exists, nil
}

// ListByLoad membresías de la carga ordenadas por pallet.
func (r *MembershipRepo) ListByLoad(ctx context.Context, loadID string) ([]*entity.LoadMembership, error) {
	rows, err := r.q.Query(ctx, `SELECT `+membershipColumns+` FROM load_memberships WHERE load_id = $1 ORDER BY pallet_id`, loadID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return collectMemberships(rows)
}

// ListDetailedByLoad membresías con los atributos del pallet resueltos.
func (r *MembershipRepo) ListDetailedByLoad(ctx context.Context, loadID string) ([]*entity.MembershipDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM load_memberships m
		JOIN pallets p ON p.id = m.pallet_id
		WHERE m.load_id = $1
		ORDER BY m.pallet_id`, prefixed("m", membershipColumns), prefixed("p", palletColumns))
	rows, err := r.q.Query(ctx, query, loadID)
	if err != nil {
		return nil, fmt.Errorf("list membership details: %w", err)
	}
	defer rows.Close()

	var list []*entity.MembershipDetail
	for rows.Next() {
		var d entity.MembershipDetail
		m, p := &d.LoadMembership, &d.Pallet
		err := rows.Scan(
			&m.ID, &m.LoadID, &m.PalletID, &m.Quantity, &m.Destination, &m.IsOnHold,
			&m.ReleaseNumber, &m.ReleaseDocument, &m.DeliveryDate, &m.CreatedAt, &m.UpdatedAt,
			&p.ID, &p.ProductCode, &p.Description, &p.Quantity, &p.Unit, &p.ProductionDate, &p.Lot, &p.SalesOrderRef,
			&p.CustomerLot, &p.GrossWeight, &p.NetWeight, &p.Pieces, &p.Status, &p.IsVirtual, &p.ReleaseDate,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan membership detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// UpdateDisposition persiste destino, retención y número de liberación.
func (r *MembershipRepo) UpdateDisposition(ctx context.Context, m *entity.LoadMembership) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE load_memberships
		SET destination = $2, is_on_hold = $3, release_number = $4, updated_at = now()
		WHERE id = $1`, m.ID, m.Destination, m.IsOnHold, m.ReleaseNumber)
	if err != nil {
		return fmt.Errorf("update disposition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("membresía", m.ID)
	}
	return nil
}

// SetDocument referencia el mismo documento desde varias membresías.
func (r *MembershipRepo) SetDocument(ctx context.Context, ids []string, document string) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE load_memberships SET release_document = $2, updated_at = now()
		WHERE id = ANY($1)`, ids, document)
	if err != nil {
		return 0, fmt.Errorf("set membership document: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StampDelivery fija la fecha de entrega en las membresías no retenidas del destino.
func (r *MembershipRepo) StampDelivery(ctx context.Context, loadID, destination string, date time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE load_memberships SET delivery_date = $3, updated_at = now()
		WHERE load_id = $1 AND NOT is_on_hold AND lower(btrim(destination)) = $2`, loadID, destination, date)
	if err != nil {
		return 0, fmt.Errorf("stamp membership delivery: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByIDs borra membresías por ID.
func (r *MembershipRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM load_memberships WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete memberships: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByLoad borra todas las membresías de la carga.
func (r *MembershipRepo) DeleteByLoad(ctx context.Context, loadID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM load_memberships WHERE load_id = $1`, loadID)
	if err != nil {
		return 0, fmt.Errorf("delete load memberships: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListHeldDue membresías retenidas de cargas aún en planta cuya fecha de reconsideración ya pasó.
func (r *MembershipRepo) ListHeldDue(ctx context.Context, asOf time.Time) ([]*entity.HeldMembership, error) {
	rows, err := r.q.Query(ctx, `
		SELECT m.id, l.id, l.load_number, p.id, p.product_code, p.release_date
		FROM load_memberships m
		JOIN pallets p        ON p.id = m.pallet_id
		JOIN shipping_loads l ON l.id = m.load_id
		WHERE m.is_on_hold
		  AND p.release_date IS NOT NULL
		  AND p.release_date <= $1
		  AND l.status NOT IN ('in_transit', 'delivered')
		ORDER BY p.release_date, l.load_number, p.id`, asOf)
	if err != nil {
		return nil, fmt.Errorf("list held due: %w", err)
	}
	defer rows.Close()

	var list []*entity.HeldMembership
	for rows.Next() {
		var h entity.HeldMembership
		if err := rows.Scan(&h.MembershipID, &h.LoadID, &h.LoadNumber, &h.PalletID, &h.ProductCode, &h.ReleaseDate); err != nil {
			return nil, fmt.Errorf("scan held membership: %w", err)
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}
