package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Despachos-api/internal/domain"
	"github.com/jhoicas/Despachos-api/internal/domain/entity"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

var _ repository.PalletRepository = (*PalletRepo)(nil)

const palletColumns = `id, product_code, description, quantity, unit, production_date, lot, sales_order_ref,
	customer_lot, gross_weight, net_weight, pieces, status, is_virtual, release_date, created_at, updated_at`

// PalletRepo implementación de PalletRepository sobre PostgreSQL (usable con pool o tx).
type PalletRepo struct {
	q Querier
}

// NewPalletRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPalletRepository(q Querier) *PalletRepo {
	return &PalletRepo{q: q}
}

func scanPallet(row scanner) (*entity.Pallet, error) {
	var p entity.Pallet
	err := row.Scan(
		&p.ID, &p.ProductCode, &p.Description, &p.Quantity, &p.Unit, &p.ProductionDate, &p.Lot, &p.SalesOrderRef,
		&p.CustomerLot, &p.GrossWeight, &p.NetWeight, &p.Pieces, &p.Status, &p.IsVirtual, &p.ReleaseDate,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un pallet nuevo.
func (r *PalletRepo) Create(ctx context.Context, p *entity.Pallet) error {
	query := `
		INSERT INTO pallets (` + palletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.ProductCode, p.Description, p.Quantity, p.Unit, p.ProductionDate, p.Lot, p.SalesOrderRef,
		p.CustomerLot, p.GrossWeight, p.NetWeight, p.Pieces, p.Status, p.IsVirtual, p.ReleaseDate,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("pallet", p.ID)
		}
		return fmt.Errorf("insert pallet: %w", err)
	}
	return nil
}

// GetByID obtiene un pallet por ID.
func (r *PalletRepo) GetByID(ctx context.Context, id string) (*entity.Pallet, error) {
	p, err := scanPallet(r.q.QueryRow(ctx, `SELECT `+palletColumns+` FROM pallets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pallet: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene el pallet y bloquea la fila (SELECT FOR UPDATE).
func (r *PalletRepo) GetForUpdate(ctx context.Context, id string) (*entity.Pallet, error) {
	p, err := scanPallet(r.q.QueryRow(ctx, `SELECT `+palletColumns+` FROM pallets WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pallet for update: %w", err)
	}
	return p, nil
}

// ListAvailable pallets available sin membresía. Filtros por subcadena, sin distinguir mayúsculas.
func (r *PalletRepo) ListAvailable(ctx context.Context, f entity.PalletFilter, limit, offset int) ([]*entity.Pallet, error) {
	conds := []string{
		"p.status = 'available'",
		"NOT EXISTS (SELECT 1 FROM load_memberships m WHERE m.pallet_id = p.id)",
	}
	var args []any
	add := func(value string, columns ...string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		args = append(args, likePattern(value))
		n := len(args)
		ors := make([]string, 0, len(columns))
		for _, c := range columns {
			ors = append(ors, fmt.Sprintf("p.%s ILIKE $%d", c, n))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	add(f.ProductCode, "product_code")
	add(f.Description, "description")
	add(f.Lot, "lot")
	add(f.OrderRef, "sales_order_ref", "customer_lot")
	add(f.Unit, "unit")

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM pallets p
		WHERE %s
		ORDER BY p.production_date NULLS LAST, p.id
		LIMIT $%d OFFSET $%d`,
		prefixed("p", palletColumns), strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list available pallets: %w", err)
	}
	defer rows.Close()

	var list []*entity.Pallet
	for rows.Next() {
		p, err := scanPallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pallet: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// lockedIDs subconsulta que bloquea las filas en orden de id antes de un UPDATE masivo.
const lockedIDs = `SELECT id FROM pallets WHERE id = ANY($1) ORDER BY id FOR UPDATE`

// UpdateStatus cambia el estado de varios pallets.
func (r *PalletRepo) UpdateStatus(ctx context.Context, ids []string, status string) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE pallets SET status = $2, updated_at = now() WHERE id IN (`+lockedIDs+`)`, ids, status)
	if err != nil {
		return 0, fmt.Errorf("update pallet status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Release regresa pallets a available y limpia la fecha de liberación.
func (r *PalletRepo) Release(ctx context.Context, ids []string) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE pallets SET status = 'available', release_date = NULL, updated_at = now()
		WHERE id IN (`+lockedIDs+`)`, ids)
	if err != nil {
		return 0, fmt.Errorf("release pallets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetReleaseDate fija (o limpia con nil) la fecha de reconsideración.
func (r *PalletRepo) SetReleaseDate(ctx context.Context, id string, date *time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE pallets SET release_date = $2, updated_at = now() WHERE id = $1`, id, date)
	if err != nil {
		return fmt.Errorf("set release date: %w", err)
	}
	return nil
}

// UpsertProduced inserta el pallet o actualiza sus atributos de producción. El estado, la fecha de
// liberación y created_at de un pallet existente no cambian; deja de ser virtual.
func (r *PalletRepo) UpsertProduced(ctx context.Context, p *entity.Pallet) (bool, error) {
	query := `
		INSERT INTO pallets (` + palletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, FALSE, NULL, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			product_code    = EXCLUDED.product_code,
			description     = EXCLUDED.description,
			quantity        = EXCLUDED.quantity,
			unit            = EXCLUDED.unit,
			production_date = EXCLUDED.production_date,
			lot             = EXCLUDED.lot,
			sales_order_ref = EXCLUDED.sales_order_ref,
			customer_lot    = EXCLUDED.customer_lot,
			gross_weight    = EXCLUDED.gross_weight,
			net_weight      = EXCLUDED.net_weight,
			pieces          = EXCLUDED.pieces,
			is_virtual      = FALSE,
			updated_at      = now()
		RETURNING (xmax = 0)`
	var inserted bool
	err := r.q.QueryRow(ctx, query,
		p.ID, p.ProductCode, p.Description, p.Quantity, p.Unit, p.ProductionDate, p.Lot, p.SalesOrderRef,
		p.CustomerLot, p.GrossWeight, p.NetWeight, p.Pieces, p.Status, p.CreatedAt, p.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert pallet: %w", err)
	}
	return inserted, nil
}

// prefixed antepone el alias de tabla a cada columna de la lista.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}
