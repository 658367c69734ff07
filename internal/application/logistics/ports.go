package logistics

import (
	"context"
	"io"

	"github.com/jhoicas/Despachos-api/internal/application/dto"
	"github.com/jhoicas/Despachos-api/internal/domain/repository"
)

// UnitOfWork repositorios atados a una misma transacción de BD.
type UnitOfWork interface {
	Pallets() repository.PalletRepository
	Loads() repository.LoadRepository
	Memberships() repository.MembershipRepository
	Releases() repository.ReleaseRequestRepository
	Shipped() repository.ShippedPalletRepository
	// Savepoint ejecuta fn dentro de un punto de guardado: si fn falla, solo se deshace lo que fn hizo
	// y la transacción externa sigue utilizable.
	Savepoint(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// TxRunner ejecuta una función dentro de una transacción de BD (Commit si fn devuelve nil, Rollback si no).
// Garantiza que total_pallets, membresías y estados de pallets nunca diverjan de forma observable.
type TxRunner interface {
	Run(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// DocumentStorage almacén binario de documentos de autorización, referenciados por handle opaco.
type DocumentStorage interface {
	Save(ctx context.Context, filename string, content io.Reader) (handle string, err error)
	Open(ctx context.Context, handle string) (io.ReadCloser, error)
	Delete(ctx context.Context, handle string) error
}

// ManifestRenderer convierte un manifiesto en un documento exportable (CSV, XML, PDF).
type ManifestRenderer interface {
	Format() string
	Render(ctx context.Context, manifest *dto.Manifest) (*dto.ManifestExport, error)
}
