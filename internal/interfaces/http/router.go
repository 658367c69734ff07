package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Despachos-api/internal/application/logistics"
	"github.com/jhoicas/Despachos-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Registry    *logistics.RegistryUseCase
	Assembly    *logistics.AssemblyUseCase
	Workflow    *logistics.WorkflowUseCase
	Disposition *logistics.DispositionUseCase
	Manifest    *logistics.ManifestUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las reglas finas por rol
// (quién responde o edita y en qué estado) las aplican los casos de uso.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleCustomer)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Pallets (planta)
	pallets := api.Group("/pallets", adminOnly)
	palletHandler := NewPalletHandler(deps.Registry)
	pallets.Get("/available", palletHandler.ListAvailable)
	pallets.Post("/virtual", palletHandler.CreateVirtual)
	pallets.Post("/mark-shipped", palletHandler.MarkShipped)
	pallets.Post("/release", palletHandler.Release)
	pallets.Get("/:id", palletHandler.GetByID)

	// Cargas
	loads := api.Group("/loads")
	loadHandler := NewLoadHandler(deps.Assembly)
	loads.Get("/", anyRole, loadHandler.List)
	loads.Post("/", adminOnly, loadHandler.Create)
	loads.Get("/:id", anyRole, loadHandler.Get)
	loads.Delete("/:id", adminOnly, loadHandler.Delete)
	loads.Post("/:id/pallets", adminOnly, loadHandler.AddPallets)
	loads.Get("/:id/memberships", anyRole, loadHandler.ListMemberships)
	loads.Delete("/:id/memberships", adminOnly, loadHandler.RemoveMemberships)

	// Flujo de liberación
	releaseHandler := NewReleaseHandler(deps.Workflow)
	loads.Post("/:id/transitions", anyRole, releaseHandler.Transition)
	loads.Get("/:id/readiness", anyRole, releaseHandler.Readiness)
	loads.Get("/:id/release-request", anyRole, releaseHandler.GetReleaseRequest)
	loads.Post("/:id/release-request/respond", anyRole, releaseHandler.Respond)

	// Disposición por pallet y documentos
	dispositionHandler := NewDispositionHandler(deps.Disposition)
	loads.Put("/:id/memberships/:membershipId/disposition", anyRole, dispositionHandler.SetDisposition)
	loads.Put("/:id/memberships/:membershipId/release-number", anyRole, dispositionHandler.SetReleaseNumber)
	loads.Post("/:id/documents", anyRole, dispositionHandler.AttachDocument)
	api.Get("/documents/:key/:name", anyRole, dispositionHandler.DownloadDocument)
	api.Get("/memberships/held-due", adminOnly, dispositionHandler.ListHeldDue)

	// Manifiesto
	manifestHandler := NewManifestHandler(deps.Manifest)
	loads.Get("/:id/manifest", anyRole, manifestHandler.Get)
}
