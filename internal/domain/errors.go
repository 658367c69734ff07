package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
// Los tipos con detalle de abajo hacen Unwrap a estos centinelas para usar errors.Is.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrAlreadyAssigned    = errors.New("el pallet ya pertenece a una carga")
	ErrInvalidState       = errors.New("operación no permitida en el estado actual")
	ErrPreconditionFailed = errors.New("precondiciones no cumplidas")
	ErrIncompleteData     = errors.New("datos incompletos")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// ValidationError entrada mal formada (ej. cantidad no positiva).
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ConflictError violación de unicidad (número de carga duplicado, etc.).
type ConflictError struct {
	Resource string
	Key      string
}

func NewConflictError(resource, key string) *ConflictError {
	return &ConflictError{Resource: resource, Key: key}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %q ya existe", ErrConflict, e.Resource, e.Key)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// AlreadyAssignedError el pallet ya es miembro de una carga (o lo ganó otra petición concurrente).
// Es a la vez ErrAlreadyAssigned y ErrConflict.
type AlreadyAssignedError struct {
	PalletID string
}

func NewAlreadyAssignedError(palletID string) *AlreadyAssignedError {
	return &AlreadyAssignedError{PalletID: palletID}
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyAssigned, e.PalletID)
}

func (e *AlreadyAssignedError) Unwrap() []error { return []error{ErrAlreadyAssigned, ErrConflict} }

// InvalidStateError operación no permitida por el estado actual de la entidad.
type InvalidStateError struct {
	Entity    string
	ID        string
	Status    string
	Operation string
}

func NewInvalidStateError(entity, id, status, operation string) *InvalidStateError {
	return &InvalidStateError{Entity: entity, ID: id, Status: status, Operation: operation}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: no se puede %s %s %s en estado %s", ErrInvalidState, e.Operation, e.Entity, e.ID, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// Violation condición concreta no cumplida, con los pallets afectados cuando aplica.
type Violation struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	PalletIDs []string `json:"pallet_ids,omitempty"`
}

// Códigos de violación del guardián de transiciones.
const (
	ViolationEmptyLoad        = "EMPTY_LOAD"
	ViolationPalletOnHold     = "PALLET_ON_HOLD"
	ViolationMissingDest      = "MISSING_DESTINATION"
	ViolationMissingDelivery  = "MISSING_DELIVERY_DATE"
	ViolationNoPallets        = "NO_PALLETS"
	ViolationNoReleaseRequest = "NO_RELEASE_REQUEST"
)

// PreconditionFailedError lista completa de condiciones no cumplidas para una transición.
type PreconditionFailedError struct {
	Operation  string
	Violations []Violation
}

func NewPreconditionFailedError(operation string, violations []Violation) *PreconditionFailedError {
	return &PreconditionFailedError{Operation: operation, Violations: violations}
}

func (e *PreconditionFailedError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%s (%s): %s", ErrPreconditionFailed, e.Operation, strings.Join(msgs, ", "))
}

func (e *PreconditionFailedError) Unwrap() error { return ErrPreconditionFailed }

// NotFoundError recurso inexistente.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrNotFound, e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IncompleteDataError no fatal: el documento se generó, pero faltan datos (ej. sin pedido asociado).
type IncompleteDataError struct {
	Missing []string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIncompleteData, strings.Join(e.Missing, "; "))
}

func (e *IncompleteDataError) Unwrap() error { return ErrIncompleteData }
