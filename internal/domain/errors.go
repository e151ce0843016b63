package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("orden de reposición no encontrada")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")

	// ErrPreconditionFailed agrupa los fallos de precondición de una transición.
	ErrPreconditionFailed = errors.New("precondición no cumplida")
	ErrInvalidTransition  = fmt.Errorf("%w: estado actual no permite la operación", ErrPreconditionFailed)
	ErrInsufficientStock  = fmt.Errorf("%w: stock de bodega insuficiente", ErrPreconditionFailed)
	ErrConcurrentUpdate   = fmt.Errorf("%w: la orden fue modificada concurrentemente", ErrPreconditionFailed)
)
