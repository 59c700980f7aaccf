package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/kardex-api/internal/domain"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeNumericOutOfRange   = "22003"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// mapError traduce errores de PostgreSQL a errores de dominio.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case isUniqueViolation(err), isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConflict, err)
	case pgCode(err) == codeCheckViolation, pgCode(err) == codeInvalidText, pgCode(err) == codeNumericOutOfRange:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrValidation, err)
	}
	return domain.StorageError(op, err)
}

// validID indica si id puede compararse con una columna UUID.
// Un id con otro formato no existe: los repositorios responden "no encontrado" sin consultar.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
