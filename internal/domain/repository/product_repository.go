package repository

import (
	"context"

	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo (DIP). Devuelve (nil, nil) si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
