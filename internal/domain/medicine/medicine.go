package medicine

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("medicine not found")

type Medicine struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Unit        string    `json:"unit"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const DefaultUnit = "pcs"

type UpsertRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"omitempty,min=0"`
	Unit        string  `json:"unit" binding:"omitempty,max=40"`
	Description string  `json:"description" binding:"omitempty,max=1000"`
}
