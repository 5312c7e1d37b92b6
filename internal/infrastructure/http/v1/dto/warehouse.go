package dto

import (
	"stockroom/internal/domain/catalogs/warehouse"
)

// CreateWarehouseRequest for creating warehouses.
type CreateWarehouseRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
}

// ToEntity converts the request to a domain warehouse.
func (r CreateWarehouseRequest) ToEntity() *warehouse.Warehouse {
	w := warehouse.NewWarehouse(r.Code, r.Name)
	w.Address = r.Address
	return w
}

// UpdateWarehouseRequest for updating warehouses. Nil fields stay unchanged.
type UpdateWarehouseRequest struct {
	Code     *string `json:"code"`
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"isActive"`
}

// ApplyTo applies the update onto an existing warehouse.
func (r UpdateWarehouseRequest) ApplyTo(w *warehouse.Warehouse) {
	if r.Code != nil {
		w.Code = *r.Code
	}
	if r.Name != nil {
		w.Name = *r.Name
	}
	if r.Address != nil {
		w.Address = r.Address
	}
	if r.IsActive != nil {
		w.IsActive = *r.IsActive
	}
}

// WarehouseResponse contains warehouse fields.
type WarehouseResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Address      *string `json:"address,omitempty"`
	IsActive     bool    `json:"isActive"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromWarehouse creates WarehouseResponse from a domain warehouse.
func FromWarehouse(w *warehouse.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:           w.ID.String(),
		Code:         w.Code,
		Name:         w.Name,
		Address:      w.Address,
		IsActive:     w.IsActive,
		DeletionMark: w.DeletionMark,
		Version:      w.Version,
	}
}
