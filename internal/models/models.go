package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status values are stored in Spanish, matching the production schema.
const (
	OrderStatusPending = "pendiente"

	QueueStatusPending  = "pendiente"
	QueueStatusAssigned = "asignado"

	ProviderStatusPending  = "pendiente"
	ProviderStatusApproved = "aprobado"
	ProviderStatusRejected = "rechazado"
)

type User struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"nombre_completo"`
	Email     string    `json:"email"`
	Address   string    `json:"direccion_habitacion,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Provider struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre_emprendimiento"`
	Address   string    `json:"direccion,omitempty"`
	Status    string    `json:"estado"`
	CreatedAt time.Time `json:"created_at"`
}

type Dish struct {
	ID          int64           `json:"id"`
	ProviderID  int64           `json:"provider_id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion,omitempty"`
	Price       decimal.Decimal `json:"precio"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InventoryRecord is the per (dish, provider) stock counter. Quantity is
// never allowed below zero; mutation happens only through stock
// adjustments and order placement.
type InventoryRecord struct {
	ID         int64     `json:"id"`
	DishID     int64     `json:"dish_id"`
	ProviderID int64     `json:"provider_id"`
	Quantity   int       `json:"cantidad"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type InventoryLogEntry struct {
	ID         int64     `json:"id"`
	DishID     int64     `json:"dish_id"`
	ProviderID int64     `json:"provider_id"`
	Change     int       `json:"cambio"`
	Resulting  int       `json:"cantidad_resultante"`
	Reason     string    `json:"motivo,omitempty"`
	CreatedAt  time.Time `json:"fecha"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderRef        string          `json:"order_ref"`
	ExternalRef     string          `json:"external_ref,omitempty"`
	UserID          int64           `json:"user_id"`
	ProviderID      int64           `json:"provider_id,omitempty"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	DeliveryAddress string          `json:"delivery_address"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem rows are immutable once written; Subtotal always equals
// Quantity x UnitPrice.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	DishID    int64           `json:"dish_id"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
}

type DeliveryQueueEntry struct {
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	Status       string    `json:"estado"`
	RegisteredAt time.Time `json:"fecha_registro"`
}

type OrderEvent struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	Description string    `json:"descripcion"`
	CreatedAt   time.Time `json:"fecha"`
}

type DeliveryRoute struct {
	ID       int64     `json:"id"`
	Date     time.Time `json:"fecha"`
	Capacity int       `json:"capacidad"`
	Vehicle  string    `json:"vehiculo"`
	Driver   string    `json:"conductor"`
}

type RouteItem struct {
	ID              int64     `json:"id"`
	RouteID         int64     `json:"route_id"`
	OrderID         int64     `json:"order_id"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
	ScheduledTime   time.Time `json:"scheduled_time"`
}
