package entity

import "time"

// Business representa un negocio/tenant. Todo el resto de datos se particiona por su ID.
type Business struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
