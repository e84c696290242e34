package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus rows form a fixed set with ids 1..8, seeded by the importer
// before any order is written.
type OrderStatus struct {
	ID          uint   `json:"id"          gorm:"primary_key"`
	Name        string `json:"name"        gorm:"type:varchar(50);not null"`
	Description string `json:"description" gorm:"type:text"`
}

// Order is keyed by its serial, a natural key in the form NNN-MM-YYYY.
// The serial is assigned once and never changes; the sequence part resets
// each calendar year.
type Order struct {
	Serial         string     `json:"serial"          gorm:"type:varchar(11);primary_key" validate:"required,len=11"`
	Name           string     `json:"name"            gorm:"type:varchar(200)" validate:"required"`
	CustomerID     uint       `json:"customer_id"     gorm:"index;not null" validate:"required"`
	Priority       *int       `json:"priority"        validate:"omitempty,min=1,max=10"`
	StatusID       uint       `json:"status_id"       gorm:"index;not null"`
	StartMoment    *time.Time `json:"start_moment"`
	DeadlineMoment *time.Time `json:"deadline_moment"`
	EndMoment      *time.Time `json:"end_moment"`
	MaterialsCost  float64    `json:"materials_cost"`
	MaterialsPaid  bool       `json:"materials_paid"`
	ProductsCost   float64    `json:"products_cost"`
	ProductsPaid   bool       `json:"products_paid"`
	WorkCost       float64    `json:"work_cost"`
	WorkPaid       bool       `json:"work_paid"`
	Debt           float64    `json:"debt"`
	DebtPaid       bool       `json:"debt_paid"`
	Works          []Work     `json:"works" gorm:"many2many:order_works;jointable_foreignkey:order_serial;association_jointable_foreignkey:work_id"`
}

type OrderComment struct {
	ID               uint       `json:"id"                 gorm:"primary_key"`
	OrderSerial      string     `json:"order_serial"       gorm:"type:varchar(11);index;not null"`
	PersonUUID       uuid.UUID  `json:"person_uuid"        gorm:"type:uuid;index;not null"`
	Text             string     `json:"text"               gorm:"type:text"`
	MomentOfCreation *time.Time `json:"moment_of_creation" gorm:"index"`
}
