package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// Person is keyed by surname+name+patronymic during reconciliation; the
// uuid is a target-side surrogate and never comes from the source system.
type Person struct {
	UUID           uuid.UUID `json:"uuid"            gorm:"type:uuid;primary_key"`
	Surname        string    `json:"surname"         gorm:"type:varchar(100);not null" validate:"required"`
	Name           string    `json:"name"            gorm:"type:varchar(100);not null" validate:"required"`
	Patronymic     string    `json:"patronymic"      gorm:"type:varchar(100)"`
	Phone          string    `json:"phone"           gorm:"type:varchar(50)"`
	Email          string    `json:"email"           gorm:"type:varchar(100)" validate:"omitempty,email"`
	CounterpartyID *uint     `json:"counterparty_id" gorm:"index"`
	Active         bool      `json:"active"          gorm:"default:true"`
}

func (p *Person) BeforeCreate(scope *gorm.Scope) error {
	if p.UUID == uuid.Nil {
		return scope.SetColumn("UUID", uuid.New())
	}
	return nil
}

// FullName renders "Surname Name Patronymic", skipping empty parts. The
// source system references people by exactly this string.
func (p Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Surname, p.Name, p.Patronymic} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
