package models

type Manufacturer struct {
	ID        uint   `json:"id"         gorm:"primary_key"`
	Name      string `json:"name"       gorm:"type:varchar(100);unique_index;not null" validate:"required"`
	CountryID uint   `json:"country_id" gorm:"index;not null"`
}

// Counterparty is a customer company. The name is the reconciliation key:
// the source system references counterparties by name only.
type Counterparty struct {
	ID     uint   `json:"id"      gorm:"primary_key"`
	Name   string `json:"name"    gorm:"type:varchar(200);unique_index;not null" validate:"required"`
	Note   string `json:"note"    gorm:"type:text"`
	FormID uint   `json:"form_id" gorm:"index;not null"`
	CityID *uint  `json:"city_id" gorm:"index"`
}
