package models

// Country is a dictionary entity, unique by name. Rows are created on
// demand when a referencing record from the source system names a country
// that does not exist yet.
type Country struct {
	ID   uint   `json:"id"   gorm:"primary_key"`
	Name string `json:"name" gorm:"type:varchar(100);unique_index;not null" validate:"required"`
}

type City struct {
	ID        uint   `json:"id"         gorm:"primary_key"`
	Name      string `json:"name"       gorm:"type:varchar(100);unique_index;not null" validate:"required"`
	CountryID uint   `json:"country_id" gorm:"index;not null"`
}
