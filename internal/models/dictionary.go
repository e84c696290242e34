package models

type Currency struct {
	ID   uint   `json:"id"   gorm:"primary_key"`
	Name string `json:"name" gorm:"type:varchar(50);unique_index;not null"`
}

type EquipmentType struct {
	ID   uint   `json:"id"   gorm:"primary_key"`
	Name string `json:"name" gorm:"type:varchar(100);unique_index;not null"`
}

type CounterpartyForm struct {
	ID   uint   `json:"id"   gorm:"primary_key"`
	Name string `json:"name" gorm:"type:varchar(50);unique_index;not null"`
}

// CabinetMaterial and IPRating are dictionaries feeding ControlCabinet.
type CabinetMaterial struct {
	ID   uint   `json:"id"   gorm:"primary_key"`
	Name string `json:"name" gorm:"type:varchar(100);unique_index;not null"`
}

type IPRating struct {
	ID   uint   `json:"id"   gorm:"primary_key"`
	Name string `json:"name" gorm:"type:varchar(20);unique_index;not null"`
}
