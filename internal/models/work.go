package models

type Work struct {
	ID          uint   `json:"id"          gorm:"primary_key"`
	Name        string `json:"name"        gorm:"type:varchar(200);unique_index;not null" validate:"required"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active"      gorm:"default:true"`
}
