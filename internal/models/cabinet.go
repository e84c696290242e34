package models

import "time"

// ControlCabinet is an equipment record; vendor code is the natural dedup
// key during import (source rows without one are skipped).
type ControlCabinet struct {
	ID             uint       `json:"id"              gorm:"primary_key"`
	Name           string     `json:"name"            gorm:"type:varchar(200);not null"`
	Model          string     `json:"model"           gorm:"type:varchar(100)"`
	VendorCode     string     `json:"vendor_code"     gorm:"type:varchar(100);unique_index"`
	Description    string     `json:"description"     gorm:"type:text"`
	TypeID         uint       `json:"type_id"         gorm:"index;not null"`
	ManufacturerID *uint      `json:"manufacturer_id" gorm:"index"`
	Price          float64    `json:"price"`
	CurrencyID     *uint      `json:"currency_id"     gorm:"index"`
	Relevance      bool       `json:"relevance"       gorm:"default:true"`
	PriceDate      *time.Time `json:"price_date"      gorm:"type:date"`
	MaterialID     uint       `json:"material_id"     gorm:"index;not null"`
	IPRatingID     uint       `json:"ip_rating_id"    gorm:"index;not null"`
	Height         int        `json:"height"`
	Width          int        `json:"width"`
	Depth          int        `json:"depth"`
}
