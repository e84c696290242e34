package models

import "github.com/google/uuid"

// BoxAccounting tracks manufactured cabinets by serial number. SerialNum
// is a dense integer: imports carry the source-assigned value, manual
// creation takes current max + 1.
type BoxAccounting struct {
	SerialNum           int        `json:"serial_num"            gorm:"primary_key"`
	Name                string     `json:"name"                  gorm:"type:varchar(200);not null"`
	OrderSerial         string     `json:"order_serial"          gorm:"type:varchar(11);index;not null"`
	SchemeDeveloperUUID uuid.UUID  `json:"scheme_developer_uuid" gorm:"type:uuid;not null"`
	AssemblerUUID       uuid.UUID  `json:"assembler_uuid"        gorm:"type:uuid;not null"`
	ProgrammerUUID      *uuid.UUID `json:"programmer_uuid"       gorm:"type:uuid"`
	TesterUUID          uuid.UUID  `json:"tester_uuid"           gorm:"type:uuid;not null"`
}
