package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus ids are fixed 1..5, TaskPaymentStatus ids 1..4; both are
// seeded by the importer before tasks are written.
type TaskStatus struct {
	ID          uint   `json:"id"          gorm:"primary_key"`
	Name        string `json:"name"        gorm:"type:varchar(50);not null"`
	Description string `json:"description" gorm:"type:text"`
}

type TaskPaymentStatus struct {
	ID          uint   `json:"id"          gorm:"primary_key"`
	Name        string `json:"name"        gorm:"type:varchar(50);not null"`
	Description string `json:"description" gorm:"type:text"`
}

// Task keeps the source system's id as its own primary key so that
// parent/root references and timings stay stable across re-imports.
type Task struct {
	ID              int           `json:"id"                gorm:"primary_key"`
	Name            string        `json:"name"              gorm:"type:varchar(200);not null"`
	Description     string        `json:"description"       gorm:"type:text"`
	ExecutorUUID    *uuid.UUID    `json:"executor_uuid"     gorm:"type:uuid;index"`
	StatusID        uint          `json:"status_id"         gorm:"index;not null"`
	PaymentStatusID uint          `json:"payment_status_id" gorm:"index;not null"`
	PlannedDuration time.Duration `json:"planned_duration"  gorm:"type:bigint"`
	ActualDuration  time.Duration `json:"actual_duration"   gorm:"type:bigint"`
	CreationMoment  *time.Time    `json:"creation_moment"`
	StartMoment     *time.Time    `json:"start_moment"`
	DeadlineMoment  *time.Time    `json:"deadline_moment"`
	EndMoment       *time.Time    `json:"end_moment"`
	Price           *float64      `json:"price"`
	OrderSerial     *string       `json:"order_serial"   gorm:"type:varchar(11);index"`
	ParentTaskID    *int          `json:"parent_task_id" gorm:"index"`
	RootTaskID      *int          `json:"root_task_id"   gorm:"index"`
}

// Timing records time spent by one person on one task of one order. There
// is no natural key; the importer dedups on (order, task, executor, date).
type Timing struct {
	ID           uint          `json:"id"            gorm:"primary_key"`
	OrderSerial  string        `json:"order_serial"  gorm:"type:varchar(11);index;not null"`
	TaskID       int           `json:"task_id"       gorm:"index;not null"`
	ExecutorUUID *uuid.UUID    `json:"executor_uuid" gorm:"type:uuid;index"`
	Time         time.Duration `json:"time"          gorm:"type:bigint"`
	Date         *time.Time    `json:"date"          gorm:"type:date"`
}
