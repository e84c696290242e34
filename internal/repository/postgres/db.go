package postgres

import (
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

// ConnectDB opens the target database and brings the schema up to date.
func ConnectDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or extends every table the importer and the API touch.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Country{},
		&models.City{},
		&models.Currency{},
		&models.EquipmentType{},
		&models.CounterpartyForm{},
		&models.CabinetMaterial{},
		&models.IPRating{},
		&models.Manufacturer{},
		&models.Counterparty{},
		&models.Person{},
		&models.Work{},
		&models.OrderStatus{},
		&models.Order{},
		&models.OrderComment{},
		&models.ControlCabinet{},
		&models.BoxAccounting{},
		&models.TaskStatus{},
		&models.TaskPaymentStatus{},
		&models.Task{},
		&models.Timing{},
	).Error
	return errors.Wrap(err, "auto migrate")
}
