package repository

import (
	"time"

	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/repository/postgres"
)

type OrderPostgres interface {
	Create(ord models.Order) error
	Get(serial string) (models.Order, error)
	GetAll() ([]models.Order, error)
	NextSerial(now time.Time) (string, error)
}

type Repository struct {
	OrderPostgres
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		OrderPostgres: postgres.NewOrderPostgres(db),
	}
}
