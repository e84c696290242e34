package service

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/importer"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/repository"
)

type Order interface {
	GetAllOrders() ([]models.Order, error)
	GetOrder(serial string) (models.Order, error)
	NewSerial() (string, error)
	CreateOrder(order models.Order) (models.Order, error)
}

type Import interface {
	ImportEntity(name string) (importer.Result, error)
	ImportAll() importer.RunReport
}

// ImportRunner is the slice of the import engine the service needs;
// tests swap in a stub.
type ImportRunner interface {
	ImportEntity(et importer.EntityType) importer.Result
	ImportAll() importer.RunReport
}

type Service struct {
	repository.OrderPostgres
	runner ImportRunner
	v      *validator.Validate
	now    func() time.Time
}

func NewService(repository *repository.Repository, runner ImportRunner) *Service {
	return &Service{
		OrderPostgres: repository.OrderPostgres,
		runner:        runner,
		v:             validator.New(),
		now:           time.Now,
	}
}
