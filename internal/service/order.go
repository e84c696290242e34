package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

var serialRe = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)

func humanizeValidationErrors(errs validator.ValidationErrors) string {
	var b strings.Builder
	for _, fe := range errs {
		if fe.Param() != "" {
			fmt.Fprintf(&b, "%s: %s=%s; ", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			fmt.Fprintf(&b, "%s: %s; ", fe.Namespace(), fe.Tag())
		}
	}
	s := b.String()
	if len(s) > 2 {
		s = s[:len(s)-2]
	}
	return s
}

func (s *Service) GetAllOrders() ([]models.Order, error) {
	return s.OrderPostgres.GetAll()
}

func (s *Service) GetOrder(serial string) (models.Order, error) {
	ord, err := s.OrderPostgres.Get(serial)
	if gorm.IsRecordNotFoundError(err) {
		return models.Order{}, ErrNotFound
	}
	return ord, err
}

func (s *Service) NewSerial() (string, error) {
	return s.OrderPostgres.NextSerial(s.now())
}

// CreateOrder stores a new order. An empty serial is assigned the next
// free one; a caller-provided serial must already be in the canonical
// form.
func (s *Service) CreateOrder(order models.Order) (models.Order, error) {
	if order.Serial == "" {
		serial, err := s.OrderPostgres.NextSerial(s.now())
		if err != nil {
			return models.Order{}, err
		}
		order.Serial = serial
	}
	if !serialRe.MatchString(order.Serial) {
		return models.Order{}, fmt.Errorf("%w: bad serial %q", ErrValidation, order.Serial)
	}
	if order.StatusID == 0 {
		order.StatusID = 1
	}
	if err := s.v.Struct(order); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return models.Order{}, fmt.Errorf("%w: %s", ErrValidation, humanizeValidationErrors(verrs))
		}
		return models.Order{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.OrderPostgres.Create(order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}
