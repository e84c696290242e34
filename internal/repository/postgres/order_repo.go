package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

type OrderPostgresRepo struct {
	db *gorm.DB
}

func NewOrderPostgres(db *gorm.DB) *OrderPostgresRepo {
	return &OrderPostgresRepo{db: db}
}

func (r *OrderPostgresRepo) Create(o models.Order) error {
	return r.db.
		Set("gorm:association_autoupdate", false).
		Transaction(func(tx *gorm.DB) error {
			return tx.Create(&o).Error
		})
}

func (r *OrderPostgresRepo) Get(serial string) (models.Order, error) {
	var o models.Order
	q := r.db.Preload("Works").
		Where("serial = ?", serial).
		First(&o)
	return o, q.Error
}

func (r *OrderPostgresRepo) GetAll() ([]models.Order, error) {
	var out []models.Order
	q := r.db.Preload("Works").
		Order("serial").
		Find(&out)
	return out, q.Error
}

// NextSerial computes the next free order serial for the given moment.
// The sequence part restarts at 001 every calendar year.
func (r *OrderPostgresRepo) NextSerial(now time.Time) (string, error) {
	var serials []string
	year := fmt.Sprintf("%04d", now.Year())
	if err := r.db.Model(&models.Order{}).
		Where("serial LIKE ?", "%-"+year).
		Pluck("serial", &serials).Error; err != nil {
		return "", err
	}
	seq := maxSequence(serials, year) + 1
	return fmt.Sprintf("%03d-%02d-%s", seq, int(now.Month()), year), nil
}

// maxSequence extracts the highest NNN prefix among serials ending in
// the given year. Malformed serials are ignored.
func maxSequence(serials []string, year string) int {
	max := 0
	for _, s := range serials {
		parts := strings.Split(s, "-")
		if len(parts) != 3 || parts[2] != year {
			continue
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
