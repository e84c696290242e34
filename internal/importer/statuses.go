package importer

import (
	"sort"

	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

// Fixed status vocabularies. Ids are part of the contract: referencing
// records default to id 1 when a status name does not resolve.
var standardOrderStatuses = []models.OrderStatus{
	{ID: 1, Name: "Не определён", Description: "Статус заказа не определен"},
	{ID: 2, Name: "На согласовании", Description: "Заказ находится на этапе согласования"},
	{ID: 3, Name: "В работе", Description: "Заказ находится в процессе выполнения"},
	{ID: 4, Name: "Просрочено", Description: "Срок выполнения заказа просрочен"},
	{ID: 5, Name: "Выполнено в срок", Description: "Заказ выполнен в установленный срок"},
	{ID: 6, Name: "Выполнено НЕ в срок", Description: "Заказ выполнен с нарушением установленного срока"},
	{ID: 7, Name: "Не согласовано", Description: "Заказ не согласован"},
	{ID: 8, Name: "На паузе", Description: "Выполнение заказа приостановлено"},
}

var standardTaskStatuses = []models.TaskStatus{
	{ID: 1, Name: "Не начата"},
	{ID: 2, Name: "В работе"},
	{ID: 3, Name: "На паузе"},
	{ID: 4, Name: "Завершена"},
	{ID: 5, Name: "Отменена"},
}

var standardPaymentStatuses = []models.TaskPaymentStatus{
	{ID: 1, Name: "Нет оплаты"},
	{ID: 2, Name: "Возможна"},
	{ID: 3, Name: "Начислена"},
	{ID: 4, Name: "Оплачена"},
}

// importOrderStatuses self-heals the fixed order status table and
// reports what it had to fix.
func (im *Importer) importOrderStatuses() Result {
	var res Result
	err := im.db.Transaction(func(tx *gorm.DB) error {
		r, err := ensureOrderStatuses(tx)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return errorResult(err.Error())
	}
	res.Status = StatusSuccess
	return res
}

func ensureOrderStatuses(tx *gorm.DB) (Result, error) {
	var res Result
	var existing []models.OrderStatus
	if err := tx.Find(&existing).Error; err != nil {
		return res, err
	}
	byID := make(map[uint]models.OrderStatus, len(existing))
	for _, s := range existing {
		byID[s.ID] = s
	}
	for _, want := range standardOrderStatuses {
		got, ok := byID[want.ID]
		switch {
		case !ok:
			if err := tx.Create(&want).Error; err != nil {
				return res, err
			}
			res.Added++
		case got.Description != want.Description:
			if err := tx.Model(&models.OrderStatus{}).Where("id = ?", want.ID).
				Updates(map[string]interface{}{"name": want.Name, "description": want.Description}).Error; err != nil {
				return res, err
			}
			res.Updated++
		default:
			res.Unchanged++
		}
	}
	return res, nil
}

func ensureTaskStatuses(tx *gorm.DB) error {
	var existing []models.TaskStatus
	if err := tx.Find(&existing).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.TaskStatus, len(existing))
	for _, s := range existing {
		byID[s.ID] = s
	}
	for _, want := range standardTaskStatuses {
		got, ok := byID[want.ID]
		if !ok {
			if err := tx.Create(&want).Error; err != nil {
				return err
			}
			continue
		}
		if got.Name != want.Name {
			if err := tx.Model(&models.TaskStatus{}).Where("id = ?", want.ID).
				Update("name", want.Name).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func ensurePaymentStatuses(tx *gorm.DB) error {
	var existing []models.TaskPaymentStatus
	if err := tx.Find(&existing).Error; err != nil {
		return err
	}
	byID := make(map[uint]models.TaskPaymentStatus, len(existing))
	for _, s := range existing {
		byID[s.ID] = s
	}
	for _, want := range standardPaymentStatuses {
		got, ok := byID[want.ID]
		if !ok {
			if err := tx.Create(&want).Error; err != nil {
				return err
			}
			continue
		}
		if got.Name != want.Name {
			if err := tx.Model(&models.TaskPaymentStatus{}).Where("id = ?", want.ID).
				Update("name", want.Name).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func uintPtrEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// changedFields renders the keys of an update set for log lines.
func changedFields(changes map[string]interface{}) string {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}
