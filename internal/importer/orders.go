package importer

import (
	"time"

	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

const defaultStatusID = 1

// parseMoment accepts the source's RFC 3339 timestamps. Bad or empty
// values come back nil.
func parseMoment(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// momentsEqual compares two timestamps to the minute after normalizing
// both to the configured offset. The source truncates seconds on some
// collections, so second-level differences are noise.
func (im *Importer) momentsEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	const layout = "2006-01-02 15:04"
	return a.In(im.loc).Format(layout) == b.In(im.loc).Format(layout)
}

func (im *Importer) importOrders() Result {
	rows, err := im.src.Orders()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ensureOrderStatuses(tx); err != nil {
			return err
		}
		cat, err := newCatalog(tx, withCounterparties, withWorks, withOrderStatuses)
		if err != nil {
			return err
		}
		var existing []models.Order
		if err := tx.Preload("Works").Find(&existing).Error; err != nil {
			return err
		}
		bySerial := make(map[string]models.Order, len(existing))
		for _, o := range existing {
			bySerial[o.Serial] = o
		}

		for _, r := range rows {
			customerID, ok := cat.Counterparties[r.Customer]
			if !ok {
				im.warnf("orders", "customer %q not found for order %s, skipped", r.Customer, r.Serial)
				continue
			}
			var priority *int
			if r.Priority >= 1 && r.Priority <= 10 {
				p := r.Priority
				priority = &p
			}
			statusID, ok := cat.OrderStatuses[r.Status]
			if !ok {
				statusID = defaultStatusID
			}
			start := parseMoment(r.StartMoment)
			deadline := parseMoment(r.DeadlineMoment)
			end := parseMoment(r.EndMoment)

			current, exists := bySerial[r.Serial]
			if !exists {
				order := models.Order{
					Serial:         r.Serial,
					Name:           r.Name,
					CustomerID:     customerID,
					Priority:       priority,
					StatusID:       statusID,
					StartMoment:    start,
					DeadlineMoment: deadline,
					EndMoment:      end,
					MaterialsCost:  r.MaterialsCost,
					MaterialsPaid:  r.MaterialsPaid,
					ProductsCost:   r.ProductsCost,
					ProductsPaid:   r.ProductsPaid,
					WorkCost:       r.WorkCost,
					WorkPaid:       r.WorkPaid,
					Debt:           r.Debt,
					DebtPaid:       r.DebtPaid,
				}
				for _, name := range r.Works {
					if id, ok := cat.Works[name]; ok {
						order.Works = append(order.Works, models.Work{ID: id, Name: name})
					}
				}
				// Existing work rows must only be linked, never rewritten.
				if err := tx.Set("gorm:association_autoupdate", false).Create(&order).Error; err != nil {
					return err
				}
				res.Added++
				continue
			}

			changes := map[string]interface{}{}
			if current.Name != r.Name {
				changes["name"] = r.Name
			}
			if current.CustomerID != customerID {
				changes["customer_id"] = customerID
			}
			if !intPtrEqual(current.Priority, priority) {
				changes["priority"] = priority
			}
			if current.StatusID != statusID {
				changes["status_id"] = statusID
			}
			if !im.momentsEqual(current.StartMoment, start) {
				changes["start_moment"] = start
			}
			if !im.momentsEqual(current.DeadlineMoment, deadline) {
				changes["deadline_moment"] = deadline
			}
			if !im.momentsEqual(current.EndMoment, end) {
				changes["end_moment"] = end
			}
			if current.MaterialsCost != r.MaterialsCost {
				changes["materials_cost"] = r.MaterialsCost
			}
			if current.MaterialsPaid != r.MaterialsPaid {
				changes["materials_paid"] = r.MaterialsPaid
			}
			if current.ProductsCost != r.ProductsCost {
				changes["products_cost"] = r.ProductsCost
			}
			if current.ProductsPaid != r.ProductsPaid {
				changes["products_paid"] = r.ProductsPaid
			}
			if current.WorkCost != r.WorkCost {
				changes["work_cost"] = r.WorkCost
			}
			if current.WorkPaid != r.WorkPaid {
				changes["work_paid"] = r.WorkPaid
			}
			if current.Debt != r.Debt {
				changes["debt"] = r.Debt
			}
			if current.DebtPaid != r.DebtPaid {
				changes["debt_paid"] = r.DebtPaid
			}

			worksChanged, wantWorks := diffWorks(current.Works, r.Works, cat.Works)

			if len(changes) == 0 && !worksChanged {
				res.Unchanged++
				continue
			}
			if len(changes) > 0 {
				if err := tx.Model(&models.Order{}).Where("serial = ?", r.Serial).Updates(changes).Error; err != nil {
					return err
				}
			}
			if worksChanged {
				order := models.Order{Serial: r.Serial}
				if err := tx.Set("gorm:association_autoupdate", false).
					Model(&order).Association("Works").Replace(wantWorks).Error; err != nil {
					return err
				}
			}
			im.warnf("orders", "updated %s: %s", r.Serial, changedFields(changes))
			res.Updated++
		}
		return nil
	})
	if err != nil {
		return errorResult(err.Error())
	}
	res.Status = StatusSuccess
	return res
}

// diffWorks compares the order's current work set against the source
// names and, when they differ, returns the desired association set.
// Source names that resolve to no known work are dropped.
func diffWorks(current []models.Work, want []string, workIDs map[string]uint) (bool, []models.Work) {
	have := make(map[string]struct{}, len(current))
	for _, w := range current {
		have[w.Name] = struct{}{}
	}
	resolved := make([]models.Work, 0, len(want))
	wantSet := make(map[string]struct{}, len(want))
	for _, name := range want {
		id, ok := workIDs[name]
		if !ok {
			continue
		}
		if _, dup := wantSet[name]; dup {
			continue
		}
		wantSet[name] = struct{}{}
		resolved = append(resolved, models.Work{ID: id, Name: name})
	}
	if len(have) != len(wantSet) {
		return true, resolved
	}
	for name := range wantSet {
		if _, ok := have[name]; !ok {
			return true, resolved
		}
	}
	return false, nil
}
