package importer

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/kis2"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

// importTasks keeps the source id as the primary key so parent/root
// links and timings survive re-imports. Status names resolve against
// the fixed vocabularies, defaulting to id 1.
func (im *Importer) importTasks() Result {
	rows, err := im.src.Tasks()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureTaskStatuses(tx); err != nil {
			return err
		}
		if err := ensurePaymentStatuses(tx); err != nil {
			return err
		}
		cat, err := newCatalog(tx, withTaskStatuses, withPersons)
		if err != nil {
			return err
		}
		var existing []models.Task
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		byID := make(map[int]models.Task, len(existing))
		for _, t := range existing {
			byID[t.ID] = t
		}

		for _, r := range rows {
			var executorUUID *uuid.UUID
			if r.Executor != "" {
				if id, ok := cat.Persons[r.Executor]; ok {
					executorUUID = &id
				} else {
					im.warnf("tasks", "executor %q not found for task %q", r.Executor, r.Name)
				}
			}
			statusID := uint(defaultStatusID)
			if id, ok := cat.TaskStatuses[r.Status]; ok {
				statusID = id
			}
			paymentStatusID := uint(defaultStatusID)
			if id, ok := cat.PayStatuses[r.PaymentStatus]; ok {
				paymentStatusID = id
			}
			planned, ok := kis2.ParseISODuration(r.PlannedDuration)
			if !ok && r.PlannedDuration != "" {
				im.warnf("tasks", "bad planned duration %q for task %d", r.PlannedDuration, r.ID)
			}
			actual, ok := kis2.ParseISODuration(r.ActualDuration)
			if !ok && r.ActualDuration != "" {
				im.warnf("tasks", "bad actual duration %q for task %d", r.ActualDuration, r.ID)
			}
			creation := parseMoment(r.CreationMoment)
			start := parseMoment(r.StartMoment)
			end := parseMoment(r.EndMoment)
			var orderSerial *string
			if r.OrderSerial != "" {
				s := r.OrderSerial
				orderSerial = &s
			}

			current, exists := byID[r.ID]
			if !exists {
				task := models.Task{
					ID:              r.ID,
					Name:            r.Name,
					Description:     r.Description,
					ExecutorUUID:    executorUUID,
					StatusID:        statusID,
					PaymentStatusID: paymentStatusID,
					PlannedDuration: planned,
					ActualDuration:  actual,
					CreationMoment:  creation,
					StartMoment:     start,
					EndMoment:       end,
					Price:           r.Cost,
					OrderSerial:     orderSerial,
					ParentTaskID:    r.ParentTaskID,
					RootTaskID:      r.RootTaskID,
				}
				if err := tx.Create(&task).Error; err != nil {
					return err
				}
				res.Added++
				continue
			}

			changes := map[string]interface{}{}
			if current.Name != r.Name {
				changes["name"] = r.Name
			}
			if current.Description != r.Description {
				changes["description"] = r.Description
			}
			if !uuidPtrEqual(current.ExecutorUUID, executorUUID) {
				changes["executor_uuid"] = executorUUID
			}
			if current.StatusID != statusID {
				changes["status_id"] = statusID
			}
			if current.PaymentStatusID != paymentStatusID {
				changes["payment_status_id"] = paymentStatusID
			}
			if current.PlannedDuration != planned {
				changes["planned_duration"] = planned
			}
			if current.ActualDuration != actual {
				changes["actual_duration"] = actual
			}
			if !im.momentsEqual(current.CreationMoment, creation) {
				changes["creation_moment"] = creation
			}
			if !im.momentsEqual(current.StartMoment, start) {
				changes["start_moment"] = start
			}
			if !im.momentsEqual(current.EndMoment, end) {
				changes["end_moment"] = end
			}
			if !floatPtrEqual(current.Price, r.Cost) {
				changes["price"] = r.Cost
			}
			if !strPtrEqual(current.OrderSerial, orderSerial) {
				changes["order_serial"] = orderSerial
			}
			if !intPtrEqual(current.ParentTaskID, r.ParentTaskID) {
				changes["parent_task_id"] = r.ParentTaskID
			}
			if !intPtrEqual(current.RootTaskID, r.RootTaskID) {
				changes["root_task_id"] = r.RootTaskID
			}
			if len(changes) == 0 {
				res.Unchanged++
				continue
			}
			if err := tx.Model(&models.Task{}).Where("id = ?", r.ID).Updates(changes).Error; err != nil {
				return err
			}
			im.warnf("tasks", "updated task %d: %s", r.ID, changedFields(changes))
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

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// importTimings is add-only with a composite dedup key: the source has
// no timing id, so (order, task, executor, date) identifies a record.
func (im *Importer) importTimings() Result {
	rows, err := im.src.Timings()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		cat, err := newCatalog(tx, withPersons, withOrderSerials, withTaskIDs)
		if err != nil {
			return err
		}
		var existing []models.Timing
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(existing))
		for _, t := range existing {
			seen[timingKey(t.OrderSerial, t.TaskID, t.ExecutorUUID, t.Date)] = struct{}{}
		}

		for _, r := range rows {
			if r.OrderSerial == "" || r.TaskID == 0 || r.Time == "" {
				im.warnf("timings", "timing with incomplete data, skipped")
				continue
			}
			if _, ok := cat.OrderSerials[r.OrderSerial]; !ok {
				im.warnf("timings", "order %q not found for timing, skipped", r.OrderSerial)
				continue
			}
			if _, ok := cat.TaskIDs[r.TaskID]; !ok {
				im.warnf("timings", "task %d not found for timing, skipped", r.TaskID)
				continue
			}
			var executorUUID *uuid.UUID
			if r.Executor != "" {
				if id, ok := cat.Persons[r.Executor]; ok {
					executorUUID = &id
				} else {
					im.warnf("timings", "executor %q not found, timing kept without executor", r.Executor)
				}
			}
			elapsed, ok := kis2.ParseISODuration(r.Time)
			if !ok {
				im.warnf("timings", "bad time %q for timing, skipped", r.Time)
				continue
			}
			var date *time.Time
			if r.Date != "" {
				if t, err := time.Parse("2006-01-02", r.Date); err == nil {
					date = &t
				} else {
					im.warnf("timings", "bad date %q for timing, left unset", r.Date)
				}
			}

			key := timingKey(r.OrderSerial, r.TaskID, executorUUID, date)
			if _, dup := seen[key]; dup {
				res.Unchanged++
				continue
			}
			seen[key] = struct{}{}

			timing := models.Timing{
				OrderSerial:  r.OrderSerial,
				TaskID:       r.TaskID,
				ExecutorUUID: executorUUID,
				Time:         elapsed,
				Date:         date,
			}
			if err := tx.Create(&timing).Error; err != nil {
				return err
			}
			res.Added++
		}
		return nil
	})
	if err != nil {
		return errorResult(err.Error())
	}
	res.Status = StatusSuccess
	return res
}

func timingKey(orderSerial string, taskID int, executor *uuid.UUID, date *time.Time) string {
	key := orderSerial + "|" + strconv.Itoa(taskID) + "|"
	if executor != nil {
		key += executor.String()
	}
	key += "|"
	if date != nil {
		key += date.Format("2006-01-02")
	}
	return key
}
