package importer

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

// importBoxAccounting reconciles manufactured cabinet records by serial
// number. The order and the mandatory crew roles must resolve or the
// record is skipped; an unresolved programmer is merely nulled, since
// not every cabinet needs one.
func (im *Importer) importBoxAccounting() Result {
	rows, err := im.src.BoxAccounting()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		cat, err := newCatalog(tx, withPersons, withOrderSerials)
		if err != nil {
			return err
		}
		var existing []models.BoxAccounting
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		bySerial := make(map[int]models.BoxAccounting, len(existing))
		for _, b := range existing {
			bySerial[b.SerialNum] = b
		}

		for _, r := range rows {
			if _, ok := cat.OrderSerials[r.OrderSerial]; !ok {
				im.warnf("box_accounting", "order %q not found for box %d, skipped", r.OrderSerial, r.SerialNum)
				continue
			}
			developerUUID, ok := cat.Persons[r.SchemeDeveloper]
			if !ok {
				im.warnf("box_accounting", "scheme developer %q not found for box %d, skipped", r.SchemeDeveloper, r.SerialNum)
				continue
			}
			assemblerUUID, ok := cat.Persons[r.Assembler]
			if !ok {
				im.warnf("box_accounting", "assembler %q not found for box %d, skipped", r.Assembler, r.SerialNum)
				continue
			}
			testerUUID, ok := cat.Persons[r.Tester]
			if !ok {
				im.warnf("box_accounting", "tester %q not found for box %d, skipped", r.Tester, r.SerialNum)
				continue
			}
			var programmerUUID *uuid.UUID
			if r.Programmer != "" {
				if id, ok := cat.Persons[r.Programmer]; ok {
					programmerUUID = &id
				} else {
					im.warnf("box_accounting", "programmer %q not found for box %d, left unset", r.Programmer, r.SerialNum)
				}
			}

			current, exists := bySerial[r.SerialNum]
			if !exists {
				box := models.BoxAccounting{
					SerialNum:           r.SerialNum,
					Name:                r.Name,
					OrderSerial:         r.OrderSerial,
					SchemeDeveloperUUID: developerUUID,
					AssemblerUUID:       assemblerUUID,
					ProgrammerUUID:      programmerUUID,
					TesterUUID:          testerUUID,
				}
				if err := tx.Create(&box).Error; err != nil {
					return err
				}
				res.Added++
				continue
			}

			changes := map[string]interface{}{}
			if current.Name != r.Name {
				changes["name"] = r.Name
			}
			if current.OrderSerial != r.OrderSerial {
				changes["order_serial"] = r.OrderSerial
			}
			if current.SchemeDeveloperUUID != developerUUID {
				changes["scheme_developer_uuid"] = developerUUID
			}
			if current.AssemblerUUID != assemblerUUID {
				changes["assembler_uuid"] = assemblerUUID
			}
			if !uuidPtrEqual(current.ProgrammerUUID, programmerUUID) {
				changes["programmer_uuid"] = programmerUUID
			}
			if current.TesterUUID != testerUUID {
				changes["tester_uuid"] = testerUUID
			}
			if len(changes) == 0 {
				res.Unchanged++
				continue
			}
			if err := tx.Model(&models.BoxAccounting{}).Where("serial_num = ?", r.SerialNum).Updates(changes).Error; err != nil {
				return err
			}
			im.warnf("box_accounting", "updated box %d: %s", r.SerialNum, changedFields(changes))
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

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
