package importer

import (
	"time"

	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

// importOrderComments is add-only: the source has no comment id, so a
// comment's creation moment is treated as its identity. Comments whose
// order or author cannot be resolved are skipped.
func (im *Importer) importOrderComments() Result {
	rows, err := im.src.OrderComments()
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
		var existing []models.OrderComment
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		seenMoments := make(map[string]struct{}, len(existing))
		for _, c := range existing {
			if c.MomentOfCreation != nil {
				seenMoments[c.MomentOfCreation.UTC().Format(time.RFC3339)] = struct{}{}
			}
		}

		for _, r := range rows {
			if r.OrderSerial == "" || r.Person == "" {
				im.warnf("order_comments", "comment with incomplete data, skipped")
				continue
			}
			if _, ok := cat.OrderSerials[r.OrderSerial]; !ok {
				im.warnf("order_comments", "order %q not found for comment, skipped", r.OrderSerial)
				continue
			}
			personUUID, ok := cat.Persons[r.Person]
			if !ok {
				im.warnf("order_comments", "person %q not found for comment, skipped", r.Person)
				continue
			}

			var moment *time.Time
			if r.MomentOfCreation != "" {
				if t := parseMoment(r.MomentOfCreation); t != nil {
					moment = t
				} else {
					now := time.Now()
					moment = &now
					im.warnf("order_comments", "bad creation moment %q, using current time", r.MomentOfCreation)
				}
			}

			if moment != nil {
				key := moment.UTC().Format(time.RFC3339)
				if _, dup := seenMoments[key]; dup {
					res.Unchanged++
					continue
				}
				seenMoments[key] = struct{}{}
			}

			comment := models.OrderComment{
				OrderSerial:      r.OrderSerial,
				PersonUUID:       personUUID,
				Text:             r.Text,
				MomentOfCreation: moment,
			}
			if err := tx.Create(&comment).Error; err != nil {
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
