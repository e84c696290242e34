package importer

import (
	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

// importManufacturers is add-only. Missing countries are created up
// front so every manufacturer can resolve its country.
func (im *Importer) importManufacturers() Result {
	rows, err := im.src.Manufacturers()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		cat, err := newCatalog(tx, withCountries, withManufs)
		if err != nil {
			return err
		}
		for _, r := range rows {
			if r.Country == "" {
				continue
			}
			if _, ok := cat.Countries[r.Country]; !ok {
				country := models.Country{Name: r.Country}
				if err := tx.Create(&country).Error; err != nil {
					return err
				}
				cat.Countries[r.Country] = country.ID
				im.warnf("manufacturers", "country %q was missing, created", r.Country)
			}
		}
		for _, r := range rows {
			if _, ok := cat.Manufacturers[r.Name]; ok {
				res.Unchanged++
				continue
			}
			countryID, ok := cat.Countries[r.Country]
			if !ok {
				im.warnf("manufacturers", "no country for manufacturer %q, skipped", r.Name)
				continue
			}
			if err := tx.Create(&models.Manufacturer{Name: r.Name, CountryID: countryID}).Error; err != nil {
				return err
			}
			cat.Manufacturers[r.Name] = 0
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

func (im *Importer) importCounterparties() Result {
	rows, err := im.src.Counterparties()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		cat, err := newCatalog(tx, withForms, withCities)
		if err != nil {
			return err
		}
		var existing []models.Counterparty
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		byName := make(map[string]models.Counterparty, len(existing))
		for _, c := range existing {
			byName[c.Name] = c
		}

		for _, r := range rows {
			formID, ok := cat.Forms[r.Form]
			if !ok {
				im.warnf("companies", "form %q not found, skipped %q", r.Form, r.Name)
				continue
			}
			var cityID *uint
			if r.City != "" {
				if id, ok := cat.Cities[r.City]; ok {
					cityID = &id
				}
			}

			current, exists := byName[r.Name]
			if !exists {
				cp := models.Counterparty{Name: r.Name, Note: r.Note, FormID: formID, CityID: cityID}
				if err := tx.Create(&cp).Error; err != nil {
					return err
				}
				res.Added++
				continue
			}

			changes := map[string]interface{}{}
			if current.FormID != formID {
				changes["form_id"] = formID
			}
			if !uintPtrEqual(current.CityID, cityID) {
				changes["city_id"] = cityID
			}
			if current.Note != r.Note {
				changes["note"] = r.Note
			}
			if len(changes) == 0 {
				res.Unchanged++
				continue
			}
			if err := tx.Model(&models.Counterparty{}).Where("id = ?", current.ID).Updates(changes).Error; err != nil {
				return err
			}
			im.warnf("companies", "updated %q: %s", r.Name, changedFields(changes))
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

// importPeople keys people by "surname|name|patronymic" since the
// source has no stable person id.
func (im *Importer) importPeople() Result {
	rows, err := im.src.People()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		cat, err := newCatalog(tx, withCounterparties)
		if err != nil {
			return err
		}
		var existing []models.Person
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		byKey := make(map[string]models.Person, len(existing))
		for _, p := range existing {
			byKey[p.Surname+"|"+p.Name+"|"+p.Patronymic] = p
		}

		for _, r := range rows {
			var companyID *uint
			if r.Company != "" {
				if id, ok := cat.Counterparties[r.Company]; ok {
					companyID = &id
				}
			}
			key := r.Surname + "|" + r.Name + "|" + r.Patronymic

			current, exists := byKey[key]
			if !exists {
				p := models.Person{
					Surname:        r.Surname,
					Name:           r.Name,
					Patronymic:     r.Patronymic,
					Phone:          r.Phone,
					Email:          r.Email,
					CounterpartyID: companyID,
					Active:         true,
				}
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
				res.Added++
				continue
			}

			changes := map[string]interface{}{}
			if current.Phone != r.Phone {
				changes["phone"] = r.Phone
			}
			if current.Email != r.Email {
				changes["email"] = r.Email
			}
			if !uintPtrEqual(current.CounterpartyID, companyID) {
				changes["counterparty_id"] = companyID
			}
			if len(changes) == 0 {
				res.Unchanged++
				continue
			}
			if err := tx.Model(&models.Person{}).Where("uuid = ?", current.UUID).Updates(changes).Error; err != nil {
				return err
			}
			im.warnf("people", "updated %q: %s", current.FullName(), changedFields(changes))
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

func (im *Importer) importWorks() Result {
	rows, err := im.src.Works()
	if err != nil {
		return sourceErr(err)
	}
	if len(rows) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Work
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}
		byName := make(map[string]models.Work, len(existing))
		for _, w := range existing {
			byName[w.Name] = w
		}

		for _, r := range rows {
			current, exists := byName[r.Name]
			if !exists {
				w := models.Work{Name: r.Name, Description: r.Description, Active: true}
				if err := tx.Create(&w).Error; err != nil {
					return err
				}
				res.Added++
				continue
			}
			if current.Description == r.Description {
				res.Unchanged++
				continue
			}
			if err := tx.Model(&models.Work{}).Where("id = ?", current.ID).
				Update("description", r.Description).Error; err != nil {
				return err
			}
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
