package importer

import (
	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

const defaultCountry = "Россия"

// importNames is the shared set-reconciliation path for name-only
// dictionaries: names present in the source but absent in the store
// are inserted, everything already present counts as unchanged.
// Dictionaries are never updated or deleted here.
func (im *Importer) importNames(fetch func() ([]string, error), model interface{}, newRow func(name string) interface{}) Result {
	names, err := fetch()
	if err != nil {
		return sourceErr(err)
	}
	if len(names) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		existing, err := namedRows(tx, model)
		if err != nil {
			return err
		}
		for _, name := range names {
			if _, ok := existing[name]; ok {
				res.Unchanged++
				continue
			}
			if err := tx.Create(newRow(name)).Error; err != nil {
				return err
			}
			existing[name] = 0
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

func (im *Importer) importCountries() Result {
	return im.importNames(im.src.Countries, &models.Country{}, func(name string) interface{} {
		return &models.Country{Name: name}
	})
}

// importCities assigns every city to the default country, creating it
// on first use.
func (im *Importer) importCities() Result {
	names, err := im.src.Cities()
	if err != nil {
		return sourceErr(err)
	}
	if len(names) == 0 {
		return errorResult("source returned no rows")
	}

	var res Result
	err = im.db.Transaction(func(tx *gorm.DB) error {
		cat, err := newCatalog(tx, withCountries, withCities)
		if err != nil {
			return err
		}
		countryID, ok := cat.Countries[defaultCountry]
		if !ok {
			country := models.Country{Name: defaultCountry}
			if err := tx.Create(&country).Error; err != nil {
				return err
			}
			countryID = country.ID
			im.warnf("cities", "country %q was missing, created", defaultCountry)
		}
		for _, name := range names {
			if _, ok := cat.Cities[name]; ok {
				res.Unchanged++
				continue
			}
			if err := tx.Create(&models.City{Name: name, CountryID: countryID}).Error; err != nil {
				return err
			}
			cat.Cities[name] = 0
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

func (im *Importer) importCurrencies() Result {
	return im.importNames(im.src.Currencies, &models.Currency{}, func(name string) interface{} {
		return &models.Currency{Name: name}
	})
}

func (im *Importer) importEquipmentTypes() Result {
	return im.importNames(im.src.EquipmentTypes, &models.EquipmentType{}, func(name string) interface{} {
		return &models.EquipmentType{Name: name}
	})
}

func (im *Importer) importCounterpartyForms() Result {
	return im.importNames(im.src.CounterpartyForms, &models.CounterpartyForm{}, func(name string) interface{} {
		return &models.CounterpartyForm{Name: name}
	})
}
