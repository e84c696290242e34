package importer

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

// ReferenceCatalog holds the name→id lookup maps resolvers translate
// source references through. It is loaded from the target store at the
// start of an entity-type transaction and treated as read-only by
// resolvers; only the engine itself extends it when it auto-creates a
// missing dictionary row.
type ReferenceCatalog struct {
	Countries      map[string]uint
	Cities         map[string]uint
	Forms          map[string]uint
	Counterparties map[string]uint
	Works          map[string]uint
	OrderStatuses  map[string]uint
	TaskStatuses   map[string]uint
	PayStatuses    map[string]uint
	Manufacturers  map[string]uint
	Currencies     map[string]uint
	EquipTypes     map[string]uint
	Materials      map[string]uint
	IPRatings      map[string]uint
	Persons        map[string]uuid.UUID // keyed by full name
	OrderSerials   map[string]struct{}
	TaskIDs        map[int]struct{}
}

type catalogLoader func(tx *gorm.DB, cat *ReferenceCatalog) error

func loadDictionary(model interface{}, dst func(cat *ReferenceCatalog) *map[string]uint) catalogLoader {
	return func(tx *gorm.DB, cat *ReferenceCatalog) error {
		rows, err := namedRows(tx, model)
		if err != nil {
			return err
		}
		*dst(cat) = rows
		return nil
	}
}

var (
	withCountries = loadDictionary(&models.Country{}, func(c *ReferenceCatalog) *map[string]uint { return &c.Countries })
	withCities    = loadDictionary(&models.City{}, func(c *ReferenceCatalog) *map[string]uint { return &c.Cities })
	withForms     = loadDictionary(&models.CounterpartyForm{}, func(c *ReferenceCatalog) *map[string]uint { return &c.Forms })
	withWorks     = loadDictionary(&models.Work{}, func(c *ReferenceCatalog) *map[string]uint { return &c.Works })
	withManufs    = loadDictionary(&models.Manufacturer{}, func(c *ReferenceCatalog) *map[string]uint { return &c.Manufacturers })
	withCurrency  = loadDictionary(&models.Currency{}, func(c *ReferenceCatalog) *map[string]uint { return &c.Currencies })
	withEquipType = loadDictionary(&models.EquipmentType{}, func(c *ReferenceCatalog) *map[string]uint { return &c.EquipTypes })
	withMaterials = loadDictionary(&models.CabinetMaterial{}, func(c *ReferenceCatalog) *map[string]uint { return &c.Materials })
	withIPRatings = loadDictionary(&models.IPRating{}, func(c *ReferenceCatalog) *map[string]uint { return &c.IPRatings })

	withCounterparties catalogLoader = func(tx *gorm.DB, cat *ReferenceCatalog) error {
		var rows []models.Counterparty
		if err := tx.Find(&rows).Error; err != nil {
			return err
		}
		cat.Counterparties = make(map[string]uint, len(rows))
		for _, r := range rows {
			cat.Counterparties[r.Name] = r.ID
		}
		return nil
	}

	withOrderStatuses catalogLoader = func(tx *gorm.DB, cat *ReferenceCatalog) error {
		var rows []models.OrderStatus
		if err := tx.Find(&rows).Error; err != nil {
			return err
		}
		cat.OrderStatuses = make(map[string]uint, len(rows))
		for _, r := range rows {
			cat.OrderStatuses[r.Name] = r.ID
		}
		return nil
	}

	withTaskStatuses catalogLoader = func(tx *gorm.DB, cat *ReferenceCatalog) error {
		var st []models.TaskStatus
		if err := tx.Find(&st).Error; err != nil {
			return err
		}
		cat.TaskStatuses = make(map[string]uint, len(st))
		for _, r := range st {
			cat.TaskStatuses[r.Name] = r.ID
		}
		var ps []models.TaskPaymentStatus
		if err := tx.Find(&ps).Error; err != nil {
			return err
		}
		cat.PayStatuses = make(map[string]uint, len(ps))
		for _, r := range ps {
			cat.PayStatuses[r.Name] = r.ID
		}
		return nil
	}

	withPersons catalogLoader = func(tx *gorm.DB, cat *ReferenceCatalog) error {
		var rows []models.Person
		if err := tx.Find(&rows).Error; err != nil {
			return err
		}
		cat.Persons = make(map[string]uuid.UUID, len(rows))
		for _, r := range rows {
			cat.Persons[r.FullName()] = r.UUID
		}
		return nil
	}

	withOrderSerials catalogLoader = func(tx *gorm.DB, cat *ReferenceCatalog) error {
		var serials []string
		if err := tx.Model(&models.Order{}).Pluck("serial", &serials).Error; err != nil {
			return err
		}
		cat.OrderSerials = make(map[string]struct{}, len(serials))
		for _, s := range serials {
			cat.OrderSerials[s] = struct{}{}
		}
		return nil
	}

	withTaskIDs catalogLoader = func(tx *gorm.DB, cat *ReferenceCatalog) error {
		var ids []int
		if err := tx.Model(&models.Task{}).Pluck("id", &ids).Error; err != nil {
			return err
		}
		cat.TaskIDs = make(map[int]struct{}, len(ids))
		for _, id := range ids {
			cat.TaskIDs[id] = struct{}{}
		}
		return nil
	}
)

// newCatalog loads only the lookups the calling entity import needs.
func newCatalog(tx *gorm.DB, loaders ...catalogLoader) (*ReferenceCatalog, error) {
	cat := &ReferenceCatalog{}
	for _, load := range loaders {
		if err := load(tx, cat); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// namedRows maps name→id for any model with Name and ID columns.
func namedRows(tx *gorm.DB, model interface{}) (map[string]uint, error) {
	rows, err := tx.Model(model).Select("id, name").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]uint)
	for rows.Next() {
		var id uint
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}
