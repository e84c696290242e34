package importer

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/kis2"
)

// Source is the slice of the legacy API the engine pulls from. The
// concrete implementation lives in the kis2 package; tests swap in a
// stub.
type Source interface {
	Countries() ([]string, error)
	Cities() ([]string, error)
	Currencies() ([]string, error)
	EquipmentTypes() ([]string, error)
	CounterpartyForms() ([]string, error)
	Manufacturers() ([]kis2.ManufacturerRow, error)
	Counterparties() ([]kis2.CounterpartyRow, error)
	People() ([]kis2.PersonRow, error)
	Works() ([]kis2.WorkRow, error)
	Orders() ([]kis2.OrderRow, error)
	OrderComments() ([]kis2.CommentRow, error)
	Cabinets() ([]kis2.CabinetRow, error)
	BoxAccounting() ([]kis2.BoxRow, error)
	Tasks() ([]kis2.TaskRow, error)
	Timings() ([]kis2.TimingRow, error)
}

// Importer reconciles legacy records into the normalized schema one
// entity type at a time, each inside its own transaction.
type Importer struct {
	db  *gorm.DB
	src Source
	log *logrus.Logger
	loc *time.Location
}

// New builds an Importer. cmpOffsetHours is the fixed UTC offset order
// moments are normalized to before comparison.
func New(db *gorm.DB, src Source, log *logrus.Logger, cmpOffsetHours int) *Importer {
	return &Importer{
		db:  db,
		src: src,
		log: log,
		loc: time.FixedZone("import-cmp", cmpOffsetHours*3600),
	}
}

// ImportEntity runs a single entity-type import and reports its
// tri-count outcome. Failures are captured in the Result rather than
// returned, so callers can fold results from several entity types.
func (im *Importer) ImportEntity(et EntityType) Result {
	switch et {
	case Countries:
		return im.importCountries()
	case Cities:
		return im.importCities()
	case Currencies:
		return im.importCurrencies()
	case EquipmentTypes:
		return im.importEquipmentTypes()
	case CounterpartyForms:
		return im.importCounterpartyForms()
	case Manufacturers:
		return im.importManufacturers()
	case Counterparties:
		return im.importCounterparties()
	case People:
		return im.importPeople()
	case Works:
		return im.importWorks()
	case OrderStatuses:
		return im.importOrderStatuses()
	case Orders:
		return im.importOrders()
	case OrderComments:
		return im.importOrderComments()
	case Cabinets:
		return im.importCabinets()
	case BoxAccounting:
		return im.importBoxAccounting()
	case Tasks:
		return im.importTasks()
	case Timings:
		return im.importTimings()
	default:
		return errorResult("unknown entity type")
	}
}

// ImportAll runs every entity type in dependency order. A failed
// entity type is recorded and skipped; the run carries on so that
// independent entity types still import.
func (im *Importer) ImportAll() RunReport {
	report := newRunReport()
	for _, et := range ImportOrder {
		res := im.ImportEntity(et)
		if res.Status == StatusError {
			im.log.WithFields(logrus.Fields{
				"entity": et.String(),
				"error":  res.Message,
			}).Error("entity import failed")
		} else {
			im.log.WithFields(logrus.Fields{
				"entity":    et.String(),
				"added":     res.Added,
				"updated":   res.Updated,
				"unchanged": res.Unchanged,
			}).Info("entity import done")
		}
		report.fold(et, res)
	}
	return report
}

func (im *Importer) warnf(entity, format string, args ...interface{}) {
	im.log.WithField("entity", entity).Warnf(format, args...)
}

// sourceErr wraps a fetch failure into an error Result.
func sourceErr(err error) Result {
	return errorResult("fetch from source failed: " + err.Error())
}
