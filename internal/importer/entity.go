package importer

import "github.com/pkg/errors"

// EntityType is the closed set of importable entity types. The numeric
// order is the foreign-key dependency order: a dictionary must be
// importable before anything that resolves names against it.
type EntityType int

const (
	Countries EntityType = iota
	Cities
	Currencies
	EquipmentTypes
	CounterpartyForms
	Manufacturers
	Counterparties
	People
	Works
	OrderStatuses
	Orders
	OrderComments
	Cabinets
	BoxAccounting
	Tasks
	Timings
)

// ImportOrder is the fixed sequence ImportAll walks.
var ImportOrder = []EntityType{
	Countries,
	Cities,
	Currencies,
	EquipmentTypes,
	CounterpartyForms,
	Manufacturers,
	Counterparties,
	People,
	Works,
	OrderStatuses,
	Orders,
	OrderComments,
	Cabinets,
	BoxAccounting,
	Tasks,
	Timings,
}

var entityNames = map[EntityType]string{
	Countries:         "countries",
	Cities:            "cities",
	Currencies:        "currencies",
	EquipmentTypes:    "equipment_types",
	CounterpartyForms: "counterparty_forms",
	Manufacturers:     "manufacturers",
	Counterparties:    "companies",
	People:            "people",
	Works:             "works",
	OrderStatuses:     "order_statuses",
	Orders:            "orders",
	OrderComments:     "order_comments",
	Cabinets:          "boxes",
	BoxAccounting:     "box_accounting",
	Tasks:             "tasks",
	Timings:           "timings",
}

func (e EntityType) String() string {
	if name, ok := entityNames[e]; ok {
		return name
	}
	return "unknown"
}

var ErrUnknownEntity = errors.New("unknown entity type")

// ParseEntityType maps the public trigger name (URL segment, message
// field, CLI flag) back to its EntityType.
func ParseEntityType(name string) (EntityType, error) {
	for e, n := range entityNames {
		if n == name {
			return e, nil
		}
	}
	return 0, errors.Wrap(ErrUnknownEntity, name)
}
