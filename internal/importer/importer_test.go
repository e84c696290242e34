package importer

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/kis2"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "importer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = db.AutoMigrate(
		&models.Country{},
		&models.City{},
		&models.Currency{},
		&models.EquipmentType{},
		&models.CounterpartyForm{},
		&models.CabinetMaterial{},
		&models.IPRating{},
		&models.Manufacturer{},
		&models.Counterparty{},
		&models.Person{},
		&models.Work{},
		&models.OrderStatus{},
		&models.Order{},
		&models.OrderComment{},
		&models.ControlCabinet{},
		&models.BoxAccounting{},
		&models.TaskStatus{},
		&models.TaskPaymentStatus{},
		&models.Task{},
		&models.Timing{},
	).Error
	require.NoError(t, err)
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// stubSource returns canned rows; a non-nil err<Entity> makes the
// matching fetch fail.
type stubSource struct {
	countries   []string
	cities      []string
	currencies  []string
	equipTypes  []string
	forms       []string
	mans        []kis2.ManufacturerRow
	companies   []kis2.CounterpartyRow
	people      []kis2.PersonRow
	works       []kis2.WorkRow
	orders      []kis2.OrderRow
	comments    []kis2.CommentRow
	cabinets    []kis2.CabinetRow
	boxes       []kis2.BoxRow
	tasks       []kis2.TaskRow
	timings  []kis2.TimingRow
	errWorks error
}

func (s *stubSource) Countries() ([]string, error)         { return s.countries, nil }
func (s *stubSource) Cities() ([]string, error)            { return s.cities, nil }
func (s *stubSource) Currencies() ([]string, error)        { return s.currencies, nil }
func (s *stubSource) EquipmentTypes() ([]string, error)    { return s.equipTypes, nil }
func (s *stubSource) CounterpartyForms() ([]string, error) { return s.forms, nil }

func (s *stubSource) Manufacturers() ([]kis2.ManufacturerRow, error) { return s.mans, nil }
func (s *stubSource) Counterparties() ([]kis2.CounterpartyRow, error) {
	return s.companies, nil
}
func (s *stubSource) People() ([]kis2.PersonRow, error) { return s.people, nil }
func (s *stubSource) Works() ([]kis2.WorkRow, error)    { return s.works, s.errWorks }
func (s *stubSource) Orders() ([]kis2.OrderRow, error)  { return s.orders, nil }
func (s *stubSource) OrderComments() ([]kis2.CommentRow, error) {
	return s.comments, nil
}
func (s *stubSource) Cabinets() ([]kis2.CabinetRow, error) { return s.cabinets, nil }
func (s *stubSource) BoxAccounting() ([]kis2.BoxRow, error) {
	return s.boxes, nil
}
func (s *stubSource) Tasks() ([]kis2.TaskRow, error)     { return s.tasks, nil }
func (s *stubSource) Timings() ([]kis2.TimingRow, error) { return s.timings, nil }

func fullSource() *stubSource {
	cost := 1500.0
	return &stubSource{
		countries:  []string{"Россия", "Германия"},
		cities:     []string{"Санкт-Петербург", "Москва"},
		currencies: []string{"руб", "евро"},
		equipTypes: []string{"Контроллер"},
		forms:      []string{"ООО", "ИП"},
		mans: []kis2.ManufacturerRow{
			{Name: "Siemens", Country: "Германия"},
			{Name: "ОВЕН", Country: "Россия"},
		},
		companies: []kis2.CounterpartyRow{
			{Name: "Акме", Form: "ООО", City: "Москва", Note: "старый клиент"},
			{Name: "Вектор", Form: "ИП", Note: ""},
		},
		people: []kis2.PersonRow{
			{Surname: "Иванов", Name: "Иван", Patronymic: "Иванович", Phone: "+7 900 000-00-01", Email: "ivanov@acme.ru", Company: "Акме"},
			{Surname: "Петров", Name: "Пётр", Phone: "+7 900 000-00-02"},
		},
		works: []kis2.WorkRow{
			{Name: "Разработка схемы", Description: "электрическая схема"},
			{Name: "Сборка", Description: ""},
			{Name: "Программирование", Description: "ПЛК"},
		},
		orders: []kis2.OrderRow{
			{
				Serial:         "001-03-2024",
				Name:           "Шкаф управления вентиляцией",
				Customer:       "Акме",
				Priority:       5,
				Status:         "В работе",
				StartMoment:    "2024-03-01T09:00:00Z",
				DeadlineMoment: "2024-04-01T09:00:00Z",
				Works:          []string{"Разработка схемы", "Сборка"},
				MaterialsCost:  100000,
				WorkCost:       50000,
			},
			{
				Serial:   "002-03-2024",
				Name:     "Щит автоматики",
				Customer: "Вектор",
				Priority: 0,
				Status:   "На согласовании",
			},
		},
		comments: []kis2.CommentRow{
			{OrderSerial: "001-03-2024", Person: "Иванов Иван Иванович", Text: "согласовано", MomentOfCreation: "2024-03-02T10:00:00Z"},
		},
		cabinets: []kis2.CabinetRow{
			{
				Name: "ШУ-01", Model: "CE", VendorCode: "8P.083", Material: "Металл", IP: "IP54",
				Manufacturer: "Siemens", Currency: "руб", Price: 20000, Height: 800, Width: 600, Depth: 250,
				Relevance: true, PriceDate: "2024-02-15",
			},
		},
		boxes: []kis2.BoxRow{
			{
				SerialNum: 101, Name: "ШУ вентиляции", OrderSerial: "001-03-2024",
				SchemeDeveloper: "Иванов Иван Иванович", Assembler: "Петров Пётр",
				Tester: "Иванов Иван Иванович",
			},
		},
		tasks: []kis2.TaskRow{
			{
				ID: 42, Name: "Собрать шкаф", Description: "по схеме",
				Executor: "Петров Пётр", OrderSerial: "001-03-2024",
				PlannedDuration: "P1DT1H3M0S", ActualDuration: "PT0H0M0S",
				CreationMoment: "2024-03-01T10:00:00Z",
				Status:         "В работе", PaymentStatus: "Возможна", Cost: &cost,
			},
		},
		timings: []kis2.TimingRow{
			{OrderSerial: "001-03-2024", TaskID: 42, Executor: "Петров Пётр", Time: "PT2H30M0S", Date: "2024-03-05"},
		},
	}
}

func newTestImporter(t *testing.T, src Source) (*Importer, *gorm.DB) {
	db := newTestDB(t)
	return New(db, src, testLogger(), 3), db
}

func TestImportAllIdempotent(t *testing.T) {
	im, _ := newTestImporter(t, fullSource())

	first := im.ImportAll()
	assert.Equal(t, StatusSuccess, first.Status)
	assert.NotZero(t, first.TotalAdded)
	assert.Zero(t, first.TotalUpdated)
	for name, res := range first.Details {
		assert.Equalf(t, StatusSuccess, res.Status, "entity %s: %s", name, res.Message)
	}

	second := im.ImportAll()
	assert.Equal(t, StatusSuccess, second.Status)
	assert.Zero(t, second.TotalAdded)
	assert.Zero(t, second.TotalUpdated)
	assert.Equal(t, first.TotalAdded, second.TotalUnchanged)
}

func TestDictionariesNeverDuplicate(t *testing.T) {
	im, db := newTestImporter(t, fullSource())

	for i := 0; i < 3; i++ {
		res := im.ImportEntity(Countries)
		require.Equal(t, StatusSuccess, res.Status)
	}

	var count int
	require.NoError(t, db.Model(&models.Country{}).Count(&count).Error)
	assert.Equal(t, 2, count)
}

func TestManufacturersCreateMissingCountry(t *testing.T) {
	src := fullSource()
	src.countries = []string{"Россия"} // Германия missing on purpose
	im, db := newTestImporter(t, src)

	require.Equal(t, StatusSuccess, im.ImportEntity(Countries).Status)
	res := im.ImportEntity(Manufacturers)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 2, res.Added)

	var country models.Country
	require.NoError(t, db.Where("name = ?", "Германия").First(&country).Error)
}

func TestCounterpartyFieldDiff(t *testing.T) {
	src := fullSource()
	im, db := newTestImporter(t, src)

	for _, et := range []EntityType{Countries, Cities, CounterpartyForms, Counterparties} {
		require.Equal(t, StatusSuccess, im.ImportEntity(et).Status)
	}

	var before models.Counterparty
	require.NoError(t, db.Where("name = ?", "Акме").First(&before).Error)

	src.companies[0].Note = "новый клиент"
	res := im.ImportEntity(Counterparties)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Unchanged)

	var after models.Counterparty
	require.NoError(t, db.Where("name = ?", "Акме").First(&after).Error)
	assert.Equal(t, "новый клиент", after.Note)
	assert.Equal(t, before.FormID, after.FormID)
	require.NotNil(t, after.CityID)
	assert.Equal(t, *before.CityID, *after.CityID)
}

func TestOrderWorksSetDiff(t *testing.T) {
	src := fullSource()
	im, db := newTestImporter(t, src)

	for _, et := range []EntityType{Countries, Cities, CounterpartyForms, Counterparties, Works, OrderStatuses, Orders} {
		require.Equal(t, StatusSuccess, im.ImportEntity(et).Status)
	}

	src.orders[0].Works = []string{"Сборка", "Программирование"}
	res := im.ImportEntity(Orders)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Updated)

	var order models.Order
	require.NoError(t, db.Preload("Works").Where("serial = ?", "001-03-2024").First(&order).Error)
	names := make([]string, 0, len(order.Works))
	for _, w := range order.Works {
		names = append(names, w.Name)
	}
	assert.ElementsMatch(t, []string{"Сборка", "Программирование"}, names)
}

func TestOrderPriorityNormalized(t *testing.T) {
	src := fullSource()
	src.orders[0].Priority = 11
	im, db := newTestImporter(t, src)

	for _, et := range []EntityType{Countries, Cities, CounterpartyForms, Counterparties, Works, OrderStatuses, Orders} {
		require.Equal(t, StatusSuccess, im.ImportEntity(et).Status)
	}

	var out []models.Order
	require.NoError(t, db.Order("serial").Find(&out).Error)
	require.Len(t, out, 2)
	assert.Nil(t, out[0].Priority, "out-of-range priority must be dropped")
	assert.Nil(t, out[1].Priority, "zero priority must be dropped")
}

func TestOrderUnknownCustomerSkipped(t *testing.T) {
	src := fullSource()
	src.orders[1].Customer = "Неизвестная фирма"
	im, db := newTestImporter(t, src)

	for _, et := range []EntityType{Countries, Cities, CounterpartyForms, Counterparties, Works, OrderStatuses} {
		require.Equal(t, StatusSuccess, im.ImportEntity(et).Status)
	}
	res := im.ImportEntity(Orders)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Added)

	var count int
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, 1, count)
}

func TestTaskKeepsSourceID(t *testing.T) {
	src := fullSource()
	im, db := newTestImporter(t, src)

	seedThroughTasks(t, im)

	var task models.Task
	require.NoError(t, db.First(&task, 42).Error)
	assert.Equal(t, "Собрать шкаф", task.Name)

	src.tasks[0].Name = "Собрать и проверить шкаф"
	res := im.ImportEntity(Tasks)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Updated)

	var count int
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	assert.Equal(t, 1, count)
	require.NoError(t, db.First(&task, 42).Error)
	assert.Equal(t, "Собрать и проверить шкаф", task.Name)
}

func TestTaskDurationsParsed(t *testing.T) {
	im, db := newTestImporter(t, fullSource())
	seedThroughTasks(t, im)

	var task models.Task
	require.NoError(t, db.First(&task, 42).Error)
	assert.Equal(t, 25*3600+3*60, int(task.PlannedDuration.Seconds()))
	assert.Zero(t, task.ActualDuration)
}

func TestTimingsDeduplicated(t *testing.T) {
	im, db := newTestImporter(t, fullSource())
	seedThroughTasks(t, im)

	first := im.ImportEntity(Timings)
	require.Equal(t, StatusSuccess, first.Status)
	assert.Equal(t, 1, first.Added)

	second := im.ImportEntity(Timings)
	require.Equal(t, StatusSuccess, second.Status)
	assert.Zero(t, second.Added)
	assert.Equal(t, 1, second.Unchanged)

	var count int
	require.NoError(t, db.Model(&models.Timing{}).Count(&count).Error)
	assert.Equal(t, 1, count)
}

func TestBoxAccountingSkipsUnknownPerson(t *testing.T) {
	src := fullSource()
	src.boxes[0].Assembler = "Сидоров Сидор"
	im, db := newTestImporter(t, src)
	seedThroughTasks(t, im)

	res := im.ImportEntity(BoxAccounting)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Zero(t, res.Added)

	var count int
	require.NoError(t, db.Model(&models.BoxAccounting{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCabinetSynthesizesMaterialAndType(t *testing.T) {
	im, db := newTestImporter(t, fullSource())
	for _, et := range []EntityType{Countries, Currencies, EquipmentTypes, Manufacturers} {
		require.Equal(t, StatusSuccess, im.ImportEntity(et).Status)
	}

	res := im.ImportEntity(Cabinets)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Added)

	var material models.CabinetMaterial
	require.NoError(t, db.Where("name = ?", "Металл").First(&material).Error)
	var eqType models.EquipmentType
	require.NoError(t, db.Where("name = ?", cabinetEquipmentType).First(&eqType).Error)
}

func TestOrderStatusesSelfHeal(t *testing.T) {
	im, db := newTestImporter(t, fullSource())

	res := im.ImportEntity(OrderStatuses)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 8, res.Added)

	require.NoError(t, db.Model(&models.OrderStatus{}).Where("id = ?", 3).
		Update("description", "испорчено").Error)

	res = im.ImportEntity(OrderStatuses)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 7, res.Unchanged)
}

func TestImportAllIsolatesFailures(t *testing.T) {
	src := fullSource()
	src.errWorks = errors.New("connection reset")
	im, _ := newTestImporter(t, src)

	report := im.ImportAll()

	assert.Equal(t, StatusError, report.Details[Works.String()].Status)
	assert.Equal(t, StatusSuccess, report.Details[Countries.String()].Status)
	assert.Equal(t, StatusSuccess, report.Details[Counterparties.String()].Status)
	// orders still import: they only need counterparties and statuses
	assert.Equal(t, StatusSuccess, report.Details[Orders.String()].Status)
}

func TestEmptySourceIsError(t *testing.T) {
	src := fullSource()
	src.works = nil
	im, _ := newTestImporter(t, src)

	res := im.ImportEntity(Works)
	assert.Equal(t, StatusError, res.Status)
	assert.NotEmpty(t, res.Message)
}

func TestParseEntityType(t *testing.T) {
	et, err := ParseEntityType("orders")
	require.NoError(t, err)
	assert.Equal(t, Orders, et)

	_, err = ParseEntityType("nonsense")
	assert.True(t, errors.Is(err, ErrUnknownEntity))
}

// seedThroughTasks imports everything tasks and their dependents need.
func seedThroughTasks(t *testing.T, im *Importer) {
	t.Helper()
	for _, et := range []EntityType{
		Countries, Cities, Currencies, EquipmentTypes, CounterpartyForms,
		Manufacturers, Counterparties, People, Works, OrderStatuses, Orders, Tasks,
	} {
		require.Equalf(t, StatusSuccess, im.ImportEntity(et).Status, "entity %s", et)
	}
}
