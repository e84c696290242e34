package service_test

import (
	"testing"
	"time"

	gorm "github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/importer"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/repository"
	svc "github.com/voronovmaksim88/KIS3-v3r3/internal/service"
)

type pgStub struct {
	created    models.Order
	getResp    models.Order
	getErr     error
	getAllResp []models.Order
	getAllErr  error
	createErr  error
	nextSerial string
	serialErr  error
}

func (p *pgStub) Create(ord models.Order) error      { p.created = ord; return p.createErr }
func (p *pgStub) Get(string) (models.Order, error)   { return p.getResp, p.getErr }
func (p *pgStub) GetAll() ([]models.Order, error)    { return p.getAllResp, p.getAllErr }
func (p *pgStub) NextSerial(time.Time) (string, error) {
	return p.nextSerial, p.serialErr
}

var _ repository.OrderPostgres = (*pgStub)(nil)

type runnerStub struct {
	lastEntity importer.EntityType
	result     importer.Result
	report     importer.RunReport
}

func (r *runnerStub) ImportEntity(et importer.EntityType) importer.Result {
	r.lastEntity = et
	return r.result
}
func (r *runnerStub) ImportAll() importer.RunReport { return r.report }

var _ svc.ImportRunner = (*runnerStub)(nil)

func newService(pg *pgStub, runner *runnerStub) *svc.Service {
	return svc.NewService(&repository.Repository{OrderPostgres: pg}, runner)
}

func makeValidOrder(serial string) models.Order {
	return models.Order{
		Serial:     serial,
		Name:       "Шкаф управления",
		CustomerID: 7,
		StatusID:   1,
	}
}

func TestService_CreateOrder_AssignsSerialWhenEmpty(t *testing.T) {
	pg := &pgStub{nextSerial: "003-05-2025"}
	s := newService(pg, &runnerStub{})

	ord := makeValidOrder("")
	out, err := s.CreateOrder(ord)
	require.NoError(t, err)
	require.Equal(t, "003-05-2025", out.Serial)
	require.Equal(t, "003-05-2025", pg.created.Serial)
}

func TestService_CreateOrder_RejectsBadSerial(t *testing.T) {
	s := newService(&pgStub{}, &runnerStub{})

	_, err := s.CreateOrder(makeValidOrder("5-2025"))
	require.Error(t, err)
	require.ErrorIs(t, err, svc.ErrValidation)
}

func TestService_CreateOrder_RejectsMissingCustomer(t *testing.T) {
	s := newService(&pgStub{}, &runnerStub{})

	ord := makeValidOrder("001-05-2025")
	ord.CustomerID = 0
	_, err := s.CreateOrder(ord)
	require.Error(t, err)
	require.ErrorIs(t, err, svc.ErrValidation)
}

func TestService_CreateOrder_RejectsOutOfRangePriority(t *testing.T) {
	s := newService(&pgStub{}, &runnerStub{})

	ord := makeValidOrder("001-05-2025")
	p := 42
	ord.Priority = &p
	_, err := s.CreateOrder(ord)
	require.Error(t, err)
	require.ErrorIs(t, err, svc.ErrValidation)
}

func TestService_GetOrder_NotFound(t *testing.T) {
	pg := &pgStub{getErr: gorm.ErrRecordNotFound}
	s := newService(pg, &runnerStub{})

	_, err := s.GetOrder("999-01-2030")
	require.ErrorIs(t, err, svc.ErrNotFound)
}

func TestService_GetOrder_OK(t *testing.T) {
	pg := &pgStub{getResp: makeValidOrder("001-05-2025")}
	s := newService(pg, &runnerStub{})

	got, err := s.GetOrder("001-05-2025")
	require.NoError(t, err)
	require.Equal(t, "001-05-2025", got.Serial)
}

func TestService_NewSerial_Delegates(t *testing.T) {
	pg := &pgStub{nextSerial: "001-09-2026"}
	s := newService(pg, &runnerStub{})

	serial, err := s.NewSerial()
	require.NoError(t, err)
	require.Equal(t, "001-09-2026", serial)
}

func TestService_ImportEntity_ResolvesName(t *testing.T) {
	runner := &runnerStub{result: importer.Result{Status: importer.StatusSuccess, Added: 3}}
	s := newService(&pgStub{}, runner)

	res, err := s.ImportEntity("manufacturers")
	require.NoError(t, err)
	require.Equal(t, 3, res.Added)
	require.Equal(t, importer.Manufacturers, runner.lastEntity)
}

func TestService_ImportEntity_UnknownName(t *testing.T) {
	s := newService(&pgStub{}, &runnerStub{})

	_, err := s.ImportEntity("spaceships")
	require.Error(t, err)
	require.True(t, errors.Is(err, importer.ErrUnknownEntity))
}

func TestService_ImportAll_PassesReportThrough(t *testing.T) {
	report := importer.RunReport{
		Status:     importer.StatusSuccess,
		TotalAdded: 12,
		Details: map[string]importer.Result{
			"countries": {Status: importer.StatusSuccess, Added: 12},
		},
	}
	s := newService(&pgStub{}, &runnerStub{report: report})

	got := s.ImportAll()
	require.Equal(t, 12, got.TotalAdded)
	require.Contains(t, got.Details, "countries")
}
