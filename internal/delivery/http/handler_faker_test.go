package http_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/models"
)

func fakeOrder(f *gofakeit.Faker, seq int) models.Order {
	priority := int(f.Number(1, 10))
	start := f.DateRange(
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	return models.Order{
		Serial:        fmt.Sprintf("%03d-%02d-%04d", seq, start.Month(), start.Year()),
		Name:          f.ProductName(),
		CustomerID:    uint(f.Number(1, 500)),
		Priority:      &priority,
		StatusID:      uint(f.Number(1, 8)),
		StartMoment:   &start,
		MaterialsCost: f.Price(1_000, 500_000),
		MaterialsPaid: f.Bool(),
		WorkCost:      f.Price(1_000, 200_000),
		WorkPaid:      f.Bool(),
		Works: []models.Work{
			{ID: uint(f.Number(1, 50)), Name: f.ProductName()},
		},
	}
}

func Test_GetAllOrders_Many(t *testing.T) {
	f := gofakeit.New(42)
	var orders []models.Order
	for i := 0; i < 20; i++ {
		orders = append(orders, fakeOrder(f, i+1))
	}

	s := &svcStub{
		getAll: func() ([]models.Order, error) { return orders, nil },
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	newRouter(s).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, len(orders))
	for i, o := range resp.Data {
		require.Equal(t, orders[i].Serial, o.Serial)
	}
}
