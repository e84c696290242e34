package kis2

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeKIS2 serves the Django-flavored login flow plus a set of canned
// /api/<collection>/ payloads.
func fakeKIS2(t *testing.T, collections map[string]interface{}) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<form><input name="csrfmiddlewaretoken" value="tok123"></form>`)
			return
		}
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("username") != "admin" || r.PostFormValue("csrfmiddlewaretoken") == "" {
			// bad credentials: Django lands you back on the login page
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "login failed")
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/api/") : len(r.URL.Path)-1]
		payload, ok := collections[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(payload))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{BaseURL: srv.URL, Username: "admin", Password: "secret"}, nil)
}

func TestFetchRowsLoginAndDecode(t *testing.T) {
	srv := fakeKIS2(t, map[string]interface{}{
		"Countries": []map[string]interface{}{
			{"id": 1, "name": "Россия"},
			{"id": 2, "name": "Китай"},
		},
	})

	c := newTestClient(srv)
	rows, err := c.FetchRows("Countries")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Россия", rows[0].Str("name"))
	id, ok := rows[1].Int("id")
	require.True(t, ok)
	require.Equal(t, 2, id)
}

func TestFetchRowsBadCredentials(t *testing.T) {
	srv := fakeKIS2(t, nil)
	c := NewClient(Config{BaseURL: srv.URL, Username: "nobody", Password: "x"}, nil)
	_, err := c.FetchRows("Countries")
	require.Error(t, err)
	require.Contains(t, err.Error(), "login rejected")
}

func TestManufacturersDenormalizeCountry(t *testing.T) {
	srv := fakeKIS2(t, map[string]interface{}{
		"Countries": []map[string]interface{}{
			{"id": 7, "name": "Россия"},
		},
		"Manufacturers": []map[string]interface{}{
			{"id": 1, "name": "Zentec", "country": 7},
			{"id": 2, "name": "NoCountry", "country": 99},
		},
	})

	c := newTestClient(srv)
	rows, err := c.Manufacturers()
	require.NoError(t, err)
	require.Equal(t, []ManufacturerRow{
		{Name: "Zentec", Country: "Россия"},
		{Name: "NoCountry", Country: ""},
	}, rows)
}

func TestOrdersStatusAndWorksDenormalization(t *testing.T) {
	srv := fakeKIS2(t, map[string]interface{}{
		"Company": []map[string]interface{}{
			{"id": 3, "name": "Acme"},
		},
		"Work": []map[string]interface{}{
			{"id": 10, "name": "Монтаж"},
			{"id": 11, "name": "Пуско-наладка"},
		},
		"Order": []map[string]interface{}{
			{
				"serial":         "001-04-2024",
				"name":           "Шкаф",
				"customer":       3,
				"priority":       5,
				"status":         2,
				"works":          []int{10, 11, 99},
				"dedline_moment": "2024-05-01T10:00:00Z",
				"materialsCost":  150.5,
				"materialsPaid":  true,
			},
			{"name": "no serial, skipped"},
		},
	})

	c := newTestClient(srv)
	rows, err := c.Orders()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	require.Equal(t, "001-04-2024", got.Serial)
	require.Equal(t, "Acme", got.Customer)
	require.Equal(t, "В работе", got.Status)
	require.Equal(t, []string{"Монтаж", "Пуско-наладка"}, got.Works)
	require.Equal(t, "2024-05-01T10:00:00Z", got.DeadlineMoment)
	require.Equal(t, 150.5, got.MaterialsCost)
	require.True(t, got.MaterialsPaid)
}

func TestTasksDurationsConverted(t *testing.T) {
	srv := fakeKIS2(t, map[string]interface{}{
		"Person": []map[string]interface{}{
			{"id": 1, "surname": "Иванов", "name": "Иван", "patronymic": "Иванович"},
		},
		"TaskStatus": []map[string]interface{}{
			{"id": 2, "name": "В работе"},
		},
		"PaymentStatus": []map[string]interface{}{
			{"id": 4, "name": "Оплачена"},
		},
		"Task": []map[string]interface{}{
			{
				"id":                42,
				"name":              "Сборка",
				"executor":          1,
				"status":            2,
				"payment_status_id": 4,
				"planned_duration":  "1 01:03:00",
				"actual_duration":   "00:30:00",
				"order":             "001-04-2024",
				"cost":              1000.0,
				"parent_task":       41,
			},
		},
	})

	c := newTestClient(srv)
	rows, err := c.Tasks()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := rows[0]
	require.Equal(t, 42, got.ID)
	require.Equal(t, "Иванов Иван Иванович", got.Executor)
	require.Equal(t, "P1DT1H3M0S", got.PlannedDuration)
	require.Equal(t, "PT0H30M0S", got.ActualDuration)
	require.Equal(t, "В работе", got.Status)
	require.Equal(t, "Оплачена", got.PaymentStatus)
	require.NotNil(t, got.Cost)
	require.Equal(t, 1000.0, *got.Cost)
	require.NotNil(t, got.ParentTaskID)
	require.Equal(t, 41, *got.ParentTaskID)
	require.Nil(t, got.RootTaskID)
}
