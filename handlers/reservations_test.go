package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"restaurant-platform-api/config"
	"restaurant-platform-api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reservationBody(locationID uint, date string, overrides map[string]any) map[string]any {
	body := map[string]any{
		"customer_name":    "Budi Santoso",
		"phone":            "081234567890",
		"pax":              2,
		"reservation_date": date,
		"reservation_time": "19:00",
		"location_id":      locationID,
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

type reservationResponse struct {
	ID              uint   `json:"id"`
	OrderID         *uint  `json:"order_id"`
	QueueNumber     int    `json:"queue_number"`
	Status          string `json:"status"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
	OrderItems      []struct {
		Title    string `json:"title"`
		Quantity int    `json:"quantity"`
	} `json:"order_items"`
}

func TestQueueNumbersAreSequentialPerDate(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	for want := 1; want <= 5; want++ {
		w := doRequest(r, http.MethodPost, "/reservations/",
			reservationBody(loc.ID, "2026-09-01", nil), nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var resp reservationResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, want, resp.QueueNumber)
		assert.Equal(t, "pending", resp.Status)
	}

	// A different date runs its own counter.
	w := doRequest(r, http.MethodPost, "/reservations/",
		reservationBody(loc.ID, "2026-09-02", nil), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp reservationResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp.QueueNumber)
}

func TestQueueNumbersUnderConcurrentCreation(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	const n = 8
	var wg sync.WaitGroup
	numbers := make([]int, n)
	codes := make([]int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := doRequest(r, http.MethodPost, "/reservations/",
				reservationBody(loc.ID, "2026-09-10", nil), nil)
			codes[i] = w.Code
			if w.Code == http.StatusCreated {
				var resp reservationResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err == nil {
					numbers[i] = resp.QueueNumber
				}
			}
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		require.Equal(t, http.StatusCreated, code, "request %d", i)
	}
	sort.Ints(numbers)
	for i := 0; i < n; i++ {
		assert.Equal(t, i+1, numbers[i], "queue numbers must be 1..N with no gaps or duplicates")
	}
}

func TestReservationConfirmsLinkedOrderAtomically(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")
	item := seedMenuItem(t, "Ayam Bakar", 40000, true)
	draft := createDraft(t, r)
	headers := visitorHeaders(draft.VisitorToken)

	add := fmt.Sprintf("/orders/%d/add/%d", draft.OrderID, item.ID)
	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, add, nil, headers).Code)
	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, add, nil, headers).Code)

	w := doRequest(r, http.MethodPost, "/reservations/",
		reservationBody(loc.ID, "2026-09-01", map[string]any{"order_id": draft.OrderID}), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp reservationResponse
	decodeBody(t, w, &resp)
	require.NotNil(t, resp.OrderID)
	assert.Equal(t, draft.OrderID, *resp.OrderID)
	assert.Equal(t, 1, resp.QueueNumber)
	require.Len(t, resp.OrderItems, 1)
	assert.Equal(t, "Ayam Bakar", resp.OrderItems[0].Title)
	assert.Equal(t, 2, resp.OrderItems[0].Quantity)

	var order models.Order
	require.NoError(t, config.DB.First(&order, draft.OrderID).Error)
	assert.Equal(t, models.OrderConfirmed, order.Status)
}

func TestSecondReservationAttemptForSameOrder(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")
	item := seedMenuItem(t, "Soto", 22000, true)
	draft := createDraft(t, r)
	headers := visitorHeaders(draft.VisitorToken)

	add := fmt.Sprintf("/orders/%d/add/%d", draft.OrderID, item.ID)
	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, add, nil, headers).Code)

	body := reservationBody(loc.ID, "2026-09-01", map[string]any{"order_id": draft.OrderID})
	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/reservations/", body, nil).Code)

	// The first reservation confirmed the order, so the retry no longer
	// sees an active draft.
	w := doRequest(r, http.MethodPost, "/reservations/", body, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Original reservation is untouched.
	var count int64
	require.NoError(t, config.DB.Model(&models.Reservation{}).Where("order_id = ?", draft.OrderID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReservationRejectedWhenDraftAlreadyLinked(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	// A draft that somehow already carries a reservation must be
	// rejected before a queue number is burned.
	order := models.Order{
		VisitorToken: uuid.New(),
		Status:       models.OrderDraft,
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, config.DB.Create(&order).Error)
	existing := models.Reservation{
		OrderID:         &order.ID,
		CustomerName:    "Sari Dewi",
		Pax:             2,
		ReservationDate: "2026-09-01",
		ReservationTime: "18:00",
		LocationID:      loc.ID,
		QueueNumber:     7,
		Status:          models.ReservationPending,
	}
	require.NoError(t, config.DB.Create(&existing).Error)

	w := doRequest(r, http.MethodPost, "/reservations/",
		reservationBody(loc.ID, "2026-09-01", map[string]any{"order_id": order.ID}), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationWithExpiredDraftIs404(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	order := models.Order{
		VisitorToken: uuid.New(),
		Status:       models.OrderDraft,
		ExpiresAt:    time.Now().UTC().Add(-time.Minute),
	}
	require.NoError(t, config.DB.Create(&order).Error)

	w := doRequest(r, http.MethodPost, "/reservations/",
		reservationBody(loc.ID, "2026-09-01", map[string]any{"order_id": order.ID}), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Nothing persisted: the transaction rolled back whole.
	var reservations int64
	require.NoError(t, config.DB.Model(&models.Reservation{}).Count(&reservations).Error)
	assert.Zero(t, reservations)
	var counters int64
	require.NoError(t, config.DB.Model(&models.DailyQueueCounter{}).Count(&counters).Error)
	assert.Zero(t, counters)
}

func TestWalkInReservationHasNoOrderItems(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	w := doRequest(r, http.MethodPost, "/reservations/",
		reservationBody(loc.ID, "2026-09-01", nil), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp reservationResponse
	decodeBody(t, w, &resp)
	assert.Nil(t, resp.OrderID)
	assert.Empty(t, resp.OrderItems)
	assert.Equal(t, "19:00", resp.ReservationTime)
}

func TestDuplicateQueueSlotIsRetryableConflict(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	// A reservation occupies (date, 1) while the counter row is absent,
	// so the next mint produces 1 again and trips the unique index.
	squatter := models.Reservation{
		CustomerName:    "Walk In",
		Pax:             1,
		ReservationDate: "2026-09-01",
		ReservationTime: "12:00",
		LocationID:      loc.ID,
		QueueNumber:     1,
		Status:          models.ReservationPending,
	}
	require.NoError(t, config.DB.Create(&squatter).Error)

	w := doRequest(r, http.MethodPost, "/reservations/",
		reservationBody(loc.ID, "2026-09-01", nil), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReservationValidation(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	cases := map[string]map[string]any{
		"short name": {"customer_name": "B"},
		"zero pax":   {"pax": 0},
		"pax cap":    {"pax": 21},
		"bad date":   {"reservation_date": "01-09-2026"},
		"bad time":   {"reservation_time": "7pm"},
	}
	for name, override := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/reservations/",
				reservationBody(loc.ID, "2026-09-01", override), nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListReservationsOrderingAndFilters(t *testing.T) {
	r := setupRouter(t, nil)
	locA := seedLocation(t, "Central")
	locB := seedLocation(t, "Harbor")

	create := func(date string, locID uint) reservationResponse {
		w := doRequest(r, http.MethodPost, "/reservations/", reservationBody(locID, date, nil), nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var resp reservationResponse
		decodeBody(t, w, &resp)
		return resp
	}

	create("2026-09-01", locA.ID)
	create("2026-09-01", locB.ID)
	create("2026-09-02", locA.ID)

	w := doRequest(r, http.MethodGet, "/reservations/", nil, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)
	var listed []reservationResponse
	decodeBody(t, w, &listed)
	require.Len(t, listed, 3)

	// Most recent day first, queue order within a day.
	assert.Equal(t, "2026-09-02", listed[0].ReservationDate)
	assert.Equal(t, "2026-09-01", listed[1].ReservationDate)
	assert.Equal(t, 1, listed[1].QueueNumber)
	assert.Equal(t, 2, listed[2].QueueNumber)

	w = doRequest(r, http.MethodGet, "/reservations/?reservation_date=2026-09-01", nil, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listed)
	assert.Len(t, listed, 2)

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/reservations/?location_id=%d", locB.ID), nil, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listed)
	assert.Len(t, listed, 1)

	w = doRequest(r, http.MethodGet, "/reservations/?status=cancelled", nil, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &listed)
	assert.Empty(t, listed)
}

func TestListReservationsRequiresAdminKey(t *testing.T) {
	r := setupRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/reservations/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/reservations/", nil, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateReservationStatus(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")

	w := doRequest(r, http.MethodPost, "/reservations/", reservationBody(loc.ID, "2026-09-01", nil), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created reservationResponse
	decodeBody(t, w, &created)

	// Via query parameter.
	w = doRequest(r, http.MethodPatch,
		fmt.Sprintf("/reservations/%d/status?status=confirmed", created.ID), nil, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)
	var updated reservationResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, "confirmed", updated.Status)

	// Via body; any status may move to any other.
	w = doRequest(r, http.MethodPatch,
		fmt.Sprintf("/reservations/%d/status", created.ID),
		map[string]any{"status": "cancelled"}, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &updated)
	assert.Equal(t, "cancelled", updated.Status)

	w = doRequest(r, http.MethodPatch,
		fmt.Sprintf("/reservations/%d/status?status=seated", created.ID), nil, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPatch, "/reservations/99999/status?status=pending", nil, adminHeaders())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateReservationStatusReportsReloadFailure(t *testing.T) {
	r := setupRouter(t, nil)
	loc := seedLocation(t, "Central")
	item := seedMenuItem(t, "Gado Gado", 25000, true)
	draft := createDraft(t, r)
	headers := visitorHeaders(draft.VisitorToken)

	add := fmt.Sprintf("/orders/%d/add/%d", draft.OrderID, item.ID)
	require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, add, nil, headers).Code)

	w := doRequest(r, http.MethodPost, "/reservations/",
		reservationBody(loc.ID, "2026-09-01", map[string]any{"order_id": draft.OrderID}), nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created reservationResponse
	decodeBody(t, w, &created)

	// Break the re-read: the status update itself still succeeds, but the
	// preloaded reload can no longer resolve menu items. The handler must
	// report the failure instead of rendering a half-populated view.
	require.NoError(t, config.DB.Migrator().DropTable(&models.MenuItem{}))

	w = doRequest(r, http.MethodPatch,
		fmt.Sprintf("/reservations/%d/status?status=confirmed", created.ID), nil, adminHeaders())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminCheck(t *testing.T) {
	r := setupRouter(t, nil)

	w := doRequest(r, http.MethodGet, "/reservations/admin/check", nil, adminHeaders())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
}
