package routes

import (
	"strings"
	"testing"
	"time"

	"voyages-server/models"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type reservationFixture struct {
	app         *iris.Application
	db          *gorm.DB
	admin       models.User
	owner       models.User
	other       models.User
	destination models.Destination
}

func newReservationFixture(t *testing.T) *reservationFixture {
	t.Helper()

	app, db := newTestApp(t)
	f := &reservationFixture{
		app:   app,
		db:    db,
		admin: createTestUser(t, db, "admin@voyages.com", models.RoleAdmin),
		owner: createTestUser(t, db, "owner@voyages.com", models.RoleUser),
		other: createTestUser(t, db, "other@voyages.com", models.RoleUser),
	}
	f.destination = createTestDestination(t, db, models.Destination{
		Name:         "Paris Romance",
		Description:  "Romantic weekend in Paris",
		Country:      "France",
		City:         "Paris",
		Price:        1200,
		Duration:     3,
		Available:    boolPtr(true),
		MaxTravelers: 8,
	})
	return f
}

func (f *reservationFixture) createReservation(t *testing.T, user models.User, status models.ReservationStatus) models.Reservation {
	t.Helper()

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	reservation := models.Reservation{
		UserID:        user.ID,
		DestinationID: f.destination.ID,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 3),
		Travelers:     2,
		TotalPrice:    7200,
		Status:        status,
	}
	require.NoError(t, f.db.Create(&reservation).Error)
	return reservation
}

func TestCreateReservation(t *testing.T) {
	f := newReservationFixture(t)
	e := httptest.New(t, f.app)
	ownerToken := accessTokenFor(t, f.owner)

	t.Run("requires a token", func(t *testing.T) {
		e.POST("/api/reservations").WithJSON(iris.Map{}).Expect().
			Status(iris.StatusUnauthorized)
	})

	t.Run("computes days and snapshot price", func(t *testing.T) {
		body := e.POST("/api/reservations").
			WithHeader("Authorization", "Bearer "+ownerToken).
			WithJSON(iris.Map{
				"destinationId": f.destination.ID,
				"startDate":     "2024-06-01",
				"endDate":       "2024-06-04",
				"travelers":     2,
			}).Expect().
			Status(iris.StatusCreated).
			JSON().Object().Raw()

		// 1200/day * 2 travelers * 3 days
		require.EqualValues(t, 7200, body["totalPrice"])
		require.Equal(t, string(models.StatusPending), body["status"])
		require.EqualValues(t, f.owner.ID, body["userId"])

		destination := body["destination"].(map[string]interface{})
		require.Equal(t, "Paris Romance", destination["name"])
	})

	t.Run("price stays fixed when the destination price changes", func(t *testing.T) {
		require.NoError(t, f.db.Model(&models.Destination{}).
			Where("id = ?", f.destination.ID).
			Update("price", 9999).Error)

		var reservation models.Reservation
		require.NoError(t, f.db.Where("user_id = ?", f.owner.ID).First(&reservation).Error)
		require.EqualValues(t, 7200, reservation.TotalPrice)

		require.NoError(t, f.db.Model(&models.Destination{}).
			Where("id = ?", f.destination.ID).
			Update("price", 1200).Error)
	})

	t.Run("unknown destination is 404", func(t *testing.T) {
		body := e.POST("/api/reservations").
			WithHeader("Authorization", "Bearer "+ownerToken).
			WithJSON(iris.Map{
				"destinationId": 99999,
				"startDate":     "2024-06-01",
				"endDate":       "2024-06-04",
				"travelers":     2,
			}).Expect().
			Status(iris.StatusNotFound).
			JSON().Object().Raw()
		require.Equal(t, "Destination not found", body["error"])
	})

	t.Run("unavailable destination is 400 regardless of valid dates", func(t *testing.T) {
		closed := createTestDestination(t, f.db, models.Destination{
			Name:        "Closed Resort",
			Description: "Closed for the season",
			Country:     "Italy",
			City:        "Venice",
			Price:       900,
			Duration:    2,
			Available:   boolPtr(false),
		})

		body := e.POST("/api/reservations").
			WithHeader("Authorization", "Bearer "+ownerToken).
			WithJSON(iris.Map{
				"destinationId": closed.ID,
				"startDate":     "2024-06-01",
				"endDate":       "2024-06-04",
				"travelers":     2,
			}).Expect().
			Status(iris.StatusBadRequest).
			JSON().Object().Raw()
		require.Equal(t, "Destination not available", body["error"])
	})

	t.Run("start on or after end is 400", func(t *testing.T) {
		for _, dates := range [][2]string{
			{"2024-06-04", "2024-06-01"},
			{"2024-06-01", "2024-06-01"},
		} {
			body := e.POST("/api/reservations").
				WithHeader("Authorization", "Bearer "+ownerToken).
				WithJSON(iris.Map{
					"destinationId": f.destination.ID,
					"startDate":     dates[0],
					"endDate":       dates[1],
					"travelers":     2,
				}).Expect().
				Status(iris.StatusBadRequest).
				JSON().Object().Raw()
			require.Equal(t, "Invalid dates", body["error"])
		}
	})

	t.Run("traveler bounds are 422", func(t *testing.T) {
		for _, travelers := range []int{0, 51} {
			e.POST("/api/reservations").
				WithHeader("Authorization", "Bearer "+ownerToken).
				WithJSON(iris.Map{
					"destinationId": f.destination.ID,
					"startDate":     "2024-06-01",
					"endDate":       "2024-06-04",
					"travelers":     travelers,
				}).Expect().
				Status(iris.StatusUnprocessableEntity)
		}
	})

	t.Run("overlong special requests are 422", func(t *testing.T) {
		e.POST("/api/reservations").
			WithHeader("Authorization", "Bearer "+ownerToken).
			WithJSON(iris.Map{
				"destinationId":   f.destination.ID,
				"startDate":       "2024-06-01",
				"endDate":         "2024-06-04",
				"travelers":       2,
				"specialRequests": strings.Repeat("x", 501),
			}).Expect().
			Status(iris.StatusUnprocessableEntity)
	})
}

func TestListAllReservations(t *testing.T) {
	f := newReservationFixture(t)
	f.createReservation(t, f.owner, models.StatusPending)
	f.createReservation(t, f.other, models.StatusConfirmed)
	e := httptest.New(t, f.app)

	t.Run("forbidden for non-admins", func(t *testing.T) {
		e.GET("/api/reservations").
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.owner)).Expect().
			Status(iris.StatusForbidden)
	})

	t.Run("admin sees every reservation with expanded relations", func(t *testing.T) {
		body := e.GET("/api/reservations").
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).Expect().
			Status(iris.StatusOK).
			JSON().Object().Raw()

		require.EqualValues(t, 2, body["total"])
		require.EqualValues(t, 1, body["totalPages"])

		data := body["data"].([]interface{})
		require.Len(t, data, 2)

		entry := data[0].(map[string]interface{})
		user := entry["user"].(map[string]interface{})
		require.NotEmpty(t, user["email"])
		require.NotContains(t, user, "password")

		destination := entry["destination"].(map[string]interface{})
		require.Equal(t, "Paris Romance", destination["name"])
	})
}

func TestListMyReservations(t *testing.T) {
	f := newReservationFixture(t)
	mine := f.createReservation(t, f.owner, models.StatusPending)
	f.createReservation(t, f.other, models.StatusPending)
	e := httptest.New(t, f.app)

	body := e.GET("/api/reservations/my-reservations").
		WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.owner)).Expect().
		Status(iris.StatusOK).
		JSON().Object().Raw()

	require.EqualValues(t, 1, body["total"])
	data := body["data"].([]interface{})
	require.Len(t, data, 1)

	entry := data[0].(map[string]interface{})
	require.EqualValues(t, mine.ID, entry["ID"])
	require.EqualValues(t, f.owner.ID, entry["userId"])
	require.Equal(t, "Paris Romance", entry["destination"].(map[string]interface{})["name"])
}

func TestUpdateReservationStatus(t *testing.T) {
	f := newReservationFixture(t)
	e := httptest.New(t, f.app)

	t.Run("owner confirms a pending reservation", func(t *testing.T) {
		reservation := f.createReservation(t, f.owner, models.StatusPending)

		body := e.PATCH("/api/reservations/{id}/status", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.owner)).
			WithJSON(iris.Map{"status": "CONFIRMED"}).Expect().
			Status(iris.StatusOK).
			JSON().Object().Raw()

		require.Equal(t, "CONFIRMED", body["status"])
		require.Equal(t, "Paris Romance", body["destination"].(map[string]interface{})["name"])
	})

	t.Run("non-owner non-admin is forbidden", func(t *testing.T) {
		reservation := f.createReservation(t, f.owner, models.StatusPending)

		e.PATCH("/api/reservations/{id}/status", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.other)).
			WithJSON(iris.Map{"status": "CANCELLED"}).Expect().
			Status(iris.StatusForbidden)
	})

	t.Run("admin may move a confirmed reservation to completed", func(t *testing.T) {
		reservation := f.createReservation(t, f.owner, models.StatusConfirmed)

		body := e.PATCH("/api/reservations/{id}/status", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).
			WithJSON(iris.Map{"status": "COMPLETED"}).Expect().
			Status(iris.StatusOK).
			JSON().Object().Raw()
		require.Equal(t, "COMPLETED", body["status"])
	})

	t.Run("terminal states are immutable", func(t *testing.T) {
		for _, status := range []models.ReservationStatus{models.StatusCancelled, models.StatusCompleted} {
			reservation := f.createReservation(t, f.owner, status)

			e.PATCH("/api/reservations/{id}/status", reservation.ID).
				WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).
				WithJSON(iris.Map{"status": "PENDING"}).Expect().
				Status(iris.StatusUnprocessableEntity)
		}
	})

	t.Run("skipping the lifecycle is rejected", func(t *testing.T) {
		reservation := f.createReservation(t, f.owner, models.StatusPending)

		e.PATCH("/api/reservations/{id}/status", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.owner)).
			WithJSON(iris.Map{"status": "COMPLETED"}).Expect().
			Status(iris.StatusUnprocessableEntity)
	})

	t.Run("unknown status value is 422", func(t *testing.T) {
		reservation := f.createReservation(t, f.owner, models.StatusPending)

		e.PATCH("/api/reservations/{id}/status", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.owner)).
			WithJSON(iris.Map{"status": "ARCHIVED"}).Expect().
			Status(iris.StatusUnprocessableEntity)
	})

	t.Run("unknown id is 404, malformed id is 400", func(t *testing.T) {
		e.PATCH("/api/reservations/99999/status").
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).
			WithJSON(iris.Map{"status": "CONFIRMED"}).Expect().
			Status(iris.StatusNotFound)

		e.PATCH("/api/reservations/not-an-id/status").
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).
			WithJSON(iris.Map{"status": "CONFIRMED"}).Expect().
			Status(iris.StatusBadRequest)
	})
}

func TestDeleteReservation(t *testing.T) {
	f := newReservationFixture(t)
	reservation := f.createReservation(t, f.owner, models.StatusPending)
	e := httptest.New(t, f.app)

	t.Run("owner may not delete", func(t *testing.T) {
		e.DELETE("/api/reservations/{id}", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.owner)).Expect().
			Status(iris.StatusForbidden)
	})

	t.Run("admin delete then delete again", func(t *testing.T) {
		e.DELETE("/api/reservations/{id}", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).Expect().
			Status(iris.StatusNoContent)

		e.DELETE("/api/reservations/{id}", reservation.ID).
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).Expect().
			Status(iris.StatusNotFound)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		e.DELETE("/api/reservations/not-an-id").
			WithHeader("Authorization", "Bearer "+accessTokenFor(t, f.admin)).Expect().
			Status(iris.StatusBadRequest)
	})
}
