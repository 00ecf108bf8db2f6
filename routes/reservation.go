package routes

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"voyages-server/models"
	"voyages-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// ReservationHandler owns the booking lifecycle.
type ReservationHandler struct {
	DB *gorm.DB
}

type CreateReservationInput struct {
	DestinationID   uint   `json:"destinationId" validate:"required"`
	StartDate       string `json:"startDate" validate:"required"`
	EndDate         string `json:"endDate" validate:"required"`
	Travelers       int    `json:"travelers" validate:"required,min=1,max=50"`
	SpecialRequests string `json:"specialRequests" validate:"omitempty,max=500"`
}

type UpdateReservationStatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

var (
	errDestinationNotFound    = errors.New("destination not found")
	errDestinationUnavailable = errors.New("destination not available")
	errInvalidDates           = errors.New("invalid dates")
)

// ListAll handles GET /api/reservations (admin). Expands the booking user
// down to id/email/name and the full destination.
func (h *ReservationHandler) ListAll(ctx iris.Context) {
	page, limit := pageParams(ctx)

	query := h.DB.Model(&models.Reservation{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Println("reservation count failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	var reservations []models.Reservation
	err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "email", "first_name", "last_name")
		}).
		Preload("Destination").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reservations).Error
	if err != nil {
		log.Println("reservation list failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, reservations, page, limit, total)
}

// ListMine handles GET /api/reservations/my-reservations, scoped to the caller.
func (h *ReservationHandler) ListMine(ctx iris.Context) {
	userID := utils.AuthenticatedUserID(ctx)
	page, limit := pageParams(ctx)

	query := h.DB.Model(&models.Reservation{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Println("reservation count failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	var reservations []models.Reservation
	err := query.
		Preload("Destination").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reservations).Error
	if err != nil {
		log.Println("reservation list failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, reservations, page, limit, total)
}

// Create books a destination for the caller. The destination lookup and the
// insert run in one transaction so the price snapshot and the availability
// check come from the same read. TotalPrice is fixed here and never
// recomputed.
func (h *ReservationHandler) Create(ctx iris.Context) {
	userID := utils.AuthenticatedUserID(ctx)

	var input CreateReservationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var reservation models.Reservation
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var destination models.Destination
		if err := tx.First(&destination, input.DestinationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errDestinationNotFound
			}
			return err
		}

		if !destination.IsAvailable() {
			return errDestinationUnavailable
		}

		start, err := parseDate(input.StartDate)
		if err != nil {
			return errInvalidDates
		}
		end, err := parseDate(input.EndDate)
		if err != nil {
			return errInvalidDates
		}
		if !start.Before(end) {
			return errInvalidDates
		}

		days := int(math.Ceil(end.Sub(start).Hours() / 24))
		totalPrice := destination.Price * float64(input.Travelers) * float64(days)

		reservation = models.Reservation{
			UserID:          userID,
			DestinationID:   destination.ID,
			StartDate:       start,
			EndDate:         end,
			Travelers:       input.Travelers,
			TotalPrice:      totalPrice,
			Status:          models.StatusPending,
			SpecialRequests: input.SpecialRequests,
		}
		return tx.Create(&reservation).Error
	})

	switch {
	case txErr == nil:
	case errors.Is(txErr, errDestinationNotFound):
		utils.JSONError(ctx, iris.StatusNotFound, "Destination not found")
		return
	case errors.Is(txErr, errDestinationUnavailable):
		utils.JSONError(ctx, iris.StatusBadRequest, "Destination not available")
		return
	case errors.Is(txErr, errInvalidDates):
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid dates")
		return
	default:
		log.Println("reservation create failed:", txErr)
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := h.DB.Preload("Destination").First(&reservation, reservation.ID).Error; err != nil {
		log.Println("reservation reload failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&reservation)
}

// UpdateStatus handles PATCH /api/reservations/{id}/status. The caller must
// own the reservation or be an admin, and the new status must be reachable
// per the lifecycle table.
func (h *ReservationHandler) UpdateStatus(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid id")
		return
	}

	var input UpdateReservationStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var reservation models.Reservation
	if err := h.DB.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "Reservation not found")
			return
		}
		log.Println("reservation lookup failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	userID := utils.AuthenticatedUserID(ctx)
	role := utils.AuthenticatedUserRole(ctx)
	if reservation.UserID != userID && role != models.RoleAdmin {
		utils.JSONError(ctx, iris.StatusForbidden, "Access denied")
		return
	}

	next := models.ReservationStatus(input.Status)
	if !reservation.Status.CanTransitionTo(next) {
		utils.CreateValidationError(ctx, []utils.FieldError{{
			Field:   "status",
			Message: fmt.Sprintf("cannot move from %s to %s (allowed: %v)", reservation.Status, next, reservation.Status.AllowedTransitions()),
		}})
		return
	}

	if err := h.DB.Model(&reservation).Update("status", next).Error; err != nil {
		log.Println("reservation status update failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := h.DB.Preload("Destination").First(&reservation, reservation.ID).Error; err != nil {
		log.Println("reservation reload failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&reservation)
}

func (h *ReservationHandler) Delete(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid id")
		return
	}

	var reservation models.Reservation
	if err := h.DB.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "Reservation not found")
			return
		}
		log.Println("reservation lookup failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := h.DB.Delete(&reservation).Error; err != nil {
		log.Println("reservation delete failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func pageParams(ctx iris.Context) (page, limit int) {
	page = ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	limit = ctx.URLParamIntDefault("limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// parseDate accepts date-only and full RFC 3339 timestamps.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
