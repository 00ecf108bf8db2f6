package routes

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"voyages-server/models"
	"voyages-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DestinationHandler owns the catalog: public browsing plus admin CRUD.
type DestinationHandler struct {
	DB *gorm.DB
}

type DestinationInput struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Country      string   `json:"country" validate:"required"`
	City         string   `json:"city" validate:"required"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Duration     *int     `json:"duration" validate:"required,min=1"`
	Available    *bool    `json:"available"`
	Features     []string `json:"features"`
	MaxTravelers *int     `json:"maxTravelers" validate:"omitempty,min=1,max=50"`
}

// List handles GET /api/destinations. Every filter is optional; an absent
// filter adds no clause. Substring matches go through lower() LIKE lower()
// so they behave the same on postgres and the sqlite test driver.
func (h *DestinationHandler) List(ctx iris.Context) {
	page, limit := pageParams(ctx)

	query := h.DB.Model(&models.Destination{})

	if country := ctx.URLParam("country"); country != "" {
		query = query.Where("lower(country) LIKE lower(?)", "%"+country+"%")
	}
	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("lower(city) LIKE lower(?)", "%"+city+"%")
	}
	if search := ctx.URLParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"lower(name) LIKE lower(?) OR lower(description) LIKE lower(?) OR lower(country) LIKE lower(?)",
			pattern, pattern, pattern,
		)
	}
	if minPrice := ctx.URLParam("minPrice"); minPrice != "" {
		if value, err := strconv.ParseFloat(minPrice, 64); err == nil {
			query = query.Where("price >= ?", value)
		}
	}
	if maxPrice := ctx.URLParam("maxPrice"); maxPrice != "" {
		if value, err := strconv.ParseFloat(maxPrice, 64); err == nil {
			query = query.Where("price <= ?", value)
		}
	}
	if available := ctx.URLParam("available"); available != "" {
		query = query.Where("available = ?", available == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Println("destination count failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	var destinations []models.Destination
	if err := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&destinations).Error; err != nil {
		log.Println("destination list failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, destinations, page, limit, total)
}

func (h *DestinationHandler) GetByID(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid id")
		return
	}

	var destination models.Destination
	if err := h.DB.First(&destination, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "Destination not found")
			return
		}
		log.Println("destination lookup failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&destination)
}

func (h *DestinationHandler) Create(ctx iris.Context) {
	var input DestinationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	destination := destinationFromInput(&input)
	if err := h.DB.Create(destination).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.JSONError(ctx, iris.StatusConflict, "Destination already exists")
			return
		}
		log.Println("destination create failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(destination)
}

// Update handles PUT: full replacement semantics, re-validated. Optional
// fields fall back to their defaults when absent from the payload.
func (h *DestinationHandler) Update(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid id")
		return
	}

	var destination models.Destination
	if err := h.DB.First(&destination, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "Destination not found")
			return
		}
		log.Println("destination lookup failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	var input DestinationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	replacement := destinationFromInput(&input)
	replacement.ID = destination.ID
	replacement.CreatedAt = destination.CreatedAt

	if err := h.DB.Save(replacement).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.JSONError(ctx, iris.StatusConflict, "Destination already exists")
			return
		}
		log.Println("destination update failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(replacement)
}

func (h *DestinationHandler) Delete(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, iris.StatusBadRequest, "Invalid id")
		return
	}

	var destination models.Destination
	if err := h.DB.First(&destination, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "Destination not found")
			return
		}
		log.Println("destination lookup failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := h.DB.Delete(&destination).Error; err != nil {
		log.Println("destination delete failed:", err)
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

func destinationFromInput(input *DestinationInput) *models.Destination {
	available := true
	if input.Available != nil {
		available = *input.Available
	}

	maxTravelers := 10
	if input.MaxTravelers != nil {
		maxTravelers = *input.MaxTravelers
	}

	features := input.Features
	if features == nil {
		features = []string{}
	}
	featuresJSON, _ := json.Marshal(features)

	return &models.Destination{
		Name:         input.Name,
		Description:  input.Description,
		Country:      input.Country,
		City:         input.City,
		Price:        *input.Price,
		Duration:     *input.Duration,
		Available:    &available,
		Features:     datatypes.JSON(featuresJSON),
		MaxTravelers: maxTravelers,
	}
}
