package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sticctape/barkeep-backend/internal/app/repository"
	"github.com/sticctape/barkeep-backend/internal/app/service"
	apperrors "github.com/sticctape/barkeep-backend/internal/errors"
	"github.com/sticctape/barkeep-backend/internal/middleware"
)

type BottleController struct {
	bottleService service.BottleService
}

func NewBottleController(bottleService service.BottleService) *BottleController {
	return &BottleController{
		bottleService: bottleService,
	}
}

type CreateBottleRequest struct {
	Brand        string   `json:"brand" binding:"required"`
	ProductName  string   `json:"product_name" binding:"required"`
	BaseSpirit   string   `json:"base_spirit"`
	Style        string   `json:"style"`
	Category     string   `json:"category"`
	ABV          *float64 `json:"abv"`
	VolumeML     *float64 `json:"volume_ml"`
	Quantity     *int     `json:"quantity"`
	Status       string   `json:"status"`
	PurchaseDate string   `json:"purchase_date"`
	PriceCents   *int64   `json:"price_cents"`
	Currency     string   `json:"currency"`
	Location     string   `json:"location"`
	Notes        string   `json:"notes"`
	ImageURL     string   `json:"image_url"`
	UPC          string   `json:"upc"`
	Tags         []string `json:"tags"`
}

// UpdateBottleRequest is a sparse patch: only fields present in the body
// are applied. A tags array replaces the bottle's full tag set.
type UpdateBottleRequest struct {
	Brand        *string   `json:"brand"`
	ProductName  *string   `json:"product_name"`
	BaseSpirit   *string   `json:"base_spirit"`
	Style        *string   `json:"style"`
	Category     *string   `json:"category"`
	ABV          *float64  `json:"abv"`
	VolumeML     *float64  `json:"volume_ml"`
	Quantity     *int      `json:"quantity"`
	Status       *string   `json:"status"`
	PurchaseDate *string   `json:"purchase_date"`
	PriceCents   *int64    `json:"price_cents"`
	Currency     *string   `json:"currency"`
	Location     *string   `json:"location"`
	Notes        *string   `json:"notes"`
	ImageURL     *string   `json:"image_url"`
	UPC          *string   `json:"upc"`
	Tags         *[]string `json:"tags"`
}

// ListBottles returns bottles for the resolved identity.
// GET /api/bottles
// Query params: search, base_spirit, status, tag
func (ctrl *BottleController) ListBottles(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// Staff without an owner identity lists across all owners.
	ownerID, _ := middleware.GetOwnerID(c)

	filter := repository.BottleFilter{
		Search:     c.Query("search"),
		BaseSpirit: c.Query("base_spirit"),
		Status:     c.Query("status"),
		Tag:        c.Query("tag"),
	}

	bottles, err := ctrl.bottleService.List(ownerID, filter)
	if err != nil {
		log.Error("Failed to list bottles", err, nil)
		apperrors.InternalError(c, err.Error())
		return
	}

	log.Info("Bottles listed", map[string]interface{}{
		"count":    len(bottles),
		"is_staff": middleware.IsStaff(c),
	})

	c.JSON(http.StatusOK, gin.H{
		"bottles": bottles,
	})
}

// CreateBottle creates a new bottle with optional tags.
// POST /api/admin/bottles
func (ctrl *BottleController) CreateBottle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ownerID, _ := middleware.GetOwnerID(c)

	var req CreateBottleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid bottle creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "brand and product_name are required")
		return
	}

	bottle, err := ctrl.bottleService.Create(ownerID, service.CreateBottleInput{
		Brand:        req.Brand,
		ProductName:  req.ProductName,
		BaseSpirit:   req.BaseSpirit,
		Style:        req.Style,
		Category:     req.Category,
		ABV:          req.ABV,
		VolumeML:     req.VolumeML,
		Quantity:     req.Quantity,
		Status:       req.Status,
		PurchaseDate: req.PurchaseDate,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		Location:     req.Location,
		Notes:        req.Notes,
		ImageURL:     req.ImageURL,
		UPC:          req.UPC,
		Tags:         req.Tags,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingRequired) {
			apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
			return
		}
		log.Error("Failed to create bottle", err, map[string]interface{}{
			"brand": req.Brand,
		})
		apperrors.RespondStorageError(c, err, "bottle")
		return
	}

	log.Info("Bottle created", map[string]interface{}{
		"bottle_id": bottle.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"bottle": bottle,
	})
}

// UpdateBottle applies a sparse patch and reconciles tags when supplied.
// PUT /api/admin/bottles/:id
func (ctrl *BottleController) UpdateBottle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ownerID, _ := middleware.GetOwnerID(c)
	id := c.Param("id")

	var req UpdateBottleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid bottle update request", map[string]interface{}{
			"bottle_id": id,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request body")
		return
	}

	bottle, err := ctrl.bottleService.Update(ownerID, id, service.UpdateBottleInput{
		Brand:        req.Brand,
		ProductName:  req.ProductName,
		BaseSpirit:   req.BaseSpirit,
		Style:        req.Style,
		Category:     req.Category,
		ABV:          req.ABV,
		VolumeML:     req.VolumeML,
		Quantity:     req.Quantity,
		Status:       req.Status,
		PurchaseDate: req.PurchaseDate,
		PriceCents:   req.PriceCents,
		Currency:     req.Currency,
		Location:     req.Location,
		Notes:        req.Notes,
		ImageURL:     req.ImageURL,
		UPC:          req.UPC,
		Tags:         req.Tags,
	})
	if err != nil {
		ctrl.respondBottleError(c, id, err)
		return
	}

	log.Info("Bottle updated", map[string]interface{}{
		"bottle_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"bottle": bottle,
	})
}

// DeleteBottle removes a bottle and its tag associations.
// DELETE /api/admin/bottles/:id
func (ctrl *BottleController) DeleteBottle(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ownerID, _ := middleware.GetOwnerID(c)
	id := c.Param("id")

	if err := ctrl.bottleService.Delete(ownerID, id); err != nil {
		ctrl.respondBottleError(c, id, err)
		return
	}

	log.Info("Bottle deleted", map[string]interface{}{
		"bottle_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
	})
}

func (ctrl *BottleController) respondBottleError(c *gin.Context, id string, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrBottleNotFound):
		apperrors.NotFound(c, apperrors.BottleNotFound, "bottle not found")
	case errors.Is(err, service.ErrNotOwner):
		apperrors.Forbidden(c, "")
	default:
		log.Error("Bottle operation failed", err, map[string]interface{}{
			"bottle_id": id,
		})
		apperrors.RespondStorageError(c, err, "bottle")
	}
}
