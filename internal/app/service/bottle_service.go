package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sticctape/barkeep-backend/internal/app/model"
	"github.com/sticctape/barkeep-backend/internal/app/repository"
	"github.com/sticctape/barkeep-backend/internal/auth"
	"github.com/sticctape/barkeep-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBottleNotFound  = errors.New("bottle not found")
	ErrNotOwner        = errors.New("bottle belongs to a different owner")
	ErrMissingRequired = errors.New("brand and product_name are required")
)

// CreateBottleInput is the full payload for a new bottle. Pointer fields
// distinguish "absent" from zero values.
type CreateBottleInput struct {
	Brand        string
	ProductName  string
	BaseSpirit   string
	Style        string
	Category     string
	ABV          *float64
	VolumeML     *float64
	Quantity     *int
	Status       string
	PurchaseDate string
	PriceCents   *int64
	Currency     string
	Location     string
	Notes        string
	ImageURL     string
	UPC          string
	Tags         []string
}

// UpdateBottleInput is a sparse patch: only non-nil fields are applied.
// A non-nil Tags replaces the bottle's full tag set.
type UpdateBottleInput struct {
	Brand        *string
	ProductName  *string
	BaseSpirit   *string
	Style        *string
	Category     *string
	ABV          *float64
	VolumeML     *float64
	Quantity     *int
	Status       *string
	PurchaseDate *string
	PriceCents   *int64
	Currency     *string
	Location     *string
	Notes        *string
	ImageURL     *string
	UPC          *string
	Tags         *[]string
}

type BottleService interface {
	List(ownerID string, filter repository.BottleFilter) ([]model.Bottle, error)
	Create(ownerID string, input CreateBottleInput) (*model.Bottle, error)
	Update(ownerID, id string, input UpdateBottleInput) (*model.Bottle, error)
	Delete(ownerID, id string) error
}

type bottleService struct {
	bottleRepo repository.BottleRepository
	tagRepo    repository.TagRepository
}

func NewBottleService(bottleRepo repository.BottleRepository, tagRepo repository.TagRepository) BottleService {
	return &bottleService{
		bottleRepo: bottleRepo,
		tagRepo:    tagRepo,
	}
}

// List returns bottles scoped to ownerID when present; an empty ownerID
// (staff view) lists across all owners.
func (s *bottleService) List(ownerID string, filter repository.BottleFilter) ([]model.Bottle, error) {
	filter.OwnerID = ownerID
	return s.bottleRepo.FindWithFilter(filter)
}

func (s *bottleService) Create(ownerID string, input CreateBottleInput) (*model.Bottle, error) {
	if input.Brand == "" || input.ProductName == "" {
		return nil, ErrMissingRequired
	}

	bottle := &model.Bottle{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Brand:        input.Brand,
		ProductName:  input.ProductName,
		BaseSpirit:   input.BaseSpirit,
		Style:        input.Style,
		Category:     input.Category,
		ABV:          input.ABV,
		VolumeML:     input.VolumeML,
		Quantity:     model.DefaultQuantity,
		Status:       input.Status,
		PurchaseDate: input.PurchaseDate,
		PriceCents:   input.PriceCents,
		Currency:     input.Currency,
		Location:     input.Location,
		Notes:        input.Notes,
		ImageURL:     input.ImageURL,
		UPC:          input.UPC,
	}
	if input.Quantity != nil {
		bottle.Quantity = *input.Quantity
	}
	if bottle.Status == "" {
		bottle.Status = model.DefaultStatus
	}
	if bottle.Currency == "" {
		bottle.Currency = model.DefaultCurrency
	}

	if err := s.bottleRepo.Create(bottle); err != nil {
		return nil, err
	}

	for _, name := range input.Tags {
		tag, err := s.tagRepo.FindOrCreate(ownerID, name)
		if err != nil {
			return nil, err
		}
		if err := s.tagRepo.Link(bottle.ID, tag.ID); err != nil {
			return nil, err
		}
	}

	logger.Info("Bottle created", map[string]interface{}{
		"bottle_id": bottle.ID,
		"owner_id":  ownerID,
		"tag_count": len(input.Tags),
	})

	return s.bottleRepo.FindByID(bottle.ID)
}

func (s *bottleService) Update(ownerID, id string, input UpdateBottleInput) (*model.Bottle, error) {
	existing, err := s.findOwned(ownerID, id)
	if err != nil {
		return nil, err
	}

	fields := input.fields()
	if len(fields) > 0 || input.Tags != nil {
		if err := s.bottleRepo.UpdateFields(id, fields); err != nil {
			return nil, err
		}
	}

	if input.Tags != nil {
		if err := s.reconcileTags(existing.OwnerID, id, *input.Tags); err != nil {
			return nil, err
		}
	}

	return s.bottleRepo.FindByID(id)
}

func (s *bottleService) Delete(ownerID, id string) error {
	if _, err := s.findOwned(ownerID, id); err != nil {
		return err
	}
	return s.bottleRepo.Delete(id)
}

func (s *bottleService) findOwned(ownerID, id string) (*model.Bottle, error) {
	bottle, err := s.bottleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBottleNotFound
		}
		return nil, err
	}
	if !auth.OwnerMatches(ownerID, bottle.OwnerID) {
		logger.Warn("Ownership mismatch on bottle", map[string]interface{}{
			"bottle_id": id,
			"owner_id":  ownerID,
		})
		return nil, ErrNotOwner
	}
	return bottle, nil
}

// reconcileTags replaces the bottle's tag set with names: missing links are
// created, removed names are unlinked, the rest is untouched. Tag rows
// themselves are never deleted.
func (s *bottleService) reconcileTags(ownerID, bottleID string, names []string) error {
	current, err := s.tagRepo.FindByBottle(bottleID)
	if err != nil {
		return err
	}

	currentByName := make(map[string]model.Tag, len(current))
	for _, t := range current {
		currentByName[t.Name] = t
	}
	next := make(map[string]struct{}, len(names))
	for _, name := range names {
		next[name] = struct{}{}
	}

	for name := range next {
		if _, ok := currentByName[name]; ok {
			continue
		}
		tag, err := s.tagRepo.FindOrCreate(ownerID, name)
		if err != nil {
			return err
		}
		if err := s.tagRepo.Link(bottleID, tag.ID); err != nil {
			return err
		}
	}

	for name, tag := range currentByName {
		if _, ok := next[name]; ok {
			continue
		}
		if err := s.tagRepo.Unlink(bottleID, tag.ID); err != nil {
			return err
		}
	}

	return nil
}

// fields maps the non-nil patch fields to their columns.
func (in UpdateBottleInput) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if in.Brand != nil {
		fields["brand"] = *in.Brand
	}
	if in.ProductName != nil {
		fields["product_name"] = *in.ProductName
	}
	if in.BaseSpirit != nil {
		fields["base_spirit"] = *in.BaseSpirit
	}
	if in.Style != nil {
		fields["style"] = *in.Style
	}
	if in.Category != nil {
		fields["category"] = *in.Category
	}
	if in.ABV != nil {
		fields["abv"] = *in.ABV
	}
	if in.VolumeML != nil {
		fields["volume_ml"] = *in.VolumeML
	}
	if in.Quantity != nil {
		fields["quantity"] = *in.Quantity
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.PurchaseDate != nil {
		fields["purchase_date"] = *in.PurchaseDate
	}
	if in.PriceCents != nil {
		fields["price_cents"] = *in.PriceCents
	}
	if in.Currency != nil {
		fields["currency"] = *in.Currency
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.UPC != nil {
		fields["upc"] = *in.UPC
	}
	return fields
}
