package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/sticctape/barkeep-backend/internal/app/model"
	"github.com/sticctape/barkeep-backend/internal/auth"
	"github.com/sticctape/barkeep-backend/pkg/logger"
	"gorm.io/gorm"
)

// listLimit caps list queries; the SPA paginates client-side.
const listLimit = 500

// BottleFilter narrows list queries. OwnerID scopes results using the loose
// owner match; an empty OwnerID (staff view) lists across all owners.
type BottleFilter struct {
	OwnerID    string
	Search     string
	BaseSpirit string
	Status     string
	Tag        string
}

type BottleRepository interface {
	Create(bottle *model.Bottle) error
	FindWithFilter(filter BottleFilter) ([]model.Bottle, error)
	FindByID(id string) (*model.Bottle, error)
	UpdateFields(id string, fields map[string]interface{}) error
	Delete(id string) error
}

type bottleRepository struct {
	db *gorm.DB
}

func NewBottleRepository(db *gorm.DB) BottleRepository {
	return &bottleRepository{db: db}
}

func (r *bottleRepository) Create(bottle *model.Bottle) error {
	logger.Debug("Creating bottle in database", map[string]interface{}{
		"bottle_id": bottle.ID,
		"owner_id":  bottle.OwnerID,
		"brand":     bottle.Brand,
	})

	if err := r.db.Create(bottle).Error; err != nil {
		logger.Error("Failed to create bottle in database", err, map[string]interface{}{
			"bottle_id": bottle.ID,
			"owner_id":  bottle.OwnerID,
		})
		return err
	}
	return nil
}

func (r *bottleRepository) FindWithFilter(filter BottleFilter) ([]model.Bottle, error) {
	logger.Debug("Finding bottles with filter", map[string]interface{}{
		"owner_id":    filter.OwnerID,
		"search":      filter.Search,
		"base_spirit": filter.BaseSpirit,
		"status":      filter.Status,
		"tag":         filter.Tag,
	})

	query := r.db.Model(&model.Bottle{})

	if filter.OwnerID != "" {
		// Loose owner scoping: a prefixed identity also matches any other
		// prefixed owner_id, exact identities match exactly.
		if strings.HasPrefix(filter.OwnerID, auth.OwnerPrefix) {
			query = query.Where("bottles.owner_id = ? OR bottles.owner_id LIKE ?",
				filter.OwnerID, auth.OwnerPrefix+"%")
		} else {
			query = query.Where("bottles.owner_id = ?", filter.OwnerID)
		}
	}

	if filter.Tag != "" {
		query = query.
			Joins("JOIN bottle_tags bt ON bt.bottle_id = bottles.id").
			Joins("JOIN tags t ON t.id = bt.tag_id AND t.owner_id = bottles.owner_id").
			Where("t.name = ?", filter.Tag)
	}

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where(
			"bottles.brand LIKE ? OR bottles.product_name LIKE ? OR bottles.style LIKE ?",
			like, like, like,
		)
	}

	if filter.BaseSpirit != "" {
		query = query.Where("bottles.base_spirit = ?", filter.BaseSpirit)
	}
	if filter.Status != "" {
		query = query.Where("bottles.status = ?", filter.Status)
	}

	var bottles []model.Bottle
	err := query.Order("bottles.updated_at DESC").Limit(listLimit).Find(&bottles).Error
	if err != nil {
		logger.Error("Failed to find bottles with filter", err, map[string]interface{}{
			"owner_id": filter.OwnerID,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Bottles found with filter", map[string]interface{}{
		"count": len(bottles),
	})
	return bottles, nil
}

func (r *bottleRepository) FindByID(id string) (*model.Bottle, error) {
	var bottle model.Bottle
	if err := r.db.First(&bottle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bottle, nil
}

// UpdateFields applies a sparse patch. updated_at is always refreshed.
func (r *bottleRepository) UpdateFields(id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		fields = map[string]interface{}{}
	}
	fields["updated_at"] = time.Now()

	if err := r.db.Model(&model.Bottle{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		logger.Error("Failed to update bottle in database", err, map[string]interface{}{
			"bottle_id": id,
		})
		return err
	}
	return nil
}

func (r *bottleRepository) Delete(id string) error {
	logger.Debug("Deleting bottle from database", map[string]interface{}{
		"bottle_id": id,
	})

	// Unlink explicitly: SQLite in tests does not enforce the cascade the
	// Postgres schema declares.
	if err := r.db.Where("bottle_id = ?", id).Delete(&model.BottleTag{}).Error; err != nil {
		logger.Error("Failed to unlink bottle tags", err, map[string]interface{}{
			"bottle_id": id,
		})
		return err
	}

	if err := r.db.Delete(&model.Bottle{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete bottle from database", err, map[string]interface{}{
			"bottle_id": id,
		})
		return err
	}
	return nil
}
