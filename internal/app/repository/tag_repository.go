package repository

import (
	"github.com/google/uuid"
	"github.com/sticctape/barkeep-backend/internal/app/model"
	"github.com/sticctape/barkeep-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepository interface {
	// FindOrCreate resolves a tag by (owner, name), inserting it if absent.
	// The insert uses ON CONFLICT DO NOTHING so concurrent creates of the
	// same pair cannot produce duplicates.
	FindOrCreate(ownerID, name string) (*model.Tag, error)
	FindByBottle(bottleID string) ([]model.Tag, error)
	Link(bottleID, tagID string) error
	Unlink(bottleID, tagID string) error
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) FindOrCreate(ownerID, name string) (*model.Tag, error) {
	tag := model.Tag{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Name:    name,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error
	if err != nil {
		logger.Error("Failed to upsert tag", err, map[string]interface{}{
			"owner_id": ownerID,
			"name":     name,
		})
		return nil, err
	}

	// Re-read: on conflict the insert was a no-op and the generated id does
	// not belong to the stored row.
	var stored model.Tag
	if err := r.db.First(&stored, "owner_id = ? AND name = ?", ownerID, name).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *tagRepository) FindByBottle(bottleID string) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.Model(&model.Tag{}).
		Joins("JOIN bottle_tags bt ON bt.tag_id = tags.id").
		Where("bt.bottle_id = ?", bottleID).
		Find(&tags).Error
	if err != nil {
		logger.Error("Failed to find tags for bottle", err, map[string]interface{}{
			"bottle_id": bottleID,
		})
		return nil, err
	}
	return tags, nil
}

// Link associates a bottle with a tag. Duplicate links are silently
// idempotent.
func (r *tagRepository) Link(bottleID, tagID string) error {
	link := model.BottleTag{BottleID: bottleID, TagID: tagID}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	if err != nil {
		logger.Error("Failed to link bottle tag", err, map[string]interface{}{
			"bottle_id": bottleID,
			"tag_id":    tagID,
		})
	}
	return err
}

func (r *tagRepository) Unlink(bottleID, tagID string) error {
	return r.db.
		Where("bottle_id = ? AND tag_id = ?", bottleID, tagID).
		Delete(&model.BottleTag{}).Error
}
