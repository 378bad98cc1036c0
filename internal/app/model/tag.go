package model

import (
	"time"
)

// Tag is a named label scoped to an owner. (owner_id, name) is unique so
// lookup-or-create never produces duplicates for the same owner.
type Tag struct {
	ID        string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	OwnerID   string    `gorm:"uniqueIndex:idx_tags_owner_name;not null" json:"owner_id"`
	Name      string    `gorm:"uniqueIndex:idx_tags_owner_name;type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// BottleTag is the many-to-many association between bottles and tags.
// Association rows go away with the bottle; the Tag row stays for reuse.
type BottleTag struct {
	BottleID  string    `gorm:"primaryKey;type:varchar(64)" json:"bottle_id"`
	TagID     string    `gorm:"primaryKey;type:varchar(64)" json:"tag_id"`
	Bottle    Bottle    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Tag       Tag       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (BottleTag) TableName() string {
	return "bottle_tags"
}
