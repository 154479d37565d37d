package models

import "time"

type Title struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:256;not null;index"`
	Year        int       `json:"year" gorm:"not null"`
	Description string    `json:"description"`
	CategoryID  *int64    `json:"category_id,omitempty" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Rating is the mean review score, filled by an AVG subselect on reads.
	// Nil when the title has no reviews.
	Rating *float64 `json:"rating" gorm:"-:migration;->"`

	// associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
