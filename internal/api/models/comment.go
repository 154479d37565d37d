package models

import "time"

type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID  int64     `json:"review_id" gorm:"not null;index"`
	AuthorID  string    `json:"author_id" gorm:"type:uuid;not null;index"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"pub_date" gorm:"autoCreateTime"`

	// associations
	Review Review `json:"review,omitempty" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE;"`
	Author User   `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Comment) TableName() string {
	return "comments"
}
