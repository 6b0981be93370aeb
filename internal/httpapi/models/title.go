package models

import "time"

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:200;not null"`
	Year        int     `json:"year" gorm:"index;not null"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
	// category is optional; deleting a category must not delete its titles
	CategoryID *int64     `json:"category_id,omitempty" gorm:"index"`
	CreatedAt  *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
