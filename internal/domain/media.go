package domain

import "time"

// Media types.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Media is an image or video attached to a listing. At most one record per
// listing per media type carries IsPrimary; SetPrimary in the media service
// clears siblings before setting it.
type Media struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ListingID uint   `gorm:"not null;index" json:"listing_id"`
	MediaType string `gorm:"size:20;not null;index" json:"media_type"`

	FileName string `gorm:"size:255;not null" json:"file_name"`
	FilePath string `gorm:"size:500;not null" json:"file_path"`
	FileSize int64  `gorm:"not null" json:"file_size"`
	FileType string `gorm:"size:50;not null" json:"file_type"`

	IsPrimary    bool `gorm:"default:false;index" json:"is_primary"`
	DisplayOrder int  `gorm:"default:0;index" json:"display_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Media) TableName() string { return "media" }
