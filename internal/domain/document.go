package domain

import "time"

// Document types attachable to a listing.
const (
	DocTitleDeed            = "title_deed"
	DocSurveyReport         = "survey_report"
	DocTaxClearance         = "tax_clearance"
	DocPermit               = "permit"
	DocOwnershipCertificate = "ownership_certificate"
	DocOther                = "other"
)

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t string) bool {
	switch t {
	case DocTitleDeed, DocSurveyReport, DocTaxClearance, DocPermit, DocOwnershipCertificate, DocOther:
		return true
	}
	return false
}

// Document is a verification artifact (title deed, survey report, ...)
// uploaded for a listing. Deleted with its listing.
type Document struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	ListingID    uint   `gorm:"not null;index" json:"listing_id"`
	Name         string `gorm:"size:255;not null" json:"name"`
	DocumentType string `gorm:"size:50;not null;index" json:"document_type"`

	FilePath string `gorm:"size:500;not null" json:"file_path"`
	FileName string `gorm:"size:255;not null" json:"file_name"`
	FileSize int64  `gorm:"not null" json:"file_size"`
	FileType string `gorm:"size:50;not null" json:"file_type"`

	IsVerified        bool       `gorm:"default:false;index" json:"is_verified"`
	VerifiedBy        *uint      `json:"verified_by"`
	VerificationDate  *time.Time `json:"verification_date"`
	VerificationNotes string     `gorm:"type:text" json:"verification_notes"`

	IsPublic     bool `gorm:"default:true" json:"is_public"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Document) TableName() string { return "documents" }
