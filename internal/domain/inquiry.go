package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Inquiry types.
const (
	InquiryGeneralInterest      = "general_interest"
	InquirySiteVisit            = "site_visit"
	InquiryPriceNegotiation     = "price_negotiation"
	InquiryDocumentVerification = "document_verification"
	InquiryPurchaseIntent       = "purchase_intent"
	InquiryReservation          = "reservation"
)

// Purchase timeframes.
const (
	TimeframeImmediate    = "immediate"
	TimeframeWithinMonth  = "within_month"
	TimeframeWithin3Month = "within_3months"
	TimeframeWithin6Month = "within_6months"
	TimeframeFlexible     = "flexible"
)

// ValidInquiryType reports whether t is a known inquiry type.
func ValidInquiryType(t string) bool {
	switch t {
	case InquiryGeneralInterest, InquirySiteVisit, InquiryPriceNegotiation,
		InquiryDocumentVerification, InquiryPurchaseIntent, InquiryReservation:
		return true
	}
	return false
}

// ValidTimeframe reports whether t is a known timeframe.
func ValidTimeframe(t string) bool {
	switch t {
	case TimeframeImmediate, TimeframeWithinMonth, TimeframeWithin3Month,
		TimeframeWithin6Month, TimeframeFlexible:
		return true
	}
	return false
}

// ValidInquiryStatus reports whether s is a status an inquiry may hold.
func ValidInquiryStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusInProgress, StatusResponded, StatusClosed, StatusConverted:
		return true
	}
	return false
}

// ValidInquiryPriority reports whether p is a priority an inquiry may hold.
func ValidInquiryPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Inquiry is a customer's interest in a listing (or a general inquiry when
// ListingID is nil), submitted without authentication and worked by staff.
type Inquiry struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ListingID *uint    `gorm:"index" json:"listing_id"`
	Listing   *Listing `gorm:"foreignKey:ListingID" json:"listing,omitempty"`

	// Inquirer details
	InquirerName     string `gorm:"size:100;not null" json:"inquirer_name"`
	InquirerEmail    string `gorm:"size:255;not null;index" json:"inquirer_email"`
	InquirerPhone    string `gorm:"size:20;not null" json:"inquirer_phone"`
	InquirerLocation string `gorm:"size:200" json:"inquirer_location"`
	IsDiaspora       bool   `gorm:"default:false" json:"is_diaspora"`
	PreferredContact string `gorm:"size:20;default:email" json:"preferred_contact"`

	// Inquiry details
	InquiryType     string   `gorm:"size:30;not null;index" json:"inquiry_type"`
	Message         string   `gorm:"type:text;not null" json:"message"`
	BudgetMin       *float64 `gorm:"type:decimal(15,2)" json:"budget_min"`
	BudgetMax       *float64 `gorm:"type:decimal(15,2)" json:"budget_max"`
	BudgetCurrency  string   `gorm:"size:3;default:RWF" json:"budget_currency"`
	Timeframe       string   `gorm:"size:20;default:flexible" json:"timeframe"`
	VisitPreference string   `gorm:"size:20;default:physical_visit" json:"visit_preference"`

	// Status and assignment
	Status     string `gorm:"size:20;default:new;index" json:"status"`
	Priority   string `gorm:"size:10;default:medium;index" json:"priority"`
	AssignedTo *uint  `gorm:"index" json:"assigned_to"`
	Assignee   *User  `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`

	// Follow-up scheduling (pull-based: surfaced by the due query, no timer)
	NextFollowUpDate *time.Time `gorm:"index" json:"next_follow_up_date"`
	FollowUpNotes    string     `gorm:"type:text" json:"follow_up_notes"`
	ReminderSet      bool       `gorm:"default:false" json:"reminder_set"`

	Audit `gorm:"embedded" json:"audit"`

	// Response tracking
	FirstResponseDate *time.Time `json:"first_response_date"`
	LastResponseDate  *time.Time `json:"last_response_date"`
	ResponseCount     int        `gorm:"default:0" json:"response_count"`

	// Conversion tracking
	ConvertedDate   *time.Time `json:"converted_date"`
	ConversionValue *float64   `gorm:"type:decimal(15,2)" json:"conversion_value"`

	InternalNotes string         `gorm:"type:text" json:"internal_notes"`
	Tags          datatypes.JSON `json:"tags"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Inquiry) TableName() string { return "inquiries" }
