package domain

import "time"

// Listing statuses. Verification forces a listing to StatusActive; only
// active listings accept inquiries.
const (
	ListingDraft     = "draft"
	ListingActive    = "active"
	ListingReserved  = "reserved"
	ListingSold      = "sold"
	ListingWithdrawn = "withdrawn"
)

// Land types.
const (
	LandResidential  = "residential"
	LandCommercial   = "commercial"
	LandAgricultural = "agricultural"
	LandIndustrial   = "industrial"
	LandMixed        = "mixed"
)

// Currencies accepted for prices and budgets.
const (
	CurrencyRWF = "RWF"
	CurrencyUSD = "USD"
)

// Listing is a land plot published by a broker.
type Listing struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`

	// Location
	District  string   `gorm:"size:100;not null;default:Bugesera;index:idx_listings_district_sector" json:"district"`
	Sector    string   `gorm:"size:100;not null;index:idx_listings_district_sector" json:"sector"`
	Cell      string   `gorm:"size:100;not null" json:"cell"`
	Village   string   `gorm:"size:100;not null" json:"village"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Price
	PriceAmount     float64 `gorm:"type:decimal(15,2);not null;index" json:"price_amount"`
	PriceCurrency   string  `gorm:"size:3;default:RWF" json:"price_currency"`
	PriceNegotiable bool    `gorm:"default:true" json:"price_negotiable"`

	// Land details
	LandSizeValue float64 `gorm:"type:decimal(10,2);not null" json:"land_size_value"`
	LandSizeUnit  string  `gorm:"size:20;default:sqm" json:"land_size_unit"`
	LandType      string  `gorm:"size:20;not null;index" json:"land_type"`
	SoilType      string  `gorm:"size:20;default:loamy" json:"soil_type"`
	Topography    string  `gorm:"size:20;default:flat" json:"topography"`

	// Utilities and surroundings
	HasElectricity bool   `gorm:"default:false" json:"has_electricity"`
	HasWater       bool   `gorm:"default:false" json:"has_water"`
	HasInternet    bool   `gorm:"default:false" json:"has_internet"`
	HasRoadAccess  bool   `gorm:"default:true" json:"has_road_access"`
	RoadType       string `gorm:"size:20;default:dirt" json:"road_type"`
	NearSchool     bool   `gorm:"default:false" json:"near_school"`
	NearHospital   bool   `gorm:"default:false" json:"near_hospital"`
	NearMarket     bool   `gorm:"default:false" json:"near_market"`

	// Landowner
	LandownerName     string `gorm:"size:200;not null" json:"landowner_name"`
	LandownerPhone    string `gorm:"size:20;not null" json:"landowner_phone"`
	LandownerEmail    string `gorm:"size:255" json:"landowner_email"`
	LandownerIDNumber string `gorm:"size:50;not null" json:"landowner_id_number"`
	LandownerVerified bool   `gorm:"default:false" json:"landowner_verified"`

	// Broker ownership
	BrokerID uint  `gorm:"not null;index" json:"broker_id"`
	Broker   *User `gorm:"foreignKey:BrokerID" json:"broker,omitempty"`

	// Lifecycle
	Status            string     `gorm:"size:20;default:draft;index" json:"status"`
	IsVerified        bool       `gorm:"default:false" json:"is_verified"`
	VerifiedBy        *uint      `json:"verified_by"`
	VerificationDate  *time.Time `json:"verification_date"`
	VerificationNotes string     `gorm:"type:text" json:"verification_notes"`
	Featured          bool       `gorm:"default:false;index" json:"featured"`

	// Counters: bumped only through atomic increment updates.
	ViewsCount     int `gorm:"default:0" json:"views_count"`
	InquiriesCount int `gorm:"default:0" json:"inquiries_count"`

	// Immutable public reference, e.g. PSC123456042.
	ListingReference string `gorm:"size:50;uniqueIndex" json:"listing_reference"`

	Documents []Document `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
	Media     []Media    `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"media,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Listing) TableName() string { return "listings" }

// FullLocation renders the location chain for emails and exports.
func (l *Listing) FullLocation() string {
	return l.Village + ", " + l.Cell + ", " + l.Sector + ", " + l.District
}
