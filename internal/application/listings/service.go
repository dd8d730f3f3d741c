package listings

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/application/notifications"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/infrastructure/storage"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns the listing registry: creation, search, moderation and the
// denormalized view/inquiry counters.
type Service struct {
	DB         *gorm.DB
	Store      storage.Store
	Dispatcher *notifications.Dispatcher
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	District  string   `json:"district"`
	Sector    string   `json:"sector"`
	Cell      string   `json:"cell"`
	Village   string   `json:"village"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	PriceAmount     float64 `json:"price_amount"`
	PriceCurrency   string  `json:"price_currency"`
	PriceNegotiable *bool   `json:"price_negotiable"`

	LandSizeValue float64 `json:"land_size_value"`
	LandSizeUnit  string  `json:"land_size_unit"`
	LandType      string  `json:"land_type"`
	SoilType      string  `json:"soil_type"`
	Topography    string  `json:"topography"`

	HasElectricity bool   `json:"has_electricity"`
	HasWater       bool   `json:"has_water"`
	HasInternet    bool   `json:"has_internet"`
	HasRoadAccess  *bool  `json:"has_road_access"`
	RoadType       string `json:"road_type"`
	NearSchool     bool   `json:"near_school"`
	NearHospital   bool   `json:"near_hospital"`
	NearMarket     bool   `json:"near_market"`

	LandownerName     string `json:"landowner_name"`
	LandownerPhone    string `json:"landowner_phone"`
	LandownerEmail    string `json:"landowner_email"`
	LandownerIDNumber string `json:"landowner_id_number"`
}

type UpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`

	District  *string  `json:"district"`
	Sector    *string  `json:"sector"`
	Cell      *string  `json:"cell"`
	Village   *string  `json:"village"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	PriceAmount     *float64 `json:"price_amount"`
	PriceCurrency   *string  `json:"price_currency"`
	PriceNegotiable *bool    `json:"price_negotiable"`

	LandSizeValue *float64 `json:"land_size_value"`
	LandSizeUnit  *string  `json:"land_size_unit"`
	LandType      *string  `json:"land_type"`
	SoilType      *string  `json:"soil_type"`
	Topography    *string  `json:"topography"`

	HasElectricity *bool   `json:"has_electricity"`
	HasWater       *bool   `json:"has_water"`
	HasInternet    *bool   `json:"has_internet"`
	HasRoadAccess  *bool   `json:"has_road_access"`
	RoadType       *string `json:"road_type"`
	NearSchool     *bool   `json:"near_school"`
	NearHospital   *bool   `json:"near_hospital"`
	NearMarket     *bool   `json:"near_market"`

	LandownerName     *string `json:"landowner_name"`
	LandownerPhone    *string `json:"landowner_phone"`
	LandownerEmail    *string `json:"landowner_email"`
	LandownerIDNumber *string `json:"landowner_id_number"`

	Status *string `json:"status"`
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Status   string
	LandType string
	District string
	Sector   string
	MinPrice float64
	MaxPrice float64
	MinSize  float64
	MaxSize  float64
	Featured *bool
	Verified *bool
	BrokerID uint
	Search   string
	Page     int
	PerPage  int
	// PublicOnly restricts results to active listings regardless of the
	// Status filter. Set for unauthenticated browsing.
	PublicOnly bool
}

// Page is a paginated result set.
type Page struct {
	Items      []domain.Listing `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

func (f *Filter) normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
}

func validStatus(s string) bool {
	switch s {
	case domain.ListingDraft, domain.ListingActive, domain.ListingReserved,
		domain.ListingSold, domain.ListingWithdrawn:
		return true
	}
	return false
}

func validLandType(t string) bool {
	switch t {
	case domain.LandResidential, domain.LandCommercial, domain.LandAgricultural,
		domain.LandIndustrial, domain.LandMixed:
		return true
	}
	return false
}

// Create registers a new draft listing owned by the calling broker.
func (s *Service) Create(ctx context.Context, brokerID uint, in CreateInput) (*domain.Listing, error) {
	fields := map[string]string{}
	if !validation.LenBetween(in.Title, 5, 200) {
		fields["title"] = "Title must be between 5 and 200 characters"
	}
	if !validation.LenBetween(in.Description, 20, 5000) {
		fields["description"] = "Description must be between 20 and 5000 characters"
	}
	if strings.TrimSpace(in.Sector) == "" {
		fields["sector"] = "Sector is required"
	}
	if strings.TrimSpace(in.Cell) == "" {
		fields["cell"] = "Cell is required"
	}
	if strings.TrimSpace(in.Village) == "" {
		fields["village"] = "Village is required"
	}
	if in.PriceAmount <= 0 {
		fields["price_amount"] = "Price must be greater than zero"
	}
	if in.LandSizeValue <= 0 {
		fields["land_size_value"] = "Land size must be greater than zero"
	}
	if !validLandType(in.LandType) {
		fields["land_type"] = "Invalid land type"
	}
	if strings.TrimSpace(in.LandownerName) == "" {
		fields["landowner_name"] = "Landowner name is required"
	}
	if strings.TrimSpace(in.LandownerPhone) == "" {
		fields["landowner_phone"] = "Landowner phone is required"
	}
	if strings.TrimSpace(in.LandownerIDNumber) == "" {
		fields["landowner_id_number"] = "Landowner ID number is required"
	}
	currency := in.PriceCurrency
	if currency == "" {
		currency = domain.CurrencyRWF
	}
	if currency != domain.CurrencyRWF && currency != domain.CurrencyUSD {
		fields["price_currency"] = "Currency must be RWF or USD"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	district := in.District
	if district == "" {
		district = "Bugesera"
	}
	negotiable := true
	if in.PriceNegotiable != nil {
		negotiable = *in.PriceNegotiable
	}
	roadAccess := true
	if in.HasRoadAccess != nil {
		roadAccess = *in.HasRoadAccess
	}

	listing := &domain.Listing{
		Title:             strings.TrimSpace(in.Title),
		Description:       strings.TrimSpace(in.Description),
		District:          district,
		Sector:            in.Sector,
		Cell:              in.Cell,
		Village:           in.Village,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		PriceAmount:       in.PriceAmount,
		PriceCurrency:     currency,
		PriceNegotiable:   negotiable,
		LandSizeValue:     in.LandSizeValue,
		LandSizeUnit:      defaultStr(in.LandSizeUnit, "sqm"),
		LandType:          in.LandType,
		SoilType:          defaultStr(in.SoilType, "loamy"),
		Topography:        defaultStr(in.Topography, "flat"),
		HasElectricity:    in.HasElectricity,
		HasWater:          in.HasWater,
		HasInternet:       in.HasInternet,
		HasRoadAccess:     roadAccess,
		RoadType:          defaultStr(in.RoadType, "dirt"),
		NearSchool:        in.NearSchool,
		NearHospital:      in.NearHospital,
		NearMarket:        in.NearMarket,
		LandownerName:     in.LandownerName,
		LandownerPhone:    in.LandownerPhone,
		LandownerEmail:    in.LandownerEmail,
		LandownerIDNumber: in.LandownerIDNumber,
		BrokerID:          brokerID,
		Status:            domain.ListingDraft,
	}

	// Retry on the rare reference collision; the unique index is the
	// backstop.
	for attempt := 0; attempt < 3; attempt++ {
		listing.ListingReference = newReference()
		err := s.DB.WithContext(ctx).Create(listing).Error
		if err == nil {
			return listing, nil
		}
		if attempt == 2 || !isDuplicate(err) {
			return nil, apperr.Internal(err)
		}
	}
	return listing, nil
}

// newReference builds a human-quotable code: "PSC" + last six digits of the
// unix-millis timestamp + three random digits.
func newReference() string {
	ms := time.Now().UnixMilli()
	return fmt.Sprintf("PSC%06d%03d", ms%1_000_000, rand.Intn(1000))
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique")
}

// List returns a filtered, paginated page of listings. Featured listings
// sort first, then newest.
func (s *Service) List(ctx context.Context, f Filter) (*Page, error) {
	f.normalize()
	q := s.DB.WithContext(ctx).Model(&domain.Listing{})

	if f.PublicOnly {
		q = q.Where("status = ?", domain.ListingActive)
	} else if f.Status != "" {
		if !validStatus(f.Status) {
			return nil, apperr.Validation("Invalid status filter")
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.LandType != "" {
		q = q.Where("land_type = ?", f.LandType)
	}
	if f.District != "" {
		q = q.Where("district = ?", f.District)
	}
	if f.Sector != "" {
		q = q.Where("sector = ?", f.Sector)
	}
	if f.MinPrice > 0 {
		q = q.Where("price_amount >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_amount <= ?", f.MaxPrice)
	}
	if f.MinSize > 0 {
		q = q.Where("land_size_value >= ?", f.MinSize)
	}
	if f.MaxSize > 0 {
		q = q.Where("land_size_value <= ?", f.MaxSize)
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	if f.Verified != nil {
		q = q.Where("is_verified = ?", *f.Verified)
	}
	if f.BrokerID != 0 {
		q = q.Where("broker_id = ?", f.BrokerID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ? OR listing_reference LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	var items []domain.Listing
	err := q.Preload("Broker").Preload("Media").Preload("Documents").
		Order("featured DESC, created_at DESC").
		Offset((f.Page - 1) * f.PerPage).Limit(f.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totalPages := int((total + int64(f.PerPage) - 1) / int64(f.PerPage))
	return &Page{Items: items, Total: total, Page: f.Page, PerPage: f.PerPage, TotalPages: totalPages}, nil
}

// Get loads one listing with its associations. When countView is set the
// views counter is bumped off the request path.
func (s *Service) Get(ctx context.Context, id uint, countView bool) (*domain.Listing, error) {
	var listing domain.Listing
	err := s.DB.WithContext(ctx).
		Preload("Broker").Preload("Media").Preload("Documents").
		First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, apperr.Internal(err)
	}
	if countView {
		go func(listingID uint) {
			if err := s.IncrementViews(context.Background(), listingID); err != nil {
				log.Warn().Err(err).Uint("listing_id", listingID).Msg("failed to count view")
			}
		}(listing.ID)
	}
	return &listing, nil
}

// GetByReference resolves a listing by its public PSC code.
func (s *Service) GetByReference(ctx context.Context, ref string) (*domain.Listing, error) {
	var listing domain.Listing
	err := s.DB.WithContext(ctx).
		Preload("Broker").Preload("Media").Preload("Documents").
		Where("listing_reference = ?", ref).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, apperr.Internal(err)
	}
	return &listing, nil
}

// IncrementViews bumps the counter atomically in the database.
func (s *Service) IncrementViews(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Model(&domain.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// IncrementInquiries bumps the inquiry counter atomically.
func (s *Service) IncrementInquiries(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Model(&domain.Listing{}).
		Where("id = ?", id).
		UpdateColumn("inquiries_count", gorm.Expr("inquiries_count + 1")).Error
}

// Update patches a listing the requester is allowed to manage.
// Verification fields only move through Verify.
func (s *Service) Update(ctx context.Context, req accesspolicy.Requester, id uint, in UpdateInput) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, apperr.Internal(err)
	}
	if !accesspolicy.CanManageListing(req, &listing) {
		return nil, apperr.Forbidden("You can only manage your own listings")
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		if !validation.LenBetween(*in.Title, 5, 200) {
			return nil, apperr.Validation("Title must be between 5 and 200 characters")
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		if !validation.LenBetween(*in.Description, 20, 5000) {
			return nil, apperr.Validation("Description must be between 20 and 5000 characters")
		}
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.District != nil {
		updates["district"] = *in.District
	}
	if in.Sector != nil {
		updates["sector"] = *in.Sector
	}
	if in.Cell != nil {
		updates["cell"] = *in.Cell
	}
	if in.Village != nil {
		updates["village"] = *in.Village
	}
	if in.Latitude != nil {
		updates["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		updates["longitude"] = *in.Longitude
	}
	if in.PriceAmount != nil {
		if *in.PriceAmount <= 0 {
			return nil, apperr.Validation("Price must be greater than zero")
		}
		updates["price_amount"] = *in.PriceAmount
	}
	if in.PriceCurrency != nil {
		if *in.PriceCurrency != domain.CurrencyRWF && *in.PriceCurrency != domain.CurrencyUSD {
			return nil, apperr.Validation("Currency must be RWF or USD")
		}
		updates["price_currency"] = *in.PriceCurrency
	}
	if in.PriceNegotiable != nil {
		updates["price_negotiable"] = *in.PriceNegotiable
	}
	if in.LandSizeValue != nil {
		if *in.LandSizeValue <= 0 {
			return nil, apperr.Validation("Land size must be greater than zero")
		}
		updates["land_size_value"] = *in.LandSizeValue
	}
	if in.LandSizeUnit != nil {
		updates["land_size_unit"] = *in.LandSizeUnit
	}
	if in.LandType != nil {
		if !validLandType(*in.LandType) {
			return nil, apperr.Validation("Invalid land type")
		}
		updates["land_type"] = *in.LandType
	}
	if in.SoilType != nil {
		updates["soil_type"] = *in.SoilType
	}
	if in.Topography != nil {
		updates["topography"] = *in.Topography
	}
	if in.HasElectricity != nil {
		updates["has_electricity"] = *in.HasElectricity
	}
	if in.HasWater != nil {
		updates["has_water"] = *in.HasWater
	}
	if in.HasInternet != nil {
		updates["has_internet"] = *in.HasInternet
	}
	if in.HasRoadAccess != nil {
		updates["has_road_access"] = *in.HasRoadAccess
	}
	if in.RoadType != nil {
		updates["road_type"] = *in.RoadType
	}
	if in.NearSchool != nil {
		updates["near_school"] = *in.NearSchool
	}
	if in.NearHospital != nil {
		updates["near_hospital"] = *in.NearHospital
	}
	if in.NearMarket != nil {
		updates["near_market"] = *in.NearMarket
	}
	if in.LandownerName != nil {
		updates["landowner_name"] = *in.LandownerName
	}
	if in.LandownerPhone != nil {
		updates["landowner_phone"] = *in.LandownerPhone
	}
	if in.LandownerEmail != nil {
		updates["landowner_email"] = *in.LandownerEmail
	}
	if in.LandownerIDNumber != nil {
		updates["landowner_id_number"] = *in.LandownerIDNumber
	}
	if in.Status != nil {
		if !validStatus(*in.Status) {
			return nil, apperr.Validation("Invalid listing status")
		}
		updates["status"] = *in.Status
	}
	if len(updates) == 0 {
		return &listing, nil
	}
	if err := s.DB.WithContext(ctx).Model(&listing).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.DB.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &listing, nil
}

// Verify marks a listing verified (admin). Verification forces the listing
// active so it becomes publicly browsable, and notifies the broker.
func (s *Service) Verify(ctx context.Context, req accesspolicy.Requester, id uint, notes string) (*domain.Listing, error) {
	if !accesspolicy.CanModerateListing(req) {
		return nil, apperr.Forbidden("Only admins can verify listings")
	}
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).Preload("Broker").First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, apperr.Internal(err)
	}
	now := time.Now()
	updates := map[string]interface{}{
		"is_verified":       true,
		"verified_by":       req.UserID,
		"verification_date": now,
		"status":            domain.ListingActive,
	}
	if notes != "" {
		updates["verification_notes"] = notes
	}
	if err := s.DB.WithContext(ctx).Model(&listing).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	listing.IsVerified = true
	listing.VerifiedBy = &req.UserID
	listing.VerificationDate = &now
	listing.VerificationNotes = notes
	listing.Status = domain.ListingActive

	if s.Dispatcher != nil && listing.Broker != nil && listing.Broker.Email != "" {
		s.Dispatcher.Enqueue(notifications.ListingVerified(
			listing.Broker.Email, listing.Broker.Name, listing.Title))
	}
	return &listing, nil
}

// ToggleFeatured flips the featured flag (admin).
func (s *Service) ToggleFeatured(ctx context.Context, req accesspolicy.Requester, id uint) (*domain.Listing, error) {
	if !accesspolicy.CanModerateListing(req) {
		return nil, apperr.Forbidden("Only admins can feature listings")
	}
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Listing not found")
		}
		return nil, apperr.Internal(err)
	}
	if err := s.DB.WithContext(ctx).Model(&listing).
		Update("featured", !listing.Featured).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	listing.Featured = !listing.Featured
	return &listing, nil
}

// Delete removes a listing and its stored files. Cascade handles the
// document and media rows; the files on disk are removed best-effort.
func (s *Service) Delete(ctx context.Context, req accesspolicy.Requester, id uint) error {
	var listing domain.Listing
	err := s.DB.WithContext(ctx).Preload("Documents").Preload("Media").First(&listing, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Listing not found")
		}
		return apperr.Internal(err)
	}
	if !accesspolicy.CanManageListing(req, &listing) {
		return apperr.Forbidden("You can only manage your own listings")
	}
	if err := s.DB.WithContext(ctx).Select("Documents", "Media").Delete(&listing).Error; err != nil {
		return apperr.Internal(err)
	}
	if s.Store != nil {
		for _, doc := range listing.Documents {
			if err := s.Store.Remove(doc.FilePath); err != nil {
				log.Warn().Err(err).Str("path", doc.FilePath).Msg("failed to remove document file")
			}
		}
		for _, m := range listing.Media {
			if err := s.Store.Remove(m.FilePath); err != nil {
				log.Warn().Err(err).Str("path", m.FilePath).Msg("failed to remove media file")
			}
		}
	}
	return nil
}

// Stats summarizes the registry. Brokers see only their own listings;
// admins see everything.
type Stats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByLandType     map[string]int64 `json:"by_land_type"`
	Verified       int64            `json:"verified"`
	Featured       int64            `json:"featured"`
	TotalViews     int64            `json:"total_views"`
	TotalInquiries int64            `json:"total_inquiries"`
}

func (s *Service) Stats(ctx context.Context, req accesspolicy.Requester) (*Stats, error) {
	scoped := func() *gorm.DB {
		return s.DB.WithContext(ctx).Model(&domain.Listing{}).
			Scopes(accesspolicy.ListingStatsScope(req))
	}

	out := &Stats{ByStatus: map[string]int64{}, ByLandType: map[string]int64{}}
	if err := scoped().Count(&out.Total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var byStatus []bucket
	if err := scoped().Select("status AS key, COUNT(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	for _, b := range byStatus {
		out.ByStatus[b.Key] = b.Count
	}

	var byType []bucket
	if err := scoped().Select("land_type AS key, COUNT(*) AS count").
		Group("land_type").Scan(&byType).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	for _, b := range byType {
		out.ByLandType[b.Key] = b.Count
	}

	if err := scoped().Where("is_verified = ?", true).Count(&out.Verified).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if err := scoped().Where("featured = ?", true).Count(&out.Featured).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	type sums struct {
		Views     int64
		Inquiries int64
	}
	var t sums
	if err := scoped().Select("COALESCE(SUM(views_count),0) AS views, COALESCE(SUM(inquiries_count),0) AS inquiries").
		Scan(&t).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	out.TotalViews = t.Views
	out.TotalInquiries = t.Inquiries
	return out, nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
