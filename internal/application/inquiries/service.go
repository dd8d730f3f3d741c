package inquiries

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/application/listings"
	"plotsure-backend/internal/application/notifications"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service works inquiries through their lifecycle: intake from the public
// form, triage, assignment, responses, follow-ups and conversion.
type Service struct {
	DB         *gorm.DB
	Listings   *listings.Service
	Dispatcher *notifications.Dispatcher
}

type CreateInput struct {
	ListingID *uint

	InquirerName     string
	InquirerEmail    string
	InquirerPhone    string
	InquirerLocation string
	IsDiaspora       bool
	PreferredContact string

	InquiryType     string
	Message         string
	BudgetMin       *float64
	BudgetMax       *float64
	BudgetCurrency  string
	Timeframe       string
	VisitPreference string

	Audit domain.Audit
}

// Create takes in a public inquiry. Side effects on the listing (inquiry
// counter, auto-assignment to the broker, broker alert) are best-effort:
// their failure is logged but never rolls back the stored inquiry.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Inquiry, error) {
	fields := map[string]string{}
	if !validation.LenBetween(in.InquirerName, 2, 100) {
		fields["inquirer_name"] = "Name must be between 2 and 100 characters"
	}
	if !validation.IsValidEmail(in.InquirerEmail) {
		fields["inquirer_email"] = "Please provide a valid email"
	}
	if !validation.IsValidPhone(in.InquirerPhone) {
		fields["inquirer_phone"] = "Please provide a valid phone number"
	}
	if !validation.LenBetween(in.Message, 10, 2000) {
		fields["message"] = "Message must be between 10 and 2000 characters"
	}
	if !domain.ValidInquiryType(in.InquiryType) {
		fields["inquiry_type"] = "Invalid inquiry type"
	}
	if in.Timeframe != "" && !domain.ValidTimeframe(in.Timeframe) {
		fields["timeframe"] = "Invalid timeframe"
	}
	if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax {
		fields["budget_max"] = "Maximum budget must not be below minimum budget"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	var listing *domain.Listing
	if in.ListingID != nil {
		var l domain.Listing
		err := s.DB.WithContext(ctx).Preload("Broker").First(&l, *in.ListingID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("Listing not found")
			}
			return nil, apperr.Internal(err)
		}
		if l.Status != domain.ListingActive {
			return nil, apperr.ListingUnavailable("This listing is no longer available for inquiries")
		}
		listing = &l
	}

	inq := &domain.Inquiry{
		ListingID:        in.ListingID,
		InquirerName:     strings.TrimSpace(in.InquirerName),
		InquirerEmail:    validation.NormalizeEmail(in.InquirerEmail),
		InquirerPhone:    in.InquirerPhone,
		InquirerLocation: in.InquirerLocation,
		IsDiaspora:       in.IsDiaspora,
		PreferredContact: defaultStr(in.PreferredContact, "email"),
		InquiryType:      in.InquiryType,
		Message:          strings.TrimSpace(in.Message),
		BudgetMin:        in.BudgetMin,
		BudgetMax:        in.BudgetMax,
		BudgetCurrency:   defaultStr(in.BudgetCurrency, domain.CurrencyRWF),
		Timeframe:        defaultStr(in.Timeframe, domain.TimeframeFlexible),
		VisitPreference:  defaultStr(in.VisitPreference, "physical_visit"),
		Status:           domain.StatusNew,
		Priority:         domain.PriorityMedium,
		Audit:            in.Audit,
	}
	if err := s.DB.WithContext(ctx).Create(inq).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if listing != nil {
		if err := s.Listings.IncrementInquiries(ctx, listing.ID); err != nil {
			log.Error().Err(err).Uint("listing_id", listing.ID).Msg("failed to bump inquiry counter")
		}
		// Route the inquiry straight to the listing's broker.
		if err := s.DB.WithContext(ctx).Model(inq).
			Update("assigned_to", listing.BrokerID).Error; err != nil {
			log.Error().Err(err).Uint("inquiry_id", inq.ID).Msg("failed to auto-assign inquiry")
		} else {
			inq.AssignedTo = &listing.BrokerID
		}
		if s.Dispatcher != nil && listing.Broker != nil && listing.Broker.Email != "" {
			s.Dispatcher.Enqueue(notifications.InquiryBrokerAlert(
				listing.Broker.Email, listing.Broker.Name,
				inq.InquirerName, listing.Title, inq.Message))
		}
	}

	if s.Dispatcher != nil {
		title := ""
		if listing != nil {
			title = listing.Title
		}
		s.Dispatcher.Enqueue(notifications.InquiryConfirmation(inq.InquirerEmail, inq.InquirerName, title))
	}
	return inq, nil
}

// Filter narrows List results for staff views.
type Filter struct {
	Status      string
	Priority    string
	InquiryType string
	ListingID   uint
	AssignedTo  uint
	Search      string
	Page        int
	PerPage     int
}

type Page struct {
	Items      []domain.Inquiry `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

// List returns inquiries visible to the requester, newest first. Brokers
// see inquiries assigned to them or targeting their listings; admins see
// everything.
func (s *Service) List(ctx context.Context, req accesspolicy.Requester, f Filter) (*Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}

	q := s.DB.WithContext(ctx).Model(&domain.Inquiry{}).
		Scopes(accesspolicy.InquiryScope(req))
	if f.Status != "" {
		if !domain.ValidInquiryStatus(f.Status) {
			return nil, apperr.Validation("Invalid status filter")
		}
		q = q.Where("inquiries.status = ?", f.Status)
	}
	if f.Priority != "" {
		if !domain.ValidInquiryPriority(f.Priority) {
			return nil, apperr.Validation("Invalid priority filter")
		}
		q = q.Where("inquiries.priority = ?", f.Priority)
	}
	if f.InquiryType != "" {
		q = q.Where("inquiries.inquiry_type = ?", f.InquiryType)
	}
	if f.ListingID != 0 {
		q = q.Where("inquiries.listing_id = ?", f.ListingID)
	}
	if f.AssignedTo != 0 {
		q = q.Where("inquiries.assigned_to = ?", f.AssignedTo)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("inquiries.inquirer_name LIKE ? OR inquiries.inquirer_email LIKE ? OR inquiries.message LIKE ?",
			like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	var items []domain.Inquiry
	err := q.Preload("Listing").Preload("Assignee").
		Order("inquiries.created_at DESC").
		Offset((f.Page - 1) * f.PerPage).Limit(f.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totalPages := int((total + int64(f.PerPage) - 1) / int64(f.PerPage))
	return &Page{Items: items, Total: total, Page: f.Page, PerPage: f.PerPage, TotalPages: totalPages}, nil
}

// Get loads one inquiry the requester may access.
func (s *Service) Get(ctx context.Context, req accesspolicy.Requester, id uint) (*domain.Inquiry, error) {
	var inq domain.Inquiry
	err := s.DB.WithContext(ctx).
		Preload("Listing").Preload("Listing.Broker").Preload("Assignee").
		First(&inq, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Inquiry not found")
		}
		return nil, apperr.Internal(err)
	}
	if !accesspolicy.CanAccessInquiry(req, &inq) {
		return nil, apperr.Forbidden("You do not have access to this inquiry")
	}
	return &inq, nil
}

type UpdateStatusInput struct {
	Status        string
	Priority      string
	InternalNotes *string
	Tags          []string
}

// UpdateStatus moves an inquiry through its lifecycle. Entering responded
// through this path stamps response tracking the same way Respond does.
func (s *Service) UpdateStatus(ctx context.Context, req accesspolicy.Requester, id uint, in UpdateStatusInput) (*domain.Inquiry, error) {
	inq, err := s.Get(ctx, req, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Status != "" {
		if !domain.ValidInquiryStatus(in.Status) {
			return nil, apperr.Validation("Invalid inquiry status")
		}
		updates["status"] = in.Status
		if in.Status == domain.StatusResponded && inq.Status != domain.StatusResponded {
			now := time.Now()
			if inq.FirstResponseDate == nil {
				updates["first_response_date"] = now
			}
			updates["last_response_date"] = now
			updates["response_count"] = gorm.Expr("response_count + 1")
		}
	}
	if in.Priority != "" {
		if !domain.ValidInquiryPriority(in.Priority) {
			return nil, apperr.Validation("Invalid inquiry priority")
		}
		updates["priority"] = in.Priority
	}
	if in.InternalNotes != nil {
		updates["internal_notes"] = *in.InternalNotes
	}
	if in.Tags != nil {
		raw, err := json.Marshal(in.Tags)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		updates["tags"] = datatypes.JSON(raw)
	}
	if len(updates) == 0 {
		return inq, nil
	}
	if err := s.DB.WithContext(ctx).Model(inq).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.DB.WithContext(ctx).Preload("Listing").Preload("Assignee").First(inq, id).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return inq, nil
}

// Assign hands an inquiry to a staff member. A fresh inquiry advances to
// contacted on assignment.
func (s *Service) Assign(ctx context.Context, req accesspolicy.Requester, id, assigneeID uint) (*domain.Inquiry, error) {
	inq, err := s.Get(ctx, req, id)
	if err != nil {
		return nil, err
	}

	var assignee domain.User
	if err := s.DB.WithContext(ctx).First(&assignee, assigneeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidAssignee("Assignee does not exist")
		}
		return nil, apperr.Internal(err)
	}
	if !assignee.IsActive {
		return nil, apperr.InvalidAssignee("Assignee account is deactivated")
	}
	if !assignee.IsStaff() {
		return nil, apperr.InvalidAssignee("Assignee must be a broker or admin")
	}

	updates := map[string]interface{}{"assigned_to": assigneeID}
	if inq.Status == domain.StatusNew {
		updates["status"] = domain.StatusContacted
	}
	if err := s.DB.WithContext(ctx).Model(inq).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	inq.AssignedTo = &assigneeID
	inq.Assignee = &assignee
	if inq.Status == domain.StatusNew {
		inq.Status = domain.StatusContacted
	}
	return inq, nil
}

// Respond records a reply to the inquirer: stamps first/last response dates,
// bumps the counter, marks the inquiry responded, and optionally emails the
// reply out.
func (s *Service) Respond(ctx context.Context, req accesspolicy.Requester, id uint, message string, sendEmail bool) (*domain.Inquiry, error) {
	if !validation.LenBetween(message, 1, 5000) {
		return nil, apperr.Validation("Response message is required")
	}
	inq, err := s.Get(ctx, req, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":             domain.StatusResponded,
		"last_response_date": now,
		"response_count":     gorm.Expr("response_count + 1"),
	}
	if inq.FirstResponseDate == nil {
		updates["first_response_date"] = now
	}
	if err := s.DB.WithContext(ctx).Model(inq).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if sendEmail && s.Dispatcher != nil {
		subject := "your inquiry"
		if inq.Listing != nil {
			subject = inq.Listing.Title
		}
		s.Dispatcher.Enqueue(notifications.SubmissionResponse(
			inq.InquirerEmail, inq.InquirerName, subject, message, inq.Message))
	}

	if err := s.DB.WithContext(ctx).Preload("Listing").Preload("Assignee").First(inq, id).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return inq, nil
}

// Convert closes the loop on a successful inquiry. Converting twice is a
// conflict: the first conversion's date and value are the record.
func (s *Service) Convert(ctx context.Context, req accesspolicy.Requester, id uint, value *float64) (*domain.Inquiry, error) {
	inq, err := s.Get(ctx, req, id)
	if err != nil {
		return nil, err
	}
	if inq.Status == domain.StatusConverted {
		return nil, apperr.Conflict("Inquiry has already been converted")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         domain.StatusConverted,
		"converted_date": now,
	}
	if value != nil {
		if *value < 0 {
			return nil, apperr.Validation("Conversion value must not be negative")
		}
		updates["conversion_value"] = *value
	}
	if err := s.DB.WithContext(ctx).Model(inq).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	inq.Status = domain.StatusConverted
	inq.ConvertedDate = &now
	inq.ConversionValue = value
	return inq, nil
}

type FollowUpInput struct {
	Date  time.Time
	Notes string
}

// SetFollowUp schedules a follow-up reminder on an inquiry.
func (s *Service) SetFollowUp(ctx context.Context, req accesspolicy.Requester, id uint, in FollowUpInput) (*domain.Inquiry, error) {
	if in.Date.IsZero() {
		return nil, apperr.Validation("Follow-up date is required")
	}
	inq, err := s.Get(ctx, req, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"next_follow_up_date": in.Date,
		"follow_up_notes":     in.Notes,
		"reminder_set":        true,
	}
	if err := s.DB.WithContext(ctx).Model(inq).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	inq.NextFollowUpDate = &in.Date
	inq.FollowUpNotes = in.Notes
	inq.ReminderSet = true
	return inq, nil
}

// DueForFollowUp pulls inquiries whose reminder has come due, oldest first.
// Closed and converted inquiries never surface here.
func (s *Service) DueForFollowUp(ctx context.Context, req accesspolicy.Requester) ([]domain.Inquiry, error) {
	var items []domain.Inquiry
	err := s.DB.WithContext(ctx).Model(&domain.Inquiry{}).
		Scopes(accesspolicy.InquiryScope(req)).
		Where("inquiries.reminder_set = ?", true).
		Where("inquiries.next_follow_up_date <= ?", time.Now()).
		Where("inquiries.status IN ?", []string{domain.StatusContacted, domain.StatusInProgress, domain.StatusResponded}).
		Preload("Listing").Preload("Assignee").
		Order("inquiries.next_follow_up_date ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

// Stats summarizes the inquiry pipeline for the requester's scope.
type Stats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByPriority     map[string]int64 `json:"by_priority"`
	ByType         map[string]int64 `json:"by_type"`
	Converted      int64            `json:"converted"`
	ConversionRate float64          `json:"conversion_rate"`
	TotalValue     float64          `json:"total_conversion_value"`
}

func (s *Service) Stats(ctx context.Context, req accesspolicy.Requester) (*Stats, error) {
	scoped := func() *gorm.DB {
		return s.DB.WithContext(ctx).Model(&domain.Inquiry{}).
			Scopes(accesspolicy.InquiryScope(req))
	}

	out := &Stats{ByStatus: map[string]int64{}, ByPriority: map[string]int64{}, ByType: map[string]int64{}}
	if err := scoped().Count(&out.Total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	type bucket struct {
		Key   string
		Count int64
	}
	group := func(col string, into map[string]int64) error {
		var rows []bucket
		if err := scoped().Select(col + " AS key, COUNT(*) AS count").Group(col).Scan(&rows).Error; err != nil {
			return err
		}
		for _, b := range rows {
			into[b.Key] = b.Count
		}
		return nil
	}
	if err := group("inquiries.status", out.ByStatus); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := group("inquiries.priority", out.ByPriority); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := group("inquiries.inquiry_type", out.ByType); err != nil {
		return nil, apperr.Internal(err)
	}

	out.Converted = out.ByStatus[domain.StatusConverted]
	if out.Total > 0 {
		out.ConversionRate = float64(out.Converted) / float64(out.Total)
	}

	var total struct{ Value float64 }
	if err := scoped().Select("COALESCE(SUM(conversion_value),0) AS value").
		Where("inquiries.status = ?", domain.StatusConverted).
		Scan(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	out.TotalValue = total.Value
	return out, nil
}

// Delete removes an inquiry permanently (admin).
func (s *Service) Delete(ctx context.Context, req accesspolicy.Requester, id uint) error {
	if !req.IsAdmin() {
		return apperr.Forbidden("Only admins can delete inquiries")
	}
	res := s.DB.WithContext(ctx).Delete(&domain.Inquiry{}, id)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Inquiry not found")
	}
	return nil
}

func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
