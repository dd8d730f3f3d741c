package contacts

import (
	"context"
	"errors"
	"strings"
	"time"

	"plotsure-backend/internal/application/accesspolicy"
	"plotsure-backend/internal/application/notifications"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/pkg/apperr"
	"plotsure-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

// Service works general contact-form submissions. Unlike inquiries these
// are visible to all staff; there is no per-broker scoping.
type Service struct {
	DB         *gorm.DB
	Dispatcher *notifications.Dispatcher
	AdminEmail string
}

type CreateInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
	Audit   domain.Audit
}

// Create takes in a public contact submission. Priority is derived from the
// subject; the submitter gets a confirmation and admins get an alert.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Contact, error) {
	fields := map[string]string{}
	if !validation.LenBetween(in.Name, 2, 100) {
		fields["name"] = "Name must be between 2 and 100 characters"
	}
	if !validation.IsValidEmail(in.Email) {
		fields["email"] = "Please provide a valid email"
	}
	if in.Phone != "" && !validation.IsValidPhone(in.Phone) {
		fields["phone"] = "Please provide a valid phone number"
	}
	if !domain.ValidContactSubject(in.Subject) {
		fields["subject"] = "Invalid subject"
	}
	if !validation.LenBetween(in.Message, 10, 2000) {
		fields["message"] = "Message must be between 10 and 2000 characters"
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	contact := &domain.Contact{
		Name:     strings.TrimSpace(in.Name),
		Email:    validation.NormalizeEmail(in.Email),
		Phone:    in.Phone,
		Subject:  in.Subject,
		Message:  strings.TrimSpace(in.Message),
		Status:   domain.StatusNew,
		Priority: domain.PriorityForSubject(in.Subject),
		Audit:    in.Audit,
	}
	if err := s.DB.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if s.Dispatcher != nil {
		s.Dispatcher.Enqueue(notifications.ContactConfirmation(contact.Email, contact.Name, contact.Subject))
		if s.AdminEmail != "" {
			s.Dispatcher.Enqueue(notifications.ContactAdminAlert(
				s.AdminEmail, contact.Name, contact.Email, contact.Phone,
				contact.Subject, contact.Priority, contact.Message))
		}
	}
	return contact, nil
}

// Filter narrows List results.
type Filter struct {
	Status     string
	Priority   string
	Subject    string
	AssignedTo uint
	Search     string
	Page       int
	PerPage    int
}

type Page struct {
	Items      []domain.Contact `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

// List returns contacts newest first. All staff see all contacts.
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

	q := s.DB.WithContext(ctx).Model(&domain.Contact{}).
		Scopes(accesspolicy.ContactScope(req))
	if f.Status != "" {
		if !domain.ValidContactStatus(f.Status) {
			return nil, apperr.Validation("Invalid status filter")
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		if !domain.ValidContactPriority(f.Priority) {
			return nil, apperr.Validation("Invalid priority filter")
		}
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Subject != "" {
		q = q.Where("subject = ?", f.Subject)
	}
	if f.AssignedTo != 0 {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR message LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	var items []domain.Contact
	err := q.Preload("Assignee").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).Limit(f.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	totalPages := int((total + int64(f.PerPage) - 1) / int64(f.PerPage))
	return &Page{Items: items, Total: total, Page: f.Page, PerPage: f.PerPage, TotalPages: totalPages}, nil
}

// Get loads one contact.
func (s *Service) Get(ctx context.Context, req accesspolicy.Requester, id uint) (*domain.Contact, error) {
	var contact domain.Contact
	err := s.DB.WithContext(ctx).Preload("Assignee").First(&contact, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Contact submission not found")
		}
		return nil, apperr.Internal(err)
	}
	if !accesspolicy.CanAccessContact(req, &contact) {
		return nil, apperr.Forbidden("You do not have access to this submission")
	}
	return &contact, nil
}

type UpdateStatusInput struct {
	Status   string
	Priority string
}

// UpdateStatus moves a contact through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, req accesspolicy.Requester, id uint, in UpdateStatusInput) (*domain.Contact, error) {
	contact, err := s.Get(ctx, req, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Status != "" {
		if !domain.ValidContactStatus(in.Status) {
			return nil, apperr.Validation("Invalid contact status")
		}
		updates["status"] = in.Status
	}
	if in.Priority != "" {
		if !domain.ValidContactPriority(in.Priority) {
			return nil, apperr.Validation("Invalid contact priority")
		}
		updates["priority"] = in.Priority
	}
	if len(updates) == 0 {
		return contact, nil
	}
	if err := s.DB.WithContext(ctx).Model(contact).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.DB.WithContext(ctx).Preload("Assignee").First(contact, id).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return contact, nil
}

// Assign hands a contact to a staff member. A fresh contact advances to
// in_progress on assignment.
func (s *Service) Assign(ctx context.Context, req accesspolicy.Requester, id, assigneeID uint) (*domain.Contact, error) {
	contact, err := s.Get(ctx, req, id)
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
	if contact.Status == domain.StatusNew {
		updates["status"] = domain.StatusInProgress
	}
	if err := s.DB.WithContext(ctx).Model(contact).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	contact.AssignedTo = &assigneeID
	contact.Assignee = &assignee
	if contact.Status == domain.StatusNew {
		contact.Status = domain.StatusInProgress
	}
	return contact, nil
}

// Respond records the reply. A contact keeps a single response: responding
// again overwrites the stored message and stamps the new responder.
func (s *Service) Respond(ctx context.Context, req accesspolicy.Requester, id uint, message string, sendEmail bool) (*domain.Contact, error) {
	if !validation.LenBetween(message, 1, 5000) {
		return nil, apperr.Validation("Response message is required")
	}
	contact, err := s.Get(ctx, req, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"response_message": message,
		"responded_by":     req.UserID,
		"responded_at":     now,
		"status":           domain.StatusResponded,
	}
	if err := s.DB.WithContext(ctx).Model(contact).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	contact.ResponseMessage = message
	contact.RespondedBy = &req.UserID
	contact.RespondedAt = &now
	contact.Status = domain.StatusResponded

	if sendEmail && s.Dispatcher != nil {
		s.Dispatcher.Enqueue(notifications.SubmissionResponse(
			contact.Email, contact.Name, contact.Subject, message, contact.Message))
	}
	return contact, nil
}

// Stats summarizes the contact queue.
type Stats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
	BySubject  map[string]int64 `json:"by_subject"`
	Unassigned int64            `json:"unassigned"`
}

func (s *Service) Stats(ctx context.Context, req accesspolicy.Requester) (*Stats, error) {
	scoped := func() *gorm.DB {
		return s.DB.WithContext(ctx).Model(&domain.Contact{}).
			Scopes(accesspolicy.ContactScope(req))
	}

	out := &Stats{ByStatus: map[string]int64{}, ByPriority: map[string]int64{}, BySubject: map[string]int64{}}
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
	if err := group("status", out.ByStatus); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := group("priority", out.ByPriority); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := group("subject", out.BySubject); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := scoped().Where("assigned_to IS NULL").Count(&out.Unassigned).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Delete removes a contact submission permanently (admin).
func (s *Service) Delete(ctx context.Context, req accesspolicy.Requester, id uint) error {
	if !req.IsAdmin() {
		return apperr.Forbidden("Only admins can delete contact submissions")
	}
	res := s.DB.WithContext(ctx).Delete(&domain.Contact{}, id)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Contact submission not found")
	}
	return nil
}
