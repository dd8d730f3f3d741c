// Package accesspolicy is the single place that decides who may see or
// mutate listings and submissions. Handlers and services consult it instead
// of re-implementing role checks per endpoint.
package accesspolicy

import (
	"plotsure-backend/internal/domain"

	"gorm.io/gorm"
)

// Requester identifies the authenticated staff member an operation runs as.
type Requester struct {
	UserID uint
	Role   string
}

func (r Requester) IsAdmin() bool { return r.Role == domain.RoleAdmin }

// CanManageListing reports whether the requester may update or delete the
// listing. Admins always; brokers only their own.
func CanManageListing(r Requester, l *domain.Listing) bool {
	return r.IsAdmin() || l.BrokerID == r.UserID
}

// CanModerateListing covers verify and feature, which are admin-only.
func CanModerateListing(r Requester) bool {
	return r.IsAdmin()
}

// CanAccessInquiry reports whether the requester may read or mutate the
// inquiry: admins, the assigned user, or the broker owning the inquired
// listing.
func CanAccessInquiry(r Requester, inq *domain.Inquiry) bool {
	if r.IsAdmin() {
		return true
	}
	if inq.AssignedTo != nil && *inq.AssignedTo == r.UserID {
		return true
	}
	return inq.Listing != nil && inq.Listing.BrokerID == r.UserID
}

// InquiryScope narrows a query over inquiries to those the requester may
// see. Callers must join listings before applying the scope for brokers.
func InquiryScope(r Requester) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.IsAdmin() {
			return db
		}
		return db.
			Joins("LEFT JOIN listings ON listings.id = inquiries.listing_id").
			Where("inquiries.assigned_to = ? OR listings.broker_id = ?", r.UserID, r.UserID)
	}
}

// CanAccessContact reports whether the requester may read or mutate the
// contact. Contacts are deliberately staff-wide: any broker or admin sees
// every contact, unlike inquiries which are owner-scoped. Kept as one named
// decision so a future tightening is a one-line change.
func CanAccessContact(r Requester, _ *domain.Contact) bool {
	return r.Role == domain.RoleBroker || r.Role == domain.RoleAdmin
}

// ContactScope mirrors CanAccessContact for list queries.
func ContactScope(_ Requester) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db }
}

// ListingStatsScope narrows stats to a broker's own listings; admins see
// everything.
func ListingStatsScope(r Requester) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.IsAdmin() {
			return db
		}
		return db.Where("broker_id = ?", r.UserID)
	}
}
