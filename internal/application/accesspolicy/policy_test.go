package accesspolicy

import (
	"testing"

	"plotsure-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCanManageListing(t *testing.T) {
	listing := &domain.Listing{BrokerID: 7}

	assert.True(t, CanManageListing(Requester{UserID: 7, Role: domain.RoleBroker}, listing))
	assert.False(t, CanManageListing(Requester{UserID: 8, Role: domain.RoleBroker}, listing))
	assert.True(t, CanManageListing(Requester{UserID: 1, Role: domain.RoleAdmin}, listing))
}

func TestCanModerateListing(t *testing.T) {
	assert.True(t, CanModerateListing(Requester{UserID: 1, Role: domain.RoleAdmin}))
	assert.False(t, CanModerateListing(Requester{UserID: 7, Role: domain.RoleBroker}))
}

func TestCanAccessInquiry(t *testing.T) {
	assignee := uint(7)
	inq := &domain.Inquiry{AssignedTo: &assignee, Listing: &domain.Listing{BrokerID: 9}}

	assert.True(t, CanAccessInquiry(Requester{UserID: 7, Role: domain.RoleBroker}, inq), "assignee")
	assert.True(t, CanAccessInquiry(Requester{UserID: 9, Role: domain.RoleBroker}, inq), "listing owner")
	assert.False(t, CanAccessInquiry(Requester{UserID: 8, Role: domain.RoleBroker}, inq), "unrelated broker")
	assert.True(t, CanAccessInquiry(Requester{UserID: 1, Role: domain.RoleAdmin}, inq), "admin")

	general := &domain.Inquiry{}
	assert.False(t, CanAccessInquiry(Requester{UserID: 7, Role: domain.RoleBroker}, general))
	assert.True(t, CanAccessInquiry(Requester{UserID: 1, Role: domain.RoleAdmin}, general))
}

func TestCanAccessContact_AllStaff(t *testing.T) {
	contact := &domain.Contact{}
	assert.True(t, CanAccessContact(Requester{UserID: 7, Role: domain.RoleBroker}, contact))
	assert.True(t, CanAccessContact(Requester{UserID: 1, Role: domain.RoleAdmin}, contact))
}
