package domain

import "time"

// Contact subjects.
const (
	SubjectGeneralInquiry   = "general-inquiry"
	SubjectPlotInterest     = "plot-interest"
	SubjectBrokerServices   = "broker-services"
	SubjectTechnicalSupport = "technical-support"
	SubjectPartnership      = "partnership"
)

// ValidContactSubject reports whether s is a known subject.
func ValidContactSubject(s string) bool {
	switch s {
	case SubjectGeneralInquiry, SubjectPlotInterest, SubjectBrokerServices,
		SubjectTechnicalSupport, SubjectPartnership:
		return true
	}
	return false
}

// ValidContactStatus reports whether s is a status a contact may hold.
func ValidContactStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResponded, StatusClosed:
		return true
	}
	return false
}

// ValidContactPriority reports whether p is a priority a contact may hold.
// Contacts never go urgent; that level is reserved for inquiries.
func ValidContactPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PriorityForSubject derives a contact's priority at creation.
func PriorityForSubject(subject string) string {
	switch subject {
	case SubjectTechnicalSupport, SubjectPartnership:
		return PriorityHigh
	case SubjectBrokerServices, SubjectPlotInterest:
		return PriorityMedium
	case SubjectGeneralInquiry:
		return PriorityLow
	}
	return PriorityMedium
}

// Contact is a general contact-form submission. A single response is kept:
// responding again overwrites ResponseMessage.
type Contact struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"size:255;not null;index" json:"email"`
	Phone   string `gorm:"size:20" json:"phone"`
	Subject string `gorm:"size:30;not null;index" json:"subject"`
	Message string `gorm:"type:text;not null" json:"message"`

	Status     string `gorm:"size:20;default:new;index" json:"status"`
	Priority   string `gorm:"size:10;default:medium;index" json:"priority"`
	AssignedTo *uint  `gorm:"index" json:"assigned_to"`
	Assignee   *User  `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`

	ResponseMessage string     `gorm:"type:text" json:"response_message"`
	RespondedBy     *uint      `json:"responded_by"`
	RespondedAt     *time.Time `json:"responded_at"`

	Audit `gorm:"embedded" json:"audit"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }
