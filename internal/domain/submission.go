package domain

// Priorities shared by inquiries and contacts. PriorityUrgent applies to
// inquiries only.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Submission statuses. Inquiries use the full set; contacts skip
// StatusContacted and never convert.
const (
	StatusNew        = "new"
	StatusContacted  = "contacted"
	StatusInProgress = "in_progress"
	StatusResponded  = "responded"
	StatusClosed     = "closed"
	StatusConverted  = "converted"
)

// Audit captures where a public submission came from. Stored for audit
// only; nothing branches on it.
type Audit struct {
	IPAddress string `gorm:"size:45" json:"ip_address"`
	UserAgent string `gorm:"type:text" json:"user_agent"`
	Referrer  string `gorm:"size:500" json:"referrer"`
}
