package models

type User struct {
	ID             string      `json:"id"`
	Email          string      `json:"email"`
	PasswordHash   string      `json:"-"`
	FullName       string      `json:"full_name"`
	Phone          string      `json:"phone,omitempty"`
	AccountType    AccountType `json:"account_type"`
	ExternalAuthID string      `json:"external_auth_id,omitempty"`
	LastLoginAt    *int64      `json:"last_login_at,omitempty"`
	CreatedAt      int64       `json:"created_at"`
	UpdatedAt      int64       `json:"updated_at"`
}

type Organization struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Type OrgType `json:"type"`
	// PersonalOwnerID is set only for PERSONAL organizations and backs the
	// one-personal-org-per-user unique index.
	PersonalOwnerID *string `json:"personal_owner_id,omitempty"`
	CreatedAt       int64   `json:"created_at"`
	UpdatedAt       int64   `json:"updated_at"`
}

type OrganizationMember struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	UserID         string  `json:"user_id"`
	Role           OrgRole `json:"role"`
	CreatedAt      int64   `json:"created_at"`

	User *User `json:"user,omitempty"`
}

// OrganizationCustomer links a user to an org as a customer without making
// them a member. UserID is optional: offline customers have contact fields
// only.
type OrganizationCustomer struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	UserID         *string `json:"user_id,omitempty"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	Phone          string  `json:"phone,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}

type Invitation struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	Email          string  `json:"email"`
	Role           OrgRole `json:"role"`
	Token          string  `json:"token"`
	InvitedBy      string  `json:"invited_by"`
	Accepted       bool    `json:"accepted"`
	ExpiresAt      int64   `json:"expires_at"`
	CreatedAt      int64   `json:"created_at"`
	UpdatedAt      int64   `json:"updated_at"`
}

type Project struct {
	ID                   string        `json:"id"`
	OrganizationID       string        `json:"organization_id"`
	CustomerID           *string       `json:"customer_id,omitempty"`
	TechnicianID         *string       `json:"technician_id,omitempty"`
	EditorID             *string       `json:"editor_id,omitempty"`
	ProjectManagerID     *string       `json:"project_manager_id,omitempty"`
	Title                string        `json:"title"`
	Description          string        `json:"description,omitempty"`
	AddressLine          string        `json:"address_line,omitempty"`
	City                 string        `json:"city,omitempty"`
	State                string        `json:"state,omitempty"`
	PostalCode           string        `json:"postal_code,omitempty"`
	Latitude             *float64      `json:"latitude,omitempty"`
	Longitude            *float64      `json:"longitude,omitempty"`
	Status               ProjectStatus `json:"status"`
	ScheduledTime        *int64        `json:"scheduled_time,omitempty"`
	CalendarEventID      *string       `json:"calendar_event_id,omitempty"`
	DeliveryToken        *string       `json:"delivery_token,omitempty"`
	DeliveryEnabledAt    *int64        `json:"delivery_enabled_at,omitempty"`
	ClientApprovalStatus string        `json:"client_approval_status,omitempty"`
	CreatedBy            string        `json:"created_by"`
	CreatedAt            int64         `json:"created_at"`
	UpdatedAt            int64         `json:"updated_at"`

	Customer *OrganizationCustomer `json:"customer,omitempty"`
}

type Message struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	SenderID  string      `json:"sender_id"`
	Channel   ChatChannel `json:"channel"`
	ThreadID  *string     `json:"thread_id,omitempty"`
	Body      string      `json:"body"`
	CreatedAt int64       `json:"created_at"`
}

type Notification struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	OrganizationID string  `json:"organization_id"`
	ProjectID      *string `json:"project_id,omitempty"`
	Kind           string  `json:"kind"`
	Role           *string `json:"role,omitempty"`
	Body           string  `json:"body"`
	Read           bool    `json:"read"`
	CreatedAt      int64   `json:"created_at"`
}

// Notification kinds.
const (
	NotifyAssignment = "assignment"
	NotifyDelivery   = "delivery"
)

type DownloadArtifact struct {
	ID                  string         `json:"id"`
	ProjectID           string         `json:"project_id"`
	RequestedBy         string         `json:"requested_by"`
	Status              ArtifactStatus `json:"status"`
	WorkerToken         *string        `json:"worker_token,omitempty"`
	ProcessingStartedAt *int64         `json:"processing_started_at,omitempty"`
	RetryCount          int            `json:"retry_count"`
	ArchiveURL          string         `json:"archive_url,omitempty"`
	ErrorMessage        string         `json:"error_message,omitempty"`
	CreatedAt           int64          `json:"created_at"`
	UpdatedAt           int64          `json:"updated_at"`

	Project *Project `json:"project,omitempty"`
}

type Inquiry struct {
	ID                 string        `json:"id"`
	OrganizationID     string        `json:"organization_id"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	Phone              string        `json:"phone,omitempty"`
	AddressLine        string        `json:"address_line,omitempty"`
	City               string        `json:"city,omitempty"`
	State              string        `json:"state,omitempty"`
	PostalCode         string        `json:"postal_code,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Status             InquiryStatus `json:"status"`
	ConvertedProjectID *string       `json:"converted_project_id,omitempty"`
	CreatedAt          int64         `json:"created_at"`
	UpdatedAt          int64         `json:"updated_at"`
}

type AvailabilitySetting struct {
	UserID              string `json:"user_id"`
	AutoDeclineBookings bool   `json:"auto_decline_bookings"`
	// Working window in minutes from midnight, local to the technician.
	WorkStartMinute int   `json:"work_start_minute"`
	WorkEndMinute   int   `json:"work_end_minute"`
	WorkingDays     []int `json:"working_days"` // 0=Sunday .. 6=Saturday
	UpdatedAt       int64 `json:"updated_at"`
}

type AvailabilityBlock struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Reason    string `json:"reason,omitempty"`
}
