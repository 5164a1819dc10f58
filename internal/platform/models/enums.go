package models

// Persisted enum values. These are stored as TEXT and must not be renamed
// without a data migration.

type AccountType string

const (
	AccountAgent    AccountType = "AGENT"
	AccountProvider AccountType = "PROVIDER"
	AccountCompany  AccountType = "COMPANY"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountAgent, AccountProvider, AccountCompany:
		return true
	}
	return false
}

type OrgType string

const (
	OrgPersonal OrgType = "PERSONAL"
	OrgTeam     OrgType = "TEAM"
	OrgCompany  OrgType = "COMPANY"
)

func (t OrgType) Valid() bool {
	switch t {
	case OrgPersonal, OrgTeam, OrgCompany:
		return true
	}
	return false
}

type OrgRole string

const (
	RoleOwner          OrgRole = "OWNER"
	RoleAdmin          OrgRole = "ADMIN"
	RoleTechnician     OrgRole = "TECHNICIAN"
	RoleEditor         OrgRole = "EDITOR"
	RoleProjectManager OrgRole = "PROJECT_MANAGER"
	RoleAgent          OrgRole = "AGENT"
)

func (r OrgRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleTechnician, RoleEditor, RoleProjectManager, RoleAgent:
		return true
	}
	return false
}

type ProjectStatus string

const (
	StatusBooked    ProjectStatus = "BOOKED"
	StatusShooting  ProjectStatus = "SHOOTING"
	StatusEditing   ProjectStatus = "EDITING"
	StatusDelivered ProjectStatus = "DELIVERED"
	StatusCancelled ProjectStatus = "CANCELLED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusBooked, StatusShooting, StatusEditing, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is possible.
func (s ProjectStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type ChatChannel string

const (
	ChannelTeam     ChatChannel = "TEAM"
	ChannelCustomer ChatChannel = "CUSTOMER"
)

func (c ChatChannel) Valid() bool {
	return c == ChannelTeam || c == ChannelCustomer
}

type ArtifactStatus string

const (
	ArtifactPending    ArtifactStatus = "PENDING"
	ArtifactGenerating ArtifactStatus = "GENERATING"
	ArtifactReady      ArtifactStatus = "READY"
	ArtifactFailed     ArtifactStatus = "FAILED"
)

type InquiryStatus string

const (
	InquiryNew       InquiryStatus = "NEW"
	InquiryContacted InquiryStatus = "CONTACTED"
	InquiryConverted InquiryStatus = "CONVERTED"
	InquiryDismissed InquiryStatus = "DISMISSED"
)

func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryNew, InquiryContacted, InquiryConverted, InquiryDismissed:
		return true
	}
	return false
}
