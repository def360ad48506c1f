// Package model defines domain entities used by services and repositories.
package model

import "time"

// UserRole controls access to administrative operations.
type UserRole string

// User roles stored in users.role.
const (
	RoleGeneral UserRole = "general"
	RoleAdmin   UserRole = "admin"
)

// EmailVerificationStatus tracks whether the account email was confirmed.
type EmailVerificationStatus string

// Email verification states stored in users.email_verification_status.
const (
	EmailPending  EmailVerificationStatus = "pending"
	EmailVerified EmailVerificationStatus = "verified"
)

// User is a local account. Accounts provisioned through an external
// identity provider carry a generated, unusable password digest.
type User struct {
	ID                       int64
	Name                     string
	Email                    string
	UnverifiedEmail          *string
	Avatar                   string
	Role                     UserRole
	Introduction             *string
	EmailVerificationStatus  EmailVerificationStatus
	EmailVerificationCode    *string
	EmailVerificationExpires *time.Time
	PasswordDigest           string
	CreatedAt                time.Time
}

// RecruitmentCategory is the kind of engagement a recruitment seeks.
type RecruitmentCategory string

// Recruitment categories.
const (
	CategoryOpponent RecruitmentCategory = "opponent"
	CategoryPersonal RecruitmentCategory = "personal"
	CategoryMember   RecruitmentCategory = "member"
	CategoryJoin     RecruitmentCategory = "join"
	CategoryOther    RecruitmentCategory = "other"
)

// RecruitmentStatus is the publication state of a recruitment.
type RecruitmentStatus string

// Recruitment statuses.
const (
	StatusDraft     RecruitmentStatus = "draft"
	StatusPublished RecruitmentStatus = "published"
	StatusClosed    RecruitmentStatus = "closed"
)

// Recruitment is a posting looking for opponents, members or participants.
type Recruitment struct {
	ID           int64
	Title        string
	Category     RecruitmentCategory
	Venue        *string
	VenueLat     *float64
	VenueLng     *float64
	StartAt      *time.Time
	ClosingAt    *time.Time
	Detail       *string
	SportID      int64
	PrefectureID int64
	Status       RecruitmentStatus
	UserID       int64
	PublishedAt  *time.Time
	CreatedAt    time.Time
}

// Tag is a free-form label attached to recruitments.
type Tag struct {
	ID   int64
	Name string
}

// Sport is a reference entity recruitments are categorized by.
type Sport struct {
	ID   int64
	Name string
}

// Prefecture is the geographic area a recruitment belongs to.
type Prefecture struct {
	ID   int64
	Name string
}

// AuthenticationProvider identifies an external identity provider.
type AuthenticationProvider string

// Supported providers, stored in authentications.provider.
const (
	ProviderGoogle AuthenticationProvider = "google"
	ProviderLine   AuthenticationProvider = "line"
)

// ExternalUserInfo is the verified claim set extracted from a provider's
// ID token. Name and email are mandatory by provider contract.
type ExternalUserInfo struct {
	Subject string
	Name    string
	Email   string
	Picture *string
}
