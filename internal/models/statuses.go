package models

type UserRole string
type UserStatus string
type PersonnelRole string
type ApplicationStatus string
type EntryMethod string
type TokenPurpose string
type JudgeLevel string
type AssignmentStatus string
type AssignmentRequestType string
type EventStatus string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"

	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	PersonnelRoleJudge         PersonnelRole = "judge"
	PersonnelRoleEventDirector PersonnelRole = "event_director"

	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"

	EntryMethodSelf             EntryMethod = "self"
	EntryMethodAdminApplication EntryMethod = "admin_application"
	EntryMethodAdminQuick       EntryMethod = "admin_quick"

	TokenPurposeJudgeReference         TokenPurpose = "judge_reference"
	TokenPurposeEventDirectorReference TokenPurpose = "event_director_reference"

	JudgeLevelProvisional JudgeLevel = "provisional"
	JudgeLevelCertified   JudgeLevel = "certified"
	JudgeLevelSenior      JudgeLevel = "senior"
	JudgeLevelMaster      JudgeLevel = "master"

	AssignmentStatusRequested AssignmentStatus = "requested"
	AssignmentStatusAccepted  AssignmentStatus = "accepted"
	AssignmentStatusDeclined  AssignmentStatus = "declined"
	AssignmentStatusConfirmed AssignmentStatus = "confirmed"
	AssignmentStatusCompleted AssignmentStatus = "completed"

	AssignmentRequestAdmin         AssignmentRequestType = "admin"
	AssignmentRequestSelf          AssignmentRequestType = "self"
	AssignmentRequestEventDirector AssignmentRequestType = "event_director"

	EventStatusScheduled  EventStatus = "scheduled"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusCompleted  EventStatus = "completed"
	EventStatusCancelled  EventStatus = "cancelled"
)

// ValidPersonnelRole reports whether s names a known personnel role.
func ValidPersonnelRole(s string) bool {
	switch PersonnelRole(s) {
	case PersonnelRoleJudge, PersonnelRoleEventDirector:
		return true
	}
	return false
}

// ReferencePurpose returns the token purpose for a role's reference checks.
func ReferencePurpose(role PersonnelRole) TokenPurpose {
	if role == PersonnelRoleEventDirector {
		return TokenPurposeEventDirectorReference
	}
	return TokenPurposeJudgeReference
}

// ActiveApplicationStatuses are the statuses that block a second application
// for the same (profile, role) pair.
var ActiveApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusUnderReview,
	ApplicationStatusApproved,
}

// RateableAssignmentStatuses are the assignment states that make personnel
// eligible to be rated at an event.
var RateableAssignmentStatuses = []AssignmentStatus{
	AssignmentStatusAccepted,
	AssignmentStatusConfirmed,
	AssignmentStatusCompleted,
}

// ValidJudgeLevel reports whether s names a known judge level.
func ValidJudgeLevel(s string) bool {
	switch JudgeLevel(s) {
	case JudgeLevelProvisional, JudgeLevelCertified, JudgeLevelSenior, JudgeLevelMaster:
		return true
	}
	return false
}
