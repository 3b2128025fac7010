package types

// Member lifecycle status values
const (
	MemberActive          = "active"
	MemberInactive        = "inactive"
	MemberPendingApproval = "pending_approval"
)

// Assessment status values
const (
	AssessmentDraft     = "draft"
	AssessmentSubmitted = "submitted"
	AssessmentReviewed  = "reviewed"
)

// Review cycle status values
const (
	CyclePlanned = "planned"
	CycleOpen    = "open"
	CycleClosed  = "closed"
)

// Feedback visibility values
const (
	FeedbackPrivate = "private" // visible to the subject and their supervisor chain
	FeedbackShared  = "shared"  // visible to the subject's department
)

// Permission keys attached to roles
const (
	PermOrgView      = "org.view"
	PermOrgEdit      = "org.edit"
	PermReviewManage = "review.manage"
	PermRoleManage   = "role.manage"
	PermDashboard    = "dashboard.view"
)

// Valid values for request validation
var ValidMemberStatuses = []string{
	MemberActive, MemberInactive, MemberPendingApproval,
}

var ValidAssessmentStatuses = []string{
	AssessmentDraft, AssessmentSubmitted, AssessmentReviewed,
}

var ValidCycleStatuses = []string{
	CyclePlanned, CycleOpen, CycleClosed,
}

var ValidPermissions = []string{
	PermOrgView, PermOrgEdit, PermReviewManage, PermRoleManage, PermDashboard,
}

// Helper functions for validation
func IsValidMemberStatus(status string) bool {
	for _, s := range ValidMemberStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidAssessmentStatus(status string) bool {
	for _, s := range ValidAssessmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidCycleStatus(status string) bool {
	for _, s := range ValidCycleStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidPermission(permission string) bool {
	for _, p := range ValidPermissions {
		if p == permission {
			return true
		}
	}
	return false
}
