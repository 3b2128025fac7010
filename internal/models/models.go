package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	Name         string  `json:"name" binding:"required,min=2"`
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required,min=8"`
	EmployeeCode string  `json:"employeeCode" binding:"required,min=2,max=50"`
	JobTitle     *string `json:"jobTitle,omitempty"`
	DepartmentID *string `json:"departmentId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	Member       MemberResponse `json:"member"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

// ============================================
// Member / Directory DTOs
// ============================================

type MemberResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	EmployeeCode string    `json:"employeeCode"`
	JobTitle     *string   `json:"jobTitle,omitempty"`
	Status       string    `json:"status"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	StageID      *string   `json:"stageId,omitempty"`
	SupervisorID *string   `json:"supervisorId,omitempty"`
	RoleIDs      []string  `json:"roleIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UpdateMemberRequest struct {
	Name         *string `json:"name,omitempty"`
	JobTitle     *string `json:"jobTitle,omitempty"`
	Status       *string `json:"status,omitempty"`
	DepartmentID *string `json:"departmentId,omitempty"`
	StageID      *string `json:"stageId,omitempty"`
}

type UpdateSupervisorRequest struct {
	// nil clears the supervisor and makes the member a root.
	SupervisorID *string `json:"supervisorId"`
}

type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required,min=2,max=200"`
}

type DepartmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type StageResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// ============================================
// Org Chart DTOs
// ============================================

type ChartNodeResponse struct {
	MemberID     string   `json:"memberId"`
	Name         string   `json:"name"`
	JobTitle     *string  `json:"jobTitle,omitempty"`
	EmployeeCode string   `json:"employeeCode"`
	Depth        int      `json:"depth"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	TopHandle    PointDTO `json:"topHandle"`
	BottomHandle PointDTO `json:"bottomHandle"`
}

type PointDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ChartEdgeResponse struct {
	SupervisorID  string `json:"supervisorId"`
	SubordinateID string `json:"subordinateId"`
	Provisional   bool   `json:"provisional"`
}

type ChartResponse struct {
	Nodes         []ChartNodeResponse `json:"nodes"`
	Edges         []ChartEdgeResponse `json:"edges"`
	RosterVersion time.Time           `json:"rosterVersion"`
}

type ValidateMoveRequest struct {
	MemberID     string  `json:"memberId" binding:"required"`
	SupervisorID *string `json:"supervisorId"`
}

type ValidateMoveResponse struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type ReassignmentDTO struct {
	MemberID     string  `json:"memberId" binding:"required"`
	SupervisorID *string `json:"supervisorId"`
}

type ReassignBatchRequest struct {
	Changes []ReassignmentDTO `json:"changes" binding:"required,min=1,dive"`
	// When set, the batch is rejected with 409 if the roster changed
	// since the client loaded it.
	RosterVersion *time.Time `json:"rosterVersion,omitempty"`
}

type ReassignFailureDTO struct {
	MemberID string `json:"memberId"`
	Reason   string `json:"reason"`
}

type ReassignBatchResponse struct {
	SuccessCount  int                  `json:"successCount"`
	FailureCount  int                  `json:"failureCount"`
	Committed     []string             `json:"committed"`
	Failures      []ReassignFailureDTO `json:"failures"`
	RosterVersion time.Time            `json:"rosterVersion"`
}

// ============================================
// Review Cycle / Assessment DTOs
// ============================================

type CreateCycleRequest struct {
	Name     string    `json:"name" binding:"required,min=2,max=200"`
	OpensAt  time.Time `json:"opensAt" binding:"required"`
	ClosesAt time.Time `json:"closesAt" binding:"required"`
}

type UpdateCycleStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=planned open closed"`
}

type CycleResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	OpensAt  time.Time `json:"opensAt"`
	ClosesAt time.Time `json:"closesAt"`
}

type AssessmentItemDTO struct {
	Criterion string  `json:"criterion" binding:"required,min=1,max=200"`
	Score     string  `json:"score" binding:"required"`
	Comment   *string `json:"comment,omitempty"`
}

type SaveAssessmentRequest struct {
	CycleID string              `json:"cycleId" binding:"required"`
	Summary *string             `json:"summary,omitempty"`
	Items   []AssessmentItemDTO `json:"items" binding:"dive"`
}

type AssessmentResponse struct {
	ID          string              `json:"id"`
	MemberID    string              `json:"memberId"`
	CycleID     string              `json:"cycleId"`
	Status      string              `json:"status"`
	Summary     *string             `json:"summary,omitempty"`
	Items       []AssessmentItemDTO `json:"items"`
	SubmittedAt *time.Time          `json:"submittedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// ============================================
// Feedback DTOs
// ============================================

type CreateFeedbackRequest struct {
	SubjectID  string  `json:"subjectId" binding:"required"`
	CycleID    *string `json:"cycleId,omitempty"`
	Visibility string  `json:"visibility" binding:"omitempty,oneof=private shared"`
	Rating     *string `json:"rating,omitempty"`
	Body       string  `json:"body" binding:"required,min=1"`
}

type FeedbackResponse struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	SubjectID  string    `json:"subjectId"`
	CycleID    *string   `json:"cycleId,omitempty"`
	Visibility string    `json:"visibility"`
	Rating     *string   `json:"rating,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ============================================
// Role DTOs
// ============================================

type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2,max=100"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions" binding:"required"`
}

type UpdateRoleRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type RoleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

type AssignRoleRequest struct {
	RoleID string `json:"roleId" binding:"required"`
}

// ============================================
// Dashboard DTOs
// ============================================

type TeamScoreDTO struct {
	MemberID     string `json:"memberId"`
	Name         string `json:"name"`
	AverageScore string `json:"averageScore"`
	ItemCount    int    `json:"itemCount"`
}

type HierarchyStatsDTO struct {
	TotalMembers int `json:"totalMembers"`
	RootCount    int `json:"rootCount"`
	MaxDepth     int `json:"maxDepth"`
	WidestLevel  int `json:"widestLevel"`
}

type DashboardResponse struct {
	CycleID           *string           `json:"cycleId,omitempty"`
	HeadcountByStatus map[string]int    `json:"headcountByStatus"`
	CompletionRate    string            `json:"completionRate"`
	OverallAverage    string            `json:"overallAverage"`
	Hierarchy         HierarchyStatsDTO `json:"hierarchy"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

type TeamDashboardResponse struct {
	SupervisorID string         `json:"supervisorId"`
	CycleID      *string        `json:"cycleId,omitempty"`
	TeamAverage  string         `json:"teamAverage"`
	TeamScores   []TeamScoreDTO `json:"teamScores"`
	GeneratedAt  time.Time      `json:"generatedAt"`
}

// ============================================
// Notification DTOs
// ============================================

type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// ============================================
// Common Response Types
// ============================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"perPage"`
	TotalPages int         `json:"totalPages"`
}

func NewPaginatedResponse(data interface{}, total, page, perPage int) PaginatedResponse {
	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
