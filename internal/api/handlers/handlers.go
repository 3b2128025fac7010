package handlers

import (
	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	Member       *MemberHandler
	Org          *OrgHandler
	Assessment   *AssessmentHandler
	Feedback     *FeedbackHandler
	Dashboard    *DashboardHandler
	Role         *RoleHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		Member:       &MemberHandler{memberService: services.Member},
		Org:          &OrgHandler{orgService: services.Org},
		Assessment:   &AssessmentHandler{assessmentService: services.Assessment},
		Feedback:     &FeedbackHandler{feedbackService: services.Feedback},
		Dashboard:    &DashboardHandler{dashboardService: services.Dashboard},
		Role:         &RoleHandler{roleService: services.Role},
		Notification: &NotificationHandler{notificationService: services.Notification},
	}
}

// ============================================
// Response Mappers
// ============================================

func toMemberResponse(m *repository.Member) models.MemberResponse {
	roleIDs := m.RoleIDs
	if roleIDs == nil {
		roleIDs = []string{}
	}
	return models.MemberResponse{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		EmployeeCode: m.EmployeeCode,
		JobTitle:     m.JobTitle,
		Status:       m.Status,
		DepartmentID: m.DepartmentID,
		StageID:      m.StageID,
		SupervisorID: m.SupervisorID,
		RoleIDs:      roleIDs,
		CreatedAt:    m.CreatedAt,
	}
}

func toMemberResponses(members []*repository.Member) []models.MemberResponse {
	out := make([]models.MemberResponse, len(members))
	for i, m := range members {
		out[i] = toMemberResponse(m)
	}
	return out
}

func toCycleResponse(c *repository.ReviewCycle) models.CycleResponse {
	return models.CycleResponse{
		ID:       c.ID,
		Name:     c.Name,
		Status:   c.Status,
		OpensAt:  c.OpensAt,
		ClosesAt: c.ClosesAt,
	}
}

func toAssessmentResponse(a *repository.Assessment, items []*repository.AssessmentItem) models.AssessmentResponse {
	itemDTOs := make([]models.AssessmentItemDTO, len(items))
	for i, item := range items {
		itemDTOs[i] = models.AssessmentItemDTO{
			Criterion: item.Criterion,
			Score:     item.Score,
			Comment:   item.Comment,
		}
	}
	return models.AssessmentResponse{
		ID:          a.ID,
		MemberID:    a.MemberID,
		CycleID:     a.CycleID,
		Status:      a.Status,
		Summary:     a.Summary,
		Items:       itemDTOs,
		SubmittedAt: a.SubmittedAt,
		CreatedAt:   a.CreatedAt,
	}
}

func toFeedbackResponse(f *repository.Feedback) models.FeedbackResponse {
	return models.FeedbackResponse{
		ID:         f.ID,
		AuthorID:   f.AuthorID,
		SubjectID:  f.SubjectID,
		CycleID:    f.CycleID,
		Visibility: f.Visibility,
		Rating:     f.Rating,
		Body:       f.Body,
		CreatedAt:  f.CreatedAt,
	}
}

func toRoleResponse(r *repository.Role) models.RoleResponse {
	permissions := r.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	return models.RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: permissions,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}

func toDepartmentResponse(d *repository.Department) models.DepartmentResponse {
	return models.DepartmentResponse{
		ID:        d.ID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
}

func toStageResponse(s *repository.Stage) models.StageResponse {
	return models.StageResponse{
		ID:       s.ID,
		Name:     s.Name,
		Position: s.Position,
	}
}
