package notification

import (
	"context"
	"fmt"

	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/socket"
)

// Notification types
const (
	TypeSupervisorChanged    = "SUPERVISOR_CHANGED"
	TypeSubordinateAssigned  = "SUBORDINATE_ASSIGNED"
	TypeMemberApproved       = "MEMBER_APPROVED"
	TypeMemberDeactivated    = "MEMBER_DEACTIVATED"
	TypeCycleOpened          = "CYCLE_OPENED"
	TypeCycleDeadline        = "CYCLE_DEADLINE"
	TypeAssessmentSubmitted  = "ASSESSMENT_SUBMITTED"
	TypeAssessmentReminder   = "ASSESSMENT_REMINDER"
	TypeFeedbackReceived     = "FEEDBACK_RECEIVED"
	TypePendingApproval      = "PENDING_APPROVAL"
)

// Service handles sending notifications
type Service struct {
	notificationRepo repository.NotificationRepository
	memberRepo       repository.MemberRepository
	broadcaster      *socket.Broadcaster
}

// NewService creates a new notification service
func NewService(notificationRepo repository.NotificationRepository, memberRepo repository.MemberRepository) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		memberRepo:       memberRepo,
	}
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// ============================================
// WebSocket Helper
// ============================================

// sendWebSocketNotification sends real-time notification via WebSocket
func (s *Service) sendWebSocketNotification(notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.MemberID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"data":      notification.Data,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})
}

// ============================================
// Org Notifications
// ============================================

// SendSupervisorChanged notifies a member their reporting line moved
func (s *Service) SendSupervisorChanged(ctx context.Context, memberID, supervisorName string) error {
	if memberID == "" {
		return nil
	}

	message := "You no longer report to a supervisor"
	if supervisorName != "" {
		message = fmt.Sprintf("You now report to %s", supervisorName)
	}

	notification := &repository.Notification{
		MemberID: memberID,
		Type:     TypeSupervisorChanged,
		Title:    "Reporting Line Changed",
		Message:  message,
		Data: map[string]interface{}{
			"action": "view_org_chart",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendSubordinateAssigned notifies a supervisor they gained a direct report
func (s *Service) SendSubordinateAssigned(ctx context.Context, supervisorID, subordinateName, subordinateID string) error {
	if supervisorID == "" {
		return nil
	}

	notification := &repository.Notification{
		MemberID: supervisorID,
		Type:     TypeSubordinateAssigned,
		Title:    "New Direct Report",
		Message:  fmt.Sprintf("%s now reports to you", subordinateName),
		Data: map[string]interface{}{
			"memberId": subordinateID,
			"action":   "view_member",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendMemberApproved notifies a member their account was activated
func (s *Service) SendMemberApproved(ctx context.Context, memberID string) error {
	notification := &repository.Notification{
		MemberID: memberID,
		Type:     TypeMemberApproved,
		Title:    "Account Approved",
		Message:  "Your account has been approved. Welcome aboard!",
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendPendingApproval notifies admins a new registration is waiting
func (s *Service) SendPendingApproval(ctx context.Context, adminIDs []string, memberName, memberID string) error {
	var errs []error

	for _, adminID := range adminIDs {
		if adminID == "" {
			continue
		}

		notification := &repository.Notification{
			MemberID: adminID,
			Type:     TypePendingApproval,
			Title:    "Pending Approval",
			Message:  fmt.Sprintf("%s registered and is waiting for approval", memberName),
			Data: map[string]interface{}{
				"memberId": memberID,
				"action":   "review_member",
			},
		}

		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			errs = append(errs, err)
			continue
		}
		s.sendWebSocketNotification(notification)
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to send %d of %d approval notifications", len(errs), len(adminIDs))
	}
	return nil
}

// ============================================
// Review Notifications
// ============================================

// SendCycleOpened notifies members a review cycle opened
func (s *Service) SendCycleOpened(ctx context.Context, memberIDs []string, cycleName, cycleID string) error {
	var errs []error

	for _, memberID := range memberIDs {
		if memberID == "" {
			continue
		}

		notification := &repository.Notification{
			MemberID: memberID,
			Type:     TypeCycleOpened,
			Title:    "Review Cycle Opened",
			Message:  fmt.Sprintf("The review cycle %q is now open", cycleName),
			Data: map[string]interface{}{
				"cycleId": cycleID,
				"action":  "start_assessment",
			},
		}

		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			errs = append(errs, err)
			continue
		}
		s.sendWebSocketNotification(notification)
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to send %d of %d cycle notifications", len(errs), len(memberIDs))
	}
	return nil
}

// SendCycleDeadline reminds a member the cycle closes soon
func (s *Service) SendCycleDeadline(ctx context.Context, memberID, cycleName, cycleID string, daysRemaining int) error {
	message := fmt.Sprintf("The review cycle %q closes in %d days", cycleName, daysRemaining)
	if daysRemaining <= 1 {
		message = fmt.Sprintf("The review cycle %q closes tomorrow", cycleName)
	}

	notification := &repository.Notification{
		MemberID: memberID,
		Type:     TypeCycleDeadline,
		Title:    "Review Deadline Approaching",
		Message:  message,
		Data: map[string]interface{}{
			"cycleId":       cycleID,
			"daysRemaining": daysRemaining,
			"action":        "start_assessment",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendAssessmentSubmitted notifies a supervisor a subordinate submitted
func (s *Service) SendAssessmentSubmitted(ctx context.Context, supervisorID, memberName, assessmentID string) error {
	if supervisorID == "" {
		return nil
	}

	notification := &repository.Notification{
		MemberID: supervisorID,
		Type:     TypeAssessmentSubmitted,
		Title:    "Assessment Submitted",
		Message:  fmt.Sprintf("%s submitted their self-assessment", memberName),
		Data: map[string]interface{}{
			"assessmentId": assessmentID,
			"action":       "view_assessment",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendAssessmentReminder nudges a member who has not submitted yet
func (s *Service) SendAssessmentReminder(ctx context.Context, memberID, cycleName, cycleID string) error {
	notification := &repository.Notification{
		MemberID: memberID,
		Type:     TypeAssessmentReminder,
		Title:    "Assessment Reminder",
		Message:  fmt.Sprintf("You have not submitted your assessment for %q yet", cycleName),
		Data: map[string]interface{}{
			"cycleId": cycleID,
			"action":  "start_assessment",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}

// SendFeedbackReceived notifies a member they received feedback
func (s *Service) SendFeedbackReceived(ctx context.Context, subjectID, authorName, feedbackID string) error {
	notification := &repository.Notification{
		MemberID: subjectID,
		Type:     TypeFeedbackReceived,
		Title:    "New Feedback",
		Message:  fmt.Sprintf("%s left you feedback", authorName),
		Data: map[string]interface{}{
			"feedbackId": feedbackID,
			"action":     "view_feedback",
		},
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	s.sendWebSocketNotification(notification)
	return nil
}
