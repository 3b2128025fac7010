package service

import (
	"context"

	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
)

// ============================================
// Notification Service (inbox reads)
// ============================================

type NotificationService interface {
	GetForMember(ctx context.Context, memberID string, unreadOnly bool) ([]*repository.Notification, error)
	UnreadCount(ctx context.Context, memberID string) (int, error)
	MarkRead(ctx context.Context, memberID, notificationID string) error
	MarkAllRead(ctx context.Context, memberID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) GetForMember(ctx context.Context, memberID string, unreadOnly bool) ([]*repository.Notification, error) {
	return s.notificationRepo.FindByMember(ctx, memberID, unreadOnly)
}

func (s *notificationService) UnreadCount(ctx context.Context, memberID string) (int, error) {
	return s.notificationRepo.UnreadCount(ctx, memberID)
}

func (s *notificationService) MarkRead(ctx context.Context, memberID, notificationID string) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, memberID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, memberID string) error {
	return s.notificationRepo.MarkAllRead(ctx, memberID)
}
