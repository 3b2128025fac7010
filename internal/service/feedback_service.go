package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/notification"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/socket"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Feedback Service
// ============================================

type FeedbackService interface {
	Create(ctx context.Context, authorID string, req *models.CreateFeedbackRequest) (*repository.Feedback, error)
	GetForSubject(ctx context.Context, requesterID, subjectID string) ([]*repository.Feedback, error)
	GetAuthored(ctx context.Context, authorID string) ([]*repository.Feedback, error)
	Delete(ctx context.Context, requesterID, feedbackID string) error
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	memberRepo   repository.MemberRepository
	org          OrgService
	notifSvc     *notification.Service
	broadcaster  *socket.Broadcaster
}

func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	memberRepo repository.MemberRepository,
	org OrgService,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		memberRepo:   memberRepo,
		org:          org,
		notifSvc:     notifSvc,
		broadcaster:  broadcaster,
	}
}

// Create records supervisor feedback. Only the subject's direct supervisor
// may author feedback; the check runs against the current hierarchy graph.
func (s *feedbackService) Create(ctx context.Context, authorID string, req *models.CreateFeedbackRequest) (*repository.Feedback, error) {
	if req.SubjectID == authorID {
		return nil, fmt.Errorf("%w: cannot leave feedback on yourself", ErrInvalidInput)
	}

	isSupervisor, err := s.org.IsDirectSubordinate(ctx, authorID, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if !isSupervisor {
		return nil, ErrNotSubordinate
	}

	if req.Rating != nil {
		rating, err := decimal.NewFromString(*req.Rating)
		if err != nil {
			return nil, fmt.Errorf("%w: rating %q is not a number", ErrInvalidInput, *req.Rating)
		}
		if rating.IsNegative() || rating.GreaterThan(decimal.NewFromInt(5)) {
			return nil, fmt.Errorf("%w: rating %s out of range [0, 5]", ErrInvalidInput, rating)
		}
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = types.FeedbackPrivate
	}

	feedback := &repository.Feedback{
		AuthorID:   authorID,
		SubjectID:  req.SubjectID,
		CycleID:    req.CycleID,
		Visibility: visibility,
		Rating:     req.Rating,
		Body:       req.Body,
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	author, err := s.memberRepo.FindByID(ctx, authorID)
	authorName := ""
	if err == nil && author != nil {
		authorName = author.Name
	}

	if s.notifSvc != nil {
		if err := s.notifSvc.SendFeedbackReceived(ctx, req.SubjectID, authorName, feedback.ID); err != nil {
			log.Printf("[Feedback] Failed to notify subject: %v", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.NotifyFeedbackReceived(req.SubjectID, map[string]interface{}{
			"feedbackId": feedback.ID,
			"authorName": authorName,
		})
	}

	return feedback, nil
}

// GetForSubject returns feedback visible to the requester: the subject sees
// everything about them, their supervisor sees what they authored plus
// shared entries.
func (s *feedbackService) GetForSubject(ctx context.Context, requesterID, subjectID string) ([]*repository.Feedback, error) {
	entries, err := s.feedbackRepo.FindBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	if requesterID == subjectID {
		return entries, nil
	}

	isSupervisor, err := s.org.IsDirectSubordinate(ctx, requesterID, subjectID)
	if err != nil {
		return nil, err
	}
	if !isSupervisor {
		return nil, ErrForbidden
	}

	visible := make([]*repository.Feedback, 0, len(entries))
	for _, f := range entries {
		if f.AuthorID == requesterID || f.Visibility == types.FeedbackShared {
			visible = append(visible, f)
		}
	}
	return visible, nil
}

func (s *feedbackService) GetAuthored(ctx context.Context, authorID string) ([]*repository.Feedback, error) {
	return s.feedbackRepo.FindByAuthor(ctx, authorID)
}

// Delete removes feedback; only its author may do so.
func (s *feedbackService) Delete(ctx context.Context, requesterID, feedbackID string) error {
	feedback, err := s.feedbackRepo.FindByID(ctx, feedbackID)
	if err != nil {
		return err
	}
	if feedback == nil {
		return ErrNotFound
	}
	if feedback.AuthorID != requesterID {
		return ErrForbidden
	}
	return s.feedbackRepo.Delete(ctx, feedbackID)
}
