package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/config"
	"github.com/Marga-Ghale/ora-hr-backend/internal/email"
	"github.com/Marga-Ghale/ora-hr-backend/internal/notification"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/service"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron             *cron.Cron
	cfg              *config.Config
	services         *service.Services
	notifSvc         *notification.Service
	emailSvc         *email.Service
	assessmentRepo   repository.AssessmentRepository
	memberRepo       repository.MemberRepository
	notificationRepo repository.NotificationRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, services *service.Services, notifSvc *notification.Service, emailSvc *email.Service, repos *repository.Repositories) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		cfg:              cfg,
		services:         services,
		notifSvc:         notifSvc,
		emailSvc:         emailSvc,
		assessmentRepo:   repos.Assessment,
		memberRepo:       repos.Member,
		notificationRepo: repos.Notification,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 9 AM - assessment reminders for the open cycle
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running assessment reminder check...")
		s.sendAssessmentReminders()
	})

	// Run every hour - deadline warnings for cycles closing soon
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running cycle deadline check...")
		s.checkCycleDeadlines()
	})

	// Run every hour - auto-close cycles past their closing date
	s.cron.AddFunc("30 * * * *", func() {
		log.Println("[Cron] Running auto-close expired cycles...")
		s.autoCloseExpiredCycles()
	})

	// Refresh the dashboard overview aggregate - every 15 minutes
	s.cron.AddFunc("*/15 * * * *", func() {
		s.refreshDashboard()
	})

	// Run every day at 2 AM - revoke sessions of deactivated members
	s.cron.AddFunc("0 2 * * *", func() {
		log.Println("[Cron] Running inactive member sweep...")
		s.sweepInactiveMembers()
	})

	// Clean up old notifications - run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// sendAssessmentReminders nudges members who have not submitted for the
// open cycle once it is inside the reminder window
func (s *Scheduler) sendAssessmentReminders() {
	ctx := context.Background()

	cycle, err := s.assessmentRepo.FindOpenCycle(ctx)
	if err != nil {
		log.Printf("[Cron] Error finding open cycle: %v", err)
		return
	}
	if cycle == nil {
		return
	}

	// Only remind inside the last 7 days of the cycle
	if time.Until(cycle.ClosesAt) > 7*24*time.Hour {
		return
	}

	memberIDs, err := s.assessmentRepo.MemberIDsWithoutSubmission(ctx, cycle.ID)
	if err != nil {
		log.Printf("[Cron] Error finding members without submission: %v", err)
		return
	}

	for _, memberID := range memberIDs {
		if err := s.notifSvc.SendAssessmentReminder(ctx, memberID, cycle.Name, cycle.ID); err != nil {
			log.Printf("[Cron] Error sending assessment reminder to %s: %v", memberID, err)
			continue
		}

		if s.emailSvc != nil {
			member, err := s.memberRepo.FindByID(ctx, memberID)
			if err != nil || member == nil {
				continue
			}
			if err := s.emailSvc.SendAssessmentReminder(member.Email, email.AssessmentReminderData{
				Name:          member.Name,
				CycleName:     cycle.Name,
				ClosesAt:      cycle.ClosesAt.Format("Jan 2, 2006"),
				AssessmentURL: fmt.Sprintf("%s/assessments/%s", s.cfg.FrontendURL, cycle.ID),
			}); err != nil {
				log.Printf("[Cron] Error emailing assessment reminder to %s: %v", member.Email, err)
			}
		}
	}

	if len(memberIDs) > 0 {
		log.Printf("[Cron] Sent %d assessment reminders for cycle %s", len(memberIDs), cycle.Name)
	}
}

// checkCycleDeadlines warns members when the open cycle closes within 3 days
func (s *Scheduler) checkCycleDeadlines() {
	ctx := context.Background()

	cycles, err := s.assessmentRepo.FindCyclesClosingBefore(ctx, time.Now().Add(72*time.Hour))
	if err != nil {
		log.Printf("[Cron] Error finding cycles closing soon: %v", err)
		return
	}

	now := time.Now()
	for _, cycle := range cycles {
		daysRemaining := int(cycle.ClosesAt.Sub(now).Hours() / 24)
		if daysRemaining < 0 {
			continue
		}

		memberIDs, err := s.assessmentRepo.MemberIDsWithoutSubmission(ctx, cycle.ID)
		if err != nil {
			log.Printf("[Cron] Error finding members without submission for cycle %s: %v", cycle.ID, err)
			continue
		}

		for _, memberID := range memberIDs {
			if err := s.notifSvc.SendCycleDeadline(ctx, memberID, cycle.Name, cycle.ID, daysRemaining); err != nil {
				log.Printf("[Cron] Error sending deadline warning to %s: %v", memberID, err)
			}
		}

		log.Printf("[Cron] Cycle %s closes in %d days, warned %d members", cycle.Name, daysRemaining, len(memberIDs))
	}
}

// autoCloseExpiredCycles closes cycles whose closing date has passed
func (s *Scheduler) autoCloseExpiredCycles() {
	ctx := context.Background()

	cycles, err := s.assessmentRepo.FindCyclesClosingBefore(ctx, time.Now())
	if err != nil {
		log.Printf("[Cron] Error finding expired cycles: %v", err)
		return
	}

	for _, cycle := range cycles {
		if _, err := s.services.Assessment.UpdateCycleStatus(ctx, cycle.ID, types.CycleClosed); err != nil {
			log.Printf("[Cron] Error auto-closing cycle %s: %v", cycle.ID, err)
			continue
		}
		log.Printf("[Cron] Auto-closed expired cycle %s", cycle.Name)
	}
}

// refreshDashboard recomputes the cached overview aggregate
func (s *Scheduler) refreshDashboard() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.services.Dashboard.RefreshCache(ctx); err != nil {
		log.Printf("[Cron] Error refreshing dashboard cache: %v", err)
	}
}

// sweepInactiveMembers revokes refresh tokens of deactivated members so
// a stale session cannot outlive the deactivation
func (s *Scheduler) sweepInactiveMembers() {
	ctx := context.Background()

	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		log.Printf("[Cron] Error loading roster for inactive sweep: %v", err)
		return
	}

	swept := 0
	for _, member := range members {
		if member.Status != types.MemberInactive {
			continue
		}
		if err := s.memberRepo.DeleteMemberRefreshTokens(ctx, member.ID); err != nil {
			log.Printf("[Cron] Error revoking tokens for %s: %v", member.ID, err)
			continue
		}
		swept++
	}
	if swept > 0 {
		log.Printf("[Cron] Swept %d inactive members", swept)
	}
}

// cleanupOldNotifications removes notifications older than 30 days
func (s *Scheduler) cleanupOldNotifications() {
	ctx := context.Background()

	deleted, err := s.notificationRepo.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		log.Printf("[Cron] Error cleaning up notifications: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Deleted %d old notifications", deleted)
	}
}

// ManualTrigger allows manual triggering of scheduled checks (for testing)
func (s *Scheduler) ManualTrigger(checkType string) {
	switch checkType {
	case "reminders":
		s.sendAssessmentReminders()
	case "deadlines":
		s.checkCycleDeadlines()
	case "auto_close":
		s.autoCloseExpiredCycles()
	case "dashboard":
		s.refreshDashboard()
	case "inactive":
		s.sweepInactiveMembers()
	case "cleanup":
		s.cleanupOldNotifications()
	case "all":
		s.sendAssessmentReminders()
		s.checkCycleDeadlines()
		s.autoCloseExpiredCycles()
		s.refreshDashboard()
		s.sweepInactiveMembers()
		s.cleanupOldNotifications()
	}
}
