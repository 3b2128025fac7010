package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/config"
	"github.com/Marga-Ghale/ora-hr-backend/internal/db"
	"github.com/Marga-Ghale/ora-hr-backend/internal/models"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Dashboard Service
// ============================================

type DashboardService interface {
	Overview(ctx context.Context) (*models.DashboardResponse, error)
	Team(ctx context.Context, supervisorID string) (*models.TeamDashboardResponse, error)
	RefreshCache(ctx context.Context) error
}

type dashboardService struct {
	assessmentRepo repository.AssessmentRepository
	memberRepo     repository.MemberRepository
	org            OrgService
	redis          *db.RedisDB
	cfg            *config.Config
}

func NewDashboardService(
	assessmentRepo repository.AssessmentRepository,
	memberRepo repository.MemberRepository,
	org OrgService,
	redis *db.RedisDB,
	cfg *config.Config,
) DashboardService {
	return &dashboardService{
		assessmentRepo: assessmentRepo,
		memberRepo:     memberRepo,
		org:            org,
		redis:          redis,
		cfg:            cfg,
	}
}

// two decimal places, matching the numeric(4,2) item scores
const scorePlaces = 2

// averageScore computes the decimal mean of a set of item scores.
// Unparseable scores are skipped rather than poisoning the aggregate.
func averageScore(items []*repository.AssessmentItem) (decimal.Decimal, int) {
	sum := decimal.Zero
	count := 0
	for _, item := range items {
		score, err := decimal.NewFromString(item.Score)
		if err != nil {
			log.Printf("[Dashboard] Skipping unparseable score %q on item %s", item.Score, item.ID)
			continue
		}
		sum = sum.Add(score)
		count++
	}
	if count == 0 {
		return decimal.Zero, 0
	}
	return sum.DivRound(decimal.NewFromInt(int64(count)), scorePlaces), count
}

// Overview aggregates company-wide stats: headcount, assessment completion
// for the open cycle, average scores and hierarchy shape. Cached with the
// configured TTL.
func (s *dashboardService) Overview(ctx context.Context) (*models.DashboardResponse, error) {
	const cacheKey = "dashboard:overview"
	if s.redis != nil && s.cfg.DashboardCacheTTL > 0 {
		var cached models.DashboardResponse
		if err := s.redis.GetCache(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	resp := &models.DashboardResponse{
		HeadcountByStatus: make(map[string]int),
		CompletionRate:    "0",
		OverallAverage:    "0",
		GeneratedAt:       time.Now(),
	}

	activeCount := 0
	for _, m := range members {
		resp.HeadcountByStatus[m.Status]++
		if m.Status == types.MemberActive {
			activeCount++
		}
	}

	stats, err := s.org.HierarchyStats(ctx)
	if err != nil {
		return nil, err
	}
	resp.Hierarchy = stats

	cycle, err := s.assessmentRepo.FindOpenCycle(ctx)
	if err != nil {
		return nil, err
	}
	if cycle != nil {
		resp.CycleID = &cycle.ID

		assessments, err := s.assessmentRepo.FindByCycle(ctx, cycle.ID)
		if err != nil {
			return nil, err
		}

		submitted := 0
		sum := decimal.Zero
		scored := 0
		for _, a := range assessments {
			if a.Status == types.AssessmentDraft {
				continue
			}
			submitted++

			items, err := s.assessmentRepo.FindItems(ctx, a.ID)
			if err != nil {
				return nil, err
			}
			if avg, n := averageScore(items); n > 0 {
				sum = sum.Add(avg)
				scored++
			}
		}

		if activeCount > 0 {
			rate := decimal.NewFromInt(int64(submitted)).
				DivRound(decimal.NewFromInt(int64(activeCount)), 4)
			resp.CompletionRate = rate.String()
		}
		if scored > 0 {
			resp.OverallAverage = sum.DivRound(decimal.NewFromInt(int64(scored)), scorePlaces).String()
		}
	}

	if s.redis != nil && s.cfg.DashboardCacheTTL > 0 {
		ttl := time.Duration(s.cfg.DashboardCacheTTL) * time.Second
		if err := s.redis.SetCache(ctx, cacheKey, resp, ttl); err != nil {
			log.Printf("[Dashboard] Failed to cache overview: %v", err)
		}
	}

	return resp, nil
}

// Team rolls up the open cycle's scores over a supervisor's direct
// subordinates, via the hierarchy graph's derived subordinate set.
func (s *dashboardService) Team(ctx context.Context, supervisorID string) (*models.TeamDashboardResponse, error) {
	graph, err := s.org.RosterGraph(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := graph.Member(supervisorID); !ok {
		return nil, ErrMemberNotFound
	}

	resp := &models.TeamDashboardResponse{
		SupervisorID: supervisorID,
		TeamAverage:  "0",
		TeamScores:   []models.TeamScoreDTO{},
		GeneratedAt:  time.Now(),
	}

	cycle, err := s.assessmentRepo.FindOpenCycle(ctx)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return resp, nil
	}
	resp.CycleID = &cycle.ID

	teamSum := decimal.Zero
	teamCount := 0
	for _, sub := range graph.SubordinatesOf(supervisorID) {
		entry := models.TeamScoreDTO{
			MemberID:     sub.ID,
			Name:         sub.Name,
			AverageScore: "0",
		}

		assessment, err := s.assessmentRepo.FindByMemberAndCycle(ctx, sub.ID, cycle.ID)
		if err != nil {
			return nil, err
		}
		if assessment != nil && assessment.Status != types.AssessmentDraft {
			items, err := s.assessmentRepo.FindItems(ctx, assessment.ID)
			if err != nil {
				return nil, err
			}
			if avg, n := averageScore(items); n > 0 {
				entry.AverageScore = avg.String()
				entry.ItemCount = n
				teamSum = teamSum.Add(avg)
				teamCount++
			}
		}

		resp.TeamScores = append(resp.TeamScores, entry)
	}

	if teamCount > 0 {
		resp.TeamAverage = teamSum.DivRound(decimal.NewFromInt(int64(teamCount)), scorePlaces).String()
	}

	return resp, nil
}

// RefreshCache recomputes the overview aggregate; the cron job calls this
// so the first morning request is warm.
func (s *dashboardService) RefreshCache(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	if err := s.redis.InvalidateCache(ctx, "dashboard:*"); err != nil {
		return err
	}
	_, err := s.Overview(ctx)
	return err
}
