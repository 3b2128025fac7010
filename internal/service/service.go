package service

import (
	"errors"

	"github.com/Marga-Ghale/ora-hr-backend/internal/config"
	"github.com/Marga-Ghale/ora-hr-backend/internal/db"
	"github.com/Marga-Ghale/ora-hr-backend/internal/email"
	"github.com/Marga-Ghale/ora-hr-backend/internal/notification"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/socket"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMemberExists       = errors.New("member already exists")
	ErrMemberNotFound     = errors.New("member not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidMove        = errors.New("invalid supervisor change")
	ErrRosterChanged      = errors.New("roster changed since it was loaded")
	ErrCycleNotOpen       = errors.New("review cycle is not open")
	ErrAlreadySubmitted   = errors.New("assessment already submitted")
	ErrNotSubordinate     = errors.New("member is not a direct subordinate")
)

// ============================================
// Services Container
// ============================================

type Services struct {
	Auth         AuthService
	Member       MemberService
	Org          OrgService
	Assessment   AssessmentService
	Feedback     FeedbackService
	Dashboard    DashboardService
	Role         RoleService
	Notification NotificationService
	Broadcaster  *socket.Broadcaster
}

// ServiceDeps contains all dependencies needed to create services
type ServiceDeps struct {
	Config      *config.Config
	Repos       *repository.Repositories
	NotifSvc    *notification.Service
	EmailSvc    *email.Service
	Broadcaster *socket.Broadcaster
	Redis       *db.RedisDB // nil when Redis is unavailable
}

func NewServices(deps *ServiceDeps) *Services {
	// OrgService owns the hierarchy snapshot; Dashboard reuses it for
	// structure stats instead of re-deriving the tree.
	orgService := NewOrgService(
		deps.Repos.Member,
		deps.NotifSvc,
		deps.Broadcaster,
		deps.Redis,
	)

	return &Services{
		Auth:   NewAuthService(deps.Config, deps.Repos.Member),
		Member: NewMemberService(deps.Repos.Member, deps.Repos.Department, deps.NotifSvc, deps.EmailSvc, deps.Broadcaster, deps.Redis, deps.Config),
		Org:    orgService,
		Assessment: NewAssessmentService(
			deps.Repos.Assessment,
			deps.Repos.Member,
			orgService,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		Feedback: NewFeedbackService(
			deps.Repos.Feedback,
			deps.Repos.Member,
			orgService,
			deps.NotifSvc,
			deps.Broadcaster,
		),
		Dashboard: NewDashboardService(
			deps.Repos.Assessment,
			deps.Repos.Member,
			orgService,
			deps.Redis,
			deps.Config,
		),
		Role:         NewRoleService(deps.Repos.Role, deps.Repos.Member),
		Notification: NewNotificationService(deps.Repos.Notification),
		Broadcaster:  deps.Broadcaster,
	}
}
