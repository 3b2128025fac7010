package repository

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every data access interface so services receive
// one dependency instead of six.
type Repositories struct {
	Member       MemberRepository
	Department   DepartmentRepository
	Role         RoleRepository
	Assessment   AssessmentRepository
	Feedback     FeedbackRepository
	Notification NotificationRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sql.DB) *Repositories {
	return &Repositories{
		// pgx repos (roster, access control, feedback, notifications)
		Member:       NewMemberRepository(pool),
		Department:   NewDepartmentRepository(pool),
		Role:         NewRoleRepository(pool),
		Feedback:     NewFeedbackRepository(pool),
		Notification: NewNotificationRepository(pool),

		// sql.DB repos (review pipeline)
		Assessment: NewAssessmentRepository(db),
	}
}
