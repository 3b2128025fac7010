// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	// Check if data already exists
	members, _ := repos.Member.FindAll(ctx)
	if len(members) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial data with a real org...")

	// ============================================
	// DEPARTMENTS AND STAGES
	// ============================================
	engineering := &repository.Department{Name: "Engineering"}
	repos.Department.Create(ctx, engineering)

	design := &repository.Department{Name: "Design"}
	repos.Department.Create(ctx, design)

	people := &repository.Department{Name: "People"}
	repos.Department.Create(ctx, people)

	stages := []*repository.Stage{
		{Name: "Junior", Position: 1},
		{Name: "Mid", Position: 2},
		{Name: "Senior", Position: 3},
		{Name: "Lead", Position: 4},
	}
	for _, stage := range stages {
		repos.Department.CreateStage(ctx, stage)
	}

	log.Printf("✅ Created 3 departments and %d career stages", len(stages))

	// ============================================
	// ROLES
	// ============================================
	adminRole := &repository.Role{
		Name:        "admin",
		Description: stringPtr("Full platform administration"),
		Permissions: types.ValidPermissions,
	}
	repos.Role.Create(ctx, adminRole)

	managerRole := &repository.Role{
		Name:        "manager",
		Description: stringPtr("Chart editing and review management"),
		Permissions: []string{types.PermOrgView, types.PermOrgEdit, types.PermReviewManage, types.PermDashboard},
	}
	repos.Role.Create(ctx, managerRole)

	memberRole := &repository.Role{
		Name:        "member",
		Description: stringPtr("Chart viewing only"),
		Permissions: []string{types.PermOrgView},
	}
	repos.Role.Create(ctx, memberRole)

	log.Printf("✅ Created roles: admin, manager, member")

	// ============================================
	// ROSTER (3-level hierarchy)
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// 1. MARGA - CEO, roster root
	marga := &repository.Member{
		Email:        "marga.ghale@oratechnologies.io",
		Password:     string(password),
		Name:         "Marga Ghale",
		EmployeeCode: "ORA-0001",
		JobTitle:     stringPtr("Chief Executive Officer"),
		Status:       types.MemberActive,
		DepartmentID: &people.ID,
		StageID:      &stages[3].ID,
	}
	repos.Member.Create(ctx, marga)

	// 2. BIPIN - VP Engineering, reports to Marga
	bipin := &repository.Member{
		Email:        "bipin.dhimal@oratechnologies.io",
		Password:     string(password),
		Name:         "Bipin Dhimal",
		EmployeeCode: "ORA-0002",
		JobTitle:     stringPtr("VP of Engineering"),
		Status:       types.MemberActive,
		DepartmentID: &engineering.ID,
		StageID:      &stages[3].ID,
		SupervisorID: &marga.ID,
	}
	repos.Member.Create(ctx, bipin)

	// 3. KRITIM - Design Lead, reports to Marga
	kritim := &repository.Member{
		Email:        "kritim.kafle@oratechnologies.io",
		Password:     string(password),
		Name:         "Kritim Kafle",
		EmployeeCode: "ORA-0003",
		JobTitle:     stringPtr("Design Lead"),
		Status:       types.MemberActive,
		DepartmentID: &design.ID,
		StageID:      &stages[2].ID,
		SupervisorID: &marga.ID,
	}
	repos.Member.Create(ctx, kritim)

	// 4. PRERAK - Engineer, reports to Bipin
	prerak := &repository.Member{
		Email:        "prerak.khadka@oratechnologies.io",
		Password:     string(password),
		Name:         "Prerak Khadka",
		EmployeeCode: "ORA-0004",
		JobTitle:     stringPtr("Software Engineer"),
		Status:       types.MemberActive,
		DepartmentID: &engineering.ID,
		StageID:      &stages[1].ID,
		SupervisorID: &bipin.ID,
	}
	repos.Member.Create(ctx, prerak)

	// 5. SUJATA - Engineer, reports to Bipin
	sujata := &repository.Member{
		Email:        "sujata.rai@oratechnologies.io",
		Password:     string(password),
		Name:         "Sujata Rai",
		EmployeeCode: "ORA-0005",
		JobTitle:     stringPtr("Software Engineer"),
		Status:       types.MemberActive,
		DepartmentID: &engineering.ID,
		StageID:      &stages[0].ID,
		SupervisorID: &bipin.ID,
	}
	repos.Member.Create(ctx, sujata)

	// 6. ANISH - still waiting for approval, not on the chart yet
	anish := &repository.Member{
		Email:        "anish.thapa@oratechnologies.io",
		Password:     string(password),
		Name:         "Anish Thapa",
		EmployeeCode: "ORA-0006",
		JobTitle:     stringPtr("Product Designer"),
		Status:       types.MemberPendingApproval,
		DepartmentID: &design.ID,
		StageID:      &stages[0].ID,
	}
	repos.Member.Create(ctx, anish)

	repos.Role.Assign(ctx, marga.ID, adminRole.ID)
	repos.Role.Assign(ctx, bipin.ID, managerRole.ID)
	repos.Role.Assign(ctx, kritim.ID, managerRole.ID)
	repos.Role.Assign(ctx, prerak.ID, memberRole.ID)
	repos.Role.Assign(ctx, sujata.ID, memberRole.ID)

	log.Printf("✅ Created 6 members")
	log.Printf("   └─ Marga (CEO)")
	log.Printf("      ├─ Bipin (VP Engineering)")
	log.Printf("      │  ├─ Prerak (Engineer)")
	log.Printf("      │  └─ Sujata (Engineer)")
	log.Printf("      └─ Kritim (Design Lead)")
	log.Printf("   └─ Anish: pending approval, off the chart")

	// ============================================
	// OPEN REVIEW CYCLE WITH SAMPLE ASSESSMENTS
	// ============================================
	now := time.Now()
	cycle := &repository.ReviewCycle{
		Name:     "Q3 2026 Review",
		Status:   types.CycleOpen,
		OpensAt:  now.AddDate(0, 0, -14),
		ClosesAt: now.AddDate(0, 0, 14),
	}
	repos.Assessment.CreateCycle(ctx, cycle)

	// Prerak has already submitted
	submittedAt := now.AddDate(0, 0, -2)
	prerakAssessment := &repository.Assessment{
		MemberID:    prerak.ID,
		CycleID:     cycle.ID,
		Status:      types.AssessmentSubmitted,
		Summary:     stringPtr("Shipped the billing migration and picked up on-call rotation."),
		SubmittedAt: &submittedAt,
	}
	repos.Assessment.Create(ctx, prerakAssessment)
	repos.Assessment.ReplaceItems(ctx, prerakAssessment.ID, []*repository.AssessmentItem{
		{Criterion: "Delivery", Score: "4.50", Comment: stringPtr("Billing migration landed ahead of schedule")},
		{Criterion: "Collaboration", Score: "4.00", Comment: nil},
		{Criterion: "Growth", Score: "3.75", Comment: stringPtr("Started mentoring Sujata")},
	})

	// Sujata has a draft in progress
	sujataAssessment := &repository.Assessment{
		MemberID: sujata.ID,
		CycleID:  cycle.ID,
		Status:   types.AssessmentDraft,
		Summary:  stringPtr("First full quarter on the team."),
	}
	repos.Assessment.Create(ctx, sujataAssessment)
	repos.Assessment.ReplaceItems(ctx, sujataAssessment.ID, []*repository.AssessmentItem{
		{Criterion: "Delivery", Score: "3.50", Comment: nil},
	})

	log.Printf("✅ Created open cycle %q with 1 submitted + 1 draft assessment", cycle.Name)

	// ============================================
	// SAMPLE FEEDBACK (supervisor -> subordinate)
	// ============================================
	repos.Feedback.Create(ctx, &repository.Feedback{
		AuthorID:   bipin.ID,
		SubjectID:  prerak.ID,
		CycleID:    &cycle.ID,
		Visibility: types.FeedbackShared,
		Rating:     stringPtr("4.25"),
		Body:       "Strong quarter. The billing migration was well planned and communicated.",
	})

	repos.Feedback.Create(ctx, &repository.Feedback{
		AuthorID:   bipin.ID,
		SubjectID:  sujata.ID,
		CycleID:    &cycle.ID,
		Visibility: types.FeedbackPrivate,
		Rating:     nil,
		Body:       "Ramping up well. Push for more code review participation next quarter.",
	})

	log.Printf("✅ Created 2 feedback entries")
	log.Println("[Seed] 🎉 Done. Login with any seeded email and password123")
}

func stringPtr(s string) *string {
	return &s
}
