package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"meca_backend/database"
	"meca_backend/internal/config"
	"meca_backend/internal/email"
	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
	"meca_backend/pkg/apperrors"
)

var testDBCounter int
var testDBMu sync.Mutex

func init() {
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Email.BaseURL = "http://localhost:8080"
	cfg.Email.FromEmail = "no-reply@test.local"
	cfg.Tokens.ReferenceTTLDays = 10
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

// newTestDB opens a fresh in-memory sqlite database with the full schema.
// Shared cache keeps every pooled connection on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBMu.Lock()
	testDBCounter++
	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBCounter)
	testDBMu.Unlock()

	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// recordingNotifier captures every enqueued message for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []*email.Message
}

func (n *recordingNotifier) Enqueue(msg *email.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) sent() []*email.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*email.Message, len(n.messages))
	copy(out, n.messages)
	return out
}

// requireCode asserts the error carries the given application error code.
func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected *apperrors.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}

// --- Seed helpers ---

func seedMember(t *testing.T, db *gorm.DB, emailAddr string) (*models.User, *models.Profile) {
	t.Helper()

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: "x",
		Role:         models.UserRoleMember,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)

	profile := &models.Profile{
		UserID:    user.ID,
		FirstName: "Test",
		LastName:  "Member",
		Email:     emailAddr,
		City:      "Nashville",
		State:     "TN",
	}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func seedCurrentSeason(t *testing.T, db *gorm.DB) *models.Season {
	t.Helper()

	season := &models.Season{
		Name:      "2026",
		StartDate: time.Now().AddDate(0, -3, 0),
		EndDate:   time.Now().AddDate(0, 9, 0),
		IsCurrent: true,
	}
	require.NoError(t, db.Create(season).Error)
	return season
}

func seedEvent(t *testing.T, db *gorm.DB, status models.EventStatus, date time.Time) *models.Event {
	t.Helper()

	event := &models.Event{
		Title:  "Spring Sound Challenge",
		City:   "Memphis",
		State:  "TN",
		Date:   date,
		Status: status,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func seedPersonnel(t *testing.T, db *gorm.DB, profile *models.Profile, role models.PersonnelRole, level string) *models.Personnel {
	t.Helper()

	personnel := &models.Personnel{
		ProfileID: profile.ID,
		RoleType:  role,
		Level:     level,
		IsActive:  true,
	}
	require.NoError(t, db.Create(personnel).Error)

	column := "judge_enabled"
	if role == models.PersonnelRoleEventDirector {
		column = "event_director_enabled"
	}
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", profile.ID).
		Update(column, true).Error)
	return personnel
}

// seedCompetitor gives the profile a paid membership and a scored result at
// the event, which together satisfy the rating eligibility gate.
func seedCompetitor(t *testing.T, db *gorm.DB, profile *models.Profile, event *models.Event, mecaID string) {
	t.Helper()

	membership := &models.Membership{
		ProfileID: profile.ID,
		MecaID:    mecaID,
		Paid:      true,
	}
	require.NoError(t, db.Create(membership).Error)

	result := &models.CompetitionResult{
		EventID:   event.ID,
		MecaID:    mecaID,
		Class:     "SQL Amateur",
		Score:     78.5,
		Placement: 2,
	}
	require.NoError(t, db.Create(result).Error)
}

func seedAssignment(t *testing.T, db *gorm.DB, event *models.Event, personnel *models.Personnel, status models.AssignmentStatus) *models.Assignment {
	t.Helper()

	requester := "admin"
	assignment := &models.Assignment{
		EventID:     event.ID,
		PersonnelID: personnel.ID,
		RoleType:    personnel.RoleType,
		Status:      status,
		RequestType: models.AssignmentRequestAdmin,
		RequestedBy: &requester,
	}
	require.NoError(t, db.Create(assignment).Error)
	return assignment
}

// --- Service fixtures ---

type serviceFixture struct {
	db       *gorm.DB
	notifier *recordingNotifier
	seasons  *FixedSeasonProvider

	applications ApplicationService
	personnel    PersonnelService
	assignments  AssignmentService
	ratings      RatingService
	verification VerificationService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := newTestDB(t)
	notifier := &recordingNotifier{}

	applicationRepo := repositories.NewApplicationRepository()
	personnelRepo := repositories.NewPersonnelRepository()
	profileRepo := repositories.NewProfileRepository()
	assignmentRepo := repositories.NewAssignmentRepository()
	ratingRepo := repositories.NewRatingRepository()
	eventRepo := repositories.NewEventRepository()
	tokenRepo := repositories.NewTokenRepository()

	verification := NewVerificationService(tokenRepo, applicationRepo, notifier)
	seasons := &FixedSeasonProvider{}

	return &serviceFixture{
		db:           db,
		notifier:     notifier,
		seasons:      seasons,
		applications: NewApplicationService(applicationRepo, personnelRepo, profileRepo, verification, seasons, notifier),
		personnel:    NewPersonnelService(personnelRepo),
		assignments:  NewAssignmentService(assignmentRepo, personnelRepo, profileRepo, eventRepo, notifier),
		ratings:      NewRatingService(ratingRepo, assignmentRepo, personnelRepo, profileRepo, eventRepo),
		verification: verification,
	}
}

