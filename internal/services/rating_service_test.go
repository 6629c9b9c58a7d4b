package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meca_backend/internal/models"
	"meca_backend/internal/services/dto"
	"meca_backend/pkg/apperrors"
)

// ratingScene is the standard setup: a completed event with one rateable
// judge and one competitor.
type ratingScene struct {
	fx        *serviceFixture
	event     *models.Event
	judge     *models.Personnel
	raterUser *models.User
}

func newRatingScene(t *testing.T) *ratingScene {
	t.Helper()
	fx := newServiceFixture(t)

	_, judgeProfile := seedMember(t, fx.db, "judge@example.com")
	judge := seedPersonnel(t, fx.db, judgeProfile, models.PersonnelRoleJudge, "certified")

	event := seedEvent(t, fx.db, models.EventStatusCompleted, time.Now().AddDate(0, 0, -3))
	seedAssignment(t, fx.db, event, judge, models.AssignmentStatusCompleted)

	raterUser, raterProfile := seedMember(t, fx.db, "rater@example.com")
	seedCompetitor(t, fx.db, raterProfile, event, "M-1001")

	return &ratingScene{fx: fx, event: event, judge: judge, raterUser: raterUser}
}

func (s *ratingScene) rate(t *testing.T, score int) (*dto.RatingResponse, error) {
	t.Helper()
	return s.fx.ratings.Create(s.fx.db, s.raterUser.ID, &dto.CreateRatingRequest{
		EventID:    s.event.ID,
		EntityType: "judge",
		EntityID:   s.judge.ID,
		Score:      score,
		Comment:    "fair and thorough",
	})
}

func TestCreateRatingUpdatesAggregates(t *testing.T) {
	scene := newRatingScene(t)

	resp, err := scene.rate(t, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Score)

	judge := currentPersonnel(t, scene.fx, scene.judge.ID)
	assert.Equal(t, 1, judge.TotalRatings)
	assert.InDelta(t, 4.0, judge.AverageRating, 0.001)

	// A second rater moves the aggregate to the true mean.
	otherUser, otherProfile := seedMember(t, scene.fx.db, "rater2@example.com")
	seedCompetitor(t, scene.fx.db, otherProfile, scene.event, "M-1002")

	_, err = scene.fx.ratings.Create(scene.fx.db, otherUser.ID, &dto.CreateRatingRequest{
		EventID:    scene.event.ID,
		EntityType: "judge",
		EntityID:   scene.judge.ID,
		Score:      5,
	})
	require.NoError(t, err)

	judge = currentPersonnel(t, scene.fx, scene.judge.ID)
	assert.Equal(t, 2, judge.TotalRatings)
	assert.InDelta(t, 4.5, judge.AverageRating, 0.001)
}

func TestCreateRatingIsOncePerEventAndEntity(t *testing.T) {
	scene := newRatingScene(t)

	_, err := scene.rate(t, 4)
	require.NoError(t, err)

	_, err = scene.rate(t, 5)
	requireCode(t, err, apperrors.CodeConflict)

	judge := currentPersonnel(t, scene.fx, scene.judge.ID)
	assert.Equal(t, 1, judge.TotalRatings)
}

func TestCreateRatingRequiresCompletedEvent(t *testing.T) {
	scene := newRatingScene(t)
	require.NoError(t, scene.fx.db.Model(scene.event).
		Update("status", models.EventStatusInProgress).Error)

	_, err := scene.rate(t, 4)
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestCreateRatingRequiresPaidCompetitor(t *testing.T) {
	scene := newRatingScene(t)

	// A member who never competed at the event.
	outsider, _ := seedMember(t, scene.fx.db, "outsider@example.com")
	_, err := scene.fx.ratings.Create(scene.fx.db, outsider.ID, &dto.CreateRatingRequest{
		EventID:    scene.event.ID,
		EntityType: "judge",
		EntityID:   scene.judge.ID,
		Score:      3,
	})
	requireCode(t, err, apperrors.CodeValidationFailed)

	// Competed, but the membership was never paid.
	unpaidUser, unpaidProfile := seedMember(t, scene.fx.db, "unpaid@example.com")
	require.NoError(t, scene.fx.db.Create(&models.Membership{
		ProfileID: unpaidProfile.ID, MecaID: "M-2001", Paid: false,
	}).Error)
	require.NoError(t, scene.fx.db.Create(&models.CompetitionResult{
		EventID: scene.event.ID, MecaID: "M-2001", Class: "SPL", Score: 140.1,
	}).Error)

	_, err = scene.fx.ratings.Create(scene.fx.db, unpaidUser.ID, &dto.CreateRatingRequest{
		EventID:    scene.event.ID,
		EntityType: "judge",
		EntityID:   scene.judge.ID,
		Score:      3,
	})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestCreateRatingRequiresRateableAssignment(t *testing.T) {
	scene := newRatingScene(t)

	// A judge who declined the event cannot be rated there.
	_, declinedProfile := seedMember(t, scene.fx.db, "declined@example.com")
	declinedJudge := seedPersonnel(t, scene.fx.db, declinedProfile, models.PersonnelRoleJudge, "senior")
	seedAssignment(t, scene.fx.db, scene.event, declinedJudge, models.AssignmentStatusDeclined)

	_, err := scene.fx.ratings.Create(scene.fx.db, scene.raterUser.ID, &dto.CreateRatingRequest{
		EventID:    scene.event.ID,
		EntityType: "judge",
		EntityID:   declinedJudge.ID,
		Score:      2,
	})
	requireCode(t, err, apperrors.CodeValidationFailed)

	// A judge with no assignment at all.
	_, absentProfile := seedMember(t, scene.fx.db, "absent@example.com")
	absentJudge := seedPersonnel(t, scene.fx.db, absentProfile, models.PersonnelRoleJudge, "master")

	_, err = scene.fx.ratings.Create(scene.fx.db, scene.raterUser.ID, &dto.CreateRatingRequest{
		EventID:    scene.event.ID,
		EntityType: "judge",
		EntityID:   absentJudge.ID,
		Score:      2,
	})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestDeleteRatingWindow(t *testing.T) {
	scene := newRatingScene(t)

	rating, err := scene.rate(t, 4)
	require.NoError(t, err)

	// Inside the window the rater may retract; aggregates recompute.
	require.NoError(t, scene.fx.ratings.Delete(scene.fx.db, rating.ID, scene.raterUser.ID, false))
	judge := currentPersonnel(t, scene.fx, scene.judge.ID)
	assert.Equal(t, 0, judge.TotalRatings)
	assert.InDelta(t, 0.0, judge.AverageRating, 0.001)

	// Past the window the rater is locked out.
	rating, err = scene.rate(t, 5)
	require.NoError(t, err)
	require.NoError(t, scene.fx.db.Model(&models.Rating{}).Where("id = ?", rating.ID).
		Update("created_at", time.Now().Add(-25*time.Hour)).Error)

	err = scene.fx.ratings.Delete(scene.fx.db, rating.ID, scene.raterUser.ID, false)
	requireCode(t, err, apperrors.CodeForbidden)

	// Admins are not time boxed.
	require.NoError(t, scene.fx.ratings.Delete(scene.fx.db, rating.ID, "admin-1", true))
	assert.Equal(t, 0, currentPersonnel(t, scene.fx, scene.judge.ID).TotalRatings)
}

func TestDeleteRatingRequiresOwnership(t *testing.T) {
	scene := newRatingScene(t)

	rating, err := scene.rate(t, 4)
	require.NoError(t, err)

	stranger, _ := seedMember(t, scene.fx.db, "stranger@example.com")
	err = scene.fx.ratings.Delete(scene.fx.db, rating.ID, stranger.ID, false)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestRateableEntitiesSplitsRoles(t *testing.T) {
	scene := newRatingScene(t)

	_, directorProfile := seedMember(t, scene.fx.db, "director@example.com")
	director := seedPersonnel(t, scene.fx.db, directorProfile, models.PersonnelRoleEventDirector, "")
	seedAssignment(t, scene.fx.db, scene.event, director, models.AssignmentStatusAccepted)

	_, err := scene.rate(t, 4)
	require.NoError(t, err)

	resp, err := scene.fx.ratings.RateableEntities(scene.fx.db, scene.raterUser.ID, scene.event.ID)
	require.NoError(t, err)

	require.Len(t, resp.Judges, 1)
	assert.True(t, resp.Judges[0].AlreadyRated)
	require.Len(t, resp.EventDirectors, 1)
	assert.False(t, resp.EventDirectors[0].AlreadyRated)
}

func TestRateableEntitiesEmptyForNonCompetitors(t *testing.T) {
	scene := newRatingScene(t)

	outsider, _ := seedMember(t, scene.fx.db, "outsider@example.com")
	resp, err := scene.fx.ratings.RateableEntities(scene.fx.db, outsider.ID, scene.event.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Judges)
	assert.Empty(t, resp.EventDirectors)
}

func TestAdminRatingListingAndAnalytics(t *testing.T) {
	scene := newRatingScene(t)

	_, err := scene.rate(t, 4)
	require.NoError(t, err)

	list, err := scene.fx.ratings.ListAll(scene.fx.db, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Ratings, 1)

	analytics, err := scene.fx.ratings.Analytics(scene.fx.db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, analytics.TotalRatings)
	assert.InDelta(t, 4.0, analytics.AverageScore, 0.001)
	assert.EqualValues(t, 1, analytics.ScoreCounts[4])
}
