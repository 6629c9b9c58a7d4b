package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
	"meca_backend/internal/services/dto"
	"meca_backend/pkg/apperrors"
)

func strptr(s string) *string { return &s }

func currentPersonnel(t *testing.T, fx *serviceFixture, id string) *models.Personnel {
	t.Helper()
	var personnel models.Personnel
	require.NoError(t, fx.db.First(&personnel, "id = ?", id).Error)
	return &personnel
}

func TestCreateAssignment(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))

	resp, err := fx.assignments.Create(fx.db, "admin-1", &dto.CreateAssignmentRequest{
		EventID:     event.ID,
		PersonnelID: personnel.ID,
		RequestType: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "requested", resp.Status)
	assert.True(t, resp.Upcoming)
	assert.Equal(t, "Spring Sound Challenge", resp.EventTitle)

	// The personnel holder is notified once.
	require.Len(t, fx.notifier.sent(), 1)
	assert.Equal(t, "judge@example.com", fx.notifier.sent()[0].To)

	// Same pair again is a conflict.
	_, err = fx.assignments.Create(fx.db, "admin-1", &dto.CreateAssignmentRequest{
		EventID:     event.ID,
		PersonnelID: personnel.ID,
		RequestType: "admin",
	})
	requireCode(t, err, apperrors.CodeConflict)
}

func TestCreateAssignmentRejectsInactiveOrUnenabled(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))

	require.NoError(t, fx.db.Model(personnel).Update("is_active", false).Error)
	_, err := fx.assignments.Create(fx.db, "admin-1", &dto.CreateAssignmentRequest{
		EventID: event.ID, PersonnelID: personnel.ID, RequestType: "admin",
	})
	requireCode(t, err, apperrors.CodeValidationFailed)

	require.NoError(t, fx.db.Model(personnel).Update("is_active", true).Error)
	require.NoError(t, fx.db.Model(&models.Profile{}).Where("id = ?", profile.ID).
		Update("judge_enabled", false).Error)
	_, err = fx.assignments.Create(fx.db, "admin-1", &dto.CreateAssignmentRequest{
		EventID: event.ID, PersonnelID: personnel.ID, RequestType: "admin",
	})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestCreateAssignmentUnknownEvent(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")

	_, err := fx.assignments.Create(fx.db, "admin-1", &dto.CreateAssignmentRequest{
		EventID:     "00000000-0000-0000-0000-000000000000",
		PersonnelID: personnel.ID,
		RequestType: "admin",
	})
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestRespondAcceptAndDecline(t *testing.T) {
	fx := newServiceFixture(t)
	user, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusRequested)

	resp, err := fx.assignments.Respond(fx.db, assignment.ID, user.ID, &dto.RespondAssignmentRequest{Accept: true})
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Status)
	require.NotNil(t, resp.RespondedAt)

	// A second response loses to the requested-state guard.
	_, err = fx.assignments.Respond(fx.db, assignment.ID, user.ID, &dto.RespondAssignmentRequest{
		Accept: false, DeclineReason: "changed my mind",
	})
	requireCode(t, err, apperrors.CodeConflict)
}

func TestRespondDeclineKeepsReason(t *testing.T) {
	fx := newServiceFixture(t)
	user, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusRequested)

	resp, err := fx.assignments.Respond(fx.db, assignment.ID, user.ID, &dto.RespondAssignmentRequest{
		Accept: false, DeclineReason: "out of town that weekend",
	})
	require.NoError(t, err)
	assert.Equal(t, "declined", resp.Status)
	assert.Equal(t, "out of town that weekend", resp.DeclineReason)
}

func TestRespondRequiresOwnership(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	stranger, _ := seedMember(t, fx.db, "stranger@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusRequested)

	_, err := fx.assignments.Respond(fx.db, assignment.ID, stranger.ID, &dto.RespondAssignmentRequest{Accept: true})
	requireCode(t, err, apperrors.CodeForbidden)

	// Untouched by a stranger's attempt.
	var unchanged models.Assignment
	require.NoError(t, fx.db.First(&unchanged, "id = ?", assignment.ID).Error)
	assert.Equal(t, models.AssignmentStatusRequested, unchanged.Status)
}

func TestCompletionMovesCounterBothWays(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusCompleted, time.Now().AddDate(0, 0, -7))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusConfirmed)

	_, err := fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{
		Status: strptr("completed"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, currentPersonnel(t, fx, personnel.ID).TotalEventsHandled)

	// Moving back out of completed returns the contribution.
	_, err = fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{
		Status: strptr("confirmed"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, currentPersonnel(t, fx, personnel.ID).TotalEventsHandled)

	// The counter never goes below zero.
	_, err = fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{
		Status: strptr("accepted"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, currentPersonnel(t, fx, personnel.ID).TotalEventsHandled)
}

func TestUpdateNotifiesOnlyOnStatusChange(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusAccepted)

	// Notes only: no mail.
	_, err := fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{
		AdminNotes: strptr("bring SPL gear"),
	})
	require.NoError(t, err)
	assert.Empty(t, fx.notifier.sent())

	// Status change: exactly one mail.
	_, err = fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{
		Status: strptr("confirmed"),
	})
	require.NoError(t, err)
	assert.Len(t, fx.notifier.sent(), 1)

	// Same status again: no new mail.
	_, err = fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{
		Status:     strptr("confirmed"),
		AdminNotes: strptr("confirmed with venue"),
	})
	require.NoError(t, err)
	assert.Len(t, fx.notifier.sent(), 1)
}

func TestUpdateWithNoFields(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusAccepted)

	_, err := fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestDeleteCompletedAssignmentDecrementsCounter(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusCompleted, time.Now().AddDate(0, 0, -7))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusConfirmed)

	_, err := fx.assignments.Update(fx.db, assignment.ID, &dto.UpdateAssignmentRequest{
		Status: strptr("completed"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, currentPersonnel(t, fx, personnel.ID).TotalEventsHandled)

	require.NoError(t, fx.assignments.Delete(fx.db, assignment.ID))
	assert.Equal(t, 0, currentPersonnel(t, fx, personnel.ID).TotalEventsHandled)

	var count int64
	require.NoError(t, fx.db.Model(&models.Assignment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// Deleted pair can be re-created.
	_, err = fx.assignments.Create(fx.db, "admin-1", &dto.CreateAssignmentRequest{
		EventID: event.ID, PersonnelID: personnel.ID, RequestType: "admin",
	})
	require.NoError(t, err)
}

// A completion write observed from a stale status must lose: the guarded
// update affects zero rows, so only one of two racing transitions can ever
// move the counter.
func TestStatusGuardedUpdateRejectsStaleTransition(t *testing.T) {
	fx := newServiceFixture(t)
	_, profile := seedMember(t, fx.db, "judge@example.com")
	personnel := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))
	assignment := seedAssignment(t, fx.db, event, personnel, models.AssignmentStatusAccepted)

	repo := repositories.NewAssignmentRepository()
	err := repo.UpdateFromStatus(fx.db, assignment.ID, models.AssignmentStatusRequested,
		map[string]interface{}{"status": models.AssignmentStatusCompleted})
	require.ErrorIs(t, err, repositories.ErrAssignmentStatusChanged)

	var current models.Assignment
	require.NoError(t, fx.db.First(&current, "id = ?", assignment.ID).Error)
	assert.Equal(t, models.AssignmentStatusAccepted, current.Status)

	// The write goes through when the observed status still holds.
	require.NoError(t, repo.UpdateFromStatus(fx.db, assignment.ID, models.AssignmentStatusAccepted,
		map[string]interface{}{"status": models.AssignmentStatusCompleted}))
	require.NoError(t, fx.db.First(&current, "id = ?", assignment.ID).Error)
	assert.Equal(t, models.AssignmentStatusCompleted, current.Status)
}

func TestListOwnSpansBothRoles(t *testing.T) {
	fx := newServiceFixture(t)
	user, profile := seedMember(t, fx.db, "both@example.com")
	judge := seedPersonnel(t, fx.db, profile, models.PersonnelRoleJudge, "certified")
	director := seedPersonnel(t, fx.db, profile, models.PersonnelRoleEventDirector, "")
	event := seedEvent(t, fx.db, models.EventStatusScheduled, time.Now().AddDate(0, 1, 0))

	seedAssignment(t, fx.db, event, judge, models.AssignmentStatusRequested)
	past := seedEvent(t, fx.db, models.EventStatusCompleted, time.Now().AddDate(0, 0, -30))
	seedAssignment(t, fx.db, past, director, models.AssignmentStatusCompleted)

	assignments, err := fx.assignments.ListOwn(fx.db, user.ID, false)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	upcoming := 0
	for _, a := range assignments {
		if a.Upcoming {
			upcoming++
		}
	}
	assert.Equal(t, 1, upcoming)

	onlyUpcoming, err := fx.assignments.ListOwn(fx.db, user.ID, true)
	require.NoError(t, err)
	require.Len(t, onlyUpcoming, 1)
	assert.Equal(t, event.ID, onlyUpcoming[0].EventID)

	filtered, err := fx.assignments.List(fx.db, past.ID, "")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, director.ID, filtered[0].PersonnelID)
}
