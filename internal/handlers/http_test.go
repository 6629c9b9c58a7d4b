package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"meca_backend/database"
	"meca_backend/internal/app"
	"meca_backend/internal/auth"
	"meca_backend/internal/config"
	"meca_backend/internal/models"
	"meca_backend/internal/workers"
)

var routerDBCounter int
var routerDBMu sync.Mutex

func init() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Email.BaseURL = "http://localhost:8080"
	cfg.Email.FromEmail = "no-reply@test.local"
	cfg.Tokens.ReferenceTTLDays = 10
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	config.AppConfig = cfg
}

// newTestRouter wires the full middleware chain, services and routes
// against an in-memory database, exactly as the application boots.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	routerDBMu.Lock()
	routerDBCounter++
	name := fmt.Sprintf("file:routerdb%d?mode=memory&cache=shared", routerDBCounter)
	routerDBMu.Unlock()

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
	return app.SetupRouter(&workers.NopNotifier{}, db), db
}

func seedUser(t *testing.T, db *gorm.DB, emailAddr string, role models.UserRole) (*models.Profile, string) {
	t.Helper()

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: "x",
		Role:         role,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)

	profile := &models.Profile{
		UserID:    user.ID,
		FirstName: "Test",
		LastName:  "Member",
		Email:     emailAddr,
	}
	require.NoError(t, db.Create(profile).Error)

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err)
	return profile, token
}

func perform(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// errorCode extracts the code from the standard error envelope.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func submitBody() map[string]interface{} {
	return map[string]interface{}{
		"first_name":        "Alice",
		"last_name":         "Archer",
		"email":             "alice@example.com",
		"experience_years":  6,
		"experience_essay":  "Six seasons of SQL competition and show judging.",
		"motivation_essay":  "Want to give back to the lanes.",
		"acknowledged_code": true,
		"references": []map[string]string{
			{"name": "Bob Ref", "email": "bob@example.com"},
			{"name": "Carol Ref", "email": "carol@example.com"},
		},
	}
}

func TestRoutesRequireAuthentication(t *testing.T) {
	router, _ := newTestRouter(t)

	w := perform(t, router, http.MethodGet, "/api/v1/assignments/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Public surface stays open.
	w = perform(t, router, http.MethodGet, "/api/v1/directory/judges", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	router, db := newTestRouter(t)
	_, memberToken := seedUser(t, db, "member@example.com", models.UserRoleMember)

	w := perform(t, router, http.MethodGet, "/api/v1/admin/applications", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNotFoundMapsTo404(t *testing.T) {
	router, db := newTestRouter(t)
	_, adminToken := seedUser(t, db, "admin@example.com", models.UserRoleAdmin)

	w := perform(t, router, http.MethodGet, "/api/v1/admin/applications/missing", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestValidationFailureMapsTo400(t *testing.T) {
	router, db := newTestRouter(t)
	_, memberToken := seedUser(t, db, "member@example.com", models.UserRoleMember)

	w := perform(t, router, http.MethodPost, "/api/v1/applications/judge", memberToken,
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))
}

func TestConflictMapsTo409(t *testing.T) {
	router, db := newTestRouter(t)
	_, memberToken := seedUser(t, db, "member@example.com", models.UserRoleMember)

	w := perform(t, router, http.MethodPost, "/api/v1/applications/judge", memberToken, submitBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = perform(t, router, http.MethodPost, "/api/v1/applications/judge", memberToken, submitBody())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, w))
}

func TestForbiddenMapsTo403(t *testing.T) {
	router, db := newTestRouter(t)
	holder, _ := seedUser(t, db, "judge@example.com", models.UserRoleMember)
	_, outsiderToken := seedUser(t, db, "outsider@example.com", models.UserRoleMember)

	personnel := &models.Personnel{
		ProfileID: holder.ID,
		RoleType:  models.PersonnelRoleJudge,
		Level:     "certified",
		IsActive:  true,
	}
	require.NoError(t, db.Create(personnel).Error)

	event := &models.Event{
		Title:  "Autumn Finals",
		City:   "Memphis",
		State:  "TN",
		Date:   time.Now().AddDate(0, 1, 0),
		Status: models.EventStatusScheduled,
	}
	require.NoError(t, db.Create(event).Error)

	assignment := &models.Assignment{
		EventID:     event.ID,
		PersonnelID: personnel.ID,
		RoleType:    personnel.RoleType,
		Status:      models.AssignmentStatusRequested,
		RequestType: models.AssignmentRequestAdmin,
	}
	require.NoError(t, db.Create(assignment).Error)

	w := perform(t, router, http.MethodPost, "/api/v1/assignments/"+assignment.ID+"/respond",
		outsiderToken, map[string]interface{}{"accept": true})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, w))
}
