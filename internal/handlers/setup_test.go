package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/planner-collab/internal/database"
	"github.com/thereayou/planner-collab/internal/database/dbtest"
	"github.com/thereayou/planner-collab/internal/middleware"
	"github.com/thereayou/planner-collab/internal/models"
)

const testUserHeader = "X-Test-User"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuth stands in for the JWT middleware and trusts testUserHeader.
func fakeAuth(c *gin.Context) {
	id, err := strconv.ParseUint(c.GetHeader(testUserHeader), 10, 64)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(middleware.UserIDKey, uint(id))
	c.Next()
}

type planEvent struct {
	planID  uint
	payload any
}

type userNote struct {
	userID  uint
	message string
	kind    string
}

type recordingPlanEvents struct {
	mu     sync.Mutex
	events []planEvent
	notes  []userNote
}

func (r *recordingPlanEvents) NotifyUser(_ context.Context, userID uint, message, kind string, _ *uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, userNote{userID: userID, message: message, kind: kind})
	return &models.Notification{UserID: userID, Message: message, Type: kind}, nil
}

func (r *recordingPlanEvents) notified() []userNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]userNote(nil), r.notes...)
}

func (r *recordingPlanEvents) EmitPlanUpdated(planID uint, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, planEvent{planID: planID, payload: payload})
}

func (r *recordingPlanEvents) all() []planEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]planEvent(nil), r.events...)
}

// seedStore creates users 1 (Owen, owner of group 10), 2 (Mia, member) and 3 (Zed, outsider).
func seedStore(t *testing.T) *database.Database {
	t.Helper()
	ctx := context.Background()
	db := dbtest.New(t)

	for _, u := range []models.User{
		{ID: 1, FullName: "Owen", Email: "owen@example.com", PasswordHash: "x"},
		{ID: 2, FullName: "Mia", Email: "mia@example.com", PasswordHash: "x"},
		{ID: 3, FullName: "Zed", Email: "zed@example.com", PasswordHash: "x"},
	} {
		u := u
		require.NoError(t, db.SaveUser(ctx, &u))
	}
	require.NoError(t, db.CreateGroup(ctx, &models.Group{ID: 10, Name: "Trip", CreatedBy: 1}))
	require.NoError(t, db.UpsertMembership(ctx, 2, 10, models.RoleMember))

	return db
}

func doJSON(t *testing.T, r http.Handler, method, path string, userID uint, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	request := httptest.NewRequest(method, path, &buf)
	request.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		request.Header.Set(testUserHeader, strconv.FormatUint(uint64(userID), 10))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, request)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
