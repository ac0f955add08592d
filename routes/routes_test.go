package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	memoryRepo "cityportal/database/repository/memory"
	roleRepo "cityportal/database/repository/role"
	"cityportal/handlers"
	"cityportal/models"
	"cityportal/services/analytics"
	"cityportal/services/appeal"
	"cityportal/services/catalog"
	"cityportal/services/document"
	"cityportal/services/news"
	"cityportal/services/notification"
	"cityportal/services/profile"
	"cityportal/services/realtime"
	"cityportal/services/resource"
	"cityportal/services/role"
	"cityportal/services/storage"
	"cityportal/services/user"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type analyticsStub struct{}

func (analyticsStub) EmployeeDashboard(ctx context.Context) (*models.EmployeeDashboard, error) {
	return &models.EmployeeDashboard{DocumentsTotal: 3}, nil
}

func (analyticsStub) ResidentDashboard(ctx context.Context, userID string) (*models.ResidentDashboard, error) {
	return &models.ResidentDashboard{UnreadNotifications: 1}, nil
}

var _ analytics.AnalyticsService = analyticsStub{}

type testEnv struct {
	router *gin.Engine
	roles  roleRepo.RoleRepository
	hub    *realtime.Hub
	files  *storage.MemoryStorage
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetLogger(zap.NewNop())

	store := memoryRepo.NewStore()
	users := memoryRepo.NewUserRepo(store)
	profiles := memoryRepo.NewProfileRepo(store)
	roles := memoryRepo.NewRoleRepo(store)
	appeals := memoryRepo.NewAppealRepo(store)
	files := storage.NewMemoryStorage("http://files.test")
	hub := realtime.NewHub(8)
	t.Cleanup(hub.Close)

	notifications := notification.NewDefaultNotificationService(
		memoryRepo.NewNotificationRepo(store), users, roles, hub, nil, nil, models.LangEN)
	userSvc := user.NewDefaultUserService(users, profiles, roles, memoryRepo.NewTokenCache(), time.Hour, models.LangEN)
	roleSvc := role.NewDefaultRoleService(roles, profiles, notifications)

	hb := &handlers.HandlerBundle{
		Verifier:     userSvc,
		Roles:        roleSvc,
		Auth:         handlers.NewAuthHandler(userSvc, notifications),
		Profile:      handlers.NewProfileHandler(profile.NewDefaultProfileService(profiles, roles, files)),
		Role:         handlers.NewRoleHandler(roleSvc),
		Appeal:       handlers.NewAppealHandler(appeal.NewDefaultAppealService(appeals, roles, notifications)),
		Catalog:      handlers.NewCatalogHandler(catalog.NewDefaultCatalogService(memoryRepo.NewServiceRepo(store), memoryRepo.NewJSONCache(), time.Minute)),
		Resource:     handlers.NewResourceHandler(resource.NewDefaultResourceService(memoryRepo.NewResourceRepo(store), roles, notifications)),
		Document:     handlers.NewDocumentHandler(document.NewDefaultDocumentService(memoryRepo.NewDocumentRepo(store), appeals, files, 1<<20), 1<<20),
		Notification: handlers.NewNotificationHandler(notifications, hub, []string{"*"}),
		News:         handlers.NewNewsHandler(news.NewDefaultNewsService(memoryRepo.NewNewsRepo(store), files, notifications, memoryRepo.NewJSONCache(), time.Minute)),
		Dashboard:    handlers.NewDashboardHandler(analyticsStub{}),
	}
	r, err := NewRouter(hb, Options{AllowedOrigins: []string{"*"}, MaxRequestsPerMin: 10000})
	require.NoError(t, err)
	return &testEnv{router: r, roles: roles, hub: hub, files: files}
}

type call struct {
	method, path, token, device string
	body                        any
	header                      map[string]string
}

func (e *testEnv) do(t *testing.T, c call) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(c.method, c.path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.device != "" {
		req.Header.Set("X-Device-ID", c.device)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

// signUp registers a resident and returns its token and id.
func (e *testEnv) signUp(t *testing.T, email string) (string, string) {
	t.Helper()
	w, body := e.do(t, call{method: http.MethodPost, path: "/api/auth/signup", device: "dev-" + email, body: map[string]any{
		"email": email, "password": "Str0ng!pass", "fullName": "Test " + email,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := body["token"].(string)
	uid := body["user"].(map[string]any)["id"].(string)
	return token, uid
}

func (e *testEnv) promote(t *testing.T, userID string, r models.Role) {
	t.Helper()
	require.NoError(t, e.roles.Add(context.Background(), &models.UserRole{ID: userID + string(r), UserID: userID, Role: r}))
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	utils.RunHealthChecks(context.Background(), map[string]utils.HealthCheck{
		"mongo": func(context.Context) error { return nil },
	})
	w, body := e.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["healthy"])
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)

	w, _ := e.do(t, call{method: http.MethodPost, path: "/api/auth/signup", body: map[string]any{
		"email": "a@city.test", "password": "Str0ng!pass", "fullName": "A",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code, "device header is required")

	token, _ := e.signUp(t, "a@city.test")

	w, body := e.do(t, call{method: http.MethodGet, path: "/api/auth/session", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"resident"}, body["roles"])

	w, body = e.do(t, call{method: http.MethodPost, path: "/api/auth/signin", device: "dev-a@city.test", body: map[string]any{
		"email": "a@city.test", "password": "wrong",
	}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", body["error"])

	w, _ = e.do(t, call{method: http.MethodPost, path: "/api/auth/signout", token: token})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, call{method: http.MethodGet, path: "/api/auth/session", token: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "token must be dead after sign-out")
}

func TestSignUpValidatesLanguage(t *testing.T) {
	e := newEnv(t)

	w, body := e.do(t, call{method: http.MethodPost, path: "/api/auth/signup", device: "dev-1", body: map[string]any{
		"email": "lang@city.test", "password": "Str0ng!pass", "fullName": "L", "language": "zz",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "validation_error", body["error"])

	w, _ = e.do(t, call{method: http.MethodPost, path: "/api/auth/signup", device: "dev-1", body: map[string]any{
		"email": "lang@city.test", "password": "Str0ng!pass", "fullName": "L", "language": "ru",
	}})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestErrorsAreLocalized(t *testing.T) {
	e := newEnv(t)
	_, en := e.do(t, call{method: http.MethodGet, path: "/api/profile"})
	_, ru := e.do(t, call{method: http.MethodGet, path: "/api/profile?lang=ru"})
	assert.Equal(t, "unauthorized", en["error"])
	assert.NotEqual(t, en["message"], ru["message"])
}

func TestAppealLifecycle(t *testing.T) {
	e := newEnv(t)
	resToken, _ := e.signUp(t, "res@city.test")
	empToken, empID := e.signUp(t, "emp@city.test")
	e.promote(t, empID, models.RoleEmployee)

	w, _ := e.do(t, call{method: http.MethodGet, path: "/api/appeals", token: resToken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, created := e.do(t, call{method: http.MethodPost, path: "/api/appeals", token: resToken, body: map[string]any{
		"title": "Broken streetlight", "description": "Dark at night", "category": "infrastructure",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := created["id"].(string)

	w, _ = e.do(t, call{method: http.MethodPatch, path: "/api/appeals/" + id + "/assign", token: empToken, body: map[string]any{"employeeId": empID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body := e.do(t, call{method: http.MethodPatch, path: "/api/appeals/" + id + "/status", token: empToken, body: map[string]any{"status": "closed"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", body["error"])

	w, body = e.do(t, call{method: http.MethodPatch, path: "/api/appeals/" + id + "/status", token: empToken, body: map[string]any{"status": "in_progress"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "in_progress", body["status"])

	w, _ = e.do(t, call{method: http.MethodPost, path: "/api/appeals/" + id + "/withdraw", token: resToken})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = e.do(t, call{method: http.MethodGet, path: "/api/notifications/unread-count", token: resToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["unread"])

	w, body = e.do(t, call{method: http.MethodGet, path: "/api/appeals/mine", token: resToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
}

func TestCatalogPublicAndStaffOnlyWrites(t *testing.T) {
	e := newEnv(t)
	empToken, empID := e.signUp(t, "emp@city.test")
	e.promote(t, empID, models.RoleEmployee)
	resToken, _ := e.signUp(t, "res@city.test")

	req := map[string]any{
		"name": map[string]any{"en": "Parking permit", "ru": "Разрешение на парковку"}, "category": "transport",
	}
	w, _ := e.do(t, call{method: http.MethodPost, path: "/api/services", token: resToken, body: req})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = e.do(t, call{method: http.MethodPost, path: "/api/services", token: empToken, body: req})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body := e.do(t, call{method: http.MethodGet, path: "/api/services"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, token string, fields map[string]string) models.Document {
	t.Helper()
	body, ct := multipartBody(t, fields, "scan.pdf", []byte("%PDF-1.4 test"))
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}

func TestDocumentUploadAndVisibility(t *testing.T) {
	e := newEnv(t)
	ownerToken, _ := e.signUp(t, "owner@city.test")
	otherToken, _ := e.signUp(t, "other@city.test")

	doc := e.upload(t, ownerToken, map[string]string{"titleEn": "Passport scan"})
	assert.Equal(t, models.VisibilityPrivate, doc.Visibility)
	assert.Equal(t, 1, e.files.Len())

	rec, _ := e.do(t, call{method: http.MethodGet, path: "/api/documents/" + doc.ID, token: otherToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = e.do(t, call{method: http.MethodGet, path: "/api/documents/" + doc.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, link := e.do(t, call{method: http.MethodGet, path: "/api/documents/" + doc.ID + "/download", token: ownerToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, link["url"], "expires=")

	rec, _ = e.do(t, call{method: http.MethodDelete, path: "/api/documents/" + doc.ID, token: ownerToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, e.files.Len())
}

func TestAppealAttachmentVisibleToStaff(t *testing.T) {
	e := newEnv(t)
	resToken, _ := e.signUp(t, "res@city.test")
	otherToken, _ := e.signUp(t, "other@city.test")
	empToken, empID := e.signUp(t, "emp@city.test")
	e.promote(t, empID, models.RoleEmployee)

	w, created := e.do(t, call{method: http.MethodPost, path: "/api/appeals", token: resToken, body: map[string]any{
		"title": "Pothole", "description": "Deep pothole on Main St", "category": "infrastructure",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	appealID := created["id"].(string)

	doc := e.upload(t, resToken, map[string]string{"titleEn": "Photo", "appealId": appealID})
	assert.Equal(t, models.VisibilityPrivate, doc.Visibility)

	rec, _ := e.do(t, call{method: http.MethodGet, path: "/api/documents/" + doc.ID, token: empToken})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, link := e.do(t, call{method: http.MethodGet, path: "/api/documents/" + doc.ID + "/download", token: empToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, link["url"])

	rec, list := e.do(t, call{method: http.MethodGet, path: "/api/documents?appealId=" + appealID, token: empToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, list["total"])

	rec, _ = e.do(t, call{method: http.MethodGet, path: "/api/documents/" + doc.ID, token: otherToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoleAdministration(t *testing.T) {
	e := newEnv(t)
	adminToken, adminID := e.signUp(t, "admin@city.test")
	e.promote(t, adminID, models.RoleAdmin)
	_, resID := e.signUp(t, "res@city.test")

	w, _ := e.do(t, call{method: http.MethodPost, path: "/api/roles", token: adminToken, body: map[string]any{"userId": resID, "role": "employee"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, body := e.do(t, call{method: http.MethodGet, path: "/api/roles/" + resID, token: adminToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["roles"], "employee")

	w, body = e.do(t, call{method: http.MethodDelete, path: "/api/roles/" + adminID + "/admin", token: adminToken})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["error"])
}

func TestDashboards(t *testing.T) {
	e := newEnv(t)
	resToken, _ := e.signUp(t, "res@city.test")

	w, _ := e.do(t, call{method: http.MethodGet, path: "/api/dashboard/employee", token: resToken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := e.do(t, call{method: http.MethodGet, path: "/api/dashboard/resident", token: resToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["unreadNotifications"])
}

func TestNotificationStream(t *testing.T) {
	e := newEnv(t)
	token, uid := e.signUp(t, "ws@city.test")

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/notifications/ws?access_token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return e.hub.Subscribers(uid) == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, e.hub.Publish(context.Background(), &models.Notification{ID: "n1", UserID: uid, Type: models.NotificationSystem}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var n models.Notification
	require.NoError(t, json.Unmarshal(msg, &n))
	assert.Equal(t, "n1", n.ID)

	conn.Close()
	assert.Eventually(t, func() bool { return e.hub.Subscribers(uid) == 0 }, 2*time.Second, 10*time.Millisecond)
}
