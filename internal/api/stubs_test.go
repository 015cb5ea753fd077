package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/service"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stubs embed the service interface; calling a method they do not override panics.

type stubAuthService struct {
	service.AuthService
	tokens     map[string]*service.Claims
	loggedOut  *service.Claims
	parseError error
}

func (s *stubAuthService) ParseToken(_ context.Context, token string) (*service.Claims, error) {
	if s.parseError != nil {
		return nil, s.parseError
	}
	if token == "revoked" {
		return nil, service.ErrTokenRevoked
	}
	claims, ok := s.tokens[token]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return claims, nil
}

func (s *stubAuthService) Logout(_ context.Context, claims *service.Claims) error {
	s.loggedOut = claims
	return nil
}

type stubUserService struct {
	service.UserService
	users     map[primitive.ObjectID]*domain.User
	listQuery service.ListUsersInput
	toggleErr error
}

func (s *stubUserService) ToggleAccessStatus(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if s.toggleErr != nil {
		return nil, s.toggleErr
	}
	user, ok := s.users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	user.AccessStatus = user.AccessStatus.Toggled()
	return user, nil
}

func (s *stubUserService) GetUser(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserService) ListUsers(_ context.Context, input service.ListUsersInput, _ repository.PageRequest) (*repository.Page[domain.User], error) {
	s.listQuery = input
	page := &repository.Page[domain.User]{}
	for _, user := range s.users {
		page.Items = append(page.Items, *user)
	}
	return page, nil
}

type stubActivityService struct {
	service.ActivityService
	page repository.PageRequest
}

func (s *stubActivityService) ListActivities(_ context.Context, _ domain.ActivityType, page repository.PageRequest) (*repository.Page[domain.Activity], error) {
	s.page = page
	return &repository.Page[domain.Activity]{}, nil
}

type stubSessionService struct {
	service.SessionService
	join func(userID, sessionID primitive.ObjectID) (*service.JoinResult, error)
}

func (s *stubSessionService) JoinSession(_ context.Context, userID, sessionID primitive.ObjectID) (*service.JoinResult, error) {
	return s.join(userID, sessionID)
}

type stubCheckInService struct {
	service.CheckInService
	code string
	err  error
}

func (s *stubCheckInService) CheckIn(_ context.Context, userID primitive.ObjectID, code string) (*domain.CheckIn, error) {
	s.code = code
	if s.err != nil {
		return nil, s.err
	}
	return &domain.CheckIn{ID: primitive.NewObjectID(), UserID: userID, Date: "2026-03-10", CreditsAfter: 4}, nil
}

type stubMediaService struct {
	service.MediaService
	input service.UploadInput
	body  string
}

func (s *stubMediaService) Upload(_ context.Context, actor service.Actor, input service.UploadInput) (*domain.Upload, error) {
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	s.input = input
	s.body = string(data)
	key := input.Folder + "/stored.png"
	return &domain.Upload{
		ID:          primitive.NewObjectID(),
		Folder:      input.Folder,
		ObjectKey:   key,
		FileName:    input.FileName,
		ContentType: input.ContentType,
		Size:        input.Size,
		URL:         "https://cdn.test/" + key,
		UploaderID:  actor.ID,
	}, nil
}

// testAPI is a router wired with stubs and three signed-in callers.
type testAPI struct {
	router   *gin.Engine
	auth     *stubAuthService
	users    *stubUserService
	activity *stubActivityService
	sessions *stubSessionService
	checkIns *stubCheckInService
	media    *stubMediaService

	memberID primitive.ObjectID
	adminID  primitive.ObjectID
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ta := &testAPI{
		memberID: primitive.NewObjectID(),
		adminID:  primitive.NewObjectID(),
		activity: &stubActivityService{},
		sessions: &stubSessionService{},
		checkIns: &stubCheckInService{},
		media:    &stubMediaService{},
	}
	trainerID := primitive.NewObjectID()
	ta.auth = &stubAuthService{tokens: map[string]*service.Claims{
		"member-token":  {UserID: ta.memberID.Hex(), Role: domain.RoleUser},
		"trainer-token": {UserID: trainerID.Hex(), Role: domain.RoleTrainer},
		"admin-token":   {UserID: ta.adminID.Hex(), Role: domain.RoleAdmin},
		"bad-id-token":  {UserID: "not-an-id", Role: domain.RoleUser},
	}}
	ta.users = &stubUserService{users: map[primitive.ObjectID]*domain.User{
		ta.memberID: {
			ID:           ta.memberID,
			Name:         "Ana",
			Email:        "ana@gym.test",
			PasswordHash: "$2a$10$secret",
			Role:         domain.RoleUser,
			Credits:      5,
			AccessStatus: domain.AccessGreen,
			Observations: "knee injury",
		},
	}}

	ta.router = gin.New()
	SetupRoutes(ta.router, Services{
		Auth:     ta.auth,
		User:     ta.users,
		Activity: ta.activity,
		Session:  ta.sessions,
		CheckIn:  ta.checkIns,
		Media:    ta.media,
	}, 1<<20)
	return ta
}

func (ta *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return ta.serve(req)
}

func (ta *testAPI) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
