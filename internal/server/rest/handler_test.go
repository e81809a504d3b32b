package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/messages"
	"github.com/dmitrijs2005/messagely/internal/server/users"
	"github.com/dmitrijs2005/messagely/internal/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newDiscardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserService struct {
	registered    *users.RegisterParams
	registerErr   error
	password      string
	authErr       error
	loginStamped  []string
	loginStampErr error
	user          *users.User
	getErr        error
	all           []users.Summary
}

func (f *fakeUserService) Register(ctx context.Context, p users.RegisterParams) (*users.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = &p
	return &users.User{
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		JoinAt:    time.Now(),
	}, nil
}

func (f *fakeUserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	if f.authErr != nil {
		return false, f.authErr
	}
	return password == f.password, nil
}

func (f *fakeUserService) UpdateLoginTimestamp(ctx context.Context, username string) error {
	if f.loginStampErr != nil {
		return f.loginStampErr
	}
	f.loginStamped = append(f.loginStamped, username)
	return nil
}

func (f *fakeUserService) Get(ctx context.Context, username string) (*users.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func (f *fakeUserService) All(ctx context.Context) ([]users.Summary, error) {
	return f.all, nil
}

type fakeMessageService struct {
	created   *messages.Message
	createErr error
	detail    *messages.Detail
	getErr    error
	receipt   *messages.ReadReceipt
	markErr   error
	marked    []string
	from      []messages.Sent
	to        []messages.Received
}

func (f *fakeMessageService) Create(ctx context.Context, fromUsername, toUsername, body string) (*messages.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &messages.Message{
		ID:           "11111111-2222-3333-4444-555555555555",
		FromUsername: fromUsername,
		ToUsername:   toUsername,
		Body:         body,
		SentAt:       time.Now(),
	}
	return f.created, nil
}

func (f *fakeMessageService) Get(ctx context.Context, id string) (*messages.Detail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.detail, nil
}

func (f *fakeMessageService) MarkRead(ctx context.Context, id string) (*messages.ReadReceipt, error) {
	if f.markErr != nil {
		return nil, f.markErr
	}
	f.marked = append(f.marked, id)
	return f.receipt, nil
}

func (f *fakeMessageService) From(ctx context.Context, username string) ([]messages.Sent, error) {
	return f.from, nil
}

func (f *fakeMessageService) To(ctx context.Context, username string) ([]messages.Received, error) {
	return f.to, nil
}

func newTestServer(us UserService, ms MessageService) *RESTServer {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		EndpointAddr:    ":0",
		SecretKey:       testSecret,
		ShutdownTimeout: time.Second,
	}
	logger := logging.NewSlogLogger(newDiscardSlog())
	return NewRESTServer(cfg, us, ms, logger)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, username string) string {
	t.Helper()
	token, err := auth.IssueToken(username, []byte(testSecret))
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegister(t *testing.T) {
	us := &fakeUserService{}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
		"username":   "alice",
		"password":   "s3cret",
		"first_name": "Alice",
		"last_name":  "Anderson",
		"phone":      "555-0101",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	username, err := auth.UsernameFromToken(resp.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	require.NotNil(t, us.registered)
	assert.Equal(t, "s3cret", us.registered.Password)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	us := &fakeUserService{registerErr: shared.ErrorConflict}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	r := newTestServer(&fakeUserService{}, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	us := &fakeUserService{password: "s3cret"}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	username, err := auth.UsernameFromToken(resp.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	assert.Equal(t, []string{"alice"}, us.loginStamped)
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &fakeUserService{password: "s3cret"}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, us.loginStamped)
}

func TestLogin_TimestampFailureStillSucceeds(t *testing.T) {
	us := &fakeUserService{password: "s3cret", loginStampErr: shared.ErrorInternal}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListUsers(t *testing.T) {
	us := &fakeUserService{all: []users.Summary{
		{Username: "alice", FirstName: "Alice", LastName: "Anderson"},
		{Username: "bob", FirstName: "Bob", LastName: "Brown"},
	}}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodGet, "/users", tokenFor(t, "alice"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	var list []users.Summary
	require.NoError(t, json.Unmarshal(body["users"], &list))
	assert.Len(t, list, 2)
}

func TestGetUser(t *testing.T) {
	us := &fakeUserService{user: &users.User{Username: "alice", FirstName: "Alice"}}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodGet, "/users/alice", tokenFor(t, "alice"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetUser_OtherProfileDenied(t *testing.T) {
	us := &fakeUserService{user: &users.User{Username: "bob"}}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodGet, "/users/bob", tokenFor(t, "alice"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsers_NoToken(t *testing.T) {
	r := newTestServer(&fakeUserService{}, &fakeMessageService{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsers_MalformedAuthHeader(t *testing.T) {
	r := newTestServer(&fakeUserService{}, &fakeMessageService{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUsers_ForgedToken(t *testing.T) {
	r := newTestServer(&fakeUserService{}, &fakeMessageService{}).Router()

	forged, err := auth.IssueToken("alice", []byte("other-secret"))
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/users", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessagesTo_OwnInbox(t *testing.T) {
	ms := &fakeMessageService{to: []messages.Received{
		{ID: "m-1", Body: "hi", FromUser: messages.Participant{Username: "bob"}},
	}}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodGet, "/users/alice/to", tokenFor(t, "alice"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	var list []messages.Received
	require.NoError(t, json.Unmarshal(body["messages"], &list))
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].FromUser.Username)
}

func TestMessagesTo_OtherInboxDenied(t *testing.T) {
	r := newTestServer(&fakeUserService{}, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodGet, "/users/bob/to", tokenFor(t, "alice"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMessagesFrom_OtherOutboxDenied(t *testing.T) {
	r := newTestServer(&fakeUserService{}, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodGet, "/users/bob/from", tokenFor(t, "alice"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func aliceToBob() *messages.Detail {
	return &messages.Detail{
		ID:       "m-1",
		Body:     "hi",
		SentAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		FromUser: messages.Participant{Username: "alice", FirstName: "Alice"},
		ToUser:   messages.Participant{Username: "bob", FirstName: "Bob"},
	}
}

func TestGetMessage_VisibleToParticipants(t *testing.T) {
	for _, username := range []string{"alice", "bob"} {
		ms := &fakeMessageService{detail: aliceToBob()}
		r := newTestServer(&fakeUserService{}, ms).Router()

		w := doJSON(t, r, http.MethodGet, "/messages/m-1", tokenFor(t, username), nil)
		assert.Equal(t, http.StatusOK, w.Code, "as %s", username)
	}
}

func TestGetMessage_ThirdPartyDenied(t *testing.T) {
	ms := &fakeMessageService{detail: aliceToBob()}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodGet, "/messages/m-1", tokenFor(t, "carol"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMessage_NotFound(t *testing.T) {
	ms := &fakeMessageService{getErr: shared.ErrorNotFound}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodGet, "/messages/nope", tokenFor(t, "alice"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMessage_SenderComesFromToken(t *testing.T) {
	ms := &fakeMessageService{}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodPost, "/messages", tokenFor(t, "alice"), gin.H{
		"to_username":   "bob",
		"body":          "hi",
		"from_username": "mallory",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, ms.created)
	assert.Equal(t, "alice", ms.created.FromUsername)
	assert.Equal(t, "bob", ms.created.ToUsername)
}

func TestCreateMessage_UnknownRecipient(t *testing.T) {
	ms := &fakeMessageService{createErr: shared.ErrorNotFound}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodPost, "/messages", tokenFor(t, "alice"), gin.H{
		"to_username": "ghost",
		"body":        "hi",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateMessage_EmptyBody(t *testing.T) {
	r := newTestServer(&fakeUserService{}, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/messages", tokenFor(t, "alice"), gin.H{
		"to_username": "bob",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkMessageRead_Recipient(t *testing.T) {
	readAt := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	ms := &fakeMessageService{
		detail:  aliceToBob(),
		receipt: &messages.ReadReceipt{ID: "m-1", ReadAt: readAt},
	}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodPost, "/messages/m-1/read", tokenFor(t, "bob"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"m-1"}, ms.marked)

	body := decodeBody(t, w)
	var receipt messages.ReadReceipt
	require.NoError(t, json.Unmarshal(body["message"], &receipt))
	assert.Equal(t, "m-1", receipt.ID)
}

func TestMarkMessageRead_SenderDenied(t *testing.T) {
	ms := &fakeMessageService{detail: aliceToBob()}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodPost, "/messages/m-1/read", tokenFor(t, "alice"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, ms.marked)
}

func TestMarkMessageRead_ThirdPartyDenied(t *testing.T) {
	ms := &fakeMessageService{detail: aliceToBob()}
	r := newTestServer(&fakeUserService{}, ms).Router()

	w := doJSON(t, r, http.MethodPost, "/messages/m-1/read", tokenFor(t, "carol"), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, ms.marked)
}

func TestInternalErrorBodyIsOpaque(t *testing.T) {
	us := &fakeUserService{authErr: shared.ErrorInternal}
	r := newTestServer(us, &fakeMessageService{}).Router()

	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal error")
}
