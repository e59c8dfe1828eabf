package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsettle/internal/auth"
	"github.com/mmynk/splitsettle/internal/metrics"
	"github.com/mmynk/splitsettle/internal/middleware"
	"github.com/mmynk/splitsettle/internal/settlement"
	"github.com/mmynk/splitsettle/internal/storage/sqlite"
	"github.com/mmynk/splitsettle/pkg/api"
	"github.com/mmynk/splitsettle/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// testAuthInterceptor returns a Connect interceptor that takes the caller from a test header.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user := req.Header().Get(testUserHeader); user != "" {
				ctx = middleware.WithUserID(ctx, user)
			}
			return next(ctx, req)
		}
	}
}

// setupTestServer creates a test server with a temporary SQLite database.
func setupTestServer(t *testing.T, interceptors ...connect.Interceptor) apiconnect.SettlementServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if len(interceptors) == 0 {
		interceptors = []connect.Interceptor{testAuthInterceptor()}
	}
	engine := settlement.New(store, store, store)
	path, handler := apiconnect.NewSettlementServiceHandler(NewSettlementService(engine), connect.WithInterceptors(interceptors...))

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return apiconnect.NewSettlementServiceClient(http.DefaultClient, server.URL)
}

func as[T any](user string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, user)
	return req
}

func createDinner(t *testing.T, client apiconnect.SettlementServiceClient) *api.Split {
	t.Helper()
	resp, err := client.CreateSplit(context.Background(), as("creator", &api.CreateSplitRequest{
		Title:       "Dinner",
		TotalAmount: "100",
		Participants: []api.ParticipantShare{
			{UserID: "alice"}, {UserID: "bob"}, {UserID: "carol"},
		},
	}))
	if err != nil {
		t.Fatalf("CreateSplit failed: %v", err)
	}
	return resp.Msg.Split
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestCreateSplit_EqualSplit(t *testing.T) {
	client := setupTestServer(t)
	split := createDinner(t, client)

	if split.ID == "" {
		t.Error("expected split ID to be generated")
	}
	if split.Status != "active" || split.SplitMode != "equal" {
		t.Errorf("unexpected status/mode: %s/%s", split.Status, split.SplitMode)
	}
	if split.TotalParticipants != 3 || split.PaidCount != 0 || split.TotalCollected != "0" {
		t.Errorf("unexpected aggregates: %+v", split)
	}

	want := map[string]string{"alice": "34", "bob": "33", "carol": "33"}
	for _, p := range split.Participants {
		if p.Amount != want[p.UserID] {
			t.Errorf("%s amount: expected %s, got %s", p.UserID, want[p.UserID], p.Amount)
		}
		if p.Status != "pending" {
			t.Errorf("%s status: expected pending, got %s", p.UserID, p.Status)
		}
	}
}

func TestCreateSplit_InvalidArgument(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *api.CreateSplitRequest
	}{
		{"bad amount", &api.CreateSplitRequest{Title: "x", TotalAmount: "12.5", Participants: []api.ParticipantShare{{UserID: "a"}, {UserID: "b"}}}},
		{"one participant", &api.CreateSplitRequest{Title: "x", TotalAmount: "10", Participants: []api.ParticipantShare{{UserID: "a"}}}},
		{"custom mismatch", &api.CreateSplitRequest{Title: "x", TotalAmount: "10", SplitMode: "custom", Participants: []api.ParticipantShare{{UserID: "a", Amount: "5"}, {UserID: "b", Amount: "4"}}}},
		{"custom bad share", &api.CreateSplitRequest{Title: "x", TotalAmount: "10", SplitMode: "custom", Participants: []api.ParticipantShare{{UserID: "a", Amount: "-5"}, {UserID: "b", Amount: "15"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CreateSplit(ctx, as("creator", tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestCreateSplit_RequiresCaller(t *testing.T) {
	client := setupTestServer(t)
	_, err := client.CreateSplit(context.Background(), connect.NewRequest(&api.CreateSplitRequest{Title: "x"}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestSettlementFlow(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	split := createDinner(t, client)

	payResp, err := client.Pay(ctx, as("alice", &api.PayRequest{SplitID: split.ID, TxHash: "0xa"}))
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	if payResp.Msg.PaymentID == "" || payResp.Msg.Repeat {
		t.Errorf("unexpected pay response: %+v", payResp.Msg)
	}
	if payResp.Msg.Split.TotalCollected != "34" {
		t.Errorf("expected 34 collected, got %s", payResp.Msg.Split.TotalCollected)
	}

	again, err := client.Pay(ctx, as("alice", &api.PayRequest{SplitID: split.ID, TxHash: "0xa"}))
	if err != nil {
		t.Fatalf("repeated Pay failed: %v", err)
	}
	if !again.Msg.Repeat || again.Msg.PaymentID != payResp.Msg.PaymentID {
		t.Errorf("expected idempotent repeat, got %+v", again.Msg)
	}

	_, err = client.CancelSplit(ctx, as("creator", &api.CancelSplitRequest{SplitID: split.ID}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	remind, err := client.SendReminder(ctx, as("creator", &api.SendReminderRequest{SplitID: split.ID}))
	if err != nil {
		t.Fatalf("SendReminder failed: %v", err)
	}
	if remind.Msg.SentCount != 2 {
		t.Errorf("expected 2 reminders sent, got %d", remind.Msg.SentCount)
	}
	remind, err = client.SendReminder(ctx, as("creator", &api.SendReminderRequest{SplitID: split.ID, ParticipantIDs: []string{"bob"}}))
	if err != nil {
		t.Fatalf("SendReminder failed: %v", err)
	}
	if r := remind.Msg.Results[0]; r.Sent || r.Reason != "cooldown" || r.RetryAt == 0 || r.Message == "" {
		t.Errorf("expected cooldown refusal, got %+v", r)
	}

	if _, err := client.Decline(ctx, as("bob", &api.DeclineRequest{SplitID: split.ID})); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}

	marked, err := client.MarkAsPaid(ctx, as("creator", &api.MarkAsPaidRequest{SplitID: split.ID, ParticipantID: "carol", Note: "cash"}))
	if err != nil {
		t.Fatalf("MarkAsPaid failed: %v", err)
	}
	got := marked.Msg.Split
	if got.Status != "completed" || got.PaidCount != 2 || got.ActiveParticipantCount != 2 || got.TotalCollected != "67" {
		t.Errorf("unexpected final split: %+v", got)
	}

	_, err = client.CloseSplit(ctx, as("creator", &api.CloseSplitRequest{SplitID: split.ID}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}

func TestCloseAndExtend(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	split := createDinner(t, client)

	_, err := client.CloseSplit(ctx, as("creator", &api.CloseSplitRequest{SplitID: split.ID}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	newExpiry := time.Now().Add(48 * time.Hour).Unix()
	ext, err := client.ExtendExpiration(ctx, as("creator", &api.ExtendExpirationRequest{SplitID: split.ID, ExpiresAt: newExpiry}))
	if err != nil {
		t.Fatalf("ExtendExpiration failed: %v", err)
	}
	if ext.Msg.Split.ExpiresAt != newExpiry {
		t.Errorf("expected expiry %d, got %d", newExpiry, ext.Msg.Split.ExpiresAt)
	}

	_, err = client.ExtendExpiration(ctx, as("creator", &api.ExtendExpirationRequest{SplitID: split.ID, ExpiresAt: newExpiry - 60}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	if _, err := client.Pay(ctx, as("bob", &api.PayRequest{SplitID: split.ID, TxHash: "0xb"})); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	closed, err := client.CloseSplit(ctx, as("creator", &api.CloseSplitRequest{SplitID: split.ID}))
	if err != nil {
		t.Fatalf("CloseSplit failed: %v", err)
	}
	if closed.Msg.Split.Status != "closed" || closed.Msg.Split.ClosedAt == 0 {
		t.Errorf("unexpected closed split: %+v", closed.Msg.Split)
	}
}

func TestAccessControl(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()
	split := createDinner(t, client)

	_, err := client.GetSplit(ctx, as("mallory", &api.GetSplitRequest{SplitID: split.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = client.CancelSplit(ctx, as("alice", &api.CancelSplitRequest{SplitID: split.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = client.Pay(ctx, as("creator", &api.PayRequest{SplitID: split.ID, TxHash: "0x1"}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = client.GetSplit(ctx, as("alice", &api.GetSplitRequest{SplitID: "does-not-exist"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = client.Pay(ctx, as("alice", &api.PayRequest{SplitID: split.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)

	got, err := client.GetSplit(ctx, as("alice", &api.GetSplitRequest{SplitID: split.ID}))
	if err != nil {
		t.Fatalf("GetSplit failed: %v", err)
	}
	if len(got.Msg.Split.Participants) != 3 {
		t.Errorf("expected 3 participants, got %d", len(got.Msg.Split.Participants))
	}

	list, err := client.ListSplits(ctx, as("bob", &api.ListSplitsRequest{}))
	if err != nil {
		t.Fatalf("ListSplits failed: %v", err)
	}
	if len(list.Msg.Splits) != 1 || list.Msg.Splits[0].ID != split.ID {
		t.Errorf("unexpected list: %+v", list.Msg.Splits)
	}
}

func TestUpdateProfile_NamesReminderTargets(t *testing.T) {
	client := setupTestServer(t)
	ctx := context.Background()

	profile, err := client.UpdateProfile(ctx, as("alice", &api.UpdateProfileRequest{
		DisplayName:   "Alice",
		WalletAddress: "0xa11ce",
	}))
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if profile.Msg.Profile.UserID != "alice" || profile.Msg.Profile.DisplayName != "Alice" {
		t.Errorf("unexpected profile: %+v", profile.Msg.Profile)
	}

	split := createDinner(t, client)
	remind, err := client.SendReminder(ctx, as("creator", &api.SendReminderRequest{
		SplitID:        split.ID,
		ParticipantIDs: []string{"alice", "bob"},
	}))
	if err != nil {
		t.Fatalf("SendReminder failed: %v", err)
	}
	if len(remind.Msg.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(remind.Msg.Results))
	}
	if got := remind.Msg.Results[0]; got.DisplayName != "Alice" || got.Message != "Reminder sent to Alice" {
		t.Errorf("expected alice resolved to Alice, got %+v", got)
	}
	if got := remind.Msg.Results[1]; got.DisplayName != "bob" {
		t.Errorf("expected bob to fall back to the user id, got %q", got.DisplayName)
	}

	_, err = client.UpdateProfile(ctx, as("alice", &api.UpdateProfileRequest{DisplayName: "   "}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = client.UpdateProfile(ctx, connect.NewRequest(&api.UpdateProfileRequest{DisplayName: "Anon"}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestWithProductionInterceptors(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	m := metrics.New()
	limiter := middleware.NewRateLimiter(middleware.RateLimit{RequestsPerMinute: 60, Burst: 2}, m)
	client := setupTestServer(t, middleware.ServerInterceptors(m, jwtManager, limiter)...)
	ctx := context.Background()

	_, err := client.ListSplits(ctx, connect.NewRequest(&api.ListSplitsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	token, err := jwtManager.Generate("alice")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	list := func() error {
		req := connect.NewRequest(&api.ListSplitsRequest{})
		req.Header().Set("Authorization", "Bearer "+token)
		_, err := client.ListSplits(ctx, req)
		return err
	}

	if err := list(); err != nil {
		t.Fatalf("ListSplits failed: %v", err)
	}
	if err := list(); err != nil {
		t.Fatalf("ListSplits failed: %v", err)
	}
	err = list()
	assertCode(t, err, connect.CodeResourceExhausted)

	var connectErr *connect.Error
	if !errors.As(err, &connectErr) || connectErr.Message() != middleware.ErrRateLimited.Error() {
		t.Errorf("unexpected rate limit error: %v", err)
	}
}
