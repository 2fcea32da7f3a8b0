package response_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/crowdkit/crowdkit/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type echoHandler struct{}

func (echoHandler) DefaultMetadata() map[string]any { return map[string]any{} }

func (echoHandler) ProcessResponse(cfg map[string]any, participantID string, data map[string]any) (map[string]any, error) {
	if data["answer"] == nil {
		return nil, errors.New("answer is required")
	}
	return data, nil
}

func (echoHandler) Results(cfg map[string]any, responses []registry.Response) map[string]any {
	return map[string]any{"total": len(responses)}
}

// memoryResponses is a minimal thread-safe response store for concurrency
// tests, where call-counting mocks get in the way.
type memoryResponses struct {
	mu     sync.Mutex
	stored []response.Response
}

func (m *memoryResponses) Create(_ context.Context, resp *response.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, *resp)
	return nil
}

func (m *memoryResponses) ListByActivity(_ context.Context, activityID string, _ response.ListOptions) ([]response.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]response.Response(nil), m.stored...), nil
}

func (m *memoryResponses) CountByActivity(_ context.Context, activityID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored), nil
}

func (m *memoryResponses) HasParticipantResponse(_ context.Context, activityID, participantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.stored {
		if r.ParticipantID == participantID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryResponses) LastResponseAt(_ context.Context, activityID string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.stored) == 0 {
		return nil, nil
	}
	last := m.stored[len(m.stored)-1].CreatedAt
	return &last, nil
}

func newCollector(t *testing.T, actRepo *mocks.ActivityRepository, respRepo response.Repository) *response.Service {
	t.Helper()

	reg := registry.New(nil)
	require.NoError(t, reg.Register(registry.Definition{ID: "echo", Handler: echoHandler{}}))

	activities := activity.NewService(actRepo, &mocks.SessionDirectory{}, reg, nil, activity.NewGuard(), nil)
	return response.NewService(respRepo, activities, reg, nil, nil)
}

func activeActivity(metadata activity.Metadata) *activity.Activity {
	return &activity.Activity{
		ID:        "a1",
		SessionID: "s1",
		Type:      "echo",
		Title:     "echo round",
		Metadata:  metadata,
		State:     activity.StateActive,
	}
}

func TestResponseService_Submit(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	respRepo := &mocks.ResponseRepository{}

	actRepo.On("Get", ctx, "a1").Return(activeActivity(activity.Metadata{}), nil)
	respRepo.On("CountByActivity", ctx, "a1").Return(0, nil)
	respRepo.On("HasParticipantResponse", ctx, "a1", "p1").Return(false, nil)
	respRepo.On("Create", ctx, mock.Anything).Return(nil)

	svc := newCollector(t, actRepo, respRepo)
	resp, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "42"})
	require.NoError(t, err)
	require.Equal(t, "s1", resp.SessionID)
	require.Equal(t, "42", resp.Data["answer"])
	require.NotEmpty(t, resp.ID)
}

func TestResponseService_Submit_NotActive(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}

	draft := activeActivity(activity.Metadata{})
	draft.State = activity.StateDraft
	actRepo.On("Get", ctx, "a1").Return(draft, nil)

	svc := newCollector(t, actRepo, &mocks.ResponseRepository{})
	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "42"})
	require.ErrorIs(t, err, response.ErrActivityNotActive)
}

func TestResponseService_Submit_Duplicate(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	respRepo := &mocks.ResponseRepository{}

	actRepo.On("Get", ctx, "a1").Return(activeActivity(activity.Metadata{}), nil)
	respRepo.On("CountByActivity", ctx, "a1").Return(1, nil)
	respRepo.On("HasParticipantResponse", ctx, "a1", "p1").Return(true, nil)

	svc := newCollector(t, actRepo, respRepo)
	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "42"})
	require.ErrorIs(t, err, response.ErrDuplicateResponse)
}

func TestResponseService_Submit_AllowMultiple(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	respRepo := &mocks.ResponseRepository{}

	actRepo.On("Get", ctx, "a1").Return(
		activeActivity(activity.Metadata{"allow_multiple_responses": true}), nil)
	respRepo.On("CountByActivity", ctx, "a1").Return(3, nil)
	respRepo.On("Create", ctx, mock.Anything).Return(nil)

	svc := newCollector(t, actRepo, respRepo)
	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "again"})
	require.NoError(t, err)
	respRepo.AssertNotCalled(t, "HasParticipantResponse", ctx, "a1", "p1")
}

func TestResponseService_Submit_LimitReached(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	respRepo := &mocks.ResponseRepository{}

	actRepo.On("Get", ctx, "a1").Return(
		activeActivity(activity.Metadata{"max_responses": 5}), nil)
	respRepo.On("CountByActivity", ctx, "a1").Return(5, nil)

	svc := newCollector(t, actRepo, respRepo)
	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "late"})
	require.ErrorIs(t, err, response.ErrResponseLimit)
}

func TestResponseService_Submit_InvalidPayload(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	respRepo := &mocks.ResponseRepository{}

	actRepo.On("Get", ctx, "a1").Return(activeActivity(activity.Metadata{}), nil)
	respRepo.On("CountByActivity", ctx, "a1").Return(0, nil)
	respRepo.On("HasParticipantResponse", ctx, "a1", "p1").Return(false, nil)

	svc := newCollector(t, actRepo, respRepo)
	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{})
	require.ErrorIs(t, err, response.ErrInvalidResponse)
	respRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestResponseService_Submit_TypeUnavailable(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}

	orphan := activeActivity(activity.Metadata{})
	orphan.Type = "retired"
	actRepo.On("Get", ctx, "a1").Return(orphan, nil)

	svc := newCollector(t, actRepo, &mocks.ResponseRepository{})
	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "42"})
	require.ErrorIs(t, err, registry.ErrTypeUnavailable)
}

func TestResponseService_Submit_CapCompletesActivity(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	respRepo := &mocks.ResponseRepository{}

	act := activeActivity(activity.Metadata{"max_responses": 1, "allow_multiple_responses": true})
	actRepo.On("Get", ctx, "a1").Return(act, nil)
	actRepo.On("Update", ctx, mock.MatchedBy(func(a *activity.Activity) bool {
		return a.State == activity.StateCompleted
	})).Return(nil)
	respRepo.On("CountByActivity", ctx, "a1").Return(0, nil)
	respRepo.On("Create", ctx, mock.Anything).Return(nil)

	svc := newCollector(t, actRepo, respRepo)
	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "last slot"})
	require.NoError(t, err)
	actRepo.AssertCalled(t, "Update", ctx, mock.Anything)
}

// With max_responses 1 the accepted write fills the cap and completes the
// activity. Follow-ups still get a slot-specific refusal: the original
// submitter sees the duplicate, a newcomer sees the exhausted limit.
func TestResponseService_Submit_CapReachedErrors(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	store := &memoryResponses{}

	act := activeActivity(activity.Metadata{"max_responses": 1})
	actRepo.On("Get", ctx, "a1").Return(act, nil)
	actRepo.On("Update", ctx, mock.Anything).Return(nil)

	svc := newCollector(t, actRepo, store)

	_, err := svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "first"})
	require.NoError(t, err)
	require.Equal(t, activity.StateCompleted, act.State)

	_, err = svc.Submit(ctx, "a1", "p1", map[string]any{"answer": "again"})
	require.ErrorIs(t, err, response.ErrDuplicateResponse)

	_, err = svc.Submit(ctx, "a1", "p2", map[string]any{"answer": "late"})
	require.ErrorIs(t, err, response.ErrResponseLimit)
}

// The cap is enforced under the per-activity guard: concurrent submissions
// beyond max_responses must not slip through.
func TestResponseService_Submit_ConcurrentCap(t *testing.T) {
	ctx := context.Background()
	actRepo := &mocks.ActivityRepository{}
	store := &memoryResponses{}

	act := activeActivity(activity.Metadata{"max_responses": 3, "allow_multiple_responses": true})
	actRepo.On("Get", ctx, "a1").Return(act, nil)
	actRepo.On("Update", ctx, mock.Anything).Return(nil)

	svc := newCollector(t, actRepo, store)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(ctx, "a1", "p-concurrent", map[string]any{"answer": i})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			require.ErrorIs(t, err, response.ErrResponseLimit)
		}
	}
	require.Equal(t, 3, accepted)

	count, err := store.CountByActivity(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
