package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iarleylcs/cartify-flow/internal/cart"
	"github.com/iarleylcs/cartify-flow/internal/domain"
	"github.com/iarleylcs/cartify-flow/internal/repository"
	"github.com/iarleylcs/cartify-flow/internal/webhook"
)

type mockOrderRepo struct {
	mu          sync.Mutex
	headerErr   error
	linesErr    error
	headers     []*domain.Order
	lineWrites  int
}

func (m *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.headerErr != nil {
		return m.headerErr
	}
	m.headers = append(m.headers, order)
	return nil
}

func (m *mockOrderRepo) CreateOrderLines(_ context.Context, _ *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linesErr != nil {
		return m.linesErr
	}
	m.lineWrites++
	return nil
}

func (m *mockOrderRepo) GetOrderByCode(context.Context, string) (*domain.Order, error) {
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepo) RunMigrations(*repository.Credentials) error { return nil }
func (m *mockOrderRepo) Close() error                                { return nil }

type mockDispatcher struct {
	result webhook.Result
	calls  int
}

func (m *mockDispatcher) Dispatch(context.Context, webhook.Payload) webhook.Result {
	m.calls++
	return m.result
}

type mockAnnouncer struct {
	err   error
	calls int
}

func (m *mockAnnouncer) OrderCompleted(context.Context, *domain.Order) error {
	m.calls++
	return m.err
}

type fixture struct {
	workflow   *Workflow
	carts      *cart.Service
	repo       *mockOrderRepo
	dispatcher *mockDispatcher
	announcer  *mockAnnouncer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	carts := cart.NewService(cart.NewMemoryStore(), zap.NewNop())
	repo := &mockOrderRepo{}
	dispatcher := &mockDispatcher{result: webhook.Result{Delivered: 1}}
	announcer := &mockAnnouncer{}
	return &fixture{
		workflow:   NewWorkflow(carts, repo, dispatcher, announcer, time.Second, zap.NewNop()),
		carts:      carts,
		repo:       repo,
		dispatcher: dispatcher,
		announcer:  announcer,
	}
}

func (f *fixture) fillCart(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddToCart(ctx, sessionID, domain.Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("10.00")})
	require.NoError(t, err)
	_, err = f.carts.UpdateQuantity(ctx, sessionID, 1, 2)
	require.NoError(t, err)
	_, err = f.carts.AddToCart(ctx, sessionID, domain.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("5.50")})
	require.NoError(t, err)
}

func TestBegin_EmptyCartIsRefused(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.Begin(context.Background(), "sess")

	assert.ErrorIs(t, err, ErrEmptyCart)

	// Refused transition leaves the session Idle: confirm must fail too.
	_, err = f.workflow.Confirm(context.Background(), "sess")
	assert.ErrorIs(t, err, ErrNotConfirming)
}

func TestBegin_ReturnsConfirmationSummary(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "sess")

	conf, err := f.workflow.Begin(context.Background(), "sess")

	require.NoError(t, err)
	assert.Equal(t, 2, conf.ItemCount)
	assert.True(t, conf.Total.Equal(decimal.RequireFromString("25.50")))
}

func TestCancel_ReturnsToIdleWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)
	require.NoError(t, f.workflow.Cancel("sess"))

	// No order was written and the cart still has its items.
	assert.Empty(t, f.repo.headers)
	snapshot, err := f.carts.Cart(ctx, "sess")
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 2)

	_, err = f.workflow.Confirm(ctx, "sess")
	assert.ErrorIs(t, err, ErrNotConfirming)
}

func TestCancel_WithoutBegin(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.workflow.Cancel("sess"), ErrNotConfirming)
}

func TestConfirm_Success_ClearsCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)

	receipt, err := f.workflow.Confirm(ctx, "sess")

	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderCode)
	assert.True(t, receipt.Total.Equal(decimal.RequireFromString("25.50")))
	assert.False(t, receipt.Degraded)
	assert.Equal(t, 1, f.dispatcher.calls)
	assert.Equal(t, 1, f.announcer.calls)

	snapshot, err := f.carts.Cart(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())
}

func TestConfirm_HeaderInsertFailure_PreservesCart(t *testing.T) {
	f := newFixture(t)
	f.repo.headerErr = errors.New("db down")
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)

	_, err = f.workflow.Confirm(ctx, "sess")

	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.Equal(t, 0, f.dispatcher.calls, "no notifications after a failed persist")

	snapshot, err := f.carts.Cart(ctx, "sess")
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 2, "cart must be preserved for retry")
}

func TestConfirm_LineInsertFailure_PreservesCartAndHeader(t *testing.T) {
	f := newFixture(t)
	f.repo.linesErr = errors.New("constraint violation")
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)

	_, err = f.workflow.Confirm(ctx, "sess")

	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.Len(t, f.repo.headers, 1, "header from step 1 stays behind")
	assert.Equal(t, 0, f.dispatcher.calls)

	snapshot, err := f.carts.Cart(ctx, "sess")
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 2)
}

func TestConfirm_AllWebhooksFail_SucceedsDegraded(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.result = webhook.Result{Delivered: 0, Failed: 2}
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)

	receipt, err := f.workflow.Confirm(ctx, "sess")

	require.NoError(t, err)
	assert.True(t, receipt.Degraded)

	snapshot, err := f.carts.Cart(ctx, "sess")
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty(), "cart clears regardless of webhook outcome")
}

func TestConfirm_OneOfTwoWebhooks_PlainSuccess(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.result = webhook.Result{Delivered: 1, Failed: 1}
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)

	receipt, err := f.workflow.Confirm(ctx, "sess")

	require.NoError(t, err)
	assert.False(t, receipt.Degraded)
}

func TestConfirm_AnnouncerFailureDoesNotFailSubmission(t *testing.T) {
	f := newFixture(t)
	f.announcer.err = errors.New("broker gone")
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)

	_, err = f.workflow.Confirm(ctx, "sess")

	assert.NoError(t, err)
}

func TestConfirm_WithoutBegin(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "sess")

	_, err := f.workflow.Confirm(context.Background(), "sess")

	assert.ErrorIs(t, err, ErrNotConfirming)
}

func TestConfirm_ReenablesSubmissionAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.headerErr = errors.New("db down")
	f.fillCart(t, "sess")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)
	_, err = f.workflow.Confirm(ctx, "sess")
	require.ErrorIs(t, err, ErrPersistenceFailed)

	// Back to Idle: the retry can begin again.
	f.repo.headerErr = nil
	_, err = f.workflow.Begin(ctx, "sess")
	require.NoError(t, err)
	receipt, err := f.workflow.Confirm(ctx, "sess")
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.OrderCode)
}

func TestSessionsHaveIndependentWorkflows(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "sess-a")
	ctx := context.Background()

	_, err := f.workflow.Begin(ctx, "sess-a")
	require.NoError(t, err)

	// sess-b never began; its confirm must not ride on sess-a's state.
	_, err = f.workflow.Confirm(ctx, "sess-b")
	assert.ErrorIs(t, err, ErrNotConfirming)
}
