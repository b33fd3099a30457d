package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
	redisinfra "github.com/pet-informatica-uem/site-pet-backend-sub000/internal/infrastructure/redis"
)

// === Mock implementations ===

// MockEventCatalog implements event.Repository
type MockEventCatalog struct {
	mock.Mock
}

func (m *MockEventCatalog) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventCatalog) GetByID(ctx context.Context, id string) (*event.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventCatalog) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventCatalog) ListOpen(ctx context.Context, now time.Time, limit int) ([]*event.Event, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventCatalog) Update(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventCatalog) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEventCatalog) TryReserveSeat(ctx context.Context, eventID string, seatType event.SeatType) error {
	args := m.Called(ctx, eventID, seatType)
	return args.Error(0)
}

func (m *MockEventCatalog) ReleaseSeat(ctx context.Context, eventID string, seatType event.SeatType) error {
	args := m.Called(ctx, eventID, seatType)
	return args.Error(0)
}

// MockRegistrationLedger implements registration.Repository
type MockRegistrationLedger struct {
	mock.Mock
}

func (m *MockRegistrationLedger) Create(ctx context.Context, reg *registration.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

func (m *MockRegistrationLedger) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	args := m.Called(ctx, eventID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationLedger) Get(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationLedger) MarkPaid(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationLedger) MarkPresent(ctx context.Context, eventID, userID string, requirePaid bool) (*registration.Registration, error) {
	args := m.Called(ctx, eventID, userID, requirePaid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationLedger) ChangeSeatType(ctx context.Context, eventID, userID string, newType event.SeatType) (event.SeatType, error) {
	args := m.Called(ctx, eventID, userID, newType)
	return args.Get(0).(event.SeatType), args.Error(1)
}

func (m *MockRegistrationLedger) Delete(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registration.Registration), args.Error(1)
}

func (m *MockRegistrationLedger) ListByEvent(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registration.Registration), args.Error(1)
}

func (m *MockRegistrationLedger) CountByEvent(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

// MockLockManager implements LockManager
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (DistributedLock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryDelay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(DistributedLock), args.Error(1)
}

// MockLock implements DistributedLock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAvailabilityCache implements AvailabilityCache
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) Get(ctx context.Context, eventID string) (map[event.SeatType]int, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[event.SeatType]int), args.Error(1)
}

func (m *MockAvailabilityCache) Set(ctx context.Context, eventID string, availability map[event.SeatType]int, ttl time.Duration) error {
	args := m.Called(ctx, eventID, availability, ttl)
	return args.Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// === Test fixtures ===

type testDeps struct {
	catalog     *MockEventCatalog
	ledger      *MockRegistrationLedger
	lockManager *MockLockManager
	lock        *MockLock
	cache       *MockAvailabilityCache
	service     *RegistrationService
}

func newTestDeps() *testDeps {
	catalog := new(MockEventCatalog)
	ledger := new(MockRegistrationLedger)
	lockManager := new(MockLockManager)
	lock := new(MockLock)
	cache := new(MockAvailabilityCache)
	service := NewRegistrationService(catalog, ledger, lockManager, cache)
	return &testDeps{
		catalog:     catalog,
		ledger:      ledger,
		lockManager: lockManager,
		lock:        lock,
		cache:       cache,
		service:     service,
	}
}

// openFreeEvent returns an event whose registration window contains now.
func openFreeEvent(id string) *event.Event {
	e := event.NewEvent("Minicurso de Go", "Bloco C56", 0,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), 10, 5)
	e.ID = id
	return e
}

func pricedEvent(id string) *event.Event {
	e := openFreeEvent(id)
	e.Price = 1500
	return e
}

func expectLock(deps *testDeps) {
	deps.lockManager.On("AcquireLockWithRetry", mock.Anything, mock.AnythingOfType("string"),
		registrationLockTTL, lockMaxRetries, lockRetryDelay).Return(deps.lock, nil)
	deps.lock.On("Release", mock.Anything).Return(nil)
}

// === Register ===

func TestRegistrationService_Register_Success(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	input := RegisterInput{EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice}

	deps.catalog.On("GetByID", ctx, "event-1").Return(openFreeEvent("event-1"), nil)
	expectLock(deps)
	deps.ledger.On("Exists", ctx, "event-1", "ra123456").Return(false, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithDevice).Return(nil)
	deps.ledger.On("Create", ctx, mock.AnythingOfType("*registration.Registration")).Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	result, err := deps.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "event-1", result.EventID)
	assert.Equal(t, "ra123456", result.UserID)
	assert.Equal(t, event.SeatTypeWithDevice, result.SeatType)
	assert.False(t, result.Paid)

	deps.catalog.AssertExpectations(t)
	deps.ledger.AssertExpectations(t)
	deps.lockManager.AssertExpectations(t)
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_OutsideWindow(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opensAt time.Time
	}{
		{"window not yet open", time.Now().Add(time.Hour)},
		{"window already closed", time.Now().Add(-48 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			e := openFreeEvent("event-1")
			e.OpensAt = tt.opensAt
			e.ClosesAt = tt.opensAt.Add(2 * time.Hour)
			deps.catalog.On("GetByID", ctx, "event-1").Return(e, nil)

			_, err := deps.service.Register(ctx, RegisterInput{
				EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice,
			})

			assert.ErrorIs(t, err, event.ErrOutsideRegistrationWindow)
			// Gate failures happen before any mutation
			deps.catalog.AssertNotCalled(t, "TryReserveSeat", mock.Anything, mock.Anything, mock.Anything)
			deps.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegistrationService_Register_PaymentProofRequired(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(pricedEvent("event-1"), nil)

	_, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice,
	})

	assert.ErrorIs(t, err, registration.ErrPaymentProofRequired)
	deps.catalog.AssertNotCalled(t, "TryReserveSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_PricedWithProof(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()
	proof := "event-1/abc.pdf"

	deps.catalog.On("GetByID", ctx, "event-1").Return(pricedEvent("event-1"), nil)
	expectLock(deps)
	deps.ledger.On("Exists", ctx, "event-1", "ra123456").Return(false, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithoutDevice).Return(nil)
	deps.ledger.On("Create", ctx, mock.AnythingOfType("*registration.Registration")).Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	result, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithoutDevice, ProofPath: &proof,
	})

	require.NoError(t, err)
	require.NotNil(t, result.ProofPath)
	assert.Equal(t, proof, *result.ProofPath)
}

func TestRegistrationService_Register_AlreadyRegistered(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(openFreeEvent("event-1"), nil)
	expectLock(deps)
	deps.ledger.On("Exists", ctx, "event-1", "ra123456").Return(true, nil)

	_, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice,
	})

	assert.ErrorIs(t, err, registration.ErrAlreadyRegistered)
	deps.catalog.AssertNotCalled(t, "TryReserveSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_NoSeatsAvailable(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(openFreeEvent("event-1"), nil)
	expectLock(deps)
	deps.ledger.On("Exists", ctx, "event-1", "ra123456").Return(false, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithDevice).
		Return(event.ErrNoSeatsAvailable)

	_, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice,
	})

	assert.ErrorIs(t, err, event.ErrNoSeatsAvailable)
	// Nothing was reserved, so nothing to compensate
	deps.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_CompensatesOnLedgerFailure(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()
	storageErr := errors.New("connection reset")

	deps.catalog.On("GetByID", ctx, "event-1").Return(openFreeEvent("event-1"), nil)
	expectLock(deps)
	deps.ledger.On("Exists", ctx, "event-1", "ra123456").Return(false, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithDevice).Return(nil)
	deps.ledger.On("Create", ctx, mock.AnythingOfType("*registration.Registration")).Return(storageErr)
	// The reserve must be undone before the error propagates
	deps.catalog.On("ReleaseSeat", ctx, "event-1", event.SeatTypeWithDevice).Return(nil)

	_, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice,
	})

	assert.ErrorIs(t, err, storageErr)
	deps.catalog.AssertCalled(t, "ReleaseSeat", ctx, "event-1", event.SeatTypeWithDevice)
	deps.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_CompensatesOnDuplicateRaceLost(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(openFreeEvent("event-1"), nil)
	expectLock(deps)
	// Exists said no, but another request won the insert race
	deps.ledger.On("Exists", ctx, "event-1", "ra123456").Return(false, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithDevice).Return(nil)
	deps.ledger.On("Create", ctx, mock.AnythingOfType("*registration.Registration")).
		Return(registration.ErrAlreadyRegistered)
	deps.catalog.On("ReleaseSeat", ctx, "event-1", event.SeatTypeWithDevice).Return(nil)

	_, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice,
	})

	assert.ErrorIs(t, err, registration.ErrAlreadyRegistered)
	deps.catalog.AssertCalled(t, "ReleaseSeat", ctx, "event-1", event.SeatTypeWithDevice)
}

func TestRegistrationService_Register_LockNotAcquired(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(openFreeEvent("event-1"), nil)
	deps.lockManager.On("AcquireLockWithRetry", mock.Anything, mock.AnythingOfType("string"),
		registrationLockTTL, lockMaxRetries, lockRetryDelay).Return(nil, redisinfra.ErrLockNotAcquired)

	_, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatTypeWithDevice,
	})

	assert.ErrorIs(t, err, registration.ErrRegistrationInProgress)
	deps.catalog.AssertNotCalled(t, "TryReserveSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_InvalidSeatType(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	_, err := deps.service.Register(ctx, RegisterInput{
		EventID: "event-1", UserID: "ra123456", SeatType: event.SeatType("vip"),
	})

	assert.ErrorIs(t, err, event.ErrInvalidSeatType)
	deps.catalog.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// === Cancel ===

func TestRegistrationService_Cancel_Success(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	removed := registration.New("event-1", "ra123456", event.SeatTypeWithoutDevice, nil)
	deps.ledger.On("Delete", ctx, "event-1", "ra123456").Return(removed, nil)
	deps.catalog.On("ReleaseSeat", ctx, "event-1", event.SeatTypeWithoutDevice).Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	result, err := deps.service.Cancel(ctx, "event-1", "ra123456")

	require.NoError(t, err)
	assert.Equal(t, event.SeatTypeWithoutDevice, result.SeatType)
	deps.catalog.AssertCalled(t, "ReleaseSeat", ctx, "event-1", event.SeatTypeWithoutDevice)
}

func TestRegistrationService_Cancel_NotFound(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.ledger.On("Delete", ctx, "event-1", "ra123456").
		Return(nil, registration.ErrRegistrationNotFound)

	_, err := deps.service.Cancel(ctx, "event-1", "ra123456")

	assert.ErrorIs(t, err, registration.ErrRegistrationNotFound)
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_Cancel_RefusedAfterPresence(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.ledger.On("Delete", ctx, "event-1", "ra123456").
		Return(nil, registration.ErrRegistrationConcluded)

	_, err := deps.service.Cancel(ctx, "event-1", "ra123456")

	// Presence makes the registration final: nothing leaves the ledger
	// and the seat stays counted.
	assert.ErrorIs(t, err, registration.ErrRegistrationConcluded)
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything, mock.Anything)
	deps.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestRegistrationService_Cancel_ReleaseUnderflowIsNotUserFacing(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	removed := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	deps.ledger.On("Delete", ctx, "event-1", "ra123456").Return(removed, nil)
	deps.catalog.On("ReleaseSeat", ctx, "event-1", event.SeatTypeWithDevice).
		Return(event.ErrNoReservedSeats)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	// The ledger row is gone and the counter was already consistent:
	// the user still gets a successful cancellation.
	result, err := deps.service.Cancel(ctx, "event-1", "ra123456")

	require.NoError(t, err)
	assert.NotNil(t, result)
}

// === ChangeSeatType ===

func TestRegistrationService_ChangeSeatType_Success(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	current := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	deps.ledger.On("Get", ctx, "event-1", "ra123456").Return(current, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithoutDevice).Return(nil)
	deps.ledger.On("ChangeSeatType", ctx, "event-1", "ra123456", event.SeatTypeWithoutDevice).
		Return(event.SeatTypeWithDevice, nil)
	deps.catalog.On("ReleaseSeat", ctx, "event-1", event.SeatTypeWithDevice).Return(nil)
	deps.cache.On("Invalidate", ctx, "event-1").Return(nil)

	result, err := deps.service.ChangeSeatType(ctx, "event-1", "ra123456", event.SeatTypeWithoutDevice)

	require.NoError(t, err)
	assert.Equal(t, event.SeatTypeWithoutDevice, result.SeatType)
	deps.catalog.AssertExpectations(t)
	deps.ledger.AssertExpectations(t)
}

func TestRegistrationService_ChangeSeatType_SameTypeIsNoOp(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	current := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	deps.ledger.On("Get", ctx, "event-1", "ra123456").Return(current, nil)

	result, err := deps.service.ChangeSeatType(ctx, "event-1", "ra123456", event.SeatTypeWithDevice)

	require.NoError(t, err)
	assert.Equal(t, event.SeatTypeWithDevice, result.SeatType)
	deps.catalog.AssertNotCalled(t, "TryReserveSeat", mock.Anything, mock.Anything, mock.Anything)
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_ChangeSeatType_NoSeatsLeavesStateUntouched(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	current := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	deps.ledger.On("Get", ctx, "event-1", "ra123456").Return(current, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithoutDevice).
		Return(event.ErrNoSeatsAvailable)

	_, err := deps.service.ChangeSeatType(ctx, "event-1", "ra123456", event.SeatTypeWithoutDevice)

	assert.ErrorIs(t, err, event.ErrNoSeatsAvailable)
	deps.ledger.AssertNotCalled(t, "ChangeSeatType", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_ChangeSeatType_CompensatesOnLedgerFailure(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()
	storageErr := errors.New("write failed")

	current := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	deps.ledger.On("Get", ctx, "event-1", "ra123456").Return(current, nil)
	deps.catalog.On("TryReserveSeat", ctx, "event-1", event.SeatTypeWithoutDevice).Return(nil)
	deps.ledger.On("ChangeSeatType", ctx, "event-1", "ra123456", event.SeatTypeWithoutDevice).
		Return(event.SeatType(""), storageErr)
	// The freshly reserved seat in the new pool must be given back
	deps.catalog.On("ReleaseSeat", ctx, "event-1", event.SeatTypeWithoutDevice).Return(nil)

	_, err := deps.service.ChangeSeatType(ctx, "event-1", "ra123456", event.SeatTypeWithoutDevice)

	assert.ErrorIs(t, err, storageErr)
	deps.catalog.AssertCalled(t, "ReleaseSeat", ctx, "event-1", event.SeatTypeWithoutDevice)
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", ctx, "event-1", event.SeatTypeWithDevice)
}

func TestRegistrationService_ChangeSeatType_RefusedAfterPresence(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	current := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	current.MarkPaid()
	require.NoError(t, current.MarkPresent(true))
	deps.ledger.On("Get", ctx, "event-1", "ra123456").Return(current, nil)

	_, err := deps.service.ChangeSeatType(ctx, "event-1", "ra123456", event.SeatTypeWithoutDevice)

	assert.ErrorIs(t, err, registration.ErrRegistrationConcluded)
	deps.catalog.AssertNotCalled(t, "TryReserveSeat", mock.Anything, mock.Anything, mock.Anything)
	deps.ledger.AssertNotCalled(t, "ChangeSeatType", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_ChangeSeatType_NotFound(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.ledger.On("Get", ctx, "event-1", "ra123456").
		Return(nil, registration.ErrRegistrationNotFound)

	_, err := deps.service.ChangeSeatType(ctx, "event-1", "ra123456", event.SeatTypeWithoutDevice)

	assert.ErrorIs(t, err, registration.ErrRegistrationNotFound)
}

// === MarkPaid / MarkPresent ===

func TestRegistrationService_MarkPaid(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	paid := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	paid.MarkPaid()
	deps.ledger.On("MarkPaid", ctx, "event-1", "ra123456").Return(paid, nil)

	result, err := deps.service.MarkPaid(ctx, "event-1", "ra123456")

	require.NoError(t, err)
	assert.True(t, result.Paid)
	// A single ledger write, no read-modify-write round trip
	deps.ledger.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegistrationService_MarkPresent_FreeEvent(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(openFreeEvent("event-1"), nil)
	present := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	require.NoError(t, present.MarkPresent(false))
	// Free event: the payment requirement is off
	deps.ledger.On("MarkPresent", ctx, "event-1", "ra123456", false).Return(present, nil)

	result, err := deps.service.MarkPresent(ctx, "event-1", "ra123456")

	require.NoError(t, err)
	assert.True(t, result.Present)
	// Presence never touches seat counters
	deps.catalog.AssertNotCalled(t, "ReleaseSeat", mock.Anything, mock.Anything, mock.Anything)
	deps.ledger.AssertExpectations(t)
}

func TestRegistrationService_MarkPresent_PricedUnpaid(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(pricedEvent("event-1"), nil)
	deps.ledger.On("MarkPresent", ctx, "event-1", "ra123456", true).
		Return(nil, registration.ErrNotPaid)

	_, err := deps.service.MarkPresent(ctx, "event-1", "ra123456")

	assert.ErrorIs(t, err, registration.ErrNotPaid)
}

func TestRegistrationService_MarkPresent_PricedPaid(t *testing.T) {
	deps := newTestDeps()
	ctx := context.Background()

	deps.catalog.On("GetByID", ctx, "event-1").Return(pricedEvent("event-1"), nil)
	present := registration.New("event-1", "ra123456", event.SeatTypeWithDevice, nil)
	present.MarkPaid()
	require.NoError(t, present.MarkPresent(true))
	deps.ledger.On("MarkPresent", ctx, "event-1", "ra123456", true).Return(present, nil)

	result, err := deps.service.MarkPresent(ctx, "event-1", "ra123456")

	require.NoError(t, err)
	assert.True(t, result.Present)
}
