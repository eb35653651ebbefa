package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	auth "github.com/pitchside/academy-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountStateMachineTransitionToSuspendedSetsTimestamp(t *testing.T) {
	repo := &MockUsers{}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	user := &auth.User{
		ID:     uuid.New(),
		Status: auth.AccountStatusActive,
	}

	expected := &auth.User{
		ID:          user.ID,
		Status:      auth.AccountStatusSuspended,
		SuspendedAt: &now,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, auth.AccountStatusSuspended, mock.Anything).
		Return(expected, nil).Once()

	sm := auth.NewAccountStateMachine(repo, auth.WithStateMachineClock(func() time.Time { return now }))

	result, err := sm.Transition(context.Background(), auth.ActorRef{ID: "admin"}, user, auth.AccountStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, auth.AccountStatusSuspended, result.Status)
	require.NotNil(t, result.SuspendedAt)
	assert.Equal(t, now, result.SuspendedAt.UTC())
	repo.AssertExpectations(t)
}

func TestAccountStateMachineRejectsInvalidTransition(t *testing.T) {
	repo := &MockUsers{}
	user := &auth.User{
		ID:     uuid.New(),
		Status: auth.AccountStatusPending,
	}

	sm := auth.NewAccountStateMachine(repo)

	_, err := sm.Transition(context.Background(), auth.ActorRef{}, user, auth.AccountStatusSuspended)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidTransition)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccountStateMachinePendingActivation(t *testing.T) {
	repo := &MockUsers{}
	user := &auth.User{
		ID:     uuid.New(),
		Status: auth.AccountStatusPending,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, auth.AccountStatusActive, mock.Anything).
		Return(&auth.User{ID: user.ID, Status: auth.AccountStatusActive}, nil).Once()

	sm := auth.NewAccountStateMachine(repo)

	result, err := sm.Transition(context.Background(), auth.ActorRef{Type: "system"}, user, auth.AccountStatusActive)
	require.NoError(t, err)
	assert.Equal(t, auth.AccountStatusActive, result.Status)
	repo.AssertExpectations(t)
}

func TestAccountStateMachineArchivedIsTerminal(t *testing.T) {
	repo := &MockUsers{}
	user := &auth.User{
		ID:     uuid.New(),
		Status: auth.AccountStatusArchived,
	}

	sm := auth.NewAccountStateMachine(repo)

	_, err := sm.Transition(context.Background(), auth.ActorRef{}, user, auth.AccountStatusActive)
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTerminalState)
}

func TestAccountStateMachineForceTransitionBypassesValidation(t *testing.T) {
	repo := &MockUsers{}
	user := &auth.User{
		ID:     uuid.New(),
		Status: auth.AccountStatusPending,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, auth.AccountStatusSuspended, mock.Anything).
		Return(&auth.User{ID: user.ID, Status: auth.AccountStatusSuspended}, nil).Once()

	sm := auth.NewAccountStateMachine(repo)

	result, err := sm.Transition(
		context.Background(),
		auth.ActorRef{},
		user,
		auth.AccountStatusSuspended,
		auth.WithForceTransition(),
	)
	require.NoError(t, err)
	assert.Equal(t, auth.AccountStatusSuspended, result.Status)
	repo.AssertExpectations(t)
}

func TestAccountStateMachineLeavingSuspendedClearsTimestamp(t *testing.T) {
	repo := &MockUsers{}
	now := time.Now()
	user := &auth.User{
		ID:          uuid.New(),
		Status:      auth.AccountStatusSuspended,
		SuspendedAt: &now,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, auth.AccountStatusActive, mock.Anything).
		Return(&auth.User{ID: user.ID, Status: auth.AccountStatusActive}, nil).Once()

	sm := auth.NewAccountStateMachine(repo)

	result, err := sm.Transition(context.Background(), auth.ActorRef{}, user, auth.AccountStatusActive)
	require.NoError(t, err)
	assert.Equal(t, auth.AccountStatusActive, result.Status)
	assert.Nil(t, result.SuspendedAt)
	repo.AssertExpectations(t)
}

func TestAccountStateMachineRunsHooksWithMetadata(t *testing.T) {
	repo := &MockUsers{}
	user := &auth.User{
		ID:     uuid.New(),
		Status: auth.AccountStatusActive,
	}

	ts := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)

	repo.On("UpdateStatus", mock.Anything, user.ID, auth.AccountStatusSuspended, mock.Anything).
		Return(&auth.User{ID: user.ID, Status: auth.AccountStatusSuspended, SuspendedAt: &ts}, nil).Once()

	var beforeCalled, afterCalled bool
	var reasonSeen string
	var metadataSeen map[string]any

	before := func(ctx context.Context, tc auth.TransitionContext) error {
		beforeCalled = true
		reasonSeen = tc.Meta.Reason
		metadataSeen = tc.Meta.Metadata
		return nil
	}
	after := func(ctx context.Context, tc auth.TransitionContext) error {
		afterCalled = true
		return nil
	}

	sm := auth.NewAccountStateMachine(repo, auth.WithStateMachineClock(func() time.Time { return ts }))

	metadata := map[string]any{"ticket": "123"}

	_, err := sm.Transition(
		context.Background(),
		auth.ActorRef{ID: "admin"},
		user,
		auth.AccountStatusSuspended,
		auth.WithTransitionReason("policy"),
		auth.WithTransitionMetadata(metadata),
		auth.WithBeforeTransitionHook(before),
		auth.WithAfterTransitionHook(after),
	)
	require.NoError(t, err)
	assert.True(t, beforeCalled)
	assert.True(t, afterCalled)
	assert.Equal(t, "policy", reasonSeen)
	require.NotNil(t, metadataSeen)
	assert.Equal(t, "123", metadataSeen["ticket"])
	repo.AssertExpectations(t)
}

func TestAccountStateMachineEmitsActivityEvent(t *testing.T) {
	repo := &MockUsers{}
	sink := &MockActivitySink{}
	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	user := &auth.User{
		ID:     uuid.New(),
		Status: auth.AccountStatusActive,
	}

	repo.On("UpdateStatus", mock.Anything, user.ID, auth.AccountStatusSuspended, mock.Anything).
		Return(&auth.User{ID: user.ID, Status: auth.AccountStatusSuspended}, nil).Once()

	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt auth.ActivityEvent) bool {
		return evt.EventType == auth.ActivityEventAccountStatusChanged &&
			evt.IdentityID == user.ID.String() &&
			evt.FromStatus == auth.AccountStatusActive &&
			evt.ToStatus == auth.AccountStatusSuspended
	})).Return(nil).Once()

	sm := auth.NewAccountStateMachine(
		repo,
		auth.WithStateMachineClock(func() time.Time { return now }),
		auth.WithStateMachineActivitySink(sink),
	)

	_, err := sm.Transition(context.Background(), auth.ActorRef{ID: "admin"}, user, auth.AccountStatusSuspended)
	require.NoError(t, err)

	repo.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestAccountStateMachineCurrentStatus(t *testing.T) {
	sm := auth.NewAccountStateMachine(&MockUsers{})

	assert.Equal(t, auth.AccountStatus(""), sm.CurrentStatus(nil))
	assert.Equal(t, auth.AccountStatusActive, sm.CurrentStatus(&auth.User{}))
	assert.Equal(t, auth.AccountStatusPending, sm.CurrentStatus(&auth.User{Status: auth.AccountStatusPending}))
}
