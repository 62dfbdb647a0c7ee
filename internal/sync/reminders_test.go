package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendstock-sync/internal/domain"
	"lendstock-sync/internal/remote"
	"lendstock-sync/internal/repository/sqlite"
)

// captureNotifier records deliveries and can be told to fail.
type captureNotifier struct {
	delivered []string
	fail      bool
}

func (n *captureNotifier) Notify(_ context.Context, _, title, _ string) error {
	if n.fail {
		return errors.New("push service unavailable")
	}
	n.delivered = append(n.delivered, title)
	return nil
}

func newReminderFixture(t *testing.T) (*fakeBackend, *sqlite.Store, *captureNotifier, *ReminderEngine) {
	backend := newFakeBackend(t)
	store := openTestStore(t)
	notifier := &captureNotifier{}
	history := NewNotificationEngine(store.NotificationRepository, store.ReminderRepository, backend.client())
	engine := NewReminderEngine(store.ReminderRepository, history, notifier, backend.client())
	return backend, store, notifier, engine
}

func periodicReminder(months int, createdAt time.Time) *domain.ReminderSetting {
	return &domain.ReminderSetting{
		ID:             uuid.NewString(),
		OwnerID:        testOwner,
		Type:           domain.ReminderTypePeriodic,
		Title:          "Check stock",
		PeriodicMonths: months,
		PushToken:      "tok-1",
		Active:         true,
		NeedsSync:      true,
		CreatedAt:      createdAt,
		LastModified:   createdAt,
	}
}

func customReminder(at time.Time) *domain.ReminderSetting {
	millis := at.UnixMilli()
	return &domain.ReminderSetting{
		ID:           uuid.NewString(),
		OwnerID:      testOwner,
		Type:         domain.ReminderTypeCustom,
		Title:        "Return drill",
		ScheduledAt:  &millis,
		PushToken:    "tok-1",
		Active:       true,
		NeedsSync:    true,
		CreatedAt:    at.AddDate(0, -1, 0),
		LastModified: at.AddDate(0, -1, 0),
	}
}

func TestReminderPushAndPullRoundTrip(t *testing.T) {
	backend, store, _, engine := newReminderFixture(t)
	ctx := context.Background()

	r := periodicReminder(3, time.Now().UTC())
	require.NoError(t, store.ReminderRepository.Create(ctx, r))

	res, err := engine.PerformFullSync(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pushed.Succeeded)
	assert.Equal(t, 1, res.Pulled)

	got, err := store.ReminderRepository.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RemoteID)
	assert.False(t, got.NeedsSync)

	serverRem := backend.reminders[*got.RemoteID]
	assert.Equal(t, "periodic", serverRem.Type)
	assert.Equal(t, 3, serverRem.PeriodicMonths)
}

func TestReminderPull_InsertsRemoteRows(t *testing.T) {
	backend, store, _, engine := newReminderFixture(t)
	ctx := context.Background()

	backend.reminders[4] = remote.Reminder{
		ID: 4, Type: "custom", Title: "Return drill",
		ScheduledDatetime: "2026-04-01T09:00:00", IsActive: true,
	}

	res, err := engine.SyncFromRemote(ctx, testOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pulled)

	got, err := store.ReminderRepository.GetByRemoteID(ctx, testOwner, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.ReminderTypeCustom, got.Type)
	require.NotNil(t, got.ScheduledAt)
	assert.Equal(t, time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC).UnixMilli(), *got.ScheduledAt)
}

func TestReminderPull_PendingWinsButAbsentFieldsBackfill(t *testing.T) {
	backend, store, _, engine := newReminderFixture(t)
	ctx := context.Background()

	// renamed locally while offline; the push token was never stored here
	r := periodicReminder(3, time.Now().UTC())
	r.Title = "Check stock weekly"
	r.PushToken = ""
	remoteID := int64(7)
	r.RemoteID = &remoteID
	require.NoError(t, store.ReminderRepository.Create(ctx, r))

	backend.reminders[7] = remote.Reminder{
		ID: 7, Type: "periodic", Title: "Check stock", PeriodicMonths: 3,
		PushToken: "tok-server", IsActive: true,
	}

	_, err := engine.SyncFromRemote(ctx, testOwner)
	require.NoError(t, err)

	got, err := store.ReminderRepository.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Check stock weekly", got.Title, "the pending rename is kept")
	assert.Equal(t, "tok-server", got.PushToken, "only the locally-absent field fills in")
	assert.True(t, got.NeedsSync, "the row stays queued for the next push")
}

func TestEvaluateDue_PeriodicFiresAndRestamps(t *testing.T) {
	_, store, notifier, engine := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r := periodicReminder(3, now.AddDate(0, -4, 0))
	r.NeedsSync = false
	r.IsSynced = true
	require.NoError(t, store.ReminderRepository.Create(ctx, r))

	fired, err := engine.EvaluateDue(ctx, testOwner, now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Equal(t, []string{"Check stock"}, notifier.delivered)

	got, err := store.ReminderRepository.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastFiredAt)
	assert.Equal(t, now.UnixMilli(), *got.LastFiredAt)
	assert.True(t, got.NeedsSync, "the new baseline still has to reach the server")

	history, err := store.NotificationRepository.List(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, r.ID, history[0].ReminderID)
	assert.True(t, history[0].LocallyCreated)
	assert.True(t, history[0].NeedsSync)
	assert.Equal(t, domain.NotificationStatusSent, history[0].Status)

	// not due again until the next anniversary
	fired, err = engine.EvaluateDue(ctx, testOwner, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, fired)
}

func TestEvaluateDue_CustomWithoutRemoteIDVanishes(t *testing.T) {
	_, store, _, engine := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r := customReminder(now.Add(-time.Hour))
	require.NoError(t, store.ReminderRepository.Create(ctx, r))

	fired, err := engine.EvaluateDue(ctx, testOwner, now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	_, err = store.ReminderRepository.GetByID(ctx, r.ID)
	assert.Error(t, err, "a fired custom reminder the server never saw is gone outright")
}

func TestEvaluateDue_CustomWithRemoteIDQueuesRemoteDelete(t *testing.T) {
	backend, store, _, engine := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	backend.reminders[5] = remote.Reminder{ID: 5, Type: "custom", Title: "Return drill", IsActive: true}

	r := customReminder(now.Add(-time.Hour))
	remoteID := int64(5)
	r.RemoteID = &remoteID
	r.NeedsSync = false
	r.IsSynced = true
	require.NoError(t, store.ReminderRepository.Create(ctx, r))

	fired, err := engine.EvaluateDue(ctx, testOwner, now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	got, err := store.ReminderRepository.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted, "queued for remote deletion, not yet purged")
	assert.True(t, got.NeedsSync)

	// the next push carries the delete to the server and purges locally
	_, err = engine.SyncToRemote(ctx, testOwner)
	require.NoError(t, err)
	_, err = store.ReminderRepository.GetByID(ctx, r.ID)
	assert.Error(t, err)
	assert.NotContains(t, backend.reminders, int64(5))
}

func TestEvaluateDue_DeliveryFailureRecordsFailedEntry(t *testing.T) {
	_, store, notifier, engine := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()
	notifier.fail = true

	r := periodicReminder(1, now.AddDate(0, -2, 0))
	require.NoError(t, store.ReminderRepository.Create(ctx, r))

	fired, err := engine.EvaluateDue(ctx, testOwner, now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired, "a failed delivery still counts as a firing")

	history, err := store.NotificationRepository.List(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.NotificationStatusFailed, history[0].Status)
}

func TestEvaluateDue_DedupSkipsSameDaySecondFiring(t *testing.T) {
	_, store, notifier, engine := newReminderFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	r := customReminder(now.Add(-time.Hour))
	remoteID := int64(5)
	r.RemoteID = &remoteID
	require.NoError(t, store.ReminderRepository.Create(ctx, r))

	fired, err := engine.EvaluateDue(ctx, testOwner, now)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	// resurrect the reminder as if another device re-created it today
	require.NoError(t, store.ReminderRepository.Purge(ctx, r.ID))
	again := customReminder(now.Add(-time.Hour))
	again.ID = r.ID
	again.RemoteID = &remoteID
	require.NoError(t, store.ReminderRepository.Create(ctx, again))

	fired, err = engine.EvaluateDue(ctx, testOwner, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, fired, "same reminder, same day: deduplicated")
	assert.Len(t, notifier.delivered, 1)
}
