package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/attendly/server/internal/domain/categories"
	"github.com/attendly/server/internal/domain/users"
)

type fixture struct {
	repo       *MockRepository
	locations  *stubLocations
	users      *stubDirectory
	categories *stubDirectory
	capacity   *stubCapacity
	views      *stubViews
	service    *Service
	now        time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:       NewMockRepository(),
		locations:  newStubLocations(),
		users:      &stubDirectory{missing: make(map[int64]bool), err: users.ErrNotFound},
		categories: &stubDirectory{missing: make(map[int64]bool), err: categories.ErrNotFound},
		capacity:   &stubCapacity{counts: make(map[int64]int64)},
		views:      &stubViews{byURI: make(map[string]int64)},
		now:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewService(f.repo, f.locations, f.users, f.categories, f.capacity, f.views, zerolog.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) seed(t *testing.T, initiatorID int64, state State, eventDate time.Time) *Event {
	t.Helper()
	event := &Event{
		Title:             "Morning run",
		Annotation:        "A relaxed group run along the riverbank at dawn",
		Description:       "We meet at the east gate, warm up together and run 5k at an easy pace.",
		CategoryID:        1,
		InitiatorID:       initiatorID,
		Location:          Location{ID: 1, Lat: 55.7, Lon: 37.6},
		EventDate:         eventDate,
		CreatedOn:         f.now,
		RequestModeration: true,
		State:             state,
	}
	if state == StatePublished {
		publishedOn := f.now.Add(-time.Hour)
		event.PublishedOn = &publishedOn
	}
	created, err := f.repo.Create(context.Background(), event)
	require.NoError(t, err)
	return created
}

func newDraft(eventDate time.Time) NewEvent {
	return NewEvent{
		Title:       "Morning run",
		Annotation:  "A relaxed group run along the riverbank at dawn",
		Description: "We meet at the east gate, warm up together and run 5k at an easy pace.",
		CategoryID:  1,
		EventDate:   eventDate,
		Lat:         55.7,
		Lon:         37.6,
	}
}

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var validation ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, field, validation.Field)
}

func ptr[T any](v T) *T { return &v }

func TestCreate_Defaults(t *testing.T) {
	f := newFixture()

	created, err := f.service.Create(context.Background(), 7, newDraft(f.now.Add(3*time.Hour)))
	require.NoError(t, err)

	require.Equal(t, int64(1), created.ID)
	require.Equal(t, StatePending, created.State)
	require.Equal(t, int64(7), created.InitiatorID)
	require.False(t, created.Paid)
	require.Equal(t, int32(0), created.ParticipantLimit)
	require.True(t, created.RequestModeration)
	require.Nil(t, created.PublishedOn)
	require.Equal(t, f.now, created.CreatedOn)
	require.Equal(t, 55.7, created.Location.Lat)
	require.NotZero(t, created.Location.ID)
}

func TestCreate_OverridesOptionalFields(t *testing.T) {
	f := newFixture()

	draft := newDraft(f.now.Add(3 * time.Hour))
	draft.Paid = ptr(true)
	draft.ParticipantLimit = ptr(int32(25))
	draft.RequestModeration = ptr(false)

	created, err := f.service.Create(context.Background(), 7, draft)
	require.NoError(t, err)
	require.True(t, created.Paid)
	require.Equal(t, int32(25), created.ParticipantLimit)
	require.False(t, created.RequestModeration)
}

func TestCreate_RejectsNearDate(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), 7, newDraft(f.now.Add(90*time.Minute)))
	assertValidationError(t, err, "eventDate")
}

func TestCreate_AcceptsExactLeadTime(t *testing.T) {
	f := newFixture()

	_, err := f.service.Create(context.Background(), 7, newDraft(f.now.Add(MinLeadTimeDraft)))
	require.NoError(t, err)
}

func TestCreate_UnknownInitiator(t *testing.T) {
	f := newFixture()
	f.users.missing[7] = true

	_, err := f.service.Create(context.Background(), 7, newDraft(f.now.Add(3*time.Hour)))
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestCreate_UnknownCategory(t *testing.T) {
	f := newFixture()
	f.categories.missing[1] = true

	_, err := f.service.Create(context.Background(), 7, newDraft(f.now.Add(3*time.Hour)))
	require.ErrorIs(t, err, categories.ErrNotFound)
}

func TestUpdateByInitiator_NotOwnerReportsAbsent(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	_, err := f.service.UpdateByInitiator(context.Background(), 8, event.ID, Patch{Title: ptr("Evening run")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByInitiator_PublishedIsImmutable(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))

	_, err := f.service.UpdateByInitiator(context.Background(), 7, event.ID, Patch{Title: ptr("Evening run")})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateByInitiator_SendToReviewResubmitsCanceled(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StateCanceled, f.now.Add(3*time.Hour))

	saved, err := f.service.UpdateByInitiator(context.Background(), 7, event.ID, Patch{StateAction: ActionSendToReview})
	require.NoError(t, err)
	require.Equal(t, StatePending, saved.State)
}

func TestUpdateByInitiator_CancelReview(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	saved, err := f.service.UpdateByInitiator(context.Background(), 7, event.ID, Patch{StateAction: ActionCancelReview})
	require.NoError(t, err)
	require.Equal(t, StateCanceled, saved.State)
}

func TestUpdateByInitiator_RejectsAdminActions(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	_, err := f.service.UpdateByInitiator(context.Background(), 7, event.ID, Patch{StateAction: ActionPublish})
	assertValidationError(t, err, "stateAction")
}

func TestUpdateByInitiator_DateGuard(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	_, err := f.service.UpdateByInitiator(context.Background(), 7, event.ID, Patch{EventDate: ptr(f.now.Add(time.Hour))})
	assertValidationError(t, err, "eventDate")
}

func TestUpdateByInitiator_AppliesPatch(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	saved, err := f.service.UpdateByInitiator(context.Background(), 7, event.ID, Patch{
		Title:            ptr("Evening run"),
		ParticipantLimit: ptr(int32(10)),
		Location:         &LatLon{Lat: 48.8, Lon: 2.3},
	})
	require.NoError(t, err)
	require.Equal(t, "Evening run", saved.Title)
	require.Equal(t, int32(10), saved.ParticipantLimit)
	require.Equal(t, 48.8, saved.Location.Lat)
	require.Equal(t, StatePending, saved.State)
}

func TestUpdateByAdmin_PublishStampsPublishedOn(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	saved, err := f.service.UpdateByAdmin(context.Background(), event.ID, Patch{StateAction: ActionPublish})
	require.NoError(t, err)
	require.Equal(t, StatePublished, saved.State)
	require.NotNil(t, saved.PublishedOn)
	require.Equal(t, f.now, *saved.PublishedOn)
}

func TestUpdateByAdmin_PublishRequiresPending(t *testing.T) {
	f := newFixture()
	canceled := f.seed(t, 7, StateCanceled, f.now.Add(3*time.Hour))
	published := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))

	_, err := f.service.UpdateByAdmin(context.Background(), canceled.ID, Patch{StateAction: ActionPublish})
	require.ErrorIs(t, err, ErrConflict)

	_, err = f.service.UpdateByAdmin(context.Background(), published.ID, Patch{StateAction: ActionPublish})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateByAdmin_RejectCancelsPending(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	saved, err := f.service.UpdateByAdmin(context.Background(), event.ID, Patch{StateAction: ActionReject})
	require.NoError(t, err)
	require.Equal(t, StateCanceled, saved.State)
	require.Nil(t, saved.PublishedOn)
}

func TestUpdateByAdmin_RejectPublishedConflicts(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))

	_, err := f.service.UpdateByAdmin(context.Background(), event.ID, Patch{StateAction: ActionReject})
	require.ErrorIs(t, err, ErrConflict)
}

func TestUpdateByAdmin_DateGuardRunsWithoutDatePatch(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(30*time.Minute))

	_, err := f.service.UpdateByAdmin(context.Background(), event.ID, Patch{Title: ptr("Evening run")})
	assertValidationError(t, err, "eventDate")
}

func TestUpdateByAdmin_UnknownAction(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	_, err := f.service.UpdateByAdmin(context.Background(), event.ID, Patch{StateAction: "FREEZE_EVENT"})
	assertValidationError(t, err, "stateAction")
}

func TestUpdateByAdmin_Absent(t *testing.T) {
	f := newFixture()

	_, err := f.service.UpdateByAdmin(context.Background(), 99, Patch{StateAction: ActionPublish})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPublicGet_HidesUnpublishedButStillRecordsHit(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	_, err := f.service.PublicGet(context.Background(), event.ID, "/events/1", "203.0.113.9")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, []recordedHit{{URI: "/events/1", IP: "203.0.113.9"}}, f.views.hits)
}

func TestPublicGet_DecoratesPublished(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	f.views.byURI[EventURI(event.ID)] = 42
	f.capacity.counts[event.ID] = 5

	decorated, err := f.service.PublicGet(context.Background(), event.ID, EventURI(event.ID), "203.0.113.9")
	require.NoError(t, err)
	require.Equal(t, int64(42), decorated.Views)
	require.Equal(t, int64(5), decorated.ConfirmedRequests)
	require.True(t, f.views.lastUnique)
}

func TestPublicList_DefaultsRangeToUpcoming(t *testing.T) {
	f := newFixture()
	f.seed(t, 7, StatePublished, f.now.Add(-time.Hour))
	upcoming := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))

	list, err := f.service.PublicList(context.Background(), PublicFilters{}, 0, 10, "/events", "203.0.113.9")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, upcoming.ID, list[0].ID)
	require.Equal(t, []recordedHit{{URI: "/events", IP: "203.0.113.9"}}, f.views.hits)
}

func TestPublicList_OnlyAvailableDropsFullEvents(t *testing.T) {
	f := newFixture()
	full := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	open := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	unlimited := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))

	setLimit := func(event *Event, limit int32) {
		event.ParticipantLimit = limit
		_, err := f.repo.Save(context.Background(), event)
		require.NoError(t, err)
	}
	setLimit(full, 2)
	setLimit(open, 2)
	f.capacity.counts[full.ID] = 2
	f.capacity.counts[open.ID] = 1

	list, err := f.service.PublicList(context.Background(), PublicFilters{OnlyAvailable: true}, 0, 10, "/events", "203.0.113.9")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, open.ID, list[0].ID)
	require.Equal(t, unlimited.ID, list[1].ID)
}

func TestPublicList_SortByViews(t *testing.T) {
	f := newFixture()
	first := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	second := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	f.views.byURI[EventURI(first.ID)] = 3
	f.views.byURI[EventURI(second.ID)] = 9

	list, err := f.service.PublicList(context.Background(), PublicFilters{Sort: SortViews}, 0, 10, "/events", "203.0.113.9")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}

func TestDecorate_QueriesEarliestPublicationWindow(t *testing.T) {
	f := newFixture()
	older := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	earliest := f.now.Add(-48 * time.Hour)
	older.PublishedOn = &earliest
	_, err := f.repo.Save(context.Background(), older)
	require.NoError(t, err)
	newer := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))

	_, err = f.service.DecorateByIDs(context.Background(), []int64{older.ID, newer.ID})
	require.NoError(t, err)
	require.Equal(t, earliest, f.views.lastStart)
	require.Equal(t, f.now, f.views.lastEnd)
	require.ElementsMatch(t, []string{EventURI(older.ID), EventURI(newer.ID)}, f.views.lastURIs)
	require.True(t, f.views.lastUnique)
}

func TestDecorate_StatsFailureDegradesToZeroViews(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	f.views.err = errors.New("collector unreachable")
	f.capacity.counts[event.ID] = 4

	decorated, err := f.service.DecorateByIDs(context.Background(), []int64{event.ID})
	require.NoError(t, err)
	require.Len(t, decorated, 1)
	require.Zero(t, decorated[0].Views)
	require.Equal(t, int64(4), decorated[0].ConfirmedRequests)
}

func TestDecorate_SkipsStatsForUnpublished(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	decorated, err := f.service.DecorateByIDs(context.Background(), []int64{event.ID})
	require.NoError(t, err)
	require.Len(t, decorated, 1)
	require.Zero(t, decorated[0].Views)
	require.Empty(t, f.views.lastURIs)
}

func TestListByInitiator_Decorated(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePublished, f.now.Add(3*time.Hour))
	f.seed(t, 8, StatePublished, f.now.Add(3*time.Hour))
	f.views.byURI[EventURI(event.ID)] = 11

	list, err := f.service.ListByInitiator(context.Background(), 7, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int64(11), list[0].Views)
}

func TestGetByIDAndInitiator_Absent(t *testing.T) {
	f := newFixture()
	event := f.seed(t, 7, StatePending, f.now.Add(3*time.Hour))

	_, err := f.service.GetByIDAndInitiator(context.Background(), 8, event.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEventURI_RoundTrip(t *testing.T) {
	uri := EventURI(123)
	require.Equal(t, "/events/123", uri)

	id, err := EventIDFromURI(uri)
	require.NoError(t, err)
	require.Equal(t, int64(123), id)

	_, err = EventIDFromURI("/events/")
	require.Error(t, err)
}
