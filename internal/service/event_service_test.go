package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Baaaki/event-manager/internal/lock"
	"github.com/Baaaki/event-manager/internal/media"
	"github.com/Baaaki/event-manager/internal/models"
	"github.com/Baaaki/event-manager/internal/repository"
	"github.com/Baaaki/event-manager/internal/service"
	"github.com/Baaaki/event-manager/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type EventServiceTestSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	testRedis *testutil.TestRedis
	uploader  *testutil.FakeUploader
	locker    *lock.RedisLocker
	svc       *service.EventService
	ctx       context.Context
}

func (s *EventServiceTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())
	s.locker = lock.NewRedisLockerFromClient(s.testRedis.Client)
	s.ctx = context.Background()
}

func (s *EventServiceTestSuite) TearDownSuite() {
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

func (s *EventServiceTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis.Server.FlushAll()

	s.uploader = &testutil.FakeUploader{}
	s.svc = service.NewEventService(
		repository.NewEventRepository(s.testDB.DB),
		s.uploader,
		s.locker,
		service.EventServiceConfig{MaxFlyerSize: 1 << 20, LockTTL: time.Minute},
	)
}

func (s *EventServiceTestSuite) input(title string) service.EventInput {
	return service.EventInput{Title: title, Description: "a description", Flyer: testutil.TestFlyer()}
}

func (s *EventServiceTestSuite) eventCount() int64 {
	var count int64
	s.Require().NoError(s.testDB.DB.Model(&models.Event{}).Count(&count).Error)
	return count
}

func (s *EventServiceTestSuite) TestCreateEvent_Success() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)

	event, err := s.svc.CreateEvent(s.ctx, owner, s.input("  Launch Party "))

	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, event.ID)
	s.Equal("Launch Party", event.Title, "Title should be trimmed")
	s.Equal(owner.ID, event.OwnerID)
	s.Equal(s.uploader.Uploads[0], event.FlyerURL)
	s.Equal(int64(1), s.eventCount())
}

func (s *EventServiceTestSuite) TestCreateEvent_DuplicateTitleAndOwner() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)

	_, err := s.svc.CreateEvent(s.ctx, owner, s.input("T"))
	s.Require().NoError(err)

	_, err = s.svc.CreateEvent(s.ctx, owner, s.input("T"))

	s.ErrorIs(err, service.ErrEventExists)
	s.Equal(1, s.uploader.UploadCount(), "The duplicate must be rejected before uploading")
	s.Equal(int64(1), s.eventCount())
}

func (s *EventServiceTestSuite) TestCreateEvent_SameTitleDifferentOwners() {
	vendor := testutil.DefaultVendor(s.T(), s.testDB.DB)
	admin := testutil.DefaultAdmin(s.T(), s.testDB.DB)

	_, err := s.svc.CreateEvent(s.ctx, vendor, s.input("T"))
	s.Require().NoError(err)
	_, err = s.svc.CreateEvent(s.ctx, admin, s.input("T"))
	s.Require().NoError(err)

	s.Equal(int64(2), s.eventCount())
}

func (s *EventServiceTestSuite) TestCreateEvent_StoreIndexCatchesDuplicate() {
	// Without a lock and with a row inserted behind the service's back, the unique
	// index is what rejects the second row.
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	repo := repository.NewEventRepository(s.testDB.DB)

	first := &models.Event{Title: "T", FlyerURL: "u", OwnerID: owner.ID}
	s.Require().NoError(repo.CreateEvent(s.ctx, first))

	err := repo.CreateEvent(s.ctx, &models.Event{Title: "T", FlyerURL: "u2", OwnerID: owner.ID})
	s.ErrorIs(err, repository.ErrDuplicate)
}

func (s *EventServiceTestSuite) TestCreateEvent_ConcurrentWriteHeldLock() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)

	release, err := s.locker.Acquire(s.ctx, "event:"+owner.ID.String()+":T", time.Minute)
	s.Require().NoError(err)
	defer release()

	_, err = s.svc.CreateEvent(s.ctx, owner, s.input("T"))

	s.ErrorIs(err, service.ErrEventExists)
	s.Equal(0, s.uploader.UploadCount())
	s.Equal(int64(0), s.eventCount())
}

func (s *EventServiceTestSuite) TestCreateEvent_LockReleasedAfterCreate() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)

	_, err := s.svc.CreateEvent(s.ctx, owner, s.input("T"))
	s.Require().NoError(err)

	s.Empty(s.testRedis.Server.Keys(), "No lock should outlive the request")
}

func (s *EventServiceTestSuite) TestCreateEvent_UploadFailureWritesNothing() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	s.uploader.Err = testutil.ErrFakeUpload

	_, err := s.svc.CreateEvent(s.ctx, owner, s.input("T"))

	s.ErrorIs(err, media.ErrUploadFailed)
	s.Equal(int64(0), s.eventCount())
}

func (s *EventServiceTestSuite) TestCreateEvent_InvalidInput() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)

	notImage := s.input("T")
	notImage.Flyer.ContentType = "text/plain"

	noFlyer := s.input("T")
	noFlyer.Flyer = media.Flyer{}

	for name, in := range map[string]service.EventInput{
		"empty title": s.input("   "),
		"not image":   notImage,
		"no flyer":    noFlyer,
	} {
		s.Run(name, func() {
			_, err := s.svc.CreateEvent(s.ctx, owner, in)
			s.ErrorIs(err, service.ErrInvalidInput)
		})
	}
	s.Equal(0, s.uploader.UploadCount())
}

func (s *EventServiceTestSuite) TestGetEvent() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	existing := testutil.CreateTestEvent(s.T(), s.testDB.DB, "T", owner)

	event, err := s.svc.GetEvent(s.ctx, existing.ID.String())
	s.Require().NoError(err)
	s.Equal(existing.Title, event.Title)

	_, err = s.svc.GetEvent(s.ctx, uuid.NewString())
	s.ErrorIs(err, service.ErrEventNotFound)

	_, err = s.svc.GetEvent(s.ctx, "not-an-id")
	s.ErrorIs(err, service.ErrInvalidEventID)
}

func (s *EventServiceTestSuite) TestListEvents_Filters() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	testutil.CreateTestEvent(s.T(), s.testDB.DB, "Jazz Night", owner)
	testutil.CreateTestEvent(s.T(), s.testDB.DB, "Rock Festival", owner)
	testutil.CreateTestEvent(s.T(), s.testDB.DB, "100% Fun", owner)

	all, err := s.svc.ListEvents(s.ctx, repository.EventFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	jazz, err := s.svc.ListEvents(s.ctx, repository.EventFilter{Title: "JAZZ"})
	s.Require().NoError(err)
	s.Require().Len(jazz, 1)
	s.Equal("Jazz Night", jazz[0].Title)

	either, err := s.svc.ListEvents(s.ctx, repository.EventFilter{Title: "jazz", Description: "rock"})
	s.Require().NoError(err)
	s.Len(either, 2)

	percent, err := s.svc.ListEvents(s.ctx, repository.EventFilter{Title: "%"})
	s.Require().NoError(err)
	s.Require().Len(percent, 1, "LIKE wildcards in the filter are literal")
	s.Equal("100% Fun", percent[0].Title)
}

func (s *EventServiceTestSuite) TestListEvents_Paging() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	for _, title := range []string{"a", "b", "c", "d", "e"} {
		testutil.CreateTestEvent(s.T(), s.testDB.DB, title, owner)
	}

	page, err := s.svc.ListEvents(s.ctx, repository.EventFilter{Limit: 2, Skip: 4})
	s.Require().NoError(err)
	s.Len(page, 1)

	clamped, err := s.svc.ListEvents(s.ctx, repository.EventFilter{Limit: -1, Skip: -3})
	s.Require().NoError(err)
	s.Len(clamped, 5)
}

func (s *EventServiceTestSuite) TestReplaceEvent_ByOwner() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	existing := testutil.CreateTestEvent(s.T(), s.testDB.DB, "Old", owner)

	replaced, err := s.svc.ReplaceEvent(s.ctx, owner, existing.ID.String(), s.input("New"))
	s.Require().NoError(err)
	s.Equal("New", replaced.Title)
	s.Equal(owner.ID, replaced.OwnerID)

	stored, err := s.svc.GetEvent(s.ctx, existing.ID.String())
	s.Require().NoError(err)
	s.Equal("New", stored.Title)
	s.Equal(s.uploader.Uploads[0], stored.FlyerURL)
	s.Contains(s.uploader.RemovedURLs(), existing.FlyerURL, "The replaced flyer should be removed")
}

func (s *EventServiceTestSuite) TestReplaceEvent_ByAdminKeepsOwner() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	admin := testutil.DefaultAdmin(s.T(), s.testDB.DB)
	existing := testutil.CreateTestEvent(s.T(), s.testDB.DB, "Old", owner)

	replaced, err := s.svc.ReplaceEvent(s.ctx, admin, existing.ID.String(), s.input("New"))

	s.Require().NoError(err)
	s.Equal(owner.ID, replaced.OwnerID)
}

func (s *EventServiceTestSuite) TestReplaceEvent_NotOwner() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	other := testutil.CreateTestUser(s.T(), s.testDB.DB, "other", "other@example.com", testutil.DefaultPassword, models.RoleVendor)
	existing := testutil.CreateTestEvent(s.T(), s.testDB.DB, "Old", owner)

	_, err := s.svc.ReplaceEvent(s.ctx, other, existing.ID.String(), s.input("New"))

	s.ErrorIs(err, service.ErrNotEventOwner)
	s.Equal(0, s.uploader.UploadCount())
}

func (s *EventServiceTestSuite) TestReplaceEvent_TitleCollision() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	testutil.CreateTestEvent(s.T(), s.testDB.DB, "Taken", owner)
	existing := testutil.CreateTestEvent(s.T(), s.testDB.DB, "Mine", owner)

	_, err := s.svc.ReplaceEvent(s.ctx, owner, existing.ID.String(), s.input("Taken"))
	s.ErrorIs(err, service.ErrEventExists)

	// keeping its own title is not a collision
	_, err = s.svc.ReplaceEvent(s.ctx, owner, existing.ID.String(), s.input("Mine"))
	s.NoError(err)
}

func (s *EventServiceTestSuite) TestReplaceEvent_Missing() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)

	_, err := s.svc.ReplaceEvent(s.ctx, owner, uuid.NewString(), s.input("New"))
	s.ErrorIs(err, service.ErrEventNotFound)

	_, err = s.svc.ReplaceEvent(s.ctx, owner, "12", s.input("New"))
	s.ErrorIs(err, service.ErrInvalidEventID)
}

func (s *EventServiceTestSuite) TestReplaceEvent_UploadFailureKeepsRow() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	existing := testutil.CreateTestEvent(s.T(), s.testDB.DB, "Old", owner)
	s.uploader.Err = testutil.ErrFakeUpload

	_, err := s.svc.ReplaceEvent(s.ctx, owner, existing.ID.String(), s.input("New"))
	s.ErrorIs(err, media.ErrUploadFailed)

	stored, err := s.svc.GetEvent(s.ctx, existing.ID.String())
	s.Require().NoError(err)
	s.Equal("Old", stored.Title)
	s.Equal(existing.FlyerURL, stored.FlyerURL)
}

func (s *EventServiceTestSuite) TestDeleteEvent_SecondDeleteIsNotFound() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)
	existing := testutil.CreateTestEvent(s.T(), s.testDB.DB, "T", owner)

	err := s.svc.DeleteEvent(s.ctx, owner, existing.ID.String())
	s.Require().NoError(err)
	s.Contains(s.uploader.RemovedURLs(), existing.FlyerURL)

	err = s.svc.DeleteEvent(s.ctx, owner, existing.ID.String())
	s.ErrorIs(err, service.ErrEventNotFound)
}

func (s *EventServiceTestSuite) TestDeleteEvent_InvalidAndUnknownID() {
	owner := testutil.DefaultVendor(s.T(), s.testDB.DB)

	err := s.svc.DeleteEvent(s.ctx, owner, "not-a-valid-id")
	s.ErrorIs(err, service.ErrInvalidEventID)

	err = s.svc.DeleteEvent(s.ctx, owner, uuid.NewString())
	s.ErrorIs(err, service.ErrEventNotFound)
}

func TestEventServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EventServiceTestSuite))
}
