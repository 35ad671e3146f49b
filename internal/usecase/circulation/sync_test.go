//go:build unit

package circulation_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/tests/common/builder"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func (s *EngineTestSuite) sync(force bool) error {
	_, err := s.engine.SyncBookshelf(s.ctx(), s.patron.ID(), pin, force)
	return err
}

func (s *EngineTestSuite) TestPatronActivity_MergesProviders() {
	_, other := s.addVendor("Bibliotheca")
	first := s.vendorPool()
	second := s.vendorPool()

	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.loanInfo(first, 7), nil, (*domcirc.HoldInfo)(nil)}, nil)
	other.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.holdInfo(second, 2)}, nil)

	activity, err := s.engine.PatronActivity(s.ctx(), s.patron, pin)

	s.Require().NoError(err)
	s.True(activity.Complete)
	s.Len(activity.Loans, 1)
	s.Len(activity.Holds, 1)
}

func (s *EngineTestSuite) TestPatronActivity_FailingProviderMarksIncomplete() {
	_, broken := s.addVendor("Bibliotheca")
	pool := s.vendorPool()

	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.loanInfo(pool, 7)}, nil)
	broken.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return(nil, domcirc.ErrRemoteInitiatedServerError)

	activity, err := s.engine.PatronActivity(s.ctx(), s.patron, pin)

	s.Require().NoError(err)
	s.False(activity.Complete)
	s.Len(activity.Loans, 1)
}

func (s *EngineTestSuite) TestPatronActivity_PanickingProvider() {
	_, broken := s.addVendor("Bibliotheca")

	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)
	broken.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		DoAndReturn(func(context.Context, *domcirc.Patron, string) ([]domcirc.ActivityItem, error) {
			panic("vendor client bug")
		})

	activity, err := s.engine.PatronActivity(s.ctx(), s.patron, pin)

	s.Require().NoError(err)
	s.False(activity.Complete)
}

func (s *EngineTestSuite) TestPatronActivity_BoundedFanout() {
	s.fanoutLimit = 2
	var running, peak int32
	slow := func(context.Context, *domcirc.Patron, string) ([]domcirc.ActivityItem, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil, nil
	}

	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).DoAndReturn(slow)
	for _, name := range []string{"Bibliotheca", "Axis 360", "Enki"} {
		_, p := s.addVendor(name)
		p.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).DoAndReturn(slow)
	}

	activity, err := s.engine.PatronActivity(s.ctx(), s.patron, pin)

	s.Require().NoError(err)
	s.True(activity.Complete)
	s.LessOrEqual(atomic.LoadInt32(&peak), int32(2))
}

func (s *EngineTestSuite) TestPatronActivity_OnlyLibraryCollections() {
	_, foreign := s.addVendor("Elsewhere")
	s.extraEntries[0].Collection.LibraryIDs = []uuid.UUID{uuid.New()}
	s.build()
	foreign.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)

	activity, err := s.engine.PatronActivity(s.ctx(), s.patron, pin)

	s.Require().NoError(err)
	s.True(activity.Complete)
}

func (s *EngineTestSuite) TestSyncBookshelf_FreshMarkerServesLocalRows() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.markSynced(s.now.Add(-time.Minute))

	shelf, err := s.engine.SyncBookshelf(s.ctx(), s.patron.ID(), pin, false)

	s.Require().NoError(err)
	s.False(shelf.Synced)
	s.Len(shelf.Loans, 1)
	s.Contains(shelf.Pools, pool.ID())
}

func (s *EngineTestSuite) TestSyncBookshelf_StaleMarkerAsksVendors() {
	s.markSynced(s.now.Add(-time.Hour))
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)

	shelf, err := s.engine.SyncBookshelf(s.ctx(), s.patron.ID(), pin, false)

	s.Require().NoError(err)
	s.True(shelf.Synced)
	s.Equal(s.now, *s.store.Patron(s.patron.ID()).LastLoanActivitySync())
}

func (s *EngineTestSuite) TestSyncBookshelf_DiscoversPools() {
	start := s.now.Add(-48 * time.Hour)
	info := &domcirc.LoanInfo{
		CollectionID:   s.vendorCollection.ID,
		DataSourceName: "Overdrive",
		Identifier:     domcirc.NewIdentifier(domcirc.IdentifierOverdrive, "f3b2c1d0-0000-4000-8000-000000000001"),
		Start:          &start,
	}
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return([]domcirc.ActivityItem{info}, nil)

	shelf, err := s.engine.SyncBookshelf(s.ctx(), s.patron.ID(), pin, true)

	s.Require().NoError(err)
	s.Require().Len(s.store.Pools(), 1)
	pool := s.store.Pools()[0]
	s.Equal(info.Identifier, pool.Identifier())
	s.Equal(s.vendorCollection.ID, pool.CollectionID())
	s.Require().Len(shelf.Loans, 1)
	s.Equal(pool.ID(), shelf.Loans[0].PoolID())
}

func (s *EngineTestSuite) TestSyncBookshelf_Idempotent() {
	pool := s.vendorPool()
	held := s.vendorPool()
	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.loanInfo(pool, 7), s.holdInfo(held, 3)}, nil).
		Times(2)

	s.Require().NoError(s.sync(true))
	loan := s.store.LoanFor(s.patron.ID(), pool.ID())
	hold := s.store.HoldFor(s.patron.ID(), held.ID())
	s.Require().NoError(s.sync(true))

	s.Len(s.store.Loans(), 1)
	s.Len(s.store.Holds(), 1)
	s.Len(s.store.Pools(), 2)
	s.Equal(loan.ID(), s.store.LoanFor(s.patron.ID(), pool.ID()).ID())
	s.Equal(hold.ID(), s.store.HoldFor(s.patron.ID(), held.ID()).ID())
}

func (s *EngineTestSuite) TestSyncBookshelf_IncompleteActivityNeverDeletes() {
	_, broken := s.addVendor("Bibliotheca")
	pool := s.vendorPool()
	held := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), held.ID(), s.now).Build())

	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)
	broken.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, errors.New("connection reset"))

	shelf, err := s.engine.SyncBookshelf(s.ctx(), s.patron.ID(), pin, true)

	s.Require().NoError(err)
	s.Len(shelf.Loans, 1)
	s.Len(shelf.Holds, 1)
	s.Nil(s.store.Patron(s.patron.ID()).LastLoanActivitySync())
}

func (s *EngineTestSuite) TestSyncBookshelf_ReapsVendorRowsOnly() {
	gone := s.vendorPool()
	goneHold := s.vendorPool()
	oa := s.openAccessPool("https://cdn.example.org/a.epub")
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), gone.ID(), s.now).Build())
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), goneHold.ID(), s.now).Build())
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), oa.ID(), s.now).Indefinite().Build())

	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)

	s.Require().NoError(s.sync(true))

	s.Nil(s.store.LoanFor(s.patron.ID(), gone.ID()))
	s.Nil(s.store.HoldFor(s.patron.ID(), goneHold.ID()))
	s.NotNil(s.store.LoanFor(s.patron.ID(), oa.ID()))
}

func (s *EngineTestSuite) TestSyncBookshelf_KeepsRecentLoans() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).StartedAt(s.now.Add(-10 * time.Second)).Build())
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)

	s.Require().NoError(s.sync(true))

	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestSyncBookshelf_ReapsLoansPastGrace() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).StartedAt(s.now.Add(-90 * time.Second)).Build())
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)

	s.Require().NoError(s.sync(true))

	s.Nil(s.store.LoanFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestSyncBookshelf_LoanSupersedesHold() {
	pool := s.vendorPool()
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).AtPosition(0).Build())
	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.holdInfo(pool, 0), s.loanInfo(pool, 14)}, nil)

	s.Require().NoError(s.sync(true))

	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Nil(s.store.HoldFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestSyncBookshelf_HoldReplacesExpiredLoan() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.holdInfo(pool, 6)}, nil)

	s.Require().NoError(s.sync(true))

	s.Nil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	hold := s.store.HoldFor(s.patron.ID(), pool.ID())
	s.Require().NotNil(hold)
	s.Equal(6, *hold.Position())
}

func (s *EngineTestSuite) TestSyncBookshelf_RecentLoanWinsOverHold() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).StartedAt(s.now.Add(-5 * time.Second)).Build())
	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.holdInfo(pool, 1)}, nil)

	s.Require().NoError(s.sync(true))

	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Nil(s.store.HoldFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestSyncBookshelf_LocksReportedMechanism() {
	pool := s.vendorPool()
	info := s.loanInfo(pool, 14)
	info.LockedTo = &domcirc.DeliveryMechanismInfo{ContentType: "application/epub+zip", DRMScheme: domcirc.DRMAdobe}
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return([]domcirc.ActivityItem{info}, nil)

	s.Require().NoError(s.sync(true))

	loan := s.store.LoanFor(s.patron.ID(), pool.ID())
	s.Require().NotNil(loan.Fulfillment())
	s.Equal(epubAdobe, loan.Fulfillment().Mechanism())
	s.NotNil(s.store.Pool(pool.ID()).DeliveryMechanism(epubAdobe))
}

func (s *EngineTestSuite) TestSyncBookshelf_FailedCommitLeavesRowsUntouched() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.store.FailCommit = errors.New("serialization failure")
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)

	err := s.sync(true)

	s.Error(err)
	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Nil(s.store.Patron(s.patron.ID()).LastLoanActivitySync())
	s.Equal(1, s.store.Rollbacks)
}

func (s *EngineTestSuite) TestSyncBookshelf_UnknownPatron() {
	_, err := s.engine.SyncBookshelf(s.ctx(), uuid.New(), pin, true)

	s.Error(err)
}
