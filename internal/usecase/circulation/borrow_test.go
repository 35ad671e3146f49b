//go:build unit

package circulation_test

import (
	"context"
	"time"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/pkg/errs"
	"circulation-engine/internal/usecase/circulation"
	"circulation-engine/tests/common/builder"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func (s *EngineTestSuite) borrow(poolID uuid.UUID) (*circulation.BorrowResult, error) {
	return s.engine.Borrow(s.ctx(), circulation.BorrowRequest{
		PatronID: s.patron.ID(),
		PIN:      pin,
		PoolID:   poolID,
	})
}

func (s *EngineTestSuite) TestBorrow_LocalPool() {
	pool := s.openAccessPool("https://cdn.example.org/alice.epub")

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.Require().NotNil(result.Loan)
	s.True(result.IsNew)
	s.Nil(result.Loan.End())
	s.Equal([]string{domcirc.EventCheckOut}, s.analytics.names())

	again, err := s.borrow(pool.ID())
	s.Require().NoError(err)
	s.False(again.IsNew)
	s.Equal(result.Loan.ID(), again.Loan.ID())
	s.Len(s.analytics.names(), 1)
}

func (s *EngineTestSuite) TestBorrow_LocalLoanReplacesHold() {
	pool := s.openAccessPool("https://cdn.example.org/emma.epub")
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).Build())

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.Require().NotNil(result.Loan)
	s.True(result.IsNew)
	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Nil(s.store.HoldFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestBorrow_ExistingLocalLoanDropsStaleHold() {
	pool := s.openAccessPool("https://cdn.example.org/ivanhoe.epub")
	loan := builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Indefinite().Build()
	s.store.AddLoan(loan)
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).Build())

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.False(result.IsNew)
	s.Equal(loan.ID(), result.Loan.ID())
	s.Nil(s.store.HoldFor(s.patron.ID(), pool.ID()))
	s.Empty(s.analytics.names())
}

func (s *EngineTestSuite) TestBorrow_VendorLoanReplacesHold() {
	pool := s.vendorPool()
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.markSynced(s.now)

	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), nil).
		Return(domcirc.LoanOutcome(s.loanInfo(pool, 14)), nil)

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.Require().NotNil(result.Loan)
	s.Nil(result.Hold)
	s.True(result.IsNew)
	s.Equal(s.now.Add(14*24*time.Hour), *result.Loan.End())
	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Nil(s.store.HoldFor(s.patron.ID(), pool.ID()))
	s.Nil(s.store.Patron(s.patron.ID()).LastLoanActivitySync())
	s.Equal([]string{domcirc.EventCheckOut}, s.analytics.names())
}

func (s *EngineTestSuite) TestBorrow_AlreadyCheckedOutRecordsPlaceholder() {
	pool := s.vendorPool()
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.CheckoutOutcome{}, domcirc.ErrAlreadyCheckedOut)

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.Require().NotNil(result.Loan)
	s.Equal(s.now, *result.Loan.Start())
	s.Equal(s.now.Add(time.Hour), *result.Loan.End())
}

func (s *EngineTestSuite) TestBorrow_NoCopiesPlacesHold() {
	pool := s.vendorPool()
	gomock.InOrder(
		s.provider.EXPECT().
			Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
			Return(domcirc.CheckoutOutcome{}, domcirc.ErrNoAvailableCopies),
		s.provider.EXPECT().
			UpdateAvailability(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, p *domcirc.LicensePool) error {
				p.UpdateAvailability(domcirc.Availability{LicensesOwned: 1, PatronsInHoldQueue: 4}, s.now)
				return nil
			}),
		s.provider.EXPECT().
			PlaceHold(gomock.Any(), gomock.Any(), pin, gomock.Any(), "").
			Return(s.holdInfo(pool, 5), nil),
	)

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.Require().NotNil(result.Hold)
	s.Nil(result.Loan)
	s.Equal(5, *result.Hold.Position())
	s.Equal(4, s.store.Pool(pool.ID()).Availability().PatronsInHoldQueue)
	s.Equal([]string{domcirc.EventHoldPlace}, s.analytics.names())
}

func (s *EngineTestSuite) TestBorrow_CheckoutAnsweredWithHold() {
	pool := s.vendorPool()
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.HoldOutcome(s.holdInfo(pool, 2)), nil)

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.Require().NotNil(result.Hold)
	s.Equal(2, *result.Hold.Position())
}

func (s *EngineTestSuite) TestBorrow_AlreadyOnHoldRecordsPlaceholder() {
	pool := s.vendorPool()
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.CheckoutOutcome{}, domcirc.ErrAlreadyOnHold)

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.Require().NotNil(result.Hold)
	s.Nil(result.Hold.Position())
	s.NotNil(s.store.HoldFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestBorrow_NoLicensesRefreshesAndFails() {
	pool := s.vendorPool()
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.CheckoutOutcome{}, domcirc.ErrNoLicenses)
	s.provider.EXPECT().UpdateAvailability(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.borrow(pool.ID())

	s.ErrorIs(err, domcirc.ErrNoLicenses)
	s.Empty(s.store.Loans())
	s.Empty(s.analytics.names())
}

func (s *EngineTestSuite) TestBorrow_RenewalRejectedWhenOthersWait() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())

	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.loanInfo(pool, 13)}, nil)
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.CheckoutOutcome{}, domcirc.ErrNoAvailableCopies)

	_, err := s.borrow(pool.ID())

	s.ErrorIs(err, domcirc.ErrCannotRenew)
	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestBorrow_RenewalOfVanishedLoanBorrowsAgain() {
	lib := builder.NewLibraryBuilder().WithLimits(1, 1).Build()
	s.withLibrary(lib)
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())

	// The sync drops the stale loan, so limits apply to a fresh checkout.
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.LoanOutcome(s.loanInfo(pool, 21)), nil)

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.True(result.IsNew)
	s.Len(s.store.Loans(), 1)
}

func (s *EngineTestSuite) TestBorrow_MechanismRequiredAtBorrow() {
	s.capabilities.DeliveryMechanismAtBorrow = true
	pool := s.vendorPool()

	_, err := s.borrow(pool.ID())

	s.ErrorIs(err, domcirc.ErrDeliveryMechanismMissing)
}

func (s *EngineTestSuite) TestBorrow_PassesChosenMechanism() {
	s.capabilities.DeliveryMechanismAtBorrow = true
	pool := builder.NewPoolBuilder(s.vendorCollection.ID).
		WithMechanism("application/epub+zip", domcirc.DRMAdobe, "").
		Build()
	s.store.AddPool(pool)

	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Not(gomock.Nil())).
		Return(domcirc.LoanOutcome(s.loanInfo(pool, 7)), nil)

	_, err := s.engine.Borrow(s.ctx(), circulation.BorrowRequest{
		PatronID:  s.patron.ID(),
		PIN:       pin,
		PoolID:    pool.ID(),
		Mechanism: &domcirc.DeliveryMechanism{ContentType: "application/epub+zip", DRMScheme: domcirc.DRMAdobe},
	})

	s.Require().NoError(err)
}

func (s *EngineTestSuite) TestBorrow_PatronPrivileges() {
	expired := s.now.Add(-time.Hour)
	s.store.AddPatron(builder.NewPatronBuilder(s.library.ID()).With(func(b *builder.PatronBuilder) {
		b.ID = s.patron.ID()
		b.AuthorizationExpires = &expired
	}).Build())
	pool := s.vendorPool()

	_, err := s.borrow(pool.ID())

	s.ErrorIs(err, domcirc.ErrAuthorizationExpired)
}

func (s *EngineTestSuite) TestBorrow_UnknownPool() {
	_, err := s.borrow(uuid.New())

	s.True(errs.Is(err, errs.ErrPoolNotFound))
}

func (s *EngineTestSuite) TestBorrow_BothLimitsReachedSkipsVendor() {
	s.withLibrary(builder.NewLibraryBuilder().WithLimits(1, 1).Build())
	other := s.vendorPool()
	held := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), other.ID(), s.now).Build())
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), held.ID(), s.now).Build())
	pool := s.vendorPool()

	_, err := s.borrow(pool.ID())

	s.ErrorIs(err, domcirc.ErrPatronLoanLimitReached)
}

func (s *EngineTestSuite) TestBorrow_LoanLimitWithCopiesAvailable() {
	s.withLibrary(builder.NewLibraryBuilder().WithLimits(1, 5).Build())
	other := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), other.ID(), s.now).Build())
	pool := s.vendorPool()
	s.provider.EXPECT().UpdateAvailability(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.borrow(pool.ID())

	s.ErrorIs(err, domcirc.ErrPatronLoanLimitReached)
}

func (s *EngineTestSuite) TestBorrow_LoanLimitStillAllowsHold() {
	s.withLibrary(builder.NewLibraryBuilder().WithLimits(1, 5).Build())
	other := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), other.ID(), s.now).Build())
	pool := s.vendorPool()

	s.provider.EXPECT().
		UpdateAvailability(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domcirc.LicensePool) error {
			p.UpdateAvailability(domcirc.Availability{LicensesOwned: 1}, s.now)
			return nil
		}).
		Times(2)
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.CheckoutOutcome{}, domcirc.ErrNoAvailableCopies)
	s.provider.EXPECT().
		PlaceHold(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(s.holdInfo(pool, 1), nil)

	result, err := s.borrow(pool.ID())

	s.Require().NoError(err)
	s.NotNil(result.Hold)
}

func (s *EngineTestSuite) TestBorrow_HoldLimitCheckedBeforePlacingHold() {
	s.withLibrary(builder.NewLibraryBuilder().WithLimits(5, 1).Build())
	held := s.vendorPool()
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), held.ID(), s.now).Build())
	pool := s.vendorPool()

	s.provider.EXPECT().UpdateAvailability(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	s.provider.EXPECT().
		Checkout(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any()).
		Return(domcirc.CheckoutOutcome{}, domcirc.ErrNoAvailableCopies)

	_, err := s.borrow(pool.ID())

	s.ErrorIs(err, domcirc.ErrPatronHoldLimitReached)
	s.Nil(s.store.HoldFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestEnforceLimits() {
	s.Run("local pools are exempt", func() {
		s.withLibrary(builder.NewLibraryBuilder().WithLimits(0, 0).Build())
		pool := s.openAccessPool("https://cdn.example.org/a.epub")
		s.NoError(s.engine.EnforceLimits(s.ctx(), s.patron.ID(), pool.ID()))
	})

	s.Run("open access loans do not count", func() {
		s.withLibrary(builder.NewLibraryBuilder().WithLimits(1, 0).Build())
		oa := s.openAccessPool("https://cdn.example.org/b.epub")
		s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), oa.ID(), s.now).Build())
		pool := s.vendorPool()
		s.provider.EXPECT().UpdateAvailability(gomock.Any(), gomock.Any()).Return(nil)
		s.NoError(s.engine.EnforceLimits(s.ctx(), s.patron.ID(), pool.ID()))
	})
}
