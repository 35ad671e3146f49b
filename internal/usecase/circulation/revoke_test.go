//go:build unit

package circulation_test

import (
	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/tests/common/builder"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func (s *EngineTestSuite) TestRevokeLoan_VendorForgotLoan() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.markSynced(s.now)
	s.provider.EXPECT().Checkin(gomock.Any(), gomock.Any(), pin, gomock.Any()).Return(domcirc.ErrNotCheckedOut)

	ok, err := s.engine.RevokeLoan(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.Require().NoError(err)
	s.True(ok)
	s.Nil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Nil(s.store.Patron(s.patron.ID()).LastLoanActivitySync())
	s.Equal([]string{domcirc.EventCheckIn}, s.analytics.names())
}

func (s *EngineTestSuite) TestRevokeLoan_VendorRefuses() {
	pool := s.vendorPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.provider.EXPECT().Checkin(gomock.Any(), gomock.Any(), pin, gomock.Any()).Return(domcirc.ErrCannotReturn)

	ok, err := s.engine.RevokeLoan(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.ErrorIs(err, domcirc.ErrCannotReturn)
	s.False(ok)
	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Empty(s.analytics.names())
}

func (s *EngineTestSuite) TestRevokeLoan_LocalPool() {
	pool := s.openAccessPool("https://cdn.example.org/a.epub")
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Indefinite().Build())

	ok, err := s.engine.RevokeLoan(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.Require().NoError(err)
	s.True(ok)
	s.Empty(s.store.Loans())
}

func (s *EngineTestSuite) TestRevokeLoan_WithoutLocalLoanStillAsksVendor() {
	pool := s.vendorPool()
	s.provider.EXPECT().Checkin(gomock.Any(), gomock.Any(), pin, gomock.Any()).Return(nil)

	ok, err := s.engine.RevokeLoan(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.Require().NoError(err)
	s.True(ok)
}

func (s *EngineTestSuite) TestReleaseHold_VendorForgotHold() {
	pool := s.vendorPool()
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.provider.EXPECT().ReleaseHold(gomock.Any(), gomock.Any(), pin, gomock.Any()).Return(domcirc.ErrNotOnHold)

	ok, err := s.engine.ReleaseHold(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.Require().NoError(err)
	s.True(ok)
	s.Nil(s.store.HoldFor(s.patron.ID(), pool.ID()))
	s.Equal([]string{domcirc.EventHoldRelease}, s.analytics.names())
}

func (s *EngineTestSuite) TestReleaseHold_ReservedCopy() {
	pool := s.vendorPool()
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).AtPosition(0).Build())

	ok, err := s.engine.ReleaseHold(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.ErrorIs(err, domcirc.ErrCannotReleaseHold)
	s.False(ok)
	s.NotNil(s.store.HoldFor(s.patron.ID(), pool.ID()))
}

func (s *EngineTestSuite) TestReleaseHold_ReservedCopyWhenVendorAllows() {
	s.capabilities.CanRevokeHoldWhenReserved = true
	pool := s.vendorPool()
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).AtPosition(0).Build())
	s.provider.EXPECT().ReleaseHold(gomock.Any(), gomock.Any(), pin, gomock.Any()).Return(nil)

	ok, err := s.engine.ReleaseHold(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.Require().NoError(err)
	s.True(ok)
	s.Empty(s.store.Holds())
}

func (s *EngineTestSuite) TestCanRevokeHold() {
	tests := []struct {
		name       string
		position   *int
		revokable  bool
		openAccess bool
		want       bool
	}{
		{name: "no hold", want: false},
		{name: "waiting in line", position: intPtr(4), want: true},
		{name: "reserved", position: intPtr(0), want: false},
		{name: "reserved but vendor allows", position: intPtr(0), revokable: true, want: true},
		{name: "open access", position: intPtr(1), openAccess: true, want: false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.capabilities.CanRevokeHoldWhenReserved = tt.revokable
			var pool *domcirc.LicensePool
			if tt.openAccess {
				pool = s.openAccessPool("https://cdn.example.org/x.epub")
			} else {
				pool = s.vendorPool()
			}
			if tt.position != nil {
				s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).AtPosition(*tt.position).Build())
			}

			got, err := s.engine.CanRevokeHold(s.ctx(), s.patron.ID(), pool.ID())

			s.Require().NoError(err)
			s.Equal(tt.want, got)
		})
	}
}

func intPtr(n int) *int {
	return &n
}

// orphanPool belongs to a vendor collection nobody configured a provider for.
func (s *EngineTestSuite) orphanPool() *domcirc.LicensePool {
	p := builder.NewPoolBuilder(uuid.New()).Build()
	s.store.AddPool(p)
	return p
}

func (s *EngineTestSuite) TestRevokeLoan_NoProviderKeepsLoan() {
	pool := s.orphanPool()
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())

	ok, err := s.engine.RevokeLoan(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.ErrorIs(err, domcirc.ErrCannotReturn)
	s.False(ok)
	s.NotNil(s.store.LoanFor(s.patron.ID(), pool.ID()))
	s.Empty(s.analytics.names())
}

func (s *EngineTestSuite) TestReleaseHold_NoProviderKeepsHold() {
	pool := s.orphanPool()
	s.store.AddHold(builder.NewHoldBuilder(s.patron.ID(), pool.ID(), s.now).Build())

	ok, err := s.engine.ReleaseHold(s.ctx(), s.patron.ID(), pin, pool.ID())

	s.ErrorIs(err, domcirc.ErrCannotReleaseHold)
	s.False(ok)
	s.NotNil(s.store.HoldFor(s.patron.ID(), pool.ID()))
	s.Empty(s.analytics.names())
}
