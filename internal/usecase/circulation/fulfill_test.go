//go:build unit

package circulation_test

import (
	"context"

	domcirc "circulation-engine/internal/domain/circulation"
	"circulation-engine/internal/usecase/circulation"
	"circulation-engine/internal/usecase/remote"
	"circulation-engine/tests/common/builder"
	remotemock "circulation-engine/tests/mock/remote"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

var (
	epubAdobe = domcirc.DeliveryMechanism{ContentType: "application/epub+zip", DRMScheme: domcirc.DRMAdobe}
	pdfAdobe  = domcirc.DeliveryMechanism{ContentType: "application/pdf", DRMScheme: domcirc.DRMAdobe}
	streaming = domcirc.DeliveryMechanism{ContentType: "text/html;" + domcirc.StreamingProfile}
)

type loanlessProvider struct {
	*remotemock.MockProvider
	*remotemock.MockLoanlessFulfiller
}

func (s *EngineTestSuite) fulfill(poolID uuid.UUID, m *domcirc.DeliveryMechanism) (*domcirc.FulfillmentInfo, error) {
	return s.engine.Fulfill(s.ctx(), circulation.FulfillRequest{
		PatronID:  s.patron.ID(),
		PIN:       pin,
		PoolID:    poolID,
		Mechanism: m,
	})
}

func (s *EngineTestSuite) vendorPoolWith(m domcirc.DeliveryMechanism) *domcirc.LicensePool {
	p := builder.NewPoolBuilder(s.vendorCollection.ID).WithMechanism(m.ContentType, m.DRMScheme, "").Build()
	s.store.AddPool(p)
	return p
}

func (s *EngineTestSuite) linkFulfillment(pool *domcirc.LicensePool, link string) *domcirc.FulfillmentInfo {
	return domcirc.NewFulfillmentInfo(pool, domcirc.FulfillmentContent{ContentLink: link, ContentType: "application/vnd.adobe.adept+xml"})
}

func (s *EngineTestSuite) TestFulfill_RequiresMechanism() {
	pool := s.vendorPool()

	_, err := s.fulfill(pool.ID(), nil)

	s.ErrorIs(err, domcirc.ErrDeliveryMechanismMissing)
}

func (s *EngineTestSuite) TestFulfill_NoActiveLoanAfterSync() {
	pool := s.vendorPoolWith(epubAdobe)
	s.provider.EXPECT().PatronActivity(gomock.Any(), gomock.Any(), pin).Return(nil, nil)

	_, err := s.fulfill(pool.ID(), &epubAdobe)

	s.ErrorIs(err, domcirc.ErrNoActiveLoan)
	s.Empty(s.analytics.names())
}

func (s *EngineTestSuite) TestFulfill_LoanDiscoveredBySync() {
	pool := s.vendorPoolWith(epubAdobe)
	s.provider.EXPECT().
		PatronActivity(gomock.Any(), gomock.Any(), pin).
		Return([]domcirc.ActivityItem{s.loanInfo(pool, 10)}, nil)
	s.provider.EXPECT().
		Fulfill(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(s.linkFulfillment(pool, "https://vendor.example.com/acsm/1"), nil)

	info, err := s.fulfill(pool.ID(), &epubAdobe)

	s.Require().NoError(err)
	content, err := info.Resolve(s.ctx())
	s.Require().NoError(err)
	s.Equal("https://vendor.example.com/acsm/1", content.ContentLink)
	s.Equal([]string{domcirc.EventFulfill}, s.analytics.names())
}

func (s *EngineTestSuite) TestFulfill_LocksLoanToMechanism() {
	pool := s.vendorPoolWith(epubAdobe)
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.provider.EXPECT().
		Fulfill(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(s.linkFulfillment(pool, "https://vendor.example.com/acsm/2"), nil)

	_, err := s.fulfill(pool.ID(), &epubAdobe)

	s.Require().NoError(err)
	loan := s.store.LoanFor(s.patron.ID(), pool.ID())
	s.Require().NotNil(loan.Fulfillment())
	s.Equal(epubAdobe, loan.Fulfillment().Mechanism())
}

func (s *EngineTestSuite) TestFulfill_StreamingNeverLocks() {
	pool := s.vendorPoolWith(epubAdobe)
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.provider.EXPECT().
		Fulfill(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domcirc.Patron, _ string, _ *domcirc.LicensePool, m *domcirc.LicensePoolDeliveryMechanism, _ remote.FulfillOptions) (*domcirc.FulfillmentInfo, error) {
			s.Equal(streaming, m.Mechanism())
			return s.linkFulfillment(pool, "https://vendor.example.com/read/3"), nil
		})

	_, err := s.fulfill(pool.ID(), &streaming)

	s.Require().NoError(err)
	s.Nil(s.store.LoanFor(s.patron.ID(), pool.ID()).Fulfillment())
}

func (s *EngineTestSuite) TestFulfill_LockedToOtherMechanism() {
	pool := s.vendorPoolWith(epubAdobe)
	locked := pool.DeliveryMechanism(epubAdobe)
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).LockedTo(locked).Build())

	_, err := s.fulfill(pool.ID(), &pdfAdobe)

	s.ErrorIs(err, domcirc.ErrDeliveryMechanismConflict)
}

func (s *EngineTestSuite) TestFulfill_LockedLoanAllowsStreaming() {
	pool := s.vendorPoolWith(epubAdobe)
	locked := pool.DeliveryMechanism(epubAdobe)
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).LockedTo(locked).Build())
	s.provider.EXPECT().
		Fulfill(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(s.linkFulfillment(pool, "https://vendor.example.com/read/4"), nil)

	_, err := s.fulfill(pool.ID(), &streaming)

	s.NoError(err)
}

func (s *EngineTestSuite) TestFulfill_EmptyVendorAnswer() {
	pool := s.vendorPoolWith(epubAdobe)
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Build())
	s.provider.EXPECT().
		Fulfill(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domcirc.NewFulfillmentInfo(pool, domcirc.FulfillmentContent{}), nil)

	_, err := s.fulfill(pool.ID(), &epubAdobe)

	s.ErrorIs(err, domcirc.ErrNoAcceptableFormat)
	s.Nil(s.store.LoanFor(s.patron.ID(), pool.ID()).Fulfillment())
}

func (s *EngineTestSuite) TestFulfill_OpenAccessWithoutLoan() {
	pool := s.openAccessPool("https://cdn.example.org/moby-dick.epub")
	epub := domcirc.DeliveryMechanism{ContentType: "application/epub+zip"}

	info, err := s.fulfill(pool.ID(), &epub)

	s.Require().NoError(err)
	content, err := info.Resolve(s.ctx())
	s.Require().NoError(err)
	s.Equal("https://cdn.example.org/moby-dick.epub", content.ContentLink)
	s.Equal("application/epub+zip", content.ContentType)
}

func (s *EngineTestSuite) TestFulfill_SignsSelfHostedLinks() {
	s.localCollection.SignedURLs = true
	s.build()
	pool := s.openAccessPool("https://cdn.example.org/emma.epub")
	epub := domcirc.DeliveryMechanism{ContentType: "application/epub+zip"}

	info, err := s.fulfill(pool.ID(), &epub)

	s.Require().NoError(err)
	content, _ := info.Resolve(s.ctx())
	s.Equal("https://cdn.example.org/emma.epub?signed=1", content.ContentLink)
}

func (s *EngineTestSuite) TestFulfill_LocalFormatNotAvailable() {
	pool := s.openAccessPool("https://cdn.example.org/persuasion.epub")
	s.store.AddLoan(builder.NewLoanBuilder(s.patron.ID(), pool.ID(), s.now).Indefinite().Build())
	pdf := domcirc.DeliveryMechanism{ContentType: "application/pdf"}

	_, err := s.fulfill(pool.ID(), &pdf)

	s.ErrorIs(err, domcirc.ErrFormatNotAvailable)
}

func (s *EngineTestSuite) TestFulfill_LoanlessVendorTitle() {
	coll := remote.Collection{
		ID:         uuid.New(),
		Name:       "Audiobooks",
		Protocol:   "restapi",
		DataSource: "Findaway",
		LibraryIDs: s.vendorCollection.LibraryIDs,
	}
	mp := s.newProvider(coll.ID)
	lf := remotemock.NewMockLoanlessFulfiller(s.ctrl)
	s.extraEntries = append(s.extraEntries, remote.Entry{
		Collection: coll,
		Provider:   loanlessProvider{MockProvider: mp, MockLoanlessFulfiller: lf},
	})
	s.build()

	sample := domcirc.DeliveryMechanism{ContentType: "audio/mpeg"}
	pool := builder.NewPoolBuilder(coll.ID).WithMechanism(sample.ContentType, sample.DRMScheme, "").Build()
	s.store.AddPool(pool)

	lf.EXPECT().CanFulfillWithoutLoan(gomock.Any(), gomock.Any(), gomock.Any()).Return(true).AnyTimes()
	mp.EXPECT().
		Fulfill(gomock.Any(), gomock.Any(), pin, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(s.linkFulfillment(pool, "https://audio.example.com/sample.mp3"), nil)

	ok, err := s.engine.CanFulfillWithoutLoan(s.ctx(), s.patron.ID(), pool.ID(), &sample)
	s.Require().NoError(err)
	s.True(ok)

	_, err = s.fulfill(pool.ID(), &sample)

	s.Require().NoError(err)
	s.Empty(s.store.Loans())
}

func (s *EngineTestSuite) TestCanFulfillWithoutLoan() {
	vendor := s.vendorPoolWith(epubAdobe)
	oa := s.openAccessPool("https://cdn.example.org/a.epub")
	epub := domcirc.DeliveryMechanism{ContentType: "application/epub+zip"}

	ok, err := s.engine.CanFulfillWithoutLoan(s.ctx(), s.patron.ID(), oa.ID(), &epub)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.engine.CanFulfillWithoutLoan(s.ctx(), s.patron.ID(), vendor.ID(), &epubAdobe)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.engine.CanFulfillWithoutLoan(s.ctx(), s.patron.ID(), oa.ID(), nil)
	s.Require().NoError(err)
	s.False(ok)
}
