package usecase_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/xerrors"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	mDex "github.com/decentraland/land-auction/domain/dex/mocks"
	mLand "github.com/decentraland/land-auction/domain/land/mocks"
	"github.com/decentraland/land-auction/domain/token"
	mToken "github.com/decentraland/land-auction/domain/token/mocks"
	"github.com/decentraland/land-auction/stores/auction/repository"
	"github.com/decentraland/land-auction/stores/auction/usecase"
)

const (
	owner       = domain.Address("0x00000000000000000000000000000000000000aa")
	custody     = domain.Address("0x00000000000000000000000000000000000000bb")
	baseToken   = domain.Address("0x00000000000000000000000000000000000000cc")
	otherToken  = domain.Address("0x00000000000000000000000000000000000000dd")
	bidder      = domain.Address("0x00000000000000000000000000000000000000ee")
	beneficiary = domain.Address("0x00000000000000000000000000000000000000ff")
)

func mana(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func launchPoints() []auction.Breakpoint {
	return []auction.Breakpoint{
		{At: 0, Price: mana(200000)},
		{At: 24 * time.Hour, Price: mana(100000)},
		{At: 48 * time.Hour, Price: mana(50000)},
		{At: 7 * 24 * time.Hour, Price: mana(25000)},
		{At: 15 * 24 * time.Hour, Price: mana(1000)},
	}
}

type AuctionTestSuite struct {
	suite.Suite

	ctx      bCtx.Ctx
	start    time.Time
	now      time.Time
	ledger   *mLand.Ledger
	fungible *mToken.Fungible
	tokens   *mToken.UseCase
	dex      *mDex.Dex
	factory  *mDex.Factory
	events   auction.EventLog
	u        *usecase.AuctionUseCase
}

func (s *AuctionTestSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.start = time.Unix(1700000000, 0)
	s.now = s.start
	s.ledger = &mLand.Ledger{}
	s.fungible = &mToken.Fungible{}
	s.tokens = &mToken.UseCase{}
	s.dex = &mDex.Dex{}
	s.factory = &mDex.Factory{}
	s.events = repository.NewMemoryEventLog()

	u, err := usecase.NewAuctionUseCase(s.ctx, &usecase.AuctionUseCaseCfg{
		Params: &auction.Params{
			Owner:            owner,
			Address:          custody,
			BaseToken:        baseToken,
			StartTime:        s.start,
			Curve:            launchPoints(),
			LandsLimitPerBid: 20,
			GasPriceLimit:    big.NewInt(30000000000),
			ConversionFee:    105,
		},
		EventLog:   s.events,
		Tokens:     s.tokens,
		Fungible:   s.fungible,
		Ledger:     s.ledger,
		DexFactory: s.factory,
		Dex:        s.dex,
		Now:        func() time.Time { return s.now },
	})
	s.Require().NoError(err)
	s.u = u
}

func (s *AuctionTestSuite) records() []*auction.Record {
	records, err := s.events.List(s.ctx, 0, 0)
	s.Require().NoError(err)
	return records
}

func (s *AuctionTestSuite) baseBid(xs, ys []int32) *auction.BidRequest {
	return &auction.BidRequest{
		Xs:          xs,
		Ys:          ys,
		Beneficiary: beneficiary,
		Token:       baseToken,
		Caller:      bidder,
		GasPrice:    big.NewInt(1000000000),
	}
}

func (s *AuctionTestSuite) expectUnowned(x, y int32) {
	id := big.NewInt(int64(x)*1000 + int64(y))
	s.ledger.On("Encode", mock.Anything, x, y).Return(id, nil)
	s.ledger.On("OwnerOf", mock.Anything, id).Return(domain.EmptyAddress, nil)
}

func (s *AuctionTestSuite) expectBaseFunds(amount *big.Int) {
	s.fungible.On("BalanceOf", mock.Anything, baseToken, bidder).Return(amount, nil)
	s.fungible.On("Allowance", mock.Anything, baseToken, bidder, custody).Return(amount, nil)
}

func (s *AuctionTestSuite) TestNewAuctionValidation() {
	tests := []struct {
		desc   string
		mutate func(*auction.Params)
		expErr error
	}{
		{
			desc:   "zero lands limit",
			mutate: func(p *auction.Params) { p.LandsLimitPerBid = 0 },
			expErr: domain.ErrInvalidLandsLimit,
		},
		{
			desc:   "zero gas price limit",
			mutate: func(p *auction.Params) { p.GasPriceLimit = big.NewInt(0) },
			expErr: domain.ErrInvalidGasPriceLimit,
		},
		{
			desc:   "fee below range",
			mutate: func(p *auction.Params) { p.ConversionFee = 99 },
			expErr: domain.ErrInvalidConversionFee,
		},
		{
			desc:   "fee above range",
			mutate: func(p *auction.Params) { p.ConversionFee = 200 },
			expErr: domain.ErrInvalidConversionFee,
		},
		{
			desc: "kept percentage too large",
			mutate: func(p *auction.Params) {
				kept := uint64(100)
				p.TokenKeptPercentage = &kept
			},
			expErr: domain.ErrInvalidKeptPercentage,
		},
		{
			desc:   "missing owner",
			mutate: func(p *auction.Params) { p.Owner = "" },
			expErr: domain.ErrBadParamInput,
		},
	}
	for _, tc := range tests {
		p := &auction.Params{
			Owner:            owner,
			Address:          custody,
			BaseToken:        baseToken,
			StartTime:        s.start,
			Curve:            launchPoints(),
			LandsLimitPerBid: 20,
			GasPriceLimit:    big.NewInt(30000000000),
			ConversionFee:    105,
		}
		tc.mutate(p)
		_, err := usecase.NewAuctionUseCase(s.ctx, &usecase.AuctionUseCaseCfg{
			Params:   p,
			EventLog: repository.NewMemoryEventLog(),
		})
		s.Equal(tc.expErr, err, tc.desc)
	}
}

func (s *AuctionTestSuite) TestCreationEmitsAuctionCreated() {
	records := s.records()
	s.Require().Len(records, 1)
	s.Equal(auction.EventAuctionCreated, records[0].Name)
	s.Equal(owner, records[0].Caller)

	payload := records[0].Payload.(auction.AuctionCreatedEvent)
	s.Equal(s.start.Unix(), payload.StartTime)
	s.Equal(int64(15*24*3600), payload.Duration)
	s.Equal(mana(200000).String(), payload.InitialPrice)
	s.Equal(mana(1000).String(), payload.EndPrice)
}

func (s *AuctionTestSuite) TestCurrentPriceFollowsCurve() {
	price, err := s.u.CurrentPrice(s.ctx)
	s.NoError(err)
	s.Equal(0, mana(200000).Cmp(price))

	s.now = s.start.Add(12 * time.Hour)
	price, err = s.u.CurrentPrice(s.ctx)
	s.NoError(err)
	s.Equal(0, mana(150000).Cmp(price))

	s.now = s.start.Add(30 * 24 * time.Hour)
	price, err = s.u.CurrentPrice(s.ctx)
	s.NoError(err)
	s.Equal(0, mana(1000).Cmp(price))
}

func (s *AuctionTestSuite) TestBidValidation() {
	s.now = s.start.Add(time.Hour)

	tests := []struct {
		desc   string
		mutate func(*auction.BidRequest)
		expErr error
	}{
		{
			desc:   "gas price over the limit",
			mutate: func(r *auction.BidRequest) { r.GasPrice = big.NewInt(30000000001) },
			expErr: domain.ErrGasPriceExceeded,
		},
		{
			desc:   "length mismatch",
			mutate: func(r *auction.BidRequest) { r.Ys = []int32{1, 2} },
			expErr: domain.ErrLengthMismatch,
		},
		{
			desc: "empty bid",
			mutate: func(r *auction.BidRequest) {
				r.Xs = nil
				r.Ys = nil
			},
			expErr: domain.ErrEmptyBid,
		},
		{
			desc: "too many lands",
			mutate: func(r *auction.BidRequest) {
				r.Xs = make([]int32, 21)
				r.Ys = make([]int32, 21)
			},
			expErr: domain.ErrTooManyLands,
		},
		{
			desc:   "coordinate out of range",
			mutate: func(r *auction.BidRequest) { r.Xs = []int32{151} },
			expErr: domain.ErrCoordinateOutOfRange,
		},
		{
			desc:   "empty beneficiary",
			mutate: func(r *auction.BidRequest) { r.Beneficiary = domain.EmptyAddress },
			expErr: domain.ErrInvalidBeneficiary,
		},
	}
	for _, tc := range tests {
		req := s.baseBid([]int32{1}, []int32{1})
		tc.mutate(req)
		_, err := s.u.Bid(s.ctx, req)
		s.Equal(tc.expErr, err, tc.desc)
	}

	// a failed bid leaves no trace
	s.Len(s.records(), 1)
	a, err := s.u.Get(s.ctx)
	s.NoError(err)
	s.Equal(uint64(0), a.NextBidId)
}

func (s *AuctionTestSuite) TestBidBeforeStart() {
	s.now = s.start.Add(-time.Minute)
	_, err := s.u.Bid(s.ctx, s.baseBid([]int32{1}, []int32{1}))
	s.Equal(domain.ErrAuctionNotStarted, err)
}

func (s *AuctionTestSuite) TestBidOwnedLand() {
	id := big.NewInt(42)
	s.ledger.On("Encode", mock.Anything, int32(5), int32(6)).Return(id, nil)
	s.ledger.On("OwnerOf", mock.Anything, id).Return(beneficiary, nil)

	_, err := s.u.Bid(s.ctx, s.baseBid([]int32{5}, []int32{6}))
	s.Equal(domain.ErrLandAlreadyOwned, err)
	s.fungible.AssertNotCalled(s.T(), "TransferFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.Len(s.records(), 1)
}

func (s *AuctionTestSuite) TestBidWithBaseToken() {
	required := mana(400000) // 2 lands at the initial price
	s.expectUnowned(1, 2)
	s.expectUnowned(3, 4)
	s.expectBaseFunds(required)
	s.fungible.On("TransferFrom", mock.Anything, baseToken, bidder, custody, required).Return(nil)
	s.fungible.On("Burn", mock.Anything, baseToken, required).Return(nil)
	s.ledger.On("Assign", mock.Anything, int32(1), int32(2), beneficiary).Return(nil)
	s.ledger.On("Assign", mock.Anything, int32(3), int32(4), beneficiary).Return(nil)

	bid, err := s.u.Bid(s.ctx, s.baseBid([]int32{1, 3}, []int32{2, 4}))
	s.Require().NoError(err)
	s.Equal(uint64(0), bid.Id)
	s.Equal(0, mana(200000).Cmp(bid.PricePerLand))
	s.Equal(0, required.Cmp(bid.RequiredBase))

	a, err := s.u.Get(s.ctx)
	s.NoError(err)
	s.Equal(uint64(1), a.NextBidId)
	s.Equal(uint64(2), a.TotalLandsBidded)
	s.Equal(0, required.Cmp(a.TotalManaBurned))

	records := s.records()
	s.Require().Len(records, 3)
	s.Equal(auction.EventTokenBurned, records[1].Name)
	s.Equal(auction.EventBidSuccessful, records[2].Name)

	payload := records[2].Payload.(auction.BidSuccessfulEvent)
	s.Equal(uint64(0), payload.BidId)
	s.Equal(beneficiary, payload.Beneficiary)
	s.Equal(required.String(), payload.ManaToBurn)
	s.Equal([]int32{1, 3}, payload.Xs)
	s.Equal([]int32{2, 4}, payload.Ys)
}

func (s *AuctionTestSuite) TestBidAssignFailure() {
	required := mana(200000)
	s.expectUnowned(1, 2)
	s.expectBaseFunds(required)
	s.fungible.On("TransferFrom", mock.Anything, baseToken, bidder, custody, required).Return(nil)
	s.fungible.On("Burn", mock.Anything, baseToken, required).Return(nil)
	s.ledger.On("Assign", mock.Anything, int32(1), int32(2), beneficiary).
		Return(xerrors.New("registry reverted"))

	_, err := s.u.Bid(s.ctx, s.baseBid([]int32{1}, []int32{2}))
	s.Require().Error(err)

	// funds already moved but the bid is not counted and nothing is logged
	a, err := s.u.Get(s.ctx)
	s.NoError(err)
	s.Equal(uint64(0), a.NextBidId)
	s.Equal(uint64(0), a.TotalLandsBidded)
	s.Equal(0, big.NewInt(0).Cmp(a.TotalManaBurned))
	s.Len(s.records(), 1)
}

func (s *AuctionTestSuite) TestBidIdsAreSequential() {
	required := mana(200000)
	s.expectBaseFunds(required)
	s.fungible.On("TransferFrom", mock.Anything, baseToken, bidder, custody, required).Return(nil)
	s.fungible.On("Burn", mock.Anything, baseToken, required).Return(nil)

	for i := int32(0); i < 3; i++ {
		s.expectUnowned(i, i)
		s.ledger.On("Assign", mock.Anything, i, i, beneficiary).Return(nil)
		bid, err := s.u.Bid(s.ctx, s.baseBid([]int32{i}, []int32{i}))
		s.Require().NoError(err)
		s.Equal(uint64(i), bid.Id)
	}

	a, err := s.u.Get(s.ctx)
	s.NoError(err)
	s.Equal(uint64(3), a.NextBidId)
	s.Equal(uint64(3), a.TotalLandsBidded)
}

func (s *AuctionTestSuite) TestBidInsufficientBalance() {
	s.expectUnowned(1, 2)
	s.fungible.On("BalanceOf", mock.Anything, baseToken, bidder).Return(mana(1), nil)

	_, err := s.u.Bid(s.ctx, s.baseBid([]int32{1}, []int32{2}))
	s.Equal(domain.ErrInsufficientFunds, err)
	s.fungible.AssertNotCalled(s.T(), "TransferFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.Len(s.records(), 1)
}

func (s *AuctionTestSuite) TestBidWithForeignToken() {
	policy := &token.Policy{
		Token:         otherToken,
		Decimals:      18,
		ShouldForward: true,
		ForwardTarget: owner,
		Allowed:       true,
	}
	s.tokens.On("Get", mock.Anything, otherToken).Return(policy, nil)

	required := mana(200000)
	quoted := mana(1000)
	toConvert := mana(1050)                                      // quoted * 1.05
	retained, _ := new(big.Int).SetString("52500000000000000000", 10) // 5% of toConvert
	toSwap := new(big.Int).Sub(toConvert, retained)

	s.expectUnowned(1, 2)
	s.dex.On("Quote", mock.Anything, otherToken, baseToken, required).Return(quoted, nil)
	s.fungible.On("BalanceOf", mock.Anything, otherToken, bidder).Return(toConvert, nil)
	s.fungible.On("Allowance", mock.Anything, otherToken, bidder, custody).Return(toConvert, nil)
	s.fungible.On("TransferFrom", mock.Anything, otherToken, bidder, custody, toConvert).Return(nil)
	s.dex.On("Convert", mock.Anything, otherToken, baseToken, toSwap, required).Return(required, nil)
	s.fungible.On("Burn", mock.Anything, baseToken, required).Return(nil)
	s.fungible.On("Transfer", mock.Anything, otherToken, owner, retained).Return(nil)
	s.ledger.On("Assign", mock.Anything, int32(1), int32(2), beneficiary).Return(nil)

	req := s.baseBid([]int32{1}, []int32{2})
	req.Token = otherToken
	bid, err := s.u.Bid(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(uint64(0), bid.Id)

	records := s.records()
	s.Require().Len(records, 5)
	s.Equal(auction.EventBidConversion, records[1].Name)
	s.Equal(auction.EventTokenBurned, records[2].Name)
	s.Equal(auction.EventTokenTransferred, records[3].Name)
	s.Equal(auction.EventBidSuccessful, records[4].Name)

	conversion := records[1].Payload.(auction.BidConversionEvent)
	s.Equal(required.String(), conversion.RequiredManaAmount)
	s.Equal(toSwap.String(), conversion.AmountOfToken)
	s.Equal(toConvert.String(), conversion.RequiredBalance)

	forwarded := records[3].Payload.(auction.TokenTransferredEvent)
	s.Equal(owner, forwarded.To)
	s.Equal(retained.String(), forwarded.Total)
}

func (s *AuctionTestSuite) TestBidForeignTokenWithoutDex() {
	u, err := usecase.NewAuctionUseCase(s.ctx, &usecase.AuctionUseCaseCfg{
		Params: &auction.Params{
			Owner:            owner,
			Address:          custody,
			BaseToken:        baseToken,
			StartTime:        s.start,
			Curve:            launchPoints(),
			LandsLimitPerBid: 20,
			GasPriceLimit:    big.NewInt(30000000000),
			ConversionFee:    105,
		},
		EventLog: repository.NewMemoryEventLog(),
		Tokens:   s.tokens,
		Ledger:   s.ledger,
		Now:      func() time.Time { return s.now },
	})
	s.Require().NoError(err)

	s.tokens.On("Get", mock.Anything, otherToken).Return(&token.Policy{Token: otherToken, Decimals: 18, Allowed: true}, nil)
	s.expectUnowned(1, 2)

	req := s.baseBid([]int32{1}, []int32{2})
	req.Token = otherToken
	_, err = u.Bid(s.ctx, req)
	s.Equal(domain.ErrDexNotSet, err)
}

func (s *AuctionTestSuite) TestFinish() {
	s.Equal(domain.ErrNotOwner, s.u.Finish(s.ctx, bidder))

	s.now = s.start.Add(12 * time.Hour)
	s.Require().NoError(s.u.Finish(s.ctx, owner))
	s.Equal(domain.ErrAuctionFinished, s.u.Finish(s.ctx, owner))

	a, err := s.u.Get(s.ctx)
	s.NoError(err)
	s.Equal(auction.StatusFinished, a.Status)
	s.Require().NotNil(a.EndTime)
	s.Equal(s.now, *a.EndTime)

	// the price freezes at the finish instant
	s.now = s.start.Add(10 * 24 * time.Hour)
	price, err := s.u.CurrentPrice(s.ctx)
	s.NoError(err)
	s.Equal(0, mana(150000).Cmp(price))

	_, err = s.u.Bid(s.ctx, s.baseBid([]int32{1}, []int32{2}))
	s.Equal(domain.ErrAuctionFinished, err)

	records := s.records()
	s.Require().Len(records, 2)
	s.Equal(auction.EventAuctionFinished, records[1].Name)
	payload := records[1].Payload.(auction.AuctionFinishedEvent)
	s.Equal(mana(150000).String(), payload.Price)
}

func (s *AuctionTestSuite) TestBurnFunds() {
	s.Equal(domain.ErrAuctionNotFinished, s.u.BurnFunds(s.ctx, bidder, otherToken))

	s.Require().NoError(s.u.Finish(s.ctx, owner))

	s.fungible.On("BalanceOf", mock.Anything, otherToken, custody).Return(big.NewInt(0), nil).Once()
	s.Equal(domain.ErrZeroBalance, s.u.BurnFunds(s.ctx, bidder, otherToken))

	residual := mana(7)
	s.fungible.On("BalanceOf", mock.Anything, otherToken, custody).Return(residual, nil)
	s.fungible.On("CanBurn", mock.Anything, otherToken).Return(false, nil).Once()
	s.Equal(domain.ErrBurnNotSupported, s.u.BurnFunds(s.ctx, bidder, otherToken))

	s.fungible.On("CanBurn", mock.Anything, otherToken).Return(true, nil)
	s.fungible.On("Burn", mock.Anything, otherToken, residual).Return(nil)
	s.Require().NoError(s.u.BurnFunds(s.ctx, bidder, otherToken))

	records := s.records()
	last := records[len(records)-1]
	s.Equal(auction.EventTokenBurned, last.Name)
	s.Equal(bidder, last.Caller)
	s.Equal(residual.String(), last.Payload.(auction.TokenBurnedEvent).Total)
}

func (s *AuctionTestSuite) TestSetters() {
	s.Equal(domain.ErrNotOwner, s.u.SetLandsLimitPerBid(s.ctx, bidder, 10))
	s.Equal(domain.ErrInvalidLandsLimit, s.u.SetLandsLimitPerBid(s.ctx, owner, 0))
	s.NoError(s.u.SetLandsLimitPerBid(s.ctx, owner, 10))

	s.Equal(domain.ErrInvalidGasPriceLimit, s.u.SetGasPriceLimit(s.ctx, owner, big.NewInt(0)))
	s.NoError(s.u.SetGasPriceLimit(s.ctx, owner, big.NewInt(1000000000)))

	s.Equal(domain.ErrInvalidConversionFee, s.u.SetConversionFee(s.ctx, owner, 99))
	s.Equal(domain.ErrInvalidConversionFee, s.u.SetConversionFee(s.ctx, owner, 200))
	s.NoError(s.u.SetConversionFee(s.ctx, owner, 150))

	a, err := s.u.Get(s.ctx)
	s.NoError(err)
	s.Equal(uint64(10), a.LandsLimitPerBid)
	s.Equal(0, big.NewInt(1000000000).Cmp(a.GasPriceLimit))
	s.Equal(uint64(150), a.ConversionFee)

	records := s.records()
	s.Require().Len(records, 4)
	s.Equal(auction.EventLandsLimitPerBidChanged, records[1].Name)
	s.Equal(auction.EventGasPriceLimitChanged, records[2].Name)
	s.Equal(auction.EventConversionFeeChanged, records[3].Name)

	limits := records[1].Payload.(auction.LandsLimitPerBidChangedEvent)
	s.Equal(uint64(20), limits.OldLimit)
	s.Equal(uint64(10), limits.Limit)
}

func (s *AuctionTestSuite) TestSetDex() {
	venue := domain.Address("0x0000000000000000000000000000000000001234")
	next := &mDex.Dex{}
	s.dex.On("Address").Return(domain.Address("0x0000000000000000000000000000000000004321"))
	s.factory.On("Make", mock.Anything, venue).Return(next, nil)

	s.Equal(domain.ErrNotOwner, s.u.SetDex(s.ctx, bidder, venue))
	s.NoError(s.u.SetDex(s.ctx, owner, venue))

	records := s.records()
	s.Require().Len(records, 2)
	s.Equal(auction.EventDexChanged, records[1].Name)
	payload := records[1].Payload.(auction.DexChangedEvent)
	s.Equal(venue, payload.Dex)

	// clearing the venue disables foreign bids
	next.On("Address").Return(venue)
	s.NoError(s.u.SetDex(s.ctx, owner, domain.EmptyAddress))
	s.tokens.On("Get", mock.Anything, otherToken).Return(&token.Policy{Token: otherToken, Decimals: 18, Allowed: true}, nil)
	s.expectUnowned(1, 2)
	req := s.baseBid([]int32{1}, []int32{2})
	req.Token = otherToken
	_, err := s.u.Bid(s.ctx, req)
	s.Equal(domain.ErrDexNotSet, err)
}

func TestAuctionTestSuite(t *testing.T) {
	suite.Run(t, new(AuctionTestSuite))
}
