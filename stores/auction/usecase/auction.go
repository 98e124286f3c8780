package usecase

import (
	"math/big"
	"sync"
	"time"

	"golang.org/x/xerrors"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/base/log"
	"github.com/decentraland/land-auction/base/metrics"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	"github.com/decentraland/land-auction/domain/dex"
	"github.com/decentraland/land-auction/domain/land"
	"github.com/decentraland/land-auction/domain/token"
)

type AuctionUseCaseCfg struct {
	Params *auction.Params

	AuctionRepo auction.Repo
	EventLog    auction.EventLog
	Tokens      token.UseCase
	Fungible    token.Fungible
	Ledger      land.Ledger
	DexFactory  dex.Factory

	// Dex preconfigures the venue; SetDex can change it later.
	Dex dex.Dex

	// Now overrides the clock, used by tests.
	Now func() time.Time
}

type AuctionUseCase struct {
	// mu serializes every mutating operation, standing in for the
	// transactional execution environment of the settlement protocol.
	mu sync.Mutex

	a *auction.Auction

	repo     auction.Repo
	events   auction.EventLog
	tokens   token.UseCase
	fungible token.Fungible
	ledger   land.Ledger
	factory  dex.Factory
	dex      dex.Dex

	now func() time.Time
	met metrics.Service
}

// NewAuctionUseCase validates the auction parameters, creates the singleton
// auction and emits AuctionCreated.
func NewAuctionUseCase(ctx bCtx.Ctx, cfg *AuctionUseCaseCfg) (*AuctionUseCase, error) {
	p := cfg.Params
	if p == nil || p.Owner.IsEmpty() || p.Address.IsEmpty() || p.BaseToken.IsEmpty() {
		return nil, domain.ErrBadParamInput
	}
	curve, err := auction.NewCurve(p.Curve)
	if err != nil {
		return nil, err
	}
	if p.LandsLimitPerBid == 0 {
		return nil, domain.ErrInvalidLandsLimit
	}
	if p.GasPriceLimit == nil || p.GasPriceLimit.Sign() <= 0 {
		return nil, domain.ErrInvalidGasPriceLimit
	}
	if p.ConversionFee < auction.ConversionFeeMin || p.ConversionFee > auction.ConversionFeeMax {
		return nil, domain.ErrInvalidConversionFee
	}
	kept := uint64(auction.DefaultKeptPercentage)
	if p.TokenKeptPercentage != nil {
		kept = *p.TokenKeptPercentage
	}
	if kept >= 100 {
		return nil, domain.ErrInvalidKeptPercentage
	}

	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	start := p.StartTime
	if start.IsZero() {
		start = nowFn()
	}

	u := &AuctionUseCase{
		a: &auction.Auction{
			Owner:               p.Owner,
			Address:             p.Address,
			BaseToken:           p.BaseToken,
			StartTime:           start,
			Status:              auction.StatusCreated,
			Curve:               curve,
			LandsLimitPerBid:    p.LandsLimitPerBid,
			GasPriceLimit:       new(big.Int).Set(p.GasPriceLimit),
			ConversionFee:       p.ConversionFee,
			TokenKeptPercentage: kept,
			TotalManaBurned:     big.NewInt(0),
		},
		repo:     cfg.AuctionRepo,
		events:   cfg.EventLog,
		tokens:   cfg.Tokens,
		fungible: cfg.Fungible,
		ledger:   cfg.Ledger,
		factory:  cfg.DexFactory,
		dex:      cfg.Dex,
		now:      nowFn,
		met:      metrics.New("auction"),
	}

	created := auction.AuctionCreatedEvent{
		Caller:       p.Owner,
		StartTime:    start.Unix(),
		Duration:     int64(curve.Duration() / time.Second),
		InitialPrice: curve.InitialPrice().String(),
		EndPrice:     curve.FloorPrice().String(),
	}
	if err := u.events.Append(ctx, p.Owner, created); err != nil {
		return nil, xerrors.Errorf("append AuctionCreated: %w", err)
	}
	u.persist(ctx)
	return u, nil
}

func (u *AuctionUseCase) Get(ctx bCtx.Ctx) (*auction.Auction, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	cp := *u.a
	cp.TotalManaBurned = new(big.Int).Set(u.a.TotalManaBurned)
	cp.GasPriceLimit = new(big.Int).Set(u.a.GasPriceLimit)
	return &cp, nil
}

// CurrentPrice returns the land price at this instant. Once the auction has
// finished the price freezes at the finish instant.
func (u *AuctionUseCase) CurrentPrice(ctx bCtx.Ctx) (*big.Int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.priceAt(u.now()), nil
}

func (u *AuctionUseCase) priceAt(now time.Time) *big.Int {
	if u.a.Status == auction.StatusFinished && u.a.EndTime != nil {
		return u.a.Curve.PriceAt(u.a.EndTime.Sub(u.a.StartTime))
	}
	return u.a.Curve.PriceAt(now.Sub(u.a.StartTime))
}

// Bid runs the settlement pipeline: validate, price, convert/dispose funds,
// assign parcels, account. Events are staged and flushed only when the whole
// pipeline succeeded, so a failed bid leaves no trace in the audit log.
func (u *AuctionUseCase) Bid(ctx bCtx.Ctx, req *auction.BidRequest) (*auction.Bid, error) {
	defer u.met.BumpTime("bid.time").End()
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	if err := u.validateBid(ctx, req, now); err != nil {
		u.met.BumpSum("bid.rejected", 1)
		return nil, err
	}

	var policy *token.Policy
	isBase := req.Token.Equals(u.a.BaseToken)
	if !isBase {
		var err error
		if policy, err = u.tokens.Get(ctx, req.Token); err != nil {
			u.met.BumpSum("bid.rejected", 1)
			return nil, err
		}
		if u.dex == nil {
			u.met.BumpSum("bid.rejected", 1)
			return nil, domain.ErrDexNotSet
		}
	}

	bidId := u.a.NextBidId
	lands := uint64(len(req.Xs))
	price := u.priceAt(now)
	required := new(big.Int).Mul(price, big.NewInt(int64(lands)))

	var staged []auction.Event
	var err error
	if isBase {
		staged, err = u.settleBase(ctx, req, bidId, required)
	} else {
		staged, err = u.settleForeign(ctx, req, policy, bidId, required)
	}
	if err != nil {
		u.met.BumpSum("bid.failed", 1)
		return nil, err
	}

	// ownership was pre-checked and execution is serialized, so assignment
	// only fails if the ledger itself misbehaves. The bidder's funds moved
	// already, log the amounts so operators can reconcile the stranded bid
	for i := range req.Xs {
		if err := u.ledger.Assign(ctx, req.Xs[i], req.Ys[i], req.Beneficiary); err != nil {
			ctx.WithFields(log.Fields{
				"err":        err,
				"x":          req.Xs[i],
				"y":          req.Ys[i],
				"bidId":      bidId,
				"token":      req.Token,
				"manaBurned": required.String(),
				"settlement": staged,
			}).Error("ledger.Assign failed after funds settled")
			u.met.BumpSum("bid.failed", 1)
			return nil, xerrors.Errorf("assign land (%d,%d): %w", req.Xs[i], req.Ys[i], err)
		}
	}

	staged = append(staged, auction.BidSuccessfulEvent{
		BidId:        bidId,
		Beneficiary:  req.Beneficiary,
		Token:        req.Token,
		PricePerLand: price.String(),
		ManaToBurn:   required.String(),
		Xs:           req.Xs,
		Ys:           req.Ys,
	})
	if err := u.events.Append(ctx, req.Caller, staged...); err != nil {
		ctx.WithField("err", err).Error("events.Append failed")
		return nil, xerrors.Errorf("append bid events: %w", err)
	}

	u.a.NextBidId++
	u.a.TotalManaBurned.Add(u.a.TotalManaBurned, required)
	u.a.TotalLandsBidded += lands
	u.persist(ctx)

	u.met.BumpSum("bid.settled", 1)
	u.met.BumpSum("bid.lands", float64(lands))
	return &auction.Bid{
		Id:           bidId,
		Beneficiary:  req.Beneficiary,
		Token:        req.Token,
		Xs:           req.Xs,
		Ys:           req.Ys,
		PricePerLand: price,
		RequiredBase: required,
	}, nil
}

// validateBid performs every check before any external effect.
func (u *AuctionUseCase) validateBid(ctx bCtx.Ctx, req *auction.BidRequest, now time.Time) error {
	if req.GasPrice == nil || req.GasPrice.Cmp(u.a.GasPriceLimit) > 0 {
		return domain.ErrGasPriceExceeded
	}
	if u.a.Status == auction.StatusFinished {
		return domain.ErrAuctionFinished
	}
	if now.Before(u.a.StartTime) {
		return domain.ErrAuctionNotStarted
	}
	if len(req.Xs) != len(req.Ys) {
		return domain.ErrLengthMismatch
	}
	if len(req.Xs) == 0 {
		return domain.ErrEmptyBid
	}
	if uint64(len(req.Xs)) > u.a.LandsLimitPerBid {
		return domain.ErrTooManyLands
	}
	for i := range req.Xs {
		if req.Xs[i] < auction.MinCoordinate || req.Xs[i] > auction.MaxCoordinate ||
			req.Ys[i] < auction.MinCoordinate || req.Ys[i] > auction.MaxCoordinate {
			return domain.ErrCoordinateOutOfRange
		}
	}
	if req.Beneficiary.IsEmpty() {
		return domain.ErrInvalidBeneficiary
	}
	if req.Caller.IsEmpty() {
		return domain.ErrBadParamInput
	}
	for i := range req.Xs {
		id, err := u.ledger.Encode(ctx, req.Xs[i], req.Ys[i])
		if err != nil {
			return xerrors.Errorf("encode land (%d,%d): %w", req.Xs[i], req.Ys[i], err)
		}
		owner, err := u.ledger.OwnerOf(ctx, id)
		if err != nil {
			return xerrors.Errorf("owner of land (%d,%d): %w", req.Xs[i], req.Ys[i], err)
		}
		if !owner.IsEmpty() {
			return domain.ErrLandAlreadyOwned
		}
	}
	return nil
}

// settleBase pulls the required base currency from the bidder and destroys it.
func (u *AuctionUseCase) settleBase(ctx bCtx.Ctx, req *auction.BidRequest, bidId uint64, required *big.Int) ([]auction.Event, error) {
	if err := u.requireFunds(ctx, u.a.BaseToken, req.Caller, required); err != nil {
		return nil, err
	}
	if err := u.fungible.TransferFrom(ctx, u.a.BaseToken, req.Caller, u.a.Address, required); err != nil {
		return nil, xerrors.Errorf("pull base token: %w", err)
	}
	if err := u.fungible.Burn(ctx, u.a.BaseToken, required); err != nil {
		return nil, xerrors.Errorf("burn base token: %w", err)
	}
	return []auction.Event{
		auction.TokenBurnedEvent{BidId: bidId, Token: u.a.BaseToken, Total: required.String()},
	}, nil
}

// settleForeign sizes the pull with a buffered venue quote, swaps the
// non-retained share for base currency, burns it and disposes of the retained
// share per the token's policy.
func (u *AuctionUseCase) settleForeign(ctx bCtx.Ctx, req *auction.BidRequest, policy *token.Policy, bidId uint64, required *big.Int) ([]auction.Event, error) {
	quoted, err := u.dex.Quote(ctx, req.Token, u.a.BaseToken, required)
	if err != nil {
		return nil, xerrors.Errorf("quote conversion: %w", err)
	}

	// buffer the quote so slippage never leaves the burn under-funded
	toConvert := domain.CeilDiv(new(big.Int).Mul(quoted, new(big.Int).SetUint64(u.a.ConversionFee)), domain.Big100)

	// retained share rounds down so the swapped share always covers required
	retained := new(big.Int).Mul(toConvert, new(big.Int).SetUint64(u.a.TokenKeptPercentage))
	retained.Quo(retained, domain.Big100)
	toSwap := new(big.Int).Sub(toConvert, retained)

	if err := u.requireFunds(ctx, req.Token, req.Caller, toConvert); err != nil {
		return nil, err
	}
	if err := u.fungible.TransferFrom(ctx, req.Token, req.Caller, u.a.Address, toConvert); err != nil {
		return nil, xerrors.Errorf("pull payment token: %w", err)
	}

	got, err := u.dex.Convert(ctx, req.Token, u.a.BaseToken, toSwap, required)
	if err != nil {
		return nil, xerrors.Errorf("convert payment token: %w", err)
	}
	if got.Cmp(required) < 0 {
		return nil, domain.ErrInsufficientFunds
	}

	staged := []auction.Event{
		auction.BidConversionEvent{
			BidId:              bidId,
			Token:              req.Token,
			RequiredManaAmount: required.String(),
			AmountOfToken:      toSwap.String(),
			RequiredBalance:    toConvert.String(),
		},
	}

	// burn everything the swap realized, the custody account keeps no base
	if err := u.fungible.Burn(ctx, u.a.BaseToken, got); err != nil {
		return nil, xerrors.Errorf("burn base token: %w", err)
	}
	staged = append(staged, auction.TokenBurnedEvent{BidId: bidId, Token: u.a.BaseToken, Total: got.String()})

	if retained.Sign() > 0 {
		switch {
		case policy.ShouldBurn:
			if err := u.fungible.Burn(ctx, req.Token, retained); err != nil {
				return nil, xerrors.Errorf("burn retained tokens: %w", err)
			}
			staged = append(staged, auction.TokenBurnedEvent{BidId: bidId, Token: req.Token, Total: retained.String()})
		case policy.ShouldForward:
			if err := u.fungible.Transfer(ctx, req.Token, policy.ForwardTarget, retained); err != nil {
				return nil, xerrors.Errorf("forward retained tokens: %w", err)
			}
			staged = append(staged, auction.TokenTransferredEvent{
				BidId: bidId,
				Token: req.Token,
				To:    policy.ForwardTarget,
				Total: retained.String(),
			})
		default:
			// kept in custody, drained later through BurnFunds
		}
	}
	return staged, nil
}

// requireFunds checks balance and allowance before any pull happens.
func (u *AuctionUseCase) requireFunds(ctx bCtx.Ctx, tkn, holder domain.Address, amount *big.Int) error {
	balance, err := u.fungible.BalanceOf(ctx, tkn, holder)
	if err != nil {
		return xerrors.Errorf("balance of %s: %w", tkn, err)
	}
	if balance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}
	allowance, err := u.fungible.Allowance(ctx, tkn, holder, u.a.Address)
	if err != nil {
		return xerrors.Errorf("allowance of %s: %w", tkn, err)
	}
	if allowance.Cmp(amount) < 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// Finish closes the auction, freezing the price at this instant.
func (u *AuctionUseCase) Finish(ctx bCtx.Ctx, caller domain.Address) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.requireOwner(caller); err != nil {
		return err
	}
	if u.a.Status == auction.StatusFinished {
		return domain.ErrAuctionFinished
	}
	now := u.now()
	price := u.priceAt(now)
	if err := u.events.Append(ctx, caller, auction.AuctionFinishedEvent{
		Caller: caller,
		Time:   now.Unix(),
		Price:  price.String(),
	}); err != nil {
		return xerrors.Errorf("append AuctionFinished: %w", err)
	}
	u.a.Status = auction.StatusFinished
	u.a.EndTime = &now
	u.persist(ctx)
	return nil
}

// BurnFunds drains the custody account's residual balance of a retained
// token. Anyone may call it once the auction has finished.
func (u *AuctionUseCase) BurnFunds(ctx bCtx.Ctx, caller, tkn domain.Address) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.a.Status != auction.StatusFinished {
		return domain.ErrAuctionNotFinished
	}
	balance, err := u.fungible.BalanceOf(ctx, tkn, u.a.Address)
	if err != nil {
		return xerrors.Errorf("balance of %s: %w", tkn, err)
	}
	if balance.Sign() == 0 {
		return domain.ErrZeroBalance
	}
	ok, err := u.fungible.CanBurn(ctx, tkn)
	if err != nil {
		return xerrors.Errorf("burn capability of %s: %w", tkn, err)
	}
	if !ok {
		return domain.ErrBurnNotSupported
	}
	if err := u.fungible.Burn(ctx, tkn, balance); err != nil {
		return xerrors.Errorf("burn residual balance: %w", err)
	}
	return u.events.Append(ctx, caller, auction.TokenBurnedEvent{
		BidId: u.a.NextBidId,
		Token: tkn,
		Total: balance.String(),
	})
}

func (u *AuctionUseCase) SetLandsLimitPerBid(ctx bCtx.Ctx, caller domain.Address, limit uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.requireOwner(caller); err != nil {
		return err
	}
	if limit == 0 {
		return domain.ErrInvalidLandsLimit
	}
	if err := u.events.Append(ctx, caller, auction.LandsLimitPerBidChangedEvent{
		Caller:   caller,
		OldLimit: u.a.LandsLimitPerBid,
		Limit:    limit,
	}); err != nil {
		return err
	}
	u.a.LandsLimitPerBid = limit
	u.persist(ctx)
	return nil
}

func (u *AuctionUseCase) SetGasPriceLimit(ctx bCtx.Ctx, caller domain.Address, limit *big.Int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.requireOwner(caller); err != nil {
		return err
	}
	if limit == nil || limit.Sign() <= 0 {
		return domain.ErrInvalidGasPriceLimit
	}
	if err := u.events.Append(ctx, caller, auction.GasPriceLimitChangedEvent{
		Caller:   caller,
		OldLimit: u.a.GasPriceLimit.String(),
		Limit:    limit.String(),
	}); err != nil {
		return err
	}
	u.a.GasPriceLimit = new(big.Int).Set(limit)
	u.persist(ctx)
	return nil
}

func (u *AuctionUseCase) SetConversionFee(ctx bCtx.Ctx, caller domain.Address, fee uint64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.requireOwner(caller); err != nil {
		return err
	}
	if fee < auction.ConversionFeeMin || fee > auction.ConversionFeeMax {
		return domain.ErrInvalidConversionFee
	}
	if err := u.events.Append(ctx, caller, auction.ConversionFeeChangedEvent{
		Caller: caller,
		OldFee: u.a.ConversionFee,
		Fee:    fee,
	}); err != nil {
		return err
	}
	u.a.ConversionFee = fee
	u.persist(ctx)
	return nil
}

// SetDex points the auction at a conversion venue. An empty address removes
// the venue, which disables foreign-token bids.
func (u *AuctionUseCase) SetDex(ctx bCtx.Ctx, caller, addr domain.Address) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.requireOwner(caller); err != nil {
		return err
	}
	old := domain.EmptyAddress
	if u.dex != nil {
		old = u.dex.Address()
	}
	var next dex.Dex
	if !addr.IsEmpty() {
		var err error
		if next, err = u.factory.Make(ctx, addr); err != nil {
			return xerrors.Errorf("make dex adapter: %w", err)
		}
	}
	if err := u.events.Append(ctx, caller, auction.DexChangedEvent{
		Caller: caller,
		OldDex: old,
		Dex:    addr,
	}); err != nil {
		return err
	}
	u.dex = next
	return nil
}

func (u *AuctionUseCase) Events(ctx bCtx.Ctx, offset, limit int) ([]*auction.Record, error) {
	return u.events.List(ctx, offset, limit)
}

func (u *AuctionUseCase) requireOwner(caller domain.Address) error {
	if !caller.Equals(u.a.Owner) {
		return domain.ErrNotOwner
	}
	return nil
}

// persist snapshots the auction state for querying. The snapshot is derived
// from the in-memory state, a failed write is logged but never fails the
// operation that produced it.
func (u *AuctionUseCase) persist(ctx bCtx.Ctx) {
	if u.repo == nil {
		return
	}
	snap := &auction.Snapshot{
		Owner:            u.a.Owner,
		Status:           u.a.Status,
		StartTime:        u.a.StartTime,
		EndTime:          u.a.EndTime,
		LandsLimitPerBid: u.a.LandsLimitPerBid,
		GasPriceLimit:    u.a.GasPriceLimit.String(),
		ConversionFee:    u.a.ConversionFee,
		TotalManaBurned:  u.a.TotalManaBurned.String(),
		TotalLandsBidded: u.a.TotalLandsBidded,
		NextBidId:        u.a.NextBidId,
	}
	if err := u.repo.Upsert(ctx, snap); err != nil {
		ctx.WithField("err", err).Error("auction snapshot upsert failed")
	}
}

var _ auction.UseCase = (*AuctionUseCase)(nil)
