package usecase

import (
	"sync"

	"golang.org/x/xerrors"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/base/log"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	"github.com/decentraland/land-auction/domain/token"
)

type RegistryUseCaseCfg struct {
	// Owner gates allow/disable, AuctionAddress is rejected as forward target.
	Owner          domain.Address
	AuctionAddress domain.Address

	Repo     token.Repo
	Fungible token.Fungible
	EventLog auction.EventLog
}

type RegistryUseCase struct {
	mu sync.Mutex

	owner       domain.Address
	auctionAddr domain.Address

	repo     token.Repo
	fungible token.Fungible
	events   auction.EventLog
}

func NewRegistryUseCase(cfg *RegistryUseCaseCfg) token.UseCase {
	return &RegistryUseCase{
		owner:       cfg.Owner,
		auctionAddr: cfg.AuctionAddress,
		repo:        cfg.Repo,
		fungible:    cfg.Fungible,
		events:      cfg.EventLog,
	}
}

// Get returns the policy of a currently allowed token.
func (u *RegistryUseCase) Get(ctx bCtx.Ctx, tkn domain.Address) (*token.Policy, error) {
	policy, err := u.repo.FindOne(ctx, tkn)
	if err != nil {
		return nil, xerrors.Errorf("find policy of %s: %w", tkn, err)
	}
	if policy == nil || !policy.Allowed {
		return nil, domain.ErrTokenNotAllowed
	}
	return policy, nil
}

func (u *RegistryUseCase) Allow(ctx bCtx.Ctx, caller domain.Address, req *token.AllowRequest) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !caller.Equals(u.owner) {
		return domain.ErrNotOwner
	}
	if err := u.validate(ctx, req); err != nil {
		return err
	}
	return u.register(ctx, caller, req)
}

// AllowMany registers every entry or none of them. All entries are validated
// before the first registration happens.
func (u *RegistryUseCase) AllowMany(ctx bCtx.Ctx, caller domain.Address, reqs []*token.AllowRequest) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !caller.Equals(u.owner) {
		return domain.ErrNotOwner
	}
	seen := map[domain.Address]bool{}
	for _, req := range reqs {
		if seen[req.Token.ToLower()] {
			return domain.ErrTokenAlreadyAllowed
		}
		seen[req.Token.ToLower()] = true
		if err := u.validate(ctx, req); err != nil {
			return err
		}
	}
	for _, req := range reqs {
		if err := u.register(ctx, caller, req); err != nil {
			return err
		}
	}
	return nil
}

// Disable flips the allowed flag. The stale configuration stays behind, a
// later Allow supplies a fresh one.
func (u *RegistryUseCase) Disable(ctx bCtx.Ctx, caller, tkn domain.Address) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !caller.Equals(u.owner) {
		return domain.ErrNotOwner
	}
	policy, err := u.repo.FindOne(ctx, tkn)
	if err != nil {
		return xerrors.Errorf("find policy of %s: %w", tkn, err)
	}
	if policy == nil || !policy.Allowed {
		return domain.ErrTokenNotAllowed
	}
	policy.Allowed = false
	if err := u.repo.Upsert(ctx, policy); err != nil {
		ctx.WithField("err", err).Error("policy upsert failed")
		return err
	}
	return u.events.Append(ctx, caller, auction.TokenDisabledEvent{Caller: caller, Token: tkn})
}

func (u *RegistryUseCase) validate(ctx bCtx.Ctx, req *token.AllowRequest) error {
	existing, err := u.repo.FindOne(ctx, req.Token)
	if err != nil {
		return xerrors.Errorf("find policy of %s: %w", req.Token, err)
	}
	if existing != nil && existing.Allowed {
		return domain.ErrTokenAlreadyAllowed
	}
	if req.Decimals <= 0 || req.Decimals > 18 {
		return domain.ErrInvalidDecimals
	}
	if req.ShouldBurn && req.ShouldForward {
		return domain.ErrInvalidTokenPolicy
	}
	if req.ShouldForward {
		if req.ForwardTarget.IsEmpty() ||
			req.ForwardTarget.Equals(u.auctionAddr) ||
			req.ForwardTarget.Equals(req.Token) {
			return domain.ErrInvalidForwardTarget
		}
	}
	isContract, err := u.fungible.IsContract(ctx, req.Token)
	if err != nil {
		return xerrors.Errorf("contract check of %s: %w", req.Token, err)
	}
	if !isContract {
		return domain.ErrTokenNotContract
	}
	if req.ShouldBurn {
		// burn capability is checked here so disposal cannot strand funds
		canBurn, err := u.fungible.CanBurn(ctx, req.Token)
		if err != nil {
			return xerrors.Errorf("burn capability of %s: %w", req.Token, err)
		}
		if !canBurn {
			return domain.ErrBurnNotSupported
		}
	}
	return nil
}

// register resets the whole policy, stale configuration from a disabled entry
// never leaks through.
func (u *RegistryUseCase) register(ctx bCtx.Ctx, caller domain.Address, req *token.AllowRequest) error {
	policy := &token.Policy{
		Token:         req.Token.ToLower(),
		Decimals:      req.Decimals,
		ShouldBurn:    req.ShouldBurn,
		ShouldForward: req.ShouldForward,
		ForwardTarget: req.ForwardTarget,
		Allowed:       true,
	}
	if err := u.repo.Upsert(ctx, policy); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"token": req.Token,
		}).Error("policy upsert failed")
		return err
	}
	return u.events.Append(ctx, caller, auction.TokenAllowedEvent{
		Caller:              caller,
		Token:               req.Token,
		Decimals:            req.Decimals,
		ShouldBurnTokens:    req.ShouldBurn,
		ShouldForwardTokens: req.ShouldForward,
		ForwardTarget:       req.ForwardTarget,
	})
}
