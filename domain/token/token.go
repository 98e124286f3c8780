package token

import (
	"math/big"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
)

// Policy is the per-payment-token disposition rule. At most one of ShouldBurn
// and ShouldForward may be set; with neither set the retained share stays
// custodied until drained manually.
type Policy struct {
	Token         domain.Address `bson:"token"`
	Decimals      int32          `bson:"decimals"`
	ShouldBurn    bool           `bson:"shouldBurn"`
	ShouldForward bool           `bson:"shouldForward"`
	ForwardTarget domain.Address `bson:"forwardTarget,omitempty"`
	Allowed       bool           `bson:"allowed"`
}

func (p *Policy) ToId() *Id {
	return &Id{Token: p.Token.ToLower()}
}

type Id struct {
	Token domain.Address `bson:"token"`
}

// AllowRequest is one registry entry to be created.
type AllowRequest struct {
	Token         domain.Address
	Decimals      int32
	ShouldBurn    bool
	ShouldForward bool
	ForwardTarget domain.Address
}

type Repo interface {
	FindOne(bCtx.Ctx, domain.Address) (*Policy, error)
	Upsert(bCtx.Ctx, *Policy) error
}

// UseCase is the allow-list of payment tokens.
type UseCase interface {
	// Get returns the policy of a currently allowed token, or
	// domain.ErrTokenNotAllowed.
	Get(bCtx.Ctx, domain.Address) (*Policy, error)
	Allow(bCtx.Ctx, domain.Address, *AllowRequest) error
	// AllowMany registers all entries or none of them.
	AllowMany(bCtx.Ctx, domain.Address, []*AllowRequest) error
	Disable(bCtx.Ctx, domain.Address, domain.Address) error
}

// Fungible adapts external fungible token contracts. Implementations must
// translate non-standard return semantics into explicit errors.
type Fungible interface {
	BalanceOf(ctx bCtx.Ctx, token, owner domain.Address) (*big.Int, error)
	Allowance(ctx bCtx.Ctx, token, owner, spender domain.Address) (*big.Int, error)
	TransferFrom(ctx bCtx.Ctx, token, from, to domain.Address, amount *big.Int) error
	Transfer(ctx bCtx.Ctx, token, to domain.Address, amount *big.Int) error
	Burn(ctx bCtx.Ctx, token domain.Address, amount *big.Int) error
	CanBurn(ctx bCtx.Ctx, token domain.Address) (bool, error)
	IsContract(ctx bCtx.Ctx, addr domain.Address) (bool, error)
}
