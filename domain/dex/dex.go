package dex

import (
	"math/big"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
)

// Dex adapts the external conversion venue. Amounts cross this interface in
// the native units of each token; adapters own the 10^(18-decimals) scaling
// against venue rates and round quotes up so the holder side never
// under-collects.
type Dex interface {
	Address() domain.Address
	// Quote returns how much of `from` is needed to realize `toAmount` of `to`.
	Quote(ctx bCtx.Ctx, from, to domain.Address, toAmount *big.Int) (*big.Int, error)
	// Convert swaps `fromAmount` of `from` and returns the realized amount of
	// `to`, which must be at least `minReturn`.
	Convert(ctx bCtx.Ctx, from, to domain.Address, fromAmount, minReturn *big.Int) (*big.Int, error)
}

// Factory builds a venue adapter for a configured venue address.
type Factory interface {
	Make(ctx bCtx.Ctx, addr domain.Address) (Dex, error)
}
