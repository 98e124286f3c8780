package land

import (
	"math/big"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
)

// Ledger adapts the external land ownership registry.
type Ledger interface {
	// Encode packs a coordinate pair into its ledger id.
	Encode(ctx bCtx.Ctx, x, y int32) (*big.Int, error)
	// OwnerOf returns domain.EmptyAddress for unowned parcels.
	OwnerOf(ctx bCtx.Ctx, id *big.Int) (domain.Address, error)
	// Assign gives the parcel to the beneficiary. It fails with
	// domain.ErrLandAlreadyOwned if the parcel is owned.
	Assign(ctx bCtx.Ctx, x, y int32, beneficiary domain.Address) error
}
