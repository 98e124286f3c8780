package contract

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"

	bAbi "github.com/decentraland/land-auction/base/abi"
	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/land"
	"github.com/decentraland/land-auction/service/chain"
)

type ledgerImpl struct {
	client chain.Client
	addr   common.Address
}

// NewLedger adapts the on-chain land registry at the given address.
func NewLedger(client chain.Client, addr domain.Address) land.Ledger {
	return &ledgerImpl{client: client, addr: toCommon(addr)}
}

func (im *ledgerImpl) Encode(ctx bCtx.Ctx, x, y int32) (*big.Int, error) {
	output, err := im.client.Call(ctx, im.addr, bAbi.LandRegistryABI, "encodeTokenId", big.NewInt(int64(x)), big.NewInt(int64(y)))
	if err != nil {
		return nil, err
	}
	return uint256At(output, 0, "encodeTokenId")
}

// OwnerOf treats a reverted lookup as an unowned parcel. erc721 registries
// revert on ids that were never minted.
func (im *ledgerImpl) OwnerOf(ctx bCtx.Ctx, id *big.Int) (domain.Address, error) {
	output, err := im.client.Call(ctx, im.addr, bAbi.LandRegistryABI, "ownerOf", id)
	if err != nil {
		if isReverted(err) {
			return domain.EmptyAddress, nil
		}
		return "", err
	}
	if len(output) < 1 {
		return "", xerrors.New("ownerOf returned nothing")
	}
	owner, ok := output[0].(common.Address)
	if !ok {
		return "", xerrors.Errorf("ownerOf returned %T", output[0])
	}
	return domain.Address(strings.ToLower(owner.Hex())), nil
}

func (im *ledgerImpl) Assign(ctx bCtx.Ctx, x, y int32, beneficiary domain.Address) error {
	err := im.client.Send(ctx, im.addr, bAbi.LandRegistryABI, "assignNewParcel", big.NewInt(int64(x)), big.NewInt(int64(y)), toCommon(beneficiary))
	if err == nil {
		return nil
	}
	id, encErr := im.Encode(ctx, x, y)
	if encErr != nil {
		return err
	}
	owner, ownErr := im.OwnerOf(ctx, id)
	if ownErr == nil && !owner.IsEmpty() {
		return domain.ErrLandAlreadyOwned
	}
	return err
}

func isReverted(err error) bool {
	return strings.Contains(err.Error(), "execution reverted")
}
