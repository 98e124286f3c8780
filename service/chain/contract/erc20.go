package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"

	bAbi "github.com/decentraland/land-auction/base/abi"
	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/token"
	"github.com/decentraland/land-auction/service/chain"
)

type fungibleImpl struct {
	client chain.Client
}

// NewFungible adapts erc20-style contracts behind the given chain client.
func NewFungible(client chain.Client) token.Fungible {
	return &fungibleImpl{client: client}
}

func (im *fungibleImpl) BalanceOf(ctx bCtx.Ctx, tkn, owner domain.Address) (*big.Int, error) {
	output, err := im.client.Call(ctx, toCommon(tkn), bAbi.ERC20TokenABI, "balanceOf", toCommon(owner))
	if err != nil {
		return nil, err
	}
	return uint256At(output, 0, "balanceOf")
}

func (im *fungibleImpl) Allowance(ctx bCtx.Ctx, tkn, owner, spender domain.Address) (*big.Int, error) {
	output, err := im.client.Call(ctx, toCommon(tkn), bAbi.ERC20TokenABI, "allowance", toCommon(owner), toCommon(spender))
	if err != nil {
		return nil, err
	}
	return uint256At(output, 0, "allowance")
}

func (im *fungibleImpl) TransferFrom(ctx bCtx.Ctx, tkn, from, to domain.Address, amount *big.Int) error {
	return im.client.Send(ctx, toCommon(tkn), bAbi.ERC20TokenABI, "transferFrom", toCommon(from), toCommon(to), amount)
}

func (im *fungibleImpl) Transfer(ctx bCtx.Ctx, tkn, to domain.Address, amount *big.Int) error {
	return im.client.Send(ctx, toCommon(tkn), bAbi.ERC20TokenABI, "transfer", toCommon(to), amount)
}

func (im *fungibleImpl) Burn(ctx bCtx.Ctx, tkn domain.Address, amount *big.Int) error {
	return im.client.Send(ctx, toCommon(tkn), bAbi.ERC20TokenABI, "burn", amount)
}

// CanBurn probes the contract with a zero-amount burn. Contracts without a
// burn entrypoint revert on the unknown selector.
func (im *fungibleImpl) CanBurn(ctx bCtx.Ctx, tkn domain.Address) (bool, error) {
	_, err := im.client.Call(ctx, toCommon(tkn), bAbi.ERC20TokenABI, "burn", domain.Big0)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (im *fungibleImpl) IsContract(ctx bCtx.Ctx, addr domain.Address) (bool, error) {
	code, err := im.client.CodeAt(ctx, toCommon(addr))
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

func decimalsOf(ctx bCtx.Ctx, client chain.Client, tkn domain.Address) (int32, error) {
	output, err := client.Call(ctx, toCommon(tkn), bAbi.ERC20TokenABI, "decimals")
	if err != nil {
		return 0, err
	}
	if len(output) < 1 {
		return 0, xerrors.New("decimals returned nothing")
	}
	decimals, ok := output[0].(uint8)
	if !ok {
		return 0, xerrors.Errorf("decimals returned %T", output[0])
	}
	return int32(decimals), nil
}

func toCommon(addr domain.Address) common.Address {
	return common.HexToAddress(string(addr))
}

func uint256At(output []interface{}, i int, method string) (*big.Int, error) {
	if len(output) <= i {
		return nil, xerrors.Errorf("%s returned %d values", method, len(output))
	}
	value, ok := output[i].(*big.Int)
	if !ok {
		return nil, xerrors.Errorf("%s returned %T", method, output[i])
	}
	return value, nil
}
