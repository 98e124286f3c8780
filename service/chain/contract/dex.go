package contract

import (
	"math/big"

	"golang.org/x/xerrors"

	bAbi "github.com/decentraland/land-auction/base/abi"
	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/dex"
	"github.com/decentraland/land-auction/service/chain"
)

// rates come back normalized to 18 decimals regardless of token decimals
var ratePrecision = new(big.Int).Exp(domain.Big10, big.NewInt(18), nil)

type dexImpl struct {
	client chain.Client
	addr   domain.Address
}

func NewDex(client chain.Client, addr domain.Address) dex.Dex {
	return &dexImpl{client: client, addr: addr}
}

func (im *dexImpl) Address() domain.Address {
	return im.addr
}

// Quote inverts the venue's expected rate to find the source amount that
// realizes toAmount, rounding up so the bidder is quoted enough.
func (im *dexImpl) Quote(ctx bCtx.Ctx, from, to domain.Address, toAmount *big.Int) (*big.Int, error) {
	fromDecimals, err := decimalsOf(ctx, im.client, from)
	if err != nil {
		return nil, xerrors.Errorf("decimals of %s: %w", from, err)
	}
	toDecimals, err := decimalsOf(ctx, im.client, to)
	if err != nil {
		return nil, xerrors.Errorf("decimals of %s: %w", to, err)
	}
	oneFrom := new(big.Int).Exp(domain.Big10, big.NewInt(int64(fromDecimals)), nil)
	rate, err := im.expectedRate(ctx, from, to, oneFrom)
	if err != nil {
		return nil, err
	}
	if rate.Sign() == 0 {
		return nil, xerrors.Errorf("no rate for %s -> %s", from, to)
	}
	// toAmount = fromAmount * rate * 10^toDec / (10^18 * 10^fromDec)
	num := new(big.Int).Mul(toAmount, ratePrecision)
	num.Mul(num, oneFrom)
	den := new(big.Int).Exp(domain.Big10, big.NewInt(int64(toDecimals)), nil)
	den.Mul(den, rate)
	return domain.CeilDiv(num, den), nil
}

// Convert simulates the swap first to learn the realized amount, then submits
// it. The venue itself enforces minReturn.
func (im *dexImpl) Convert(ctx bCtx.Ctx, from, to domain.Address, fromAmount, minReturn *big.Int) (*big.Int, error) {
	args := []interface{}{toCommon(from), toCommon(to), fromAmount, minReturn}
	output, err := im.client.Call(ctx, toCommon(im.addr), bAbi.TokenConverterABI, "convert", args...)
	if err != nil {
		return nil, xerrors.Errorf("simulate convert: %w", err)
	}
	got, err := uint256At(output, 0, "convert")
	if err != nil {
		return nil, err
	}
	if err := im.client.Send(ctx, toCommon(im.addr), bAbi.TokenConverterABI, "convert", args...); err != nil {
		return nil, err
	}
	return got, nil
}

func (im *dexImpl) expectedRate(ctx bCtx.Ctx, from, to domain.Address, fromAmount *big.Int) (*big.Int, error) {
	output, err := im.client.Call(ctx, toCommon(im.addr), bAbi.TokenConverterABI, "getExpectedRate", toCommon(from), toCommon(to), fromAmount)
	if err != nil {
		return nil, xerrors.Errorf("getExpectedRate: %w", err)
	}
	return uint256At(output, 0, "getExpectedRate")
}

type factoryImpl struct {
	client chain.Client
}

func NewDexFactory(client chain.Client) dex.Factory {
	return &factoryImpl{client: client}
}

func (im *factoryImpl) Make(ctx bCtx.Ctx, addr domain.Address) (dex.Dex, error) {
	code, err := im.client.CodeAt(ctx, toCommon(addr))
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, domain.ErrTokenNotContract
	}
	return NewDex(im.client, addr), nil
}
