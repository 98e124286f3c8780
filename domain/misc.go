package domain

import (
	"math/big"
	"strings"
)

var (
	Big0   = big.NewInt(0)
	Big1   = big.NewInt(1)
	Big10  = big.NewInt(10)
	Big100 = big.NewInt(100)
)

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.Equals(EmptyAddress)
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type Table string

const (
	TableAuctions      Table = "auctions"
	TableAuctionEvents Table = "auction_events"
	TableTokenPolicies Table = "token_policies"
)

// Scale18 scales an amount expressed in a token's native unit up to the
// 18-decimal base unit.
func Scale18(amount *big.Int, decimals int32) *big.Int {
	exp := new(big.Int).Exp(Big10, big.NewInt(int64(18-decimals)), nil)
	return new(big.Int).Mul(amount, exp)
}

// ScaleNativeCeil scales an 18-decimal amount down to a token's native unit,
// rounding up so the holder side never under-collects.
func ScaleNativeCeil(amount *big.Int, decimals int32) *big.Int {
	exp := new(big.Int).Exp(Big10, big.NewInt(int64(18-decimals)), nil)
	return CeilDiv(amount, exp)
}

// CeilDiv divides rounding towards positive infinity.
func CeilDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, Big1)
	}
	return q
}
