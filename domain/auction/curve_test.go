package auction_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
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

func TestNewCurve(t *testing.T) {
	tests := []struct {
		desc   string
		points []auction.Breakpoint
		expErr error
	}{
		{
			desc:   "launch curve",
			points: launchPoints(),
			expErr: nil,
		},
		{
			desc:   "single point",
			points: []auction.Breakpoint{{At: 0, Price: mana(10)}},
			expErr: domain.ErrInvalidCurve,
		},
		{
			desc: "first offset not zero",
			points: []auction.Breakpoint{
				{At: time.Hour, Price: mana(10)},
				{At: 48 * time.Hour, Price: mana(1)},
			},
			expErr: domain.ErrInvalidCurve,
		},
		{
			desc: "offsets not increasing",
			points: []auction.Breakpoint{
				{At: 0, Price: mana(10)},
				{At: 48 * time.Hour, Price: mana(5)},
				{At: 48 * time.Hour, Price: mana(1)},
			},
			expErr: domain.ErrInvalidCurve,
		},
		{
			desc: "price increases",
			points: []auction.Breakpoint{
				{At: 0, Price: mana(10)},
				{At: 24 * time.Hour, Price: mana(20)},
				{At: 48 * time.Hour, Price: mana(1)},
			},
			expErr: domain.ErrInvalidCurve,
		},
		{
			desc: "flat curve",
			points: []auction.Breakpoint{
				{At: 0, Price: mana(10)},
				{At: 48 * time.Hour, Price: mana(10)},
			},
			expErr: domain.ErrInvalidCurve,
		},
		{
			desc: "zero floor",
			points: []auction.Breakpoint{
				{At: 0, Price: mana(10)},
				{At: 48 * time.Hour, Price: big.NewInt(0)},
			},
			expErr: domain.ErrInvalidCurve,
		},
		{
			desc: "too short",
			points: []auction.Breakpoint{
				{At: 0, Price: mana(10)},
				{At: 12 * time.Hour, Price: mana(1)},
			},
			expErr: domain.ErrInvalidCurve,
		},
	}
	for _, tc := range tests {
		_, err := auction.NewCurve(tc.points)
		assert.Equal(t, tc.expErr, err, tc.desc)
	}
}

func TestPriceAt(t *testing.T) {
	curve, err := auction.NewCurve(launchPoints())
	require.NoError(t, err)

	tests := []struct {
		desc     string
		elapsed  time.Duration
		expPrice *big.Int
	}{
		{
			desc:     "before start clamps to initial price",
			elapsed:  -time.Hour,
			expPrice: mana(200000),
		},
		{
			desc:     "at start",
			elapsed:  0,
			expPrice: mana(200000),
		},
		{
			desc:     "halfway through first segment",
			elapsed:  12 * time.Hour,
			expPrice: mana(150000),
		},
		{
			desc:     "breakpoint is exact",
			elapsed:  24 * time.Hour,
			expPrice: mana(100000),
		},
		{
			desc:     "halfway through second segment",
			elapsed:  36 * time.Hour,
			expPrice: mana(75000),
		},
		{
			desc:     "halfway through third segment",
			elapsed:  (4*24 + 12) * time.Hour,
			expPrice: mana(37500),
		},
		{
			desc:     "halfway through last segment",
			elapsed:  11 * 24 * time.Hour,
			expPrice: mana(13000),
		},
		{
			desc:     "at the end",
			elapsed:  15 * 24 * time.Hour,
			expPrice: mana(1000),
		},
		{
			desc:     "past the end clamps to floor",
			elapsed:  30 * 24 * time.Hour,
			expPrice: mana(1000),
		},
	}
	for _, tc := range tests {
		assert.Equal(t, 0, tc.expPrice.Cmp(curve.PriceAt(tc.elapsed)), tc.desc)
	}
}

func TestPriceNeverIncreases(t *testing.T) {
	curve, err := auction.NewCurve(launchPoints())
	require.NoError(t, err)

	prev := curve.PriceAt(0)
	for elapsed := time.Hour; elapsed <= 16*24*time.Hour; elapsed += time.Hour {
		price := curve.PriceAt(elapsed)
		assert.True(t, price.Cmp(prev) <= 0, "price increased at %s", elapsed)
		prev = price
	}
}

func TestCurveAccessors(t *testing.T) {
	curve, err := auction.NewCurve(launchPoints())
	require.NoError(t, err)

	assert.Equal(t, 15*24*time.Hour, curve.Duration())
	assert.Equal(t, 0, mana(200000).Cmp(curve.InitialPrice()))
	assert.Equal(t, 0, mana(1000).Cmp(curve.FloorPrice()))
	assert.Len(t, curve.Breakpoints(), 5)
}
