package auction

import (
	"math/big"
	"time"

	"github.com/decentraland/land-auction/domain"
)

// Breakpoint is a point on the descending price curve. At is the offset from
// the auction start, Price the land price in 18-decimal base units.
type Breakpoint struct {
	At    time.Duration
	Price *big.Int
}

// Curve is a piecewise-linear descending price curve. The first breakpoint is
// anchored at offset zero and prices never increase along the curve.
type Curve struct {
	points []Breakpoint
}

const MinCurveDuration = 24 * time.Hour

// NewCurve validates the breakpoints and builds a curve. Offsets must be
// strictly increasing starting at zero, prices non-increasing with
// points[0].Price > points[last].Price > 0, and the curve must span at least
// one day.
func NewCurve(points []Breakpoint) (*Curve, error) {
	if len(points) < 2 {
		return nil, domain.ErrInvalidCurve
	}
	if points[0].At != 0 {
		return nil, domain.ErrInvalidCurve
	}
	for i, p := range points {
		if p.Price == nil || p.Price.Sign() <= 0 {
			return nil, domain.ErrInvalidCurve
		}
		if i == 0 {
			continue
		}
		if points[i-1].At >= p.At {
			return nil, domain.ErrInvalidCurve
		}
		if points[i-1].Price.Cmp(p.Price) < 0 {
			return nil, domain.ErrInvalidCurve
		}
	}
	first, last := points[0], points[len(points)-1]
	if first.Price.Cmp(last.Price) <= 0 {
		return nil, domain.ErrInvalidCurve
	}
	if last.At-first.At < MinCurveDuration {
		return nil, domain.ErrInvalidCurve
	}
	cp := make([]Breakpoint, len(points))
	copy(cp, points)
	return &Curve{points: cp}, nil
}

// PriceAt interpolates the price for the given elapsed time since start.
// Before the first breakpoint it returns the initial price, past the last one
// the floor price.
func (c *Curve) PriceAt(elapsed time.Duration) *big.Int {
	if elapsed <= c.points[0].At {
		return new(big.Int).Set(c.points[0].Price)
	}
	last := c.points[len(c.points)-1]
	if elapsed >= last.At {
		return new(big.Int).Set(last.Price)
	}
	i := 0
	for ; i < len(c.points)-1; i++ {
		if elapsed < c.points[i+1].At {
			break
		}
	}
	lo, hi := c.points[i], c.points[i+1]

	// price = lo.Price - (lo.Price - hi.Price) * (elapsed - lo.At) / (hi.At - lo.At)
	// multiply before divide, prices up to ~2e23 need big.Int here
	drop := new(big.Int).Sub(lo.Price, hi.Price)
	drop.Mul(drop, big.NewInt(int64((elapsed-lo.At)/time.Second)))
	drop.Quo(drop, big.NewInt(int64((hi.At-lo.At)/time.Second)))
	return new(big.Int).Sub(lo.Price, drop)
}

// Duration is the offset of the last breakpoint.
func (c *Curve) Duration() time.Duration {
	return c.points[len(c.points)-1].At
}

// InitialPrice is the price at offset zero.
func (c *Curve) InitialPrice() *big.Int {
	return new(big.Int).Set(c.points[0].Price)
}

// FloorPrice is the price once the curve is exhausted.
func (c *Curve) FloorPrice() *big.Int {
	return new(big.Int).Set(c.points[len(c.points)-1].Price)
}

// Breakpoints returns a copy of the curve's breakpoints.
func (c *Curve) Breakpoints() []Breakpoint {
	cp := make([]Breakpoint, len(c.points))
	copy(cp, c.points)
	return cp
}
