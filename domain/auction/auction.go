package auction

import (
	"math/big"
	"time"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
)

type Status string

const (
	StatusCreated  Status = "created"
	StatusFinished Status = "finished"
)

const (
	// ConversionFeeMin/Max bound the buffer applied to venue quotes,
	// expressed as 100-199 meaning 1.00x-1.99x.
	ConversionFeeMin = 100
	ConversionFeeMax = 199

	// DefaultKeptPercentage is the share of a converted payment token the
	// auction retains instead of swapping, when not configured.
	DefaultKeptPercentage = 5

	// MinCoordinate and MaxCoordinate bound valid land coordinates.
	MinCoordinate = -150
	MaxCoordinate = 150
)

// Auction is the singleton auction state. All amounts are 18-decimal base
// units held as big ints.
type Auction struct {
	Owner   domain.Address
	Address domain.Address // custody account holding pulled funds

	BaseToken domain.Address

	StartTime time.Time
	EndTime   *time.Time
	Status    Status

	Curve *Curve

	LandsLimitPerBid    uint64
	GasPriceLimit       *big.Int
	ConversionFee       uint64
	TokenKeptPercentage uint64

	TotalManaBurned  *big.Int
	TotalLandsBidded uint64
	NextBidId        uint64
}

// Params carries everything needed to create the auction.
type Params struct {
	Owner               domain.Address
	Address             domain.Address
	BaseToken           domain.Address
	StartTime           time.Time
	Curve               []Breakpoint
	LandsLimitPerBid    uint64
	GasPriceLimit       *big.Int
	ConversionFee       uint64
	TokenKeptPercentage *uint64
}

// BidRequest is the input of a settlement attempt. GasPrice is the
// caller-supplied transaction gas price checked against the limit.
type BidRequest struct {
	Xs          []int32
	Ys          []int32
	Beneficiary domain.Address
	Token       domain.Address
	Caller      domain.Address
	GasPrice    *big.Int
}

// Bid is the receipt of a settled bid. It is not persisted beyond the events
// it emitted.
type Bid struct {
	Id           uint64
	Beneficiary  domain.Address
	Token        domain.Address
	Xs           []int32
	Ys           []int32
	PricePerLand *big.Int
	RequiredBase *big.Int
}

// Snapshot is the persisted form of the auction state, amounts as decimal
// strings for the document store.
type Snapshot struct {
	Owner            domain.Address `bson:"owner"`
	Status           Status         `bson:"status"`
	StartTime        time.Time      `bson:"startTime"`
	EndTime          *time.Time     `bson:"endTime,omitempty"`
	LandsLimitPerBid uint64         `bson:"landsLimitPerBid"`
	GasPriceLimit    string         `bson:"gasPriceLimit"`
	ConversionFee    uint64         `bson:"conversionFee"`
	TotalManaBurned  string         `bson:"totalManaBurned"`
	TotalLandsBidded uint64         `bson:"totalLandsBidded"`
	NextBidId        uint64         `bson:"nextBidId"`
}

// Repo persists auction snapshots for querying. The in-memory state owned by
// the usecase stays authoritative.
type Repo interface {
	Upsert(bCtx.Ctx, *Snapshot) error
	FindOne(bCtx.Ctx) (*Snapshot, error)
}

type UseCase interface {
	Get(bCtx.Ctx) (*Auction, error)
	CurrentPrice(bCtx.Ctx) (*big.Int, error)
	Bid(bCtx.Ctx, *BidRequest) (*Bid, error)
	Finish(bCtx.Ctx, domain.Address) error
	BurnFunds(bCtx.Ctx, domain.Address, domain.Address) error

	SetLandsLimitPerBid(bCtx.Ctx, domain.Address, uint64) error
	SetGasPriceLimit(bCtx.Ctx, domain.Address, *big.Int) error
	SetConversionFee(bCtx.Ctx, domain.Address, uint64) error
	SetDex(bCtx.Ctx, domain.Address, domain.Address) error

	Events(bCtx.Ctx, int, int) ([]*Record, error)
}
