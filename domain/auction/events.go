package auction

import (
	"time"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
)

// The audit log is the only externally observable record of settlement
// internals. Field names and ordering are fixed for downstream indexers.

type EventName string

const (
	EventAuctionCreated          EventName = "AuctionCreated"
	EventAuctionFinished         EventName = "AuctionFinished"
	EventLandsLimitPerBidChanged EventName = "LandsLimitPerBidChanged"
	EventGasPriceLimitChanged    EventName = "GasPriceLimitChanged"
	EventTokenAllowed            EventName = "TokenAllowed"
	EventTokenDisabled           EventName = "TokenDisabled"
	EventDexChanged              EventName = "DexChanged"
	EventConversionFeeChanged    EventName = "ConversionFeeChanged"
	EventBidConversion           EventName = "BidConversion"
	EventTokenBurned             EventName = "TokenBurned"
	EventTokenTransferred        EventName = "TokenTransferred"
	EventBidSuccessful           EventName = "BidSuccessful"
)

// Event is implemented by every audit log payload.
type Event interface {
	Name() EventName
}

// Record is an appended event with its envelope.
type Record struct {
	Seq       uint64         `bson:"seq" json:"seq"`
	Name      EventName      `bson:"name" json:"name"`
	Caller    domain.Address `bson:"caller" json:"caller"`
	EmittedAt time.Time      `bson:"emittedAt" json:"emittedAt"`
	Payload   Event          `bson:"payload" json:"payload"`
}

// EventLog is the append-only durable record. Append commits all events or
// none of them.
type EventLog interface {
	Append(bCtx.Ctx, domain.Address, ...Event) error
	List(bCtx.Ctx, int, int) ([]*Record, error)
}

type AuctionCreatedEvent struct {
	Caller       domain.Address `bson:"_caller" json:"_caller"`
	StartTime    int64          `bson:"_startTime" json:"_startTime"`
	Duration     int64          `bson:"_duration" json:"_duration"`
	InitialPrice string         `bson:"_initialPrice" json:"_initialPrice"`
	EndPrice     string         `bson:"_endPrice" json:"_endPrice"`
}

func (AuctionCreatedEvent) Name() EventName { return EventAuctionCreated }

type AuctionFinishedEvent struct {
	Caller domain.Address `bson:"_caller" json:"_caller"`
	Time   int64          `bson:"_time" json:"_time"`
	Price  string         `bson:"_price" json:"_price"`
}

func (AuctionFinishedEvent) Name() EventName { return EventAuctionFinished }

type LandsLimitPerBidChangedEvent struct {
	Caller   domain.Address `bson:"_caller" json:"_caller"`
	OldLimit uint64         `bson:"_oldLandsLimitPerBid" json:"_oldLandsLimitPerBid"`
	Limit    uint64         `bson:"_landsLimitPerBid" json:"_landsLimitPerBid"`
}

func (LandsLimitPerBidChangedEvent) Name() EventName { return EventLandsLimitPerBidChanged }

type GasPriceLimitChangedEvent struct {
	Caller   domain.Address `bson:"_caller" json:"_caller"`
	OldLimit string         `bson:"_oldGasPriceLimit" json:"_oldGasPriceLimit"`
	Limit    string         `bson:"_gasPriceLimit" json:"_gasPriceLimit"`
}

func (GasPriceLimitChangedEvent) Name() EventName { return EventGasPriceLimitChanged }

type TokenAllowedEvent struct {
	Caller              domain.Address `bson:"_caller" json:"_caller"`
	Token               domain.Address `bson:"_address" json:"_address"`
	Decimals            int32          `bson:"_decimals" json:"_decimals"`
	ShouldBurnTokens    bool           `bson:"_shouldBurnTokens" json:"_shouldBurnTokens"`
	ShouldForwardTokens bool           `bson:"_shouldForwardTokens" json:"_shouldForwardTokens"`
	ForwardTarget       domain.Address `bson:"_forwardTarget" json:"_forwardTarget"`
}

func (TokenAllowedEvent) Name() EventName { return EventTokenAllowed }

type TokenDisabledEvent struct {
	Caller domain.Address `bson:"_caller" json:"_caller"`
	Token  domain.Address `bson:"_address" json:"_address"`
}

func (TokenDisabledEvent) Name() EventName { return EventTokenDisabled }

type DexChangedEvent struct {
	Caller domain.Address `bson:"_caller" json:"_caller"`
	OldDex domain.Address `bson:"_oldDex" json:"_oldDex"`
	Dex    domain.Address `bson:"_dex" json:"_dex"`
}

func (DexChangedEvent) Name() EventName { return EventDexChanged }

type ConversionFeeChangedEvent struct {
	Caller domain.Address `bson:"_caller" json:"_caller"`
	OldFee uint64         `bson:"_oldConversionFee" json:"_oldConversionFee"`
	Fee    uint64         `bson:"_conversionFee" json:"_conversionFee"`
}

func (ConversionFeeChangedEvent) Name() EventName { return EventConversionFeeChanged }

// BidConversionEvent records a foreign-token settlement. RequiredBalance is
// the full amount pulled from the bidder, AmountOfToken the share handed to
// the venue, the difference is the retained share.
type BidConversionEvent struct {
	BidId              uint64         `bson:"_bidId" json:"_bidId"`
	Token              domain.Address `bson:"_token" json:"_token"`
	RequiredManaAmount string         `bson:"_requiredManaAmount" json:"_requiredManaAmount"`
	AmountOfToken      string         `bson:"_amountOfTokenConverted" json:"_amountOfTokenConverted"`
	RequiredBalance    string         `bson:"_requiredTokenBalance" json:"_requiredTokenBalance"`
}

func (BidConversionEvent) Name() EventName { return EventBidConversion }

type TokenBurnedEvent struct {
	BidId uint64         `bson:"_bidId" json:"_bidId"`
	Token domain.Address `bson:"_token" json:"_token"`
	Total string         `bson:"_total" json:"_total"`
}

func (TokenBurnedEvent) Name() EventName { return EventTokenBurned }

type TokenTransferredEvent struct {
	BidId uint64         `bson:"_bidId" json:"_bidId"`
	Token domain.Address `bson:"_token" json:"_token"`
	To    domain.Address `bson:"_to" json:"_to"`
	Total string         `bson:"_total" json:"_total"`
}

func (TokenTransferredEvent) Name() EventName { return EventTokenTransferred }

type BidSuccessfulEvent struct {
	BidId        uint64         `bson:"_bidId" json:"_bidId"`
	Beneficiary  domain.Address `bson:"_beneficiary" json:"_beneficiary"`
	Token        domain.Address `bson:"_token" json:"_token"`
	PricePerLand string         `bson:"_pricePerLandInMana" json:"_pricePerLandInMana"`
	ManaToBurn   string         `bson:"_manaAmountToBurn" json:"_manaAmountToBurn"`
	Xs           []int32        `bson:"_xs" json:"_xs"`
	Ys           []int32        `bson:"_ys" json:"_ys"`
}

func (BidSuccessfulEvent) Name() EventName { return EventBidSuccessful }
