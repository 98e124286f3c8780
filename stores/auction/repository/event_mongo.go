package repository

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/xerrors"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	"github.com/decentraland/land-auction/service/query"
)

// eventDoc is the stored envelope. The payload keeps the event's own field
// names so indexers reading the collection see the exact wire format.
type eventDoc struct {
	Seq       uint64            `bson:"seq"`
	Name      auction.EventName `bson:"name"`
	Caller    domain.Address    `bson:"caller"`
	EmittedAt time.Time         `bson:"emittedAt"`
	Payload   bson.Raw          `bson:"payload"`
}

type eventMongoLog struct {
	mu  sync.Mutex
	q   query.Mongo
	seq uint64
	now func() time.Time
}

// NewEventLog appends audit events to mongo. The sequence resumes from the
// highest stored entry.
func NewEventLog(ctx bCtx.Ctx, q query.Mongo) (auction.EventLog, error) {
	l := &eventMongoLog{q: q, now: time.Now}
	last := []*eventDoc{}
	if err := q.Search(ctx, domain.TableAuctionEvents, 0, 1, "-seq", bson.M{}, &last); err != nil {
		return nil, xerrors.Errorf("load last event seq: %w", err)
	}
	if len(last) > 0 {
		l.seq = last[0].Seq + 1
	}
	return l, nil
}

func (l *eventMongoLog) Append(ctx bCtx.Ctx, caller domain.Address, events ...auction.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	docs := make([]interface{}, 0, len(events))
	for i, ev := range events {
		payload, err := bson.Marshal(ev)
		if err != nil {
			return xerrors.Errorf("marshal %s payload: %w", ev.Name(), err)
		}
		docs = append(docs, &eventDoc{
			Seq:       l.seq + uint64(i),
			Name:      ev.Name(),
			Caller:    caller,
			EmittedAt: now,
			Payload:   payload,
		})
	}
	// the batch lands whole or not at all. An ordered InsertMany can still
	// persist a prefix before the failing document, so a failed batch sweeps
	// its own sequence range before reporting the error
	if err := l.q.InsertMany(ctx, domain.TableAuctionEvents, docs); err != nil {
		ctx.WithField("err", err).Error("q.InsertMany failed")
		cleanup := bson.M{"seq": bson.M{"$gte": l.seq}}
		if cerr := l.q.RemoveMany(ctx, domain.TableAuctionEvents, cleanup); cerr != nil {
			ctx.WithField("err", cerr).Error("q.RemoveMany failed, skipping orphaned seq range")
			// leftovers may hold these numbers, burn them so no seq is ever reused
			l.seq += uint64(len(events))
		}
		return err
	}
	l.seq += uint64(len(events))
	return nil
}

func (l *eventMongoLog) List(ctx bCtx.Ctx, offset, limit int) ([]*auction.Record, error) {
	if offset < 0 {
		offset = 0
	}
	docs := []*eventDoc{}
	if err := l.q.Search(ctx, domain.TableAuctionEvents, offset, limit, "seq", bson.M{}, &docs); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	records := make([]*auction.Record, 0, len(docs))
	for _, doc := range docs {
		payload, err := decodePayload(doc.Name, doc.Payload)
		if err != nil {
			return nil, err
		}
		records = append(records, &auction.Record{
			Seq:       doc.Seq,
			Name:      doc.Name,
			Caller:    doc.Caller,
			EmittedAt: doc.EmittedAt,
			Payload:   payload,
		})
	}
	return records, nil
}

func decodePayload(name auction.EventName, raw bson.Raw) (auction.Event, error) {
	unmarshal := func(ev auction.Event) (auction.Event, error) {
		if err := bson.Unmarshal(raw, ev); err != nil {
			return nil, xerrors.Errorf("unmarshal %s payload: %w", name, err)
		}
		return ev, nil
	}
	switch name {
	case auction.EventAuctionCreated:
		return unmarshal(&auction.AuctionCreatedEvent{})
	case auction.EventAuctionFinished:
		return unmarshal(&auction.AuctionFinishedEvent{})
	case auction.EventLandsLimitPerBidChanged:
		return unmarshal(&auction.LandsLimitPerBidChangedEvent{})
	case auction.EventGasPriceLimitChanged:
		return unmarshal(&auction.GasPriceLimitChangedEvent{})
	case auction.EventTokenAllowed:
		return unmarshal(&auction.TokenAllowedEvent{})
	case auction.EventTokenDisabled:
		return unmarshal(&auction.TokenDisabledEvent{})
	case auction.EventDexChanged:
		return unmarshal(&auction.DexChangedEvent{})
	case auction.EventConversionFeeChanged:
		return unmarshal(&auction.ConversionFeeChangedEvent{})
	case auction.EventBidConversion:
		return unmarshal(&auction.BidConversionEvent{})
	case auction.EventTokenBurned:
		return unmarshal(&auction.TokenBurnedEvent{})
	case auction.EventTokenTransferred:
		return unmarshal(&auction.TokenTransferredEvent{})
	case auction.EventBidSuccessful:
		return unmarshal(&auction.BidSuccessfulEvent{})
	}
	return nil, xerrors.Errorf("unknown event %s", name)
}
