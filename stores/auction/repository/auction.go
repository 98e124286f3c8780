package repository

import (
	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	"github.com/decentraland/land-auction/service/query"
)

type auctionMongoRepo struct {
	q query.Mongo
}

// NewAuctionRepo persists the singleton auction snapshot.
func NewAuctionRepo(q query.Mongo) auction.Repo {
	return &auctionMongoRepo{q: q}
}

func (r *auctionMongoRepo) Upsert(ctx bCtx.Ctx, snap *auction.Snapshot) error {
	selector := map[string]interface{}{"owner": snap.Owner}
	if err := r.q.Upsert(ctx, domain.TableAuctions, selector, snap); err != nil {
		ctx.WithField("err", err).Error("q.Upsert failed")
		return err
	}
	return nil
}

func (r *auctionMongoRepo) FindOne(ctx bCtx.Ctx) (*auction.Snapshot, error) {
	snap := &auction.Snapshot{}
	if err := r.q.FindOne(ctx, domain.TableAuctions, map[string]interface{}{}, snap); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return snap, nil
}
