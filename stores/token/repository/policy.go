package repository

import (
	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/base/database/mongoclient"
	"github.com/decentraland/land-auction/base/log"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/token"
	"github.com/decentraland/land-auction/service/query"
)

type policyMongoRepo struct {
	q query.Mongo
}

func NewPolicyRepo(q query.Mongo) token.Repo {
	return &policyMongoRepo{q: q}
}

func (r *policyMongoRepo) FindOne(ctx bCtx.Ctx, tkn domain.Address) (*token.Policy, error) {
	policy := &token.Policy{}
	if qry, err := mongoclient.MakeBsonM(&token.Id{Token: tkn.ToLower()}); err != nil {
		ctx.WithField("err", err).Error("mongoclient.MakeBsonM failed")
		return nil, err
	} else if err := r.q.FindOne(ctx, domain.TableTokenPolicies, qry, policy); err != nil && err != query.ErrNotFound {
		ctx.WithField("err", err).Error("q.FindOne failed")
		return nil, err
	} else if err == query.ErrNotFound {
		return nil, nil
	}
	return policy, nil
}

func (r *policyMongoRepo) Upsert(ctx bCtx.Ctx, policy *token.Policy) error {
	selector, err := mongoclient.MakeBsonM(policy.ToId())
	if err != nil {
		ctx.WithField("err", err).Error("failed to make bson.M")
		return err
	}
	if err := r.q.Upsert(ctx, domain.TableTokenPolicies, selector, policy); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  policy.ToId(),
		}).Error("failed to update")
		return err
	}
	return nil
}
