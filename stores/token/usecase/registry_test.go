package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	"github.com/decentraland/land-auction/domain/token"
	mToken "github.com/decentraland/land-auction/domain/token/mocks"
	"github.com/decentraland/land-auction/stores/auction/repository"
	"github.com/decentraland/land-auction/stores/token/usecase"
)

const (
	owner    = domain.Address("0x00000000000000000000000000000000000000aa")
	custody  = domain.Address("0x00000000000000000000000000000000000000bb")
	payToken = domain.Address("0x00000000000000000000000000000000000000cc")
	target   = domain.Address("0x00000000000000000000000000000000000000dd")
)

type RegistryTestSuite struct {
	suite.Suite

	ctx      bCtx.Ctx
	repo     *mToken.Repo
	fungible *mToken.Fungible
	events   auction.EventLog
	u        token.UseCase
}

func (s *RegistryTestSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.repo = &mToken.Repo{}
	s.fungible = &mToken.Fungible{}
	s.events = repository.NewMemoryEventLog()
	s.u = usecase.NewRegistryUseCase(&usecase.RegistryUseCaseCfg{
		Owner:          owner,
		AuctionAddress: custody,
		Repo:           s.repo,
		Fungible:       s.fungible,
		EventLog:       s.events,
	})
}

func (s *RegistryTestSuite) forwardReq(tkn domain.Address) *token.AllowRequest {
	return &token.AllowRequest{
		Token:         tkn,
		Decimals:      18,
		ShouldForward: true,
		ForwardTarget: target,
	}
}

func (s *RegistryTestSuite) TestGet() {
	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil).Once()
	_, err := s.u.Get(s.ctx, payToken)
	s.Equal(domain.ErrTokenNotAllowed, err)

	s.repo.On("FindOne", mock.Anything, payToken).Return(&token.Policy{Token: payToken, Allowed: false}, nil).Once()
	_, err = s.u.Get(s.ctx, payToken)
	s.Equal(domain.ErrTokenNotAllowed, err)

	allowed := &token.Policy{Token: payToken, Decimals: 18, Allowed: true}
	s.repo.On("FindOne", mock.Anything, payToken).Return(allowed, nil).Once()
	policy, err := s.u.Get(s.ctx, payToken)
	s.NoError(err)
	s.Equal(allowed, policy)
}

func (s *RegistryTestSuite) TestAllow() {
	s.Equal(domain.ErrNotOwner, s.u.Allow(s.ctx, custody, s.forwardReq(payToken)))

	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(true, nil)
	s.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	s.Require().NoError(s.u.Allow(s.ctx, owner, s.forwardReq(payToken)))

	s.repo.AssertCalled(s.T(), "Upsert", mock.Anything, &token.Policy{
		Token:         payToken,
		Decimals:      18,
		ShouldForward: true,
		ForwardTarget: target,
		Allowed:       true,
	})

	records, err := s.events.List(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(auction.EventTokenAllowed, records[0].Name)
	payload := records[0].Payload.(auction.TokenAllowedEvent)
	s.Equal(payToken, payload.Token)
	s.True(payload.ShouldForwardTokens)
	s.Equal(target, payload.ForwardTarget)
}

func (s *RegistryTestSuite) TestAllowValidation() {
	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(true, nil)

	tests := []struct {
		desc   string
		mutate func(*token.AllowRequest)
		expErr error
	}{
		{
			desc:   "decimals too small",
			mutate: func(r *token.AllowRequest) { r.Decimals = 0 },
			expErr: domain.ErrInvalidDecimals,
		},
		{
			desc:   "decimals too large",
			mutate: func(r *token.AllowRequest) { r.Decimals = 19 },
			expErr: domain.ErrInvalidDecimals,
		},
		{
			desc:   "burn and forward together",
			mutate: func(r *token.AllowRequest) { r.ShouldBurn = true },
			expErr: domain.ErrInvalidTokenPolicy,
		},
		{
			desc:   "empty forward target",
			mutate: func(r *token.AllowRequest) { r.ForwardTarget = domain.EmptyAddress },
			expErr: domain.ErrInvalidForwardTarget,
		},
		{
			desc:   "forward target is the custody account",
			mutate: func(r *token.AllowRequest) { r.ForwardTarget = custody },
			expErr: domain.ErrInvalidForwardTarget,
		},
		{
			desc:   "forward target is the token itself",
			mutate: func(r *token.AllowRequest) { r.ForwardTarget = payToken },
			expErr: domain.ErrInvalidForwardTarget,
		},
	}
	for _, tc := range tests {
		req := s.forwardReq(payToken)
		tc.mutate(req)
		s.Equal(tc.expErr, s.u.Allow(s.ctx, owner, req), tc.desc)
	}

	s.repo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *RegistryTestSuite) TestAllowRejectsNonContract() {
	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(false, nil)
	s.Equal(domain.ErrTokenNotContract, s.u.Allow(s.ctx, owner, s.forwardReq(payToken)))
}

func (s *RegistryTestSuite) TestAllowChecksBurnCapability() {
	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(true, nil)
	s.fungible.On("CanBurn", mock.Anything, payToken).Return(false, nil)

	req := &token.AllowRequest{Token: payToken, Decimals: 18, ShouldBurn: true}
	s.Equal(domain.ErrBurnNotSupported, s.u.Allow(s.ctx, owner, req))
}

func (s *RegistryTestSuite) TestAllowAlreadyAllowed() {
	s.repo.On("FindOne", mock.Anything, payToken).Return(&token.Policy{Token: payToken, Allowed: true}, nil)
	s.Equal(domain.ErrTokenAlreadyAllowed, s.u.Allow(s.ctx, owner, s.forwardReq(payToken)))
}

// a disabled token can be re-allowed and gets a fresh configuration
func (s *RegistryTestSuite) TestReallowResetsPolicy() {
	stale := &token.Policy{Token: payToken, Decimals: 6, ShouldBurn: true, Allowed: false}
	s.repo.On("FindOne", mock.Anything, payToken).Return(stale, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(true, nil)
	s.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	s.Require().NoError(s.u.Allow(s.ctx, owner, s.forwardReq(payToken)))

	s.repo.AssertCalled(s.T(), "Upsert", mock.Anything, &token.Policy{
		Token:         payToken,
		Decimals:      18,
		ShouldForward: true,
		ForwardTarget: target,
		Allowed:       true,
	})
}

func (s *RegistryTestSuite) TestAllowManyIsAtomic() {
	other := domain.Address("0x00000000000000000000000000000000000000ee")
	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil)
	s.repo.On("FindOne", mock.Anything, other).Return(nil, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(true, nil)
	s.fungible.On("IsContract", mock.Anything, other).Return(true, nil)

	bad := s.forwardReq(other)
	bad.Decimals = 0
	err := s.u.AllowMany(s.ctx, owner, []*token.AllowRequest{s.forwardReq(payToken), bad})
	s.Equal(domain.ErrInvalidDecimals, err)
	s.repo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)

	records, lerr := s.events.List(s.ctx, 0, 0)
	s.NoError(lerr)
	s.Empty(records)
}

func (s *RegistryTestSuite) TestAllowManyRejectsDuplicates() {
	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(true, nil)

	err := s.u.AllowMany(s.ctx, owner, []*token.AllowRequest{s.forwardReq(payToken), s.forwardReq(payToken)})
	s.Equal(domain.ErrTokenAlreadyAllowed, err)
	s.repo.AssertNotCalled(s.T(), "Upsert", mock.Anything, mock.Anything)
}

func (s *RegistryTestSuite) TestAllowManyRegistersAll() {
	other := domain.Address("0x00000000000000000000000000000000000000ee")
	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil)
	s.repo.On("FindOne", mock.Anything, other).Return(nil, nil)
	s.fungible.On("IsContract", mock.Anything, payToken).Return(true, nil)
	s.fungible.On("IsContract", mock.Anything, other).Return(true, nil)
	s.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	s.Require().NoError(s.u.AllowMany(s.ctx, owner, []*token.AllowRequest{s.forwardReq(payToken), s.forwardReq(other)}))

	records, err := s.events.List(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Len(records, 2)
}

func (s *RegistryTestSuite) TestDisable() {
	s.Equal(domain.ErrNotOwner, s.u.Disable(s.ctx, custody, payToken))

	s.repo.On("FindOne", mock.Anything, payToken).Return(nil, nil).Once()
	s.Equal(domain.ErrTokenNotAllowed, s.u.Disable(s.ctx, owner, payToken))

	policy := &token.Policy{Token: payToken, Decimals: 18, Allowed: true}
	s.repo.On("FindOne", mock.Anything, payToken).Return(policy, nil).Once()
	s.repo.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	s.Require().NoError(s.u.Disable(s.ctx, owner, payToken))
	s.False(policy.Allowed)

	records, err := s.events.List(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(auction.EventTokenDisabled, records[0].Name)
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
