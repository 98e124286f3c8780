package http

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/base/delivery"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	"github.com/decentraland/land-auction/domain/token"
	"github.com/decentraland/land-auction/middleware"
	authMiddleware "github.com/decentraland/land-auction/stores/auth/delivery/http/middleware"
)

type handler struct {
	au auction.UseCase
	tu token.UseCase
}

// New registers the auction and payment token routes.
func New(e *echo.Echo, au auction.UseCase, tu token.UseCase, authMiddleware *authMiddleware.AuthMiddleware) {
	h := &handler{
		au: au,
		tu: tu,
	}

	g := e.Group("/auction")
	g.GET("", h.getAuction)
	g.GET("/price", h.getCurrentPrice)
	g.GET("/events", h.getEvents)
	g.POST("/bid", h.bid, authMiddleware.Auth())
	g.POST("/finish", h.finish, authMiddleware.Auth())
	g.POST("/burn-funds", h.burnFunds, authMiddleware.Auth())
	g.PATCH("/lands-limit", h.setLandsLimit, authMiddleware.Auth())
	g.PATCH("/gas-price-limit", h.setGasPriceLimit, authMiddleware.Auth())
	g.PATCH("/conversion-fee", h.setConversionFee, authMiddleware.Auth())
	g.PATCH("/dex", h.setDex, authMiddleware.Auth())

	t := e.Group("/tokens")
	t.GET("/:token", h.getToken, middleware.IsValidAddress("token"))
	t.POST("", h.allowTokens, authMiddleware.Auth())
	t.DELETE("/:token", h.disableToken, middleware.IsValidAddress("token"), authMiddleware.Auth())
}

type auctionView struct {
	Owner            domain.Address  `json:"owner"`
	Status           auction.Status  `json:"status"`
	StartTime        int64           `json:"startTime"`
	EndTime          *int64          `json:"endTime,omitempty"`
	InitialPrice     decimal.Decimal `json:"initialPrice"`
	FloorPrice       decimal.Decimal `json:"endPrice"`
	Duration         int64           `json:"duration"`
	LandsLimitPerBid uint64          `json:"landsLimitPerBid"`
	GasPriceLimit    string          `json:"gasPriceLimit"`
	ConversionFee    uint64          `json:"conversionFee"`
	TotalManaBurned  decimal.Decimal `json:"totalManaBurned"`
	TotalLandsBidded uint64          `json:"totalLandsBidded"`
	NextBidId        uint64          `json:"nextBidId"`
}

func (h *handler) getAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	a, err := h.au.Get(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	view := &auctionView{
		Owner:            a.Owner,
		Status:           a.Status,
		StartTime:        a.StartTime.Unix(),
		InitialPrice:     toUnit(a.Curve.InitialPrice()),
		FloorPrice:       toUnit(a.Curve.FloorPrice()),
		Duration:         int64(a.Curve.Duration().Seconds()),
		LandsLimitPerBid: a.LandsLimitPerBid,
		GasPriceLimit:    a.GasPriceLimit.String(),
		ConversionFee:    a.ConversionFee,
		TotalManaBurned:  toUnit(a.TotalManaBurned),
		TotalLandsBidded: a.TotalLandsBidded,
		NextBidId:        a.NextBidId,
	}
	if a.EndTime != nil {
		end := a.EndTime.Unix()
		view.EndTime = &end
	}
	return delivery.MakeJsonResp(c, http.StatusOK, view)
}

func (h *handler) getCurrentPrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	price, err := h.au.CurrentPrice(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	res := struct {
		Price     decimal.Decimal `json:"price"`
		PriceInWei string         `json:"priceInWei"`
	}{
		Price:      toUnit(price),
		PriceInWei: price.String(),
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getEvents(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Offset int `query:"offset" validate:"gte=0"`
		Limit  int `query:"limit" validate:"gte=0,lte=500"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	records, err := h.au.Events(ctx, p.Offset, p.Limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, records)
}

func (h *handler) bid(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type params struct {
		Xs          []int32        `json:"xs"`
		Ys          []int32        `json:"ys"`
		Beneficiary domain.Address `json:"beneficiary"`
		Token       domain.Address `json:"token"`
		GasPrice    string         `json:"gasPrice"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	gasPrice, ok := new(big.Int).SetString(p.GasPrice, 10)
	if !ok {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	bid, err := h.au.Bid(ctx, &auction.BidRequest{
		Xs:          p.Xs,
		Ys:          p.Ys,
		Beneficiary: p.Beneficiary,
		Token:       p.Token,
		Caller:      address,
		GasPrice:    gasPrice,
	})
	if err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}

	res := struct {
		Id           uint64          `json:"id"`
		Beneficiary  domain.Address  `json:"beneficiary"`
		Token        domain.Address  `json:"token"`
		Xs           []int32         `json:"xs"`
		Ys           []int32         `json:"ys"`
		PricePerLand decimal.Decimal `json:"pricePerLand"`
		RequiredBase decimal.Decimal `json:"requiredBase"`
	}{
		Id:           bid.Id,
		Beneficiary:  bid.Beneficiary,
		Token:        bid.Token,
		Xs:           bid.Xs,
		Ys:           bid.Ys,
		PricePerLand: toUnit(bid.PricePerLand),
		RequiredBase: toUnit(bid.RequiredBase),
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *handler) finish(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	if err := h.au.Finish(ctx, address); err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) burnFunds(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type params struct {
		Token domain.Address `json:"token"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.au.BurnFunds(ctx, address, p.Token); err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) setLandsLimit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type params struct {
		Limit uint64 `json:"limit"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.au.SetLandsLimitPerBid(ctx, address, p.Limit); err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) setGasPriceLimit(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type params struct {
		Limit string `json:"limit"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	limit, ok := new(big.Int).SetString(p.Limit, 10)
	if !ok {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.au.SetGasPriceLimit(ctx, address, limit); err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) setConversionFee(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type params struct {
		Fee uint64 `json:"fee"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.au.SetConversionFee(ctx, address, p.Fee); err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) setDex(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type params struct {
		Dex domain.Address `json:"dex"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.au.SetDex(ctx, address, p.Dex); err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) getToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	policy, err := h.tu.Get(ctx, domain.Address(c.Param("token")))
	if err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, policy)
}

// allowTokens takes parallel arrays so a batch mirrors a single registration
// repeated.
func (h *handler) allowTokens(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)

	type params struct {
		Tokens              []domain.Address `json:"tokens"`
		Decimals            []int32          `json:"decimals"`
		ShouldBurnTokens    []bool           `json:"shouldBurnTokens"`
		ShouldForwardTokens []bool           `json:"shouldForwardTokens"`
		ForwardTargets      []domain.Address `json:"forwardTargets"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	n := len(p.Tokens)
	if len(p.Decimals) != n || len(p.ShouldBurnTokens) != n || len(p.ShouldForwardTokens) != n || len(p.ForwardTargets) != n {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrLengthMismatch)
	}

	reqs := make([]*token.AllowRequest, n)
	for i := 0; i < n; i++ {
		reqs[i] = &token.AllowRequest{
			Token:         p.Tokens[i],
			Decimals:      p.Decimals[i],
			ShouldBurn:    p.ShouldBurnTokens[i],
			ShouldForward: p.ShouldForwardTokens[i],
			ForwardTarget: p.ForwardTargets[i],
		}
	}

	var err error
	if n == 1 {
		err = h.tu.Allow(ctx, address, reqs[0])
	} else {
		err = h.tu.AllowMany(ctx, address, reqs)
	}
	if err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, "ok")
}

func (h *handler) disableToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := c.Get("address").(domain.Address)
	if err := h.tu.Disable(ctx, address, domain.Address(c.Param("token"))); err != nil {
		return delivery.MakeJsonResp(c, errStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func toUnit(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -18)
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrTokenNotAllowed):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAuctionNotStarted),
		errors.Is(err, domain.ErrAuctionFinished),
		errors.Is(err, domain.ErrAuctionNotFinished),
		errors.Is(err, domain.ErrTokenAlreadyAllowed),
		errors.Is(err, domain.ErrLandAlreadyOwned):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLengthMismatch),
		errors.Is(err, domain.ErrEmptyBid),
		errors.Is(err, domain.ErrTooManyLands),
		errors.Is(err, domain.ErrCoordinateOutOfRange),
		errors.Is(err, domain.ErrGasPriceExceeded),
		errors.Is(err, domain.ErrInvalidBeneficiary),
		errors.Is(err, domain.ErrInvalidConversionFee),
		errors.Is(err, domain.ErrInvalidLandsLimit),
		errors.Is(err, domain.ErrInvalidGasPriceLimit),
		errors.Is(err, domain.ErrInvalidDecimals),
		errors.Is(err, domain.ErrInvalidTokenPolicy),
		errors.Is(err, domain.ErrInvalidForwardTarget),
		errors.Is(err, domain.ErrTokenNotContract),
		errors.Is(err, domain.ErrBurnNotSupported),
		errors.Is(err, domain.ErrDexNotSet),
		errors.Is(err, domain.ErrZeroBalance),
		errors.Is(err, domain.ErrBadParamInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
