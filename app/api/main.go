package main

import (
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/base/database/mongoclient"
	"github.com/decentraland/land-auction/base/log"
	"github.com/decentraland/land-auction/base/ptr"
	bValidator "github.com/decentraland/land-auction/base/validator"
	"github.com/decentraland/land-auction/domain"
	"github.com/decentraland/land-auction/domain/auction"
	mmiddleware "github.com/decentraland/land-auction/middleware"
	"github.com/decentraland/land-auction/service/chain"
	"github.com/decentraland/land-auction/service/chain/contract"
	"github.com/decentraland/land-auction/service/query"
	auction_delivery "github.com/decentraland/land-auction/stores/auction/delivery/http"
	auction_repository "github.com/decentraland/land-auction/stores/auction/repository"
	auction_usecase "github.com/decentraland/land-auction/stores/auction/usecase"
	auth_delivery "github.com/decentraland/land-auction/stores/auth/delivery/http"
	auth_middleware "github.com/decentraland/land-auction/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/decentraland/land-auction/stores/auth/usecase"
	token_repository "github.com/decentraland/land-auction/stores/token/repository"
	token_usecase "github.com/decentraland/land-auction/stores/token/usecase"
)

func init() {
	configPath := pflag.String("config", "infra/configs/config.yaml", "config file path")
	pflag.Parse()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(*configPath)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient)

	// init chain service
	context.Info("init chain client")
	chainService, err := chain.NewClient(context, &chain.ClientCfg{
		RpcUrl:     viper.GetString("chain.rpcUrl"),
		ChainId:    viper.GetInt64("chain.chainId"),
		PrivateKey: viper.GetString("chain.privateKey"),
	})
	if err != nil {
		context.WithField("err", err).Panic("chain client failed to start")
	}
	fungible := contract.NewFungible(chainService)
	ledger := contract.NewLedger(chainService, domain.Address(viper.GetString("chain.landRegistry")))
	dexFactory := contract.NewDexFactory(chainService)

	// construct repository, usecase and delivery
	eventLog, err := auction_repository.NewEventLog(context, q)
	if err != nil {
		context.WithField("err", err).Panic("event log failed to start")
	}
	auctionRepo := auction_repository.NewAuctionRepo(q)
	policyRepo := token_repository.NewPolicyRepo(q)

	owner := domain.Address(viper.GetString("auction.owner")).ToLower()
	custody := domain.Address(viper.GetString("auction.address")).ToLower()

	tokens := token_usecase.NewRegistryUseCase(&token_usecase.RegistryUseCaseCfg{
		Owner:          owner,
		AuctionAddress: custody,
		Repo:           policyRepo,
		Fungible:       fungible,
		EventLog:       eventLog,
	})

	params := &auction.Params{
		Owner:            owner,
		Address:          custody,
		BaseToken:        domain.Address(viper.GetString("auction.baseToken")).ToLower(),
		StartTime:        time.Unix(viper.GetInt64("auction.startTime"), 0),
		Curve:            loadCurve(context),
		LandsLimitPerBid: viper.GetUint64("auction.landsLimitPerBid"),
		GasPriceLimit:    mustBigInt(context, viper.GetString("auction.gasPriceLimit")),
		ConversionFee:    viper.GetUint64("auction.conversionFee"),
	}
	if viper.IsSet("auction.tokenKeptPercentage") {
		params.TokenKeptPercentage = ptr.Uint64(viper.GetUint64("auction.tokenKeptPercentage"))
	}

	cfg := &auction_usecase.AuctionUseCaseCfg{
		Params:      params,
		AuctionRepo: auctionRepo,
		EventLog:    eventLog,
		Tokens:      tokens,
		Fungible:    fungible,
		Ledger:      ledger,
		DexFactory:  dexFactory,
	}
	if dexAddr := viper.GetString("auction.dex"); dexAddr != "" {
		dex, err := dexFactory.Make(context, domain.Address(dexAddr))
		if err != nil {
			context.WithField("err", err).Panic("dex failed to start")
		}
		cfg.Dex = dex
	}
	au, err := auction_usecase.NewAuctionUseCase(context, cfg)
	if err != nil {
		context.WithField("err", err).Panic("auction failed to start")
	}

	auth := auth_usecase.New(viper.GetString("auth.jwtSecret"))
	authMiddleware := auth_middleware.New(auth)

	auth_delivery.New(e, auth, viper.GetString("auth.signatureMsg"))
	auction_delivery.New(e, au, tokens, authMiddleware)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, "ok")
	})

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

func loadCurve(context ctx.Ctx) []auction.Breakpoint {
	type entry struct {
		At    string `mapstructure:"at"`
		Price string `mapstructure:"price"`
	}
	var entries []entry
	if err := viper.UnmarshalKey("auction.curve", &entries); err != nil {
		context.WithField("err", err).Panic("invalid curve config")
	}
	points := make([]auction.Breakpoint, len(entries))
	for i, en := range entries {
		at, err := time.ParseDuration(en.At)
		if err != nil {
			context.WithFields(log.Fields{"err": err, "at": en.At}).Panic("invalid curve breakpoint")
		}
		points[i] = auction.Breakpoint{At: at, Price: mustBigInt(context, en.Price)}
	}
	return points
}

func mustBigInt(context ctx.Ctx, s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		context.WithField("value", s).Panic("invalid big integer config")
	}
	return v
}
