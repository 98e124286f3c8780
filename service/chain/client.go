package chain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/xerrors"

	bCtx "github.com/decentraland/land-auction/base/ctx"
	"github.com/decentraland/land-auction/base/log"
)

var ErrNoSigner = errors.New("no signing key configured")

type ClientCfg struct {
	RpcUrl  string
	ChainId int64
	// PrivateKey signs state-changing calls; read-only deployments leave it
	// empty.
	PrivateKey string
}

// Client abstracts contract reads and writes against a single chain.
type Client interface {
	// Call executes a read-only contract call and unpacks the outputs.
	Call(ctx bCtx.Ctx, addr common.Address, cAbi abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	// Send signs and submits a state-changing call, waiting for inclusion.
	Send(ctx bCtx.Ctx, addr common.Address, cAbi abi.ABI, method string, args ...interface{}) error
	// CodeAt returns the deployed bytecode at the address.
	CodeAt(ctx bCtx.Ctx, addr common.Address) ([]byte, error)
	// Sender is the address of the signing key, or the zero address.
	Sender() common.Address
}

type clientImpl struct {
	client  *ethclient.Client
	chainId *big.Int
	key     *ecdsa.PrivateKey
	sender  common.Address
}

func NewClient(ctx bCtx.Ctx, cfg *ClientCfg) (Client, error) {
	client, err := ethclient.DialContext(ctx, cfg.RpcUrl)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"url": cfg.RpcUrl,
		}).Error("failed to dial rpc")
		return nil, err
	}
	im := &clientImpl{
		client:  client,
		chainId: big.NewInt(cfg.ChainId),
	}
	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(cfg.PrivateKey)
		if err != nil {
			return nil, xerrors.Errorf("parse signing key: %w", err)
		}
		im.key = key
		im.sender = crypto.PubkeyToAddress(key.PublicKey)
	}
	return im, nil
}

func (im *clientImpl) Call(ctx bCtx.Ctx, addr common.Address, cAbi abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := cAbi.Pack(method, args...)
	if err != nil {
		return nil, xerrors.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &addr, Data: data, From: im.sender}
	output, err := im.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, xerrors.Errorf("call %s: %w", method, err)
	}
	unpacked, err := cAbi.Unpack(method, output)
	if err != nil {
		return nil, xerrors.Errorf("unpack %s: %w", method, err)
	}
	return unpacked, nil
}

func (im *clientImpl) Send(ctx bCtx.Ctx, addr common.Address, cAbi abi.ABI, method string, args ...interface{}) error {
	if im.key == nil {
		return ErrNoSigner
	}
	data, err := cAbi.Pack(method, args...)
	if err != nil {
		return xerrors.Errorf("pack %s: %w", method, err)
	}
	nonce, err := im.client.PendingNonceAt(ctx, im.sender)
	if err != nil {
		return xerrors.Errorf("pending nonce: %w", err)
	}
	gasPrice, err := im.client.SuggestGasPrice(ctx)
	if err != nil {
		return xerrors.Errorf("suggest gas price: %w", err)
	}
	msg := ethereum.CallMsg{From: im.sender, To: &addr, Data: data, GasPrice: gasPrice}
	gasLimit, err := im.client.EstimateGas(ctx, msg)
	if err != nil {
		return xerrors.Errorf("estimate gas for %s: %w", method, err)
	}
	tx := types.NewTransaction(nonce, addr, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(im.chainId), im.key)
	if err != nil {
		return xerrors.Errorf("sign tx: %w", err)
	}
	if err := im.client.SendTransaction(ctx, signed); err != nil {
		return xerrors.Errorf("send %s: %w", method, err)
	}
	receipt, err := waitMined(ctx, im.client, signed.Hash())
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return xerrors.Errorf("tx %s reverted", signed.Hash())
	}
	return nil
}

func (im *clientImpl) CodeAt(ctx bCtx.Ctx, addr common.Address) ([]byte, error) {
	return im.client.CodeAt(ctx, addr, nil)
}

func (im *clientImpl) Sender() common.Address {
	return im.sender
}

func waitMined(ctx bCtx.Ctx, client *ethclient.Client, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if err != ethereum.NotFound {
			return nil, xerrors.Errorf("receipt of %s: %w", hash, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
