package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var TokenConverterABI abi.ABI

// getExpectedRate quotes the 18-decimal rate between two tokens, convert
// swaps an exact source amount with a minimum return guard.
var tokenConverterABI = `[{"type":"function","name":"getExpectedRate","constant":true,"stateMutability":"view","payable":false,"inputs":[{"type":"address","name":"_srcToken"},{"type":"address","name":"_destToken"},{"type":"uint256","name":"_srcAmount"}],"outputs":[{"type":"uint256","name":"expectedRate"},{"type":"uint256","name":"slippageRate"}]},{"type":"function","name":"convert","constant":false,"payable":false,"inputs":[{"type":"address","name":"_srcToken"},{"type":"address","name":"_destToken"},{"type":"uint256","name":"_srcAmount"},{"type":"uint256","name":"_minReturn"}],"outputs":[{"type":"uint256","name":"amount"}]}]`

func init() {
	_abi, err := abi.JSON(strings.NewReader(tokenConverterABI))
	if err != nil {
		panic(err)
	}
	TokenConverterABI = _abi
}
