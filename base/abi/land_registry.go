package abi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var LandRegistryABI abi.ABI

var landRegistryABI = `[{"type":"function","name":"encodeTokenId","constant":true,"stateMutability":"pure","payable":false,"inputs":[{"type":"int256","name":"x"},{"type":"int256","name":"y"}],"outputs":[{"type":"uint256"}]},{"type":"function","name":"ownerOf","constant":true,"stateMutability":"view","payable":false,"inputs":[{"type":"uint256","name":"assetId"}],"outputs":[{"type":"address"}]},{"type":"function","name":"assignNewParcel","constant":false,"payable":false,"inputs":[{"type":"int256","name":"x"},{"type":"int256","name":"y"},{"type":"address","name":"beneficiary"}],"outputs":[]}]`

func init() {
	_abi, err := abi.JSON(strings.NewReader(landRegistryABI))
	if err != nil {
		panic(err)
	}
	LandRegistryABI = _abi
}
