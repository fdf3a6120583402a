package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// metaMorphoABIJSON holds the MetaMorpho vault events and the read methods the indexer calls
const metaMorphoABIJSON = `[
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Deposit","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"assets","type":"uint256","indexed":false},{"name":"shares","type":"uint256","indexed":false}]},
	{"type":"event","name":"Withdraw","anonymous":false,"inputs":[{"name":"sender","type":"address","indexed":true},{"name":"receiver","type":"address","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"assets","type":"uint256","indexed":false},{"name":"shares","type":"uint256","indexed":false}]},
	{"type":"event","name":"AccrueInterest","anonymous":false,"inputs":[{"name":"newTotalAssets","type":"uint256","indexed":false},{"name":"feeShares","type":"uint256","indexed":false}]},
	{"type":"event","name":"ReallocateSupply","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"id","type":"bytes32","indexed":true},{"name":"suppliedAssets","type":"uint256","indexed":false},{"name":"suppliedShares","type":"uint256","indexed":false}]},
	{"type":"event","name":"ReallocateWithdraw","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"id","type":"bytes32","indexed":true},{"name":"withdrawnAssets","type":"uint256","indexed":false},{"name":"withdrawnShares","type":"uint256","indexed":false}]},
	{"type":"event","name":"SetSupplyQueue","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"newSupplyQueue","type":"bytes32[]","indexed":false}]},
	{"type":"event","name":"SetWithdrawQueue","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"newWithdrawQueue","type":"bytes32[]","indexed":false}]},
	{"type":"event","name":"SubmitCap","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"id","type":"bytes32","indexed":true},{"name":"cap","type":"uint256","indexed":false}]},
	{"type":"event","name":"SetCap","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"id","type":"bytes32","indexed":true},{"name":"cap","type":"uint256","indexed":false}]},
	{"type":"event","name":"RevokePendingCap","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"id","type":"bytes32","indexed":true}]},
	{"type":"event","name":"SubmitMarketRemoval","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"id","type":"bytes32","indexed":true}]},
	{"type":"event","name":"RevokePendingMarketRemoval","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"id","type":"bytes32","indexed":true}]},
	{"type":"event","name":"SubmitGuardian","anonymous":false,"inputs":[{"name":"newGuardian","type":"address","indexed":true}]},
	{"type":"event","name":"SetGuardian","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"guardian","type":"address","indexed":true}]},
	{"type":"event","name":"RevokePendingGuardian","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true}]},
	{"type":"event","name":"SubmitTimelock","anonymous":false,"inputs":[{"name":"newTimelock","type":"uint256","indexed":false}]},
	{"type":"event","name":"SetTimelock","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"newTimelock","type":"uint256","indexed":false}]},
	{"type":"event","name":"RevokePendingTimelock","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true}]},
	{"type":"event","name":"OwnershipTransferStarted","anonymous":false,"inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]},
	{"type":"event","name":"OwnershipTransferred","anonymous":false,"inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]},
	{"type":"event","name":"SetCurator","anonymous":false,"inputs":[{"name":"newCurator","type":"address","indexed":true}]},
	{"type":"event","name":"SetIsAllocator","anonymous":false,"inputs":[{"name":"allocator","type":"address","indexed":true},{"name":"isAllocator","type":"bool","indexed":false}]},
	{"type":"event","name":"SetFee","anonymous":false,"inputs":[{"name":"caller","type":"address","indexed":true},{"name":"newFee","type":"uint256","indexed":false}]},
	{"type":"event","name":"SetFeeRecipient","anonymous":false,"inputs":[{"name":"newFeeRecipient","type":"address","indexed":true}]},
	{"type":"event","name":"SetSkimRecipient","anonymous":false,"inputs":[{"name":"newSkimRecipient","type":"address","indexed":true}]},
	{"type":"event","name":"SetName","anonymous":false,"inputs":[{"name":"name","type":"string","indexed":false}]},
	{"type":"event","name":"SetSymbol","anonymous":false,"inputs":[{"name":"symbol","type":"string","indexed":false}]},
	{"type":"event","name":"UpdateLastTotalAssets","anonymous":false,"inputs":[{"name":"updatedTotalAssets","type":"uint256","indexed":false}]},
	{"type":"event","name":"UpdateLostAssets","anonymous":false,"inputs":[{"name":"newLostAssets","type":"uint256","indexed":false}]},
	{"type":"function","name":"convertToAssets","stateMutability":"view","inputs":[{"name":"shares","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// factoryABIJSON holds the MetaMorpho factory creation event
const factoryABIJSON = `[
	{"type":"event","name":"CreateMetaMorpho","anonymous":false,"inputs":[{"name":"metaMorpho","type":"address","indexed":true},{"name":"caller","type":"address","indexed":true},{"name":"initialOwner","type":"address","indexed":false},{"name":"initialTimelock","type":"uint256","indexed":false},{"name":"asset","type":"address","indexed":true},{"name":"name","type":"string","indexed":false},{"name":"symbol","type":"string","indexed":false},{"name":"salt","type":"bytes32","indexed":false}]}
]`

// erc20ABIJSON holds the ERC-20 metadata read by the indexer
const erc20ABIJSON = `[
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

var (
	metaMorphoABI = mustParseABI(metaMorphoABIJSON)
	factoryABI    = mustParseABI(factoryABIJSON)
	erc20ABI      = mustParseABI(erc20ABIJSON)
)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}
