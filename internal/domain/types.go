package domain

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainBaseMainnet     Chain = "eip155:8453"
)

var chainPattern = regexp.MustCompile(`^eip155:[1-9][0-9]*$`)

// IsValidChain checks if a chain is a well-formed EVM CAIP-2 identifier
func IsValidChain(chain Chain) bool {
	return chainPattern.MatchString(string(chain))
}

// ChainID returns the numeric EVM chain id
func (c Chain) ChainID() (uint64, error) {
	if !IsValidChain(c) {
		return 0, fmt.Errorf("invalid chain: %s", c)
	}
	return strconv.ParseUint(strings.TrimPrefix(string(c), "eip155:"), 10, 64)
}

// Slug returns a representation of the chain that is safe to use as a
// NATS subject token or a durable consumer name (e.g. "eip155-1")
func (c Chain) Slug() string {
	return strings.ReplaceAll(string(c), ":", "-")
}

// QueueKind identifies one of the two ordered market queues of a vault
type QueueKind string

const (
	QueueKindSupply   QueueKind = "supply"
	QueueKindWithdraw QueueKind = "withdraw"
)

// LogRef identifies a single log on a chain. It is the idempotence key
// for every state change applied by the reconcilers.
type LogRef struct {
	Chain       Chain  `json:"chain"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint   `json:"log_index"`
	BlockNumber uint64 `json:"block_number"`
}

// String returns the log reference as "chain:txHash:logIndex"
func (r LogRef) String() string {
	return fmt.Sprintf("%s:%s:%d", r.Chain, r.TxHash, r.LogIndex)
}

// LogCursor is the position of the last reconciled log of a chain
type LogCursor struct {
	BlockNumber uint64
	LogIndex    uint
}

// String encodes the cursor as "block:logIndex"
func (c LogCursor) String() string {
	return fmt.Sprintf("%d:%d", c.BlockNumber, c.LogIndex)
}

// ParseLogCursor decodes a cursor previously encoded by LogCursor.String
func ParseLogCursor(value string) (LogCursor, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return LogCursor{}, fmt.Errorf("invalid log cursor: %s", value)
	}
	blockNumber, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return LogCursor{}, fmt.Errorf("invalid log cursor block: %w", err)
	}
	logIndex, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return LogCursor{}, fmt.Errorf("invalid log cursor index: %w", err)
	}
	return LogCursor{BlockNumber: blockNumber, LogIndex: uint(logIndex)}, nil
}

// After reports whether c is strictly later than other
func (c LogCursor) After(other LogCursor) bool {
	if c.BlockNumber != other.BlockNumber {
		return c.BlockNumber > other.BlockNumber
	}
	return c.LogIndex > other.LogIndex
}

// NormalizeAddresses normalizes a list of addresses in place
func NormalizeAddresses(addresses []string) []string {
	for i, address := range addresses {
		addresses[i] = NormalizeAddress(address)
	}
	return addresses
}

// NormalizeAddress normalizes an address to its checksummed form
func NormalizeAddress(address string) string {
	if strings.HasPrefix(address, "0x") {
		return common.HexToAddress(address).String()
	}
	return address
}

// IsZeroAddress checks if the address is the zero address
func IsZeroAddress(address string) bool {
	return NormalizeAddress(address) == ETHEREUM_ZERO_ADDRESS
}

// NormalizeMarketID normalizes a market id to a lowercase 32-byte hex string
func NormalizeMarketID(id string) string {
	return common.HexToHash(id).Hex()
}

// IsZeroAmount checks if an on-chain amount is nil or zero
func IsZeroAmount(amount *big.Int) bool {
	return amount == nil || amount.Sign() == 0
}

// maxStoredUint is the largest value a BIGINT column holds
var maxStoredUint = big.NewInt(math.MaxInt64)

// ToUint64 converts an on-chain uint256 to uint64, failing on values a BIGINT column cannot hold
func ToUint64(amount *big.Int) (uint64, error) {
	if amount == nil {
		return 0, nil
	}
	if amount.Sign() < 0 || amount.Cmp(maxStoredUint) > 0 {
		return 0, fmt.Errorf("%w: value %s does not fit in a bigint column", ErrInvalidEvent, amount.String())
	}
	return amount.Uint64(), nil
}

// AddTimestamp adds a duration in seconds to a block timestamp, failing when the result
// does not fit in a BIGINT column
func AddTimestamp(timestamp, seconds uint64) (uint64, error) {
	if timestamp > math.MaxInt64 || seconds > math.MaxInt64-timestamp {
		return 0, fmt.Errorf("%w: timestamp %d plus %d seconds overflows", ErrInvalidEvent, timestamp, seconds)
	}
	return timestamp + seconds, nil
}
