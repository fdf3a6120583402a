package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/feral-file/ff-vault-indexer/internal/block"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

const createVaultEventName = "CreateMetaMorpho"

var (
	// vaultEvents maps topic0 to the vault event definitions
	vaultEvents = eventsByID(metaMorphoABI)
	// factoryEvents maps topic0 to the factory event definitions
	factoryEvents = eventsByID(factoryABI)
)

func eventsByID(contract abi.ABI) map[common.Hash]abi.Event {
	events := make(map[common.Hash]abi.Event, len(contract.Events))
	for _, event := range contract.Events {
		events[event.ID] = event
	}
	return events
}

// EventTopics returns topic0 of every event the indexer decodes
func EventTopics() []common.Hash {
	topics := make([]common.Hash, 0, len(vaultEvents)+len(factoryEvents))
	for id := range vaultEvents {
		topics = append(topics, id)
	}
	for id := range factoryEvents {
		topics = append(topics, id)
	}
	return topics
}

// Decoder turns raw logs into normalized vault events
//
//go:generate mockgen -source=decoder.go -destination=../../mocks/decoder.go -package=mocks -mock_names=Decoder=MockDecoder
type Decoder interface {
	// Decode returns nil without error for logs the indexer does not track
	Decode(ctx context.Context, vLog types.Log) (*domain.VaultEvent, error)
}

type decoder struct {
	chain  domain.Chain
	blocks block.BlockProvider
}

// NewDecoder creates a decoder for one chain
func NewDecoder(chain domain.Chain, blocks block.BlockProvider) Decoder {
	return &decoder{chain: chain, blocks: blocks}
}

// Decode decodes a log and stamps it with its block timestamp
func (d *decoder) Decode(ctx context.Context, vLog types.Log) (*domain.VaultEvent, error) {
	payload, err := DecodePayload(vLog)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	timestamp, err := d.blocks.GetBlockTimestamp(ctx, vLog.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get block timestamp: %w", err)
	}

	return &domain.VaultEvent{
		Chain:           d.chain,
		ContractAddress: vLog.Address.Hex(),
		BlockNumber:     vLog.BlockNumber,
		BlockHash:       vLog.BlockHash.Hex(),
		BlockTimestamp:  timestamp,
		TxHash:          vLog.TxHash.Hex(),
		LogIndex:        vLog.Index,
		Payload:         payload,
	}, nil
}

// IsFactoryLog reports whether the log carries the vault creation event
func IsFactoryLog(vLog types.Log) bool {
	if len(vLog.Topics) == 0 {
		return false
	}
	_, ok := factoryEvents[vLog.Topics[0]]
	return ok
}

// DecodePayload decodes the body of a vault or factory log.
// It returns a nil payload for logs with an unknown signature.
func DecodePayload(vLog types.Log) (domain.EventPayload, error) {
	if len(vLog.Topics) == 0 {
		return nil, nil
	}

	event, ok := vaultEvents[vLog.Topics[0]]
	if !ok {
		event, ok = factoryEvents[vLog.Topics[0]]
	}
	if !ok {
		return nil, nil
	}

	values, err := unpackLog(event, vLog)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidEvent, event.Name, err)
	}

	payload, err := buildPayload(event.Name, &valueReader{values: values})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidEvent, event.Name, err)
	}
	return payload, nil
}

// unpackLog decodes both the indexed topics and the data of a log into a map keyed by argument name
func unpackLog(event abi.Event, vLog types.Log) (map[string]interface{}, error) {
	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(vLog.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("expected %d indexed topics, got %d", len(indexed), len(vLog.Topics)-1)
	}

	values := make(map[string]interface{}, len(event.Inputs))
	if len(event.Inputs.NonIndexed()) > 0 {
		if err := event.Inputs.UnpackIntoMap(values, vLog.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack data: %w", err)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, vLog.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}
	return values, nil
}

// valueReader reads typed values out of an unpacked log, remembering the first failure
type valueReader struct {
	values map[string]interface{}
	err    error
}

func (r *valueReader) fail(name string, value interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("unexpected type %T for argument %q", value, name)
	}
}

func (r *valueReader) address(name string) string {
	v, ok := r.values[name].(common.Address)
	if !ok {
		r.fail(name, r.values[name])
		return ""
	}
	return v.Hex()
}

func (r *valueReader) uint256(name string) *big.Int {
	v, ok := r.values[name].(*big.Int)
	if !ok {
		r.fail(name, r.values[name])
		return nil
	}
	return v
}

func (r *valueReader) bytes32(name string) string {
	v, ok := r.values[name].([32]byte)
	if !ok {
		r.fail(name, r.values[name])
		return ""
	}
	return common.Hash(v).Hex()
}

func (r *valueReader) bytes32s(name string) []string {
	v, ok := r.values[name].([][32]byte)
	if !ok {
		r.fail(name, r.values[name])
		return nil
	}
	ids := make([]string, len(v))
	for i, id := range v {
		ids[i] = common.Hash(id).Hex()
	}
	return ids
}

func (r *valueReader) text(name string) string {
	v, ok := r.values[name].(string)
	if !ok {
		r.fail(name, r.values[name])
	}
	return v
}

func (r *valueReader) flag(name string) bool {
	v, ok := r.values[name].(bool)
	if !ok {
		r.fail(name, r.values[name])
	}
	return v
}

// buildPayload maps an ABI event onto its domain payload
func buildPayload(name string, r *valueReader) (domain.EventPayload, error) {
	var payload domain.EventPayload

	switch name {
	case createVaultEventName:
		payload = &domain.CreateVault{
			Vault:           r.address("metaMorpho"),
			Caller:          r.address("caller"),
			InitialOwner:    r.address("initialOwner"),
			InitialTimelock: r.uint256("initialTimelock"),
			Asset:           r.address("asset"),
			Name:            r.text("name"),
			Symbol:          r.text("symbol"),
			Salt:            r.bytes32("salt"),
		}
	case "Transfer":
		payload = &domain.Transfer{From: r.address("from"), To: r.address("to"), Value: r.uint256("value")}
	case "Deposit":
		payload = &domain.Deposit{
			Sender: r.address("sender"),
			Owner:  r.address("owner"),
			Assets: r.uint256("assets"),
			Shares: r.uint256("shares"),
		}
	case "Withdraw":
		payload = &domain.Withdraw{
			Sender:   r.address("sender"),
			Receiver: r.address("receiver"),
			Owner:    r.address("owner"),
			Assets:   r.uint256("assets"),
			Shares:   r.uint256("shares"),
		}
	case "AccrueInterest":
		payload = &domain.AccrueInterest{
			NewTotalAssets: r.uint256("newTotalAssets"),
			FeeShares:      r.uint256("feeShares"),
		}
	case "ReallocateSupply":
		payload = &domain.ReallocateSupply{
			Caller:         r.address("caller"),
			MarketID:       r.bytes32("id"),
			SuppliedAssets: r.uint256("suppliedAssets"),
			SuppliedShares: r.uint256("suppliedShares"),
		}
	case "ReallocateWithdraw":
		payload = &domain.ReallocateWithdraw{
			Caller:          r.address("caller"),
			MarketID:        r.bytes32("id"),
			WithdrawnAssets: r.uint256("withdrawnAssets"),
			WithdrawnShares: r.uint256("withdrawnShares"),
		}
	case "SetSupplyQueue":
		payload = &domain.SetSupplyQueue{Caller: r.address("caller"), Queue: r.bytes32s("newSupplyQueue")}
	case "SetWithdrawQueue":
		payload = &domain.SetWithdrawQueue{Caller: r.address("caller"), Queue: r.bytes32s("newWithdrawQueue")}
	case "SubmitCap":
		payload = &domain.SubmitCap{Caller: r.address("caller"), MarketID: r.bytes32("id"), Cap: r.uint256("cap")}
	case "SetCap":
		payload = &domain.SetCap{Caller: r.address("caller"), MarketID: r.bytes32("id"), Cap: r.uint256("cap")}
	case "RevokePendingCap":
		payload = &domain.RevokePendingCap{Caller: r.address("caller"), MarketID: r.bytes32("id")}
	case "SubmitMarketRemoval":
		payload = &domain.SubmitMarketRemoval{Caller: r.address("caller"), MarketID: r.bytes32("id")}
	case "RevokePendingMarketRemoval":
		payload = &domain.RevokePendingMarketRemoval{Caller: r.address("caller"), MarketID: r.bytes32("id")}
	case "SubmitGuardian":
		payload = &domain.SubmitGuardian{NewGuardian: r.address("newGuardian")}
	case "SetGuardian":
		payload = &domain.SetGuardian{Caller: r.address("caller"), Guardian: r.address("guardian")}
	case "RevokePendingGuardian":
		payload = &domain.RevokePendingGuardian{Caller: r.address("caller")}
	case "SubmitTimelock":
		payload = &domain.SubmitTimelock{NewTimelock: r.uint256("newTimelock")}
	case "SetTimelock":
		payload = &domain.SetTimelock{Caller: r.address("caller"), NewTimelock: r.uint256("newTimelock")}
	case "RevokePendingTimelock":
		payload = &domain.RevokePendingTimelock{Caller: r.address("caller")}
	case "OwnershipTransferStarted":
		payload = &domain.OwnershipTransferStarted{
			PreviousOwner: r.address("previousOwner"),
			NewOwner:      r.address("newOwner"),
		}
	case "OwnershipTransferred":
		payload = &domain.OwnershipTransferred{
			PreviousOwner: r.address("previousOwner"),
			NewOwner:      r.address("newOwner"),
		}
	case "SetCurator":
		payload = &domain.SetCurator{NewCurator: r.address("newCurator")}
	case "SetIsAllocator":
		payload = &domain.SetIsAllocator{Allocator: r.address("allocator"), IsAllocator: r.flag("isAllocator")}
	case "SetFee":
		payload = &domain.SetFee{Caller: r.address("caller"), NewFee: r.uint256("newFee")}
	case "SetFeeRecipient":
		payload = &domain.SetFeeRecipient{NewFeeRecipient: r.address("newFeeRecipient")}
	case "SetSkimRecipient":
		payload = &domain.SetSkimRecipient{NewSkimRecipient: r.address("newSkimRecipient")}
	case "SetName":
		payload = &domain.SetName{Name: r.text("name")}
	case "SetSymbol":
		payload = &domain.SetSymbol{Symbol: r.text("symbol")}
	case "UpdateLastTotalAssets":
		payload = &domain.UpdateLastTotalAssets{UpdatedTotalAssets: r.uint256("updatedTotalAssets")}
	case "UpdateLostAssets":
		payload = &domain.UpdateLostAssets{NewLostAssets: r.uint256("newLostAssets")}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedEvent, name)
	}

	if r.err != nil {
		return nil, r.err
	}
	return payload, nil
}
