package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// EventKind represents the kind of vault or factory event
type EventKind string

const (
	// Factory
	EventKindCreateVault EventKind = "create_metamorpho"

	// Share token
	EventKindTransfer EventKind = "transfer"

	// Flows
	EventKindDeposit            EventKind = "deposit"
	EventKindWithdraw           EventKind = "withdraw"
	EventKindAccrueInterest     EventKind = "accrue_interest"
	EventKindReallocateSupply   EventKind = "reallocate_supply"
	EventKindReallocateWithdraw EventKind = "reallocate_withdraw"

	// Queues
	EventKindSetSupplyQueue   EventKind = "set_supply_queue"
	EventKindSetWithdrawQueue EventKind = "set_withdraw_queue"

	// Market configuration
	EventKindSubmitCap                  EventKind = "submit_cap"
	EventKindSetCap                     EventKind = "set_cap"
	EventKindRevokePendingCap           EventKind = "revoke_pending_cap"
	EventKindSubmitMarketRemoval        EventKind = "submit_market_removal"
	EventKindRevokePendingMarketRemoval EventKind = "revoke_pending_market_removal"

	// Timelocked roles and parameters
	EventKindSubmitGuardian        EventKind = "submit_guardian"
	EventKindSetGuardian           EventKind = "set_guardian"
	EventKindRevokePendingGuardian EventKind = "revoke_pending_guardian"
	EventKindSubmitTimelock        EventKind = "submit_timelock"
	EventKindSetTimelock           EventKind = "set_timelock"
	EventKindRevokePendingTimelock EventKind = "revoke_pending_timelock"

	// Ownership and roles
	EventKindOwnershipTransferStarted EventKind = "ownership_transfer_started"
	EventKindOwnershipTransferred     EventKind = "ownership_transferred"
	EventKindSetCurator               EventKind = "set_curator"
	EventKindSetIsAllocator           EventKind = "set_is_allocator"

	// Fees and metadata
	EventKindSetFee           EventKind = "set_fee"
	EventKindSetFeeRecipient  EventKind = "set_fee_recipient"
	EventKindSetSkimRecipient EventKind = "set_skim_recipient"
	EventKindSetName          EventKind = "set_name"
	EventKindSetSymbol        EventKind = "set_symbol"

	// Accounting
	EventKindUpdateLastTotalAssets EventKind = "update_last_total_assets"
	EventKindUpdateLostAssets      EventKind = "update_lost_assets"
)

// AllEventKinds lists every event kind the indexer understands
var AllEventKinds = []EventKind{
	EventKindCreateVault,
	EventKindTransfer,
	EventKindDeposit,
	EventKindWithdraw,
	EventKindAccrueInterest,
	EventKindReallocateSupply,
	EventKindReallocateWithdraw,
	EventKindSetSupplyQueue,
	EventKindSetWithdrawQueue,
	EventKindSubmitCap,
	EventKindSetCap,
	EventKindRevokePendingCap,
	EventKindSubmitMarketRemoval,
	EventKindRevokePendingMarketRemoval,
	EventKindSubmitGuardian,
	EventKindSetGuardian,
	EventKindRevokePendingGuardian,
	EventKindSubmitTimelock,
	EventKindSetTimelock,
	EventKindRevokePendingTimelock,
	EventKindOwnershipTransferStarted,
	EventKindOwnershipTransferred,
	EventKindSetCurator,
	EventKindSetIsAllocator,
	EventKindSetFee,
	EventKindSetFeeRecipient,
	EventKindSetSkimRecipient,
	EventKindSetName,
	EventKindSetSymbol,
	EventKindUpdateLastTotalAssets,
	EventKindUpdateLostAssets,
}

// EventPayload is the decoded body of a vault or factory event.
// The set of implementations is closed to this package.
type EventPayload interface {
	Kind() EventKind
	isEventPayload()
}

// VaultEvent represents a normalized vault event.
// This is the standard format published to NATS.
type VaultEvent struct {
	Chain           Chain        // e.g., "eip155:1"
	ContractAddress string       // emitting contract (vault or factory)
	BlockNumber     uint64       // block where the log was emitted
	BlockHash       string       // hash of that block
	BlockTimestamp  uint64       // unix seconds of that block
	TxHash          string       // transaction hash
	LogIndex        uint         // log index within the block
	Payload         EventPayload // decoded event body
}

// Kind returns the kind of the event payload
func (e *VaultEvent) Kind() EventKind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// Ref returns the idempotence key of the event
func (e *VaultEvent) Ref() LogRef {
	return LogRef{
		Chain:       e.Chain,
		TxHash:      e.TxHash,
		LogIndex:    e.LogIndex,
		BlockNumber: e.BlockNumber,
	}
}

// Cursor returns the position of the event within its chain
func (e *VaultEvent) Cursor() LogCursor {
	return LogCursor{BlockNumber: e.BlockNumber, LogIndex: e.LogIndex}
}

// Time returns the block timestamp as time.Time
func (e *VaultEvent) Time() time.Time {
	return time.Unix(int64(e.BlockTimestamp), 0).UTC() //nolint:gosec,G115
}

// MessageID returns a deterministic identifier used for de-duplication on the bus
func (e *VaultEvent) MessageID() string {
	return e.Ref().String()
}

// Valid checks if the event carries everything the reconcilers rely on
func (e *VaultEvent) Valid() bool {
	return IsValidChain(e.Chain) &&
		e.ContractAddress != "" &&
		e.TxHash != "" &&
		e.Payload != nil
}

type vaultEventJSON struct {
	Chain           Chain           `json:"chain"`
	ContractAddress string          `json:"contract_address"`
	BlockNumber     uint64          `json:"block_number"`
	BlockHash       string          `json:"block_hash,omitempty"`
	BlockTimestamp  uint64          `json:"block_timestamp"`
	TxHash          string          `json:"tx_hash"`
	LogIndex        uint            `json:"log_index"`
	Kind            EventKind       `json:"kind"`
	Payload         json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the event with a "kind" discriminator for the payload
func (e VaultEvent) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidEvent)
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return json.Marshal(vaultEventJSON{
		Chain:           e.Chain,
		ContractAddress: e.ContractAddress,
		BlockNumber:     e.BlockNumber,
		BlockHash:       e.BlockHash,
		BlockTimestamp:  e.BlockTimestamp,
		TxHash:          e.TxHash,
		LogIndex:        e.LogIndex,
		Kind:            e.Payload.Kind(),
		Payload:         payload,
	})
}

// UnmarshalJSON decodes an event encoded by MarshalJSON
func (e *VaultEvent) UnmarshalJSON(data []byte) error {
	var raw vaultEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	payload, err := NewEventPayload(raw.Kind)
	if err != nil {
		return err
	}
	if len(raw.Payload) > 0 {
		if err := json.Unmarshal(raw.Payload, payload); err != nil {
			return fmt.Errorf("failed to unmarshal %s payload: %w", raw.Kind, err)
		}
	}

	*e = VaultEvent{
		Chain:           raw.Chain,
		ContractAddress: raw.ContractAddress,
		BlockNumber:     raw.BlockNumber,
		BlockHash:       raw.BlockHash,
		BlockTimestamp:  raw.BlockTimestamp,
		TxHash:          raw.TxHash,
		LogIndex:        raw.LogIndex,
		Payload:         payload,
	}
	return nil
}

// NewEventPayload returns an empty payload for the given kind
func NewEventPayload(kind EventKind) (EventPayload, error) {
	switch kind {
	case EventKindCreateVault:
		return &CreateVault{}, nil
	case EventKindTransfer:
		return &Transfer{}, nil
	case EventKindDeposit:
		return &Deposit{}, nil
	case EventKindWithdraw:
		return &Withdraw{}, nil
	case EventKindAccrueInterest:
		return &AccrueInterest{}, nil
	case EventKindReallocateSupply:
		return &ReallocateSupply{}, nil
	case EventKindReallocateWithdraw:
		return &ReallocateWithdraw{}, nil
	case EventKindSetSupplyQueue:
		return &SetSupplyQueue{}, nil
	case EventKindSetWithdrawQueue:
		return &SetWithdrawQueue{}, nil
	case EventKindSubmitCap:
		return &SubmitCap{}, nil
	case EventKindSetCap:
		return &SetCap{}, nil
	case EventKindRevokePendingCap:
		return &RevokePendingCap{}, nil
	case EventKindSubmitMarketRemoval:
		return &SubmitMarketRemoval{}, nil
	case EventKindRevokePendingMarketRemoval:
		return &RevokePendingMarketRemoval{}, nil
	case EventKindSubmitGuardian:
		return &SubmitGuardian{}, nil
	case EventKindSetGuardian:
		return &SetGuardian{}, nil
	case EventKindRevokePendingGuardian:
		return &RevokePendingGuardian{}, nil
	case EventKindSubmitTimelock:
		return &SubmitTimelock{}, nil
	case EventKindSetTimelock:
		return &SetTimelock{}, nil
	case EventKindRevokePendingTimelock:
		return &RevokePendingTimelock{}, nil
	case EventKindOwnershipTransferStarted:
		return &OwnershipTransferStarted{}, nil
	case EventKindOwnershipTransferred:
		return &OwnershipTransferred{}, nil
	case EventKindSetCurator:
		return &SetCurator{}, nil
	case EventKindSetIsAllocator:
		return &SetIsAllocator{}, nil
	case EventKindSetFee:
		return &SetFee{}, nil
	case EventKindSetFeeRecipient:
		return &SetFeeRecipient{}, nil
	case EventKindSetSkimRecipient:
		return &SetSkimRecipient{}, nil
	case EventKindSetName:
		return &SetName{}, nil
	case EventKindSetSymbol:
		return &SetSymbol{}, nil
	case EventKindUpdateLastTotalAssets:
		return &UpdateLastTotalAssets{}, nil
	case EventKindUpdateLostAssets:
		return &UpdateLostAssets{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEvent, kind)
	}
}

// CreateVault is emitted by the factory when a new vault is deployed
type CreateVault struct {
	Vault           string   `json:"vault"`
	Caller          string   `json:"caller"`
	InitialOwner    string   `json:"initial_owner"`
	InitialTimelock *big.Int `json:"initial_timelock"`
	Asset           string   `json:"asset"`
	Name            string   `json:"name"`
	Symbol          string   `json:"symbol"`
	Salt            string   `json:"salt"`
}

// Transfer is the ERC-20 transfer of vault shares
type Transfer struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Value *big.Int `json:"value"`
}

type Deposit struct {
	Sender string   `json:"sender"`
	Owner  string   `json:"owner"`
	Assets *big.Int `json:"assets"`
	Shares *big.Int `json:"shares"`
}

type Withdraw struct {
	Sender   string   `json:"sender"`
	Receiver string   `json:"receiver"`
	Owner    string   `json:"owner"`
	Assets   *big.Int `json:"assets"`
	Shares   *big.Int `json:"shares"`
}

// AccrueInterest carries the fee shares minted to the fee recipient
type AccrueInterest struct {
	NewTotalAssets *big.Int `json:"new_total_assets"`
	FeeShares      *big.Int `json:"fee_shares"`
}

type ReallocateSupply struct {
	Caller         string   `json:"caller"`
	MarketID       string   `json:"market_id"`
	SuppliedAssets *big.Int `json:"supplied_assets"`
	SuppliedShares *big.Int `json:"supplied_shares"`
}

type ReallocateWithdraw struct {
	Caller          string   `json:"caller"`
	MarketID        string   `json:"market_id"`
	WithdrawnAssets *big.Int `json:"withdrawn_assets"`
	WithdrawnShares *big.Int `json:"withdrawn_shares"`
}

type SetSupplyQueue struct {
	Caller string   `json:"caller"`
	Queue  []string `json:"queue"`
}

type SetWithdrawQueue struct {
	Caller string   `json:"caller"`
	Queue  []string `json:"queue"`
}

type SubmitCap struct {
	Caller   string   `json:"caller"`
	MarketID string   `json:"market_id"`
	Cap      *big.Int `json:"cap"`
}

type SetCap struct {
	Caller   string   `json:"caller"`
	MarketID string   `json:"market_id"`
	Cap      *big.Int `json:"cap"`
}

type RevokePendingCap struct {
	Caller   string `json:"caller"`
	MarketID string `json:"market_id"`
}

type SubmitMarketRemoval struct {
	Caller   string `json:"caller"`
	MarketID string `json:"market_id"`
}

type RevokePendingMarketRemoval struct {
	Caller   string `json:"caller"`
	MarketID string `json:"market_id"`
}

type SubmitGuardian struct {
	NewGuardian string `json:"new_guardian"`
}

type SetGuardian struct {
	Caller   string `json:"caller"`
	Guardian string `json:"guardian"`
}

type RevokePendingGuardian struct {
	Caller string `json:"caller"`
}

type SubmitTimelock struct {
	NewTimelock *big.Int `json:"new_timelock"`
}

type SetTimelock struct {
	Caller      string   `json:"caller"`
	NewTimelock *big.Int `json:"new_timelock"`
}

type RevokePendingTimelock struct {
	Caller string `json:"caller"`
}

type OwnershipTransferStarted struct {
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
}

type OwnershipTransferred struct {
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
}

type SetCurator struct {
	NewCurator string `json:"new_curator"`
}

type SetIsAllocator struct {
	Allocator   string `json:"allocator"`
	IsAllocator bool   `json:"is_allocator"`
}

type SetFee struct {
	Caller string   `json:"caller"`
	NewFee *big.Int `json:"new_fee"`
}

type SetFeeRecipient struct {
	NewFeeRecipient string `json:"new_fee_recipient"`
}

type SetSkimRecipient struct {
	NewSkimRecipient string `json:"new_skim_recipient"`
}

type SetName struct {
	Name string `json:"name"`
}

type SetSymbol struct {
	Symbol string `json:"symbol"`
}

type UpdateLastTotalAssets struct {
	UpdatedTotalAssets *big.Int `json:"updated_total_assets"`
}

type UpdateLostAssets struct {
	NewLostAssets *big.Int `json:"new_lost_assets"`
}

func (*CreateVault) Kind() EventKind                { return EventKindCreateVault }
func (*Transfer) Kind() EventKind                   { return EventKindTransfer }
func (*Deposit) Kind() EventKind                    { return EventKindDeposit }
func (*Withdraw) Kind() EventKind                   { return EventKindWithdraw }
func (*AccrueInterest) Kind() EventKind             { return EventKindAccrueInterest }
func (*ReallocateSupply) Kind() EventKind           { return EventKindReallocateSupply }
func (*ReallocateWithdraw) Kind() EventKind         { return EventKindReallocateWithdraw }
func (*SetSupplyQueue) Kind() EventKind             { return EventKindSetSupplyQueue }
func (*SetWithdrawQueue) Kind() EventKind           { return EventKindSetWithdrawQueue }
func (*SubmitCap) Kind() EventKind                  { return EventKindSubmitCap }
func (*SetCap) Kind() EventKind                     { return EventKindSetCap }
func (*RevokePendingCap) Kind() EventKind           { return EventKindRevokePendingCap }
func (*SubmitMarketRemoval) Kind() EventKind        { return EventKindSubmitMarketRemoval }
func (*RevokePendingMarketRemoval) Kind() EventKind { return EventKindRevokePendingMarketRemoval }
func (*SubmitGuardian) Kind() EventKind             { return EventKindSubmitGuardian }
func (*SetGuardian) Kind() EventKind                { return EventKindSetGuardian }
func (*RevokePendingGuardian) Kind() EventKind      { return EventKindRevokePendingGuardian }
func (*SubmitTimelock) Kind() EventKind             { return EventKindSubmitTimelock }
func (*SetTimelock) Kind() EventKind                { return EventKindSetTimelock }
func (*RevokePendingTimelock) Kind() EventKind      { return EventKindRevokePendingTimelock }
func (*OwnershipTransferStarted) Kind() EventKind   { return EventKindOwnershipTransferStarted }
func (*OwnershipTransferred) Kind() EventKind       { return EventKindOwnershipTransferred }
func (*SetCurator) Kind() EventKind                 { return EventKindSetCurator }
func (*SetIsAllocator) Kind() EventKind             { return EventKindSetIsAllocator }
func (*SetFee) Kind() EventKind                     { return EventKindSetFee }
func (*SetFeeRecipient) Kind() EventKind            { return EventKindSetFeeRecipient }
func (*SetSkimRecipient) Kind() EventKind           { return EventKindSetSkimRecipient }
func (*SetName) Kind() EventKind                    { return EventKindSetName }
func (*SetSymbol) Kind() EventKind                  { return EventKindSetSymbol }
func (*UpdateLastTotalAssets) Kind() EventKind      { return EventKindUpdateLastTotalAssets }
func (*UpdateLostAssets) Kind() EventKind           { return EventKindUpdateLostAssets }

func (*CreateVault) isEventPayload()                {}
func (*Transfer) isEventPayload()                   {}
func (*Deposit) isEventPayload()                    {}
func (*Withdraw) isEventPayload()                   {}
func (*AccrueInterest) isEventPayload()             {}
func (*ReallocateSupply) isEventPayload()           {}
func (*ReallocateWithdraw) isEventPayload()         {}
func (*SetSupplyQueue) isEventPayload()             {}
func (*SetWithdrawQueue) isEventPayload()           {}
func (*SubmitCap) isEventPayload()                  {}
func (*SetCap) isEventPayload()                     {}
func (*RevokePendingCap) isEventPayload()           {}
func (*SubmitMarketRemoval) isEventPayload()        {}
func (*RevokePendingMarketRemoval) isEventPayload() {}
func (*SubmitGuardian) isEventPayload()             {}
func (*SetGuardian) isEventPayload()                {}
func (*RevokePendingGuardian) isEventPayload()      {}
func (*SubmitTimelock) isEventPayload()             {}
func (*SetTimelock) isEventPayload()                {}
func (*RevokePendingTimelock) isEventPayload()      {}
func (*OwnershipTransferStarted) isEventPayload()   {}
func (*OwnershipTransferred) isEventPayload()       {}
func (*SetCurator) isEventPayload()                 {}
func (*SetIsAllocator) isEventPayload()             {}
func (*SetFee) isEventPayload()                     {}
func (*SetFeeRecipient) isEventPayload()            {}
func (*SetSkimRecipient) isEventPayload()           {}
func (*SetName) isEventPayload()                    {}
func (*SetSymbol) isEventPayload()                  {}
func (*UpdateLastTotalAssets) isEventPayload()      {}
func (*UpdateLostAssets) isEventPayload()           {}
