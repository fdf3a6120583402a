package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/ratelimit"
)

// VaultCaller performs the read-only contract calls the reconcilers depend on
//
//go:generate mockgen -source=caller.go -destination=../../mocks/vault_caller.go -package=mocks -mock_names=VaultCaller=MockVaultCaller
type VaultCaller interface {
	// ConvertToAssets returns the assets the given shares are worth at the given block
	ConvertToAssets(ctx context.Context, chain domain.Chain, vault string, shares *big.Int, blockNumber uint64) (*big.Int, error)

	// AssetDecimals returns the decimals of an ERC-20 asset
	AssetDecimals(ctx context.Context, chain domain.Chain, asset string) (uint8, error)
}

type vaultCaller struct {
	clients map[domain.Chain]adapter.EthClient
	limiter ratelimit.Limiter
}

// NewVaultCaller creates a caller backed by one client per chain.
// Calls on a chain share the limiter budget of that chain.
func NewVaultCaller(clients map[domain.Chain]adapter.EthClient, limiter ratelimit.Limiter) VaultCaller {
	return &vaultCaller{clients: clients, limiter: limiter}
}

func (c *vaultCaller) client(chain domain.Chain) (adapter.EthClient, error) {
	client, ok := c.clients[chain]
	if !ok {
		return nil, fmt.Errorf("no rpc client configured for chain %s", chain)
	}
	return client, nil
}

// ConvertToAssets calls convertToAssets(uint256) on the vault
func (c *vaultCaller) ConvertToAssets(ctx context.Context, chain domain.Chain, vault string, shares *big.Int, blockNumber uint64) (*big.Int, error) {
	outputs, err := c.call(ctx, chain, metaMorphoABI, vault, blockNumber, "convertToAssets", shares)
	if err != nil {
		return nil, err
	}

	assets, ok := abi.ConvertType(outputs[0], new(big.Int)).(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected convertToAssets output type %T", outputs[0])
	}
	return assets, nil
}

// AssetDecimals calls decimals() on the asset at the latest block
func (c *vaultCaller) AssetDecimals(ctx context.Context, chain domain.Chain, asset string) (uint8, error) {
	outputs, err := c.call(ctx, chain, erc20ABI, asset, 0, "decimals")
	if err != nil {
		return 0, err
	}

	decimals, ok := outputs[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals output type %T", outputs[0])
	}
	return decimals, nil
}

// call packs, executes and unpacks a single-output view call. A zero block number means latest.
func (c *vaultCaller) call(ctx context.Context, chain domain.Chain, contract abi.ABI, address string, blockNumber uint64, method string, args ...interface{}) ([]interface{}, error) {
	client, err := c.client(chain)
	if err != nil {
		return nil, err
	}

	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	if err := c.limiter.Wait(ctx, string(chain)); err != nil {
		return nil, err
	}

	to := common.HexToAddress(address)
	var block *big.Int
	if blockNumber > 0 {
		block = new(big.Int).SetUint64(blockNumber)
	}

	result, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, block)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s on %s: %w", method, address, err)
	}

	outputs, err := contract.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", method, err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}
	return outputs, nil
}
