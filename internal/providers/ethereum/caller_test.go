package ethereum

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/mocks"
	"github.com/feral-file/ff-vault-indexer/internal/ratelimit"
)

func TestVaultCaller_ConvertToAssets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	client := mocks.NewMockEthClient(ctrl)
	caller := NewVaultCaller(map[domain.Chain]adapter.EthClient{domain.ChainEthereumMainnet: client}, ratelimit.NewLimiter(ratelimit.Config{}))

	expectedData, err := metaMorphoABI.Pack("convertToAssets", big.NewInt(500))
	require.NoError(t, err)
	output, err := metaMorphoABI.Methods["convertToAssets"].Outputs.Pack(big.NewInt(512))
	require.NoError(t, err)

	client.EXPECT().
		CallContract(ctx, gomock.Any(), big.NewInt(1234)).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, testVault, *msg.To)
			assert.Equal(t, expectedData, msg.Data)
			return output, nil
		})

	assets, err := caller.ConvertToAssets(ctx, domain.ChainEthereumMainnet, testVault.Hex(), big.NewInt(500), 1234)
	require.NoError(t, err)
	assert.Equal(t, "512", assets.String())
}

func TestVaultCaller_AssetDecimals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	client := mocks.NewMockEthClient(ctrl)
	caller := NewVaultCaller(map[domain.Chain]adapter.EthClient{domain.ChainBaseMainnet: client}, ratelimit.NewLimiter(ratelimit.Config{}))

	output, err := erc20ABI.Methods["decimals"].Outputs.Pack(uint8(6))
	require.NoError(t, err)

	var nilBlock *big.Int
	client.EXPECT().CallContract(ctx, gomock.Any(), nilBlock).Return(output, nil)

	decimals, err := caller.AssetDecimals(ctx, domain.ChainBaseMainnet, testBob.Hex())
	require.NoError(t, err)
	assert.Equal(t, uint8(6), decimals)
}

func TestVaultCaller_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	client := mocks.NewMockEthClient(ctrl)
	caller := NewVaultCaller(map[domain.Chain]adapter.EthClient{domain.ChainEthereumMainnet: client}, ratelimit.NewLimiter(ratelimit.Config{}))

	t.Run("unknown chain", func(t *testing.T) {
		_, err := caller.ConvertToAssets(ctx, domain.ChainBaseMainnet, testVault.Hex(), big.NewInt(1), 1)
		assert.Error(t, err)
	})

	t.Run("call failure", func(t *testing.T) {
		client.EXPECT().CallContract(ctx, gomock.Any(), gomock.Any()).Return(nil, errors.New("execution reverted"))
		_, err := caller.ConvertToAssets(ctx, domain.ChainEthereumMainnet, testVault.Hex(), big.NewInt(1), 1)
		assert.ErrorContains(t, err, "execution reverted")
	})

	t.Run("empty result", func(t *testing.T) {
		client.EXPECT().CallContract(ctx, gomock.Any(), gomock.Any()).Return([]byte{}, nil)
		_, err := caller.ConvertToAssets(ctx, domain.ChainEthereumMainnet, testVault.Hex(), big.NewInt(1), 1)
		assert.Error(t, err)
	})
}
