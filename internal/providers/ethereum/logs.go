package ethereum

import (
	"context"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
)

// filterLogsWithRetry fetches the logs of query.FromBlock..query.ToBlock in chunks of stepSize blocks.
// When the node rejects a chunk for returning too many results, the step is halved and the chunk retried.
// The returned logs are sorted by block number then log index.
func filterLogsWithRetry(ctx context.Context, client adapter.EthClient, query ethereum.FilterQuery, stepSize uint64) ([]types.Log, error) {
	currentStepSize := stepSize
	if currentStepSize == 0 {
		currentStepSize = 1
	}

	var allLogs []types.Log
	currentFrom := query.FromBlock.Uint64()
	to := query.ToBlock.Uint64()

	for currentFrom <= to {
		currentTo := currentFrom + currentStepSize - 1
		if currentTo > to || currentTo < currentFrom {
			currentTo = to
		}

		queryCopy := query
		queryCopy.FromBlock = new(big.Int).SetUint64(currentFrom)
		queryCopy.ToBlock = new(big.Int).SetUint64(currentTo)

		logs, err := client.FilterLogs(ctx, queryCopy)
		if err == nil {
			allLogs = append(allLogs, logs...)
			currentFrom = currentTo + 1
			continue
		}

		if !isTooManyResultsError(err) || currentStepSize == 1 {
			return nil, err
		}

		currentStepSize = currentStepSize / 2

		logger.WarnCtx(ctx, "Too many results, reducing step size",
			zap.Uint64("oldStepSize", currentStepSize*2),
			zap.Uint64("newStepSize", currentStepSize),
			zap.Uint64("fromBlock", currentFrom),
			zap.Uint64("toBlock", currentTo))
	}

	sortLogs(allLogs)
	return allLogs, nil
}

// sortLogs orders logs canonically by block number then log index
func sortLogs(logs []types.Log) {
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})
}

// isTooManyResultsError checks if the error is related to too many results
func isTooManyResultsError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "query returned more than 10000 results") ||
		strings.Contains(errStr, "query timeout exceeded") ||
		strings.Contains(errStr, "too many results") ||
		strings.Contains(errStr, "exceeded maximum") ||
		strings.Contains(errStr, "block range")
}
