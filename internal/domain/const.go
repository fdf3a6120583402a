package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// Vault share constants
	VAULT_SHARE_DECIMALS = 18
)
