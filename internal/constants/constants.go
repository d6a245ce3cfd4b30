package constants

const (
	AppName = "pyro-wing-wallet"

	// VaultKey is the single storage key holding the encrypted vault record.
	VaultKey = "pyro-wing-wallet-vault"
	// TokensKey holds the custom token list.
	TokensKey = "pyro-custom-tokens"

	// AgentTokenFile holds the HTTP agent's session token for local clients.
	AgentTokenFile = "agent-token"

	ConfigFile    = "config.yaml"
	VaultFileExt  = ".json"
	VaultDBFile   = "vault.db"
	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	// Cipher parameters. Salt and IV are generated independently per call.
	PBKDF2Iterations = 100_000
	DerivedKeyLen    = 32
	SaltLen          = 12
	IVLen            = 12

	MnemonicEntropyBits   = 128
	DefaultDerivationPath = "m/44'/60'/0'/0/0"

	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"

	EtherDecimals = 18
	NativeSymbol  = "ETH"
	NativeAddr    = "0x0000000000000000000000000000000000000000"

	MinPasswordLength = 8
	DefaultQRSize     = 256

	HexPrefix0x = "0x"
)
