// Command orchestrator is the validator-side bridge orchestrator
// daemon: it runs the event oracle, eth signer, and (optionally)
// relayer loops described by internal/orchestrator against a Cosmos
// chain and an EVM chain. Flag layout follows the teacher's
// cmd/main.go RootCmd()/AddCosmosFlags()/AddEthFlags() pattern in
// e2e/interchaintestv8/cmd.
package main

import (
	"fmt"
	"os"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/bridgeabi"
	"github.com/cosmos-bridge/orchestrator/internal/config"
	"github.com/cosmos-bridge/orchestrator/internal/gravityrpc"
	"github.com/cosmos-bridge/orchestrator/internal/keystore"
	"github.com/cosmos-bridge/orchestrator/internal/metrics"
	"github.com/cosmos-bridge/orchestrator/internal/oracle"
	"github.com/cosmos-bridge/orchestrator/internal/orchestrator"
	"github.com/cosmos-bridge/orchestrator/internal/prices"
	"github.com/cosmos-bridge/orchestrator/internal/relayer"
	"github.com/cosmos-bridge/orchestrator/internal/signer"
)

const (
	flagCosmosGRPC       = "cosmos-grpc"
	flagCosmosLegacyRPC  = "cosmos-rpc"
	flagEthRPC           = "eth-rpc"
	flagFees             = "fees"
	flagCosmosPhrase     = "cosmos-phrase"
	flagEthereumKey      = "ethereum-key"
	flagBridgeContract   = "gravity-contract-address"
	flagAddressPrefix    = "address-prefix"
	flagConfig           = "config"
	flagKeys             = "keys"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orchestrator",
		Short: "Runs the Cosmos/EVM bridge validator orchestrator",
		RunE:  runOrchestrator,
	}

	cmd.Flags().String(flagCosmosGRPC, "", "Cosmos gRPC endpoint (required)")
	cmd.Flags().String(flagCosmosLegacyRPC, "", "Cosmos legacy (Tendermint) RPC endpoint (required)")
	cmd.Flags().String(flagEthRPC, "", "Ethereum JSON-RPC endpoint (required)")
	cmd.Flags().String(flagFees, "", "fee coin paid on every Cosmos transaction, e.g. 10ugraviton (required)")
	cmd.Flags().String(flagCosmosPhrase, "", "BIP39 mnemonic for the Cosmos delegate key, overrides --keys")
	cmd.Flags().String(flagEthereumKey, "", "hex-encoded EVM delegate private key, overrides --keys")
	cmd.Flags().String(flagBridgeContract, "", "override the bridge contract address instead of querying chain params")
	cmd.Flags().String(flagAddressPrefix, "cosmos", "bech32 human-readable prefix for Cosmos addresses")
	cmd.Flags().String(flagConfig, "", "path to the orchestrator's TOML configuration file")
	cmd.Flags().String(flagKeys, "", "path to a keys.toml/keys.json file holding the delegate key material")
	cmd.MarkFlagRequired(flagCosmosGRPC)
	cmd.MarkFlagRequired(flagCosmosLegacyRPC)
	cmd.MarkFlagRequired(flagEthRPC)
	cmd.MarkFlagRequired(flagFees)

	return cmd
}

func runOrchestrator(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	ctx := cmd.Context()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	configPath, _ := flags.GetString(flagConfig)
	cfg, err := config.Load(configPath)
	if err != nil {
		return bridge.NewUnrecoverableError("failed to load config: %v", err)
	}

	addressPrefix, _ := flags.GetString(flagAddressPrefix)
	sdk.GetConfig().SetBech32PrefixForAccount(addressPrefix, addressPrefix+sdk.PrefixPublic)

	id, err := buildIdentity(flags, addressPrefix)
	if err != nil {
		return err
	}

	cosmosGRPC, _ := flags.GetString(flagCosmosGRPC)
	cosmosRPC, _ := flags.GetString(flagCosmosLegacyRPC)
	ethRPC, _ := flags.GetString(flagEthRPC)

	conns, err := gravityrpc.BringUp(ctx, log, gravityrpc.Endpoints{
		CosmosGRPC:      cosmosGRPC,
		CosmosLegacyRPC: cosmosRPC,
		EthereumRPC:     ethRPC,
	})
	if err != nil {
		return err
	}

	if cfg.Metrics.MetricsEnabled {
		metrics.New("gravity_orchestrator")
		log.Info().Str("bind", cfg.Metrics.MetricsBind).Msg("metrics recording enabled")
	}

	var cliBridgeContract *ethcommon.Address
	if raw, _ := flags.GetString(flagBridgeContract); raw != "" {
		addr := ethcommon.HexToAddress(raw)
		cliBridgeContract = &addr
	}

	batchMode, err := relayer.ParseBatchRequestMode(cfg.Relayer.BatchRequestMode)
	if err != nil {
		return err
	}

	evmAdapter, ok := conns.Evm.(*gravityrpc.EvmAdapter)
	if !ok {
		return bridge.NewUnrecoverableError("internal error: EVM connection is not a gas-estimating adapter")
	}

	decoder := bridgeabi.NewDecoder()
	txBuilder := bridgeabi.NewTxBuilder(func() (bridge.UnsignedValset, error) {
		return conns.CosmosQuery.CurrentValset(ctx)
	})

	relayerLoopSpeed := time.Duration(cfg.Relayer.RelayerLoopSpeed) * time.Second

	opts := orchestrator.Options{
		RelayerEnabled: cfg.Orchestrator.RelayerEnabled,
		RelayerConfig: relayer.Config{
			LoopSpeed:        relayerLoopSpeed,
			BatchRequestMode: batchMode,
		},
		EventSignatures:   defaultEventSignatures(),
		LogDecoder:        decoder,
		RelayerTxBuilder:  txBuilder,
		GasEstimator:      evmAdapter,
		PriceOracle:       prices.AlwaysProfitable{},
		CLIBridgeContract: cliBridgeContract,
		RPCTimeout:        minDuration(oracle.IterationPeriod, signer.IterationPeriod, relayerLoopSpeed),
	}

	return orchestrator.Run(ctx, log, conns, id, opts)
}

// minDuration returns the smallest of the three loop periods. It is
// used as the shared RPC deadline each loop applies to every
// iteration, so no iteration's calls can outlive the fastest loop's
// period.
func minDuration(a, b, c time.Duration) time.Duration {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func buildIdentity(flags *pflag.FlagSet, addressPrefix string) (*bridge.OrchestratorIdentity, error) {
	feeStr, _ := flags.GetString(flagFees)
	fee, err := sdk.ParseCoinNormalized(feeStr)
	if err != nil {
		return nil, bridge.NewUnrecoverableError("failed to parse --%s %q: %v", flagFees, feeStr, err)
	}

	var stored *keystore.Keys
	if keysPath, _ := flags.GetString(flagKeys); keysPath != "" {
		stored, err = keystore.Load(keysPath)
		if err != nil {
			return nil, bridge.NewUnrecoverableError("failed to load --%s %q: %v", flagKeys, keysPath, err)
		}
	}

	var cliPhrase, cliEthKey *string
	if v, _ := flags.GetString(flagCosmosPhrase); v != "" {
		cliPhrase = &v
	}
	if v, _ := flags.GetString(flagEthereumKey); v != "" {
		cliEthKey = &v
	}
	keys := keystore.Resolve(stored, cliPhrase, cliEthKey)

	if keys.OrchestratorPhrase == nil {
		return nil, bridge.NewUnrecoverableError("no Cosmos delegate key: pass --%s or supply orchestrator_phrase via --%s", flagCosmosPhrase, flagKeys)
	}
	if keys.EthereumPrivateKey == nil {
		return nil, bridge.NewUnrecoverableError("no EVM delegate key: pass --%s or supply ethereum_private_key via --%s", flagEthereumKey, flagKeys)
	}

	cosmosKey, err := keystore.CosmosKeyFromMnemonic(*keys.OrchestratorPhrase)
	if err != nil {
		return nil, err
	}
	evmKey, err := keystore.EthereumKeyFromHex(*keys.EthereumPrivateKey)
	if err != nil {
		return nil, err
	}

	return &bridge.OrchestratorIdentity{
		CosmosSigningKey: cosmosKey,
		EvmSigningKey:    evmKey,
		Fee:              fee,
		AddressPrefix:    addressPrefix,
	}, nil
}

// defaultEventSignatures returns the topic-zero hashes of the five
// events declared in internal/bridgeabi's ABI, which the oracle
// watches for on the bridge contract.
func defaultEventSignatures() oracle.Signatures {
	return oracle.Signatures{
		SentToCosmos:             bridgeabi.ParsedABI.Events["SendToCosmosEvent"].ID,
		TransactionBatchExecuted: bridgeabi.ParsedABI.Events["TransactionBatchExecutedEvent"].ID,
		ValsetUpdated:            bridgeabi.ParsedABI.Events["ValsetUpdatedEvent"].ID,
		ERC20Deployed:            bridgeabi.ParsedABI.Events["ERC20DeployedEvent"].ID,
		LogicCallExecuted:        bridgeabi.ParsedABI.Events["LogicCallEvent"].ID,
	}
}
