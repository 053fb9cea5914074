package gravityrpc

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/rpcconn"
)

const defaultBindTimeout = 5 * time.Second

// Endpoints names the three URLs bring-up must resolve to working
// clients, mirroring the CLI flags of spec.md §6.
type Endpoints struct {
	CosmosGRPC       string
	CosmosLegacyRPC  string
	EthereumRPC      string
}

// BringUp resolves every endpoint in ep to a live client, applying the
// localhost/https-upgrade repair rules from internal/rpcconn, and
// assembles the bridge.Connections trio the rest of the orchestrator is
// built on. It is the Go counterpart of create_rpc_connections in the
// original orchestrator's connection_prep.rs: one call that either
// returns a fully validated set of connections or an UnrecoverableError.
func BringUp(ctx context.Context, log zerolog.Logger, ep Endpoints) (*bridge.Connections, error) {
	cosmosGRPCAny, err := rpcconn.Bind(ctx, log, "Cosmos gRPC", ep.CosmosGRPC, defaultBindTimeout, grpcProber{})
	if err != nil {
		return nil, err
	}
	cosmosConn := cosmosGRPCAny.(*grpc.ClientConn)

	legacyAny, err := rpcconn.Bind(ctx, log, "Cosmos legacy RPC", ep.CosmosLegacyRPC, defaultBindTimeout, legacyRESTProber{timeout: defaultBindTimeout})
	if err != nil {
		return nil, err
	}
	legacyClient := legacyAny.(*legacyRESTClient)

	evmAny, err := rpcconn.Bind(ctx, log, "Ethereum JSON-RPC", ep.EthereumRPC, defaultBindTimeout, evmProber{})
	if err != nil {
		return nil, err
	}
	evmClient := evmAny.(*ethclient.Client)

	query := NewCosmosQueryAdapter(cosmosConn, legacyClient)
	broadcast := NewCosmosBroadcastAdapter(cosmosConn, query)
	evm := NewEvmAdapter(evmClient)

	return &bridge.Connections{
		Evm:             evm,
		CosmosQuery:     query,
		CosmosBroadcast: broadcast,
	}, nil
}
