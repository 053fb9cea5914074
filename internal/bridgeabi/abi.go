// Package bridgeabi is the hand-maintained bridge-contract ABI binding
// the oracle and relayer loops are parameterized on. Unlike
// abigen-generated bindings, which are produced from contract
// sources, this package has no contract source to generate from, so it
// builds its
// abi.ABI from a literal JSON definition using the same
// go-ethereum/accounts/abi machinery abigen's output uses underneath.
package bridgeabi

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// contractABIJSON declares the five events the oracle watches for and
// the three methods the relayer calls, in the shapes
// internal/bridge's event and signed-item types expect.
const contractABIJSON = `[
  {"type":"event","name":"SendToCosmosEvent","anonymous":false,"inputs":[
    {"name":"_tokenContract","type":"address","indexed":true},
    {"name":"_sender","type":"address","indexed":true},
    {"name":"_destination","type":"string","indexed":false},
    {"name":"_amount","type":"uint256","indexed":false},
    {"name":"_eventNonce","type":"uint256","indexed":false}
  ]},
  {"type":"event","name":"TransactionBatchExecutedEvent","anonymous":false,"inputs":[
    {"name":"_batchNonce","type":"uint256","indexed":true},
    {"name":"_token","type":"address","indexed":true},
    {"name":"_eventNonce","type":"uint256","indexed":false}
  ]},
  {"type":"event","name":"ValsetUpdatedEvent","anonymous":false,"inputs":[
    {"name":"_newValsetNonce","type":"uint256","indexed":true},
    {"name":"_eventNonce","type":"uint256","indexed":false},
    {"name":"_rewardAmount","type":"uint256","indexed":false},
    {"name":"_rewardToken","type":"address","indexed":false},
    {"name":"_validators","type":"address[]","indexed":false},
    {"name":"_powers","type":"uint256[]","indexed":false}
  ]},
  {"type":"event","name":"ERC20DeployedEvent","anonymous":false,"inputs":[
    {"name":"_cosmosDenom","type":"string","indexed":false},
    {"name":"_tokenContract","type":"address","indexed":true},
    {"name":"_name","type":"string","indexed":false},
    {"name":"_symbol","type":"string","indexed":false},
    {"name":"_decimals","type":"uint8","indexed":false},
    {"name":"_eventNonce","type":"uint256","indexed":false}
  ]},
  {"type":"event","name":"LogicCallEvent","anonymous":false,"inputs":[
    {"name":"_invalidationId","type":"bytes32","indexed":false},
    {"name":"_invalidationNonce","type":"uint256","indexed":false},
    {"name":"_returnData","type":"bytes","indexed":false},
    {"name":"_eventNonce","type":"uint256","indexed":false}
  ]},
  {"type":"function","name":"updateValset","stateMutability":"nonpayable","inputs":[
    {"name":"_newValset","type":"tuple","components":[
      {"name":"validators","type":"address[]"},
      {"name":"powers","type":"uint256[]"},
      {"name":"valsetNonce","type":"uint256"},
      {"name":"rewardAmount","type":"uint256"},
      {"name":"rewardToken","type":"address"}
    ]},
    {"name":"_currentValset","type":"tuple","components":[
      {"name":"validators","type":"address[]"},
      {"name":"powers","type":"uint256[]"},
      {"name":"valsetNonce","type":"uint256"},
      {"name":"rewardAmount","type":"uint256"},
      {"name":"rewardToken","type":"address"}
    ]},
    {"name":"_sigs","type":"tuple[]","components":[
      {"name":"v","type":"uint8"},
      {"name":"r","type":"bytes32"},
      {"name":"s","type":"bytes32"}
    ]}
  ],"outputs":[]},
  {"type":"function","name":"submitBatch","stateMutability":"nonpayable","inputs":[
    {"name":"_currentValset","type":"tuple","components":[
      {"name":"validators","type":"address[]"},
      {"name":"powers","type":"uint256[]"},
      {"name":"valsetNonce","type":"uint256"},
      {"name":"rewardAmount","type":"uint256"},
      {"name":"rewardToken","type":"address"}
    ]},
    {"name":"_sigs","type":"tuple[]","components":[
      {"name":"v","type":"uint8"},
      {"name":"r","type":"bytes32"},
      {"name":"s","type":"bytes32"}
    ]},
    {"name":"_amounts","type":"uint256[]"},
    {"name":"_destinations","type":"address[]"},
    {"name":"_fees","type":"uint256[]"},
    {"name":"_batchNonce","type":"uint256"},
    {"name":"_tokenContract","type":"address"},
    {"name":"_batchTimeout","type":"uint256"}
  ],"outputs":[]},
  {"type":"function","name":"submitLogicCall","stateMutability":"nonpayable","inputs":[
    {"name":"_currentValset","type":"tuple","components":[
      {"name":"validators","type":"address[]"},
      {"name":"powers","type":"uint256[]"},
      {"name":"valsetNonce","type":"uint256"},
      {"name":"rewardAmount","type":"uint256"},
      {"name":"rewardToken","type":"address"}
    ]},
    {"name":"_sigs","type":"tuple[]","components":[
      {"name":"v","type":"uint8"},
      {"name":"r","type":"bytes32"},
      {"name":"s","type":"bytes32"}
    ]},
    {"name":"_invalidationId","type":"bytes32"},
    {"name":"_invalidationNonce","type":"uint256"}
  ],"outputs":[]}
]`

// ParsedABI is the parsed form of contractABIJSON, built once at
// package init so a malformed literal fails fast at process startup
// rather than on the first decode.
var ParsedABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(contractABIJSON))
	if err != nil {
		panic("bridgeabi: invalid contract ABI literal: " + err.Error())
	}
	ParsedABI = parsed
}
