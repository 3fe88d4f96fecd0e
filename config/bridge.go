package config

import (
	"time"

	"cosmossdk.io/math"
	"github.com/cockroachdb/errors"
	"github.com/hyperledger-labs/yui-bridge-relayer/core"
	"github.com/hyperledger-labs/yui-bridge-relayer/utils"
)

const defaultGuardInterval = time.Minute

// BridgeConfig configures one relay direction: headers of Source (and the heads of
// its parachains) relayed to Target
type BridgeConfig struct {
	Source string     `yaml:"source" json:"source"`
	Target string     `yaml:"target" json:"target"`
	Signer *utils.Any `yaml:"signer" json:"signer"`
	Calls  *utils.Any `yaml:"calls" json:"calls"`

	Tx            core.TxSubmitterConfig      `yaml:"tx" json:"tx"`
	RelayInterval time.Duration               `yaml:"relay-interval,omitempty" json:"relay_interval,omitempty"`
	Headers       *core.HeadersRelayConfig    `yaml:"headers,omitempty" json:"headers,omitempty"`
	Parachains    *core.ParachainsRelayConfig `yaml:"parachains,omitempty" json:"parachains,omitempty"`
	Guards        GuardsConfig                `yaml:"guards" json:"guards"`
	Status        StatusConfig                `yaml:"status" json:"status"`

	// cache
	signer  core.SignerConfig      `yaml:"-" json:"-"`
	encoder core.CallEncoderConfig `yaml:"-" json:"-"`
}

// GuardsConfig enables the guards of the target chain
type GuardsConfig struct {
	Interval time.Duration `yaml:"interval,omitempty" json:"interval,omitempty"`
	// MinBalance is the decimal floor of the relayer account free balance. Empty disables the guard.
	MinBalance string `yaml:"min-balance,omitempty" json:"min_balance,omitempty"`
	// SpecVersion stops the relay when the live spec_version differs from the descriptor
	SpecVersion bool `yaml:"spec-version" json:"spec_version"`
}

// StatusConfig configures where relay statuses are published besides the log
type StatusConfig struct {
	NatsURL string `yaml:"nats-url,omitempty" json:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty" json:"subject,omitempty"`
}

func (b *BridgeConfig) Validate() error {
	if b.Source == "" || b.Target == "" {
		return core.NewConfigurationError("source and target must be set")
	}
	if b.Source == b.Target {
		return core.NewConfigurationError("source and target must differ: %s", b.Source)
	}
	if b.Headers == nil && b.Parachains == nil {
		return core.NewConfigurationError("either headers or parachains must be enabled")
	}
	if b.Parachains != nil && len(b.Parachains.ParaIDs) == 0 {
		return core.NewConfigurationError("parachains: para-ids must not be empty")
	}
	if b.Parachains != nil && b.Parachains.BridgeParachainsPallet == "" {
		return core.NewConfigurationError("parachains: bridge-parachains-pallet must be set")
	}
	if b.Headers != nil && b.Headers.GrandpaPallet == "" {
		return core.NewConfigurationError("headers: grandpa-pallet must be set")
	}
	if _, err := b.GuardBalanceFloor(); err != nil {
		return err
	}
	return nil
}

// Init validates the bridge and resolves its typed sections
func (b *BridgeConfig) Init(registry *utils.InterfaceRegistry) error {
	if err := b.Validate(); err != nil {
		return err
	}
	var signer core.SignerConfig
	if err := utils.UnpackAny(registry, utils.KindSigner, b.Signer, &signer); err != nil {
		return errors.Mark(err, core.ErrConfiguration)
	} else if err := signer.Validate(); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid signer config"), core.ErrConfiguration)
	}
	var encoder core.CallEncoderConfig
	if err := utils.UnpackAny(registry, utils.KindEncoder, b.Calls, &encoder); err != nil {
		return errors.Mark(err, core.ErrConfiguration)
	} else if err := encoder.Validate(); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid calls config"), core.ErrConfiguration)
	}
	b.signer = signer
	b.encoder = encoder
	return nil
}

// BuildSigner returns the signer of the relayer account on the target chain
func (b *BridgeConfig) BuildSigner() (core.Signer, error) {
	if b.signer == nil {
		return nil, errors.New("signer is nil")
	}
	return b.signer.Build()
}

// BuildCallEncoder returns the call encoder of the target chain
func (b *BridgeConfig) BuildCallEncoder() (core.CallEncoder, error) {
	if b.encoder == nil {
		return nil, errors.New("call encoder is nil")
	}
	return b.encoder.Build()
}

// GuardBalanceFloor parses MinBalance. It returns nil when the guard is disabled.
func (b *BridgeConfig) GuardBalanceFloor() (*math.Uint, error) {
	if b.Guards.MinBalance == "" {
		return nil, nil
	}
	floor, err := math.ParseUint(b.Guards.MinBalance)
	if err != nil {
		return nil, core.NewConfigurationError("invalid min-balance %q: %v", b.Guards.MinBalance, err)
	}
	return &floor, nil
}

// GuardInterval returns the interval between two checks of each guard
func (b *BridgeConfig) GuardInterval() time.Duration {
	if b.Guards.Interval <= 0 {
		return defaultGuardInterval
	}
	return b.Guards.Interval
}

// BuildGuards returns the guard monitor of the target chain
func (b *BridgeConfig) BuildGuards(dst core.Chain, account core.AccountID) (*core.GuardMonitor, error) {
	monitor := core.NewGuardMonitor()
	floor, err := b.GuardBalanceFloor()
	if err != nil {
		return nil, err
	}
	if floor != nil {
		monitor.Add(core.NewBalanceGuard(dst, account, *floor), b.GuardInterval())
	}
	if b.Guards.SpecVersion {
		monitor.Add(core.NewSpecVersionGuard(dst, dst.Descriptor().RuntimeVersion().SpecVersion), b.GuardInterval())
	}
	return monitor, nil
}
