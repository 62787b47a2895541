package consul

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/vfile/backend"
)

// ConsulBackend stores whole files in the HashiCorp Consul KV store, one
// key per file below a configurable prefix.
//
// Limitations:
// - Consul KV has a 512KB limit per value
// - Best suited for configuration files and other small documents
type ConsulBackend struct {
	mu     sync.Mutex
	client *api.Client
	kv     *api.KV

	config *ConsulBackendConfig
}

// ConsulBackendConfig contains configuration options for the Consul backend
type ConsulBackendConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "vfile")
	Prefix string
}

// NewConsulBackend creates a new Consul-backed filesystem
func NewConsulBackend(config *ConsulBackendConfig) (*ConsulBackend, error) {
	if config == nil {
		config = &ConsulBackendConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}

	if config.Prefix == "" {
		config.Prefix = "vfile"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulBackend{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Name returns the identifier name defined for this backend
func (*ConsulBackend) Name() string {
	return "consul"
}

// Open checks that the agent is reachable.
func (cb *ConsulBackend) Open(ctx context.Context) error {
	_, err := cb.client.Status().Leader()
	return err
}

// Close is part of the lifecycle behaviour and gets called when closing this backend
func (cb *ConsulBackend) Close(ctx context.Context) error {
	// Nothing to clean up - Consul client is stateless
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend
func (cb *ConsulBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityPersistent,
			backend.CapabilityAppend,
			backend.CapabilityExclusive,
		},
		// Consul KV has a default limit of 512KB per value
		MaxObjectSize: 512 * 1024,
	}
}

func (cb *ConsulBackend) buildKey(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return strings.TrimPrefix(path.Join(cb.config.Prefix, name), "/")
}
