// Package monolith provides the application container shared by the
// settler's bounded contexts.
package monolith

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/swap-settler/internal/asset"
	"github.com/fd1az/swap-settler/internal/config"
	"github.com/fd1az/swap-settler/internal/di"
	"github.com/fd1az/swap-settler/internal/logger"
)

// Monolith is what a module sees of the running application.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient() *ethclient.Client
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry

	// OnClose registers fn to run when the application closes. Hooks run in
	// reverse registration order.
	OnClose(name string, fn func() error)
}

// Module is a bounded context: it registers its services, then starts.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

type closeHook struct {
	name string
	fn   func() error
}

type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	ethClient     *ethclient.Client
	assetRegistry *asset.Registry
	container     di.Container

	mu     sync.Mutex
	hooks  []closeHook
	closed bool
}

// New dials the settlement chain and builds the shared container.
func New(cfg *config.Config, log logger.LoggerInterface) (*app, error) {
	ethClient, err := ethclient.Dial(cfg.Chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return newApp(cfg, log, ethClient), nil
}

func newApp(cfg *config.Config, log logger.LoggerInterface, ethClient *ethclient.Client) *app {
	// Well-known Scroll tokens. Others are registered on first use.
	assetRegistry := asset.DefaultRegistry()

	container := di.NewContainer()
	container.Register("config", cfg)
	container.Register("logger", log)
	if ethClient != nil {
		container.Register("ethClient", ethClient)
	}
	container.Register("assetRegistry", assetRegistry)

	return &app{
		config:        cfg,
		logger:        log,
		ethClient:     ethClient,
		assetRegistry: assetRegistry,
		container:     container,
	}
}

func (a *app) Config() *config.Config { return a.config }
func (a *app) Logger() logger.LoggerInterface { return a.logger }
func (a *app) EthClient() *ethclient.Client { return a.ethClient }
func (a *app) AssetRegistry() *asset.Registry { return a.assetRegistry }
func (a *app) Services() di.ServiceRegistry { return a.container }

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

func (a *app) OnClose(name string, fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, closeHook{name: name, fn: fn})
}

// RegisterModules registers modules in order, stopping at the first error.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return fmt.Errorf("register %T: %w", m, err)
		}
	}
	return nil
}

// StartModules starts modules in order, stopping at the first error.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return fmt.Errorf("start %T: %w", m, err)
		}
	}
	return nil
}

// Close runs the close hooks, then drops the RPC connection. Every hook
// runs even when an earlier one fails. Close is idempotent.
func (a *app) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(); err != nil {
			a.logger.Warn(context.Background(), "close hook failed", "hook", hooks[i].name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
		}
	}

	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return errors.Join(errs...)
}
