// Package di is a small lazily-resolving service container used to wire modules.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves services by name.
type ServiceRegistry interface {
	Get(name string) any
}

// Container is a ServiceRegistry that accepts registrations.
type Container interface {
	ServiceRegistry
	Register(name string, service any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
	Has(name string) bool
}

type container struct {
	mu        sync.RWMutex
	services  map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer returns an empty container.
func NewContainer() Container {
	return &container{
		services:  make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

// Register stores an already-built service.
func (c *container) Register(name string, service any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterFactory stores a constructor run once, on first Get.
func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.services, name)
	c.factories[name] = factory
}

func (c *container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, built := c.services[name]
	_, lazy := c.factories[name]
	return built || lazy
}

// Get resolves name, building it on first use. Unknown names panic: wiring
// errors are programmer errors found at startup.
func (c *container) Get(name string) any {
	c.mu.RLock()
	if s, ok := c.services[name]; ok {
		c.mu.RUnlock()
		return s
	}
	factory, ok := c.factories[name]
	c.mu.RUnlock()

	if !ok {
		panic(fmt.Sprintf("di: service %q is not registered", name))
	}

	// The factory runs unlocked so it can resolve its own dependencies.
	s := factory(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.services[name]; ok {
		return existing
	}
	c.services[name] = s
	return s
}
