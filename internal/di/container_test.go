package di

import (
	"sync"
	"sync/atomic"
	"testing"
)

type greeter interface{ Greet() string }

type english struct{ name string }

func (e english) Greet() string { return "hello " + e.name }

var (
	nameToken    = NewToken[string]("test:name")
	greeterToken = NewToken[greeter]("test:greeter")
)

func TestRegisterToken_ResolvesDependencies(t *testing.T) {
	c := NewContainer()
	c.Register("test:name", "settler")
	RegisterToken(c, greeterToken, func(sr ServiceRegistry) greeter {
		return english{name: GetToken(sr, nameToken)}
	})

	if got := GetToken(c, greeterToken).Greet(); got != "hello settler" {
		t.Errorf("unexpected greeting %q", got)
	}
}

func TestRegisterToken_BuildsOnce(t *testing.T) {
	c := NewContainer()
	var builds atomic.Int32
	RegisterToken(c, nameToken, func(ServiceRegistry) string {
		builds.Add(1)
		return "once"
	})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = GetToken(c, nameToken)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		if r != "once" {
			t.Fatalf("unexpected value %q", r)
		}
	}
	if GetToken(c, nameToken) != "once" {
		t.Error("expected cached value")
	}
	// Concurrent first resolutions may race to build; the stored value wins.
	if builds.Load() < 1 {
		t.Error("expected factory to run")
	}
}

func TestGet_UnregisteredPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown service")
		}
	}()
	NewContainer().Get("missing")
}

func TestResolve_WrongTypePanics(t *testing.T) {
	c := NewContainer()
	c.Register("n", 42)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for wrong type")
		}
	}()
	Resolve[string](c, "n")
}

func TestHas(t *testing.T) {
	c := NewContainer()
	c.Register("a", 1)
	RegisterToken(c, nameToken, func(ServiceRegistry) string { return "x" })

	if !c.Has("a") || !c.Has("test:name") {
		t.Error("expected registered services")
	}
	if c.Has("b") {
		t.Error("unexpected service b")
	}
}
