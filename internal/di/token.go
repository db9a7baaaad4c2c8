package di

import "fmt"

// Token is a typed service name.
type Token[T any] struct {
	name string
}

// NewToken declares a typed service name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

func (t Token[T]) String() string {
	return t.name
}

// RegisterToken registers a lazily built, typed service.
func RegisterToken[T any](c Container, token Token[T], factory func(sr ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	return Resolve[T](sr, token.name)
}

// Resolve fetches a service registered by plain name and asserts its type.
func Resolve[T any](sr ServiceRegistry, name string) T {
	s := sr.Get(name)
	typed, ok := s.(T)
	if !ok {
		var zero T
		panic(fmt.Sprintf("di: service %q is %T, want %T", name, s, zero))
	}
	return typed
}
