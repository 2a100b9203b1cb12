package injector

import (
	"reflect"
	"strings"
)

// KeyDeclaration is a declared inject-key naming a canonical lookup key,
// plus an overwrite flag. Go interfaces carry no annotations of their
// own, so a KeyDeclaration is registered explicitly against the Builder
// instead.
type KeyDeclaration struct {
	Key       reflect.Type
	Name      string
	Overwrite bool
}

// DeclareKey marks interface K as an inject-key: any type later `Put` on
// b that implements K is additionally registered under K's name,
// lowercased and without its package path (Clock -> "clock"), honoring
// overwrite. Call before Put so the candidate set is complete when
// ancestor discovery runs.
func DeclareKey[K any](b *Builder, overwrite bool) {
	var zero K
	t := reflect.TypeOf(&zero).Elem()
	b.declareKey(KeyDeclaration{Key: t, Name: strings.ToLower(t.Name()), Overwrite: overwrite})
}

// DeclareKeyNamed is DeclareKey with an explicit registry key name instead
// of the interface's derived name, for when the inject-key should name a
// canonical lookup key distinct from the ancestor's own name.
func DeclareKeyNamed[K any](b *Builder, name string, overwrite bool) {
	var zero K
	t := reflect.TypeOf(&zero).Elem()
	b.declareKey(KeyDeclaration{Key: t, Name: name, Overwrite: overwrite})
}
