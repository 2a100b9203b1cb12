package injector

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget interface{ Widget() string }

type plainWidget struct{}

func (*plainWidget) Widget() string { return "plain" }

type fancyWidget struct{}

func (*fancyWidget) Widget() string { return "fancy" }

type selfKeyedWidget struct{}

func (*selfKeyedWidget) Widget() string               { return "self" }
func (*selfKeyedWidget) InjectKey() (string, bool) { return "widget", false }

func TestRegistryLaterAncestorOverwriteWinsHead(t *testing.T) {
	r := newRegistry()
	r.declareKey(KeyDeclaration{Key: reflect.TypeOf((*widget)(nil)).Elem(), Name: "widget", Overwrite: true})

	require.NoError(t, r.Put(reflect.TypeOf((*plainWidget)(nil))))
	require.NoError(t, r.Put(reflect.TypeOf((*fancyWidget)(nil))))

	head, ok := r.lookupKey("widget")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf((*fancyWidget)(nil)), head, "later overwrite=true ancestor registration should win the head")
}

func TestRegistrySelfDeclaredNoOverwriteWinsAfterAncestorOverwrite(t *testing.T) {
	r := newRegistry()
	r.declareKey(KeyDeclaration{Key: reflect.TypeOf((*widget)(nil)).Elem(), Name: "widget", Overwrite: true})

	require.NoError(t, r.Put(reflect.TypeOf((*plainWidget)(nil))))
	require.NoError(t, r.Put(reflect.TypeOf((*selfKeyedWidget)(nil))))

	head, ok := r.lookupKey("widget")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf((*selfKeyedWidget)(nil)), head)
}

func TestRegistryAncestorOverwriteFalseKeepsFirstRegisteredHead(t *testing.T) {
	r := newRegistry()
	r.declareKey(KeyDeclaration{Key: reflect.TypeOf((*widget)(nil)).Elem(), Name: "widget", Overwrite: false})

	require.NoError(t, r.Put(reflect.TypeOf((*plainWidget)(nil))))
	require.NoError(t, r.Put(reflect.TypeOf((*fancyWidget)(nil))))

	head, ok := r.lookupKey("widget")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf((*plainWidget)(nil)), head)

	all := r.streamKey("widget")
	assert.Len(t, all, 2)
}

func TestRegistryPutKeyIsAlwaysOverwrite(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.PutKey("w", reflect.TypeOf((*plainWidget)(nil))))
	require.NoError(t, r.PutKey("w", reflect.TypeOf((*fancyWidget)(nil))))

	head, ok := r.lookupKey("w")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf((*fancyWidget)(nil)), head)
	assert.Len(t, r.streamKey("w"), 1)
}

func TestRegistryFinalizePreservesFirstSeenOrder(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.Put(reflect.TypeOf((*fancyWidget)(nil))))
	require.NoError(t, r.Put(reflect.TypeOf((*plainWidget)(nil))))
	require.NoError(t, r.Put(reflect.TypeOf((*fancyWidget)(nil))))

	types := r.finalize()
	require.Len(t, types, 2)
	assert.Equal(t, reflect.TypeOf((*fancyWidget)(nil)), types[0])
	assert.Equal(t, reflect.TypeOf((*plainWidget)(nil)), types[1])
}

func TestNormalizeTypePromotesStructToPointer(t *testing.T) {
	type plain struct{}
	pt, err := normalizeType(reflect.TypeOf(plain{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.Ptr, pt.Kind())

	_, err = normalizeType(reflect.TypeOf("string"))
	assert.ErrorIs(t, err, ErrBeanTypeNotSupported)

	_, err = normalizeType(nil)
	assert.ErrorIs(t, err, ErrBeanTypeParamIsNil)
}
