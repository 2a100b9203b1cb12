package injector

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Plugin interface {
	Name() string
}

type pluginA struct{}

func (*pluginA) Name() string { return "a" }

type pluginB struct{}

func (*pluginB) Name() string { return "b" }

func TestKeyedCollectionPreservesRegistrationOrderUnderSharedKey(t *testing.T) {
	b := NewBuilder()
	DeclareKey[Plugin](b, false)
	require.NoError(t, b.Put(reflect.TypeOf((*pluginA)(nil))))
	require.NoError(t, b.Put(reflect.TypeOf((*pluginB)(nil))))

	c, err := b.Build()
	require.NoError(t, err)

	all := c.GetAll(reflect.TypeOf((*Plugin)(nil)).Elem())
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].(Plugin).Name())
	assert.Equal(t, "b", all[1].(Plugin).Name())

	head, ok := c.GetKey("plugin")
	require.True(t, ok)
	assert.Equal(t, "a", head.(Plugin).Name(), "first-registered plugin stays the key's default head")
}

type selfKeyedPluginC struct{}

func (*selfKeyedPluginC) Name() string             { return "c" }
func (*selfKeyedPluginC) InjectKey() (string, bool) { return "plugin", true }

func TestSelfDeclaredKeyOverwritesAncestorKeyHead(t *testing.T) {
	b := NewBuilder()
	DeclareKey[Plugin](b, false)
	require.NoError(t, b.Put(reflect.TypeOf((*pluginA)(nil))))
	require.NoError(t, b.Put(reflect.TypeOf((*selfKeyedPluginC)(nil))))

	c, err := b.Build()
	require.NoError(t, err)

	head, ok := c.GetKey("plugin")
	require.True(t, ok)
	assert.Equal(t, "c", head.(Plugin).Name(), "self-declared overwrite=true key registration wins the head")
}

type trailRecorder struct {
	Events []string
}

type stageBase struct {
	Recorder *trailRecorder `inject:""`
}

func (s *stageBase) record(tag string) {
	s.Recorder.Events = append(s.Recorder.Events, tag)
}

type stageFirst struct{ stageBase }

func (s *stageFirst) OnStarted() error { s.record("start:first"); return nil }
func (s *stageFirst) OnStopped() error { s.record("stop:first"); return nil }

type stageSecond struct{ stageBase }

func (s *stageSecond) OnStarted() error { s.record("start:second"); return nil }
func (s *stageSecond) OnStopped() error { s.record("stop:second"); return nil }

func TestStopRunsInSameForwardOrderAsStart(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Put(reflect.TypeOf((*trailRecorder)(nil))))
	require.NoError(t, b.Put(reflect.TypeOf((*stageFirst)(nil))))
	require.NoError(t, b.Put(reflect.TypeOf((*stageSecond)(nil))))

	c, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, c.Stop())

	rec, ok := c.Get(reflect.TypeOf((*trailRecorder)(nil)))
	require.True(t, ok)
	assert.Equal(t, []string{"start:first", "start:second", "stop:first", "stop:second"}, rec.(*trailRecorder).Events)
}
