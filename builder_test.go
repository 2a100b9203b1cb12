package injector

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/suite"
)

type Clock interface {
	Now() string
}

type systemClock struct {
	Name string `config:"clock.name,default-clock"`
}

func (c *systemClock) Now() string { return c.Name }

type appService struct {
	Clock      Clock `inject:""`
	StartCount int
}

func (a *appService) OnStarted() error {
	a.StartCount++
	return nil
}

// ContainerSuite exercises the Builder/Container lifecycle end to end:
// each test builds its own container against a fresh registry, since
// Build consumes its Builder.
type ContainerSuite struct {
	suite.Suite
}

func TestContainerSuite(t *testing.T) {
	suite.Run(t, new(ContainerSuite))
}

func (s *ContainerSuite) build(configure func(b *Builder)) *Container {
	b := NewBuilder()
	DeclareKey[Clock](b, true)
	s.Require().NoError(b.Put(reflect.TypeOf((*systemClock)(nil))))
	s.Require().NoError(b.Put(reflect.TypeOf((*appService)(nil))))
	if configure != nil {
		configure(b)
	}
	c, err := b.Build()
	s.Require().NoError(err)
	return c
}

func (s *ContainerSuite) TestBuildWiresAndStartsComponents() {
	c := s.build(func(b *Builder) {
		b.PutParam("clock.name", "prod-clock")
	})

	svc, ok := c.Get(reflect.TypeOf((*appService)(nil)))
	s.Require().True(ok)
	app := svc.(*appService)
	s.Equal(1, app.StartCount)
	s.Require().NotNil(app.Clock)
	s.Equal("prod-clock", app.Clock.Now())
}

func (s *ContainerSuite) TestGetKeyResolvesDeclaredKey() {
	c := s.build(nil)

	v, ok := c.GetKey("clock")
	s.Require().True(ok)
	s.Equal("default-clock", v.(Clock).Now())
}

func (s *ContainerSuite) TestResolveAsTypedAndKeyed() {
	c := s.build(nil)

	byKey, err := ResolveAs[Clock](c, "clock")
	s.Require().NoError(err)
	s.Equal("default-clock", byKey.Now())

	byType, err := ResolveAs[*appService](c, "")
	s.Require().NoError(err)
	s.Equal(1, byType.StartCount)
}

func (s *ContainerSuite) TestOverrideProviderOutranksPutParam() {
	c := s.build(func(b *Builder) {
		b.PutParam("clock.name", "from-param")
		b.WithOverrideProvider(func(name string) (string, bool) {
			if name == "clock.name" {
				return "from-provider", true
			}
			return "", false
		})
	})

	v, _ := c.GetKey("clock")
	s.Equal("from-provider", v.(Clock).Now())
}

func (s *ContainerSuite) TestGetAllReturnsEveryAssignableComponent() {
	c := s.build(nil)

	all := c.GetAll(reflect.TypeOf((*Clock)(nil)).Elem())
	s.Len(all, 1)
}

func (s *ContainerSuite) TestBuildIsSingleUse() {
	b := NewBuilder()
	s.Require().NoError(b.Put(reflect.TypeOf((*systemClock)(nil))))
	_, err := b.Build()
	s.Require().NoError(err)

	_, err = b.Build()
	s.ErrorIs(err, ErrRegistrationClosed)
}

func (s *ContainerSuite) TestStopIsIdempotent() {
	c := s.build(nil)

	s.Require().NoError(c.Stop())
	s.Require().NoError(c.Stop(), "Stop is idempotent")
}

func (s *ContainerSuite) TestInjectPopulatesExternalStruct() {
	c := s.build(nil)

	external := &struct {
		Clock Clock `inject:""`
	}{}
	s.Require().NoError(c.Inject(external))
	s.Equal("default-clock", external.Clock.Now())
}
