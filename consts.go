package injector

const (
	emptyString = ""
	pathSep     = " -> "

	// defaultConfigFileLocation is used when the builder is not given an
	// explicit properties file path.
	defaultConfigFileLocation = "settings.properties"
)

// Struct-tag names recognized by the reflection adapter. Go has no
// per-field annotations, so these play the role of the annotation
// vocabulary (Inject, Config, WithState) at the field level; InjectKey
// and ExecuteBefore are expressed through code (DeclareKey and
// method-naming, see keys.go and descriptor.go).
const (
	tagInject    = "inject"    // presence marks a field as an injection point
	tagWithState = "withstate" // minimum state the dependency must have reached
	tagConfig    = "config"    // "name,default" — marks a configuration point
)

// hookPrefix is the naming convention the reflection adapter scans for
// when collecting lifecycle hooks on a type: a method named "On" followed
// by the state's name in title case (e.g. "OnInitialized", "OnStarted",
// see hookMethodNames in descriptor.go) with signature
// func(<injected params>...) error is registered as a hook for that state.
const hookPrefix = "On"
