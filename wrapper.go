package eventhub

// WrapperType tags the host runtime wrapping the SDK, carried in the hub's
// own shared state: settable only before start(), logged and ignored after
// (see EventHub.SetWrapperType).
type WrapperType string

const (
	WrapperNone        WrapperType = "NONE"
	WrapperReactNative WrapperType = "REACT_NATIVE"
	WrapperFlutter     WrapperType = "FLUTTER"
	WrapperCordova     WrapperType = "CORDOVA"
	WrapperUnity       WrapperType = "UNITY"
)
