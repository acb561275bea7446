package output

// ConfigPort reads raw settings; empty means unset.
type ConfigPort interface {
	Get(key string) string
	GetWithDefault(key string, defaultValue string) string
}
