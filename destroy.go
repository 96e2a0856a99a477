package gear

// Destroyer is implemented by every type in this package that owns Vulkan resources.
// Destroy must be called exactly once, child resources before their parents
type Destroyer interface {
	Destroy() error
}
