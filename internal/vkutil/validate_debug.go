//go:build debug_gear

package vkutil

// DebugCheckPow2 verifies that the numerical value passed in is a power of two, and panics
// if it is not. This method no-ops unless the debug_gear build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
