package gear

import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/core1_0"
)

// Buffer is a Vulkan buffer bound to its own block of host-visible memory
type Buffer struct {
	device *Device
	buffer core1_0.Buffer
	memory *DeviceMemory

	size       int
	resourceID uint64
}

// VulkanBuffer returns the underlying Vulkan buffer handle, for recording into
// command buffers
func (b *Buffer) VulkanBuffer() core1_0.Buffer {
	return b.buffer
}

// Memory returns the memory block backing the buffer
func (b *Buffer) Memory() *DeviceMemory {
	return b.memory
}

// Size returns the buffer size in bytes
func (b *Buffer) Size() int {
	return b.size
}

// Write maps the buffer's memory, copies data into it and flushes the buffer range so
// the device sees the writes. The mapping is retained until a matching Lock, so
// repeated writes do not remap. Data longer than the buffer is truncated to fit
func (b *Buffer) Write(data []byte) error {
	b.device.logger.Debug("Buffer::Write")

	ptr, err := b.memory.Map()
	if err != nil {
		return err
	}

	writeSize := len(data)
	if writeSize > b.size {
		writeSize = b.size
	}

	dataSlice := unsafe.Slice((*byte)(ptr), b.size)
	copy(dataSlice, data[:writeSize])

	return b.memory.Flush(0, b.size)
}

// Lock releases the mapping acquired by Write
func (b *Buffer) Lock() {
	b.device.logger.Debug("Buffer::Lock")

	b.memory.Unmap()
}

// Destroy destroys the buffer and then frees the memory backing it
func (b *Buffer) Destroy() error {
	b.device.logger.Debug("Buffer::Destroy")

	if b.buffer == nil {
		return nil
	}

	b.buffer.Destroy(nil)
	b.buffer = nil
	b.device.unregisterResource(b.resourceID)

	return b.memory.Destroy()
}
