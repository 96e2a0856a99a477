package gear

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// BufferUsage indicates the ways the pipeline is allowed to use a Buffer
type BufferUsage int32

var bufferUsageMapping = common.NewFlagStringMapping[BufferUsage]()

func (u BufferUsage) Register(str string) {
	bufferUsageMapping.Register(u, str)
}
func (u BufferUsage) String() string {
	return bufferUsageMapping.FlagsToString(u)
}

const (
	// BufferUsageVertex allows the buffer to be bound as a vertex buffer
	BufferUsageVertex BufferUsage = 1 << iota
	// BufferUsageIndex allows the buffer to be bound as an index buffer
	BufferUsageIndex
	// BufferUsageUniform allows the buffer to back a uniform descriptor
	BufferUsageUniform
	// BufferUsageStorage allows the buffer to back a storage descriptor
	BufferUsageStorage
	// BufferUsageTransferSrc allows the buffer to be the source of transfer commands
	BufferUsageTransferSrc
	// BufferUsageTransferDst allows the buffer to be the target of transfer commands
	BufferUsageTransferDst
)

func init() {
	BufferUsageVertex.Register("BufferUsageVertex")
	BufferUsageIndex.Register("BufferUsageIndex")
	BufferUsageUniform.Register("BufferUsageUniform")
	BufferUsageStorage.Register("BufferUsageStorage")
	BufferUsageTransferSrc.Register("BufferUsageTransferSrc")
	BufferUsageTransferDst.Register("BufferUsageTransferDst")
}

func (u BufferUsage) toCore() core1_0.BufferUsageFlags {
	var flags core1_0.BufferUsageFlags
	if u&BufferUsageVertex != 0 {
		flags |= core1_0.BufferUsageVertexBuffer
	}
	if u&BufferUsageIndex != 0 {
		flags |= core1_0.BufferUsageIndexBuffer
	}
	if u&BufferUsageUniform != 0 {
		flags |= core1_0.BufferUsageUniformBuffer
	}
	if u&BufferUsageStorage != 0 {
		flags |= core1_0.BufferUsageStorageBuffer
	}
	if u&BufferUsageTransferSrc != 0 {
		flags |= core1_0.BufferUsageTransferSrc
	}
	if u&BufferUsageTransferDst != 0 {
		flags |= core1_0.BufferUsageTransferDst
	}

	return flags
}

// BufferDescriptor describes the buffer to create
type BufferDescriptor struct {
	size  int
	usage BufferUsage
}

// EmptyBufferDescriptor returns a descriptor for a zero-sized vertex buffer. Grow it
// with Size and Usage before passing it to NewBuffer
func EmptyBufferDescriptor() BufferDescriptor {
	return BufferDescriptor{
		size:  0,
		usage: BufferUsageVertex,
	}
}

// Size sets the buffer size in bytes
func (d BufferDescriptor) Size(size int) BufferDescriptor {
	d.size = size
	return d
}

// Usage sets the ways the buffer is allowed to be used
func (d BufferDescriptor) Usage(usage BufferUsage) BufferDescriptor {
	d.usage = usage
	return d
}

// NewBuffer creates a buffer and binds a fresh block of host-visible memory to it
//
// connecter - The connecter for the physical device the Device was created from
//
// device - The Device the buffer belongs to
//
// descriptor - Describes the size and usage of the buffer
func NewBuffer(connecter DeviceConnecter, device *Device, descriptor BufferDescriptor) (*Buffer, error) {
	device.logger.Debug("NewBuffer",
		slog.Int("Size", descriptor.size),
		slog.String("Usage", descriptor.usage.String()),
	)

	buffer, _, err := device.device.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        descriptor.size,
		Usage:       descriptor.usage.toCore(),
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating buffer")
	}

	memory, err := allocForBuffer(connecter, device, buffer)
	if err != nil {
		// If we failed out, roll back the buffer creation
		buffer.Destroy(nil)
		return nil, err
	}

	return &Buffer{
		device: device,
		buffer: buffer,
		memory: memory,

		size:       descriptor.size,
		resourceID: device.registerResource(resourceKindBuffer, descriptor.size),
	}, nil
}
