package gear

import (
	"fmt"
	"unsafe"

	"github.com/Ichinose0/gear/internal/vkutil"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

type cacheOperation uint32

const (
	cacheOperationFlush cacheOperation = iota
	cacheOperationInvalidate
)

var cacheOperationMapping = make(map[cacheOperation]string)

func (o cacheOperation) String() string {
	return cacheOperationMapping[o]
}

func init() {
	cacheOperationMapping[cacheOperationFlush] = "cacheOperationFlush"
	cacheOperationMapping[cacheOperationInvalidate] = "cacheOperationInvalidate"
}

// DeviceMemory is a block of host-visible device memory backing exactly one buffer or
// image. The block is allocated and bound when its resource is created, stays bound at
// offset 0 for the resource's whole lifetime, and is freed when the resource is
// destroyed
type DeviceMemory struct {
	device *Device
	memory core1_0.DeviceMemory

	size            int
	memoryTypeIndex int
	resourceID      uint64

	mapReferences int
	mapData       unsafe.Pointer
}

func allocResourceMemory(connecter DeviceConnecter, device *Device, requirements *core1_0.MemoryRequirements) (*DeviceMemory, error) {
	memoryTypeIndex, err := connecter.FindMemoryTypeIndex(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible, 0)
	if err != nil {
		panic(fmt.Sprintf("no host-visible memory type can back the resource: %+v", err))
	}

	vulkanMemory, err := device.allocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return nil, err
	}

	return &DeviceMemory{
		device: device,
		memory: vulkanMemory,

		size:            requirements.Size,
		memoryTypeIndex: memoryTypeIndex,
		resourceID:      device.registerResource(resourceKindMemory, requirements.Size),
	}, nil
}

func allocForBuffer(connecter DeviceConnecter, device *Device, buffer core1_0.Buffer) (*DeviceMemory, error) {
	memory, err := allocResourceMemory(connecter, device, buffer.MemoryRequirements())
	if err != nil {
		return nil, err
	}

	_, err = buffer.BindBufferMemory(memory.memory, 0)
	if err != nil {
		// If we failed out, roll back the allocation
		memory.Destroy()
		return nil, errors.Wrap(err, "binding buffer memory")
	}

	return memory, nil
}

func allocForImage(connecter DeviceConnecter, device *Device, image core1_0.Image) (*DeviceMemory, error) {
	memory, err := allocResourceMemory(connecter, device, image.MemoryRequirements())
	if err != nil {
		return nil, err
	}

	_, err = image.BindImageMemory(memory.memory, 0)
	if err != nil {
		// If we failed out, roll back the allocation
		memory.Destroy()
		return nil, errors.Wrap(err, "binding image memory")
	}

	return memory, nil
}

// Size returns the allocated size of the block in bytes. It is at least as large as
// the resource that requested it
func (m *DeviceMemory) Size() int {
	return m.size
}

// MemoryTypeIndex returns the index of the memory type the block was allocated from
func (m *DeviceMemory) MemoryTypeIndex() int {
	return m.memoryTypeIndex
}

// Map maps the whole block into host address space and returns the mapping. Repeated
// calls return the same pointer. Each Map must be balanced by an Unmap before the
// block is destroyed
func (m *DeviceMemory) Map() (unsafe.Pointer, error) {
	m.device.logger.Debug("DeviceMemory::Map")

	if m.mapReferences > 0 {
		m.mapReferences++
		if m.mapData == nil {
			return nil, errors.New("the block is showing existing memory mapping references, but no mapped memory")
		}

		return m.mapData, nil
	}

	mappedData, _, err := m.memory.Map(0, -1, 0)
	if err != nil {
		return nil, errors.Wrap(err, "mapping device memory")
	}

	m.mapData = mappedData
	m.mapReferences = 1

	return mappedData, nil
}

// Unmap releases one Map reference, unmapping the block when none remain
func (m *DeviceMemory) Unmap() {
	m.device.logger.Debug("DeviceMemory::Unmap")

	if m.mapReferences == 0 {
		return
	}

	m.mapReferences--
	if m.mapReferences <= 0 {
		m.memory.Unmap()
		m.mapData = nil
	}
}

// Flush makes host writes in the given range visible to the device. It succeeds as a
// no-op when the memory type is host-coherent. A size of -1 covers the rest of the
// block from offset
func (m *DeviceMemory) Flush(offset, size int) error {
	m.device.logger.Debug("DeviceMemory::Flush")

	return m.flushOrInvalidate(offset, size, cacheOperationFlush)
}

// Invalidate makes device writes in the given range visible to the host. It succeeds
// as a no-op when the memory type is host-coherent. A size of -1 covers the rest of
// the block from offset
func (m *DeviceMemory) Invalidate(offset, size int) error {
	m.device.logger.Debug("DeviceMemory::Invalidate")

	return m.flushOrInvalidate(offset, size, cacheOperationInvalidate)
}

// Destroy unmaps the block if it is still mapped and frees the memory. The resource
// the block is bound to must be destroyed first
func (m *DeviceMemory) Destroy() error {
	m.device.logger.Debug("DeviceMemory::Destroy")

	if m.memory == nil {
		return nil
	}

	if m.mapReferences > 0 {
		m.mapReferences = 0
		m.mapData = nil
		m.memory.Unmap()
	}

	m.memory.Free(nil)
	m.memory = nil
	m.device.freeMemory()
	m.device.unregisterResource(m.resourceID)

	return nil
}

func (m *DeviceMemory) isHostNonCoherent() bool {
	flags := m.device.memoryProperties.MemoryTypes[m.memoryTypeIndex].PropertyFlags

	return flags&(core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent) == core1_0.MemoryPropertyHostVisible
}

func (m *DeviceMemory) flushOrInvalidateRange(offset, size int, outRange *core1_0.MappedMemoryRange) (bool, error) {
	// A size of -1 indicates the rest of the block
	if size == 0 || size < -1 || !m.isHostNonCoherent() {
		return false, nil
	}

	nonCoherentAtomSize := m.device.nonCoherentAtomSize
	vkutil.DebugCheckPow2(nonCoherentAtomSize, "physical device NonCoherentAtomSize")

	if offset > m.size {
		return false, errors.Newf("offset %d is past the end of the block, which is size %d", offset, m.size)
	}
	if size > 0 && (offset+size) > m.size {
		return false, errors.Newf("offset %d places the end of the range %d past the end of the block, which is size %d", offset, offset+size, m.size)
	}

	outRange.Memory = m.memory
	outRange.Offset = vkutil.AlignDown(offset, uint(nonCoherentAtomSize))

	outRange.Size = m.size - outRange.Offset
	if size > 0 {
		alignedSize := vkutil.AlignUp(size+(offset-outRange.Offset), uint(nonCoherentAtomSize))
		if alignedSize < outRange.Size {
			outRange.Size = alignedSize
		}
	}

	return true, nil
}

func (m *DeviceMemory) flushOrInvalidate(offset, size int, operation cacheOperation) error {
	var memRange core1_0.MappedMemoryRange
	success, err := m.flushOrInvalidateRange(offset, size, &memRange)
	if err != nil {
		return err
	} else if !success {
		// Can't flush/invalidate this
		return nil
	}

	ranges := []core1_0.MappedMemoryRange{memRange}

	switch operation {
	case cacheOperationFlush:
		_, err = m.device.device.FlushMappedMemoryRanges(ranges)
		if err != nil {
			return errors.Wrap(err, "flushing mapped memory range")
		}

		return nil
	case cacheOperationInvalidate:
		_, err = m.device.device.InvalidateMappedMemoryRanges(ranges)
		if err != nil {
			return errors.Wrap(err, "invalidating mapped memory range")
		}

		return nil
	}

	return errors.Newf("attempted to carry out invalid cache operation %s", operation.String())
}
