package gear

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

type resourceKind int

const (
	resourceKindBuffer resourceKind = iota
	resourceKindImage
	resourceKindMemory
)

func (k resourceKind) String() string {
	switch k {
	case resourceKindBuffer:
		return "Buffer"
	case resourceKindImage:
		return "Image"
	case resourceKindMemory:
		return "DeviceMemory"
	}

	return "Unknown"
}

type resourceInfo struct {
	kind resourceKind
	size int
}

// Device wraps a logical Vulkan device together with the bookkeeping needed to
// allocate memory for buffers and images and to notice resources that outlive it
type Device struct {
	logger *slog.Logger
	device core1_0.Device

	queueFamilyIndex         int
	memoryProperties         *core1_0.PhysicalDeviceMemoryProperties
	nonCoherentAtomSize      int
	maxMemoryAllocationCount int

	memoryCount int32

	resourceLock   sync.Mutex
	nextResourceID uint64
	resources      *swiss.Map[uint64, resourceInfo]
}

// Queue retrieves a queue from the family the Device was created with. queueIndex must
// be smaller than the number of queues requested at device creation
func (d *Device) Queue(queueIndex int) core1_0.Queue {
	return d.device.GetQueue(d.queueFamilyIndex, queueIndex)
}

// QueueFamilyIndex returns the queue family the Device requests its queues from
func (d *Device) QueueFamilyIndex() int {
	return d.queueFamilyIndex
}

// WaitIdle blocks until the device has finished all outstanding work
func (d *Device) WaitIdle() error {
	_, err := d.device.WaitIdle()
	if err != nil {
		return errors.Wrap(err, "waiting for device idle")
	}

	return nil
}

// Destroy waits for the device to go idle and destroys it. Resources created from the
// Device must be destroyed beforehand. Any still alive are logged as leaks, because
// their underlying Vulkan handles die with the device
func (d *Device) Destroy() error {
	d.logger.Debug("Device::Destroy")

	if d.device == nil {
		return nil
	}

	d.resourceLock.Lock()
	d.resources.Iter(func(id uint64, info resourceInfo) bool {
		d.logger.Error("resource leaked at device destruction",
			slog.Uint64("ResourceID", id),
			slog.String("Kind", info.kind.String()),
			slog.Int("Size", info.size),
		)
		return false
	})
	d.resourceLock.Unlock()

	_, err := d.device.WaitIdle()
	if err != nil {
		d.logger.Warn("failed to wait for device idle before destruction", slog.Any("error", err))
	}

	d.device.Destroy(nil)
	d.device = nil

	return nil
}

func (d *Device) registerResource(kind resourceKind, size int) uint64 {
	d.resourceLock.Lock()
	defer d.resourceLock.Unlock()

	d.nextResourceID++
	id := d.nextResourceID
	d.resources.Put(id, resourceInfo{kind: kind, size: size})

	return id
}

func (d *Device) unregisterResource(id uint64) {
	d.resourceLock.Lock()
	defer d.resourceLock.Unlock()

	d.resources.Delete(id)
}

func (d *Device) allocateMemory(allocateInfo core1_0.MemoryAllocateInfo) (memory core1_0.DeviceMemory, err error) {
	newMemoryCount := atomic.AddInt32(&d.memoryCount, 1)
	defer func() {
		// If we failed out, roll back the count increment
		if err != nil {
			atomic.AddInt32(&d.memoryCount, -1)
		}
	}()

	if int(newMemoryCount) > d.maxMemoryAllocationCount {
		return nil, core1_0.VKErrorTooManyObjects.ToError()
	}

	memory, _, err = d.device.AllocateMemory(nil, allocateInfo)
	if err != nil {
		return nil, errors.Wrap(err, "allocating device memory")
	}

	return memory, nil
}

func (d *Device) freeMemory() {
	newMemoryCount := atomic.AddInt32(&d.memoryCount, -1)
	if newMemoryCount < 0 {
		panic(fmt.Sprintf("device memory count went negative: %d", newMemoryCount))
	}
}
