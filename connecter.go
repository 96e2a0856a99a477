package gear

import (
	"math"
	"math/bits"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
	"golang.org/x/exp/slog"
)

// DeviceConnecter is a handle to a single physical device. It answers capability
// queries and creates the logical Device. Connecters own no Vulkan resources and do
// not need to be destroyed
type DeviceConnecter struct {
	logger         *slog.Logger
	physicalDevice core1_0.PhysicalDevice
	deviceFeatures []DeviceFeature
}

// Properties returns the driver-reported properties of the physical device
func (c DeviceConnecter) Properties() (*core1_0.PhysicalDeviceProperties, error) {
	properties, err := c.physicalDevice.Properties()
	if err != nil {
		return nil, errors.Wrap(err, "fetching physical device properties")
	}

	return properties, nil
}

// QueueFamilyProperties describes a single queue family exposed by a physical device
type QueueFamilyProperties struct {
	// Index is the queue family index passed to device creation and queue requests
	Index int
	// Count is the number of queues the family makes available
	Count int

	flags core1_0.QueueFlags
}

// IsGraphicsSupport reports whether queues in this family accept graphics work
func (q QueueFamilyProperties) IsGraphicsSupport() bool {
	return q.flags&core1_0.QueueGraphics != 0
}

// IsComputeSupport reports whether queues in this family accept compute work
func (q QueueFamilyProperties) IsComputeSupport() bool {
	return q.flags&core1_0.QueueCompute != 0
}

// IsTransferSupport reports whether queues in this family accept transfer work
func (q QueueFamilyProperties) IsTransferSupport() bool {
	return q.flags&core1_0.QueueTransfer != 0
}

// QueueFamilyProperties describes every queue family the physical device exposes. It
// returns NoValueError when the device reports none
func (c DeviceConnecter) QueueFamilyProperties() ([]QueueFamilyProperties, error) {
	c.logger.Debug("DeviceConnecter::QueueFamilyProperties")

	families := c.physicalDevice.QueueFamilyProperties()
	if len(families) == 0 {
		return nil, errors.Wrap(NoValueError, "the physical device reports no queue families")
	}

	wrapped := make([]QueueFamilyProperties, len(families))
	for familyIndex, family := range families {
		wrapped[familyIndex] = QueueFamilyProperties{
			Index: familyIndex,
			Count: family.QueueCount,
			flags: family.QueueFlags,
		}
	}

	return wrapped, nil
}

// MemoryProperties returns the memory types and heaps the physical device exposes
func (c DeviceConnecter) MemoryProperties() *core1_0.PhysicalDeviceMemoryProperties {
	return c.physicalDevice.MemoryProperties()
}

// IsSupportSwapchain reports whether devices created from this connecter can enable
// the khr_swapchain extension
func (c DeviceConnecter) IsSupportSwapchain() (bool, error) {
	c.logger.Debug("DeviceConnecter::IsSupportSwapchain")

	extensions, _, err := c.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return false, errors.Wrap(err, "enumerating device extensions")
	}

	_, ok := extensions[khr_swapchain.ExtensionName]
	return ok, nil
}

// FindMemoryTypeIndex chooses a memory type for an allocation. Candidate types must
// appear in memoryTypeBits and carry every flag in requiredFlags. Among candidates the
// type missing the fewest preferredFlags wins, lower indices breaking ties. It returns
// NoValueError when no type qualifies
func (c DeviceConnecter) FindMemoryTypeIndex(memoryTypeBits uint32, requiredFlags, preferredFlags core1_0.MemoryPropertyFlags) (int, error) {
	c.logger.Debug("DeviceConnecter::FindMemoryTypeIndex")

	memoryProperties := c.physicalDevice.MemoryProperties()

	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	for memTypeIndex, memoryType := range memoryProperties.MemoryTypes {
		memTypeBit := uint32(1 << memTypeIndex)

		if memTypeBit&memoryTypeBits == 0 {
			// This memory type is banned by the bitmask
			continue
		}

		flags := memoryType.PropertyFlags
		if requiredFlags&flags != requiredFlags {
			// This memory type is missing required flags
			continue
		}

		missingPreferredFlags := preferredFlags & ^flags
		cost := bits.OnesCount32(uint32(missingPreferredFlags))
		if cost == 0 {
			return memTypeIndex, nil
		} else if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	if bestMemoryTypeIndex < 0 {
		return -1, errors.Wrap(NoValueError, "no memory type satisfies the required property flags")
	}

	return bestMemoryTypeIndex, nil
}
