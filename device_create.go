package gear

import (
	"github.com/Ichinose0/gear/internal/vkutil"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v2/khr_swapchain"
	"golang.org/x/exp/slog"
)

// DeviceFeature indicates optional device capabilities to enable at device creation
type DeviceFeature int32

var deviceFeatureMapping = common.NewFlagStringMapping[DeviceFeature]()

func (f DeviceFeature) Register(str string) {
	deviceFeatureMapping.Register(f, str)
}
func (f DeviceFeature) String() string {
	return deviceFeatureMapping.FlagsToString(f)
}

const (
	// DeviceFeatureSwapchain activates the khr_swapchain device extension so that the
	// created Device can be used to present to surfaces
	DeviceFeatureSwapchain DeviceFeature = 1 << iota
)

func init() {
	DeviceFeatureSwapchain.Register("DeviceFeatureSwapchain")
}

func (f DeviceFeature) extensionNames() []string {
	var names []string
	if f&DeviceFeatureSwapchain != 0 {
		names = append(names, khr_swapchain.ExtensionName)
	}

	return names
}

// DeviceCreateOptions contains optional settings when creating a Device
type DeviceCreateOptions struct {
	// QueueFamilyIndex is the queue family the Device requests its queues from. When
	// nil, the first family that supports graphics work is chosen. Explicit indices
	// are passed through unchecked
	QueueFamilyIndex *int
	// Features requests device capabilities in addition to any captured by the
	// InstanceFeature the Instance was built with
	Features []DeviceFeature
	// QueuePriorities is the priority list for the requested queues. When empty a
	// single queue with priority 0.0 is requested
	QueuePriorities []float32
}

// CreateDevice creates a logical Device backed by this connecter's physical device
//
// options - Optional parameters: it is valid to leave all the fields blank
func (c DeviceConnecter) CreateDevice(options DeviceCreateOptions) (*Device, error) {
	c.logger.Debug("DeviceConnecter::CreateDevice")

	queueFamilyIndex, err := c.resolveQueueFamilyIndex(options.QueueFamilyIndex)
	if err != nil {
		return nil, err
	}

	var features DeviceFeature
	for _, feature := range c.deviceFeatures {
		features |= feature
	}
	for _, feature := range options.Features {
		features |= feature
	}
	extensionNames := features.extensionNames()

	availableExtensions, _, err := c.physicalDevice.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating device extensions")
	}
	if _, ok := availableExtensions[khr_portability_subset.ExtensionName]; ok {
		// Portability translation layers require this extension on every device that
		// advertises it
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	properties, err := c.physicalDevice.Properties()
	if err != nil {
		return nil, errors.Wrap(err, "fetching physical device properties")
	}

	nonCoherentAtomSize := properties.Limits.NonCoherentAtomSize
	if nonCoherentAtomSize < 1 {
		nonCoherentAtomSize = 1
	}
	err = vkutil.CheckPow2(nonCoherentAtomSize, "physical device NonCoherentAtomSize")
	if err != nil {
		return nil, err
	}

	queuePriorities := options.QueuePriorities
	if len(queuePriorities) == 0 {
		queuePriorities = []float32{0.0}
	}

	device, _, err := c.physicalDevice.CreateDevice(nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: queueFamilyIndex,
				QueuePriorities:  queuePriorities,
			},
		},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating logical device")
	}

	c.logger.Debug("Device created",
		slog.Int("QueueFamilyIndex", queueFamilyIndex),
		slog.String("Features", features.String()),
	)

	return &Device{
		logger:                   c.logger,
		device:                   device,
		queueFamilyIndex:         queueFamilyIndex,
		memoryProperties:         c.physicalDevice.MemoryProperties(),
		nonCoherentAtomSize:      nonCoherentAtomSize,
		maxMemoryAllocationCount: properties.Limits.MaxMemoryAllocationCount,
		resources:                swiss.NewMap[uint64, resourceInfo](8),
	}, nil
}

func (c DeviceConnecter) resolveQueueFamilyIndex(explicit *int) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}

	families, err := c.QueueFamilyProperties()
	if err != nil {
		return -1, err
	}

	for _, family := range families {
		if family.IsGraphicsSupport() {
			return family.Index, nil
		}
	}

	return -1, errors.Wrap(NoValueError, "no queue family supports graphics work")
}
