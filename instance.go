package gear

import (
	"github.com/Ichinose0/gear/internal/vkutil"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"golang.org/x/exp/slog"
)

// Instance wraps a Vulkan instance together with the debug messenger registered when
// the instance was built. It is the entry point for locating physical devices
type Instance struct {
	logger         *slog.Logger
	instance       core1_0.Instance
	debugMessenger ext_debug_utils.DebugUtilsMessenger
	apiVersion     common.APIVersion
	deviceFeatures []DeviceFeature
}

// EnumerateConnecters returns a DeviceConnecter for every physical device visible to
// the instance. It returns NoValueError when no devices are present
func (i *Instance) EnumerateConnecters() ([]DeviceConnecter, error) {
	i.logger.Debug("Instance::EnumerateConnecters")

	devices, _, err := i.instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating physical devices")
	}
	if len(devices) == 0 {
		return nil, errors.Wrap(NoValueError, "no physical devices are available to this instance")
	}

	connecters := make([]DeviceConnecter, len(devices))
	for deviceIndex, device := range devices {
		connecters[deviceIndex] = DeviceConnecter{
			logger:         i.logger,
			physicalDevice: device,
			deviceFeatures: i.deviceFeatures,
		}
	}

	return connecters, nil
}

// DefaultConnecter returns the first available DeviceConnecter.
//
// Deprecated: Use EnumerateConnecters to manually get the appropriate one.
func (i *Instance) DefaultConnecter() (DeviceConnecter, error) {
	i.logger.Debug("Instance::DefaultConnecter")

	connecters, err := i.EnumerateConnecters()
	if err != nil {
		return DeviceConnecter{}, err
	}

	return connecters[0], nil
}

// VulkanVersion returns the Vulkan API version the instance was built against as a
// "major.minor.patch" string. It reports false once the instance has been destroyed
func (i *Instance) VulkanVersion() (string, bool) {
	if i.instance == nil {
		return "", false
	}

	return vkutil.VersionString(i.apiVersion), true
}

// Destroy tears down the debug messenger and then the instance. Devices and resources
// created through the instance must be destroyed first
func (i *Instance) Destroy() error {
	i.logger.Debug("Instance::Destroy")

	if i.instance == nil {
		return nil
	}

	if i.debugMessenger != nil {
		i.debugMessenger.Destroy(nil)
		i.debugMessenger = nil
	}
	i.instance.Destroy(nil)
	i.instance = nil

	return nil
}
