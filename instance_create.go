package gear

import (
	"github.com/Ichinose0/gear/internal/vkutil"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v2/khr_portability_enumeration"
	"golang.org/x/exp/slog"
)

// InstanceFeature describes extra capabilities to request beyond the baseline this
// library always enables
type InstanceFeature struct {
	// Extensions is a set of additional instance extension names to enable
	Extensions []string
	// DeviceFeatures is a set of device-level features that every Device created
	// through the Instance will request
	DeviceFeatures []DeviceFeature
}

// EmptyInstanceFeature creates an InstanceFeature that requests nothing beyond the
// baseline
func EmptyInstanceFeature() InstanceFeature {
	return InstanceFeature{}
}

// UseSwapchain requests swapchain support from every Device created through the
// Instance. This library does not create surfaces or swapchains itself, it only
// enables the device extension
func (f InstanceFeature) UseSwapchain() InstanceFeature {
	f.DeviceFeatures = append(f.DeviceFeatures, DeviceFeatureSwapchain)
	return f
}

// InstanceBuilder assembles the options for building an Instance
type InstanceBuilder struct {
	appName    string
	engineName string
	apiVersion common.APIVersion
	feature    InstanceFeature
	logger     *slog.Logger
}

// NewInstanceBuilder creates an InstanceBuilder with default options
func NewInstanceBuilder() *InstanceBuilder {
	return &InstanceBuilder{}
}

// AppName sets the application name reported to the driver
func (b *InstanceBuilder) AppName(name string) *InstanceBuilder {
	b.appName = name
	return b
}

// EngineName sets the engine name reported to the driver
func (b *InstanceBuilder) EngineName(name string) *InstanceBuilder {
	b.engineName = name
	return b
}

// VulkanVersion sets the Vulkan API version to request. When it is not called the
// instance targets Vulkan 1.0
func (b *InstanceBuilder) VulkanVersion(version common.APIVersion) *InstanceBuilder {
	b.apiVersion = version
	return b
}

// Feature requests the provided feature set from the instance
func (b *InstanceBuilder) Feature(feature InstanceFeature) *InstanceBuilder {
	b.feature = feature
	return b
}

// Logger sets the logger that the Instance and everything created through it will
// write to. When it is not called, slog.Default is used
func (b *InstanceBuilder) Logger(logger *slog.Logger) *InstanceBuilder {
	b.logger = logger
	return b
}

// Build creates the Instance. The debug utils extension is always enabled and a debug
// messenger routing validation output into the logger is registered for the lifetime
// of the Instance
func (b *InstanceBuilder) Build() (*Instance, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	loader, err := core.CreateSystemLoader()
	if err != nil {
		return nil, errors.Wrap(err, "creating vulkan system loader")
	}

	availableExtensions, _, err := loader.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerating available instance extensions")
	}

	extensionNames := []string{ext_debug_utils.ExtensionName}
	extensionNames = append(extensionNames, b.feature.Extensions...)

	var flags core1_0.InstanceCreateFlags
	if _, ok := availableExtensions[khr_portability_enumeration.ExtensionName]; ok {
		extensionNames = append(extensionNames, khr_portability_enumeration.ExtensionName)
		flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	appName := b.appName
	if appName == "" {
		appName = "gear application"
	}
	engineName := b.engineName
	if engineName == "" {
		engineName = "gear"
	}
	apiVersion := b.apiVersion
	if apiVersion == 0 {
		apiVersion = common.Vulkan1_0
	}

	relay := &debugRelay{logger: logger}
	messengerInfo := ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityInfo,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    relay.callback,
	}

	instance, _, err := loader.CreateInstance(nil, core1_0.InstanceCreateInfo{
		ApplicationName:       appName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            engineName,
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            apiVersion,
		EnabledExtensionNames: extensionNames,
		Flags:                 flags,
		NextOptions:           common.NextOptions{Next: messengerInfo},
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating vulkan instance")
	}

	debugLoader := ext_debug_utils.CreateExtensionFromInstance(instance)
	messenger, _, err := debugLoader.CreateDebugUtilsMessenger(instance, nil, messengerInfo)
	if err != nil {
		instance.Destroy(nil)
		return nil, errors.Wrap(err, "creating debug utils messenger")
	}

	logger.Debug("Instance::Build",
		slog.String("AppName", appName),
		slog.String("VulkanVersion", vkutil.VersionString(apiVersion)))

	return &Instance{
		logger:         logger,
		instance:       instance,
		debugMessenger: messenger,
		apiVersion:     apiVersion,
		deviceFeatures: b.feature.DeviceFeatures,
	}, nil
}
