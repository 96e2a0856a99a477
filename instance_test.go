package gear

import (
	"bytes"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/mocks"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"golang.org/x/exp/slog"
)

func TestInstanceVulkanVersion(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockInstance := mocks.NewMockInstance(ctrl)
	instance := &Instance{
		logger:     testLogger(),
		instance:   mockInstance,
		apiVersion: common.Vulkan1_2,
	}

	version, ok := instance.VulkanVersion()
	require.True(t, ok)
	require.Equal(t, "1.2.0", version)

	mockInstance.EXPECT().Destroy(nil)
	require.NoError(t, instance.Destroy())

	_, ok = instance.VulkanVersion()
	require.False(t, ok)
}

func TestEnumerateConnecters(t *testing.T) {
	ctrl := gomock.NewController(t)

	firstDevice := mocks.NewMockPhysicalDevice(ctrl)
	secondDevice := mocks.NewMockPhysicalDevice(ctrl)

	mockInstance := mocks.NewMockInstance(ctrl)
	mockInstance.EXPECT().EnumeratePhysicalDevices().Return(
		[]core1_0.PhysicalDevice{firstDevice, secondDevice}, core1_0.VKSuccess, nil)

	instance := &Instance{
		logger:         testLogger(),
		instance:       mockInstance,
		deviceFeatures: []DeviceFeature{DeviceFeatureSwapchain},
	}

	connecters, err := instance.EnumerateConnecters()
	require.NoError(t, err)
	require.Len(t, connecters, 2)
	require.Equal(t, firstDevice, connecters[0].physicalDevice)
	require.Equal(t, secondDevice, connecters[1].physicalDevice)

	// Connecters inherit the device features the instance was built with
	require.Equal(t, []DeviceFeature{DeviceFeatureSwapchain}, connecters[0].deviceFeatures)
}

func TestEnumerateConnectersEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockInstance := mocks.NewMockInstance(ctrl)
	mockInstance.EXPECT().EnumeratePhysicalDevices().Return(nil, core1_0.VKSuccess, nil)

	instance := &Instance{
		logger:   testLogger(),
		instance: mockInstance,
	}

	_, err := instance.EnumerateConnecters()
	require.ErrorIs(t, err, NoValueError)
}

func TestDefaultConnecter(t *testing.T) {
	ctrl := gomock.NewController(t)

	firstDevice := mocks.NewMockPhysicalDevice(ctrl)
	secondDevice := mocks.NewMockPhysicalDevice(ctrl)

	mockInstance := mocks.NewMockInstance(ctrl)
	mockInstance.EXPECT().EnumeratePhysicalDevices().Return(
		[]core1_0.PhysicalDevice{firstDevice, secondDevice}, core1_0.VKSuccess, nil)

	instance := &Instance{
		logger:   testLogger(),
		instance: mockInstance,
	}

	connecter, err := instance.DefaultConnecter()
	require.NoError(t, err)
	require.Equal(t, firstDevice, connecter.physicalDevice)
}

func TestInstanceDestroy(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockInstance := mocks.NewMockInstance(ctrl)
	mockInstance.EXPECT().Destroy(nil)

	instance := &Instance{
		logger:   testLogger(),
		instance: mockInstance,
	}

	require.NoError(t, instance.Destroy())

	// A second destroy must not reach the driver again
	require.NoError(t, instance.Destroy())
}

func TestDebugRelayRoutesBySeverity(t *testing.T) {
	logOutput := &bytes.Buffer{}
	relay := &debugRelay{
		logger: slog.New(slog.NewTextHandler(logOutput, nil)),
	}

	consumed := relay.callback(ext_debug_utils.TypeValidation, ext_debug_utils.SeverityError, &ext_debug_utils.DebugUtilsMessengerCallbackData{
		Message: "validation exploded",
	})
	require.False(t, consumed)
	require.Contains(t, logOutput.String(), "level=ERROR")
	require.Contains(t, logOutput.String(), "validation exploded")
	require.Contains(t, logOutput.String(), "MessageType=")

	logOutput.Reset()
	relay.callback(ext_debug_utils.TypeGeneral, ext_debug_utils.SeverityWarning, &ext_debug_utils.DebugUtilsMessengerCallbackData{
		Message: "watch out",
	})
	require.Contains(t, logOutput.String(), "level=WARN")
	require.Contains(t, logOutput.String(), "watch out")

	logOutput.Reset()
	relay.callback(ext_debug_utils.TypeGeneral, ext_debug_utils.SeverityInfo, &ext_debug_utils.DebugUtilsMessengerCallbackData{
		Message: "just noise",
	})
	require.Contains(t, logOutput.String(), "level=INFO")
	require.Contains(t, logOutput.String(), "just noise")
}
