package gear

import (
	"encoding/json"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/mocks"
)

func TestBuildReport(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, _, _, device := readyDevice(t, ctrl, defaultDeviceSetup())
	device.registerResource(resourceKindBuffer, 64)
	device.registerResource(resourceKindImage, 40000)

	report, err := device.BuildReport()
	require.NoError(t, err)

	var parsed struct {
		QueueFamilyIndex         int
		MemoryAllocations        int
		MaxMemoryAllocationCount int
		ResourceCount            int
		Resources                map[string]struct {
			Kind string
			Size int
		}
	}
	require.NoError(t, json.Unmarshal(report, &parsed))

	require.Equal(t, 0, parsed.QueueFamilyIndex)
	require.Equal(t, 0, parsed.MemoryAllocations)
	require.Equal(t, 4096, parsed.MaxMemoryAllocationCount)
	require.Equal(t, 2, parsed.ResourceCount)
	require.Len(t, parsed.Resources, 2)
	require.Equal(t, "Buffer", parsed.Resources["1"].Kind)
	require.Equal(t, 64, parsed.Resources["1"].Size)
	require.Equal(t, "Image", parsed.Resources["2"].Kind)
	require.Equal(t, 40000, parsed.Resources["2"].Size)
}

func TestBuildReportTracksAllocations(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, mockDevice, _, device := readyDevice(t, ctrl, defaultDeviceSetup())

	memory := mocks.EasyMockDeviceMemory(ctrl)
	mockDevice.EXPECT().AllocateMemory(gomock.Any(), gomock.Any()).Return(memory, core1_0.VKSuccess, nil)
	_, err := device.allocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  128,
		MemoryTypeIndex: 0,
	})
	require.NoError(t, err)

	report, err := device.BuildReport()
	require.NoError(t, err)
	require.Contains(t, string(report), `"MemoryAllocations":1`)

	device.freeMemory()
	report, err = device.BuildReport()
	require.NoError(t, err)
	require.Contains(t, string(report), `"MemoryAllocations":0`)
}
