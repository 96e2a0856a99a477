package gear

import (
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Image is a Vulkan image bound to its own block of host-visible memory
type Image struct {
	device *Device
	image  core1_0.Image
	memory *DeviceMemory

	descriptor ImageDescriptor
	resourceID uint64
}

// VulkanImage returns the underlying Vulkan image handle, for recording into command
// buffers
func (i *Image) VulkanImage() core1_0.Image {
	return i.image
}

// Memory returns the memory block backing the image
func (i *Image) Memory() *DeviceMemory {
	return i.memory
}

// Extent returns the size of the image in texels
func (i *Image) Extent() Extent3D {
	return i.descriptor.extent
}

// Destroy destroys the image and then frees the memory backing it
func (i *Image) Destroy() error {
	i.device.logger.Debug("Image::Destroy")

	if i.image == nil {
		return nil
	}

	i.image.Destroy(nil)
	i.image = nil
	i.device.unregisterResource(i.resourceID)

	return i.memory.Destroy()
}
