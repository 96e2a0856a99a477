package gear

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

// ImageType selects the dimensionality of an Image
type ImageType uint32

const (
	// ImageType2D creates an image addressed by width and height
	ImageType2D ImageType = iota
	// ImageType3D creates an image addressed by width, height and depth
	ImageType3D
)

var imageTypeMapping = make(map[ImageType]string)

func (t ImageType) String() string {
	return imageTypeMapping[t]
}

func init() {
	imageTypeMapping[ImageType2D] = "ImageType2D"
	imageTypeMapping[ImageType3D] = "ImageType3D"
}

func (t ImageType) toCore() core1_0.ImageType {
	if t == ImageType3D {
		return core1_0.ImageType3D
	}

	return core1_0.ImageType2D
}

// Extent3D is the size of an image in texels
type Extent3D struct {
	Width  int
	Height int
	Depth  int
}

// NewExtent3D builds an Extent3D from a width, height and depth
func NewExtent3D(width, height, depth int) Extent3D {
	return Extent3D{
		Width:  width,
		Height: height,
		Depth:  depth,
	}
}

// ImageDescriptor describes the image to create
type ImageDescriptor struct {
	imageType   ImageType
	extent      Extent3D
	mipLevels   int
	arrayLayers int
}

// NewImageDescriptor returns a descriptor for a 2D image of 100x100 texels with a
// single mip level and a single array layer
func NewImageDescriptor() ImageDescriptor {
	return ImageDescriptor{
		imageType:   ImageType2D,
		extent:      NewExtent3D(100, 100, 1),
		mipLevels:   1,
		arrayLayers: 1,
	}
}

// ImageType sets the dimensionality of the image
func (d ImageDescriptor) ImageType(imageType ImageType) ImageDescriptor {
	d.imageType = imageType
	return d
}

// Extent sets the size of the image in texels
func (d ImageDescriptor) Extent(extent Extent3D) ImageDescriptor {
	d.extent = extent
	return d
}

// NewImage creates an image and binds a fresh block of host-visible memory to it. The
// image always uses the R8G8B8A8 unsigned-normalized format with linear tiling, an
// undefined initial layout, color attachment usage and a single sample per texel
//
// connecter - The connecter for the physical device the Device was created from
//
// device - The Device the image belongs to
//
// descriptor - Describes the dimensionality and extent of the image
func NewImage(connecter DeviceConnecter, device *Device, descriptor ImageDescriptor) (*Image, error) {
	device.logger.Debug("NewImage",
		slog.String("ImageType", descriptor.imageType.String()),
		slog.Int("Width", descriptor.extent.Width),
		slog.Int("Height", descriptor.extent.Height),
		slog.Int("Depth", descriptor.extent.Depth),
	)

	image, _, err := device.device.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: descriptor.imageType.toCore(),
		Format:    core1_0.FormatR8G8B8A8UnsignedNormalized,
		Extent: core1_0.Extent3D{
			Width:  descriptor.extent.Width,
			Height: descriptor.extent.Height,
			Depth:  descriptor.extent.Depth,
		},
		MipLevels:     descriptor.mipLevels,
		ArrayLayers:   descriptor.arrayLayers,
		Samples:       core1_0.Samples1,
		Tiling:        core1_0.ImageTilingLinear,
		Usage:         core1_0.ImageUsageColorAttachment,
		SharingMode:   core1_0.SharingModeExclusive,
		InitialLayout: core1_0.ImageLayoutUndefined,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating image")
	}

	memory, err := allocForImage(connecter, device, image)
	if err != nil {
		// If we failed out, roll back the image creation
		image.Destroy(nil)
		return nil, err
	}

	return &Image{
		device: device,
		image:  image,
		memory: memory,

		descriptor: descriptor,
		resourceID: device.registerResource(resourceKindImage, memory.Size()),
	}, nil
}
