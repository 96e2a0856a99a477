package vkutil

import (
	"fmt"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// VersionString renders a packed Vulkan version as "major.minor.patch"
func VersionString(version common.APIVersion) string {
	packed := uint32(version)
	return fmt.Sprintf("%d.%d.%d", packed>>22, (packed>>12)&0x3ff, packed&0xfff)
}
