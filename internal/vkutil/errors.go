package vkutil

import "github.com/pkg/errors"

// PowerOfTwoError is returned when a Vulkan limit that must be a power of two is not
var PowerOfTwoError error = errors.New("number must be a power of two")
