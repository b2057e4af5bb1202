package render

import (
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_portability_subset"
)

// CreateLogicalDevice opens one queue on the graphics family and enables the
// required device extensions, plus portability subset when the device has it.
func CreateLogicalDevice(candidate *PhysicalDeviceCandidate, indices QueueFamilyIndices) (Device, Queue, error) {
	if indices.Graphics == nil {
		return nil, nil, failf(ErrNoGraphicsQueue, "%s has no graphics-capable queue family", candidate.Name)
	}

	extensionNames := append([]string{}, RequiredDeviceExtensions...)
	if candidate.HasExtension(khr_portability_subset.ExtensionName) {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	device, err := candidate.Device.CreateDevice(core1_0.DeviceCreateInfo{
		QueueCreateInfos: []core1_0.DeviceQueueCreateInfo{
			{
				QueueFamilyIndex: *indices.Graphics,
				QueuePriorities:  []float32{1.0},
			},
		},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, nil, fail(ErrDeviceCreationFailed, err, "create logical device")
	}

	return device, device.Queue(*indices.Graphics), nil
}

// CreateCommands creates a resettable command pool on family and allocates
// the single primary command buffer reused every frame.
func CreateCommands(device Device, family int) (CommandPool, CommandBuffer, error) {
	pool, err := device.CreateCommandPool(core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: family,
		Flags:            core1_0.CommandPoolCreateResetBuffer,
	})
	if err != nil {
		return nil, nil, fail(ErrCommandSetupFailed, err, "create command pool")
	}

	buffer, err := pool.AllocatePrimary()
	if err != nil {
		pool.Destroy()
		return nil, nil, fail(ErrCommandSetupFailed, err, "allocate command buffer")
	}

	return pool, buffer, nil
}
