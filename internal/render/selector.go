package render

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	"golang.org/x/sync/errgroup"
)

var RequiredDeviceExtensions = []string{khr_swapchain.ExtensionName}

// PhysicalDeviceCandidate is a physical device with what it reported while probing.
type PhysicalDeviceCandidate struct {
	Device PhysicalDevice
	DeviceInfo
	Extensions map[string]struct{}
}

func (c *PhysicalDeviceCandidate) HasExtension(name string) bool {
	_, ok := c.Extensions[name]
	return ok
}

func (c *PhysicalDeviceCandidate) missingExtensions(names []string) []string {
	var missing []string
	for _, name := range names {
		if !c.HasExtension(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// String identifies the device by name, class and pipeline cache UUID, which
// tells apart identical GPUs.
func (c *PhysicalDeviceCandidate) String() string {
	return fmt.Sprintf("%s [%s %s]", c.Name, c.Class, c.PipelineCacheUUID)
}

// DescribeDevices queries every device concurrently. The result keeps the
// enumeration order of devices.
func DescribeDevices(devices []PhysicalDevice) ([]*PhysicalDeviceCandidate, error) {
	candidates := make([]*PhysicalDeviceCandidate, len(devices))

	var group errgroup.Group
	for i, device := range devices {
		i, device := i, device
		group.Go(func() error {
			info, err := device.Describe()
			if err != nil {
				return errors.Wrapf(err, "describe physical device %d", i)
			}

			names, err := device.Extensions()
			if err != nil {
				return errors.Wrapf(err, "enumerate extensions of %s", info.Name)
			}

			extensions := make(map[string]struct{}, len(names))
			for _, name := range names {
				extensions[name] = struct{}{}
			}

			candidates[i] = &PhysicalDeviceCandidate{
				Device:     device,
				DeviceInfo: info,
				Extensions: extensions,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// PickCandidate drops candidates missing a required extension, then returns
// the first discrete candidate, else the first integrated one.
func PickCandidate(candidates []*PhysicalDeviceCandidate, required []string) (*PhysicalDeviceCandidate, error) {
	var integrated *PhysicalDeviceCandidate
	var rejected []string

	for _, candidate := range candidates {
		if missing := candidate.missingExtensions(required); len(missing) > 0 {
			rejected = append(rejected, fmt.Sprintf("%s: missing %s", candidate, strings.Join(missing, ", ")))
			continue
		}

		switch candidate.Class {
		case DeviceClassDiscrete:
			return candidate, nil
		case DeviceClassIntegrated:
			if integrated == nil {
				integrated = candidate
			}
		default:
			rejected = append(rejected, fmt.Sprintf("%s: not a GPU", candidate))
		}
	}

	if integrated == nil {
		err := failf(ErrNoSuitableDevice, "none of %d physical devices is a discrete or integrated GPU supporting %v", len(candidates), required)
		if len(rejected) > 0 {
			err = errors.WithDetailf(err, "rejected: %s", strings.Join(rejected, "; "))
		}
		return nil, err
	}
	return integrated, nil
}

// SelectDevice enumerates the instance's physical devices and picks the best one.
func SelectDevice(instance Instance) (*PhysicalDeviceCandidate, error) {
	devices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, fail(ErrNoSuitableDevice, err, "enumerate physical devices")
	}

	candidates, err := DescribeDevices(devices)
	if err != nil {
		return nil, fail(ErrNoSuitableDevice, err, "describe physical devices")
	}

	return PickCandidate(candidates, RequiredDeviceExtensions)
}
