// Package vkng binds the render package's driver interfaces to vkngwrapper objects.
package vkng

import (
	"sort"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core"
	"github.com/vkngwrapper/core/core1_0"
	"github.com/vkngwrapper/extensions/khr_surface"
	"github.com/vkngwrapper/extensions/khr_swapchain"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2"

	"github.com/vkngwrapper/clearscreen/internal/render"
)

var (
	_ render.Loader         = (*Loader)(nil)
	_ render.Instance       = (*Instance)(nil)
	_ render.PhysicalDevice = (*PhysicalDevice)(nil)
	_ render.Surface        = (*Surface)(nil)
)

type Loader struct {
	loader core.Loader
}

// NewLoader builds a loader from a vkGetInstanceProcAddr pointer, such as the one SDL exposes.
func NewLoader(procAddr unsafe.Pointer) (*Loader, error) {
	loader, err := core.CreateLoaderFromProcAddr(procAddr)
	if err != nil {
		return nil, errors.Wrap(err, "create loader")
	}
	return &Loader{loader: loader}, nil
}

func (l *Loader) AvailableLayers() ([]string, error) {
	layers, _, err := l.loader.AvailableLayers()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) AvailableExtensions() ([]string, error) {
	extensions, _, err := l.loader.AvailableExtensions()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) CreateInstance(info core1_0.InstanceCreateInfo) (render.Instance, error) {
	instance, _, err := l.loader.CreateInstance(nil, info)
	if err != nil {
		return nil, err
	}
	return &Instance{instance: instance}, nil
}

type Instance struct {
	instance core1_0.Instance
}

func (i *Instance) PhysicalDevices() ([]render.PhysicalDevice, error) {
	devices, _, err := i.instance.EnumeratePhysicalDevices()
	if err != nil {
		return nil, err
	}

	wrapped := make([]render.PhysicalDevice, 0, len(devices))
	for _, device := range devices {
		wrapped = append(wrapped, &PhysicalDevice{device: device})
	}
	return wrapped, nil
}

func (i *Instance) Destroy() {
	i.instance.Destroy(nil)
}

type PhysicalDevice struct {
	device core1_0.PhysicalDevice
}

func (d *PhysicalDevice) Describe() (render.DeviceInfo, error) {
	properties, err := d.device.Properties()
	if err != nil {
		return render.DeviceInfo{}, err
	}

	info := render.DeviceInfo{
		Name:              properties.DriverName,
		PipelineCacheUUID: properties.PipelineCacheUUID,
	}
	switch properties.DriverType {
	case core1_0.PhysicalDeviceTypeDiscreteGPU:
		info.Class = render.DeviceClassDiscrete
	case core1_0.PhysicalDeviceTypeIntegratedGPU:
		info.Class = render.DeviceClassIntegrated
	default:
		info.Class = render.DeviceClassOther
	}
	return info, nil
}

func (d *PhysicalDevice) Extensions() ([]string, error) {
	extensions, _, err := d.device.EnumerateDeviceExtensionProperties()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (d *PhysicalDevice) QueueFamilies() []*core1_0.QueueFamilyProperties {
	return d.device.QueueFamilyProperties()
}

func (d *PhysicalDevice) CreateDevice(info core1_0.DeviceCreateInfo) (render.Device, error) {
	device, _, err := d.device.CreateDevice(nil, info)
	if err != nil {
		return nil, err
	}

	extension := khr_swapchain.CreateExtensionFromDevice(device)
	if extension == nil {
		device.Destroy(nil)
		return nil, errors.Newf("%s is not active on the created device", khr_swapchain.ExtensionName)
	}

	return &Device{
		device:    device,
		swapchain: extension,
	}, nil
}

type Surface struct {
	surface khr_surface.Surface
}

// CreateSDLSurface creates a presentation surface for an SDL window.
func CreateSDLSurface(instance render.Instance, window *sdl.Window) (*Surface, error) {
	native, ok := instance.(*Instance)
	if !ok {
		return nil, errors.Newf("cannot create an SDL surface on %T", instance)
	}

	surfaceExtension := khr_surface.CreateExtensionFromInstance(native.instance)
	surface, err := vkng_sdl2.CreateSurface(native.instance, surfaceExtension, window)
	if err != nil {
		return nil, err
	}
	return &Surface{surface: surface}, nil
}

func (s *Surface) SupportsPresent(device render.PhysicalDevice, family int) (bool, error) {
	supported, _, err := s.surface.PhysicalDeviceSurfaceSupport(device.(*PhysicalDevice).device, family)
	return supported, err
}

func (s *Surface) Capabilities(device render.PhysicalDevice) (*khr_surface.SurfaceCapabilities, error) {
	capabilities, _, err := s.surface.PhysicalDeviceSurfaceCapabilities(device.(*PhysicalDevice).device)
	return capabilities, err
}

func (s *Surface) Formats(device render.PhysicalDevice) ([]khr_surface.SurfaceFormat, error) {
	formats, _, err := s.surface.PhysicalDeviceSurfaceFormats(device.(*PhysicalDevice).device)
	return formats, err
}

func (s *Surface) Destroy() {
	s.surface.Destroy(nil)
}
