package render

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/core1_0"
)

const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// The pinned extensions module does not wrap VK_KHR_portability_enumeration,
// so its name and instance flag live here.
const (
	PortabilityEnumerationExtension = "VK_KHR_portability_enumeration"

	// InstanceCreateEnumeratePortability is VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR.
	InstanceCreateEnumeratePortability core1_0.InstanceCreateFlags = 0x00000001
)

func init() {
	InstanceCreateEnumeratePortability.Register("Enumerate Portability")
}

var RequiredValidationLayers = []string{ValidationLayer}

// Capabilities is what the loader and window require or offer for instance creation.
type Capabilities struct {
	Extensions  []string
	Layers      []string
	Portability bool
}

// CheckCapabilities checks the window's required instance extensions and, when
// validation is requested, the validation layers against what the loader offers.
func CheckCapabilities(loader Loader, window Window, validation bool) (Capabilities, error) {
	var caps Capabilities

	available, err := loader.AvailableExtensions()
	if err != nil {
		return caps, fail(ErrInstanceCreationFailed, err, "enumerate instance extensions")
	}
	extensions := nameSet(available)

	for _, ext := range window.VulkanInstanceExtensions() {
		if _, ok := extensions[ext]; !ok {
			return caps, failf(ErrInstanceCreationFailed, "window requires instance extension %s which the loader does not offer", ext)
		}
		caps.Extensions = append(caps.Extensions, ext)
	}

	if _, ok := extensions[PortabilityEnumerationExtension]; ok {
		caps.Extensions = append(caps.Extensions, PortabilityEnumerationExtension)
		caps.Portability = true
	}

	if !validation {
		return caps, nil
	}

	availableLayers, err := loader.AvailableLayers()
	if err != nil {
		return caps, fail(ErrValidationUnavailable, err, "enumerate instance layers")
	}
	layers := nameSet(availableLayers)

	var missing []string
	for _, layer := range RequiredValidationLayers {
		if _, ok := layers[layer]; !ok {
			missing = append(missing, layer)
			continue
		}
		caps.Layers = append(caps.Layers, layer)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		err := failf(ErrValidationUnavailable, "validation layers %v not available", missing)
		return caps, errors.WithHint(err, "install LunarG Vulkan SDK or run with validation disabled")
	}

	return caps, nil
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
