package render

import (
	"log/slog"

	"github.com/vkngwrapper/core/common"
	"github.com/vkngwrapper/core/core1_0"
)

// Options parameterises the bootstrap pipeline.
type Options struct {
	ApplicationName    string
	ApplicationVersion common.Version
	EngineName         string
	EngineVersion      common.Version
	APIVersion         common.APIVersion

	EnableValidation bool

	// FrameLogInterval is how many frames pass between frame timing log lines. Zero disables them.
	FrameLogInterval uint64

	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// CreateInstance checks the loader and creates the API instance.
func CreateInstance(loader Loader, window Window, opts Options) (Instance, error) {
	caps, err := CheckCapabilities(loader, window, opts.EnableValidation)
	if err != nil {
		return nil, err
	}

	info := core1_0.InstanceCreateInfo{
		ApplicationName:       opts.ApplicationName,
		ApplicationVersion:    opts.ApplicationVersion,
		EngineName:            opts.EngineName,
		EngineVersion:         opts.EngineVersion,
		APIVersion:            opts.APIVersion,
		EnabledExtensionNames: caps.Extensions,
		EnabledLayerNames:     caps.Layers,
	}
	if caps.Portability {
		info.Flags |= InstanceCreateEnumeratePortability
	}

	instance, err := loader.CreateInstance(info)
	if err != nil {
		return nil, fail(ErrInstanceCreationFailed, err, "create instance")
	}

	opts.logger().Info("instance created",
		"application", opts.ApplicationName,
		"extensions", caps.Extensions,
		"layers", caps.Layers)
	return instance, nil
}

// CreateSurface asks the window for a presentation surface bound to instance.
func CreateSurface(window Window, instance Instance) (Surface, error) {
	surface, err := window.CreateSurface(instance)
	if err != nil {
		return nil, fail(ErrSurfaceCreationFailed, err, "create surface")
	}
	return surface, nil
}
