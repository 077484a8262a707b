package engine

import (
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_get_physical_device_properties2"
	"github.com/vkngwrapper/extensions/v3/khr_portability_enumeration"
)

// Instance is the first construction stage: a Vulkan instance with the
// window system's extensions and, when enabled, validation.
type Instance struct {
	config Config

	globalDriver core1_0.GlobalDriver
	driver       core1_0.CoreInstanceDriver

	debugDriver    ext_debug_utils.ExtensionDriver
	debugMessenger ext_debug_utils.DebugUtilsMessenger
}

func NewInstance(config Config, host SurfaceHost) (*Instance, error) {
	globalDriver, err := core.CreateDriverFromProcAddr(host.ProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "load vulkan")
	}

	instanceOptions := core1_0.InstanceCreateInfo{
		ApplicationName:    config.ApplicationName,
		ApplicationVersion: common.CreateVersion(1, 0, 0),
		EngineName:         "Mjoelnir",
		EngineVersion:      common.CreateVersion(1, 0, 0),
		APIVersion:         common.Vulkan1_0,
	}

	extensions, _, err := globalDriver.AvailableExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}

	available := make(map[string]struct{}, len(extensions))
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		available[name] = struct{}{}
		names = append(names, name)
	}
	Logger().Debug("available instance extensions", "extensions", names)

	var portability bool
	instanceOptions.EnabledExtensionNames, portability, err = instanceExtensions(
		available, host.VulkanInstanceExtensions(), config.Validation)
	if err != nil {
		return nil, err
	}
	if portability {
		instanceOptions.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}

	if config.Validation {
		layers, _, err := globalDriver.AvailableLayers()
		if err != nil {
			return nil, errors.Wrap(err, "enumerate instance layers")
		}

		for _, layer := range validationLayers {
			_, hasValidation := layers[layer]
			if !hasValidation {
				return nil, errors.WithHint(
					errors.Wrapf(ErrMissingLayer, "validation layer %s", layer),
					"install the LunarG Vulkan SDK or run with --no-validation")
			}
			instanceOptions.EnabledLayerNames = append(instanceOptions.EnabledLayerNames, layer)
		}

		// Covers messages emitted during instance creation and destruction.
		instanceOptions.Next = debugMessengerOptions()
	}

	Logger().Debug("creating instance",
		"extensions", instanceOptions.EnabledExtensionNames,
		"layers", instanceOptions.EnabledLayerNames)

	driver, _, err := globalDriver.CreateInstance(nil, instanceOptions)
	if err != nil {
		return nil, errors.Wrap(err, "create instance")
	}

	instance := &Instance{
		config:       config,
		globalDriver: globalDriver,
		driver:       driver,
	}

	if config.Validation {
		instance.debugDriver = ext_debug_utils.CreateExtensionDriverFromCoreDriver(driver)
		instance.debugMessenger, _, err = instance.debugDriver.CreateDebugUtilsMessenger(nil, debugMessengerOptions())
		if err != nil {
			instance.Destroy()
			return nil, errors.Wrap(err, "create debug messenger")
		}
	}

	return instance, nil
}

// instanceExtensions lists the instance extensions to enable: everything the
// window system needs, debug utils when validating, and portability
// enumeration with its properties2 dependency when the loader offers it.
func instanceExtensions(available map[string]struct{}, window []string, validation bool) ([]string, bool, error) {
	var names []string

	for _, ext := range window {
		if _, ok := available[ext]; !ok {
			return nil, false, errors.Wrapf(ErrMissingExtension, "window system requires instance extension %s", ext)
		}
		names = append(names, ext)
	}

	if validation {
		if _, ok := available[ext_debug_utils.ExtensionName]; !ok {
			return nil, false, errors.WithHint(
				errors.Wrapf(ErrMissingExtension, "instance extension %s", ext_debug_utils.ExtensionName),
				"install the LunarG Vulkan SDK or run with --no-validation")
		}
		names = append(names, ext_debug_utils.ExtensionName)
	}

	_, portability := available[khr_portability_enumeration.ExtensionName]
	if !portability {
		return names, false, nil
	}
	names = append(names, khr_portability_enumeration.ExtensionName)

	// Devices exposing VK_KHR_portability_subset need it on a 1.0 instance.
	_, properties2 := available[khr_get_physical_device_properties2.ExtensionName]
	if properties2 && !slices.Contains(names, khr_get_physical_device_properties2.ExtensionName) {
		names = append(names, khr_get_physical_device_properties2.ExtensionName)
	}

	return names, true, nil
}

func (i *Instance) Destroy() {
	if i.debugMessenger.Initialized() {
		i.debugDriver.DestroyDebugUtilsMessenger(i.debugMessenger, nil)
		i.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if i.driver != nil {
		i.driver.DestroyInstance(nil)
		i.driver = nil
	}
}
