package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// RequiredDeviceExtensions must all be advertised by a physical device for it
// to be selected.
var RequiredDeviceExtensions = []string{khr_swapchain.ExtensionName}

// DeviceCandidate is everything device selection needs to know about one
// enumerated physical device.
type DeviceCandidate struct {
	Device            core1_0.PhysicalDevice
	Name              string
	Type              core1_0.PhysicalDeviceType
	PipelineCacheUUID uuid.UUID

	QueueFamilies QueueFamilyIndices
	Extensions    map[string]struct{}
	Support       SwapchainSupport
}

// Suitable returns nil when the candidate can drive the surface, or an error
// naming the first unmet requirement.
func (c *DeviceCandidate) Suitable() error {
	if !c.QueueFamilies.IsComplete() {
		return ErrIncompleteQueueFamilies
	}

	for _, extension := range RequiredDeviceExtensions {
		if _, ok := c.Extensions[extension]; !ok {
			return errors.Wrapf(ErrMissingExtension, "device extension %s", extension)
		}
	}

	if len(c.Support.Formats) == 0 {
		return ErrNoSurfaceFormats
	}
	if len(c.Support.PresentModes) == 0 {
		return errors.New("surface reports no present modes")
	}

	return nil
}

// SelectDevice returns the first suitable candidate in enumeration order.
func SelectDevice(candidates []DeviceCandidate) (DeviceCandidate, error) {
	log := Logger()

	for _, candidate := range candidates {
		if err := candidate.Suitable(); err != nil {
			log.Debug("device rejected", "device", candidate.Name, "reason", err)
			continue
		}

		log.Info("device selected",
			"device", candidate.Name,
			"type", candidate.Type,
			"pipelineCache", candidate.PipelineCacheUUID,
			"graphicsFamily", *candidate.QueueFamilies.GraphicsFamily,
			"presentFamily", *candidate.QueueFamilies.PresentFamily)
		return candidate, nil
	}

	return DeviceCandidate{}, errors.WithHint(
		errors.Wrapf(ErrNoSuitableDevice, "%d devices enumerated", len(candidates)),
		"a Vulkan driver exposing VK_KHR_swapchain and presentation to this window is required")
}

// Surface is the second construction stage: the window's presentation
// surface.
type Surface struct {
	instance  *Instance
	extension khr_surface.ExtensionDriver
	handle    khr_surface.Surface
}

func (i *Instance) CreateSurface(host SurfaceHost) (*Surface, error) {
	surfaceExtension := khr_surface.CreateExtensionDriverFromCoreDriver(i.driver)
	handle, err := host.CreateSurface(i.driver.Instance(), surfaceExtension)
	if err != nil {
		return nil, errors.Wrap(err, "create surface")
	}

	return &Surface{
		instance:  i,
		extension: surfaceExtension,
		handle:    handle,
	}, nil
}

func (s *Surface) Destroy() {
	if s.handle.Initialized() {
		s.extension.DestroySurface(s.handle, nil)
		s.handle = khr_surface.Surface{}
	}
}

func (s *Surface) querySupport(device core1_0.PhysicalDevice) (SwapchainSupport, error) {
	var details SwapchainSupport
	var err error

	details.Capabilities, _, err = s.extension.GetPhysicalDeviceSurfaceCapabilities(s.handle, device)
	if err != nil {
		return details, err
	}

	details.Formats, _, err = s.extension.GetPhysicalDeviceSurfaceFormats(s.handle, device)
	if err != nil {
		return details, err
	}

	details.PresentModes, _, err = s.extension.GetPhysicalDeviceSurfacePresentModes(s.handle, device)
	return details, err
}

func (s *Surface) findQueueFamilies(device core1_0.PhysicalDevice) (QueueFamilyIndices, error) {
	families := s.instance.driver.GetPhysicalDeviceQueueFamilyProperties(device)
	return FindQueueFamilies(families, func(familyIndex int) (bool, error) {
		supported, _, err := s.extension.GetPhysicalDeviceSurfaceSupport(s.handle, device, familyIndex)
		return supported, err
	})
}

func (s *Surface) probe(device core1_0.PhysicalDevice) (DeviceCandidate, error) {
	candidate := DeviceCandidate{Device: device}

	properties, err := s.instance.driver.GetPhysicalDeviceProperties(device)
	if err != nil {
		return candidate, errors.Wrap(err, "get device properties")
	}
	candidate.Name = properties.DeviceName
	candidate.Type = properties.DriverType
	candidate.PipelineCacheUUID = properties.PipelineCacheUUID

	extensions, _, err := s.instance.driver.EnumerateDeviceExtensionProperties(device)
	if err != nil {
		return candidate, errors.Wrap(err, "enumerate device extensions")
	}
	candidate.Extensions = make(map[string]struct{}, len(extensions))
	for name := range extensions {
		candidate.Extensions[name] = struct{}{}
	}

	candidate.QueueFamilies, err = s.findQueueFamilies(device)
	if err != nil {
		return candidate, errors.Wrap(err, "find queue families")
	}

	// Surface queries are only valid when the device can present at all.
	_, hasSwapchain := candidate.Extensions[khr_swapchain.ExtensionName]
	if hasSwapchain {
		candidate.Support, err = s.querySupport(device)
		if err != nil {
			return candidate, errors.Wrap(err, "query swapchain support")
		}
	}

	return candidate, nil
}

// PhysicalDevice is the third construction stage: the selected device. The
// selection is final for the lifetime of the process.
type PhysicalDevice struct {
	surface   *Surface
	candidate DeviceCandidate
}

// PickPhysicalDevice probes every enumerated device and selects the first
// suitable one.
func (s *Surface) PickPhysicalDevice() (*PhysicalDevice, error) {
	physicalDevices, _, err := s.instance.driver.EnumeratePhysicalDevices()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate physical devices")
	}

	candidates := make([]DeviceCandidate, 0, len(physicalDevices))
	for _, device := range physicalDevices {
		candidate, err := s.probe(device)
		if err != nil {
			Logger().Warn("could not probe physical device", "device", candidate.Name, "error", err)
			continue
		}
		candidates = append(candidates, candidate)
	}

	selected, err := SelectDevice(candidates)
	if err != nil {
		return nil, err
	}

	return &PhysicalDevice{
		surface:   s,
		candidate: selected,
	}, nil
}

func (p *PhysicalDevice) Candidate() DeviceCandidate {
	return p.candidate
}
