package engine

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_portability_subset"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// Device is the fourth construction stage: the logical device and its
// graphics and present queues.
type Device struct {
	physical *PhysicalDevice

	driver             core1_0.CoreDeviceDriver
	swapchainExtension khr_swapchain.ExtensionDriver

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue
	graphicsIndex int
}

func (p *PhysicalDevice) CreateLogicalDevice() (*Device, error) {
	indices, err := p.surface.findQueueFamilies(p.candidate.Device)
	if err != nil {
		return nil, errors.Wrap(err, "find queue families")
	}
	if !indices.IsComplete() {
		return nil, errors.Wrapf(ErrIncompleteQueueFamilies, "device %s", p.candidate.Name)
	}

	var queueFamilyOptions []core1_0.DeviceQueueCreateInfo
	queuePriority := float32(1.0)
	for _, queueFamily := range indices.Unique() {
		queueFamilyOptions = append(queueFamilyOptions, core1_0.DeviceQueueCreateInfo{
			QueueFamilyIndex: queueFamily,
			QueuePriorities:  []float32{queuePriority},
		})
	}

	var extensionNames []string
	extensionNames = append(extensionNames, RequiredDeviceExtensions...)

	// Required on portability implementations such as MoltenVK.
	_, supported := p.candidate.Extensions[khr_portability_subset.ExtensionName]
	if supported {
		extensionNames = append(extensionNames, khr_portability_subset.ExtensionName)
	}

	driver, _, err := p.surface.instance.driver.CreateDevice(p.candidate.Device, nil, core1_0.DeviceCreateInfo{
		QueueCreateInfos:      queueFamilyOptions,
		EnabledFeatures:       &core1_0.PhysicalDeviceFeatures{},
		EnabledExtensionNames: extensionNames,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create logical device")
	}

	return &Device{
		physical:           p,
		driver:             driver,
		swapchainExtension: khr_swapchain.CreateExtensionDriverFromCoreDriver(driver),
		graphicsQueue:      driver.GetQueue(*indices.GraphicsFamily, 0),
		presentQueue:       driver.GetQueue(*indices.PresentFamily, 0),
		graphicsIndex:      *indices.GraphicsFamily,
	}, nil
}

func (d *Device) Destroy() {
	if d.driver != nil {
		d.driver.DestroyDevice(nil)
		d.driver = nil
	}
}

func (d *Device) WaitIdle() error {
	res, err := d.driver.DeviceWaitIdle()
	return resultError("wait for device idle", res, err)
}

func (d *Device) QuerySwapchainSupport() (SwapchainSupport, error) {
	return d.physical.surface.querySupport(d.physical.candidate.Device)
}

func (d *Device) QueueFamilies() (QueueFamilyIndices, error) {
	return d.physical.surface.findQueueFamilies(d.physical.candidate.Device)
}

func (d *Device) CreateSwapchain(config SwapchainConfig) (khr_swapchain.Swapchain, error) {
	swapchain, _, err := d.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: d.physical.surface.handle,

		MinImageCount:    config.ImageCount,
		ImageFormat:      config.Format.Format,
		ImageColorSpace:  config.Format.ColorSpace,
		ImageExtent:      config.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   config.SharingMode,
		QueueFamilyIndices: config.QueueFamilyIndices,

		PreTransform:   config.PreTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    config.PresentMode,
		Clipped:        true,
	})
	return swapchain, err
}

func (d *Device) SwapchainImages(swapchain khr_swapchain.Swapchain) ([]core1_0.Image, error) {
	images, _, err := d.swapchainExtension.GetSwapchainImages(swapchain)
	return images, err
}

func (d *Device) CreateImageView(image core1_0.Image, format core1_0.Format) (core1_0.ImageView, error) {
	imageView, _, err := d.driver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		Components: core1_0.ComponentMapping{
			R: core1_0.ComponentSwizzleIdentity,
			G: core1_0.ComponentSwizzleIdentity,
			B: core1_0.ComponentSwizzleIdentity,
			A: core1_0.ComponentSwizzleIdentity,
		},
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     core1_0.ImageAspectColor,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, err
}

func (d *Device) CreateFramebuffer(renderPass core1_0.RenderPass, view core1_0.ImageView, extent core1_0.Extent2D) (core1_0.Framebuffer, error) {
	framebuffer, _, err := d.driver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
		RenderPass:  renderPass,
		Layers:      1,
		Attachments: []core1_0.ImageView{view},
		Width:       extent.Width,
		Height:      extent.Height,
	})
	return framebuffer, err
}

func (d *Device) DestroyFramebuffer(framebuffer core1_0.Framebuffer) {
	d.driver.DestroyFramebuffer(framebuffer, nil)
}

func (d *Device) DestroyImageView(view core1_0.ImageView) {
	d.driver.DestroyImageView(view, nil)
}

func (d *Device) DestroySwapchain(swapchain khr_swapchain.Swapchain) {
	d.swapchainExtension.DestroySwapchain(swapchain, nil)
}
