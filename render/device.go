// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (a windowing framework or cmd/imdemo) owns the device; the
// renderer only borrows it. DeviceHandle is an alias for
// gpucontext.DeviceProvider so any gpucontext host can drive a Renderer.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is implemented by hosts that expose raw HAL objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// wrappedDevice is implemented by *wgpu.Device, which gogpu hosts return
// from Device.
type wrappedDevice interface {
	HalDevice() hal.Device
	HalQueue() hal.Queue
}

// HalDevices extracts the HAL device and queue from a host. Hosts either
// implement HalDevice/HalQueue, return a wgpu device that does, or return
// HAL objects from Device/Queue.
func HalDevices(h DeviceHandle) (hal.Device, hal.Queue, error) {
	if h == nil {
		return nil, nil, ErrNilDevice
	}
	var dev, queue any = h.Device(), h.Queue()
	if hp, ok := h.(halProvider); ok {
		dev, queue = hp.HalDevice(), hp.HalQueue()
	} else if wd, ok := dev.(wrappedDevice); ok {
		dev, queue = wd.HalDevice(), wd.HalQueue()
	}
	d, ok := dev.(hal.Device)
	if !ok || d == nil {
		return nil, nil, fmt.Errorf("%w: device is %T", ErrNilDevice, dev)
	}
	q, ok := queue.(hal.Queue)
	if !ok || q == nil {
		return nil, nil, fmt.Errorf("%w: queue is %T", ErrNilDevice, queue)
	}
	return d, q, nil
}

// Device is a HAL device opened by this package. It implements
// DeviceHandle for hosts that have no GPU framework of their own.
type Device struct {
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	info     gputypes.AdapterInfo
	format   gputypes.TextureFormat
}

var _ DeviceHandle = (*Device)(nil)

// Open creates an instance of backend and opens a hardware adapter,
// falling back to the first adapter when no GPU is listed.
func Open(backend hal.Backend) (*Device, error) {
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create %v instance: %w", backend.Variant(), err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("render: no %v adapters", backend.Variant())
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	opened, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open adapter %q: %w", selected.Info.Name, err)
	}
	return &Device{
		instance: instance,
		adapter:  selected.Adapter,
		device:   opened.Device,
		queue:    opened.Queue,
		info:     selected.Info,
		format:   gputypes.TextureFormatBGRA8Unorm,
	}, nil
}

// Device returns the hal.Device.
func (d *Device) Device() gpucontext.Device { return d.device }

// Queue returns the hal.Queue.
func (d *Device) Queue() gpucontext.Queue { return d.queue }

// Adapter returns the hal.Adapter.
func (d *Device) Adapter() gpucontext.Adapter { return d.adapter }

// SurfaceFormat returns the preferred output format.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// AdapterInfo describes the opened adapter.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: d.info.Name, Type: adapterType(d.info.DeviceType)}
}

// HalDevice returns the hal.Device.
func (d *Device) HalDevice() any { return d.device }

// HalQueue returns the hal.Queue.
func (d *Device) HalQueue() any { return d.queue }

// Instance returns the HAL instance, for creating surfaces.
func (d *Device) Instance() hal.Instance { return d.instance }

// Info returns the full adapter description.
func (d *Device) Info() gputypes.AdapterInfo { return d.info }

// Close waits for the GPU and releases the device, adapter and instance.
func (d *Device) Close() error {
	var err error
	if d.device != nil {
		err = d.device.WaitIdle()
		d.device.Destroy()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Destroy()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	return err
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// NullDeviceHandle is a DeviceHandle without a GPU. Renderers cannot be
// created from it; it stands in for hosts in tests.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo reports an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "null", Type: gpucontext.AdapterTypeUnknown}
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
