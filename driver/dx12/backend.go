// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package dx12

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/dx12"

	"gviegas/neo3/driver"
)

// Driver implements driver.Driver for the DX12-like backend.
type Driver struct {
	inst hal.Instance
	gpu  *gpu
}

// name is the identifier this driver registers itself under.
const name = "dx12"

func init() {
	driver.Register(&Driver{})
}

// Open implements driver.Driver.
func (d *Driver) Open() (driver.GPU, error) {
	if d.gpu != nil {
		return d.gpu, nil
	}
	inst, err := (dx12.Backend{}).CreateInstance(&hal.InstanceDescriptor{
		Backends: gputypes.BackendsDX12,
	})
	if err != nil {
		driver.Logger().Error("dx12: instance creation failed", "err", err)
		return nil, driver.ErrNotInstalled
	}
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		inst.Destroy()
		return nil, driver.ErrNoDevice
	}
	exposed := adapters[0]
	open, err := exposed.Adapter.Open(exposed.Features, exposed.Capabilities.Limits)
	if err != nil {
		inst.Destroy()
		return nil, driver.ErrNoDevice
	}
	g, err := newGPU(inst, exposed, open)
	if err != nil {
		inst.Destroy()
		return nil, err
	}
	d.inst = inst
	d.gpu = g
	driver.Logger().Debug("dx12: device opened", "name", exposed.Info.Name)
	return g, nil
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return name }

// Close implements driver.Driver.
func (d *Driver) Close() {
	if d.gpu == nil {
		return
	}
	d.gpu.Destroy()
	d.inst.Destroy()
	d.gpu = nil
	d.inst = nil
}
