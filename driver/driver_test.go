// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver_test

import (
	"testing"

	"gviegas/neo3/driver"

	_ "gviegas/neo3/driver/dx12"
	_ "gviegas/neo3/driver/vk"
)

func TestDrivers(t *testing.T) {
	drivers := driver.Drivers()
	if len(drivers) == 0 {
		t.Fatal("driver.Drivers: expected at least one registered driver")
	}
	for i := range drivers {
		name := drivers[i].Name()
		if name == "" {
			t.Error("driver.Drivers: Driver.Name must not be empty")
		}
		for j := 0; j < i; j++ {
			if name == drivers[j].Name() {
				t.Error("driver.Drivers: Driver.Name is not unique")
			}
		}
	}
	drivers2 := driver.Drivers()
	if len(drivers) != len(drivers2) {
		t.Fatal("driver.Drivers: length mismatch across calls")
	}
	for i := range drivers {
		if drivers[i].Name() != drivers2[i].Name() {
			t.Error("driver.Drivers: Driver.Name mismatch across calls")
		}
	}
}

func TestRegisterReplaces(t *testing.T) {
	before := len(driver.Drivers())
	driver.Register(fakeDriver{name: "vk"})
	after := driver.Drivers()
	if len(after) != before {
		t.Fatalf("driver.Register: registering an existing name changed the count: have %d, want %d", len(after), before)
	}
	found := false
	for _, d := range after {
		if d.Name() == "vk" {
			found = true
		}
	}
	if !found {
		t.Error("driver.Register: replaced driver no longer present under its name")
	}
}

type fakeDriver struct{ name string }

func (f fakeDriver) Open() (driver.GPU, error) { return nil, driver.ErrNoDevice }
func (f fakeDriver) Name() string              { return f.name }
func (f fakeDriver) Close()                    {}
