package dbusbind

import "testing"

func TestDeviceObject_GetReturnsStoredProperty(t *testing.T) {
	obj := newDeviceObject()
	obj.set("MANUFACTURER", "Acme")

	v, dbusErr := obj.Get(propertyInterface, "MANUFACTURER")
	if dbusErr != nil {
		t.Fatalf("Get: %v", dbusErr)
	}
	if v.Value() != "Acme" {
		t.Fatalf("got %v, want Acme", v.Value())
	}
}

func TestDeviceObject_GetUnknownPropertyFails(t *testing.T) {
	obj := newDeviceObject()
	if _, dbusErr := obj.Get(propertyInterface, "NOPE"); dbusErr == nil {
		t.Fatal("expected an unknown property to fail")
	}
}

func TestDeviceObject_GetWrongInterfaceFails(t *testing.T) {
	obj := newDeviceObject()
	obj.set("BUS", int64(3))
	if _, dbusErr := obj.Get("some.other.Interface", "BUS"); dbusErr == nil {
		t.Fatal("expected a mismatched interface to fail")
	}
}

func TestDeviceObject_GetAllReturnsEverySetProperty(t *testing.T) {
	obj := newDeviceObject()
	obj.set("BUS", int64(3))
	obj.set("ADDRESS", int64(0x50))
	obj.set("MANUFACTURER", "Acme")

	all, dbusErr := obj.GetAll(propertyInterface)
	if dbusErr != nil {
		t.Fatalf("GetAll: %v", dbusErr)
	}
	if len(all) != 3 {
		t.Fatalf("got %d properties, want 3", len(all))
	}
}

func TestDeviceObject_SetIsReadOnly(t *testing.T) {
	obj := newDeviceObject()
	obj.set("BUS", int64(3))

	if dbusErr := obj.Set(propertyInterface, "BUS", obj.props["BUS"]); dbusErr == nil {
		t.Fatal("expected Set to be rejected")
	}
}
