package inventory

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/openbmc-project/fru-device-discovery/internal/fru"
	"github.com/openbmc-project/fru-device-discovery/internal/frucodec"
	"github.com/openbmc-project/fru-device-discovery/internal/muxdedup"
)

type fakeObject struct {
	path       string
	properties map[string]string
	numeric    map[string]int64
	removed    bool
}

type fakeServer struct {
	objects       map[string]*fakeObject
	rejectKeys    map[string]bool
	createFailFor string
}

func newFakeServer() *fakeServer {
	return &fakeServer{objects: make(map[string]*fakeObject), rejectKeys: map[string]bool{}}
}

func (s *fakeServer) CreateObject(path string) (fru.ObjectHandle, error) {
	if path == s.createFailFor {
		return nil, errors.New("create failed")
	}
	obj := &fakeObject{path: path, properties: map[string]string{}, numeric: map[string]int64{}}
	s.objects[path] = obj
	return obj, nil
}

func (s *fakeServer) SetProperty(handle fru.ObjectHandle, key, value string) error {
	if s.rejectKeys[key] {
		return errors.New("illegal key")
	}
	handle.(*fakeObject).properties[key] = value
	return nil
}

func (s *fakeServer) SetNumericProperty(handle fru.ObjectHandle, key string, value int64) error {
	handle.(*fakeObject).numeric[key] = value
	return nil
}

func (s *fakeServer) RemoveObject(handle fru.ObjectHandle) error {
	handle.(*fakeObject).removed = true
	return nil
}

func testLog() *logrus.Entry {
	return logrus.NewEntry(logrus.New())
}

func TestPublish_SetsFieldsAndNumericProperties(t *testing.T) {
	inv := New(testLog())
	server := newFakeServer()

	key := fru.DeviceKey{Bus: 3, Address: 0x50}
	decision := muxdedup.Decision{Action: muxdedup.ActionPublish, ObjectPath: "/xyz/openbmc_project/FruDevice/Foo"}
	fields := frucodec.FruFieldMap{"BOARD_MANUFACTURER": "Acme", "BOARD_SERIAL_NUMBER": ""}

	inv.Publish(key, decision, fields, server)

	obj, ok := server.objects[decision.ObjectPath]
	if !ok {
		t.Fatalf("expected object at %s to be created", decision.ObjectPath)
	}
	if obj.properties["BOARD_MANUFACTURER"] != "Acme" {
		t.Fatalf("expected BOARD_MANUFACTURER property, got %v", obj.properties)
	}
	if _, ok := obj.properties["BOARD_SERIAL_NUMBER"]; ok {
		t.Fatal("expected empty-valued field to be dropped")
	}
	if obj.numeric["BUS"] != 3 || obj.numeric["ADDRESS"] != 0x50 {
		t.Fatalf("expected BUS/ADDRESS numeric properties, got %v", obj.numeric)
	}
	if _, published := inv.Published[key]; !published {
		t.Fatal("expected device key to be recorded in Published")
	}
}

func TestPublish_SuppressedDecisionIsNoOp(t *testing.T) {
	inv := New(testLog())
	server := newFakeServer()

	key := fru.DeviceKey{Bus: 7, Address: 0x50}
	decision := muxdedup.Decision{Action: muxdedup.ActionSuppress}

	inv.Publish(key, decision, frucodec.FruFieldMap{"X": "Y"}, server)

	if len(server.objects) != 0 {
		t.Fatalf("expected no objects created for a suppressed decision, got %v", server.objects)
	}
	if _, published := inv.Published[key]; published {
		t.Fatal("expected suppressed device to not be recorded in Published")
	}
}

func TestPublish_IllegalKeyLoggedNotFatal(t *testing.T) {
	inv := New(testLog())
	server := newFakeServer()
	server.rejectKeys["BAD_KEY"] = true

	key := fru.DeviceKey{Bus: 2, Address: 0x40}
	decision := muxdedup.Decision{Action: muxdedup.ActionPublish, ObjectPath: "/xyz/openbmc_project/FruDevice/Bar"}
	fields := frucodec.FruFieldMap{"BAD_KEY": "value", "GOOD_KEY": "value"}

	inv.Publish(key, decision, fields, server)

	obj := server.objects[decision.ObjectPath]
	if _, ok := obj.properties["BAD_KEY"]; ok {
		t.Fatal("expected rejected property to be absent")
	}
	if obj.properties["GOOD_KEY"] != "value" {
		t.Fatal("expected the remaining property to still be set")
	}
	if _, published := inv.Published[key]; !published {
		t.Fatal("expected device to still be published despite one illegal key")
	}
}

func TestTeardownAll_RemovesEveryPublishedObject(t *testing.T) {
	inv := New(testLog())
	server := newFakeServer()

	key := fru.DeviceKey{Bus: 2, Address: 0x40}
	decision := muxdedup.Decision{Action: muxdedup.ActionPublish, ObjectPath: "/xyz/openbmc_project/FruDevice/Baz"}
	inv.Publish(key, decision, frucodec.FruFieldMap{"X": "Y"}, server)

	obj := server.objects[decision.ObjectPath]

	inv.TeardownAll(server)

	if !obj.removed {
		t.Fatal("expected object to be removed")
	}
	if len(inv.Published) != 0 {
		t.Fatalf("expected Published to be cleared, got %v", inv.Published)
	}
}

type fakeBaseboardStore struct {
	raw frucodec.RawFru
	ok  bool
}

func (f fakeBaseboardStore) ReadBaseboard() (frucodec.RawFru, bool) {
	return f.raw, f.ok
}

func TestLoadBaseboard_MissingFileIsNotAnError(t *testing.T) {
	inv := New(testLog())
	inv.LoadBaseboard(fakeBaseboardStore{ok: false})

	if _, ok := inv.Bus.Get(fru.BaseboardBus, fru.BaseboardAddress); ok {
		t.Fatal("expected no baseboard entry when the store has nothing")
	}
}

func TestLoadBaseboard_PopulatesBaseboardEntry(t *testing.T) {
	inv := New(testLog())
	raw := frucodec.RawFru{1, 2, 3}
	inv.LoadBaseboard(fakeBaseboardStore{raw: raw, ok: true})

	got, ok := inv.Bus.Get(fru.BaseboardBus, fru.BaseboardAddress)
	if !ok {
		t.Fatal("expected a baseboard entry")
	}
	if string(got) != string(raw) {
		t.Fatalf("got %v, want %v", got, raw)
	}
}

func TestLookupRawFru_UnknownBus(t *testing.T) {
	inv := New(testLog())

	_, err := inv.LookupRawFru(5, 0x50)
	if !errors.Is(err, fru.ErrUnknownBus) {
		t.Fatalf("got %v, want fru.ErrUnknownBus", err)
	}
}

func TestLookupRawFru_UnknownAddressOnKnownBus(t *testing.T) {
	inv := New(testLog())
	inv.Bus.Set(5, 0x51, frucodec.RawFru{1, 2, 3})

	_, err := inv.LookupRawFru(5, 0x50)
	if !errors.Is(err, fru.ErrUnknownAddress) {
		t.Fatalf("got %v, want fru.ErrUnknownAddress", err)
	}
}

func TestLookupRawFru_KnownDevice(t *testing.T) {
	inv := New(testLog())
	want := frucodec.RawFru{1, 2, 3}
	inv.Bus.Set(5, 0x50, want)

	got, err := inv.LookupRawFru(5, 0x50)
	if err != nil {
		t.Fatalf("LookupRawFru: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
