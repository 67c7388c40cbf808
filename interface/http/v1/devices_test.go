package v1

import (
	"bytes"
	"github.com/gorilla/mux"
	"github.com/openlyric/bridge/entity"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/lyric"
	"github.com/openlyric/bridge/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticData struct {
	snapshot *lyric.Snapshot
}

func (s staticData) Data() *lyric.Snapshot {
	return s.snapshot
}

func testThermostatEntity() entity.HasDeviceInfo {
	device := &lyric.Device{
		MACID:       "AA:BB",
		DeviceID:    "t1",
		Name:        "Office",
		DeviceModel: "Lyric",
		DeviceType:  "Thermostat",
	}
	location := lyric.NewLocation("1", "Home", device)
	snapshot := lyric.NewSnapshot([]*lyric.Location{location}, nil)

	return entity.NewDeviceEntity(staticData{snapshot: snapshot}, location, device, "AA:BB")
}

func TestDeviceController_listDevices(t *testing.T) {
	t.Run("returns every entity the mapper knows, keyed by identifier", func(t *testing.T) {
		e := testThermostatEntity()

		mbm := &mockBridgeMapper{}
		defer mbm.AssertExpectations(t)
		mbm.On("Entities").Return([]entity.HasDeviceInfo{e})

		mde := &mockDeviceExporter{}
		defer mde.AssertExpectations(t)
		mde.On("ExportEntity", mock.Anything, e).Return(exporter.ExportedDevice{Identifier: "AA:BB"}, nil)

		dc := deviceController{bridgeMapper: mbm, deviceExporter: mde}

		req := httptest.NewRequest("GET", "/devices", nil)
		rr := httptest.NewRecorder()

		dc.listDevices(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"AA:BB"`)
	})
}

func TestDeviceController_getDevice(t *testing.T) {
	t.Run("returns 404 for an unknown identifier", func(t *testing.T) {
		mbm := &mockBridgeMapper{}
		defer mbm.AssertExpectations(t)
		mbm.On("Entity", "unknown").Return(nil, false)

		dc := deviceController{bridgeMapper: mbm}

		req := httptest.NewRequest("GET", "/devices/unknown", nil)
		req = mux.SetURLVars(req, map[string]string{"identifier": "unknown"})
		rr := httptest.NewRecorder()

		dc.getDevice(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("returns 503 when the entity can not be described from the current snapshot", func(t *testing.T) {
		e := testThermostatEntity()

		mbm := &mockBridgeMapper{}
		defer mbm.AssertExpectations(t)
		mbm.On("Entity", "AA:BB").Return(e, true)

		mde := &mockDeviceExporter{}
		defer mde.AssertExpectations(t)
		mde.On("ExportEntity", mock.Anything, e).Return(exporter.ExportedDevice{}, entity.ErrDeviceNotFound)

		dc := deviceController{bridgeMapper: mbm, deviceExporter: mde}

		req := httptest.NewRequest("GET", "/devices/AA:BB", nil)
		req = mux.SetURLVars(req, map[string]string{"identifier": "AA:BB"})
		rr := httptest.NewRecorder()

		dc.getDevice(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("returns the exported device for a known identifier", func(t *testing.T) {
		e := testThermostatEntity()

		mbm := &mockBridgeMapper{}
		defer mbm.AssertExpectations(t)
		mbm.On("Entity", "AA:BB").Return(e, true)

		mde := &mockDeviceExporter{}
		defer mde.AssertExpectations(t)
		mde.On("ExportEntity", mock.Anything, e).Return(exporter.ExportedDevice{Identifier: "AA:BB"}, nil)

		dc := deviceController{bridgeMapper: mbm, deviceExporter: mde}

		req := httptest.NewRequest("GET", "/devices/AA:BB", nil)
		req = mux.SetURLVars(req, map[string]string{"identifier": "AA:BB"})
		rr := httptest.NewRecorder()

		dc.getDevice(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"identifier":"AA:BB"`)
	})
}

func TestDeviceController_updateDevice(t *testing.T) {
	t.Run("renames a registered device and publishes a metadata event", func(t *testing.T) {
		r := registry.New()
		assert.NoError(t, r.Register("AA:BB", registry.DeviceInfo{
			Identifiers: []registry.Identifier{{Namespace: registry.ConnectionNetworkMAC, ID: "AA:BB"}},
			Name:        "Office Thermostat",
		}))

		mep := &mockEventPublisher{}
		defer mep.AssertExpectations(t)
		mep.On("Publish", registry.DeviceMetadataUpdated{Identifier: "AA:BB"})

		dc := deviceController{deviceRegistry: &r, eventPublisher: mep}

		req := httptest.NewRequest("PATCH", "/devices/AA:BB", bytes.NewBufferString(`{"Name":"Study"}`))
		req = mux.SetURLVars(req, map[string]string{"identifier": "AA:BB"})
		rr := httptest.NewRecorder()

		dc.updateDevice(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)

		entry, _ := r.Device("AA:BB")
		assert.Equal(t, "Study", entry.Metadata.Name)
	})

	t.Run("returns 404 when renaming an unregistered device", func(t *testing.T) {
		r := registry.New()

		dc := deviceController{deviceRegistry: &r}

		req := httptest.NewRequest("PATCH", "/devices/unknown", bytes.NewBufferString(`{"Name":"Study"}`))
		req = mux.SetURLVars(req, map[string]string{"identifier": "unknown"})
		rr := httptest.NewRecorder()

		dc.updateDevice(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("returns 400 for a malformed body", func(t *testing.T) {
		r := registry.New()

		dc := deviceController{deviceRegistry: &r}

		req := httptest.NewRequest("PATCH", "/devices/AA:BB", bytes.NewBufferString(`{`))
		req = mux.SetURLVars(req, map[string]string{"identifier": "AA:BB"})
		rr := httptest.NewRecorder()

		dc.updateDevice(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
