package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/openlyric/bridge/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAreaController_createArea(t *testing.T) {
	t.Run("creates an area and publishes its creation", func(t *testing.T) {
		r := registry.New()

		mep := &mockEventPublisher{}
		defer mep.AssertExpectations(t)
		mep.On("Publish", mock.AnythingOfType("registry.AreaCreated"))

		ac := areaController{deviceRegistry: &r, eventPublisher: mep}

		req := httptest.NewRequest("POST", "/areas", bytes.NewBufferString(`{"Name":"Upstairs"}`))
		rr := httptest.NewRecorder()

		ac.createArea(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		created := area{}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.Equal(t, "Upstairs", created.Name)

		_, found := r.Area(created.Identifier)
		assert.True(t, found)
	})
}

func TestAreaController_listAreas(t *testing.T) {
	t.Run("lists root areas with subareas when included", func(t *testing.T) {
		r := registry.New()

		parent := r.NewArea("Upstairs")
		child := r.NewArea("Bathroom")
		assert.NoError(t, r.MoveArea(child.Identifier, parent.Identifier))

		ac := areaController{deviceRegistry: &r}

		req := httptest.NewRequest("GET", "/areas?include=subareas", nil)
		rr := httptest.NewRecorder()

		ac.listAreas(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var areas []area
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &areas))
		assert.Len(t, areas, 1)
		assert.Equal(t, "Upstairs", areas[0].Name)
		assert.Len(t, areas[0].SubAreas, 1)
		assert.Equal(t, "Bathroom", areas[0].SubAreas[0].Name)
	})
}

func TestAreaController_getArea(t *testing.T) {
	t.Run("returns 404 for an unknown area", func(t *testing.T) {
		r := registry.New()

		ac := areaController{deviceRegistry: &r}

		req := httptest.NewRequest("GET", "/areas/42", nil)
		req = mux.SetURLVars(req, map[string]string{"identifier": "42"})
		rr := httptest.NewRecorder()

		ac.getArea(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("returns 400 for a non numeric identifier", func(t *testing.T) {
		r := registry.New()

		ac := areaController{deviceRegistry: &r}

		req := httptest.NewRequest("GET", "/areas/zero", nil)
		req = mux.SetURLVars(req, map[string]string{"identifier": "zero"})
		rr := httptest.NewRecorder()

		ac.getArea(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAreaController_updateArea(t *testing.T) {
	t.Run("renames an area and publishes the update", func(t *testing.T) {
		r := registry.New()
		created := r.NewArea("Upstair")

		mep := &mockEventPublisher{}
		defer mep.AssertExpectations(t)
		mep.On("Publish", registry.AreaUpdated{Identifier: created.Identifier, Name: "Upstairs", Parent: registry.RootAreaId})

		ac := areaController{deviceRegistry: &r, eventPublisher: mep}

		req := httptest.NewRequest("PATCH", fmt.Sprintf("/areas/%d", created.Identifier), bytes.NewBufferString(`{"Name":"Upstairs"}`))
		req = mux.SetURLVars(req, map[string]string{"identifier": fmt.Sprintf("%d", created.Identifier)})
		rr := httptest.NewRecorder()

		ac.updateArea(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		updated, _ := r.Area(created.Identifier)
		assert.Equal(t, "Upstairs", updated.Name)
	})
}

func TestAreaController_deleteArea(t *testing.T) {
	t.Run("rejects deleting an area which still has devices", func(t *testing.T) {
		r := registry.New()
		created := r.NewArea("Upstairs")

		assert.NoError(t, r.Register("AA:BB", registry.DeviceInfo{
			Identifiers: []registry.Identifier{{Namespace: registry.ConnectionNetworkMAC, ID: "AA:BB"}},
		}))
		assert.NoError(t, r.AddDeviceToArea("AA:BB", created.Identifier))

		ac := areaController{deviceRegistry: &r}

		req := httptest.NewRequest("DELETE", fmt.Sprintf("/areas/%d", created.Identifier), nil)
		req = mux.SetURLVars(req, map[string]string{"identifier": fmt.Sprintf("%d", created.Identifier)})
		rr := httptest.NewRecorder()

		ac.deleteArea(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("deletes an empty area and publishes its removal", func(t *testing.T) {
		r := registry.New()
		created := r.NewArea("Upstairs")

		mep := &mockEventPublisher{}
		defer mep.AssertExpectations(t)
		mep.On("Publish", registry.AreaRemoved{Identifier: created.Identifier})

		ac := areaController{deviceRegistry: &r, eventPublisher: mep}

		req := httptest.NewRequest("DELETE", fmt.Sprintf("/areas/%d", created.Identifier), nil)
		req = mux.SetURLVars(req, map[string]string{"identifier": fmt.Sprintf("%d", created.Identifier)})
		rr := httptest.NewRecorder()

		ac.deleteArea(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)

		_, found := r.Area(created.Identifier)
		assert.False(t, found)
	})
}

func TestAreaController_areaDeviceMembership(t *testing.T) {
	t.Run("adds and removes a device, publishing metadata updates", func(t *testing.T) {
		r := registry.New()
		created := r.NewArea("Upstairs")

		assert.NoError(t, r.Register("AA:BB", registry.DeviceInfo{
			Identifiers: []registry.Identifier{{Namespace: registry.ConnectionNetworkMAC, ID: "AA:BB"}},
		}))

		mep := &mockEventPublisher{}
		defer mep.AssertExpectations(t)
		mep.On("Publish", registry.DeviceMetadataUpdated{Identifier: "AA:BB"}).Twice()

		ac := areaController{deviceRegistry: &r, eventPublisher: mep}

		vars := map[string]string{
			"identifier":       fmt.Sprintf("%d", created.Identifier),
			"deviceIdentifier": "AA:BB",
		}

		req := httptest.NewRequest("PUT", "/areas/1/devices/AA:BB", nil)
		req = mux.SetURLVars(req, vars)
		rr := httptest.NewRecorder()

		ac.addDeviceToArea(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		inArea, _ := r.Area(created.Identifier)
		assert.Contains(t, inArea.Devices, "AA:BB")

		req = httptest.NewRequest("DELETE", "/areas/1/devices/AA:BB", nil)
		req = mux.SetURLVars(req, vars)
		rr = httptest.NewRecorder()

		ac.removeDeviceFromArea(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)

		outArea, _ := r.Area(created.Identifier)
		assert.NotContains(t, outArea.Devices, "AA:BB")
	})
}
