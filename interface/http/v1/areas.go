package v1

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/gorilla/mux"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/registry"
	"io"
	"net/http"
	"strconv"
)

type area struct {
	Identifier int
	Name       string
	SubAreas   []area                    `json:",omitempty"`
	Devices    []exporter.ExportedDevice `json:",omitempty"`
}

type areaController struct {
	deviceRegistry *registry.Registry
	bridgeMapper   coordinator.BridgeMapper
	deviceExporter deviceExporter
	eventPublisher eventPublisher
}

func includesString(haystack []string, needle string) bool {
	for _, straw := range haystack {
		if needle == straw {
			return true
		}
	}

	return false
}

func (a *areaController) listAreas(w http.ResponseWriter, r *http.Request) {
	includes := r.URL.Query()["include"]
	devices := includesString(includes, "devices")
	subareas := includesString(includes, "subareas")

	returnAreas := []area{}

	for _, rootArea := range a.deviceRegistry.RootAreas() {
		returnAreas = append(returnAreas, a.enumerateArea(r.Context(), rootArea, devices, subareas))
	}

	data, err := json.Marshal(returnAreas)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

func (a *areaController) enumerateArea(ctx context.Context, rA registry.Area, includeDevices bool, includeSubareas bool) area {
	var subAreas []area
	var devices []exporter.ExportedDevice

	if includeSubareas {
		subAreas = a.enumerateAreas(ctx, rA.SubAreas, includeDevices)
	}

	if includeDevices {
		for _, id := range rA.Devices {
			if e, found := a.bridgeMapper.Entity(id); found {
				if exported, err := a.deviceExporter.ExportEntity(ctx, e); err == nil {
					devices = append(devices, exported)
				}
			}
		}
	}

	return area{
		Identifier: rA.Identifier,
		Name:       rA.Name,
		SubAreas:   subAreas,
		Devices:    devices,
	}
}

func (a *areaController) enumerateAreas(ctx context.Context, areaIds []int, devices bool) []area {
	var areas []area

	for _, areaId := range areaIds {
		if rA, found := a.deviceRegistry.Area(areaId); found {
			areas = append(areas, a.enumerateArea(ctx, rA, devices, true))
		}
	}

	return areas
}

func (a *areaController) getArea(w http.ResponseWriter, r *http.Request) {
	includes := r.URL.Query()["include"]
	devices := includesString(includes, "devices")
	subareas := includesString(includes, "subareas")

	params := mux.Vars(r)

	stringId, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := strconv.Atoi(stringId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rA, found := a.deviceRegistry.Area(id)
	if !found {
		http.NotFound(w, r)
		return
	}

	convertedArea := a.enumerateArea(r.Context(), rA, devices, subareas)

	data, err := json.Marshal(convertedArea)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

type createAreaRequest struct {
	Name string
}

func (a *areaController) createArea(w http.ResponseWriter, r *http.Request) {
	request := createAreaRequest{}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err = json.Unmarshal(data, &request)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rA := a.deviceRegistry.NewArea(request.Name)
	a.eventPublisher.Publish(registry.AreaCreated{Identifier: rA.Identifier, Name: rA.Name})

	convertedArea := a.enumerateArea(r.Context(), rA, false, false)

	data, err = json.Marshal(convertedArea)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

func (a *areaController) deleteArea(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	stringId, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := strconv.Atoi(stringId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err = a.deviceRegistry.DeleteArea(id)
	switch {
	case errors.Is(err, registry.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, registry.ErrHasDevices):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, registry.ErrOrphanArea):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.eventPublisher.Publish(registry.AreaRemoved{Identifier: id})

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}

type updateAreaRequest struct {
	Name *string
}

func (a *areaController) updateArea(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	stringId, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, err := strconv.Atoi(stringId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	request := updateAreaRequest{}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err = json.Unmarshal(data, &request)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rA, found := a.deviceRegistry.Area(id)
	if !found {
		http.NotFound(w, r)
		return
	}

	if request.Name != nil {
		if err := a.deviceRegistry.NameArea(rA.Identifier, *request.Name); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	rA, _ = a.deviceRegistry.Area(id)
	a.eventPublisher.Publish(registry.AreaUpdated{Identifier: rA.Identifier, Name: rA.Name, Parent: rA.ParentArea})

	convertedArea := a.enumerateArea(r.Context(), rA, false, false)

	data, err = json.Marshal(convertedArea)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

func (a *areaController) addDeviceToArea(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	stringAreaId, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	deviceId, ok := params["deviceIdentifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areaId, err := strconv.Atoi(stringAreaId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := a.deviceRegistry.AddDeviceToArea(deviceId, areaId); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return
	}

	a.eventPublisher.Publish(registry.DeviceMetadataUpdated{Identifier: deviceId})

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}

func (a *areaController) removeDeviceFromArea(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	stringAreaId, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	deviceId, ok := params["deviceIdentifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areaId, err := strconv.Atoi(stringAreaId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := a.deviceRegistry.RemoveDeviceFromArea(deviceId, areaId); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return
	}

	a.eventPublisher.Publish(registry.DeviceMetadataUpdated{Identifier: deviceId})

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}

func (a *areaController) addSubareaToArea(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	stringAreaId, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stringSubareaId, ok := params["subareaIdentifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areaId, err := strconv.Atoi(stringAreaId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	subareaId, err := strconv.Atoi(stringSubareaId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := a.deviceRegistry.MoveArea(subareaId, areaId); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return
	}

	if rA, found := a.deviceRegistry.Area(subareaId); found {
		a.eventPublisher.Publish(registry.AreaUpdated{Identifier: rA.Identifier, Name: rA.Name, Parent: rA.ParentArea})
	}

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}

func (a *areaController) removeSubareaFromArea(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	stringAreaId, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stringSubareaId, ok := params["subareaIdentifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	areaId, err := strconv.Atoi(stringAreaId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	subareaId, err := strconv.Atoi(stringSubareaId)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rA, found := a.deviceRegistry.Area(subareaId)
	if !found || rA.ParentArea != areaId {
		http.NotFound(w, r)
		return
	}

	if err := a.deviceRegistry.MoveArea(subareaId, registry.RootAreaId); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return
	}

	a.eventPublisher.Publish(registry.AreaUpdated{Identifier: rA.Identifier, Name: rA.Name, Parent: registry.RootAreaId})

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}
