package v1

import (
	"encoding/json"
	"errors"
	"github.com/gorilla/mux"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/registry"
	"io"
	"net/http"
)

type deviceController struct {
	bridgeMapper   coordinator.BridgeMapper
	deviceExporter deviceExporter
	deviceRegistry *registry.Registry
	eventPublisher eventPublisher
}

func (d *deviceController) listDevices(w http.ResponseWriter, r *http.Request) {
	apiDevices := make(map[string]exporter.ExportedDevice)

	for _, e := range d.bridgeMapper.Entities() {
		if exported, err := d.deviceExporter.ExportEntity(r.Context(), e); err == nil {
			apiDevices[exported.Identifier] = exported
		}
	}

	data, err := json.Marshal(apiDevices)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

func (d *deviceController) getDevice(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	id, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	e, found := d.bridgeMapper.Entity(id)
	if !found {
		http.NotFound(w, r)
		return
	}

	apiDevice, err := d.deviceExporter.ExportEntity(r.Context(), e)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	data, err := json.Marshal(apiDevice)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Add("content-type", "application/json")
	w.Write(data)
}

type updateDeviceRequest struct {
	Name *string
}

func (d *deviceController) updateDevice(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)

	id, ok := params["identifier"]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	request := updateDeviceRequest{}

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

	if request.Name != nil {
		if err := d.deviceRegistry.NameDevice(id, *request.Name); err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				http.NotFound(w, r)
			} else {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}

			return
		}

		d.eventPublisher.Publish(registry.DeviceMetadataUpdated{Identifier: id})
	}

	http.Error(w, http.StatusText(http.StatusNoContent), http.StatusNoContent)
}
