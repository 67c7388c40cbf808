package v1

import (
	"embed"
	"github.com/gorilla/mux"
	"github.com/openlyric/bridge/coordinator"
	"github.com/openlyric/bridge/exporter"
	"github.com/openlyric/bridge/interface/http/auth"
	"github.com/openlyric/bridge/registry"
	"github.com/shimmeringbee/logwrap"
	"net/http"
)

//go:embed openapi.json
var openapi embed.FS

func ConstructRouter(mapper coordinator.BridgeMapper, deviceRegistry *registry.Registry, l logwrap.Logger, ap auth.AuthenticationProvider, eventbus coordinator.EventSubscriber, publisher coordinator.EventPublisher) http.Handler {
	protected := mux.NewRouter()

	de := exporter.NewDeviceExporter(deviceRegistry)

	dc := deviceController{
		bridgeMapper:   mapper,
		deviceExporter: de,
		deviceRegistry: deviceRegistry,
		eventPublisher: publisher,
	}

	ac := areaController{
		deviceRegistry: deviceRegistry,
		bridgeMapper:   mapper,
		deviceExporter: de,
		eventPublisher: publisher,
	}

	ec := eventsController{
		eventbus: eventbus,
		eventMapper: httpEventMapper{
			bridgeMapper:   mapper,
			deviceExporter: de,
			deviceRegistry: deviceRegistry,
		},
		logger: l,
	}

	protected.HandleFunc("/devices", dc.listDevices).Methods("GET")
	protected.HandleFunc("/devices/{identifier}", dc.getDevice).Methods("GET")
	protected.HandleFunc("/devices/{identifier}", dc.updateDevice).Methods("PATCH")

	protected.HandleFunc("/areas", ac.listAreas).Methods("GET")
	protected.HandleFunc("/areas", ac.createArea).Methods("POST")
	protected.HandleFunc("/areas/{identifier}", ac.getArea).Methods("GET")
	protected.HandleFunc("/areas/{identifier}", ac.deleteArea).Methods("DELETE")
	protected.HandleFunc("/areas/{identifier}", ac.updateArea).Methods("PATCH")
	protected.HandleFunc("/areas/{identifier}/devices/{deviceIdentifier}", ac.addDeviceToArea).Methods("PUT")
	protected.HandleFunc("/areas/{identifier}/devices/{deviceIdentifier}", ac.removeDeviceFromArea).Methods("DELETE")
	protected.HandleFunc("/areas/{identifier}/subareas/{subareaIdentifier}", ac.addSubareaToArea).Methods("PUT")
	protected.HandleFunc("/areas/{identifier}/subareas/{subareaIdentifier}", ac.removeSubareaFromArea).Methods("DELETE")

	protected.HandleFunc("/events", ec.serveServerSideEvents).Methods("GET")
	protected.HandleFunc("/events/websocket", ec.serveWebsocket).Methods("GET")

	apiRoot := mux.NewRouter()
	apiRoot.Handle("/openapi.json", http.FileServer(http.FS(openapi))).Methods("GET")
	apiRoot.Handle("/auth/type", authenticationType(ap)).Methods("GET")
	apiRoot.Handle("/auth/check", ap.AuthenticationMiddleware(http.HandlerFunc(authenticationCheck))).Methods("GET")
	apiRoot.PathPrefix("/auth").Handler(ap.AuthenticationRouter())
	apiRoot.PathPrefix("/").Handler(ap.AuthenticationMiddleware(protected))

	return apiRoot
}
