package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/apimodel"
	"github.com/frank26080115/fotokiosk/internal/library"
	"github.com/frank26080115/fotokiosk/internal/srv/config"
	"github.com/frank26080115/fotokiosk/internal/srv/event"
	"github.com/frank26080115/fotokiosk/internal/tool"
)

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config *config.ServerConfig

	// read-only queries answered without going through the event loop
	photosProvider func() []string
	statusProvider func() apimodel.Status
}

func NewApi(config *config.ServerConfig, photosProvider func() []string, statusProvider func() apimodel.Status) *Api {
	api := Api{
		config:         config,
		eventChannel:   make(chan event.ApiEvent),
		photosProvider: photosProvider,
		statusProvider: statusProvider,
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						strMessage := fmt.Sprintf("%v", rec)
						GlobalErrorAction(w, strMessage, http.StatusInternalServerError)
					}
				}()

				// Check API Key
				if config.ServerParam.ApiParam.ApiKey != "" {
					apiKey := r.Header.Get("x-api-key")
					if apiKey != config.ServerParam.ApiParam.ApiKey {
						ErrorStatusAction(w, r, http.StatusForbidden)
						return
					}
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// API Routes

	// Create server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/photos",
		func(w http.ResponseWriter, r *http.Request) {
			photoList := apimodel.PhotoList{Photos: api.photosProvider()}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(photoList)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/status",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(api.statusProvider())
		}).Methods("GET")
	api.apiRouter.HandleFunc("/slideshow/{action}",
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			var data interface{}
			switch vars["action"] {
			case "next":
				data = event.ApiEventSlideshowNextData{}
			case "previous":
				data = event.ApiEventSlideshowPreviousData{}
			case "new":
				data = event.ApiEventSlideshowNewData{}
			default:
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}

			result := make(chan error)
			api.eventChannel <- event.ApiEvent{Result: result, Data: data}
			err := <-result
			if err == nil {
				ErrorStatusAction(w, r, http.StatusOK)
			} else if errors.Is(err, library.ErrNoImagesFound) {
				apimodel.EmptyLibraryErrorMessage.SendError(w)
			} else {
				GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
			}
		}).Methods("POST")
	api.apiRouter.HandleFunc("/power/{state}",
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			var on bool
			switch vars["state"] {
			case "on":
				on = true
			case "off":
				on = false
			default:
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}

			result := make(chan error)
			api.eventChannel <- event.ApiEvent{Result: result, Data: event.ApiEventPowerData{On: on}}
			err := <-result
			if err == nil {
				ErrorStatusAction(w, r, http.StatusOK)
			} else {
				GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
			}
		}).Methods("POST")

	// Raw photo files for remote browsing
	api.router.PathPrefix("/photos/").Handler(
		http.StripPrefix("/photos/",
			handlers.LoggingHandler(logrus.StandardLogger().Writer(),
				http.FileServer(http.Dir(config.ServerParam.LibraryRoot)))))

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(config.ServerParam.ApiParam.SslPort, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 240,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

func (d *Api) Start() {
	logrus.Infof("Start api device")

	existServerCert, err := tool.IsFileExists(d.selfSignedCertFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedCertFilename(), err)
	}

	existServerKey, err := tool.IsFileExists(d.selfSignedKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedKeyFilename(), err)
	}

	if !existServerCert || !existServerKey {
		logrus.Info("Missing cert and key files, trying to generate them...")
		err = tool.GenerateTlsCertificate(
			"fotokiosk",
			"Fotokiosk Server",
			d.selfSignedKeyFilename(),
			d.selfSignedCertFilename(),
			[]string{})
		if err != nil {
			logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
		}
		logrus.Info("Self-signed cert and key files generated")
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.selfSignedCertFilename(), d.selfSignedKeyFilename())
		if err != nil && err.Error() != "http: Server closed" {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	d.server.Shutdown(context.Background())
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func (d *Api) selfSignedKeyFilename() string {
	return filepath.Join(d.config.ConfigDir, "key.pem")
}

func (d *Api) selfSignedCertFilename() string {
	return filepath.Join(d.config.ConfigDir, "cert.pem")
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	errorMessage := &apimodel.ErrorMessage{
		ErrStatusCode: status,
		ErrMessage:    title,
	}

	if title == "" {
		switch status {
		case http.StatusOK:
			errorMessage.ErrMessage = "Ok"
		case http.StatusNotFound:
			errorMessage.ErrMessage = "Page not found"
		case http.StatusMethodNotAllowed:
			errorMessage.ErrMessage = "Method not allowed"
		case http.StatusForbidden:
			errorMessage.ErrMessage = "Forbidden"
		case http.StatusServiceUnavailable:
			errorMessage.ErrMessage = "Service unavailable"
		case http.StatusBadRequest:
			errorMessage.ErrMessage = "Bad request"
		default:
			errorMessage.ErrMessage = "Internal error"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorMessage)
}
