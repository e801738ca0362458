package app

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/pprof"

	"github.com/JiscSD/rdss-datacite-transcoder/export"
	"github.com/JiscSD/rdss-datacite-transcoder/importer/datacitexml"
	"github.com/JiscSD/rdss-datacite-transcoder/importer/legacy"
	"github.com/JiscSD/rdss-datacite-transcoder/schema"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	urlschema "github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const maxBodySize = 10 << 20

const (
	sourceXML    = "xml"
	sourceLegacy = "legacy"

	outcomePublishable = "publishable"
	outcomeInvalid     = "invalid"
	outcomeFailed      = "failed"
)

type metrics struct {
	registry         *prometheus.Registry
	conversions      *prometheus.CounterVec
	validationErrors prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rdss_datacite_transcoder",
			Name:      "conversions_total",
			Help:      "The total number of conversions by source and outcome.",
		}, []string{"source", "outcome"}),
		validationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdss_datacite_transcoder",
			Name:      "validation_errors_total",
			Help:      "The total number of validation errors reported.",
		}),
	}
	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.conversions,
		m.validationErrors,
	)
	return m
}

// versionQuery holds the query string parameters shared by the endpoints.
type versionQuery struct {
	SchemaVersion string `schema:"schemaVersion"`
}

type conversionResponse struct {
	Valid    bool                           `json:"valid"`
	Document json.RawMessage                `json:"document,omitempty"`
	Errors   []schema.ValidationErrorDetail `json:"errors,omitempty"`
	Issues   []string                       `json:"issues,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type api struct {
	logger     logrus.FieldLogger
	transcoder *transcoder
	metrics    *metrics
	decoder    *urlschema.Decoder
}

func newRouter(logger logrus.FieldLogger, t *transcoder, m *metrics) *mux.Router {
	decoder := urlschema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	a := &api{logger: logger, transcoder: t, metrics: m, decoder: decoder}

	r := mux.NewRouter()
	r.HandleFunc("/v1/convert", a.convert).Methods(http.MethodPost)
	r.HandleFunc("/v1/validate", a.validate).Methods(http.MethodPost)
	r.HandleFunc("/v1/legacy/{key}", a.legacy).Methods(http.MethodGet)

	// Health check.
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	// Prometheus metrics.
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	// Profiling data.
	r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", pprof.Profile)
	r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)

	return r
}

func (a *api) schemaVersion(r *http.Request) (string, error) {
	var q versionQuery
	if err := a.decoder.Decode(&q, r.URL.Query()); err != nil {
		return "", errors.Wrap(err, "invalid query string")
	}
	return a.transcoder.version(q.SchemaVersion), nil
}

func (a *api) convert(w http.ResponseWriter, r *http.Request) {
	version, err := a.schemaVersion(r)
	if err != nil {
		a.fail(w, sourceXML, http.StatusBadRequest, err)
		return
	}
	conv, err := a.transcoder.convertXML(r.Context(), http.MaxBytesReader(w, r.Body, maxBodySize), version, r.URL.Query().Get("legacyKey"))
	if err != nil {
		a.fail(w, sourceXML, statusCode(err), err)
		return
	}
	a.respondConversion(w, sourceXML, conv)
}

func (a *api) validate(w http.ResponseWriter, r *http.Request) {
	version, err := a.schemaVersion(r)
	if err != nil {
		a.respond(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	blob, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		a.respond(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	err = a.transcoder.validator.Validate(blob, version)
	var verr *schema.ValidationError
	switch {
	case err == nil:
		a.respond(w, http.StatusOK, conversionResponse{Valid: true})
	case errors.As(err, &verr):
		a.metrics.validationErrors.Add(float64(len(verr.Errors)))
		a.respond(w, http.StatusUnprocessableEntity, conversionResponse{Errors: verr.Errors})
	default:
		a.respond(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
}

func (a *api) legacy(w http.ResponseWriter, r *http.Request) {
	version, err := a.schemaVersion(r)
	if err != nil {
		a.fail(w, sourceLegacy, http.StatusBadRequest, err)
		return
	}
	res, err := a.transcoder.importLegacy(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		a.fail(w, sourceLegacy, statusCode(err), err)
		return
	}
	doc, err := newLegacyDocument(res, version)
	if err != nil {
		a.fail(w, sourceLegacy, statusCode(err), err)
		return
	}
	a.metrics.conversions.WithLabelValues(sourceLegacy, outcomePublishable).Inc()
	a.respond(w, http.StatusOK, doc)
}

func (a *api) respondConversion(w http.ResponseWriter, source string, conv *conversion) {
	resp := conversionResponse{
		Document: conv.Document,
		Issues:   conv.issueMessages(),
	}
	if conv.Validation != nil {
		resp.Errors = conv.Validation.Errors
		a.metrics.conversions.WithLabelValues(source, outcomeInvalid).Inc()
		a.metrics.validationErrors.Add(float64(len(resp.Errors)))
		a.respond(w, http.StatusUnprocessableEntity, resp)
		return
	}
	resp.Valid = true
	a.metrics.conversions.WithLabelValues(source, outcomePublishable).Inc()
	a.respond(w, http.StatusOK, resp)
}

func (a *api) fail(w http.ResponseWriter, source string, status int, err error) {
	a.metrics.conversions.WithLabelValues(source, outcomeFailed).Inc()
	if status >= http.StatusInternalServerError {
		a.logger.WithError(err).WithField("source", source).Error("Conversion failed")
	}
	a.respond(w, status, errorResponse{Error: err.Error()})
}

func (a *api) respond(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", mediaTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.WithError(err).Warn("Error writing response")
	}
}

func statusCode(err error) int {
	var (
		malformed   *datacitexml.MalformedXMLError
		unsupported *export.UnsupportedVersionError
		schemaVer   *schema.UnsupportedVersionError
		unavailable *legacy.SourceUnavailableError
	)
	switch {
	case errors.As(err, &malformed), errors.As(err, &unsupported), errors.As(err, &schemaVer):
		return http.StatusBadRequest
	case errors.Is(err, errLegacyDisabled):
		return http.StatusNotImplemented
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
