package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flemdev/portal-ppe/internal/importer"
	"github.com/flemdev/portal-ppe/internal/logger"
	"github.com/flemdev/portal-ppe/internal/store"
)

type application struct {
	config   config
	store    store.Storage
	tables   *store.TableRegistry
	pipeline *importer.Pipeline
	log      *logger.Logger
}

type config struct {
	addr          string
	db            dbConfig
	tenants       []string
	legacyBaseURL string
	filesBaseURL  string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Route("/{tenant}", func(r chi.Router) {
			r.Use(app.tenantCtx)

			r.Route("/beneficiaries", func(r chi.Router) {
				r.Get("/", app.handleListBeneficiaries)
				r.Post("/import/validate", app.handleValidateImport)
				r.Post("/import", app.handleImport)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", app.handleGetBeneficiary)
					r.Patch("/", app.handleUpdateBeneficiary)
					r.Delete("/", app.handleDeleteBeneficiary)
					r.Get("/history", app.handleListBeneficiaryHistory)
				})
			})

			r.Route("/shipments", func(r chi.Router) {
				r.Get("/", app.handleListShipments)
				r.Get("/{number}", app.handleGetShipmentByNumber)
			})

			r.Post("/history", app.handleCreateHistory)

			r.Route("/references", func(r chi.Router) {
				r.Get("/demanding-orgs", app.handleListDemandingOrgs)
				r.Post("/demanding-orgs", app.handleCreateDemandingOrg)
				r.Get("/municipalities", app.handleListMunicipalities)
				r.Post("/municipalities", app.handleCreateMunicipality)
				r.Get("/ethnicities", app.handleListEthnicities)
				r.Post("/ethnicities", app.handleCreateEthnicity)
				r.Get("/courses", app.handleListCourses)
				r.Post("/courses", app.handleCreateCourse)
				r.Get("/placement-statuses", app.handleListPlacementStatuses)
				r.Post("/placement-statuses", app.handleCreatePlacementStatus)
				r.Get("/history-types", app.handleListHistoryTypes)
				r.Post("/history-types", app.handleCreateHistoryType)
				r.Delete("/{kind}/{id}", app.handleDeleteReference)
			})
		})
	})

	return r
}

// tenantCtx rejects unknown tenant codes before they reach any store call.
func (app *application) tenantCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := chi.URLParam(r, "tenant")
		if !app.tables.KnownTenant(tenant) {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown tenant (%s)", tenant))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) run(mux http.Handler) error {

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 40,
		IdleTimeout:  time.Minute,
	}

	log.Printf("Server started on %s", app.config.addr)
	return srv.ListenAndServe()
}
