package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/citymunch/slack-bot/internal/model"
	"github.com/citymunch/slack-bot/internal/search"
)

var servePort int

const shutdownTimeout = 10 * time.Second

var validate = validator.New()

// searchService is the subset of search.Service the HTTP API calls.
type searchService interface {
	Search(ctx context.Context, text, userID string) (*model.SearchResult, error)
	ShowMore(ctx context.Context, searchID string) (string, bool, error)
	SaveLocation(ctx context.Context, userID, name string) (*model.ResolvedLocation, error)
	ShouldPromptForNotifications(ctx context.Context, userID string) bool
}

type searchRequest struct {
	Text   string `json:"text" validate:"max=500"`
	UserID string `json:"user_id" validate:"omitempty,max=64"`
}

type searchResponse struct {
	*model.SearchResult
	PromptNotifications bool `json:"prompt_notifications"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initSearchEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env.Service, env.Catalog.Ready()),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return env.Catalog.Run(gctx)
		})

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP API. ready is closed once the catalog has its
// first snapshot.
func newRouter(svc searchService, ready <-chan struct{}) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "catalog": "loading"}
		select {
		case <-ready:
			status["catalog"] = "ready"
		default:
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed: " + err.Error()})
			return
		}

		res, err := svc.Search(r.Context(), req.Text, req.UserID)
		if err != nil {
			writeSearchError(w, err)
			return
		}

		resp := searchResponse{SearchResult: res}
		if req.UserID != "" {
			resp.PromptNotifications = svc.ShouldPromptForNotifications(r.Context(), req.UserID)
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/searches/{id}/more", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validate.Var(id, "required,uuid"); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid search id"})
			return
		}

		msg, ok, err := svc.ShowMore(r.Context(), id)
		if err != nil {
			zap.L().Error("show more lookup failed", zap.String("search_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "lookup failed"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no more results for this search"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"search_id": id, "message": msg})
	})

	r.Put("/users/{userID}/saved-locations/{name}", func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		name := chi.URLParam(r, "name")
		if err := validate.Var(userID, "required,max=64"); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
			return
		}
		if err := validate.Var(name, "required,oneof=home work"); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "saved location must be home or work"})
			return
		}

		loc, err := svc.SaveLocation(r.Context(), userID, name)
		if err != nil {
			if model.KindOf(err) == model.KindNeedsLocation {
				writeJSON(w, http.StatusConflict, errorResponse{
					Error:   "no location to save",
					Kind:    model.KindNeedsLocation.String(),
					Message: "Search for somewhere first, then save it as your " + name + ".",
				})
				return
			}
			zap.L().Error("save location failed", zap.String("user_id", userID), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "save failed"})
			return
		}
		writeJSON(w, http.StatusOK, loc)
	})

	return r
}

// writeSearchError maps a failed search to a status code and the message the
// user should see.
func writeSearchError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case model.KindParseFailure, model.KindNeedsLocation, model.KindLocationNotFound, model.KindGeocodeFailed:
		status = http.StatusUnprocessableEntity
	case model.KindNoRestaurantsFound, model.KindNoOffersFound:
		status = http.StatusNotFound
	default:
		zap.L().Error("search failed", zap.Error(err))
	}

	resp := errorResponse{Error: "search failed", Message: search.UserMessage(err)}
	if kind != model.KindUnknown {
		resp.Error = err.Error()
		resp.Kind = kind.String()
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
