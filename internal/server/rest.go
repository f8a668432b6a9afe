package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goevery/retroboard/internal/handler"
	"github.com/goevery/retroboard/internal/ierr"
	"github.com/goevery/retroboard/internal/retro"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	headerUserId   = "X-User-Id"
	headerUserName = "X-User-Name"
)

type errorResponse struct {
	Error string `json:"error"`
}

// endpoint returns the status and body to send, or an error to map.
type endpoint func(r *http.Request) (int, any, error)

type RESTServer struct {
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	userHandler          *handler.UserHandler
	retrospectiveHandler *handler.RetrospectiveHandler
	noteHandler          *handler.NoteHandler
}

func NewRESTServer(
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	userHandler *handler.UserHandler,
	retrospectiveHandler *handler.RetrospectiveHandler,
	noteHandler *handler.NoteHandler,
) *RESTServer {
	return &RESTServer{
		logger,
		gatherer,
		userHandler,
		retrospectiveHandler,
		noteHandler,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware, identityMiddleware)

	s.handle(api, http.MethodPost, "/users/by-name", s.findUserByName)
	s.handle(api, http.MethodPost, "/users", s.createUser)
	s.handle(api, http.MethodGet, "/templates", s.listTemplates)
	s.handle(api, http.MethodGet, "/retrospectives", s.listRetrospectives)
	s.handle(api, http.MethodPost, "/retrospectives", s.createRetrospective)
	s.handle(api, http.MethodGet, "/retrospectives/{id}", s.getRetrospective)
	s.handle(api, http.MethodGet, "/retrospectives/{id}/notes", s.listNotes)
	s.handle(api, http.MethodPost, "/retrospectives/{id}/notes", s.createNote)
	s.handle(api, http.MethodPatch, "/retrospectives/{id}/notes/{noteId}", s.updateNote)
	s.handle(api, http.MethodDelete, "/retrospectives/{id}/notes/{noteId}", s.deleteNote)

	router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).
		Methods(http.MethodGet)
}

func (s *RESTServer) handle(router *mux.Router, method string, path string, fn endpoint) {
	router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		status, body, err := fn(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, status, body)
	}).Methods(method, http.MethodOptions)
}

func (s *RESTServer) findUserByName(r *http.Request) (int, any, error) {
	var req handler.FindUserByNameRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}

	user, err := s.userHandler.FindByName(r.Context(), req)
	if err != nil {
		return 0, nil, err
	}

	return http.StatusOK, user, nil
}

func (s *RESTServer) createUser(r *http.Request) (int, any, error) {
	var req handler.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}

	response, err := s.userHandler.Create(r.Context(), req)
	if err != nil {
		return 0, nil, err
	}

	if response.Created {
		return http.StatusCreated, response.User, nil
	}

	return http.StatusOK, response.User, nil
}

func (s *RESTServer) listTemplates(_ *http.Request) (int, any, error) {
	return http.StatusOK, retro.Templates(), nil
}

func (s *RESTServer) listRetrospectives(r *http.Request) (int, any, error) {
	retrospectives, err := s.retrospectiveHandler.List(r.Context())
	if err != nil {
		return 0, nil, err
	}

	return http.StatusOK, retrospectives, nil
}

func (s *RESTServer) getRetrospective(r *http.Request) (int, any, error) {
	retrospective, err := s.retrospectiveHandler.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return 0, nil, err
	}

	return http.StatusOK, retrospective, nil
}

func (s *RESTServer) createRetrospective(r *http.Request) (int, any, error) {
	if _, err := handler.RequireIdentity(r.Context()); err != nil {
		return 0, nil, err
	}

	var req handler.CreateRetrospectiveRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}

	retrospective, err := s.retrospectiveHandler.Create(r.Context(), req)
	if err != nil {
		return 0, nil, err
	}

	return http.StatusCreated, retrospective, nil
}

func (s *RESTServer) listNotes(r *http.Request) (int, any, error) {
	notes, err := s.noteHandler.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return 0, nil, err
	}

	return http.StatusOK, notes, nil
}

func (s *RESTServer) createNote(r *http.Request) (int, any, error) {
	if _, err := handler.RequireIdentity(r.Context()); err != nil {
		return 0, nil, err
	}

	var req handler.CreateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}

	note, err := s.noteHandler.Create(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		return 0, nil, err
	}

	return http.StatusCreated, note, nil
}

func (s *RESTServer) updateNote(r *http.Request) (int, any, error) {
	if _, err := handler.RequireIdentity(r.Context()); err != nil {
		return 0, nil, err
	}

	var req handler.UpdateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}

	vars := mux.Vars(r)

	note, err := s.noteHandler.Update(r.Context(), vars["id"], vars["noteId"], req)
	if err != nil {
		return 0, nil, err
	}

	return http.StatusOK, note, nil
}

func (s *RESTServer) deleteNote(r *http.Request) (int, any, error) {
	vars := mux.Vars(r)

	err := s.noteHandler.Delete(r.Context(), vars["id"], vars["noteId"])
	if err != nil {
		return 0, nil, err
	}

	return http.StatusNoContent, nil, nil
}

func (s *RESTServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var handlerErr ierr.Error
	if errors.As(err, &handlerErr) {
		s.writeJSON(w, handlerErr.Code.HTTPStatus(), errorResponse{Error: handlerErr.Message})
		return
	}

	s.logger.Error("failed to handle request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func (s *RESTServer) writeJSON(w http.ResponseWriter, status int, body any) {
	if body == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid request body"))
	}

	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+headerUserId+", "+headerUserName)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identityMiddleware takes the caller's identity from request headers as is.
func identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := handler.WithIdentity(r.Context(), handler.Identity{
			UserId:   r.Header.Get(headerUserId),
			UserName: r.Header.Get(headerUserName),
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
