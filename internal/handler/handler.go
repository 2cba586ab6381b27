package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shipperizer/internal/codec"
	"shipperizer/internal/domain"
	"shipperizer/internal/layout"
	"shipperizer/internal/service"
)

// maxImportBytes bounds import and upload bodies
const maxImportBytes = 16 << 20

// AutosaveClearer deletes the stored autosave
type AutosaveClearer interface {
	Clear(ctx context.Context) error
}

// LayoutDefaults fill in viewport fields a client leaves out
type LayoutDefaults struct {
	Padding float64
	Mobile  bool
}

// GraphHandler handles graph API requests
type GraphHandler struct {
	session  *service.GraphSession
	autosave AutosaveClearer
	layout   LayoutDefaults
	validate *validator.Validate
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(session *service.GraphSession, autosave AutosaveClearer, defaults LayoutDefaults, logger *zap.Logger) *GraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New()
	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &GraphHandler{
		session:  session,
		autosave: autosave,
		layout:   defaults,
		validate: v,
		logger:   logger,
	}
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CommandResponse is returned by every state-changing endpoint
type CommandResponse struct {
	Changed bool          `json:"changed"`
	State   service.State `json:"state"`
}

// SelectRequest taps one entity
type SelectRequest struct {
	ID string `json:"id" validate:"required"`
}

// RelationshipRequest sets the relationship between the selected pair
type RelationshipRequest struct {
	Kind string `json:"kind" validate:"required"`
}

// UploadRequest adds or refreshes entities from uploaded headshots
type UploadRequest struct {
	Uploads  []service.Upload `json:"uploads" validate:"required,min=1,dive"`
	Start    domain.Position  `json:"start"`
	Viewport *ViewportRequest `json:"viewport,omitempty"`
}

// PositionRequest drops an entity at a new position
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

// ViewportRequest describes the visible canvas for a layout
type ViewportRequest struct {
	Width    float64          `json:"width" validate:"gt=0"`
	Height   float64          `json:"height" validate:"gt=0"`
	Zoom     float64          `json:"zoom" validate:"gte=0"`
	NodeSize float64          `json:"node_size" validate:"gte=0"`
	Padding  *float64         `json:"padding,omitempty" validate:"omitempty,gte=0"`
	Mobile   *bool            `json:"mobile,omitempty"`
	Center   *domain.Position `json:"center,omitempty"`
}

// GetGraph returns the current state
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.State(), http.StatusOK)
}

// ClearGraph removes every entity and relationship
func (h *GraphHandler) ClearGraph(w http.ResponseWriter, r *http.Request) {
	h.perform(w, service.ClearAll{})
}

// Select applies a tap to the selection
func (h *GraphHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.session.Select(req.ID); err != nil {
		h.writeCommandError(w, "Failed to select entity", err)
		return
	}
	h.writeJSON(w, CommandResponse{State: h.session.State()}, http.StatusOK)
}

// ClearSelection drops the selection
func (h *GraphHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.session.ClearSelection()
	h.writeJSON(w, CommandResponse{State: h.session.State()}, http.StatusOK)
}

// RequestRelationship applies a relationship kind to the selected pair
func (h *GraphHandler) RequestRelationship(w http.ResponseWriter, r *http.Request) {
	var req RelationshipRequest
	if !h.decode(w, r, &req) {
		return
	}
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		h.writeError(w, "Invalid relationship kind", err.Error(), http.StatusBadRequest)
		return
	}
	h.perform(w, service.RequestRelationship{Kind: kind})
}

// DeleteRelationship removes one relationship
func (h *GraphHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	h.perform(w, service.DeleteRelationship{ID: chi.URLParam(r, "id")})
}

// UploadEntities adds or refreshes entities from uploads
func (h *GraphHandler) UploadEntities(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if !h.decode(w, r, &req) {
		return
	}
	cmd := service.UploadEntities{Uploads: req.Uploads, Start: req.Start}
	if req.Viewport != nil {
		vp := h.viewport(*req.Viewport)
		cmd.Layout = &vp
	}
	h.perform(w, cmd)
}

// DeleteEntity removes an entity and its relationships
func (h *GraphHandler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	h.perform(w, service.DeleteEntity{ID: chi.URLParam(r, "id")})
}

// MoveEntity stores a dragged entity's new position
func (h *GraphHandler) MoveEntity(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.perform(w, service.MoveEntity{
		ID:       chi.URLParam(r, "id"),
		Position: domain.Position{X: *req.X, Y: *req.Y},
	})
}

// Layout arranges entities on a circle
func (h *GraphHandler) Layout(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.perform(w, service.RequestLayout{Viewport: h.viewport(req)})
}

// Undo steps back one change
func (h *GraphHandler) Undo(w http.ResponseWriter, r *http.Request) {
	changed := h.session.Undo()
	h.writeJSON(w, CommandResponse{Changed: changed, State: h.session.State()}, http.StatusOK)
}

// Redo re-applies the last undone change
func (h *GraphHandler) Redo(w http.ResponseWriter, r *http.Request) {
	changed := h.session.Redo()
	h.writeJSON(w, CommandResponse{Changed: changed, State: h.session.State()}, http.StatusOK)
}

// ImportJSON replaces the graph with an uploaded JSON element list
func (h *GraphHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	h.importWith(w, r, codec.NewJSONCodec())
}

// ImportYAML replaces the graph with an uploaded YAML element list
func (h *GraphHandler) ImportYAML(w http.ResponseWriter, r *http.Request) {
	h.importWith(w, r, codec.NewYAMLCodec())
}

func (h *GraphHandler) importWith(w http.ResponseWriter, r *http.Request, importer codec.Importer) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := h.session.Import(importer, body); err != nil {
		h.logger.Warn("import rejected", zap.String("format", importer.Format()), zap.Error(err))
		h.writeCommandError(w, "Failed to import "+strings.ToUpper(importer.Format()), err)
		return
	}
	h.writeJSON(w, CommandResponse{Changed: true, State: h.session.State()}, http.StatusOK)
}

// ExportJSON downloads the graph as JSON
func (h *GraphHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=ships.json")
	if err := h.session.Export(codec.NewJSONCodec(), w); err != nil {
		// Can't write error response as we already set headers
		h.logger.Error("failed to export JSON", zap.Error(err))
	}
}

// ExportYAML downloads the graph as YAML
func (h *GraphHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", "attachment; filename=ships.yml")
	if err := h.session.Export(codec.NewYAMLCodec(), w); err != nil {
		h.logger.Error("failed to export YAML", zap.Error(err))
	}
}

// ClearAutosave deletes the stored autosave without touching the live graph
func (h *GraphHandler) ClearAutosave(w http.ResponseWriter, r *http.Request) {
	if h.autosave == nil {
		h.writeError(w, "Autosave disabled", "", http.StatusNotFound)
		return
	}
	if err := h.autosave.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear autosave", zap.Error(err))
		h.writeError(w, "Failed to clear autosave", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, map[string]string{"status": "cleared"}, http.StatusOK)
}

func (h *GraphHandler) perform(w http.ResponseWriter, cmd service.Command) {
	changed, err := h.session.PerformCommand(cmd)
	if err != nil {
		h.writeCommandError(w, "Failed to "+strings.ReplaceAll(cmd.Name(), "_", " "), err)
		return
	}
	h.writeJSON(w, CommandResponse{Changed: changed, State: h.session.State()}, http.StatusOK)
}

func (h *GraphHandler) viewport(req ViewportRequest) layout.Viewport {
	vp := layout.Viewport{
		Width:    req.Width,
		Height:   req.Height,
		Zoom:     req.Zoom,
		NodeSize: req.NodeSize,
		Padding:  h.layout.Padding,
		Center:   req.Center,
	}
	if req.Padding != nil {
		vp.Padding = *req.Padding
	}
	if vp.NodeSize == 0 {
		mobile := h.layout.Mobile
		if req.Mobile != nil {
			mobile = *req.Mobile
		}
		vp.NodeSize = layout.NodeSize(req.Width, req.Height, mobile)
	}
	return vp
}

// decode reads a JSON body into dst and validates it. It writes the error
// reply itself and reports false on failure.
func (h *GraphHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.writeError(w, "Invalid request body", "body is empty", http.StatusBadRequest)
			return false
		}
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *GraphHandler) writeCommandError(w http.ResponseWriter, msg string, err error) {
	h.writeError(w, msg, err.Error(), errorStatus(err))
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsDuplicate(err), domain.IsInvalidSelection(err):
		return http.StatusConflict
	case domain.IsMalformedImport(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func (h *GraphHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", zap.Error(err))
	}
}

func (h *GraphHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}
