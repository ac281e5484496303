package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/listing"
	"github.com/localnerve/archhub/internal/middleware"
	"github.com/localnerve/archhub/internal/types"
	"github.com/localnerve/archhub/internal/utils"
)

// FormHandler drives the multi-step new application form
type FormHandler struct {
	Registry *form.Registry
	Columns  *listing.Columns
}

// OpenSessionInput starts a session
type OpenSessionInput struct {
	Values    form.Values `json:"values,omitempty"`
	FromDraft bool        `json:"fromDraft,omitempty"`
}

// SetValueInput is the body of a value update
type SetValueInput struct {
	Value any `json:"value"`
}

// SaveDraftInput optionally names the draft version being replaced
type SaveDraftInput struct {
	Version *types.FlexUint64 `json:"version,omitempty"`
}

// Draft is the stored draft of the caller
type Draft struct {
	Values  form.Values `json:"values"`
	Version uint64      `json:"version"`
}

// session returns the caller's session from the id param. A session owned
// by someone else is reported as missing.
func (h *FormHandler) session(c *fiber.Ctx) (*form.Session, error) {
	s, err := h.Registry.Get(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if s.Owner() != middleware.ActorName(c) {
		return nil, form.ErrSessionNotFound
	}
	return s, nil
}

// formError maps engine errors to responses
func formError(c *fiber.Ctx, err error, errorType string) error {
	var verrs types.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return utils.ValidationErrorResponse(c, "Please correct the highlighted fields", verrs)
	case errors.Is(err, form.ErrSessionNotFound), errors.Is(err, form.ErrDraftNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrNotSelect),
		errors.Is(err, form.ErrInvalidValue),
		errors.Is(err, form.ErrStepOutOfRange):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	case errors.Is(err, form.ErrAlreadySubmitted), errors.Is(err, catalogue.ErrDuplicateID):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, errorType)
	case errors.Is(err, form.ErrVersion):
		return utils.VersionErrorResponse(c)
	case errors.Is(err, form.ErrNoDraftStore):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusNotImplemented, errorType)
	}

	middleware.Logger(c).Error().Err(err).Str("type", errorType).Msg("Form operation failed")
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}

// GetMetadata handles GET /api/form/metadata
// @Summary Form metadata
// @Tags Form
// @Produce json
// @Success 200 {object} form.Metadata
// @Router /form/metadata [get]
func (h *FormHandler) GetMetadata(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.Registry.Engine().Meta)
}

// GetColumns handles GET /api/form/columns
// @Summary List view columns
// @Description Columns are the list fields of the form in sequence order; primary fields are visible.
// @Tags Form
// @Produce json
// @Success 200 {array} listing.Column
// @Router /form/columns [get]
func (h *FormHandler) GetColumns(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.Columns.All())
}

// OpenSession handles POST /api/form/sessions
// @Summary Start a form session
// @Description Starts at the first step. Values seed the form; fromDraft seeds it from the caller's draft.
// @Tags Form
// @Accept json
// @Produce json
// @Param body body OpenSessionInput false "Initial values"
// @Success 201 {object} form.Snapshot
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/sessions [post]
func (h *FormHandler) OpenSession(c *fiber.Ctx) error {
	var input OpenSessionInput
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "openSession")
		}
	}

	owner := middleware.ActorName(c)
	initial := input.Values

	if input.FromDraft {
		drafts := h.Registry.Engine().Drafts
		if drafts == nil {
			return formError(c, form.ErrNoDraftStore, "openSession")
		}
		values, _, err := drafts.Load(c.UserContext(), owner)
		switch {
		case err == nil:
			initial = values
		case !errors.Is(err, form.ErrDraftNotFound):
			return formError(c, err, "openSession")
		}
	}

	s := h.Registry.Open(owner, initial)
	return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
}

// GetSession handles GET /api/form/sessions/:id
// @Summary Get a form session
// @Tags Form
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} form.Snapshot
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/sessions/{id} [get]
func (h *FormHandler) GetSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "getSession")
	}
	return c.Status(fiber.StatusOK).JSON(s.Snapshot())
}

// CloseSession handles DELETE /api/form/sessions/:id
// @Summary Discard a form session
// @Tags Form
// @Param id path string true "Session id"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/sessions/{id} [delete]
func (h *FormHandler) CloseSession(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "closeSession")
	}
	h.Registry.Close(s.ID())
	return c.SendStatus(fiber.StatusNoContent)
}

// SetValue handles PUT /api/form/sessions/:id/values/:field
// @Summary Set a field value
// @Description Clears the field's error and resets the selects that depend on it.
// @Tags Form
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param field path string true "Field key"
// @Param body body SetValueInput true "Value"
// @Success 200 {object} form.Snapshot
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/sessions/{id}/values/{field} [put]
func (h *FormHandler) SetValue(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "setValue")
	}

	var input SetValueInput
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "setValue")
	}

	if err := s.SetValue(c.Params("field"), input.Value); err != nil {
		return formError(c, err, "setValue")
	}
	return c.Status(fiber.StatusOK).JSON(s.Snapshot())
}

// GetOptions handles GET /api/form/sessions/:id/options/:field
// @Summary Options of a select field
// @Description Dependent selects follow the current parent value. q ranks searchable options by fuzzy match.
// @Tags Form
// @Produce json
// @Param id path string true "Session id"
// @Param field path string true "Field key"
// @Param q query string false "Search text"
// @Success 200 {array} basetypes.Option
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/sessions/{id}/options/{field} [get]
func (h *FormHandler) GetOptions(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "getOptions")
	}

	options, err := s.SearchOptions(c.Params("field"), c.Query("q"))
	if err != nil {
		return formError(c, err, "getOptions")
	}
	return c.Status(fiber.StatusOK).JSON(options)
}

// advanced renders a session after a transition; a submitted session is 201
func advanced(c *fiber.Ctx, s *form.Session) error {
	snap := s.Snapshot()
	if snap.Submitted {
		return c.Status(fiber.StatusCreated).JSON(snap)
	}
	return c.Status(fiber.StatusOK).JSON(snap)
}

// Next handles POST /api/form/sessions/:id/next
// @Summary Validate the step and advance
// @Description On the last step the form is submitted.
// @Tags Form
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} form.Snapshot
// @Success 201 {object} form.Snapshot
// @Failure 422 {object} utils.ValidationErrorStruct
// @Security CookieAuth
// @Router /form/sessions/{id}/next [post]
func (h *FormHandler) Next(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "next")
	}
	if err := s.Next(c.UserContext()); err != nil {
		return formError(c, err, "next")
	}
	return advanced(c, s)
}

// Previous handles POST /api/form/sessions/:id/previous
// @Summary Go back one step
// @Tags Form
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} form.Snapshot
// @Security CookieAuth
// @Router /form/sessions/{id}/previous [post]
func (h *FormHandler) Previous(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "previous")
	}
	s.Previous()
	return c.Status(fiber.StatusOK).JSON(s.Snapshot())
}

// GoToStep handles POST /api/form/sessions/:id/steps/:index
// @Summary Jump to a step
// @Description Steps in between are not validated; submit validates everything.
// @Tags Form
// @Produce json
// @Param id path string true "Session id"
// @Param index path int true "Zero based step"
// @Success 200 {object} form.Snapshot
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/sessions/{id}/steps/{index} [post]
func (h *FormHandler) GoToStep(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "goToStep")
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return utils.ErrorResponse(c, "Invalid step index", fiber.StatusBadRequest, "goToStep")
	}
	if err := s.GoToStep(index); err != nil {
		return formError(c, err, "goToStep")
	}
	return c.Status(fiber.StatusOK).JSON(s.Snapshot())
}

// Submit handles POST /api/form/sessions/:id/submit
// @Summary Submit the form
// @Description Validates every step, stores the record and its creation audit entry.
// @Tags Form
// @Produce json
// @Param id path string true "Session id"
// @Success 201 {object} form.Snapshot
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ValidationErrorStruct
// @Security CookieAuth
// @Router /form/sessions/{id}/submit [post]
func (h *FormHandler) Submit(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "submit")
	}
	if err := s.Submit(c.UserContext()); err != nil {
		return formError(c, err, "submit")
	}
	return advanced(c, s)
}

// SaveDraft handles POST /api/form/sessions/:id/draft
// @Summary Save the values as the caller's draft
// @Description Overwrites the previous draft. A version in the body must match the stored draft.
// @Tags Form
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param body body SaveDraftInput false "Expected draft version"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/sessions/{id}/draft [post]
func (h *FormHandler) SaveDraft(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return formError(c, err, "saveDraft")
	}

	var input SaveDraftInput
	if body := c.Body(); len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "saveDraft")
		}
	}

	var expected *uint64
	if input.Version != nil {
		v := input.Version.Uint64()
		expected = &v
	}

	version, err := s.SaveDraft(c.UserContext(), expected)
	if err != nil {
		return formError(c, err, "saveDraft")
	}
	return utils.MutationSuccessResponse(c, version)
}

// GetDraft handles GET /api/form/draft
// @Summary The caller's draft
// @Tags Form
// @Produce json
// @Success 200 {object} Draft
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /form/draft [get]
func (h *FormHandler) GetDraft(c *fiber.Ctx) error {
	drafts := h.Registry.Engine().Drafts
	if drafts == nil {
		return formError(c, form.ErrNoDraftStore, "getDraft")
	}

	values, version, err := drafts.Load(c.UserContext(), middleware.ActorName(c))
	if err != nil {
		return formError(c, err, "getDraft")
	}
	return c.Status(fiber.StatusOK).JSON(Draft{Values: values, Version: version})
}
