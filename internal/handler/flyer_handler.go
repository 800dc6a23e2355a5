package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "flyerhub/internal/errors"
	"flyerhub/internal/model"
	"flyerhub/internal/service"
)

// FlyerHandler handles company directory and flyer endpoints.
type FlyerHandler struct {
	companyService service.CompanyService
	flyerService   service.FlyerService
}

// NewFlyerHandler creates a new flyer handler.
func NewFlyerHandler(companyService service.CompanyService, flyerService service.FlyerService) *FlyerHandler {
	return &FlyerHandler{
		companyService: companyService,
		flyerService:   flyerService,
	}
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// Companies godoc
// @Summary List companies
// @Tags flyers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Company
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /flyer/companies [get]
func (h *FlyerHandler) Companies(c echo.Context) error {
	companies, err := h.companyService.List(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, companies)
}

// Upload godoc
// @Summary Upload a flyer
// @Description Stores a PNG or JPG image for a company. Admin only when a token is presented.
// @Tags flyers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Flyer title"
// @Param companyId formData int true "Company ID"
// @Param file formData file true "Image file (.png, .jpg, .jpeg)"
// @Success 201 {object} model.Flyer
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /flyer/upload [post]
func (h *FlyerHandler) Upload(c echo.Context) error {
	if p := principalFrom(c); p != nil && !p.CanUpload() {
		return forbidden()
	}

	in := service.UploadInput{Title: c.FormValue("title")}
	// An unparsable id resolves to no company.
	if id, err := strconv.ParseUint(c.FormValue("companyId"), 10, 64); err == nil {
		in.CompanyID = uint(id)
	}

	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return badRequest("invalid multipart form", "INVALID_FORM")
	default:
		src, err := fh.Open()
		if err != nil {
			return mapError(fmt.Errorf("open upload: %w", err))
		}
		defer closeFile(src)
		in.Filename = fh.Filename
		in.Size = fh.Size
		in.Content = src
	}

	flyer, err := h.flyerService.Upload(c.Request().Context(), in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, flyer)
}

func closeFile(f multipart.File) {
	_ = f.Close()
}

// ListByCompany godoc
// @Summary List a company's flyers
// @Description Newest first. year and month filter to one calendar month (UTC) and must be given together.
// @Tags flyers
// @Produce json
// @Security BearerAuth
// @Param companyId path int true "Company ID"
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {array} model.Flyer
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /flyer/company/{companyId} [get]
func (h *FlyerHandler) ListByCompany(c echo.Context) error {
	companyID, err := parseID(c.Param("companyId"))
	if err != nil {
		return badRequest("invalid company ID", "INVALID_ID")
	}
	if p := principalFrom(c); p != nil && !p.CanAccessCompany(companyID) {
		return forbidden()
	}

	year, err := optionalInt(c.QueryParam("year"))
	if err != nil {
		return mapError(apperrors.ErrInvalidPeriod)
	}
	month, err := optionalInt(c.QueryParam("month"))
	if err != nil {
		return mapError(apperrors.ErrInvalidPeriod)
	}
	period, err := service.NewPeriod(year, month)
	if err != nil {
		return mapError(err)
	}

	flyers, err := h.flyerService.ListByCompany(c.Request().Context(), companyID, period)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, flyers)
}

// Download godoc
// @Summary Download a flyer image
// @Tags flyers
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Flyer ID"
// @Success 200 {file} binary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /flyer/download/{id} [get]
func (h *FlyerHandler) Download(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid flyer ID", "INVALID_ID")
	}
	if err := h.authorizeFlyer(c, id); err != nil {
		return err
	}

	dl, err := h.flyerService.Download(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", dl.Filename))
	return c.Blob(http.StatusOK, dl.ContentType, dl.Data)
}

// Delete godoc
// @Summary Delete a flyer
// @Description Removes the image file and then the record.
// @Tags flyers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Flyer ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /flyer/{id} [delete]
func (h *FlyerHandler) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid flyer ID", "INVALID_ID")
	}
	if err := h.authorizeFlyer(c, id); err != nil {
		return err
	}

	if err := h.flyerService.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "flyer deleted"})
}

// authorizeFlyer checks the caller against the flyer's company. Anonymous
// callers pass; a missing flyer is left for the service to report.
func (h *FlyerHandler) authorizeFlyer(c echo.Context, id uint) error {
	p := principalFrom(c)
	if p == nil || p.Role == model.RoleAdmin {
		return nil
	}
	flyer, err := h.flyerService.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrFlyerNotFound) {
			return nil
		}
		return mapError(err)
	}
	if !p.CanAccessCompany(flyer.CompanyID) {
		return forbidden()
	}
	return nil
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func optionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
