// Package handler contains the HTTP handlers of the API server.
package handler

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"coursecraft/internal/delivery/api/response"
	"coursecraft/internal/usecase"
)

// HealthCheck reports that the server is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}

// bind decodes the request into req and validates it. Binding failures are
// answered directly; validation failures return a ValidationError.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	return c.Validate(req)
}

type mediaRequest struct {
	URL string `json:"url" form:"url"`
}

// readMedia reads a multipart "file" part, or else a pasted "url". Neither
// yields an empty Media, which clears the target. The returned func closes
// the upload and must be called once the use case is done with it.
func readMedia(c echo.Context) (usecase.Media, func(), error) {
	noop := func() {}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		switch {
		case err == nil:
			return openUpload(fh)
		case errors.Is(err, http.ErrMissingFile):
			return usecase.Media{URL: strings.TrimSpace(c.FormValue("url"))}, noop, nil
		default:
			return usecase.Media{}, noop, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart body")
		}
	}

	var req mediaRequest
	if err := c.Bind(&req); err != nil {
		return usecase.Media{}, noop, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	return usecase.Media{URL: strings.TrimSpace(req.URL)}, noop, nil
}

func openUpload(fh *multipart.FileHeader) (usecase.Media, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return usecase.Media{}, func() {}, errors.Wrap(err, "open upload")
	}

	return usecase.Media{Upload: &usecase.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        f,
	}}, func() { _ = f.Close() }, nil
}
