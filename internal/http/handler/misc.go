package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"golang.org/x/text/language"

	"pharmadash/internal/model"
	"pharmadash/internal/prefs"
	"pharmadash/internal/search"
	"pharmadash/internal/service"
	"pharmadash/internal/sheets"
)

// HeaderSearchSession groups the keystrokes of one search box. Without it searches are not debounced.
const HeaderSearchSession = "X-Search-Session"

// GlobalSearch searches requirements, orders and supplier results at once.
// A newer request of the same session makes a pending one answer 409 SUPERSEDED.
func GlobalSearch(svc *search.Service, p *prefs.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		explicit := language.Und
		if v := c.Query("lang"); v != "" {
			tag, err := language.Parse(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LANG", "invalid lang")
			}
			explicit = tag
		}
		locale := resolveLocale(c, p, explicit)

		// The session outlives the request inside the debouncer, so it must not alias fasthttp's buffer.
		session := utils.CopyString(c.Get(HeaderSearchSession))
		res, err := svc.Search(c.UserContext(), session, c.Query("q"), locale)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// FetchSheet proxies the rows of a published spreadsheet.
func FetchSheet(fetcher sheets.Fetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := fetcher.Fetch(c.UserContext(), c.Params("sheetID"), c.Query("sheet"), c.Query("range"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"rows": rows, "count": len(rows)})
	}
}

// InvalidateSheet drops the cached rows of a sheet so the next fetch or import reads it again.
func InvalidateSheet(cache sheets.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := cache.Invalidate(c.UserContext(), c.Params("sheetID"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"invalidated": n})
	}
}

type importBody struct {
	Kind    string            `json:"kind"`
	SheetID string            `json:"sheet_id"`
	Sheet   string            `json:"sheet"`
	Range   string            `json:"range"`
	Columns map[string]string `json:"columns"`
}

// ImportSheet turns the rows of a sheet into records. Invalid rows are reported, not fatal.
func ImportSheet(im *sheets.Importer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body importBody
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}

		verr := model.NewValidationError()
		if body.SheetID == "" {
			verr.Add("sheet_id", "sheet_id is required")
		}
		kind, err := model.ParseKind(body.Kind)
		if err != nil {
			verr.Add("kind", "kind must be one of client, requirement, order, search_result")
		}
		if !verr.Empty() {
			return writeServiceError(c, verr)
		}

		res, err := im.Import(c.UserContext(), sheets.ImportRequest{
			Kind:      kind,
			SheetID:   body.SheetID,
			SheetName: body.Sheet,
			Range:     body.Range,
			Columns:   body.Columns,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

type languageResponse struct {
	Language  string   `json:"language"`
	Stored    bool     `json:"stored"`
	Supported []string `json:"supported"`
}

func newLanguageResponse(p *prefs.Store, tag language.Tag, stored bool) languageResponse {
	supported := make([]string, 0, len(p.Supported()))
	for _, t := range p.Supported() {
		supported = append(supported, t.String())
	}
	return languageResponse{Language: tag.String(), Stored: stored, Supported: supported}
}

// GetLanguage returns the caller's display language, or the default when none is stored.
func GetLanguage(p *prefs.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tag, err := p.Get(c.UserContext(), c.Get(HeaderUserID))
		switch {
		case errors.Is(err, prefs.ErrNotSet):
			return c.JSON(newLanguageResponse(p, p.Default(), false))
		case err != nil:
			return writeServiceError(c, err)
		}
		return c.JSON(newLanguageResponse(p, tag, true))
	}
}

// PutLanguage stores the caller's display language ({"language": "de"}).
func PutLanguage(p *prefs.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Language string `json:"language"`
		}
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}
		tag, err := p.Set(c.UserContext(), c.Get(HeaderUserID), body.Language)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newLanguageResponse(p, tag, true))
	}
}

// ClearLanguage forgets the caller's display language; later requests fall back to Accept-Language.
func ClearLanguage(p *prefs.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := p.Clear(c.UserContext(), c.Get(HeaderUserID)); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newLanguageResponse(p, p.Default(), false))
	}
}

// Dashboard summarizes every collection.
func Dashboard(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := service.Summarize(c.UserContext(), svc)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sum)
	}
}
