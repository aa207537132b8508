package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"pharmadash/internal/export"
	"pharmadash/internal/form"
	"pharmadash/internal/model"
	"pharmadash/internal/prefs"
	"pharmadash/internal/query"
	"pharmadash/internal/service"
)

// HeaderUserID identifies the caller for preference lookups. There is no authentication.
const HeaderUserID = "X-User-ID"

// listResponse is the body of a record listing.
type listResponse struct {
	Data   []model.Record `json:"data"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Locale string         `json:"locale"`
}

type schemaResponse struct {
	*model.Schema
	Defaults map[string]any `json:"defaults"`
}

func kindParam(c *fiber.Ctx) (model.Kind, *model.Schema, error) {
	kind, err := model.ParseKind(c.Params("kind"))
	if err != nil {
		return "", nil, err
	}
	return kind, model.MustSchema(kind), nil
}

// resolveLocale threads the request locale: explicit lang, stored preference,
// Accept-Language, default.
func resolveLocale(c *fiber.Ctx, p *prefs.Store, explicit language.Tag) language.Tag {
	if p == nil {
		if explicit != language.Und {
			return explicit
		}
		return language.English
	}
	return p.Resolve(c.UserContext(), explicit, c.Get(HeaderUserID), c.Get(fiber.HeaderAcceptLanguage))
}

// viewQuery parses the query string of a listing and resolves its locale.
func viewQuery(c *fiber.Ctx, schema *model.Schema, p *prefs.Store) (query.Query, error) {
	q, err := query.ParseParams(c.Queries(), schema)
	if err != nil {
		return query.Query{}, err
	}
	q.Locale = resolveLocale(c, p, q.Locale)
	return q, nil
}

func decodeBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	return c.App().Config().JSONDecoder(c.Body(), out)
}

func setVersion(c *fiber.Ctx, rec *model.Record) {
	c.Set(fiber.HeaderETag, `"`+rec.UpdatedAt.UTC().Format(time.RFC3339Nano)+`"`)
}

// fill copies the known fields of body into the form. Metadata such as id is ignored.
func fill(ctl *form.Controller, schema *model.Schema, body map[string]any) error {
	for name, v := range body {
		if _, ok := schema.Field(name); !ok && name != "status" {
			continue
		}
		if err := ctl.SetField(name, v); err != nil {
			return err
		}
	}
	return nil
}

// GetSchema describes the fields, statuses and defaults of a kind for building forms.
func GetSchema() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, schema, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(schemaResponse{Schema: schema, Defaults: schema.Defaults()})
	}
}

// ListSchemas returns every kind's schema in display order.
func ListSchemas() fiber.Handler {
	return func(c *fiber.Ctx) error {
		out := make([]schemaResponse, 0, len(model.Kinds()))
		for _, kind := range model.Kinds() {
			schema := model.MustSchema(kind)
			out = append(out, schemaResponse{Schema: schema, Defaults: schema.Defaults()})
		}
		return c.JSON(out)
	}
}

// ListRecords runs the query pipeline (search, filters, sort, page) over one kind.
func ListRecords(svc service.RecordService, p *prefs.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, schema, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		q, err := viewQuery(c, schema, p)
		if err != nil {
			return writeServiceError(c, err)
		}

		res, err := svc.Query(c.UserContext(), kind, q)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentLanguage, q.Locale.String())
		return c.JSON(listResponse{
			Data:   res.Items,
			Total:  res.Total,
			Limit:  q.Page.Limit,
			Offset: q.Page.Offset,
			Locale: q.Locale.String(),
		})
	}
}

// GetRecord returns one record. The ETag carries its updated_at for If-Match.
func GetRecord(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, _, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		rec, err := svc.Get(c.UserContext(), kind, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		setVersion(c, rec)
		return c.JSON(rec)
	}
}

// CreateRecord opens a creation form, fills it from the JSON body and submits it.
func CreateRecord(store service.AsyncStore, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, schema, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		var body map[string]any
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}

		ctl, err := form.New(kind, store, logger)
		if err != nil {
			return writeServiceError(c, err)
		}
		if err := ctl.Open(nil); err != nil {
			return writeServiceError(c, err)
		}
		if err := fill(ctl, schema, body); err != nil {
			return writeServiceError(c, err)
		}

		rec, err := ctl.Submit(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		setVersion(c, rec)
		c.Location("/records/" + string(kind) + "/" + rec.ID)
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// UpdateRecord opens an edit form on the stored record and submits the changed fields.
// If-Match, when present, must equal the updated_at the client last saw.
func UpdateRecord(svc service.RecordService, store service.AsyncStore, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, schema, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		var body map[string]any
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}

		rec, err := svc.Get(c.UserContext(), kind, c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}

		ctl, err := form.New(kind, store, logger)
		if err != nil {
			return writeServiceError(c, err)
		}
		if err := ctl.Open(rec); err != nil {
			return writeServiceError(c, err)
		}
		if v := c.Get(fiber.HeaderIfMatch); v != "" {
			at, err := time.Parse(time.RFC3339Nano, strings.Trim(v, `"`))
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_IF_MATCH", "If-Match must be an RFC 3339 timestamp")
			}
			ctl.ExpectVersion(at)
		}
		if err := fill(ctl, schema, body); err != nil {
			return writeServiceError(c, err)
		}

		saved, err := ctl.Submit(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		setVersion(c, saved)
		return c.JSON(saved)
	}
}

// DeleteRecord removes a record and waits for the store to confirm.
func DeleteRecord(store service.AsyncStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, _, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		ctx := c.UserContext()
		id := utils.CopyString(c.Params("id"))
		if _, err := store.DeleteAsync(ctx, kind, id).Await(ctx); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetSelection returns the record shown in the detail pane of a kind.
func GetSelection(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, _, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		rec, err := svc.Selection(c.UserContext(), kind)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// PutSelection selects the record named by {"id": ...}.
func PutSelection(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, _, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		var body struct {
			ID string `json:"id"`
		}
		if err := decodeBody(c, &body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON object")
		}
		rec, err := svc.Select(c.UserContext(), kind, body.ID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

func ClearSelection(svc service.RecordService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, _, err := kindParam(c)
		if err != nil {
			return writeServiceError(c, err)
		}
		svc.ClearSelection(kind)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// exportView renders the unpaged query view of a kind as a workbook.
func exportView(c *fiber.Ctx, svc service.RecordService, p *prefs.Store) (model.Kind, []byte, error) {
	kind, schema, err := kindParam(c)
	if err != nil {
		return "", nil, err
	}
	q, err := viewQuery(c, schema, p)
	if err != nil {
		return "", nil, err
	}
	q.Page = query.Page{}

	res, err := svc.Query(c.UserContext(), kind, q)
	if err != nil {
		return "", nil, err
	}
	data, err := export.XLSX(res.Items, schema)
	if err != nil {
		return "", nil, err
	}
	return kind, data, nil
}

// ExportRecords downloads the current view (search, filters, sort; no paging) as XLSX.
func ExportRecords(svc service.RecordService, p *prefs.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, data, err := exportView(c, svc, p)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(fmt.Sprintf("%s-%s.xlsx", kind, time.Now().UTC().Format("20060102")))
		c.Set(fiber.HeaderContentType, export.ContentType)
		return c.Send(data)
	}
}

// PublishExport uploads the current view to object storage and returns a presigned link.
// A nil publisher means object storage is not configured.
func PublishExport(svc service.RecordService, p *prefs.Store, pub *export.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if pub == nil {
			return writeError(c, fiber.StatusServiceUnavailable, "EXPORTS_DISABLED", "object storage is not configured")
		}
		kind, data, err := exportView(c, svc, p)
		if err != nil {
			return writeServiceError(c, err)
		}
		out, err := pub.Publish(c.UserContext(), kind, data)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}
