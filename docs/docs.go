// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Dependency check",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/schemas/{kind}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Field set, statuses and defaults of a record kind",
                "parameters": [{"$ref": "#/parameters/kind"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown kind", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/records/{kind}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Query a collection",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"},
                    {"type": "string", "enum": ["asc", "desc"], "name": "order", "in": "query"},
                    {"type": "integer", "default": 10, "maximum": 500, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"},
                    {"type": "string", "name": "lang", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RecordList"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Create a record",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "fields", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Record"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/records/{kind}/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get a record",
                "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Record"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Edit a record",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"$ref": "#/parameters/id"},
                    {"type": "string", "description": "updated_at last seen (RFC 3339)", "name": "If-Match", "in": "header"},
                    {"name": "fields", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Record"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/Error"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "summary": "Delete a record",
                "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/records/{kind}/export": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "summary": "Download the current view as XLSX",
                "parameters": [{"$ref": "#/parameters/kind"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/records/{kind}/exports": {
            "post": {
                "produces": ["application/json"],
                "summary": "Publish the current view to object storage",
                "parameters": [{"$ref": "#/parameters/kind"}],
                "responses": {
                    "201": {"description": "Created"},
                    "503": {"description": "Object storage not configured", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/search": {
            "get": {
                "produces": ["application/json"],
                "summary": "Global search over requirements, orders and supplier results",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "X-Search-Session", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Superseded by a newer search", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/sheets/{sheetID}/cache": {
            "delete": {
                "produces": ["application/json"],
                "summary": "Drop the cached rows of a sheet",
                "parameters": [{"type": "string", "name": "sheetID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/imports/sheets": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Import spreadsheet rows as records",
                "responses": {
                    "200": {"description": "OK"},
                    "502": {"description": "Spreadsheet service failed", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/preferences/language": {
            "get": {
                "produces": ["application/json"],
                "summary": "Display language of the caller",
                "parameters": [{"type": "string", "name": "X-User-ID", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Store the display language of the caller",
                "parameters": [{"type": "string", "name": "X-User-ID", "in": "header", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Unsupported language", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "summary": "Forget the display language of the caller",
                "parameters": [{"type": "string", "name": "X-User-ID", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "summary": "Counts per kind and status, average order progress",
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "parameters": {
        "kind": {"type": "string", "enum": ["clients", "requirements", "orders", "search-results"], "name": "kind", "in": "path", "required": true},
        "id": {"type": "string", "name": "id", "in": "path", "required": true}
    },
    "definitions": {
        "Record": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "status": {"type": "string"},
                "fields": {"type": "object"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "RecordList": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/Record"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "locale": {"type": "string"}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "fields": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pharmadash API",
	Description:      "Pharmaceutical sourcing dashboard: clients, requirements, purchase orders and supplier search results.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
