// Swagger document for the API. Maintained by hand, not generated: it mirrors
// the swag annotations on the handlers and must be kept in step with them
// when a route changes. Running swag init replaces it with the generated
// equivalent.

package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    },
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Health check", "security": [{"ApiKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/logs/decode": {
            "post": {"tags": ["logs"], "summary": "Decode a telemetry log",
                "consumes": ["application/octet-stream"], "produces": ["application/json", "application/cbor"],
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "string", "format": "binary"}},
                    {"in": "header", "name": "Content-Encoding", "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}, "413": {"description": "Too large"},
                    "415": {"description": "Unsupported encoding"}, "422": {"description": "Malformed log"}}}
        },
        "/logs/summary": {
            "post": {"tags": ["logs"], "summary": "Summarize a telemetry log",
                "consumes": ["application/octet-stream"], "produces": ["application/json", "application/cbor"],
                "security": [{"ApiKeyAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "string", "format": "binary"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Malformed log"}}}
        },
        "/oxconfig": {
            "get": {"tags": ["config"], "summary": "Config gate status", "security": [{"ApiKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["config"], "summary": "Write the deployed config", "security": [{"ApiKeyAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true,
                    "schema": {"type": "object", "properties": {"deploy_dir": {"type": "string"}, "data": {"type": "string"}, "timestamp": {"type": "integer"}}}}],
                "responses": {"200": {"description": "Outcome: success, time, no-exist or failed"}, "400": {"description": "Invalid JSON"},
                    "403": {"description": "Origin not allowed or deploy_dir outside the deploy directory"}}}
        },
        "/oxconfig/raw": {
            "post": {"tags": ["config"], "summary": "Write the deployed config from a stamped payload",
                "consumes": ["text/plain"], "security": [{"ApiKeyAuth": []}],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"type": "string"}},
                    {"in": "query", "name": "deploy_dir", "type": "string", "description": "Deploy directory or a subdirectory of it"}],
                "responses": {"200": {"description": "Outcome: success, time, no-exist or failed"}, "400": {"description": "Malformed payload"},
                    "403": {"description": "Origin not allowed or deploy_dir outside the deploy directory"}}}
        },
        "/store": {
            "get": {"tags": ["store"], "summary": "List stored blobs", "security": [{"ApiKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/store/{name}": {
            "get": {"tags": ["store"], "summary": "Load a named blob", "security": [{"ApiKeyAuth": []}],
                "parameters": [{"in": "path", "name": "name", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["store"], "summary": "Save a named blob", "security": [{"ApiKeyAuth": []}],
                "parameters": [{"in": "path", "name": "name", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"type": "string", "format": "binary"}}],
                "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["store"], "summary": "Delete a named blob", "security": [{"ApiKeyAuth": []}],
                "parameters": [{"in": "path", "name": "name", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/events": {
            "get": {"tags": ["events"], "summary": "Stream host events", "produces": ["text/event-stream"],
                "security": [{"ApiKeyAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/events/{name}": {
            "post": {"tags": ["events"], "summary": "Emit a host event", "security": [{"ApiKeyAuth": []}],
                "parameters": [{"in": "path", "name": "name", "required": true, "type": "string",
                    "enum": ["connect", "open_log", "import_config", "export_config"]}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Unknown event"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:5810",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "oxdash REST API",
	Description:      "Telemetry log decoding and robot config deployment for the oxdash dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
