// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
            "get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"],
                "responses": {"200": {"description": "Healthy"}, "503": {"description": "A dependency is down"}}}
        },
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Register a new user", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}],
                "responses": {"201": {"description": "User created"}, "400": {"description": "Invalid input"}, "409": {"description": "Username or email already exists"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Login user", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
                "responses": {"200": {"description": "Logged in"}, "401": {"description": "Invalid credentials"}}}
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Logout user", "produces": ["application/json"],
                "responses": {"200": {"description": "Logged out"}}}
        },
        "/auth/check": {
            "get": {"tags": ["auth"], "summary": "Check session", "produces": ["application/json"],
                "responses": {"200": {"description": "Session state"}}}
        },
        "/watchlist": {
            "get": {"security": [{"SessionCookie": []}], "tags": ["watchlist"], "summary": "Get watchlist", "produces": ["application/json"],
                "responses": {"200": {"description": "Watchlist"}, "401": {"description": "Login required"}}}
        },
        "/watchlist/add": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["watchlist"], "summary": "Add to watchlist", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.AddWatchRequest"}}],
                "responses": {"201": {"description": "Added"}, "400": {"description": "Invalid input"}, "409": {"description": "Already in watchlist"}}}
        },
        "/watchlist/remove": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["watchlist"], "summary": "Remove from watchlist", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.RemoveWatchRequest"}}],
                "responses": {"200": {"description": "Removed"}, "404": {"description": "Not in watchlist"}}}
        },
        "/watchlist/reorder": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["watchlist"], "summary": "Reorder watchlist", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.ReorderWatchRequest"}}],
                "responses": {"200": {"description": "Reordered"}, "404": {"description": "Symbol not in watchlist"}}}
        },
        "/portfolio": {
            "get": {"security": [{"SessionCookie": []}], "tags": ["portfolio"], "summary": "Get portfolio", "produces": ["application/json"],
                "responses": {"200": {"description": "Positions"}, "401": {"description": "Login required"}}}
        },
        "/portfolio/add": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["portfolio"], "summary": "Add to portfolio", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.AddHoldingRequest"}}],
                "responses": {"201": {"description": "Added, with holding_id"}, "400": {"description": "Invalid input"}}}
        },
        "/portfolio/update": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["portfolio"], "summary": "Update holding", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateHoldingRequest"}}],
                "responses": {"200": {"description": "Updated"}, "403": {"description": "Not the caller's position"}, "404": {"description": "Holding not found"}}}
        },
        "/portfolio/remove": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["portfolio"], "summary": "Remove holding", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.RemoveHoldingRequest"}}],
                "responses": {"200": {"description": "Removed"}, "403": {"description": "Not the caller's position"}, "404": {"description": "Holding not found"}}}
        },
        "/portfolio/summary": {
            "get": {"security": [{"SessionCookie": []}], "tags": ["portfolio"], "summary": "Portfolio summary", "produces": ["application/json"],
                "responses": {"200": {"description": "Totals"}, "401": {"description": "Login required"}}}
        },
        "/quote": {
            "get": {"security": [{"SessionCookie": []}], "tags": ["market"], "summary": "Get quote", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Ticker symbol", "name": "symbol", "in": "query", "required": true}],
                "responses": {"200": {"description": "Quote"}, "404": {"description": "Unknown symbol"}, "502": {"description": "Price source unavailable"}, "504": {"description": "Price source timed out"}}}
        },
        "/search": {
            "get": {"security": [{"SessionCookie": []}], "tags": ["market"], "summary": "Search symbols", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Company name or symbol", "name": "q", "in": "query", "required": true},
                    {"type": "string", "description": "Exchange suffix filter", "name": "exchange", "in": "query"}
                ],
                "responses": {"200": {"description": "Matching listings"}, "400": {"description": "Missing query"}, "502": {"description": "Search source unavailable"}, "504": {"description": "Search source timed out"}}}
        },
        "/announcements": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["market"], "summary": "Corporate announcements", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "schema": {"$ref": "#/definitions/handlers.AnnouncementsRequest"}}],
                "responses": {"200": {"description": "Recent BSE/NSE filings, newest first"}, "400": {"description": "Invalid symbol"}, "401": {"description": "Login required"}, "504": {"description": "Exchanges timed out"}}}
        },
        "/prices/bulk": {
            "post": {"security": [{"SessionCookie": []}], "tags": ["market"], "summary": "Bulk prices", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.BulkPricesRequest"}}],
                "responses": {"200": {"description": "Quotes and per-symbol errors"}}}
        },
        "/admin/users": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["admin"], "summary": "List users", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "Users"}, "401": {"description": "Invalid API key"}, "503": {"description": "Admin not configured"}}}
        },
        "/admin/audit": {
            "get": {"security": [{"ApiKeyAuth": []}], "tags": ["admin"], "summary": "Audit log", "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "user_id", "in": "query"},
                    {"type": "string", "description": "Action, e.g. LOGIN or BUY", "name": "action", "in": "query"},
                    {"type": "integer", "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {"200": {"description": "Audit entries"}, "400": {"description": "Invalid filter"}, "401": {"description": "Invalid API key"}}}
        }
    },
    "definitions": {
        "handlers.RegisterRequest": {"type": "object", "required": ["username", "email", "password"],
            "properties": {"username": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string", "minLength": 6, "maxLength": 72}}},
        "handlers.LoginRequest": {"type": "object", "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}},
        "handlers.AddWatchRequest": {"type": "object", "required": ["symbol"],
            "properties": {"symbol": {"type": "string"}, "name": {"type": "string"}}},
        "handlers.RemoveWatchRequest": {"type": "object", "required": ["symbol"],
            "properties": {"symbol": {"type": "string"}}},
        "handlers.ReorderWatchRequest": {"type": "object", "required": ["symbols"],
            "properties": {"symbols": {"type": "array", "items": {"type": "string"}}}},
        "handlers.AddHoldingRequest": {"type": "object", "required": ["symbol", "quantity", "buy_price"],
            "properties": {"symbol": {"type": "string"}, "name": {"type": "string"}, "quantity": {"type": "number"}, "buy_price": {"type": "number"}, "buy_date": {"type": "string", "format": "date"}}},
        "handlers.UpdateHoldingRequest": {"type": "object", "required": ["holding_id"],
            "properties": {"holding_id": {"type": "integer"}, "quantity": {"type": "number"}, "buy_price": {"type": "number"}}},
        "handlers.RemoveHoldingRequest": {"type": "object", "required": ["holding_id"],
            "properties": {"holding_id": {"type": "integer"}}},
        "handlers.BulkPricesRequest": {"type": "object", "required": ["symbols"],
            "properties": {"symbols": {"type": "array", "items": {"type": "string"}}}},
        "handlers.AnnouncementsRequest": {"type": "object",
            "properties": {"symbols": {"type": "array", "maxItems": 50, "items": {"type": "string"}}}}
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"},
        "SessionCookie": {"type": "apiKey", "name": "Cookie", "in": "header", "description": "session=<token> cookie set by /auth/login"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Stock Tracker API",
	Description:      "Personal stock tracker: accounts, watchlists and portfolios valued at live prices.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
