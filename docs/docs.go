// Package docs holds the OpenAPI description of the notification hub API
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
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Draft session token: Bearer <token>"
        }
    },
    "paths": {
        "/api/v1/health": {
            "get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "Service is healthy"}}}
        },
        "/api/v1/sessions": {
            "post": {"tags": ["Sessions"], "summary": "Open Draft Session", "responses": {"201": {"description": "Draft session opened successfully"}}}
        },
        "/api/v1/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List Notifications",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "orderby", "in": "query", "enum": ["newest", "oldest"]},
                    {"type": "string", "name": "title", "in": "query"},
                    {"type": "string", "name": "type", "in": "query", "enum": ["standard", "golden"]},
                    {"type": "string", "name": "selection_method", "in": "query", "enum": ["feed", "manual", "query"]},
                    {"type": "string", "name": "status", "in": "query", "enum": ["active", "inactive"]},
                    {"type": "string", "format": "date-time", "name": "created_after", "in": "query"},
                    {"type": "string", "format": "date-time", "name": "created_before", "in": "query"}
                ],
                "responses": {"200": {"description": "Notifications retrieved successfully"}, "400": {"description": "Validation error"}}
            },
            "post": {
                "tags": ["Notifications"],
                "summary": "Create Notification",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.NotificationDraftDTO"}}],
                "responses": {"201": {"description": "Notification created successfully!"}, "400": {"description": "Validation error"}, "422": {"description": "Title and description are required"}}
            }
        },
        "/api/v1/notifications/export": {
            "get": {"tags": ["Notifications"], "summary": "Export Notifications", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "xlsx workbook"}}}
        },
        "/api/v1/notifications/audience/options": {
            "get": {"tags": ["Audience"], "summary": "List Audience Options", "responses": {"200": {"description": "Audience options retrieved successfully"}}}
        },
        "/api/v1/notifications/audience/estimate": {
            "post": {
                "tags": ["Audience"],
                "summary": "Estimate Audience",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AudienceDTO"}}],
                "responses": {"200": {"description": "Estimated audience"}, "400": {"description": "Empty or invalid query"}, "422": {"description": "Estimation not supported"}}
            }
        },
        "/api/v1/notifications/{uuid}": {
            "get": {"tags": ["Notifications"], "summary": "Get Notification", "parameters": [{"type": "string", "name": "uuid", "in": "path", "required": true}], "responses": {"200": {"description": "Notification retrieved successfully"}, "404": {"description": "Notification not found"}}}
        },
        "/api/v1/notifications/{uuid}/clone": {
            "post": {"tags": ["Drafts"], "summary": "Clone Notification", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "uuid", "in": "path", "required": true}], "responses": {"200": {"description": "Notification cloned"}, "404": {"description": "Notification not found"}}}
        },
        "/api/v1/draft": {
            "get": {"tags": ["Drafts"], "summary": "Get Draft", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Draft retrieved successfully"}}},
            "patch": {"tags": ["Drafts"], "summary": "Update Draft", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Draft updated successfully"}}},
            "delete": {"tags": ["Drafts"], "summary": "Reset Draft", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Draft reset successfully"}}}
        },
        "/api/v1/draft/audience": {
            "patch": {"tags": ["Drafts"], "summary": "Update Draft Audience", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Audience updated successfully"}}}
        },
        "/api/v1/draft/audience/user-ids": {
            "put": {"tags": ["Drafts"], "summary": "Set Manual User IDs", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "User IDs updated successfully"}}}
        },
        "/api/v1/draft/audience/user-types/{type}": {
            "put": {"tags": ["Drafts"], "summary": "Set User Type", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "type", "in": "path", "required": true, "enum": ["owner", "independent-agent", "medium-broker", "big-broker"]}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object", "required": ["checked"], "properties": {"checked": {"type": "boolean"}}}}], "responses": {"200": {"description": "User type updated successfully"}, "400": {"description": "Validation error"}}}
        },
        "/api/v1/draft/audience/classifications/{classification}": {
            "put": {"tags": ["Drafts"], "summary": "Set User Classification", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "classification", "in": "path", "required": true, "enum": ["standard", "premium", "vip"]}, {"name": "request", "in": "body", "required": true, "schema": {"type": "object", "required": ["checked"], "properties": {"checked": {"type": "boolean"}}}}], "responses": {"200": {"description": "User classification updated successfully"}, "400": {"description": "Validation error"}}}
        },
        "/api/v1/draft/filters": {
            "delete": {"tags": ["Drafts"], "summary": "Clear Filters", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Filters cleared successfully"}}}
        },
        "/api/v1/draft/filters/inventory": {
            "patch": {"tags": ["Drafts"], "summary": "Update Inventory Filter", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Inventory filter updated successfully"}}}
        },
        "/api/v1/draft/filters/leads": {
            "patch": {"tags": ["Drafts"], "summary": "Update Leads Filter", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Leads filter updated successfully"}}}
        },
        "/api/v1/draft/filters/zones/{zone}/toggle": {
            "post": {"tags": ["Drafts"], "summary": "Toggle Zone", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "zone", "in": "path", "required": true}], "responses": {"200": {"description": "Zone toggled successfully"}, "400": {"description": "Unknown zone"}}}
        },
        "/api/v1/draft/preview": {
            "get": {"tags": ["Drafts"], "summary": "Preview Draft", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Preview generated successfully"}}}
        },
        "/api/v1/draft/estimate": {
            "get": {"tags": ["Drafts"], "summary": "Get Draft Estimate", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Current estimate"}}},
            "post": {"tags": ["Drafts"], "summary": "Estimate Draft Audience", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Estimated audience"}, "202": {"description": "Estimating audience..."}, "400": {"description": "Empty or invalid query"}}}
        },
        "/api/v1/draft/submit": {
            "post": {"tags": ["Drafts"], "summary": "Submit Draft", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Notification created successfully!"}, "422": {"description": "Title and description are required"}}}
        }
    },
    "definitions": {
        "dto.AudienceDTO": {
            "type": "object",
            "required": ["selection_method"],
            "properties": {
                "selection_method": {"type": "string", "enum": ["feed", "manual", "query"]},
                "user_types": {"type": "array", "items": {"type": "string", "enum": ["owner", "independent-agent", "medium-broker", "big-broker"]}},
                "user_classifications": {"type": "array", "items": {"type": "string", "enum": ["standard", "premium", "vip"]}},
                "user_ids": {"type": "array", "items": {"type": "string"}},
                "user_query": {"type": "string"}
            }
        },
        "dto.FiltersDTO": {
            "type": "object",
            "properties": {
                "inventory": {"type": "object", "properties": {"active": {"type": "boolean"}, "quantity": {"type": "integer", "minimum": 1, "maximum": 100}}},
                "leads": {"type": "object", "properties": {"quantity": {"type": "integer", "minimum": 1, "maximum": 100}, "age_in_days": {"type": "integer", "minimum": 1, "maximum": 365}}},
                "zones": {"type": "array", "items": {"type": "string", "enum": ["north", "south", "east", "west", "central"]}}
            }
        },
        "dto.NotificationDraftDTO": {
            "type": "object",
            "required": ["type"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "cta_text": {"type": "string"},
                "cta_link": {"type": "string"},
                "type": {"type": "string", "enum": ["standard", "golden"]},
                "audience": {"$ref": "#/definitions/dto.AudienceDTO"},
                "filters": {"$ref": "#/definitions/dto.FiltersDTO"}
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
	Title:            "Notification Hub API",
	Description:      "Compose, preview, estimate and commit targeted notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
