// Package docs holds the swagger description served under /docs.
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
        "/health/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Service liveness.",
                "responses": {"200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithMessage"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness.",
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithMessage"}},
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/_ResponseWithMessage"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "security": [{"AccessToken": []}],
                "produces": ["application/json"],
                "tags": ["Notifications"],
                "summary": "List own notifications.",
                "parameters": [
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"},
                    {"type": "boolean", "name": "include_dismissed", "in": "query"}
                ],
                "responses": {"200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithMetaAndData"}}}
            }
        },
        "/notifications/dismiss-all": {
            "post": {
                "security": [{"AccessToken": []}],
                "produces": ["application/json"],
                "tags": ["Notifications"],
                "summary": "Dismiss every active notification.",
                "responses": {"200": {"description": "Number of dismissed notifications", "schema": {"$ref": "#/definitions/_ResponseWithData"}}}
            }
        },
        "/notifications/{id}/dismiss": {
            "post": {
                "security": [{"AccessToken": []}],
                "produces": ["application/json"],
                "tags": ["Notifications"],
                "summary": "Dismiss a notification.",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithData"}},
                    "404": {"description": "Notification not found", "schema": {"$ref": "#/definitions/_ResponseWithMessage"}}
                }
            }
        },
        "/projects": {
            "post": {
                "security": [{"AccessToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Create a project.",
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProjectCreateRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/_ResponseWithData"}}}
            }
        },
        "/projects/{project_id}/activity": {
            "get": {
                "security": [{"AccessToken": []}],
                "produces": ["application/json"],
                "tags": ["Projects"],
                "summary": "Project activity feed.",
                "parameters": [
                    {"type": "string", "name": "project_id", "in": "path", "required": true},
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"},
                    {"type": "string", "name": "before", "in": "query"}
                ],
                "responses": {"200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithData"}}}
            }
        },
        "/projects/{project_id}/todos": {
            "post": {
                "security": [{"AccessToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Todos"],
                "summary": "Create a todo.",
                "parameters": [
                    {"type": "string", "name": "project_id", "in": "path", "required": true},
                    {"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TodoTextRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/_ResponseWithData"}}}
            }
        },
        "/projects/{project_id}/todos/search": {
            "get": {
                "security": [{"AccessToken": []}],
                "produces": ["application/json"],
                "tags": ["Search"],
                "summary": "Full-text search over the todos of a project.",
                "parameters": [
                    {"type": "string", "name": "project_id", "in": "path", "required": true},
                    {"type": "string", "name": "q", "in": "query", "required": true},
                    {"type": "integer", "default": 20, "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithData"}}}
            }
        },
        "/todos/{todo_id}": {
            "patch": {
                "security": [{"AccessToken": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Todos"],
                "summary": "Change the text of a todo.",
                "parameters": [
                    {"type": "string", "name": "todo_id", "in": "path", "required": true},
                    {"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TodoTextRequest"}}
                ],
                "responses": {"200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithData"}}}
            },
            "delete": {
                "security": [{"AccessToken": []}],
                "produces": ["application/json"],
                "tags": ["Todos"],
                "summary": "Delete a todo.",
                "parameters": [{"type": "string", "name": "todo_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Deleted", "schema": {"$ref": "#/definitions/_ResponseWithMessage"}}}
            }
        },
        "/todos/{todo_id}/complete": {
            "post": {
                "security": [{"AccessToken": []}],
                "produces": ["application/json"],
                "tags": ["Todos"],
                "summary": "Mark a todo completed.",
                "parameters": [{"type": "string", "name": "todo_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "Success", "schema": {"$ref": "#/definitions/_ResponseWithData"}}}
            }
        },
        "/ws": {
            "get": {
                "security": [{"AccessToken": []}],
                "tags": ["Realtime"],
                "summary": "Realtime channel.",
                "responses": {"101": {"description": "Switching protocols"}}
            }
        }
    },
    "definitions": {
        "ProjectCreateRequest": {
            "type": "object",
            "required": ["workspaceId", "name"],
            "properties": {
                "workspaceId": {"type": "string", "example": "b4b03119-1290-44bc-b599-6a5e91d6611f"},
                "name": {"type": "string", "maxLength": 200, "example": "Launch"},
                "memberIds": {"type": "array", "items": {"type": "string"}}
            }
        },
        "TodoTextRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {"text": {"type": "string", "maxLength": 2000, "example": "Ship it"}}
        },
        "_ResponseWithData": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "data": {}}
        },
        "_ResponseWithMetaAndData": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "data": {}, "_metadata": {}}
        },
        "_ResponseWithMessage": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "message": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "AccessToken": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "TaskHub API",
	Description:      "Projects, todos and the notification/activity projections built from their events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
