// Package docs registers the OpenAPI document served at /swagger/doc.json.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/cascade/posts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cascade"],
                "summary": "Public posts, keyset paginated",
                "parameters": [
                    {"type": "string", "description": "Opaque cursor from a previous page", "name": "cursor", "in": "query"},
                    {"type": "integer", "description": "Page size (1..max)", "name": "limit", "in": "query"},
                    {"enum": ["created_at", "updated_at", "view_count"], "type": "string", "name": "sort_by", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "name": "sort_order", "in": "query"},
                    {"type": "string", "description": "Feather filter", "name": "content_type", "in": "query"},
                    {"type": "integer", "description": "Author filter", "name": "user_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.CascadePageSuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/cascade/tag/{tagID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cascade"],
                "summary": "Public posts with a tag",
                "parameters": [
                    {"type": "integer", "name": "tagID", "in": "path", "required": true},
                    {"type": "string", "name": "cursor", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.CascadePageSuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/cascade/category/{categoryID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cascade"],
                "summary": "Public posts in a category",
                "parameters": [
                    {"type": "integer", "name": "categoryID", "in": "path", "required": true},
                    {"type": "string", "name": "cursor", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.CascadePageSuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/cascade/user/{userID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cascade"],
                "summary": "Public posts by a user",
                "parameters": [
                    {"type": "integer", "name": "userID", "in": "path", "required": true},
                    {"type": "string", "name": "cursor", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.CascadePageSuccessResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in with login or email",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.CascadePage": {
            "type": "object",
            "properties": {
                "posts": {"type": "array", "items": {"$ref": "#/definitions/domain.Post"}},
                "has_more": {"type": "boolean"},
                "next_cursor": {"type": "string", "x-nullable": true},
                "total_returned": {"type": "integer"},
                "tag_id": {"type": "integer"},
                "tag_name": {"type": "string"},
                "category_id": {"type": "integer"},
                "category_name": {"type": "string"},
                "user_id": {"type": "integer"},
                "user_name": {"type": "string"}
            }
        },
        "controllers.CascadePageSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/controllers.CascadePage"}
            }
        },
        "controllers.LoginRequest": {
            "type": "object",
            "required": ["login_or_email", "password"],
            "properties": {
                "login_or_email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "domain.Post": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "clean": {"type": "string"},
                "content_type": {"type": "string"},
                "status": {"type": "string"},
                "view_count": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Chyrp API",
	Description:      "Blog backend with cascade (keyset) pagination.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
