// Package docs serves the OpenAPI description of the eventful API.
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
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List upcoming events",
                "parameters": [
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Create an event",
                "parameters": [
                    {"type": "string", "name": "name", "in": "formData", "required": true},
                    {"type": "string", "name": "description", "in": "formData"},
                    {"type": "array", "items": {"type": "string"}, "name": "category", "in": "formData", "required": true},
                    {"type": "string", "name": "location", "in": "formData", "required": true},
                    {"type": "string", "name": "eventStartDate", "in": "formData", "required": true},
                    {"type": "string", "name": "eventEndDate", "in": "formData"},
                    {"type": "string", "name": "lastDateToJoin", "in": "formData", "required": true},
                    {"type": "integer", "name": "maximumParticipants", "in": "formData", "required": true},
                    {"type": "file", "name": "imgPoster", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/events/search": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Search events by name or description",
                "parameters": [
                    {"type": "string", "name": "q", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/events/getEventsByCategory": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Upcoming events grouped by category",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/events/hosted/{hostId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List events hosted by a user",
                "parameters": [
                    {"type": "string", "name": "hostId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/events/host/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get an event as its host",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get an event",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            },
            "put": {
                "consumes": ["multipart/form-data", "application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Update an event",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Delete an event",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/events/join/{id}": {
            "put": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Join an event",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/events/leave/{id}": {
            "put": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Leave an event",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/users/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create an account",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.SignupInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/users/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Log in and receive the session cookie",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/users/logout": {
            "post": {
                "tags": ["users"],
                "summary": "Clear the session cookie",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/users/profile/{username}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Public profile",
                "parameters": [
                    {"type": "string", "name": "username", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/users/update-user-profile": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Update bio, interests or name",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        },
        "/users/profile-picture": {
            "put": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Replace the profile picture",
                "parameters": [
                    {"type": "file", "name": "image", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.ApiResponse"}}
                }
            }
        }
    },
    "definitions": {
        "helpers.ApiResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"type": "string"},
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "services.SignupInput": {
            "type": "object",
            "properties": {
                "fullname": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Eventful API",
	Description:      "Create, discover and join events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
