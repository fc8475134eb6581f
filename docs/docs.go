// Package docs registers the swagger document served under /swagger.
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
        "/tournaments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "List tournaments",
                "parameters": [
                    {"type": "integer", "name": "pageNumber", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"},
                    {"type": "string", "name": "orderBy", "in": "query"},
                    {"type": "string", "name": "searchTerm", "in": "query"},
                    {"type": "boolean", "name": "includeGames", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "headers": {"X-Metadata": {"type": "string", "description": "Pagination metadata (JSON)"}},
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/services.TournamentDTO"}}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Create a tournament, optionally with games",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.TournamentCreateDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.TournamentDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/tournaments/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Get a tournament",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "name": "includeGames", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.TournamentDTO"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Replace a tournament",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.TournamentEditDTO"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Apply a JSON Patch document to a tournament",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/patch.Operation"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.TournamentDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tournaments"],
                "summary": "Delete a tournament and its games",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/tournaments/{id}/logo": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["tournaments"],
                "summary": "Upload a tournament logo",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "file", "name": "logo", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.TournamentDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/tournaments/{tournamentId}/games": {
            "get": {
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "List games of a tournament",
                "parameters": [
                    {"type": "integer", "name": "tournamentId", "in": "path", "required": true},
                    {"type": "integer", "name": "pageNumber", "in": "query"},
                    {"type": "integer", "name": "pageSize", "in": "query"},
                    {"type": "string", "name": "orderBy", "in": "query"},
                    {"type": "string", "name": "searchTerm", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/services.GameDTO"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Add a game",
                "parameters": [
                    {"type": "integer", "name": "tournamentId", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.GameCreateDTO"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/services.GameDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/tournaments/{tournamentId}/games/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Get a game by id or exact title",
                "parameters": [
                    {"type": "integer", "name": "tournamentId", "in": "path", "required": true},
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.GameDTO"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["games"],
                "summary": "Replace a game",
                "parameters": [
                    {"type": "integer", "name": "tournamentId", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.GameEditDTO"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["games"],
                "summary": "Apply a JSON Patch document to a game",
                "parameters": [
                    {"type": "integer", "name": "tournamentId", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/patch.Operation"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.GameDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["games"],
                "summary": "Delete a game",
                "parameters": [
                    {"type": "integer", "name": "tournamentId", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a user",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.TokenPair"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/auth/manageAdmin": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Grant or revoke the Admin role",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.ManageAdminInput"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        },
        "/token/refresh": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["token"],
                "summary": "Exchange an expired access token and a refresh token for a new pair",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.TokenPair"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.TokenPair"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "middleware.ProblemDetails": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        },
        "patch.Operation": {
            "type": "object",
            "properties": {
                "op": {"type": "string", "enum": ["add", "remove", "replace", "move", "copy", "test"]},
                "path": {"type": "string"},
                "from": {"type": "string"},
                "value": {}
            }
        },
        "services.GameCreateDTO": {
            "type": "object",
            "required": ["title", "time"],
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "time": {"type": "string", "format": "date-time"}
            }
        },
        "services.GameEditDTO": {
            "type": "object",
            "required": ["title", "time"],
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string", "maxLength": 100},
                "time": {"type": "string", "format": "date-time"}
            }
        },
        "services.GameDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "time": {"type": "string", "format": "date-time"},
                "tournamentId": {"type": "integer"}
            }
        },
        "services.TournamentCreateDTO": {
            "type": "object",
            "required": ["title", "startDate"],
            "properties": {
                "title": {"type": "string", "maxLength": 100},
                "startDate": {"type": "string", "format": "date-time"},
                "games": {"type": "array", "items": {"$ref": "#/definitions/services.GameCreateDTO"}}
            }
        },
        "services.TournamentEditDTO": {
            "type": "object",
            "required": ["title", "startDate"],
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string", "maxLength": 100},
                "startDate": {"type": "string", "format": "date-time"}
            }
        },
        "services.TournamentDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "startDate": {"type": "string", "format": "date-time"},
                "endDate": {"type": "string", "format": "date-time"},
                "logoUrl": {"type": "string"},
                "games": {"type": "array", "items": {"$ref": "#/definitions/services.GameDTO"}}
            }
        },
        "services.RegisterInput": {
            "type": "object",
            "required": ["name", "email", "password"],
            "properties": {
                "userName": {"type": "string"},
                "name": {"type": "string"},
                "age": {"type": "integer", "minimum": 18, "maximum": 100},
                "position": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6}
            }
        },
        "services.LoginInput": {
            "type": "object",
            "required": ["userName", "password"],
            "properties": {
                "userName": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "services.ManageAdminInput": {
            "type": "object",
            "required": ["userName"],
            "properties": {
                "userName": {"type": "string"},
                "isAdmin": {"type": "boolean"}
            }
        },
        "services.TokenPair": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "refreshToken": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
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
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Tournament API",
	Description:      "Tournaments, their games and user accounts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
