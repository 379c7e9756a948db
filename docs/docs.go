// Package docs registers the OpenAPI description of the library HTTP API with swag.
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
                "description": "Pings the backing store.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Store health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    }
                }
            }
        },
        "/books": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List books",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handler.bookListResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    }
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Add a book",
                "parameters": [
                    {
                        "description": "Book",
                        "name": "book",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.createBookRequest"}
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/model.Book"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    }
                }
            }
        },
        "/books/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get a book",
                "parameters": [
                    {"type": "string", "description": "Book ID (24 hex characters)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/model.Book"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    }
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "tags": ["books"],
                "summary": "Rename a book",
                "parameters": [
                    {"type": "string", "description": "Book ID (24 hex characters)", "name": "id", "in": "path", "required": true},
                    {
                        "description": "New title",
                        "name": "book",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.updateBookRequest"}
                    }
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    }
                }
            },
            "delete": {
                "tags": ["books"],
                "summary": "Delete a book",
                "parameters": [
                    {"type": "string", "description": "Book ID (24 hex characters)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"$ref": "#/definitions/handler.errorPayload"}
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.bookListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Book"}},
                "total": {"type": "integer"}
            }
        },
        "handler.createBookRequest": {
            "type": "object",
            "properties": {
                "author": {"type": "string"},
                "published_year": {"type": "string"},
                "title": {"type": "string"}
            }
        },
        "handler.updateBookRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}
            }
        },
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "model.Book": {
            "type": "object",
            "properties": {
                "author": {"type": "string"},
                "id": {"type": "string"},
                "published_year": {"type": "string"},
                "title": {"type": "string"}
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
	Title:            "Library API",
	Description:      "CRUD over book records that reference authors by ObjectID.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
