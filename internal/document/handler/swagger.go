package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r *gin.Engine) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>docvault API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document for the document API.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docvault", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Document": {
        "type": "object",
        "properties": {
          "id": {"type": "string", "format": "uuid"},
          "title": {"type": "string"},
          "content": {"type": "string"},
          "status": {"type": "string", "enum": ["draft", "published", "archived"]},
          "metadata": {"type": "object", "properties": {"author": {"type": "string"}, "tags": {"type": "array", "items": {"type": "string"}}, "category": {"type": "string"}}},
          "comments": {"type": "array", "items": {"type": "string"}},
          "versions": {"type": "array", "items": {"$ref": "#/components/schemas/Version"}},
          "createdAt": {"type": "string", "format": "date-time"},
          "updatedAt": {"type": "string", "format": "date-time"}
        }
      },
      "Version": {
        "type": "object",
        "properties": {
          "versionId": {"type": "string", "format": "uuid"},
          "title": {"type": "string"},
          "content": {"type": "string"},
          "status": {"type": "string"},
          "author": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}},
          "category": {"type": "string"},
          "comments": {"type": "array", "items": {"type": "string"}},
          "timestamp": {"type": "string", "format": "date-time"}
        }
      }
    }
  },
  "paths": {
    "/api/documents": {
      "get": {
        "summary": "List live documents, most recently updated first",
        "parameters": [
          {"name": "skip", "in": "query", "schema": {"type": "integer", "minimum": 0, "default": 0}},
          {"name": "limit", "in": "query", "schema": {"type": "integer", "minimum": 1, "maximum": 100, "default": 10}}
        ],
        "responses": { "200": { "description": "page of documents" }, "400": { "description": "bad pagination" } }
      },
      "post": {
        "summary": "Create a document",
        "security": [{"bearerAuth": []}],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["title","content","author"],"properties":{"title":{"type":"string"},"content":{"type":"string"},"status":{"type":"string"},"author":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}},"category":{"type":"string"},"comments":{"type":"array","items":{"type":"string"}}}}}}},
        "responses": { "201": { "description": "created document" }, "400": { "description": "invalid input" }, "401": { "description": "missing or invalid token" } }
      }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Fetch one document", "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}], "responses": { "200": { "description": "document" }, "404": { "description": "unknown or deleted" } } },
      "patch": { "summary": "Apply a partial update, snapshotting the prior state", "security": [{"bearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}], "responses": { "200": { "description": "updated document" }, "400": { "description": "invalid patch" }, "404": { "description": "unknown or deleted" } } },
      "delete": { "summary": "Soft-delete a document", "security": [{"bearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}], "responses": { "204": { "description": "deleted" }, "404": { "description": "unknown or already deleted" } } }
    },
    "/api/documents/{id}/restore": {
      "post": { "summary": "Bring a soft-deleted document back", "security": [{"bearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}], "responses": { "200": { "description": "restored document" }, "404": { "description": "unknown or not deleted" } } }
    },
    "/api/documents/{id}/versions": {
      "get": { "summary": "Version history, oldest first", "security": [{"bearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}], "responses": { "200": { "description": "versions" }, "404": { "description": "unknown or deleted" } } }
    },
    "/api/documents/{id}/versions/{versionId}": {
      "get": { "summary": "Fetch one version snapshot", "security": [{"bearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}, {"name": "versionId", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}], "responses": { "200": { "description": "version" }, "404": { "description": "unknown version" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
